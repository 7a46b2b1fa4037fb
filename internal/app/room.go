package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/chris-cant-code/spellingbee/internal/domain"
)

// ClientConnection represents a connected client.
type ClientConnection interface {
	Send(message interface{}) error
	ID() string
	Close() error
}

// RoomSession is the in-process runtime for one puzzle room: its current
// members and the broadcast queue. Durable room state lives in the store;
// the session only serializes access to it. mu is held across the whole
// check-then-act submission sequence so submissions to the same room run one
// at a time, while other rooms proceed in parallel.
type RoomSession struct {
	puzzleDate string
	createdAt  time.Time
	logger     *slog.Logger

	mu sync.Mutex // serializes submissions (and resets) for this room

	membersMu sync.RWMutex
	members   map[string]ClientConnection
	emptiedAt time.Time // when the room last dropped to zero members
	closed    bool

	queueMu   sync.Mutex
	queueCond *sync.Cond
	queue     []*domain.RoomEvent
	stopped   bool
}

func newRoomSession(puzzleDate string, logger *slog.Logger) *RoomSession {
	s := &RoomSession{
		puzzleDate: puzzleDate,
		createdAt:  time.Now(),
		emptiedAt:  time.Now(),
		logger:     logger,
		members:    make(map[string]ClientConnection),
	}
	s.queueCond = sync.NewCond(&s.queueMu)

	go s.eventLoop()

	return s
}

// PuzzleDate returns the puzzle this room belongs to.
func (s *RoomSession) PuzzleDate() string {
	return s.puzzleDate
}

// AddMember attaches a connection, queues the new player count for
// broadcast, and returns it. The count is queued while the membership lock
// is still held so counts are always published in the order they were
// computed. It reports false when the session has been closed; the caller
// must recreate the session. Re-adding an existing member is a no-op.
func (s *RoomSession) AddMember(conn ClientConnection) (int, bool) {
	s.membersMu.Lock()
	defer s.membersMu.Unlock()
	if s.closed {
		return 0, false
	}
	s.members[conn.ID()] = conn
	count := len(s.members)
	s.QueueEvent(domain.NewRoomEvent(domain.EventPlayerCount, &domain.PlayerCountPayload{Count: count}))
	return count, true
}

// RemoveMember detaches a connection and queues the remaining player count
// for broadcast. It returns the remaining member count and whether the
// connection was a member at all.
func (s *RoomSession) RemoveMember(connID string) (int, bool) {
	s.membersMu.Lock()
	defer s.membersMu.Unlock()
	if _, ok := s.members[connID]; !ok {
		return len(s.members), false
	}
	delete(s.members, connID)
	count := len(s.members)
	if count == 0 {
		s.emptiedAt = time.Now()
	}
	s.QueueEvent(domain.NewRoomEvent(domain.EventPlayerCount, &domain.PlayerCountPayload{Count: count}))
	return count, true
}

// MemberCount returns the number of attached connections.
func (s *RoomSession) MemberCount() int {
	s.membersMu.RLock()
	defer s.membersMu.RUnlock()
	return len(s.members)
}

// idleSince reports when the session last dropped to zero members, or false
// while it still has members.
func (s *RoomSession) idleSince() (time.Time, bool) {
	s.membersMu.RLock()
	defer s.membersMu.RUnlock()
	if len(s.members) > 0 {
		return time.Time{}, false
	}
	return s.emptiedAt, true
}

// Submit runs one submission through the arbiter under the room's lock. An
// accepted word's word_found delta is queued before the lock is released so
// broadcast order always matches commit order.
func (s *RoomSession) Submit(arbiter *Arbiter, rawWord string) (*domain.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := arbiter.Submit(s.puzzleDate, rawWord)
	if err != nil {
		return nil, err
	}
	s.QueueEvent(domain.NewRoomEvent(domain.EventWordFound, result))
	return result, nil
}

// QueueEvent appends an event to the broadcast queue. The queue is unbounded
// so a committed state delta is never lost; backpressure on slow peers is
// applied at each connection's send buffer instead. It never blocks, so it
// is safe to call while holding the membership or submission lock. Events
// queued after Close are discarded.
func (s *RoomSession) QueueEvent(event *domain.RoomEvent) {
	s.queueMu.Lock()
	if s.stopped {
		s.queueMu.Unlock()
		return
	}
	s.queue = append(s.queue, event)
	s.queueMu.Unlock()
	s.queueCond.Signal()
}

// eventLoop drains the broadcast queue in FIFO order until the session
// closes.
func (s *RoomSession) eventLoop() {
	for {
		s.queueMu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.queueCond.Wait()
		}
		if s.stopped {
			s.queueMu.Unlock()
			return
		}
		event := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		s.broadcastEvent(event)
	}
}

// broadcastEvent fans an event out to all members, honoring ExcludeID.
func (s *RoomSession) broadcastEvent(event *domain.RoomEvent) {
	s.membersMu.RLock()
	defer s.membersMu.RUnlock()

	for connID, member := range s.members {
		if event.ExcludeID != "" && connID == event.ExcludeID {
			continue
		}
		if err := member.Send(event); err != nil {
			s.logger.Debug("failed to send to member", "connID", connID, "error", err)
		}
	}
}

// Close shuts down the session. Later AddMember calls fail so a joiner can
// never attach to a session whose event loop has exited.
func (s *RoomSession) Close() {
	s.membersMu.Lock()
	if s.closed {
		s.membersMu.Unlock()
		return
	}
	s.closed = true
	s.members = make(map[string]ClientConnection)
	s.membersMu.Unlock()

	s.queueMu.Lock()
	s.stopped = true
	s.queueMu.Unlock()
	s.queueCond.Broadcast()
}
