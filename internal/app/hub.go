package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/chris-cant-code/spellingbee/internal/domain"
	"github.com/chris-cant-code/spellingbee/internal/store"
)

const (
	// StaleRoomTimeout is how long a room session may sit empty before its
	// runtime is swept. Durable room state is untouched by the sweep.
	StaleRoomTimeout = 2 * time.Hour

	sweepInterval = 10 * time.Minute
)

// RoomHub owns room membership: which connections belong to which puzzle
// room. It dispatches join/leave/typing/shuffle/submit events, routes
// mutating events through the arbiter, and fans state deltas out to room
// members. A connection belongs to at most one room; the last join wins.
type RoomHub struct {
	mu       sync.RWMutex
	sessions map[string]*RoomSession // puzzle date -> session
	byConn   map[string]*RoomSession // connection id -> joined session

	arbiter *Arbiter
	puzzles store.PuzzleStore
	rooms   store.RoomStore
	logger  *slog.Logger
	done    chan struct{}
}

// NewRoomHub creates a new room hub.
func NewRoomHub(puzzles store.PuzzleStore, rooms store.RoomStore, logger *slog.Logger) *RoomHub {
	hub := &RoomHub{
		sessions: make(map[string]*RoomSession),
		byConn:   make(map[string]*RoomSession),
		arbiter:  NewArbiter(puzzles, rooms),
		puzzles:  puzzles,
		rooms:    rooms,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go hub.sweepLoop()

	return hub
}

// Join attaches conn to the room for date, detaching it from any previous
// room first, and returns the full room snapshot for the joiner. A missing
// puzzle fails with domain.ErrPuzzleNotFound before any membership change.
// The updated player count is broadcast to the whole room, joiner included.
func (h *RoomHub) Join(conn ClientConnection, date string) (*domain.Snapshot, error) {
	puzzle, err := h.puzzles.GetPuzzle(date)
	if err != nil {
		return nil, err
	}
	room, err := h.rooms.EnsureRoom(date)
	if err != nil {
		return nil, err
	}

	var (
		session *RoomSession
		count   int
	)
	for {
		h.mu.Lock()
		candidate, ok := h.sessions[date]
		if !ok {
			candidate = newRoomSession(date, h.logger)
			h.sessions[date] = candidate
			h.logger.Info("room opened", "date", date)
		}
		h.mu.Unlock()

		if c, ok := candidate.AddMember(conn); ok {
			session, count = candidate, c
			break
		}

		// The idle sweep closed this session between the lookup and the
		// attach. Drop it and start over with a fresh one.
		h.mu.Lock()
		if h.sessions[date] == candidate {
			delete(h.sessions, date)
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	prev := h.byConn[conn.ID()]
	h.byConn[conn.ID()] = session
	h.mu.Unlock()

	if prev != nil && prev != session {
		prev.RemoveMember(conn.ID())
	}

	h.logger.Info("connection joined room", "date", date, "connID", conn.ID(), "players", count)

	return &domain.Snapshot{
		FoundWords:  room.FoundWords,
		Score:       room.Score,
		TotalScore:  puzzle.TotalScore,
		Rank:        domain.RankFor(room.Score, puzzle.TotalScore),
		PlayerCount: count,
	}, nil
}

// Leave detaches a connection from whichever room it belongs to and
// broadcasts the updated player count to the remaining members. Unjoined
// connections are a no-op.
func (h *RoomHub) Leave(connID string) {
	h.mu.Lock()
	session := h.byConn[connID]
	delete(h.byConn, connID)
	h.mu.Unlock()

	if session == nil {
		return
	}

	if count, was := session.RemoveMember(connID); was {
		h.logger.Info("connection left room", "date", session.PuzzleDate(), "connID", connID, "players", count)
	}
}

// RelayTyping broadcasts a member's in-progress word to the other members of
// its room. Nothing is persisted; unjoined connections are a no-op.
func (h *RoomHub) RelayTyping(connID, text string) {
	session := h.sessionFor(connID)
	if session == nil {
		return
	}
	session.QueueEvent(domain.NewRoomEventExcluding(domain.EventTyping, connID, &domain.TypingPayload{
		Text:     text,
		PlayerID: connID,
	}))
}

// RelayShuffle broadcasts a member's tile order to its whole room, sender
// included. This is a pure relay with no server-side ordering.
func (h *RoomHub) RelayShuffle(connID string, outerOrder []string) {
	session := h.sessionFor(connID)
	if session == nil || len(outerOrder) == 0 {
		return
	}
	session.QueueEvent(domain.NewRoomEvent(domain.EventShuffle, &domain.ShufflePayload{OuterOrder: outerOrder}))
}

// Submit routes a word submission through the arbiter for the connection's
// current room. On success the session broadcasts the word_found delta to
// every member including the submitter, in commit order; failures are
// returned to the caller only and nothing is broadcast.
func (h *RoomHub) Submit(connID, rawWord string) (*domain.SubmitResult, error) {
	session := h.sessionFor(connID)
	if session == nil {
		return nil, domain.ErrNotInRoom
	}

	result, err := session.Submit(h.arbiter, rawWord)
	if err != nil {
		return nil, err
	}

	h.logger.Info("word found", "date", session.PuzzleDate(), "word", result.Word, "points", result.Points, "score", result.NewScore)

	return result, nil
}

// ResetRoom clears the durable room for date. If the room has a live
// session the reset is serialized against in-flight submissions.
func (h *RoomHub) ResetRoom(date string) error {
	h.mu.RLock()
	session := h.sessions[date]
	h.mu.RUnlock()

	if session != nil {
		session.mu.Lock()
		defer session.mu.Unlock()
	}
	return h.rooms.ResetRoom(date)
}

// ActiveRooms returns the number of live room sessions.
func (h *RoomHub) ActiveRooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// TotalPlayers returns the number of joined connections across all rooms.
func (h *RoomHub) TotalPlayers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byConn)
}

// Close shuts down the hub and all room sessions.
func (h *RoomHub) Close() {
	select {
	case <-h.done:
		return // already closed
	default:
		close(h.done)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*RoomSession)
	h.byConn = make(map[string]*RoomSession)
}

// sessionFor returns the session a connection has joined, if any.
func (h *RoomHub) sessionFor(connID string) *RoomSession {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.byConn[connID]
}

// sweepLoop periodically sweeps empty room sessions.
func (h *RoomHub) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.sweepIdleRooms()
		}
	}
}

// sweepIdleRooms closes sessions that have had no members for a while. A
// later join recreates the session from durable room state.
func (h *RoomHub) sweepIdleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for date, session := range h.sessions {
		if idle, ok := session.idleSince(); ok && now.Sub(idle) > StaleRoomTimeout {
			session.Close()
			delete(h.sessions, date)
			h.logger.Info("idle room closed", "date", date)
		}
	}
}
