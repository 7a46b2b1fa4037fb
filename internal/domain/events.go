package domain

import "time"

// EventType identifies a broadcast message. Values double as the outbound
// wire message names.
type EventType string

const (
	EventRoomState   EventType = "room_state"
	EventPlayerCount EventType = "player_count"
	EventTyping      EventType = "typing_update"
	EventShuffle     EventType = "shuffle"
	EventWordFound   EventType = "word_found"
)

// RoomEvent is a single broadcast unit fanned out to the members of a room.
type RoomEvent struct {
	Type      EventType   `json:"type"`
	ExcludeID string      `json:"-"` // connection left out of the fan-out, if any
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewRoomEvent creates an event delivered to every member of a room.
func NewRoomEvent(eventType EventType, payload interface{}) *RoomEvent {
	return &RoomEvent{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// NewRoomEventExcluding creates an event delivered to every member except
// the named connection.
func NewRoomEventExcluding(eventType EventType, excludeID string, payload interface{}) *RoomEvent {
	return &RoomEvent{
		Type:      eventType,
		ExcludeID: excludeID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Snapshot is the full room view sent to a joining connection.
type Snapshot struct {
	FoundWords  []string `json:"foundWords"`
	Score       int      `json:"score"`
	TotalScore  int      `json:"totalScore"`
	Rank        string   `json:"rank"`
	PlayerCount int      `json:"playerCount"`
}

// SubmitResult describes an accepted word, broadcast to the whole room.
type SubmitResult struct {
	Word       string `json:"word"`
	Points     int    `json:"points"`
	IsPangram  bool   `json:"isPangram"`
	NewScore   int    `json:"newScore"`
	TotalScore int    `json:"totalScore"`
	NewRank    string `json:"newRank"`
}

// PlayerCountPayload is sent when a room's membership changes.
type PlayerCountPayload struct {
	Count int `json:"count"`
}

// TypingPayload relays a member's in-progress word to the rest of the room.
type TypingPayload struct {
	Text     string `json:"text"`
	PlayerID string `json:"playerId"`
}

// ShufflePayload relays a member's tile order to the whole room. The server
// holds no authoritative order; the last broadcast wins per recipient.
type ShufflePayload struct {
	OuterOrder []string `json:"outerOrder"`
}
