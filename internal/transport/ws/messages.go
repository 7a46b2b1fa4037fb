package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/chris-cant-code/spellingbee/internal/domain"
)

// MessageType represents the type of a WebSocket message.
type MessageType string

// Client → Server message types
const (
	MsgJoin    MessageType = "join"
	MsgTyping  MessageType = "typing"
	MsgShuffle MessageType = "shuffle"
	MsgSubmit  MessageType = "submit"
	MsgPing    MessageType = "ping"
)

// Server → Client message types. Broadcast types (player_count,
// typing_update, shuffle, word_found) travel as domain.RoomEvent and share
// the same names; the constants below cover direct replies.
const (
	MsgRoomState MessageType = "room_state"
	MsgWordError MessageType = "word_error"
	MsgError     MessageType = "error"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents a message from client to server.
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a direct message from server to client.
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewServerMessage creates a new server message with the current timestamp.
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Client message payloads

// JoinPayload is the payload for a join message.
type JoinPayload struct {
	Date string `json:"date"`
}

// TypingPayload is the payload for a typing message.
type TypingPayload struct {
	Text string `json:"text"`
}

// ShufflePayload is the payload for a shuffle message.
type ShufflePayload struct {
	OuterOrder []string `json:"outerOrder"`
}

// SubmitPayload is the payload for a submit message.
type SubmitPayload struct {
	Word string `json:"word"`
}

// Server message payloads

// WordErrorPayload reports a rejected submission to the sender only.
type WordErrorPayload struct {
	Word   string `json:"word"`
	Reason string `json:"reason"`
}

// ErrorPayload reports a protocol or infrastructure failure.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodePuzzleNotFound = "PUZZLE_NOT_FOUND"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)

// Rejection reasons for word_error messages.
const (
	ReasonTooShort      = "too_short"
	ReasonMissingCenter = "missing_center"
	ReasonBadLetters    = "bad_letters"
	ReasonAlreadyFound  = "already_found"
	ReasonNotInList     = "not_in_list"
	ReasonNoPuzzle      = "no_puzzle"
)

// reasonFor maps a submission error to its wire reason. An empty string
// marks an infrastructure fault that should surface as a generic error.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrTooShort):
		return ReasonTooShort
	case errors.Is(err, domain.ErrMissingCenter):
		return ReasonMissingCenter
	case errors.Is(err, domain.ErrBadLetters):
		return ReasonBadLetters
	case errors.Is(err, domain.ErrAlreadyFound):
		return ReasonAlreadyFound
	case errors.Is(err, domain.ErrNotInList):
		return ReasonNotInList
	case errors.Is(err, domain.ErrPuzzleNotFound), errors.Is(err, domain.ErrNotInRoom):
		return ReasonNoPuzzle
	default:
		return ""
	}
}
