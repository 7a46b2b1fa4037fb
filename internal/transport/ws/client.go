package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/chris-cant-code/spellingbee/internal/app"
	"github.com/chris-cant-code/spellingbee/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256

	// Typing relays above this rate are dropped
	typingRate  = rate.Limit(8)
	typingBurst = 16
)

// Client represents a WebSocket client connection. It starts unjoined and
// transitions between rooms through join messages.
type Client struct {
	conn   *websocket.Conn
	hub    *app.RoomHub
	id     string
	send   chan []byte
	done   chan struct{}
	logger *slog.Logger
	typing *rate.Limiter
	mu     sync.Mutex
	closed bool
}

// NewClient creates a new WebSocket client.
func NewClient(conn *websocket.Conn, hub *app.RoomHub, id string, logger *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		id:     id,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
		typing: rate.NewLimiter(typingRate, typingBurst),
	}
}

// ID implements app.ClientConnection.
func (c *Client) ID() string {
	return c.id
}

// Send implements app.ClientConnection. It never blocks; when the buffer is
// full the message is dropped so a slow peer cannot stall a room.
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "connID", c.id)
		return nil
	}
}

// Close implements app.ClientConnection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c.id)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client.
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgJoin:
		c.handleJoin(msg.Payload)
	case MsgTyping:
		c.handleTyping(msg.Payload)
	case MsgShuffle:
		c.handleShuffle(msg.Payload)
	case MsgSubmit:
		c.handleSubmit(msg.Payload)
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleJoin handles a join message.
func (c *Client) handleJoin(raw json.RawMessage) {
	var payload JoinPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Date == "" {
		c.sendError(ErrCodeInvalidMessage, "Puzzle date is required")
		return
	}

	snapshot, err := c.hub.Join(c, payload.Date)
	if err != nil {
		if errors.Is(err, domain.ErrPuzzleNotFound) {
			c.sendError(ErrCodePuzzleNotFound, "Puzzle not found for date: "+payload.Date)
		} else {
			c.logger.Error("join failed", "connID", c.id, "date", payload.Date, "error", err)
			c.sendError(ErrCodeInternalError, "Failed to join room")
		}
		return
	}

	c.Send(NewServerMessage(MsgRoomState, snapshot))
}

// handleTyping handles a typing message.
func (c *Client) handleTyping(raw json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	if !c.typing.Allow() {
		return
	}
	c.hub.RelayTyping(c.id, payload.Text)
}

// handleShuffle handles a shuffle message.
func (c *Client) handleShuffle(raw json.RawMessage) {
	var payload ShufflePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	c.hub.RelayShuffle(c.id, payload.OuterOrder)
}

// handleSubmit handles a submit message. Accepted words are broadcast by the
// hub to the whole room; rejections go back to this connection only.
func (c *Client) handleSubmit(raw json.RawMessage) {
	var payload SubmitPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Word == "" {
		c.sendError(ErrCodeInvalidMessage, "Word is required")
		return
	}

	_, err := c.hub.Submit(c.id, payload.Word)
	if err != nil {
		reason := reasonFor(err)
		if reason == "" {
			c.logger.Error("submit failed", "connID", c.id, "error", err)
			c.sendError(ErrCodeInternalError, "Failed to process submission")
			return
		}
		c.Send(NewServerMessage(MsgWordError, &WordErrorPayload{
			Word:   strings.ToUpper(strings.TrimSpace(payload.Word)),
			Reason: reason,
		}))
	}
}

// sendError sends an error message to the client.
func (c *Client) sendError(code, message string) {
	c.Send(NewServerMessage(MsgError, &ErrorPayload{
		Code:    code,
		Message: message,
	}))
}

// sendPong sends a pong message in response to ping.
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, nil))
}
