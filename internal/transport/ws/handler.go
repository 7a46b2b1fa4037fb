package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chris-cant-code/spellingbee/internal/app"
)

// Handler handles WebSocket connections.
type Handler struct {
	hub      *app.RoomHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *app.RoomHub, logger *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests. Connections start unjoined;
// room selection happens through join messages so a client can switch rooms
// without reconnecting.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.New().String()
	client := NewClient(conn, h.hub, connID, h.logger)

	h.logger.Info("websocket connected", "connID", connID)

	client.Run()
}
