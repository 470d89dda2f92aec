package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pawtrail/walk-tracker/internal/hub"
	"github.com/rs/zerolog"
)

// ConnectionRegistry is the subset of the hub the transport layer needs.
type ConnectionRegistry interface {
	Register(conn hub.Connection)
	Unregister(conn hub.Connection)
}

// WSHandler upgrades observer requests to WebSocket connections and hands
// them to the hub. The handler itself holds no long-lived state; the hub is
// the sole owner of a connection from the moment it is registered.
type WSHandler struct {
	registry ConnectionRegistry
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWSHandler creates a WSHandler registering connections with the given
// registry.
func NewWSHandler(registry ConnectionRegistry, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Serve performs the WebSocket handshake and registers the connection. On
// handshake failure the attempt is abandoned with nothing registered.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	wsConn := hub.NewWebSocketConnection(conn)
	h.registry.Register(wsConn)
	go h.watchDisconnect(wsConn, conn)
}

// watchDisconnect drains the receive side until the client goes away. The
// feed is push-only, so inbound frames are discarded; a read error means the
// client disconnected and the connection is handed back to the hub.
func (h *WSHandler) watchDisconnect(wsConn *hub.WebSocketConnection, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.registry.Unregister(wsConn)
			return
		}
	}
}
