package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection is one live observer attached to the hub. The hub owns the
// handle from registration until unregistration and is the only component
// allowed to close it.
type Connection interface {
	// ID uniquely identifies the connection within the registry.
	ID() string

	// Write sends one serialized event, failing once the deadline passes.
	Write(payload []byte, deadline time.Time) error

	// Close releases the underlying transport resource.
	Close() error
}

// WebSocketConnection adapts a gorilla websocket connection to the hub's
// Connection interface. The mutex serializes writes because the underlying
// connection supports at most one concurrent writer.
type WebSocketConnection struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWebSocketConnection wraps an upgraded websocket connection and assigns
// it a registry ID.
func NewWebSocketConnection(conn *websocket.Conn) *WebSocketConnection {
	return &WebSocketConnection{
		id:   uuid.New().String(),
		conn: conn,
	}
}

// ID returns the connection's registry ID.
func (c *WebSocketConnection) ID() string {
	return c.id
}

// Write sends one text message, bounded by the deadline.
func (c *WebSocketConnection) Write(payload []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close closes the underlying websocket connection.
func (c *WebSocketConnection) Close() error {
	return c.conn.Close()
}
