package hub

import (
	"sync/atomic"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/pawtrail/walk-tracker/internal/utils"
	"github.com/rs/zerolog"
)

// defaultSendTimeout bounds a single per-connection write during a broadcast.
// A connection that cannot take an event within it is treated as dead.
const defaultSendTimeout = 2 * time.Second

// Stats is a snapshot of the hub's registry size and delivery counters,
// exposed through the health endpoint.
type Stats struct {
	ConnectedClients int   `json:"connected_clients"`
	EventsDelivered  int64 `json:"events_delivered"`
	EventsDropped    int64 `json:"events_dropped"`
}

// Hub owns the registry of live observer connections and fans serialized
// location events out to all of them. The registry is the only mutable shared
// state in the tracking core; nothing outside the hub mutates it.
type Hub struct {
	registry    cmap.ConcurrentMap[string, Connection]
	pool        *utils.WorkerPool
	sendTimeout time.Duration
	logger      zerolog.Logger

	delivered atomic.Int64
	dropped   atomic.Int64
}

// NewHub creates a hub that schedules per-connection sends on the given
// worker pool. A non-positive send timeout falls back to the default.
func NewHub(pool *utils.WorkerPool, sendTimeout time.Duration, logger zerolog.Logger) *Hub {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Hub{
		registry:    cmap.New[Connection](),
		pool:        pool,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Register adds a connection to the registry. Callers must not register the
// same handle twice.
func (h *Hub) Register(conn Connection) {
	h.registry.Set(conn.ID(), conn)
	h.logger.Info().
		Str("connection_id", conn.ID()).
		Int("connected", h.registry.Count()).
		Msg("Connection registered")
}

// Unregister removes a connection from the registry and closes its transport.
// Calling it for a connection that was already removed is a no-op.
func (h *Hub) Unregister(conn Connection) {
	if _, present := h.registry.Pop(conn.ID()); !present {
		return
	}
	if err := conn.Close(); err != nil {
		h.logger.Debug().Err(err).Str("connection_id", conn.ID()).Msg("Error closing connection")
	}
	h.logger.Info().
		Str("connection_id", conn.ID()).
		Int("connected", h.registry.Count()).
		Msg("Connection unregistered")
}

// Broadcast delivers one serialized event to every currently registered
// connection. Each send runs as its own pool job with a write deadline, so a
// slow or dead observer cannot stall the others. A failed write unregisters
// that connection; failures never propagate to the broadcaster.
func (h *Hub) Broadcast(event []byte) {
	deadline := time.Now().Add(h.sendTimeout)

	// Items returns a point-in-time snapshot; connections registered after
	// this call receive only subsequent events.
	for _, conn := range h.registry.Items() {
		conn := conn
		h.pool.Submit(func() {
			if err := conn.Write(event, deadline); err != nil {
				h.dropped.Add(1)
				h.logger.Warn().
					Err(err).
					Str("connection_id", conn.ID()).
					Msg("Dropping connection after failed write")
				h.Unregister(conn)
				return
			}
			h.delivered.Add(1)
		})
	}
}

// ConnectedCount returns the current registry size.
func (h *Hub) ConnectedCount() int {
	return h.registry.Count()
}

// Stats returns the current registry size and delivery counters.
func (h *Hub) Stats() Stats {
	return Stats{
		ConnectedClients: h.registry.Count(),
		EventsDelivered:  h.delivered.Load(),
		EventsDropped:    h.dropped.Load(),
	}
}

// CloseAll unregisters and closes every connection, leaving the registry
// empty. Used during graceful shutdown.
func (h *Hub) CloseAll() {
	for id, conn := range h.registry.Items() {
		h.registry.Remove(id)
		if err := conn.Close(); err != nil {
			h.logger.Debug().Err(err).Str("connection_id", id).Msg("Error closing connection")
		}
	}
	h.logger.Info().Msg("All connections closed")
}
