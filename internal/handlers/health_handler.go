package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawtrail/walk-tracker/internal/hub"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/mem"
)

// HubStatsProvider exposes the hub's registry size and delivery counters.
type HubStatsProvider interface {
	Stats() hub.Stats
}

// HealthHandler reports process liveness plus hub and runtime statistics.
// The numbers are observability hooks only; nothing in the system makes
// correctness decisions from them.
type HealthHandler struct {
	hubStats  HubStatsProvider
	startedAt time.Time
	logger    zerolog.Logger
}

// NewHealthHandler creates a HealthHandler; uptime counts from now.
func NewHealthHandler(hubStats HubStatsProvider, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		hubStats:  hubStats,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// Status serves the health endpoint.
func (h *HealthHandler) Status(c *gin.Context) {
	stats := h.hubStats.Stats()
	response := gin.H{
		"status":            "ok",
		"uptime_seconds":    time.Since(h.startedAt).Seconds(),
		"connected_clients": stats.ConnectedClients,
		"events_delivered":  stats.EventsDelivered,
		"events_dropped":    stats.EventsDropped,
		"goroutines":        runtime.NumGoroutine(),
	}

	if memStats, err := mem.VirtualMemory(); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to retrieve memory statistics")
	} else {
		response["memory_used_percent"] = memStats.UsedPercent
	}

	c.JSON(http.StatusOK, response)
}
