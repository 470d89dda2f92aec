package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawtrail/walk-tracker/internal/models"
	"github.com/pawtrail/walk-tracker/internal/services"
	"github.com/rs/zerolog"
)

// locationRequest mirrors the ingest wire contract. Pointer fields make a
// missing coordinate distinguishable from an explicit zero; the timestamp is
// bound as a string so format errors produce a clean 400 before any semantic
// validation runs.
type locationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Timestamp string   `json:"timestamp" binding:"required"`
}

// LocationHandler serves the ingest and history endpoints.
type LocationHandler struct {
	tracker services.LocationTracker
	logger  zerolog.Logger
}

// NewLocationHandler creates a LocationHandler backed by the given tracker.
func NewLocationHandler(tracker services.LocationTracker, logger zerolog.Logger) *LocationHandler {
	return &LocationHandler{
		tracker: tracker,
		logger:  logger,
	}
}

// PostLocation handles one location sample submission.
func (h *LocationHandler) PostLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: latitude, longitude and timestamp are required"})
		return
	}

	timestamp, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp must be an RFC3339 datetime"})
		return
	}

	location := models.NewLocation(*req.Latitude, *req.Longitude, timestamp)
	err = h.tracker.TrackLocation(c.Request.Context(), location)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, services.ErrInvalidLocation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Msg("Failed to track location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store location"})
	}
}

// GetHistory returns the samples within [start_time, end_time], ascending by
// timestamp.
func (h *LocationHandler) GetHistory(c *gin.Context) {
	startRaw := c.Query("start_time")
	endRaw := c.Query("end_time")
	if startRaw == "" || endRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time and end_time query parameters are required"})
		return
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be an RFC3339 datetime"})
		return
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be an RFC3339 datetime"})
		return
	}

	locations, err := h.tracker.GetLocationHistory(c.Request.Context(), start, end)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidRange), errors.Is(err, services.ErrRangeTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		h.logger.Error().Err(err).Msg("Failed to fetch location history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve location history"})
		return
	}

	events := make([]models.LocationEvent, 0, len(locations))
	for _, location := range locations {
		events = append(events, location.Event())
	}
	c.JSON(http.StatusOK, events)
}
