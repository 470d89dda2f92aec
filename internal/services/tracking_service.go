package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pawtrail/walk-tracker/internal/models"
	"github.com/pawtrail/walk-tracker/internal/store"
	"github.com/rs/zerolog"
)

// Service errors surfaced to the transport layer.
var (
	ErrInvalidLocation   = errors.New("invalid location sample")
	ErrPersistenceFailed = errors.New("failed to persist location sample")
	ErrInvalidRange      = errors.New("history range bounds must be set and end must not precede start")
	ErrRangeTooLarge     = errors.New("history range exceeds the maximum lookback window")
)

// DefaultMaxLookback is the maximum span of a history query window when the
// configuration does not override it.
const DefaultMaxLookback = 24 * time.Hour

// Broadcaster fans one serialized event out to every connected observer.
type Broadcaster interface {
	Broadcast(event []byte)
}

// LocationTracker is the ingest pipeline as seen by the transports (HTTP
// handlers and the MQTT bridge).
type LocationTracker interface {
	TrackLocation(ctx context.Context, location models.Location) error
	GetLocationHistory(ctx context.Context, start, end time.Time) ([]models.Location, error)
}

// TrackingService orchestrates validate, persist and broadcast for incoming
// location samples, and serves bounded history queries.
type TrackingService struct {
	store       store.LocationStore
	broadcaster Broadcaster
	maxLookback time.Duration
	logger      zerolog.Logger

	// now is the validation clock, replaceable in tests.
	now func() time.Time
}

// NewTrackingService creates a TrackingService. A non-positive lookback falls
// back to DefaultMaxLookback.
func NewTrackingService(locationStore store.LocationStore, broadcaster Broadcaster, maxLookback time.Duration, logger zerolog.Logger) *TrackingService {
	if maxLookback <= 0 {
		maxLookback = DefaultMaxLookback
	}
	return &TrackingService{
		store:       locationStore,
		broadcaster: broadcaster,
		maxLookback: maxLookback,
		logger:      logger,
		now:         time.Now,
	}
}

// TrackLocation validates the sample, persists it and hands the serialized
// event to the broadcaster. Persistence happens before broadcast: a sample
// that was not durably stored is never represented to observers as accepted.
// Broadcast is fire-and-forget; delivery failures to individual observers are
// contained inside the hub and never fail this call.
func (t *TrackingService) TrackLocation(ctx context.Context, location models.Location) error {
	if err := location.Validate(t.now().UTC()); err != nil {
		t.logger.Debug().
			Err(err).
			Float64("latitude", location.Latitude).
			Float64("longitude", location.Longitude).
			Msg("Rejected location sample")
		return fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}

	if err := t.store.Insert(ctx, location); err != nil {
		t.logger.Error().Err(err).Msg("Failed to persist location sample")
		return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	payload, err := json.Marshal(location.Event())
	if err != nil {
		// The accepted sample is already durable; observers just miss this event.
		t.logger.Error().Err(err).Msg("Failed to serialize location event")
		return nil
	}
	t.broadcaster.Broadcast(payload)

	t.logger.Info().
		Float64("latitude", location.Latitude).
		Float64("longitude", location.Longitude).
		Time("timestamp", location.Timestamp).
		Msg("Location sample accepted")
	return nil
}

// GetLocationHistory validates the query bounds and delegates to the store.
// Both bounds must be set, end must not precede start, and the window must
// not exceed the maximum lookback.
func (t *TrackingService) GetLocationHistory(ctx context.Context, start, end time.Time) ([]models.Location, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, ErrInvalidRange
	}
	if end.Sub(start) > t.maxLookback {
		return nil, ErrRangeTooLarge
	}

	locations, err := t.store.QueryRange(ctx, start, end)
	if err != nil {
		t.logger.Error().
			Err(err).
			Time("start", start).
			Time("end", end).
			Msg("Failed to query location history")
		return nil, err
	}
	return locations, nil
}
