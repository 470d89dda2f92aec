package store

import (
	"context"
	"errors"
	"time"

	"github.com/pawtrail/walk-tracker/internal/models"
)

// ErrStoreUnavailable indicates the backing store could not be reached within
// the configured timeout. Callers should treat it as transient and retryable.
var ErrStoreUnavailable = errors.New("location store is unavailable")

// LocationStore persists location samples and answers bounded time-range
// queries over them.
type LocationStore interface {
	// Insert durably appends one sample.
	Insert(ctx context.Context, location models.Location) error

	// QueryRange returns the samples whose timestamp falls within
	// [start, end], ordered ascending by timestamp. The implementation caps
	// the number of rows returned; callers needing more page by narrowing
	// the range.
	QueryRange(ctx context.Context, start, end time.Time) ([]models.Location, error)

	// Close releases the underlying client.
	Close()
}
