package models

import (
	"errors"
	"time"
)

// Validation errors returned by Location.Validate.
var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
	ErrInvalidTimestamp = errors.New("timestamp must be set and must not be in the future")
	ErrStaleTimestamp   = errors.New("timestamp is older than the maximum accepted sample age")
)

// MaxSampleAge bounds how far in the past a sample's timestamp may be.
// Samples older than this are rejected at validation time.
const MaxSampleAge = 24 * time.Hour

// Location is a single immutable GPS sample submitted by a walker's device.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLocation builds a Location from its three fields. The result is not
// validated; callers run Validate before acting on it.
func NewLocation(latitude, longitude float64, timestamp time.Time) Location {
	return Location{
		Latitude:  latitude,
		Longitude: longitude,
		Timestamp: timestamp,
	}
}

// Validate checks the sample against the coordinate ranges and the timestamp
// rules. It is a pure function of the sample's fields and the supplied clock
// reading; every entry point that accepts external input must call it.
func (l Location) Validate(now time.Time) error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return ErrInvalidLatitude
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return ErrInvalidLongitude
	}
	if l.Timestamp.IsZero() || l.Timestamp.After(now) {
		return ErrInvalidTimestamp
	}
	if now.Sub(l.Timestamp) > MaxSampleAge {
		return ErrStaleTimestamp
	}
	return nil
}

// LocationEvent is the wire representation of an accepted sample, pushed to
// every realtime observer and returned by the history endpoint.
type LocationEvent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

// Event converts the sample to its wire representation with the timestamp in
// canonical RFC3339 UTC form.
func (l Location) Event() LocationEvent {
	return LocationEvent{
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Timestamp: l.Timestamp.UTC().Format(time.RFC3339),
	}
}
