package mocks

import (
	"context"
	"time"

	"github.com/pawtrail/walk-tracker/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockLocationTracker is a mock implementation of the services.LocationTracker interface
type MockLocationTracker struct {
	mock.Mock
}

func (m *MockLocationTracker) TrackLocation(ctx context.Context, location models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationTracker) GetLocationHistory(ctx context.Context, start, end time.Time) ([]models.Location, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}
