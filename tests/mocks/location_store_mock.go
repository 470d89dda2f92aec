package mocks

import (
	"context"
	"time"

	"github.com/pawtrail/walk-tracker/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockLocationStore is a mock implementation of the store.LocationStore interface
type MockLocationStore struct {
	mock.Mock
}

func (m *MockLocationStore) Insert(ctx context.Context, location models.Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockLocationStore) QueryRange(ctx context.Context, start, end time.Time) ([]models.Location, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockLocationStore) Close() {
	m.Called()
}
