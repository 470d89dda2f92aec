package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockBroadcaster is a mock implementation of the services.Broadcaster interface
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(event []byte) {
	m.Called(event)
}
