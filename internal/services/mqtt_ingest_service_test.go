package services_test

import (
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pawtrail/walk-tracker/internal/models"
	"github.com/pawtrail/walk-tracker/internal/services"
	"github.com/pawtrail/walk-tracker/tests/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOKToken() *mocks.MockToken {
	token := new(mocks.MockToken)
	token.On("Wait").Return(true)
	token.On("Error").Return(nil)
	return token
}

// startIngestService subscribes the bridge and captures the message handler
// the broker would invoke.
func startIngestService(t *testing.T, tracker services.LocationTracker) (*services.MQTTIngestService, *pahomqtt.MessageHandler) {
	t.Helper()

	var handler pahomqtt.MessageHandler
	mockMQTT := new(mocks.MockMQTTClient)
	mockMQTT.On("Subscribe", "collars/location", byte(1), mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(pahomqtt.MessageHandler)
		}).
		Return(newOKToken())

	svc := services.NewMQTTIngestService("collars/location", 1, mockMQTT, tracker, zerolog.Nop())
	require.NoError(t, svc.Start())
	require.NotNil(t, handler)
	return svc, &handler
}

func TestMQTTIngestService_StartTwiceFails(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	svc, _ := startIngestService(t, mockTracker)

	err := svc.Start()
	assert.Error(t, err)
	assert.Equal(t, "mqtt ingest service is already running", err.Error())
}

func TestMQTTIngestService_JSONPayload(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	mockTracker.On("TrackLocation", mock.Anything, mock.Anything).Return(nil)
	_, handler := startIngestService(t, mockTracker)

	payload := []byte(`{"latitude":37.7749,"longitude":-122.4194,"timestamp":"2025-06-01T08:30:00Z"}`)
	(*handler)(nil, mocks.NewMockMessage("collars/location", payload))

	expectedTimestamp, err := time.Parse(time.RFC3339, "2025-06-01T08:30:00Z")
	require.NoError(t, err)
	mockTracker.AssertCalled(t, "TrackLocation", mock.Anything,
		models.NewLocation(37.7749, -122.4194, expectedTimestamp.UTC()))
}

func TestMQTTIngestService_NMEAPayload(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	mockTracker.On("TrackLocation", mock.Anything, mock.Anything).Return(nil)
	_, handler := startIngestService(t, mockTracker)

	payload := []byte("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47")
	(*handler)(nil, mocks.NewMockMessage("collars/location", payload))

	mockTracker.AssertNumberOfCalls(t, "TrackLocation", 1)
	location := mockTracker.Calls[0].Arguments.Get(1).(models.Location)
	assert.InDelta(t, 48.1173, location.Latitude, 0.001)
	assert.InDelta(t, 11.5167, location.Longitude, 0.001)
	assert.WithinDuration(t, time.Now().UTC(), location.Timestamp, 5*time.Second)
}

func TestMQTTIngestService_DropsGarbagePayload(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	_, handler := startIngestService(t, mockTracker)

	(*handler)(nil, mocks.NewMockMessage("collars/location", []byte("not a location")))
	(*handler)(nil, mocks.NewMockMessage("collars/location", []byte("")))

	mockTracker.AssertNotCalled(t, "TrackLocation", mock.Anything, mock.Anything)
}

func TestMQTTIngestService_DropsPayloadWithMissingFields(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	_, handler := startIngestService(t, mockTracker)

	payloads := [][]byte{
		// Misspelled coordinate keys must not decode to a (0,0) fix.
		[]byte(`{"lat":37.7749,"lng":-122.4194,"timestamp":"2025-06-01T08:30:00Z"}`),
		[]byte(`{"longitude":-122.4194,"timestamp":"2025-06-01T08:30:00Z"}`),
		[]byte(`{"latitude":37.7749,"timestamp":"2025-06-01T08:30:00Z"}`),
		[]byte(`{"latitude":37.7749,"longitude":-122.4194}`),
		[]byte(`{"latitude":37.7749,"longitude":-122.4194,"timestamp":"yesterday"}`),
	}
	for _, payload := range payloads {
		(*handler)(nil, mocks.NewMockMessage("collars/location", payload))
	}

	mockTracker.AssertNotCalled(t, "TrackLocation", mock.Anything, mock.Anything)
}

func TestMQTTIngestService_StopUnsubscribes(t *testing.T) {
	var handler pahomqtt.MessageHandler
	mockMQTT := new(mocks.MockMQTTClient)
	mockMQTT.On("Subscribe", "collars/location", byte(1), mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(pahomqtt.MessageHandler)
		}).
		Return(newOKToken())
	mockMQTT.On("Unsubscribe", []string{"collars/location"}).Return(newOKToken())

	mockTracker := new(mocks.MockLocationTracker)
	svc := services.NewMQTTIngestService("collars/location", 1, mockMQTT, mockTracker, zerolog.Nop())

	require.NoError(t, svc.Start())
	require.NotNil(t, handler)
	require.NoError(t, svc.Stop())

	// Stopping again fails
	err := svc.Stop()
	assert.Error(t, err)
	assert.Equal(t, "mqtt ingest service is not running", err.Error())
	mockMQTT.AssertExpectations(t)
}
