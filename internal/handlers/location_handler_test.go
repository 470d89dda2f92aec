package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawtrail/walk-tracker/internal/handlers"
	"github.com/pawtrail/walk-tracker/internal/models"
	"github.com/pawtrail/walk-tracker/internal/services"
	"github.com/pawtrail/walk-tracker/tests/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLocationRouter(tracker services.LocationTracker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := handlers.NewLocationHandler(tracker, zerolog.Nop())
	router.POST("/api/v1/locations", handler.PostLocation)
	router.GET("/api/v1/locations/history", handler.GetHistory)
	return router
}

func TestLocationHandler_PostLocation_Success(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	mockTracker.On("TrackLocation", mock.Anything, mock.Anything).Return(nil)
	router := newLocationRouter(mockTracker)

	body := `{"latitude":37.7749,"longitude":-122.4194,"timestamp":"2025-06-01T08:30:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	expectedTimestamp, err := time.Parse(time.RFC3339, "2025-06-01T08:30:00Z")
	require.NoError(t, err)
	mockTracker.AssertCalled(t, "TrackLocation", mock.Anything,
		models.NewLocation(37.7749, -122.4194, expectedTimestamp))
}

func TestLocationHandler_PostLocation_MissingField(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	router := newLocationRouter(mockTracker)

	body := `{"latitude":37.7749,"timestamp":"2025-06-01T08:30:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTracker.AssertNotCalled(t, "TrackLocation", mock.Anything, mock.Anything)
}

func TestLocationHandler_PostLocation_BadTimestamp(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	router := newLocationRouter(mockTracker)

	body := `{"latitude":37.7749,"longitude":-122.4194,"timestamp":"yesterday"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTracker.AssertNotCalled(t, "TrackLocation", mock.Anything, mock.Anything)
}

func TestLocationHandler_PostLocation_InvalidSample(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	mockTracker.On("TrackLocation", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: %w", services.ErrInvalidLocation, models.ErrInvalidLatitude))
	router := newLocationRouter(mockTracker)

	body := `{"latitude":95.0,"longitude":0,"timestamp":"2025-06-01T08:30:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLocationHandler_PostLocation_PersistenceFailure(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	mockTracker.On("TrackLocation", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: %w", services.ErrPersistenceFailed, assert.AnError))
	router := newLocationRouter(mockTracker)

	body := `{"latitude":37.7749,"longitude":-122.4194,"timestamp":"2025-06-01T08:30:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLocationHandler_GetHistory_MissingParameters(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	router := newLocationRouter(mockTracker)

	for _, target := range []string{
		"/api/v1/locations/history",
		"/api/v1/locations/history?start_time=2025-06-01T08:00:00Z",
		"/api/v1/locations/history?end_time=2025-06-01T09:00:00Z",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "target %s", target)
	}
	mockTracker.AssertNotCalled(t, "GetLocationHistory", mock.Anything, mock.Anything, mock.Anything)
}

func TestLocationHandler_GetHistory_BadTimestamps(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	router := newLocationRouter(mockTracker)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/locations/history?start_time=notatime&end_time=2025-06-01T09:00:00Z", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockTracker.AssertNotCalled(t, "GetLocationHistory", mock.Anything, mock.Anything, mock.Anything)
}

func TestLocationHandler_GetHistory_RangeErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"invalid range", services.ErrInvalidRange},
		{"range too large", services.ErrRangeTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockTracker := new(mocks.MockLocationTracker)
			mockTracker.On("GetLocationHistory", mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tc.err)
			router := newLocationRouter(mockTracker)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet,
				"/api/v1/locations/history?start_time=2025-06-01T08:00:00Z&end_time=2025-06-01T09:00:00Z", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLocationHandler_GetHistory_StoreFailure(t *testing.T) {
	mockTracker := new(mocks.MockLocationTracker)
	mockTracker.On("GetLocationHistory", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)
	router := newLocationRouter(mockTracker)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/locations/history?start_time=2025-06-01T08:00:00Z&end_time=2025-06-01T09:00:00Z", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLocationHandler_GetHistory_ReturnsAscendingEvents(t *testing.T) {
	first, err := time.Parse(time.RFC3339, "2025-06-01T08:10:00Z")
	require.NoError(t, err)
	second, err := time.Parse(time.RFC3339, "2025-06-01T08:20:00Z")
	require.NoError(t, err)

	mockTracker := new(mocks.MockLocationTracker)
	mockTracker.On("GetLocationHistory", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Location{
			models.NewLocation(1.5, 2.5, first),
			models.NewLocation(3.5, 4.5, second),
		}, nil)
	router := newLocationRouter(mockTracker)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/locations/history?start_time=2025-06-01T08:00:00Z&end_time=2025-06-01T09:00:00Z", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var events []models.LocationEvent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "2025-06-01T08:10:00Z", events[0].Timestamp)
	assert.Equal(t, "2025-06-01T08:20:00Z", events[1].Timestamp)
	assert.Equal(t, 1.5, events[0].Latitude)
	assert.Equal(t, 4.5, events[1].Longitude)
}
