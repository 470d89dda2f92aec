package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pawtrail/walk-tracker/internal/models"
	"github.com/pawtrail/walk-tracker/pkg/gps"
	"github.com/pawtrail/walk-tracker/pkg/mqtt"
	"github.com/rs/zerolog"
)

// trackTimeout bounds the persist path for one bridged sample.
const trackTimeout = 10 * time.Second

// MQTTIngestService bridges walker collar hardware into the ingest pipeline.
// It subscribes to a single topic and accepts either the JSON wire payload or
// a raw NMEA $GPGGA sentence, feeding every decoded sample through the same
// validate/persist/broadcast path as the HTTP endpoint.
type MQTTIngestService struct {
	// Configuration fields
	topic string
	qos   int

	// Dependencies
	mqttClient mqtt.MQTTClient
	tracker    LocationTracker
	logger     zerolog.Logger

	// Internal state management
	running bool
}

// NewMQTTIngestService creates a new MQTTIngestService instance with the provided configuration.
func NewMQTTIngestService(topic string, qos int, mqttClient mqtt.MQTTClient, tracker LocationTracker, logger zerolog.Logger) *MQTTIngestService {
	return &MQTTIngestService{
		topic:      topic,
		qos:        qos,
		mqttClient: mqttClient,
		tracker:    tracker,
		logger:     logger,
		running:    false,
	}
}

// Start subscribes to the configured topic and begins forwarding samples.
func (m *MQTTIngestService) Start() error {
	if m.running {
		m.logger.Warn().Msg("MQTTIngestService is already running")
		return errors.New("mqtt ingest service is already running")
	}

	token := m.mqttClient.Subscribe(m.topic, byte(m.qos), m.handleMessage)
	if token.Wait() && token.Error() != nil {
		m.logger.Error().Err(token.Error()).Str("topic", m.topic).Msg("Failed to subscribe to ingest topic")
		return token.Error()
	}

	m.running = true
	m.logger.Info().
		Str("topic", m.topic).
		Int("qos", m.qos).
		Msg("MQTTIngestService started")
	return nil
}

// Stop unsubscribes from the ingest topic.
func (m *MQTTIngestService) Stop() error {
	if !m.running {
		m.logger.Warn().Msg("MQTTIngestService is not running")
		return errors.New("mqtt ingest service is not running")
	}

	token := m.mqttClient.Unsubscribe(m.topic)
	if token.Wait() && token.Error() != nil {
		m.logger.Error().Err(token.Error()).Str("topic", m.topic).Msg("Failed to unsubscribe from ingest topic")
		return token.Error()
	}

	m.running = false
	m.logger.Info().Msg("MQTTIngestService stopped")
	return nil
}

// handleMessage decodes one device payload and pushes it through the ingest
// pipeline. Malformed payloads and rejected samples are logged and dropped;
// the broker is never asked to redeliver them.
func (m *MQTTIngestService) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	location, err := m.decodePayload(msg.Payload())
	if err != nil {
		m.logger.Warn().
			Err(err).
			Str("topic", msg.Topic()).
			Msg("Dropping undecodable device payload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
	defer cancel()

	if err := m.tracker.TrackLocation(ctx, location); err != nil {
		m.logger.Warn().
			Err(err).
			Str("topic", msg.Topic()).
			Msg("Bridged location sample was not accepted")
	}
}

// devicePayload mirrors the JSON wire contract for bridged samples. Pointer
// fields make a missing coordinate distinguishable from an explicit zero, so
// a payload with absent or misspelled keys is dropped instead of decoding to
// latitude 0, longitude 0.
type devicePayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp string   `json:"timestamp"`
}

// decodePayload accepts either the JSON wire format or a raw NMEA GGA
// sentence. GGA sentences carry no date, so bridged fixes are stamped with
// the receive time.
func (m *MQTTIngestService) decodePayload(payload []byte) (models.Location, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return models.Location{}, errors.New("empty payload")
	}

	if trimmed[0] == '$' {
		fix, err := gps.ParseGGA(string(trimmed))
		if err != nil {
			return models.Location{}, fmt.Errorf("parse NMEA sentence: %w", err)
		}
		return models.NewLocation(fix.Latitude, fix.Longitude, time.Now().UTC()), nil
	}

	var req devicePayload
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return models.Location{}, fmt.Errorf("parse JSON payload: %w", err)
	}
	if req.Latitude == nil || req.Longitude == nil || req.Timestamp == "" {
		return models.Location{}, errors.New("payload is missing latitude, longitude or timestamp")
	}
	timestamp, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return models.Location{}, fmt.Errorf("parse payload timestamp: %w", err)
	}
	return models.NewLocation(*req.Latitude, *req.Longitude, timestamp), nil
}
