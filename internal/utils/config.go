package utils

import (
	"fmt"
	"time"

	"github.com/pawtrail/walk-tracker/pkg/file"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so configuration values like "5s" or "24h"
// parse from YAML.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the structure of the configuration file. Secrets (the
// InfluxDB token) are supplied through the environment, not this file.
type Config struct {
	Server struct {
		Port            int      `yaml:"port"`             // HTTP listen port
		ShutdownTimeout Duration `yaml:"shutdown_timeout"` // Grace period for in-flight requests on shutdown
	} `yaml:"server"`

	InfluxDB struct {
		URL          string   `yaml:"url"`            // InfluxDB server URL
		Org          string   `yaml:"org"`            // InfluxDB organization
		Bucket       string   `yaml:"bucket"`         // Bucket holding location samples
		Timeout      Duration `yaml:"timeout"`        // Per-call timeout for writes and range queries
		MaxQueryRows int      `yaml:"max_query_rows"` // Row cap for a single range query
	} `yaml:"influxdb"`

	Hub struct {
		SendTimeout Duration `yaml:"send_timeout"` // Per-connection write deadline during a broadcast
		Workers     int      `yaml:"workers"`      // Worker pool size for broadcast sends
		QueueSize   int      `yaml:"queue_size"`   // Bounded queue capacity for pending sends
	} `yaml:"hub"`

	Tracking struct {
		MaxLookback Duration `yaml:"max_lookback"` // Maximum span of a history query window
	} `yaml:"tracking"`

	MQTT struct {
		Enabled       bool   `yaml:"enabled"`        // Enable/disable the MQTT ingest bridge
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
		Topic         string `yaml:"topic"`          // Topic walker devices publish samples to
		QOS           int    `yaml:"qos"`            // MQTT QoS level for the subscription
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate; empty disables TLS
	} `yaml:"mqtt"`
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}
