package store

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/pawtrail/walk-tracker/internal/models"
	"github.com/rs/zerolog"
)

const (
	// measurement is the InfluxDB measurement every sample is written under.
	measurement = "walk_location"

	defaultTimeout = 5 * time.Second
	defaultMaxRows = 1000
)

// InfluxLocationStore implements LocationStore on top of an InfluxDB bucket.
// Samples are written as single points with the sample timestamp as the point
// time, which gives the store its timestamp index for range scans.
type InfluxLocationStore struct {
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
	client   influxdb2.Client
	bucket   string
	timeout  time.Duration
	maxRows  int
	logger   zerolog.Logger
}

// NewInfluxLocationStore creates a store bound to the given org and bucket.
// A non-positive timeout or row cap falls back to the defaults.
func NewInfluxLocationStore(client influxdb2.Client, org, bucket string, timeout time.Duration, maxRows int, logger zerolog.Logger) *InfluxLocationStore {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	return &InfluxLocationStore{
		writeAPI: client.WriteAPIBlocking(org, bucket),
		queryAPI: client.QueryAPI(org),
		client:   client,
		bucket:   bucket,
		timeout:  timeout,
		maxRows:  maxRows,
		logger:   logger,
	}
}

// Insert appends one sample as a single point write. Write failures of any
// kind surface as ErrStoreUnavailable so the caller can report them as
// transient.
func (s *InfluxLocationStore) Insert(ctx context.Context, location models.Location) error {
	point := influxdb2.NewPointWithMeasurement(measurement).
		AddField("latitude", location.Latitude).
		AddField("longitude", location.Longitude).
		SetTime(location.Timestamp.UTC())

	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.writeAPI.WritePoint(writeCtx, point); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write location point")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// QueryRange runs a Flux range query and maps the pivoted rows back to
// samples. Range-contract checks (bounds set, end >= start, lookback limit)
// are the service layer's responsibility; this method only bounds the result
// cardinality.
func (s *InfluxLocationStore) QueryRange(ctx context.Context, start, end time.Time) ([]models.Location, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.queryAPI.Query(queryCtx, s.rangeQuery(start, end))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to query location range")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var locations []models.Location
	for result.Next() {
		values := result.Record().Values()
		latitude, latOK := values["latitude"].(float64)
		longitude, lonOK := values["longitude"].(float64)
		if !latOK || !lonOK {
			s.logger.Warn().Interface("row", values).Msg("Skipping malformed location row")
			continue
		}
		locations = append(locations, models.Location{
			Latitude:  latitude,
			Longitude: longitude,
			Timestamp: result.Record().Time(),
		})
	}
	if err := result.Err(); err != nil {
		s.logger.Error().Err(err).Msg("Location range query failed mid-stream")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return locations, nil
}

// rangeQuery builds the Flux query for [start, end]. Flux treats the stop
// bound as exclusive, so it is pushed forward by one nanosecond to keep the
// end bound inclusive.
func (s *InfluxLocationStore) rangeQuery(start, end time.Time) string {
	return fmt.Sprintf(`
		from(bucket: %q)
		|> range(start: %s, stop: %s)
		|> filter(fn: (r) => r._measurement == %q)
		|> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
		|> sort(columns: ["_time"])
		|> limit(n: %d)
	`, s.bucket,
		start.UTC().Format(time.RFC3339Nano),
		end.UTC().Add(time.Nanosecond).Format(time.RFC3339Nano),
		measurement,
		s.maxRows)
}

// Close shuts down the underlying InfluxDB client.
func (s *InfluxLocationStore) Close() {
	s.client.Close()
}
