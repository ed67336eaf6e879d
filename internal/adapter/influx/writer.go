// Package influx writes cleaned observations to InfluxDB as points.
package influx

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	client "github.com/influxdata/influxdb/client/v2"

	"github.com/couchcryptid/weather-analysis/internal/config"
	"github.com/couchcryptid/weather-analysis/internal/domain"
)

const pingTimeout = time.Second

// Writer stores one point per observation, tagged by city and season.
// It implements pipeline.Sink.
type Writer struct {
	client      client.Client
	database    string
	measurement string
	logger      *slog.Logger
}

// NewWriter creates an InfluxDB HTTP client for the configured database.
func NewWriter(cfg *config.Config, logger *slog.Logger) (*Writer, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.InfluxAddr,
		Username: cfg.InfluxUser,
		Password: cfg.InfluxPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("create influx client: %w", err)
	}
	return &Writer{
		client:      c,
		database:    cfg.InfluxDB,
		measurement: cfg.InfluxMeasurement,
		logger:      logger,
	}, nil
}

func (w *Writer) Name() string { return "influx" }

// Export pings the server and writes all observations as a single batch.
func (w *Writer) Export(_ context.Context, a domain.Analysis) (string, error) {
	bp, err := buildBatch(w.database, w.measurement, a)
	if err != nil {
		return "", err
	}
	if _, _, err := w.client.Ping(pingTimeout); err != nil {
		return "", fmt.Errorf("ping influx: %w", err)
	}
	if err := w.client.Write(bp); err != nil {
		return "", fmt.Errorf("write points: %w", err)
	}
	n := len(bp.Points())
	w.logger.Debug("points written", "database", w.database, "count", n)
	return fmt.Sprintf("%d points written to InfluxDB database '%s'.", n, w.database), nil
}

func (w *Writer) Close() error {
	return w.client.Close()
}

func buildBatch(database, measurement string, a domain.Analysis) (client.BatchPoints, error) {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  database,
		Precision: "s",
	})
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	for _, o := range a.Table.Observations {
		p, err := newPoint(measurement, o, a.RunID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			bp.AddPoint(p)
		}
	}
	return bp, nil
}

// newPoint returns nil when the observation has no numeric values to store.
func newPoint(measurement string, o domain.Observation, runID string) (*client.Point, error) {
	tags := map[string]string{
		"city":   o.City,
		"season": string(o.Season),
	}
	if runID != "" {
		tags["run_id"] = runID
	}

	fields := make(map[string]interface{}, 4)
	for name, v := range map[string]float64{
		"temperature": o.Temperature,
		"rainfall":    o.Rainfall,
		"humidity":    o.Humidity,
		"wind":        o.WindSpeed,
	} {
		if !math.IsNaN(v) {
			fields[name] = v
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}

	p, err := client.NewPoint(measurement, tags, fields, o.Date)
	if err != nil {
		return nil, fmt.Errorf("build point for %s on %s: %w", o.City, o.Date.Format("2006-01-02"), err)
	}
	return p, nil
}
