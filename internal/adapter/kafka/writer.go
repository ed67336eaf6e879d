// Package kafka publishes cleaned observations to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-analysis/internal/config"
	"github.com/couchcryptid/weather-analysis/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per cleaned observation.
// It implements pipeline.Sink.
type Writer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, topic: cfg.KafkaTopic, logger: logger}
}

// Name identifies the sink in logs, metrics and the report.
func (w *Writer) Name() string { return "kafka" }

// Export serializes every observation and publishes them in a single
// WriteMessages call. Messages are keyed by city so each city lands on a
// stable partition and its observations keep their table order.
func (w *Writer) Export(ctx context.Context, a domain.Analysis) (string, error) {
	if a.Table.Len() == 0 {
		return "", nil
	}
	msgs := make([]kafkago.Message, len(a.Table.Observations))
	for i, o := range a.Table.Observations {
		msg, err := serializeToMessage(o, a.Table.ExtraColumns, a.RunID)
		if err != nil {
			return "", err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return "", fmt.Errorf("publish observations: %w", err)
	}
	w.logger.Debug("observations published", "topic", w.topic, "count", len(msgs))
	return fmt.Sprintf("%d observations published to Kafka topic '%s'.", len(msgs), w.topic), nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// ObservationMessage is the JSON payload of a published observation.
// Values that are missing after cleaning are null.
type ObservationMessage struct {
	Date        string            `json:"date"`
	City        string            `json:"city"`
	Temperature *float64          `json:"temperature_c"`
	Rainfall    *float64          `json:"rainfall_mm"`
	Humidity    *float64          `json:"humidity_perc"`
	WindSpeed   *float64          `json:"windspeed_kmh"`
	MonthName   string            `json:"month_name"`
	Season      string            `json:"season"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(o domain.Observation, extraColumns []string, runID string) (kafkago.Message, error) {
	body := ObservationMessage{
		Date:        o.Date.Format(time.RFC3339),
		City:        o.City,
		Temperature: nullable(o.Temperature),
		Rainfall:    nullable(o.Rainfall),
		Humidity:    nullable(o.Humidity),
		WindSpeed:   nullable(o.WindSpeed),
		MonthName:   o.MonthName,
		Season:      string(o.Season),
	}
	if len(extraColumns) > 0 {
		body.Extra = make(map[string]string, len(extraColumns))
		for i, name := range extraColumns {
			if i < len(o.Extra) {
				body.Extra[name] = o.Extra[i]
			}
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(o.City),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "season", Value: []byte(o.Season)},
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
