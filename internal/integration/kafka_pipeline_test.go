//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weather-analysis/internal/adapter/chart"
	"github.com/couchcryptid/weather-analysis/internal/adapter/csvfile"
	"github.com/couchcryptid/weather-analysis/internal/adapter/kafka"
	"github.com/couchcryptid/weather-analysis/internal/config"
	"github.com/couchcryptid/weather-analysis/internal/observability"
	"github.com/couchcryptid/weather-analysis/internal/pipeline"
)

const testTopic = "test-cleaned-observations"

const inputCSV = `Date,Temperature_C,Rainfall_mm,Humidity_perc,WindSpeed_kmh,City
2023-01-01,5,,80,10,Oslo
2023-01-01,5,,80,10,Oslo
2023-07-15,30,2,,8,Rome
2023-04-10,18,0,60,12,Rome
`

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("weather-analysis-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// TestPipelinePublishesToKafka runs the whole job against a real broker and
// reads the cleaned observations back from the topic.
func TestPipelinePublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	dir := t.TempDir()
	input := filepath.Join(dir, "weather_data.csv")
	require.NoError(t, os.WriteFile(input, []byte(inputCSV), 0o600))

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(
		csvfile.NewReader(input),
		csvfile.NewWriter(filepath.Join(dir, "cleaned.csv")),
		chart.NewRenderer(filepath.Join(dir, "plots")),
		[]pipeline.Sink{writer},
		filepath.Join(dir, "report.txt"),
		discardLogger(),
		observability.NewMetricsForTesting(),
	)

	res, err := p.Run(ctx)
	require.NoError(t, err)
	require.Zero(t, res.ExportErrors)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var got []kafka.ObservationMessage
	keys := map[string]bool{}
	for len(got) < 3 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, res.RunID, headers["run_id"])

		var obs kafka.ObservationMessage
		require.NoError(t, json.Unmarshal(msg.Value, &obs))
		assert.Equal(t, obs.Season, headers["season"])
		keys[string(msg.Key)] = true
		got = append(got, obs)
	}

	assert.True(t, keys["Oslo"])
	assert.True(t, keys["Rome"])
	for _, o := range got {
		require.NotNil(t, o.Rainfall)
		require.NotNil(t, o.Humidity)
	}
}
