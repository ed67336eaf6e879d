package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-analysis/internal/domain"
	"github.com/couchcryptid/weather-analysis/internal/observability"
	"github.com/couchcryptid/weather-analysis/internal/pipeline"
	"github.com/couchcryptid/weather-analysis/internal/report"
)

// --- mocks ---

type mockLoader struct {
	table *domain.RawTable
	err   error
}

func (m *mockLoader) Load(_ context.Context) (*domain.RawTable, error) { return m.table, m.err }
func (m *mockLoader) Path() string                                    { return "weather_data.csv" }

type mockWriter struct {
	written *domain.Table
	err     error
}

func (m *mockWriter) Write(_ context.Context, t *domain.Table) error {
	if m.err != nil {
		return m.err
	}
	m.written = t
	return nil
}

func (m *mockWriter) Path() string { return "cleaned_weather_data.csv" }

type mockCharts struct {
	calls int
	err   error
}

func (m *mockCharts) Render(_ context.Context, _ *domain.Table, _ []domain.MonthlyTotal) ([]domain.Artifact, error) {
	m.calls++
	if m.err != nil {
		return []domain.Artifact{{Name: "Time Series Plot", Path: "plots/a.png"}}, m.err
	}
	return []domain.Artifact{
		{Name: "Time Series Plot", Path: "plots/a.png"},
		{Name: "Humidity Histogram Plot", Path: "plots/b.png"},
	}, nil
}

type mockSink struct {
	name     string
	err      error
	received []domain.Analysis
}

func (m *mockSink) Name() string { return m.name }

func (m *mockSink) Export(_ context.Context, a domain.Analysis) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.received = append(m.received, a)
	return fmt.Sprintf("exported to %s.", m.name), nil
}

func newTestMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func raw(date string, temp, rain, hum, wind float64, city string) domain.RawRecord {
	return domain.RawRecord{Date: date, Temperature: temp, Rainfall: rain, Humidity: hum, WindSpeed: wind, City: city}
}

func sampleRaw() *domain.RawTable {
	nan := math.NaN()
	return &domain.RawTable{Records: []domain.RawRecord{
		raw("2023-01-01", 5, nan, 80, 10, "Oslo"),
		raw("2023-01-01", 5, nan, 80, 10, "Oslo"),
		raw("2023-07-15", 30, 2, nan, 8, "Rome"),
		raw("2023-04-10", 18, 0, 60, 12, "Rome"),
	}}
}

func freezeClock(t *testing.T) {
	t.Helper()
	report.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)))
	t.Cleanup(func() { report.SetClock(nil) })
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	freezeClock(t)
	reportPath := filepath.Join(t.TempDir(), "report.txt")
	writer := &mockWriter{}
	charts := &mockCharts{}
	sink := &mockSink{name: "kafka"}
	metrics := newTestMetrics()

	p := pipeline.New(&mockLoader{table: sampleRaw()}, writer, charts, []pipeline.Sink{sink}, reportPath, discardLogger(), metrics)
	require.Error(t, p.CheckReadiness(context.Background()))

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, writer.written)
	assert.Equal(t, 3, writer.written.Len())
	assert.Equal(t, 1, charts.calls)
	require.Len(t, sink.received, 1)
	assert.Equal(t, res.RunID, sink.received[0].RunID)
	assert.Equal(t, 1, res.Stats.DuplicatesRemoved)
	assert.Equal(t, "Rome", res.Summary.Highest.City)
	assert.Zero(t, res.ExportErrors)
	require.NoError(t, res.ReportErr)
	require.NoError(t, p.CheckReadiness(context.Background()))

	var titles []string
	for _, s := range res.Report.Sections() {
		if s.Title != "" {
			titles = append(titles, s.Title)
		}
	}
	want := []string{
		report.TitleRawSummary,
		report.TitleMissing,
		report.TitleCleanedSummary,
		report.TitleExtremes,
		report.TitleCities,
		report.TitleCorrelation,
		report.TitleMonthly,
		report.TitleSeasonal,
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("section order mismatch (-want +got):\n%s", diff)
	}

	rendered := res.Report.String()
	divider := strings.Index(rendered, report.InsightsDivider)
	require.NotEqual(t, -1, divider, "insights divider missing")
	assert.Less(t, strings.Index(rendered, report.TitleCleanedSummary), divider)
	assert.Less(t, divider, strings.Index(rendered, report.TitleExtremes))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Generated on: 2024-04-26 15:10:00")
	assert.Contains(t, text, "Duplicate rows removed: 1")
	assert.Contains(t, text, "Cleaned data exported to 'cleaned_weather_data.csv'.")
	assert.Contains(t, text, "Humidity Histogram Plot saved to 'plots/b.png'.")
	assert.Contains(t, text, "exported to kafka.")
	assert.NotContains(t, text, "Analysis report successfully generated")
	assert.Contains(t, res.Report.String(), "Analysis report successfully generated and saved to '"+reportPath+"'.")

	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.RowsLoaded))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RowsCleaned))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DuplicatesRemoved))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ValuesImputed.WithLabelValues(domain.ColRainfall)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ArtifactsWritten.WithLabelValues("chart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LastRunSuccess))
}

func TestPipeline_Run_InputNotFound(t *testing.T) {
	loadErr := fmt.Errorf("open input: %w", &fs.PathError{Op: "open", Path: "x.csv", Err: fs.ErrNotExist})
	writer := &mockWriter{}
	metrics := newTestMetrics()

	p := pipeline.New(&mockLoader{err: loadErr}, writer, &mockCharts{}, nil, filepath.Join(t.TempDir(), "r.txt"), discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, pipeline.ErrInputNotFound)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, 1, strings.Count(err.Error(), pipeline.ErrInputNotFound.Error()))
	assert.Nil(t, writer.written)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.LastRunSuccess))
}

func TestPipeline_Run_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		loader  *mockLoader
		writer  *mockWriter
		charts  *mockCharts
		wantErr string
		wantIs  error
	}{
		{
			name:    "empty input",
			loader:  &mockLoader{table: &domain.RawTable{}},
			writer:  &mockWriter{},
			charts:  &mockCharts{},
			wantErr: "clean: no observations",
			wantIs:  domain.ErrNoObservations,
		},
		{
			name:    "bad date",
			loader:  &mockLoader{table: &domain.RawTable{Records: []domain.RawRecord{raw("2023-01-01", 1, 0, 1, 1, "A"), raw("soon", 1, 0, 1, 1, "A")}}},
			writer:  &mockWriter{},
			charts:  &mockCharts{},
			wantErr: "row 2",
		},
		{
			name:    "cleaned table write",
			loader:  &mockLoader{table: sampleRaw()},
			writer:  &mockWriter{err: errors.New("disk full")},
			charts:  &mockCharts{},
			wantErr: "write cleaned table: disk full",
		},
		{
			name:    "chart render",
			loader:  &mockLoader{table: sampleRaw()},
			writer:  &mockWriter{},
			charts:  &mockCharts{err: errors.New("no font")},
			wantErr: "render charts: no font",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reportPath := filepath.Join(t.TempDir(), "report.txt")
			p := pipeline.New(tt.loader, tt.writer, tt.charts, nil, reportPath, discardLogger(), newTestMetrics())

			_, err := p.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.NoFileExists(t, reportPath)
			assert.Error(t, p.CheckReadiness(context.Background()))
		})
	}
}

func TestPipeline_Run_SinkFailureIsRecoverable(t *testing.T) {
	freezeClock(t)
	reportPath := filepath.Join(t.TempDir(), "report.txt")
	failing := &mockSink{name: "influx", err: errors.New("connection refused")}
	ok := &mockSink{name: "xlsx"}
	metrics := newTestMetrics()

	p := pipeline.New(&mockLoader{table: sampleRaw()}, &mockWriter{}, &mockCharts{}, []pipeline.Sink{failing, ok}, reportPath, discardLogger(), metrics)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.ExportErrors)
	assert.Len(t, ok.received, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExportErrors.WithLabelValues("influx")))

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ERROR: influx export failed. connection refused")
	assert.Contains(t, string(data), "exported to xlsx.")
}

func TestPipeline_Run_ReportWriteFailureIsRecoverable(t *testing.T) {
	freezeClock(t)
	reportPath := filepath.Join(t.TempDir(), "missing", "report.txt")
	metrics := newTestMetrics()

	p := pipeline.New(&mockLoader{table: sampleRaw()}, &mockWriter{}, &mockCharts{}, nil, reportPath, discardLogger(), metrics)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Error(t, res.ReportErr)

	sections := res.Report.Sections()
	last := sections[len(sections)-1]
	assert.True(t, strings.HasPrefix(last.Body, "ERROR: Failed to write report file."))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LastRunSuccess))
	require.NoError(t, p.CheckReadiness(context.Background()))
}
