package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus gauges, counters, and histograms for an analysis run.
type Metrics struct {
	RowsLoaded        prometheus.Gauge
	RowsCleaned       prometheus.Gauge
	DuplicatesRemoved prometheus.Gauge
	ValuesImputed     *prometheus.GaugeVec // labels: column={Rainfall_mm,Humidity_perc}

	StageDuration    *prometheus.HistogramVec // labels: stage={load,clean,summarize,export,report}
	ArtifactsWritten *prometheus.CounterVec   // labels: kind={cleaned_csv,chart,report,kafka,influx,parquet,xlsx}
	ExportErrors     *prometheus.CounterVec   // labels: target

	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all run metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_analysis",
			Name:      "rows_loaded",
			Help:      "Rows read from the input table in the last run.",
		}),
		RowsCleaned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_analysis",
			Name:      "rows_cleaned",
			Help:      "Rows remaining after cleaning in the last run.",
		}),
		DuplicatesRemoved: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_analysis",
			Name:      "duplicates_removed",
			Help:      "Exact duplicate rows dropped in the last run.",
		}),
		ValuesImputed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "weather_analysis",
			Name:      "values_imputed",
			Help:      "Null cells filled during cleaning, by column.",
		}, []string{"column"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_analysis",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		ArtifactsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_analysis",
			Name:      "artifacts_written_total",
			Help:      "Output artifacts written, by kind.",
		}, []string{"kind"}),
		ExportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_analysis",
			Name:      "export_errors_total",
			Help:      "Recoverable export failures, by target.",
		}, []string{"target"}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_analysis",
			Name:      "last_run_success",
			Help:      "1 when the last run completed, 0 when it failed.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_analysis",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsLoaded,
		m.RowsCleaned,
		m.DuplicatesRemoved,
		m.ValuesImputed,
		m.StageDuration,
		m.ArtifactsWritten,
		m.ExportErrors,
		m.LastRunSuccess,
		m.LastRunTimestamp,
	}
}

// Gatherer returns the registry the metrics were registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry != nil {
		return m.registry
	}
	return prometheus.DefaultGatherer
}

// WriteTextfile writes the current metric values in the text exposition
// format, for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Gatherer()); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
