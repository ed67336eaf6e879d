package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/weather-analysis/internal/domain"
	"github.com/couchcryptid/weather-analysis/internal/observability"
	"github.com/couchcryptid/weather-analysis/internal/report"
)

// ErrInputNotFound is returned when the input file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// Loader reads the raw observation table.
type Loader interface {
	Load(ctx context.Context) (*domain.RawTable, error)
	Path() string
}

// TableWriter persists the cleaned table.
type TableWriter interface {
	Write(ctx context.Context, t *domain.Table) error
	Path() string
}

// ChartRenderer draws the charts for a cleaned table.
type ChartRenderer interface {
	Render(ctx context.Context, t *domain.Table, monthly []domain.MonthlyTotal) ([]domain.Artifact, error)
}

// Sink is an optional export target. Export returns a status line for the report.
type Sink interface {
	Name() string
	Export(ctx context.Context, a domain.Analysis) (string, error)
}

// Result describes a completed run.
type Result struct {
	RunID        string
	Report       report.Report
	Stats        domain.CleanStats
	Summary      domain.Summary
	Charts       []domain.Artifact
	ExportErrors int
	ReportErr    error
}

// Pipeline runs load, clean, summarize, export and report once.
type Pipeline struct {
	loader     Loader
	writer     TableWriter
	charts     ChartRenderer
	sinks      []Sink
	reportPath string
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
	newRunID   func() string
}

// New creates a Pipeline with the given stages and observability.
func New(l Loader, w TableWriter, c ChartRenderer, sinks []Sink, reportPath string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:     l,
		writer:     w,
		charts:     c,
		sinks:      sinks,
		reportPath: reportPath,
		logger:     logger,
		metrics:    metrics,
		newRunID:   uuid.NewString,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("analysis has not completed")
	}
	return nil
}

// Run executes the whole job. Fatal failures are returned; report and sink
// failures are logged, recorded in the report and counted.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: p.newRunID()}
	logger := p.logger.With("run_id", res.RunID)
	logger.Info("analysis started", "input", p.loader.Path())

	p.metrics.LastRunSuccess.Set(0)
	defer func() { p.metrics.LastRunTimestamp.SetToCurrentTime() }()

	var raw *domain.RawTable
	err := p.stage("load", func() (err error) {
		raw, err = p.loader.Load(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%w: %w", ErrInputNotFound, err)
		}
		return res, fmt.Errorf("load input: %w", err)
	}
	p.metrics.RowsLoaded.Set(float64(len(raw.Records)))
	logger.Info("input loaded", "rows", len(raw.Records), "extra_columns", len(raw.ExtraColumns))

	rep := report.New(res.RunID).
		Append(report.TitleRawSummary, report.DescribeTable(domain.DescribeRaw(raw))).
		Append(report.TitleMissing, report.MissingTable(domain.MissingCounts(raw)))

	var cleaned *domain.Table
	err = p.stage("clean", func() (err error) {
		cleaned, res.Stats, err = domain.Clean(raw)
		return err
	})
	if err != nil {
		return res, fmt.Errorf("clean: %w", err)
	}
	p.recordClean(res.Stats)
	logger.Info("data cleaned",
		"rows", res.Stats.RowsOut,
		"duplicates_removed", res.Stats.DuplicatesRemoved,
		"rainfall_imputed", res.Stats.RainfallImputed,
		"humidity_imputed", res.Stats.HumidityImputed,
		"humidity_fill", res.Stats.HumidityMean,
	)
	rep = rep.Status("%s", report.DuplicatesLine(res.Stats.DuplicatesRemoved))

	err = p.stage("summarize", func() (err error) {
		res.Summary, err = domain.Summarize(cleaned)
		return err
	})
	if err != nil {
		return res, fmt.Errorf("summarize: %w", err)
	}
	s := res.Summary
	rep = rep.
		Append(report.TitleCleanedSummary, report.DescribeTable(s.Cleaned)).
		Status("%s", report.InsightsDivider).
		Append(report.TitleExtremes, report.ExtremesText(s.Highest, s.Lowest)).
		Append(report.TitleCities, report.CityTable(s.Cities)).
		Append(report.TitleCorrelation, report.CorrelationTable(s.Correlation)).
		Append(report.TitleMonthly, report.MonthlyTable(s.Monthly)).
		Append(report.TitleSeasonal, report.SeasonalTable(s.Seasonal))

	err = p.stage("export", func() error {
		var err error
		rep, err = p.export(ctx, logger, &res, cleaned, rep)
		return err
	})
	if err != nil {
		res.Report = rep
		return res, err
	}

	_ = p.stage("report", func() error {
		if err := rep.WriteFile(p.reportPath); err != nil {
			res.ReportErr = err
			logger.Error("write report failed", "path", p.reportPath, "error", err)
			rep = rep.Status("ERROR: Failed to write report file. %v", err)
			return err
		}
		p.metrics.ArtifactsWritten.WithLabelValues("report").Inc()
		logger.Info("report written", "path", p.reportPath)
		rep = rep.Status("Analysis report successfully generated and saved to '%s'.", p.reportPath)
		return nil
	})
	res.Report = rep

	p.ready.Store(true)
	p.metrics.LastRunSuccess.Set(1)
	logger.Info("analysis complete", "export_errors", res.ExportErrors)
	return res, nil
}

// export writes the cleaned table and charts, then hands the analysis to every sink.
func (p *Pipeline) export(ctx context.Context, logger *slog.Logger, res *Result, cleaned *domain.Table, rep report.Report) (report.Report, error) {
	if err := p.writer.Write(ctx, cleaned); err != nil {
		return rep, fmt.Errorf("write cleaned table: %w", err)
	}
	p.metrics.ArtifactsWritten.WithLabelValues("cleaned_csv").Inc()
	logger.Info("cleaned data exported", "path", p.writer.Path())
	rep = rep.Status("Cleaned data exported to '%s'.", p.writer.Path())

	charts, err := p.charts.Render(ctx, cleaned, res.Summary.MonthlyRainfall)
	for _, c := range charts {
		p.metrics.ArtifactsWritten.WithLabelValues("chart").Inc()
		logger.Info("chart saved", "chart", c.Name, "path", c.Path)
		rep = rep.Status("%s saved to '%s'.", c.Name, c.Path)
	}
	res.Charts = charts
	if err != nil {
		return rep, fmt.Errorf("render charts: %w", err)
	}

	analysis := domain.Analysis{RunID: res.RunID, Table: cleaned, Summary: res.Summary}
	for _, sink := range p.sinks {
		status, err := sink.Export(ctx, analysis)
		if err != nil {
			res.ExportErrors++
			p.metrics.ExportErrors.WithLabelValues(sink.Name()).Inc()
			logger.Error("export failed", "sink", sink.Name(), "error", err)
			rep = rep.Status("ERROR: %s export failed. %v", sink.Name(), err)
			continue
		}
		p.metrics.ArtifactsWritten.WithLabelValues(sink.Name()).Inc()
		logger.Info("export complete", "sink", sink.Name())
		if status != "" {
			rep = rep.Status("%s", status)
		}
	}
	return rep, nil
}

func (p *Pipeline) recordClean(stats domain.CleanStats) {
	p.metrics.RowsCleaned.Set(float64(stats.RowsOut))
	p.metrics.DuplicatesRemoved.Set(float64(stats.DuplicatesRemoved))
	p.metrics.ValuesImputed.WithLabelValues(domain.ColRainfall).Set(float64(stats.RainfallImputed))
	p.metrics.ValuesImputed.WithLabelValues(domain.ColHumidity).Set(float64(stats.HumidityImputed))
}

// stage times fn under the given stage label.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return err
}
