// Command analyze runs the weather analysis job once: it loads the input CSV,
// cleans it, writes the cleaned table, charts and report, and publishes to any
// configured sinks. With HTTP_ADDR set it keeps serving /metrics until signalled.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-analysis/internal/adapter/chart"
	"github.com/couchcryptid/weather-analysis/internal/adapter/csvfile"
	"github.com/couchcryptid/weather-analysis/internal/adapter/httpadapter"
	"github.com/couchcryptid/weather-analysis/internal/adapter/influx"
	kafkaadapter "github.com/couchcryptid/weather-analysis/internal/adapter/kafka"
	"github.com/couchcryptid/weather-analysis/internal/adapter/parquet"
	"github.com/couchcryptid/weather-analysis/internal/adapter/xlsx"
	"github.com/couchcryptid/weather-analysis/internal/config"
	"github.com/couchcryptid/weather-analysis/internal/observability"
	"github.com/couchcryptid/weather-analysis/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sinks, closers := buildSinks(cfg, logger)
	defer func() {
		for _, c := range closers {
			if err := c.close(); err != nil {
				logger.Error("sink close error", "sink", c.name, "error", err)
			}
		}
	}()

	p := pipeline.New(
		csvfile.NewReader(cfg.InputPath),
		csvfile.NewWriter(cfg.CleanedPath),
		chart.NewRenderer(cfg.PlotDir),
		sinks,
		cfg.ReportPath,
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, metrics.Gatherer(), logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	code := 0
	res, err := p.Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrInputNotFound):
		fmt.Printf("Error: The file '%s' was not found. Please ensure it is in the same directory.\n", cfg.InputPath)
		code = 1
	case err != nil:
		logger.Error("analysis failed", "error", err)
		code = 1
	default:
		fmt.Print(res.Report.String())
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics textfile error", "error", err)
		}
	}

	if srv != nil {
		logger.Info("serving metrics until interrupted", "addr", cfg.HTTPAddr)
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		logger.Info("shutdown complete")
	}
	return code
}

type closer struct {
	name  string
	close func() error
}

// buildSinks wires the optional exporters enabled in cfg.
func buildSinks(cfg *config.Config, logger *slog.Logger) ([]pipeline.Sink, []closer) {
	var sinks []pipeline.Sink
	var closers []closer

	if cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, w)
		closers = append(closers, closer{"kafka", w.Close})
		logger.Info("kafka export enabled", "topic", cfg.KafkaTopic)
	}
	if cfg.InfluxEnabled() {
		w, err := influx.NewWriter(cfg, logger)
		if err != nil {
			logger.Error("influx export disabled", "error", err)
		} else {
			sinks = append(sinks, w)
			closers = append(closers, closer{"influx", w.Close})
			logger.Info("influx export enabled", "database", cfg.InfluxDB)
		}
	}
	if cfg.ParquetPath != "" {
		sinks = append(sinks, parquet.NewWriter(cfg.ParquetPath, logger))
		logger.Info("parquet export enabled", "path", cfg.ParquetPath)
	}
	if cfg.XLSXPath != "" {
		sinks = append(sinks, xlsx.NewWriter(cfg.XLSXPath, logger))
		logger.Info("xlsx export enabled", "path", cfg.XLSXPath)
	}
	return sinks, closers
}
