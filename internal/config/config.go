package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	InputPath   string
	CleanedPath string
	ReportPath  string
	PlotDir     string

	LogLevel        string
	LogFormat       string
	HTTPAddr        string // empty disables the HTTP server
	ShutdownTimeout time.Duration
	MetricsTextfile string // empty disables the Prometheus textfile

	// Optional sinks; each is disabled while its address or path is empty.
	KafkaBrokers []string
	KafkaTopic   string

	InfluxAddr        string
	InfluxDB          string
	InfluxMeasurement string
	InfluxUser        string
	InfluxPassword    string

	ParquetPath string
	XLSXPath    string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputPath:   sharedcfg.EnvOrDefault("INPUT_PATH", "weather_data.csv"),
		CleanedPath: sharedcfg.EnvOrDefault("CLEANED_PATH", "cleaned_weather_data.csv"),
		ReportPath:  sharedcfg.EnvOrDefault("REPORT_PATH", "analysis_report.txt"),
		PlotDir:     sharedcfg.EnvOrDefault("PLOT_DIR", "plots"),

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "cleaned-weather-observations"),

		InfluxAddr:        os.Getenv("INFLUX_ADDR"),
		InfluxDB:          sharedcfg.EnvOrDefault("INFLUX_DB", "weather"),
		InfluxMeasurement: sharedcfg.EnvOrDefault("INFLUX_MEASUREMENT", "weather"),
		InfluxUser:        os.Getenv("INFLUX_USER"),
		InfluxPassword:    os.Getenv("INFLUX_PASSWORD"),

		ParquetPath: os.Getenv("PARQUET_PATH"),
		XLSXPath:    os.Getenv("XLSX_PATH"),
	}

	if cfg.InputPath == "" {
		return nil, errors.New("INPUT_PATH is required")
	}
	if cfg.CleanedPath == "" {
		return nil, errors.New("CLEANED_PATH is required")
	}
	if cfg.ReportPath == "" {
		return nil, errors.New("REPORT_PATH is required")
	}
	if cfg.PlotDir == "" {
		return nil, errors.New("PLOT_DIR is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, errors.New("LOG_FORMAT must be json or text")
	}

	return cfg, nil
}

// KafkaEnabled reports whether cleaned observations are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

// InfluxEnabled reports whether cleaned observations are written to InfluxDB.
func (c *Config) InfluxEnabled() bool { return c.InfluxAddr != "" }
