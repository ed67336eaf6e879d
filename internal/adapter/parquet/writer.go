// Package parquet exports the cleaned table as a Snappy-compressed Parquet file.
package parquet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"

	pq "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/couchcryptid/weather-analysis/internal/domain"
)

// Row is the Parquet schema of one cleaned observation. Missing values are null.
// Extra holds the input's additional columns as a JSON object keyed by column
// name, the same shape as the Kafka payload; it is null when there are none.
type Row struct {
	Date        int64    `parquet:"name=date, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Temperature *float64 `parquet:"name=temperature_c, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rainfall    *float64 `parquet:"name=rainfall_mm, type=DOUBLE, repetitiontype=OPTIONAL"`
	Humidity    *float64 `parquet:"name=humidity_perc, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindSpeed   *float64 `parquet:"name=windspeed_kmh, type=DOUBLE, repetitiontype=OPTIONAL"`
	City        string   `parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8"`
	MonthName   string   `parquet:"name=month_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Season      string   `parquet:"name=season, type=BYTE_ARRAY, convertedtype=UTF8"`
	Extra       *string  `parquet:"name=extra, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	RunID       string   `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Writer implements pipeline.Sink.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer for the file at path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

func (w *Writer) Name() string { return "parquet" }

// Export encodes the whole table in one row group and writes it to disk.
func (w *Writer) Export(_ context.Context, a domain.Analysis) (string, error) {
	rows, err := toRows(a)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := encode(buf, rows); err != nil {
		return "", err
	}
	if err := os.WriteFile(w.path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write parquet file: %w", err)
	}
	w.logger.Debug("parquet written", "path", w.path, "rows", len(rows), "bytes", buf.Len())
	return fmt.Sprintf("Cleaned data exported to Parquet file '%s'.", w.path), nil
}

func toRows(a domain.Analysis) ([]Row, error) {
	rows := make([]Row, len(a.Table.Observations))
	for i, o := range a.Table.Observations {
		extra, err := extraJSON(a.Table.ExtraColumns, o.Extra)
		if err != nil {
			return nil, fmt.Errorf("encode extra columns of row %d: %w", i+1, err)
		}
		rows[i] = Row{
			Date:        o.Date.UnixMilli(),
			Temperature: nullable(o.Temperature),
			Rainfall:    nullable(o.Rainfall),
			Humidity:    nullable(o.Humidity),
			WindSpeed:   nullable(o.WindSpeed),
			City:        o.City,
			MonthName:   o.MonthName,
			Season:      string(o.Season),
			Extra:       extra,
			RunID:       a.RunID,
		}
	}
	return rows, nil
}

func extraJSON(columns, values []string) (*string, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(columns))
	for i, name := range columns {
		if i < len(values) {
			m[name] = values[i]
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func encode(buf *bytes.Buffer, rows []Row) (err error) {
	groupSize := int64(len(rows))
	if groupSize == 0 {
		groupSize = 1
	}
	pw, err := writer.NewParquetWriterFromWriter(buf, new(Row), groupSize)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = pq.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			return fmt.Errorf("write parquet row %d: %w", i+1, err)
		}
	}

	// WriteStop can panic on schema problems inside the library.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet file: %w", err)
	}
	return nil
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
