package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/couchcryptid/weather-analysis/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Writer persists the cleaned table as CSV.
type Writer struct {
	path string
}

// NewWriter creates a Writer targeting path. An existing file is overwritten.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the destination file.
func (w *Writer) Path() string { return w.path }

// Write saves the cleaned table with Date as the first column.
func (w *Writer) Write(_ context.Context, t *domain.Table) error {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create cleaned csv: %w", err)
	}
	if err := Encode(f, t); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close cleaned csv: %w", err)
	}
	return nil
}

// Encode writes t as CSV to dst. Dates carry no time of day when every row
// is at midnight.
func Encode(dst io.Writer, t *domain.Table) error {
	cw := csv.NewWriter(dst)

	header := []string{domain.ColDate}
	header = append(header, domain.NumericColumns...)
	header = append(header, domain.ColCity)
	header = append(header, t.ExtraColumns...)
	header = append(header, domain.ColMonthName, domain.ColSeason)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	layout := dateTimeLayout
	if t.AllMidnight() {
		layout = dateLayout
	}

	row := make([]string, 0, len(header))
	for _, o := range t.Observations {
		row = row[:0]
		row = append(row, o.Date.Format(layout))
		for _, col := range domain.NumericColumns {
			row = append(row, formatNumber(o.Value(col)))
		}
		row = append(row, o.City)
		row = append(row, o.Extra...)
		row = append(row, o.MonthName, string(o.Season))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush cleaned csv: %w", err)
	}
	return nil
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
