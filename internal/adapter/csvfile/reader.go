// Package csvfile reads the raw observation table and writes the cleaned one.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/weather-analysis/internal/domain"
)

// Reader loads a raw observation table from a CSV file.
type Reader struct {
	path string
}

// NewReader creates a Reader for the CSV file at path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Path returns the file the reader loads from.
func (r *Reader) Path() string { return r.path }

// Load reads the whole file. Numeric cells that are empty or "NaN" become NaN.
// Derived MonthName and Season columns are ignored so a cleaned file can be
// loaded again. A missing file yields an error wrapping fs.ErrNotExist.
func (r *Reader) Load(_ context.Context) (*domain.RawTable, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses CSV data with a header row into a raw table.
func Decode(src io.Reader) (*domain.RawTable, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrNoObservations
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	layout, err := newColumnLayout(header)
	if err != nil {
		return nil, err
	}

	table := &domain.RawTable{ExtraColumns: layout.extraNames}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rec, err := layout.record(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// columnLayout maps header positions to table columns.
type columnLayout struct {
	index      map[string]int
	extraIdx   []int
	extraNames []string
}

func newColumnLayout(header []string) (*columnLayout, error) {
	l := &columnLayout{index: make(map[string]int)}
	known := map[string]bool{domain.ColDate: true, domain.ColCity: true}
	for _, c := range domain.NumericColumns {
		known[c] = true
	}

	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case known[name]:
			l.index[name] = i
		case name == domain.ColMonthName || name == domain.ColSeason:
		default:
			l.extraIdx = append(l.extraIdx, i)
			l.extraNames = append(l.extraNames, name)
		}
	}

	var missing []string
	for _, c := range append([]string{domain.ColDate}, domain.NumericColumns...) {
		if _, ok := l.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if _, ok := l.index[domain.ColCity]; !ok {
		missing = append(missing, domain.ColCity)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return l, nil
}

func (l *columnLayout) cell(row []string, col string) string {
	i := l.index[col]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (l *columnLayout) record(row []string) (domain.RawRecord, error) {
	rec := domain.RawRecord{
		Date: l.cell(row, domain.ColDate),
		City: l.cell(row, domain.ColCity),
	}
	for _, col := range domain.NumericColumns {
		v, err := domain.ParseNumber(l.cell(row, col))
		if err != nil {
			return domain.RawRecord{}, fmt.Errorf("column %s: %w", col, err)
		}
		switch col {
		case domain.ColTemperature:
			rec.Temperature = v
		case domain.ColRainfall:
			rec.Rainfall = v
		case domain.ColHumidity:
			rec.Humidity = v
		case domain.ColWindSpeed:
			rec.WindSpeed = v
		}
	}
	if len(l.extraIdx) > 0 {
		rec.Extra = make([]string, len(l.extraIdx))
		for j, i := range l.extraIdx {
			if i < len(row) {
				rec.Extra[j] = row[i]
			}
		}
	}
	return rec, nil
}
