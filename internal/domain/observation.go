package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names of the observation table.
const (
	ColDate        = "Date"
	ColTemperature = "Temperature_C"
	ColRainfall    = "Rainfall_mm"
	ColHumidity    = "Humidity_perc"
	ColWindSpeed   = "WindSpeed_kmh"
	ColCity        = "City"
	ColMonthName   = "MonthName"
	ColSeason      = "Season"
)

// NumericColumns lists the measured columns in table order.
var NumericColumns = []string{ColTemperature, ColRainfall, ColHumidity, ColWindSpeed}

// ErrNoObservations is returned when a table holds no data rows.
var ErrNoObservations = errors.New("no observations")

// IsNullCell reports whether a cell is empty or one of the null markers
// NaN, NA, N/A and null, in any case.
func IsNullCell(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "na", "n/a", "null":
		return true
	}
	return false
}

// ParseNumber parses a numeric cell. Null cells become NaN.
func ParseNumber(s string) (float64, error) {
	if IsNullCell(s) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s, err)
	}
	return v, nil
}

// RawRecord is one input row before cleaning. Missing numeric cells are NaN.
type RawRecord struct {
	Date        string
	Temperature float64
	Rainfall    float64
	Humidity    float64
	WindSpeed   float64
	City        string
	Extra       []string // values of RawTable.ExtraColumns, same order
}

// RawTable is the loaded input.
type RawTable struct {
	ExtraColumns []string
	Records      []RawRecord
}

// Observation is a cleaned row, indexed by Date.
type Observation struct {
	Date        time.Time
	Temperature float64
	Rainfall    float64
	Humidity    float64
	WindSpeed   float64
	City        string
	Extra       []string
	MonthName   string
	Season      Season
}

// Value returns the numeric column with the given name, or NaN.
func (o Observation) Value(column string) float64 {
	switch column {
	case ColTemperature:
		return o.Temperature
	case ColRainfall:
		return o.Rainfall
	case ColHumidity:
		return o.Humidity
	case ColWindSpeed:
		return o.WindSpeed
	default:
		return math.NaN()
	}
}

// Value returns the numeric column with the given name, or NaN.
func (r RawRecord) Value(column string) float64 {
	switch column {
	case ColTemperature:
		return r.Temperature
	case ColRainfall:
		return r.Rainfall
	case ColHumidity:
		return r.Humidity
	case ColWindSpeed:
		return r.WindSpeed
	default:
		return math.NaN()
	}
}

// Table is the cleaned observation table.
type Table struct {
	ExtraColumns []string
	Observations []Observation
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Observations) }

// Column returns the values of a numeric column in table order.
func (t *Table) Column(name string) []float64 {
	out := make([]float64, len(t.Observations))
	for i, o := range t.Observations {
		out[i] = o.Value(name)
	}
	return out
}

// Column returns the values of a numeric column in table order.
func (t *RawTable) Column(name string) []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Value(name)
	}
	return out
}

// AllMidnight reports whether every date in the table has no time component.
func (t *Table) AllMidnight() bool {
	for _, o := range t.Observations {
		h, m, s := o.Date.Clock()
		if h != 0 || m != 0 || s != 0 || o.Date.Nanosecond() != 0 {
			return false
		}
	}
	return true
}
