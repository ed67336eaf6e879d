package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// CleanStats records what the cleaning pass changed.
type CleanStats struct {
	RowsIn            int
	RowsOut           int
	DuplicatesRemoved int
	RainfallImputed   int
	HumidityImputed   int
	HumidityMean      float64 // value used for Humidity_perc nulls
}

// ParseDate parses a Date cell using the accepted layouts, in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unrecognized format", s)
}

// Clean turns a raw table into a cleaned one: parse dates, impute nulls,
// drop duplicates, derive MonthName and Season. raw is not modified.
func Clean(raw *RawTable) (*Table, CleanStats, error) {
	stats := CleanStats{RowsIn: len(raw.Records)}
	if len(raw.Records) == 0 {
		return nil, stats, ErrNoObservations
	}

	dates := make([]time.Time, len(raw.Records))
	for i, rec := range raw.Records {
		d, err := ParseDate(rec.Date)
		if err != nil {
			return nil, stats, fmt.Errorf("row %d: %w", i+1, err)
		}
		dates[i] = d
	}

	// The mean is taken over the full input, before deduplication.
	stats.HumidityMean = humidityFill(raw.Column(ColHumidity))

	imputed := make([]Observation, len(raw.Records))
	for i, rec := range raw.Records {
		obs := Observation{
			Date:        dates[i],
			Temperature: rec.Temperature,
			Rainfall:    rec.Rainfall,
			Humidity:    rec.Humidity,
			WindSpeed:   rec.WindSpeed,
			City:        rec.City,
			Extra:       append([]string(nil), rec.Extra...),
		}
		if math.IsNaN(obs.Rainfall) {
			obs.Rainfall = 0
			stats.RainfallImputed++
		}
		if math.IsNaN(obs.Humidity) {
			obs.Humidity = stats.HumidityMean
			stats.HumidityImputed++
		}
		imputed[i] = obs
	}

	seen := make(map[string]struct{}, len(imputed))
	out := make([]Observation, 0, len(imputed))
	for _, obs := range imputed {
		key := rowKey(obs)
		if _, dup := seen[key]; dup {
			stats.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}
		obs.MonthName = MonthName(obs.Date)
		obs.Season = SeasonOf(obs.Date.Month())
		out = append(out, obs)
	}
	stats.RowsOut = len(out)

	return &Table{
		ExtraColumns: append([]string(nil), raw.ExtraColumns...),
		Observations: out,
	}, stats, nil
}

// humidityFill returns the mean of the non-null values, or 0 when there are none.
func humidityFill(values []float64) float64 {
	present := dropNaN(values)
	if len(present) == 0 {
		return 0
	}
	return stat.Mean(present, nil)
}

// rowKey identifies a row by every column except Date, which is the index
// and does not take part in duplicate detection. NaN compares equal to NaN
// and -0 equal to 0.
func rowKey(o Observation) string {
	var b strings.Builder
	for _, v := range []float64{o.Temperature, o.Rainfall, o.Humidity, o.WindSpeed} {
		if v == 0 {
			v = 0
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte(0x1f)
	}
	b.WriteString(o.City)
	for _, e := range o.Extra {
		b.WriteByte(0x1f)
		b.WriteString(e)
	}
	return b.String()
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
