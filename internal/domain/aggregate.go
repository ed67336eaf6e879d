package domain

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Extreme is the row holding a temperature extremum.
type Extreme struct {
	Temperature float64
	Date        time.Time
	City        string
	Row         int // position in table order
}

// CityStat holds Temperature_C statistics for one city.
type CityStat struct {
	City  string
	Count int // rows for the city, including those with a null temperature
	Max   float64
	Min   float64
	Mean  float64
	Std   float64
}

// CorrelationMatrix is a symmetric Pearson correlation matrix.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// MonthlyAggregate summarizes one calendar month name across all years.
type MonthlyAggregate struct {
	Month           string
	Count           int
	MeanTemperature float64
	TotalRainfall   float64
	MeanHumidity    float64
}

// SeasonalAggregate summarizes one season. Count 0 marks a season with no rows.
type SeasonalAggregate struct {
	Season          Season
	Count           int
	MeanTemperature float64
	StdTemperature  float64
	TotalRainfall   float64
	MeanHumidity    float64
}

// MonthlyTotal is the rainfall summed over one year-month.
type MonthlyTotal struct {
	Month    time.Time // first day of the month, UTC
	Label    string    // e.g. "2023-Jan"
	Rainfall float64
}

// Extremes returns the rows with the highest and lowest Temperature_C. NaN is
// skipped and the first row in table order wins a tie.
func Extremes(t *Table) (highest, lowest Extreme, err error) {
	hi, lo := -1, -1
	for i, o := range t.Observations {
		if math.IsNaN(o.Temperature) {
			continue
		}
		if hi < 0 || o.Temperature > t.Observations[hi].Temperature {
			hi = i
		}
		if lo < 0 || o.Temperature < t.Observations[lo].Temperature {
			lo = i
		}
	}
	if hi < 0 {
		return Extreme{}, Extreme{}, ErrNoObservations
	}
	return extremeAt(t, hi), extremeAt(t, lo), nil
}

func extremeAt(t *Table, i int) Extreme {
	o := t.Observations[i]
	return Extreme{Temperature: o.Temperature, Date: o.Date, City: o.City, Row: i}
}

// CityStats computes Temperature_C max, min, mean and sample std per city,
// ordered by city name.
func CityStats(t *Table) []CityStat {
	keys, groups := groupBy(t.Observations, func(o Observation) string { return o.City })
	sort.Strings(keys)

	out := make([]CityStat, 0, len(keys))
	for _, city := range keys {
		temps := dropNaN(values(groups[city], ColTemperature))
		s := CityStat{City: city, Count: len(groups[city])}
		if len(temps) == 0 {
			s.Max, s.Min, s.Mean, s.Std = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		} else {
			s.Max = floats.Max(temps)
			s.Min = floats.Min(temps)
			s.Mean = stat.Mean(temps, nil)
			s.Std = sampleStd(temps)
		}
		out = append(out, s)
	}
	return out
}

// Correlations computes the Pearson correlation matrix of the numeric columns
// over pairwise-complete rows.
func Correlations(t *Table) CorrelationMatrix {
	cols := NumericColumns
	data := make([][]float64, len(cols))
	for i, c := range cols {
		data[i] = t.Column(c)
	}

	m := CorrelationMatrix{
		Columns: append([]string(nil), cols...),
		Values:  make([][]float64, len(cols)),
	}
	for i := range cols {
		m.Values[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(data[i], data[j], i == j)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// pearson correlates x and y over the rows where both are present.
func pearson(x, y []float64, diagonal bool) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	sx := stat.StdDev(xs, nil)
	sy := stat.StdDev(ys, nil)
	if sx == 0 || sy == 0 {
		return math.NaN()
	}
	if diagonal {
		return 1
	}
	r := stat.Correlation(xs, ys, nil)
	return math.Max(-1, math.Min(1, r))
}

// MonthlyAggregates groups by month name and sorts ascending by mean
// temperature. Months with equal means keep alphabetical order; NaN sorts last.
func MonthlyAggregates(t *Table) []MonthlyAggregate {
	keys, groups := groupBy(t.Observations, func(o Observation) string { return o.MonthName })
	sort.Strings(keys)

	out := make([]MonthlyAggregate, 0, len(keys))
	for _, month := range keys {
		g := groups[month]
		out = append(out, MonthlyAggregate{
			Month:           month,
			Count:           len(g),
			MeanTemperature: meanOf(values(g, ColTemperature)),
			TotalRainfall:   sumOf(values(g, ColRainfall)),
			MeanHumidity:    meanOf(values(g, ColHumidity)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].MeanTemperature, out[j].MeanTemperature
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a < b
	})
	return out
}

// SeasonalAggregates groups by season and returns exactly one row per season
// in SeasonOrder.
func SeasonalAggregates(t *Table) []SeasonalAggregate {
	_, groups := groupBy(t.Observations, func(o Observation) Season { return o.Season })

	out := make([]SeasonalAggregate, 0, len(SeasonOrder))
	for _, season := range SeasonOrder {
		g, ok := groups[season]
		if !ok {
			nan := math.NaN()
			out = append(out, SeasonalAggregate{
				Season:          season,
				MeanTemperature: nan,
				StdTemperature:  nan,
				TotalRainfall:   nan,
				MeanHumidity:    nan,
			})
			continue
		}
		temps := dropNaN(values(g, ColTemperature))
		out = append(out, SeasonalAggregate{
			Season:          season,
			Count:           len(g),
			MeanTemperature: meanOf(temps),
			StdTemperature:  sampleStd(temps),
			TotalRainfall:   sumOf(values(g, ColRainfall)),
			MeanHumidity:    meanOf(values(g, ColHumidity)),
		})
	}
	return out
}

// MonthlyRainfall sums Rainfall_mm per calendar month from the earliest to
// the latest month in the table. Months without rows report 0.
func MonthlyRainfall(t *Table) []MonthlyTotal {
	if len(t.Observations) == 0 {
		return nil
	}
	sums := make(map[time.Time]float64)
	first, last := monthStart(t.Observations[0].Date), monthStart(t.Observations[0].Date)
	for _, o := range t.Observations {
		m := monthStart(o.Date)
		if !math.IsNaN(o.Rainfall) {
			sums[m] += o.Rainfall
		}
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	var out []MonthlyTotal
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthlyTotal{Month: m, Label: m.Format("2006-Jan"), Rainfall: sums[m]})
	}
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// groupBy partitions rows by key, returning keys in first-seen order.
func groupBy[K comparable](rows []Observation, key func(Observation) K) ([]K, map[K][]Observation) {
	var keys []K
	groups := make(map[K][]Observation)
	for _, o := range rows {
		k := key(o)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], o)
	}
	return keys, groups
}

func values(rows []Observation, column string) []float64 {
	out := make([]float64, len(rows))
	for i, o := range rows {
		out[i] = o.Value(column)
	}
	return out
}

// meanOf is the mean of the non-NaN values, NaN when there are none.
func meanOf(v []float64) float64 {
	present := dropNaN(v)
	if len(present) == 0 {
		return math.NaN()
	}
	return stat.Mean(present, nil)
}

// sumOf adds the non-NaN values.
func sumOf(v []float64) float64 {
	return floats.Sum(dropNaN(v))
}
