package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary is the descriptive summary of one numeric column.
type ColumnSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// MissingCount is the number of null cells in a column.
type MissingCount struct {
	Column string
	Count  int
}

// Describe summarizes values, skipping NaN. An empty column yields Count 0
// and NaN statistics.
func Describe(column string, values []float64) ColumnSummary {
	present := dropNaN(values)
	s := ColumnSummary{Column: column, Count: len(present)}
	if len(present) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sort.Float64s(present)
	s.Mean = stat.Mean(present, nil)
	s.Std = sampleStd(present)
	s.Min = floats.Min(present)
	s.Max = floats.Max(present)
	s.Q25 = quantile(present, 0.25)
	s.Median = quantile(present, 0.5)
	s.Q75 = quantile(present, 0.75)
	return s
}

// DescribeRaw summarizes the numeric columns of the raw input, followed by
// every extra column whose cells are all numbers or null.
func DescribeRaw(raw *RawTable) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(NumericColumns)+len(raw.ExtraColumns))
	for _, col := range NumericColumns {
		out = append(out, Describe(col, raw.Column(col)))
	}
	extras := make([][]string, len(raw.Records))
	for i, rec := range raw.Records {
		extras[i] = rec.Extra
	}
	return append(out, describeExtras(raw.ExtraColumns, extras)...)
}

// DescribeTable summarizes the numeric columns of the cleaned table, with
// numeric extra columns as in DescribeRaw.
func DescribeTable(t *Table) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(NumericColumns)+len(t.ExtraColumns))
	for _, col := range NumericColumns {
		out = append(out, Describe(col, t.Column(col)))
	}
	extras := make([][]string, len(t.Observations))
	for i, o := range t.Observations {
		extras[i] = o.Extra
	}
	return append(out, describeExtras(t.ExtraColumns, extras)...)
}

// describeExtras summarizes the extra columns that parse as numbers in every
// row. A column with any text cell is skipped; one with only nulls is kept
// with Count 0.
func describeExtras(columns []string, rows [][]string) []ColumnSummary {
	var out []ColumnSummary
	for i, col := range columns {
		if s, ok := describeExtra(col, i, rows); ok {
			out = append(out, s)
		}
	}
	return out
}

func describeExtra(col string, i int, rows [][]string) (ColumnSummary, bool) {
	values := make([]float64, len(rows))
	for r, cells := range rows {
		if i >= len(cells) {
			values[r] = math.NaN()
			continue
		}
		v, err := ParseNumber(cells[i])
		if err != nil {
			return ColumnSummary{}, false
		}
		values[r] = v
	}
	return Describe(col, values), true
}

// MissingCounts counts null cells per column of the raw input. Date is the
// table index and is not counted.
func MissingCounts(raw *RawTable) []MissingCount {
	out := make([]MissingCount, 0, len(NumericColumns)+1+len(raw.ExtraColumns))
	for _, col := range NumericColumns {
		n := 0
		for _, v := range raw.Column(col) {
			if math.IsNaN(v) {
				n++
			}
		}
		out = append(out, MissingCount{Column: col, Count: n})
	}

	city := 0
	extras := make([]int, len(raw.ExtraColumns))
	for _, rec := range raw.Records {
		if IsNullCell(rec.City) {
			city++
		}
		for i := range extras {
			if i >= len(rec.Extra) || IsNullCell(rec.Extra[i]) {
				extras[i]++
			}
		}
	}
	out = append(out, MissingCount{Column: ColCity, Count: city})
	for i, col := range raw.ExtraColumns {
		out = append(out, MissingCount{Column: col, Count: extras[i]})
	}
	return out
}

// sampleStd is the N−1 standard deviation; NaN for fewer than two values.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// quantile linearly interpolates between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
