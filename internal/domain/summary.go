package domain

// Summary bundles every statistic computed over a cleaned table.
type Summary struct {
	Cleaned         []ColumnSummary
	Highest         Extreme
	Lowest          Extreme
	Cities          []CityStat
	Correlation     CorrelationMatrix
	Monthly         []MonthlyAggregate
	Seasonal        []SeasonalAggregate
	MonthlyRainfall []MonthlyTotal
}

// Summarize computes the full Summary of t.
func Summarize(t *Table) (Summary, error) {
	hi, lo, err := Extremes(t)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Cleaned:         DescribeTable(t),
		Highest:         hi,
		Lowest:          lo,
		Cities:          CityStats(t),
		Correlation:     Correlations(t),
		Monthly:         MonthlyAggregates(t),
		Seasonal:        SeasonalAggregates(t),
		MonthlyRainfall: MonthlyRainfall(t),
	}, nil
}

// Analysis is the outcome of one run, handed to every export sink.
type Analysis struct {
	RunID   string
	Table   *Table
	Summary Summary
}

// Artifact is a file written by a run.
type Artifact struct {
	Name string
	Path string
}
