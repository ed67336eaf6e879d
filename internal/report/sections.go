package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/weather-analysis/internal/domain"
)

// Section titles, in report order.
const (
	TitleRawSummary     = "Statistical Summary of Numerical Columns (Raw Data)"
	TitleMissing        = "Missing values before cleaning"
	TitleCleanedSummary = "Cleaned DataFrame Summary"
	TitleExtremes       = "Overall Temperature Extremes"
	TitleCities         = "Temperature Statistics by City"
	TitleCorrelation    = "Correlation Matrix (Numerical Features)"
	TitleMonthly        = "Aggregation by Month Name (Sorted by Avg Temp)"
	TitleSeasonal       = "Seasonal Aggregate Statistics"
)

// InsightsDivider opens the insights part of the report, ahead of the extremes.
// The wording, spelling included, is kept stable for readers that match on it.
const InsightsDivider = "--- KEY INSIGHTS AND EXTREAME ---"

// DescribeTable lays out column summaries with one statistic per row and one
// column per variable.
func DescribeTable(summaries []domain.ColumnSummary) string {
	headers := []string{""}
	for _, s := range summaries {
		headers = append(headers, s.Column)
	}
	stats := []struct {
		name string
		get  func(domain.ColumnSummary) float64
	}{
		{"count", func(s domain.ColumnSummary) float64 { return float64(s.Count) }},
		{"mean", func(s domain.ColumnSummary) float64 { return s.Mean }},
		{"std", func(s domain.ColumnSummary) float64 { return s.Std }},
		{"min", func(s domain.ColumnSummary) float64 { return s.Min }},
		{"25%", func(s domain.ColumnSummary) float64 { return s.Q25 }},
		{"50%", func(s domain.ColumnSummary) float64 { return s.Median }},
		{"75%", func(s domain.ColumnSummary) float64 { return s.Q75 }},
		{"max", func(s domain.ColumnSummary) float64 { return s.Max }},
	}

	t := textTable{headers: headers}
	for _, st := range stats {
		row := []string{st.name}
		for _, s := range summaries {
			row = append(row, formatG(st.get(s)))
		}
		t.rows = append(t.rows, row)
	}
	return t.String()
}

// MissingTable lists null counts per column.
func MissingTable(counts []domain.MissingCount) string {
	t := textTable{headers: []string{"", "Missing Count"}}
	for _, c := range counts {
		t.rows = append(t.rows, []string{c.Column, strconv.Itoa(c.Count)})
	}
	return t.String()
}

// DuplicatesLine reports how many duplicate rows were dropped.
func DuplicatesLine(n int) string {
	return fmt.Sprintf("Duplicate rows removed: %d", n)
}

// ExtremesText describes the highest and lowest temperature rows.
func ExtremesText(highest, lowest domain.Extreme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Highest Temp: %s°C on %s in %s\n",
		formatValue(highest.Temperature), highest.Date.Format("2006-01-02"), highest.City)
	fmt.Fprintf(&b, "  Lowest Temp: %s°C on %s in %s\n",
		formatValue(lowest.Temperature), lowest.Date.Format("2006-01-02"), lowest.City)
	return b.String()
}

// CityTable lists per-city temperature statistics.
func CityTable(stats []domain.CityStat) string {
	t := textTable{headers: []string{domain.ColCity, "max", "min", "mean", "std"}}
	for _, s := range stats {
		t.rows = append(t.rows, []string{s.City, formatG(s.Max), formatG(s.Min), formatG(s.Mean), formatG(s.Std)})
	}
	return t.String()
}

// CorrelationTable renders the correlation matrix with two decimals.
func CorrelationTable(m domain.CorrelationMatrix) string {
	t := textTable{headers: append([]string{""}, m.Columns...)}
	for i, col := range m.Columns {
		row := []string{col}
		for _, v := range m.Values[i] {
			row = append(row, format2(v))
		}
		t.rows = append(t.rows, row)
	}
	return t.String()
}

// MonthlyTable renders monthly aggregates in their sorted order.
func MonthlyTable(rows []domain.MonthlyAggregate) string {
	t := textTable{headers: []string{domain.ColMonthName, domain.ColTemperature, domain.ColRainfall, domain.ColHumidity}}
	for _, r := range rows {
		t.rows = append(t.rows, []string{r.Month, format2(r.MeanTemperature), format2(r.TotalRainfall), format2(r.MeanHumidity)})
	}
	return t.String()
}

// SeasonalTable renders seasonal aggregates. Seasons without rows show nan.
func SeasonalTable(rows []domain.SeasonalAggregate) string {
	t := textTable{headers: []string{
		domain.ColSeason,
		domain.ColTemperature + " mean",
		domain.ColTemperature + " std",
		domain.ColRainfall + " sum",
		domain.ColHumidity + " mean",
	}}
	for _, r := range rows {
		t.rows = append(t.rows, []string{
			string(r.Season),
			format2(r.MeanTemperature),
			format2(r.StdTemperature),
			format2(r.TotalRainfall),
			format2(r.MeanHumidity),
		})
	}
	return t.String()
}
