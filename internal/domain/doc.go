// Package domain models daily weather observations and the cleaning and
// aggregation rules applied to them.
//
// # Input Columns
//
// The source table carries one row per (Date, City):
//
//	Date, Temperature_C, Rainfall_mm, Humidity_perc, WindSpeed_kmh, City
//
// Any further columns are carried through verbatim as extras. MonthName and
// Season are derived columns; when present in an input (for example a
// previously cleaned file) they are dropped on load and recomputed.
//
// Numeric cells that are empty or hold NaN are missing and kept as NaN.
// All statistics skip NaN.
//
// # Cleaning Order
//
// Cleaning runs in a fixed order because later steps observe earlier ones:
//
//	parse dates → impute → deduplicate
//
// Rainfall_mm nulls become 0.0 (no rain reported). Humidity_perc nulls become
// the mean of the non-null humidity values of the whole input, computed before
// duplicates are dropped. A duplicate is a row whose columns all equal an
// earlier row, ignoring Date; the first occurrence is kept. Two days of one city with
// identical readings therefore collapse to one row.
//
// # Seasons
//
//	Mar–May Spring | Jun–Aug Summer | Sep–Oct Autumn | Nov–Feb Winter
//
// Autumn covers only September and October; November belongs to Winter.
//
// # Aggregation Policies
//
//   - Extremes: first row in table order wins a tie.
//   - Standard deviations are sample deviations (N−1) and NaN for one value.
//   - Correlations use pairwise-complete rows and are NaN without variance.
//   - Seasonal output always lists Winter, Spring, Summer, Autumn; a season
//     with no rows reports Count 0 and NaN statistics.
//   - Every Count in the city, monthly and seasonal aggregates is a row count;
//     null values are skipped by the statistics but still counted.
package domain
