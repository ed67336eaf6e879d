// Command validate checks a cleaned observations CSV produced by the analysis
// job: no nulls in imputed columns, no duplicate rows, derived MonthName and
// Season columns consistent with Date, and a byte-identical re-clean.
//
// Usage:
//
//	go run ./cmd/validate --cleaned cleaned_weather_data.csv
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"

	"github.com/hashicorp/go-multierror"
	flag "github.com/spf13/pflag"

	"github.com/couchcryptid/weather-analysis/internal/adapter/csvfile"
	"github.com/couchcryptid/weather-analysis/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name string
	errs *multierror.Error
}

func (p *phase) errorf(format string, args ...any) {
	p.errs = multierror.Append(p.errs, fmt.Errorf(format, args...))
}

func (p *phase) passed() bool { return p.errs.ErrorOrNil() == nil }

func main() {
	cleaned := flag.StringP("cleaned", "c", "cleaned_weather_data.csv", "path to the cleaned CSV")
	flag.Parse()

	os.Exit(run(*cleaned))
}

func run(path string) int {
	fmt.Println("=== Cleaned Weather Data Validation ===")
	fmt.Println()

	original, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read cleaned CSV: %v\n", err)
		return 1
	}
	raw, err := csvfile.NewReader(path).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load cleaned CSV: %v\n", err)
		return 1
	}
	derived, err := loadDerived(original)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read derived columns: %v\n", err)
		return 1
	}

	phases := validate(raw, derived, original)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errs.Errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d\n", len(raw.Records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errs.Errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// derivedRow holds the MonthName and Season cells of one data row.
type derivedRow struct {
	month  string
	season string
}

func loadDerived(data []byte) ([]derivedRow, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoObservations
	}
	monthIdx, seasonIdx := -1, -1
	for i, h := range records[0] {
		switch h {
		case domain.ColMonthName:
			monthIdx = i
		case domain.ColSeason:
			seasonIdx = i
		}
	}
	if monthIdx < 0 || seasonIdx < 0 {
		return nil, fmt.Errorf("missing %s or %s column", domain.ColMonthName, domain.ColSeason)
	}

	rows := make([]derivedRow, 0, len(records)-1)
	for _, r := range records[1:] {
		rows = append(rows, derivedRow{month: r[monthIdx], season: r[seasonIdx]})
	}
	return rows, nil
}

func validate(raw *domain.RawTable, derived []derivedRow, original []byte) []*phase {
	nulls := &phase{name: "No nulls in imputed columns"}
	for i, r := range raw.Records {
		if math.IsNaN(r.Rainfall) {
			nulls.errorf("row %d: %s is empty", i+1, domain.ColRainfall)
		}
		if math.IsNaN(r.Humidity) {
			nulls.errorf("row %d: %s is empty", i+1, domain.ColHumidity)
		}
	}

	dups := &phase{name: "No duplicate rows"}
	derivedPhase := &phase{name: "Derived columns match Date"}
	idempotent := &phase{name: "Re-clean is byte-identical"}
	cities := &phase{name: "City max >= mean >= min"}

	table, stats, err := domain.Clean(raw)
	if err != nil {
		dups.errorf("clean: %v", err)
		return []*phase{nulls, dups, derivedPhase, idempotent, cities}
	}
	if stats.DuplicatesRemoved > 0 {
		dups.errorf("%d duplicate rows found", stats.DuplicatesRemoved)
	}

	if len(derived) != len(raw.Records) {
		derivedPhase.errorf("derived rows %d != data rows %d", len(derived), len(raw.Records))
	} else {
		for i, r := range raw.Records {
			d, err := domain.ParseDate(r.Date)
			if err != nil {
				derivedPhase.errorf("row %d: %v", i+1, err)
				continue
			}
			if want := domain.MonthName(d); derived[i].month != want {
				derivedPhase.errorf("row %d: %s %q, want %q", i+1, domain.ColMonthName, derived[i].month, want)
			}
			if want := string(domain.SeasonOf(d.Month())); derived[i].season != want {
				derivedPhase.errorf("row %d: %s %q, want %q", i+1, domain.ColSeason, derived[i].season, want)
			}
		}
	}

	var buf bytes.Buffer
	if err := csvfile.Encode(&buf, table); err != nil {
		idempotent.errorf("encode: %v", err)
	} else if !bytes.Equal(buf.Bytes(), original) {
		idempotent.errorf("re-cleaned output differs from input (%d vs %d bytes)", buf.Len(), len(original))
	}

	for _, c := range domain.CityStats(table) {
		if math.IsNaN(c.Mean) {
			continue
		}
		if c.Max < c.Mean || c.Mean < c.Min {
			cities.errorf("%s: max %.2f, mean %.2f, min %.2f", c.City, c.Max, c.Mean, c.Min)
		}
	}

	return []*phase{nulls, dups, derivedPhase, idempotent, cities}
}
