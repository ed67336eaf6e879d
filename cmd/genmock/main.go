// Command genmock writes a synthetic weather observations CSV for exercising
// the analysis job. Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  --out weather_data.csv \
//	  --cities Oslo,Rome,Cairo \
//	  --start 2023-01-01 --days 365 \
//	  --null-rate 0.05 --dup-rate 0.02
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/couchcryptid/weather-analysis/internal/domain"
)

// climate gives the yearly mean and swing of daily temperature for a city.
type climate struct {
	meanTemp  float64
	swing     float64
	rainyDays float64 // probability of rain on any day
	humidity  float64
}

var climates = map[string]climate{
	"Oslo":  {meanTemp: 6, swing: 10, rainyDays: 0.45, humidity: 78},
	"Rome":  {meanTemp: 16, swing: 8, rainyDays: 0.25, humidity: 68},
	"Cairo": {meanTemp: 22, swing: 7, rainyDays: 0.03, humidity: 50},
}

var defaultClimate = climate{meanTemp: 12, swing: 9, rainyDays: 0.3, humidity: 70}

type options struct {
	out      string
	cities   []string
	start    time.Time
	days     int
	nullRate float64
	dupRate  float64
	seed     uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.StringP("out", "o", "weather_data.csv", "output CSV path")
	cities := flag.StringSlice("cities", []string{"Oslo", "Rome", "Cairo"}, "comma-separated city names")
	start := flag.String("start", "2023-01-01", "first date (YYYY-MM-DD)")
	days := flag.Int("days", 365, "number of days per city")
	nullRate := flag.Float64("null-rate", 0.05, "probability that a Rainfall_mm or Humidity_perc cell is empty")
	dupRate := flag.Float64("dup-rate", 0.02, "probability that a row is written twice")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	if *days <= 0 || len(*cities) == 0 {
		flag.Usage()
		return fmt.Errorf("--days must be positive and --cities non-empty")
	}
	if *nullRate < 0 || *nullRate > 1 || *dupRate < 0 || *dupRate > 1 {
		return fmt.Errorf("--null-rate and --dup-rate must be within [0, 1]")
	}

	opts := options{
		out:      *out,
		cities:   *cities,
		start:    startDate,
		days:     *days,
		nullRate: *nullRate,
		dupRate:  *dupRate,
		seed:     *seed,
	}
	rows, err := generate(opts)
	if err != nil {
		return err
	}
	log.Printf("wrote %d rows to %s", rows, opts.out)
	return nil
}

func generate(opts options) (int, error) {
	f, err := os.Create(opts.out)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	w := csv.NewWriter(f)
	header := []string{domain.ColDate, domain.ColTemperature, domain.ColRainfall, domain.ColHumidity, domain.ColWindSpeed, domain.ColCity}
	if err := w.Write(header); err != nil {
		return 0, err
	}

	n := 0
	for d := 0; d < opts.days; d++ {
		date := opts.start.AddDate(0, 0, d)
		for _, city := range opts.cities {
			row := observationRow(rng, date, city, opts.nullRate)
			copies := 1
			if rng.Float64() < opts.dupRate {
				copies = 2
			}
			for i := 0; i < copies; i++ {
				if err := w.Write(row); err != nil {
					return n, err
				}
				n++
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return n, fmt.Errorf("flush output: %w", err)
	}
	return n, f.Close()
}

func observationRow(rng *rand.Rand, date time.Time, city string, nullRate float64) []string {
	c, ok := climates[city]
	if !ok {
		c = defaultClimate
	}
	// Coldest around mid-January in the northern hemisphere.
	phase := 2 * math.Pi * float64(date.YearDay()-15) / 365
	temp := c.meanTemp - c.swing*math.Cos(phase) + rng.NormFloat64()*2

	rain := 0.0
	if rng.Float64() < c.rainyDays {
		rain = rng.ExpFloat64() * 4
	}
	humidity := math.Min(100, math.Max(5, c.humidity+rng.NormFloat64()*8+rain))
	wind := math.Max(0, 12+rng.NormFloat64()*5)

	rainCell, humCell := format(rain), format(humidity)
	if rng.Float64() < nullRate {
		rainCell = ""
	}
	if rng.Float64() < nullRate {
		humCell = ""
	}
	return []string{date.Format("2006-01-02"), format(temp), rainCell, humCell, format(wind), city}
}

func format(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
