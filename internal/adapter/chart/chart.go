// Package chart renders the analysis charts as PNG files with gonum/plot.
package chart

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/weather-analysis/internal/domain"
)

// Output file names inside the plot directory.
const (
	TimeSeriesFile       = "temp_windspeed_timeseries.png"
	HumidityHistFile     = "humidity_histogram.png"
	TemperatureTrendFile = "daily_temperature_trend.png"
	MonthlyRainfallFile  = "monthly_rainfall_bar.png"
)

const humidityBins = 15

var (
	colorTemperature = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorWind        = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorHumidity    = color.RGBA{R: 135, G: 206, B: 235, A: 255} // skyblue
	colorTrend       = color.RGBA{R: 255, G: 69, A: 255}          // orangered
	colorRainfall    = color.RGBA{B: 139, A: 255}                 // darkblue
)

// Renderer writes the four charts into a directory.
type Renderer struct {
	dir string
}

// NewRenderer creates a Renderer writing into dir. The directory is created on first use.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render draws every chart in order and returns what was written. It stops
// at the first failure.
func (r *Renderer) Render(_ context.Context, t *domain.Table, monthly []domain.MonthlyTotal) ([]domain.Artifact, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}

	rows := sortedByDate(t)
	charts := []struct {
		name string
		file string
		draw func() (*plot.Plot, vg.Length, vg.Length, error)
	}{
		{"Time Series Plot", TimeSeriesFile, func() (*plot.Plot, vg.Length, vg.Length, error) {
			p, err := timeSeries(rows)
			return p, 12 * vg.Inch, 6 * vg.Inch, err
		}},
		{"Humidity Histogram Plot", HumidityHistFile, func() (*plot.Plot, vg.Length, vg.Length, error) {
			p, err := humidityHistogram(t.Column(domain.ColHumidity))
			return p, 8 * vg.Inch, 6 * vg.Inch, err
		}},
		{"Daily Temperature Line Chart", TemperatureTrendFile, func() (*plot.Plot, vg.Length, vg.Length, error) {
			p, err := temperatureTrend(rows)
			return p, 12 * vg.Inch, 6 * vg.Inch, err
		}},
		{"Monthly Rainfall Bar Chart", MonthlyRainfallFile, func() (*plot.Plot, vg.Length, vg.Length, error) {
			p, err := monthlyRainfall(monthly)
			return p, 12 * vg.Inch, 6 * vg.Inch, err
		}},
	}

	out := make([]domain.Artifact, 0, len(charts))
	for _, c := range charts {
		p, w, h, err := c.draw()
		if err != nil {
			return out, fmt.Errorf("draw %s: %w", c.file, err)
		}
		path := filepath.Join(r.dir, c.file)
		if err := p.Save(w, h, path); err != nil {
			return out, fmt.Errorf("save %s: %w", c.file, err)
		}
		out = append(out, domain.Artifact{Name: c.name, Path: path})
	}
	return out, nil
}

func sortedByDate(t *domain.Table) []domain.Observation {
	rows := append([]domain.Observation(nil), t.Observations...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// series returns (unix seconds, value) points, skipping NaN values.
func series(rows []domain.Observation, column string) plotter.XYs {
	pts := make(plotter.XYs, 0, len(rows))
	for _, o := range rows {
		v := o.Value(column)
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(o.Date.Unix()), Y: v})
	}
	return pts
}

func dateAxis(p *plot.Plot) {
	p.X.Label.Text = "Date"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Add(plotter.NewGrid())
}

func timeSeries(rows []domain.Observation) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Time Series of Temperature and Wind Speed"
	p.Y.Label.Text = "Value"
	dateAxis(p)
	p.Legend.Top = true

	for _, s := range []struct {
		column string
		label  string
		color  color.Color
	}{
		{domain.ColTemperature, "Temperature (°C)", colorTemperature},
		{domain.ColWindSpeed, "Wind Speed (km/h)", colorWind},
	} {
		pts := series(rows, s.column)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = s.color
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	return p, nil
}

func humidityHistogram(values []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Distribution of Humidity Percentage"
	p.X.Label.Text = "Humidity (%)"
	p.Y.Label.Text = "Frequency (Days)"

	vals := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return p, nil
	}

	hist, err := plotter.NewHist(vals, humidityBins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = colorHumidity
	hist.LineStyle.Color = color.Black
	p.Add(hist)
	return p, nil
}

func temperatureTrend(rows []domain.Observation) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Daily Temperature Trends Over Time"
	p.Y.Label.Text = "Temperature (°C)"
	dateAxis(p)
	p.Legend.Top = true

	pts := series(rows, domain.ColTemperature)
	if len(pts) == 0 {
		return p, nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = colorTrend
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("Daily Temperature (°C)", line)
	return p, nil
}

func monthlyRainfall(monthly []domain.MonthlyTotal) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Monthly Total Rainfall (mm)"
	p.X.Label.Text = "Month"
	p.Y.Label.Text = "Rainfall (mm)"
	p.Add(plotter.NewGrid())
	if len(monthly) == 0 {
		return p, nil
	}

	vals := make(plotter.Values, len(monthly))
	labels := make([]string, len(monthly))
	for i, m := range monthly {
		vals[i] = m.Rainfall
		labels[i] = m.Label
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = colorRainfall
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}
