// Package xlsx exports the summary tables as an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/weather-analysis/internal/domain"
)

// Sheet names, in workbook order.
const (
	SheetCity        = "City"
	SheetCorrelation = "Correlation"
	SheetMonthly     = "Monthly"
	SheetSeasonal    = "Seasonal"
)

// Writer implements pipeline.Sink.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer saving the workbook at path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

func (w *Writer) Name() string { return "xlsx" }

// Export writes one sheet per summary table and saves the workbook.
func (w *Writer) Export(_ context.Context, a domain.Analysis) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	s := a.Summary
	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetCity, cityRows(s.Cities)},
		{SheetCorrelation, correlationRows(s.Correlation)},
		{SheetMonthly, monthlyRows(s.Monthly)},
		{SheetSeasonal, seasonalRows(s.Seasonal)},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.rows); err != nil {
			return "", err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(w.path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Debug("workbook written", "path", w.path)
	return fmt.Sprintf("Summary workbook saved to '%s'.", w.path), nil
}

func writeSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write sheet %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

// num leaves NaN cells empty.
func num(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func cityRows(stats []domain.CityStat) [][]interface{} {
	rows := [][]interface{}{{"City", "Count", "Max", "Min", "Mean", "Std"}}
	for _, c := range stats {
		rows = append(rows, []interface{}{c.City, c.Count, num(c.Max), num(c.Min), num(c.Mean), num(c.Std)})
	}
	return rows
}

func correlationRows(m domain.CorrelationMatrix) [][]interface{} {
	header := []interface{}{""}
	for _, c := range m.Columns {
		header = append(header, c)
	}
	rows := [][]interface{}{header}
	for i, c := range m.Columns {
		row := []interface{}{c}
		for _, v := range m.Values[i] {
			row = append(row, num(v))
		}
		rows = append(rows, row)
	}
	return rows
}

func monthlyRows(aggs []domain.MonthlyAggregate) [][]interface{} {
	rows := [][]interface{}{{"Month", "Count", "Mean Temperature_C", "Total Rainfall_mm", "Mean Humidity_perc"}}
	for _, m := range aggs {
		rows = append(rows, []interface{}{m.Month, m.Count, num(m.MeanTemperature), num(m.TotalRainfall), num(m.MeanHumidity)})
	}
	return rows
}

func seasonalRows(aggs []domain.SeasonalAggregate) [][]interface{} {
	rows := [][]interface{}{{"Season", "Count", "Mean Temperature_C", "Std Temperature_C", "Total Rainfall_mm", "Mean Humidity_perc"}}
	for _, s := range aggs {
		rows = append(rows, []interface{}{string(s.Season), s.Count, num(s.MeanTemperature), num(s.StdTemperature), num(s.TotalRainfall), num(s.MeanHumidity)})
	}
	return rows
}
