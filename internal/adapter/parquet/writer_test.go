package parquet

import (
	"context"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/couchcryptid/weather-analysis/internal/domain"
)

func TestWriter_Export(t *testing.T) {
	date := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	table := &domain.Table{Observations: []domain.Observation{
		{Date: date, Temperature: 15, Rainfall: 2, Humidity: 70, WindSpeed: 11, City: "Rome", MonthName: "April", Season: domain.Spring},
		{Date: date, Temperature: math.NaN(), Rainfall: 0, Humidity: 65, WindSpeed: 4, City: "Oslo", MonthName: "April", Season: domain.Spring},
	}}
	path := filepath.Join(t.TempDir(), "cleaned.parquet")

	status, err := NewWriter(path, slog.New(slog.DiscardHandler)).Export(context.Background(), domain.Analysis{RunID: "run-1", Table: table})
	require.NoError(t, err)
	assert.Contains(t, status, path)

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(Row), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.Equal(t, int64(2), pr.GetNumRows())
	rows := make([]Row, 2)
	require.NoError(t, pr.Read(&rows))

	assert.Equal(t, date.UnixMilli(), rows[0].Date)
	require.NotNil(t, rows[0].Temperature)
	assert.Equal(t, 15.0, *rows[0].Temperature)
	assert.Equal(t, "Rome", rows[0].City)
	assert.Equal(t, "run-1", rows[0].RunID)
	assert.Nil(t, rows[1].Temperature)
	assert.Equal(t, "Spring", rows[1].Season)
	assert.Nil(t, rows[0].Extra)
}

func TestWriter_ExportKeepsExtraColumns(t *testing.T) {
	date := time.Date(2023, 9, 3, 0, 0, 0, 0, time.UTC)
	table := &domain.Table{
		ExtraColumns: []string{"Station", "Elevation"},
		Observations: []domain.Observation{
			{Date: date, Temperature: 20, Humidity: 60, WindSpeed: 9, City: "Lima", Extra: []string{"L1", "154"}, MonthName: "September", Season: domain.Autumn},
		},
	}
	path := filepath.Join(t.TempDir(), "cleaned.parquet")

	_, err := NewWriter(path, slog.New(slog.DiscardHandler)).Export(context.Background(), domain.Analysis{RunID: "run-2", Table: table})
	require.NoError(t, err)

	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(Row), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	rows := make([]Row, 1)
	require.NoError(t, pr.Read(&rows))
	require.NotNil(t, rows[0].Extra)
	assert.JSONEq(t, `{"Station": "L1", "Elevation": "154"}`, *rows[0].Extra)
}

func TestWriter_ExportBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "cleaned.parquet")
	_, err := NewWriter(path, slog.New(slog.DiscardHandler)).Export(context.Background(), domain.Analysis{Table: &domain.Table{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write parquet file")
}
