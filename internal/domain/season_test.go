package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonOf(t *testing.T) {
	expected := map[time.Month]Season{
		time.January:   Winter,
		time.February:  Winter,
		time.March:     Spring,
		time.April:     Spring,
		time.May:       Spring,
		time.June:      Summer,
		time.July:      Summer,
		time.August:    Summer,
		time.September: Autumn,
		time.October:   Autumn,
		time.November:  Winter,
		time.December:  Winter,
	}

	for m, want := range expected {
		t.Run(m.String(), func(t *testing.T) {
			assert.Equal(t, want, SeasonOf(m))
		})
	}
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "December", MonthName(time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "July", MonthName(time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC)))
}
