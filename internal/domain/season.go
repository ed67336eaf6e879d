package domain

import "time"

// Season is a seasonal bucket derived from the calendar month.
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Autumn Season = "Autumn"
)

// SeasonOrder is the fixed row order of seasonal aggregates.
var SeasonOrder = []Season{Winter, Spring, Summer, Autumn}

// SeasonOf maps a month to its season: Mar–May Spring, Jun–Aug Summer,
// Sep–Oct Autumn, otherwise Winter.
func SeasonOf(m time.Month) Season {
	switch {
	case m >= time.March && m <= time.May:
		return Spring
	case m >= time.June && m <= time.August:
		return Summer
	case m >= time.September && m <= time.October:
		return Autumn
	default:
		return Winter
	}
}

// MonthName returns the English month name of t, e.g. "January".
func MonthName(t time.Time) string {
	return t.Month().String()
}
