// Package chart derives chart series from canonical (date, value) points:
// weekday averages, weekday-grouped day-over-day changes and selection
// lookups. Everything here is pure; callers pass in snapshots.
package chart

import (
	"encoding/json"
	"time"

	"healthcharts/internal/domain"
)

// Point is the canonical unit every derivation works on.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// WeekdayAverage is the mean for one weekday. Date is an exemplar that only
// carries the weekday; it says nothing about recency.
type WeekdayAverage struct {
	Date  time.Time
	Value float64
}

// Weekday returns the 1-based weekday index of the exemplar date.
func (w WeekdayAverage) Weekday() int { return WeekdayIndex(w.Date) }

// Title returns the English weekday name of the exemplar date.
func (w WeekdayAverage) Title() string { return w.Date.Weekday().String() }

// MarshalJSON adds the weekday index and name for display.
func (w WeekdayAverage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date    time.Time `json:"date"`
		Value   float64   `json:"value"`
		Weekday int       `json:"weekday"`
		Title   string    `json:"title"`
	}{w.Date, w.Value, w.Weekday(), w.Title()})
}

// WeekdayIndex maps t to 1..7 with Sunday=1, in t's own location.
func WeekdayIndex(t time.Time) int {
	return int(t.Weekday()) + 1
}

// Normalize maps raw samples onto points one-to-one, keeping order.
func Normalize(samples []domain.RawSample) []Point {
	out := make([]Point, len(samples))
	for i, s := range samples {
		out[i] = Point{Date: s.Start, Value: s.Value}
	}
	return out
}
