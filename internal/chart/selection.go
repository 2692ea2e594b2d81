package chart

import "time"

// SelectByDate returns the first point on the same calendar day as
// selected, comparing days in selected's location. A nil selection never
// matches.
func SelectByDate(points []Point, selected *time.Time) (Point, bool) {
	if selected == nil {
		return Point{}, false
	}
	for _, p := range points {
		if sameDay(p.Date, *selected) {
			return p, true
		}
	}
	return Point{}, false
}

// SelectWeekdayByDate is SelectByDate over weekday entries, used by charts
// that plot weekday averages against their exemplar dates.
func SelectWeekdayByDate(items []WeekdayAverage, selected *time.Time) (WeekdayAverage, bool) {
	if selected == nil {
		return WeekdayAverage{}, false
	}
	for _, w := range items {
		if sameDay(w.Date, *selected) {
			return w, true
		}
	}
	return WeekdayAverage{}, false
}

// SelectByCumulativeValue resolves an angular pick: it walks items in
// display order keeping a running total and returns the first item at
// which the total reaches selected.
func SelectByCumulativeValue(items []WeekdayAverage, selected *float64) (WeekdayAverage, bool) {
	if selected == nil {
		return WeekdayAverage{}, false
	}
	var total float64
	for _, w := range items {
		total += w.Value
		if total >= *selected {
			return w, true
		}
	}
	return WeekdayAverage{}, false
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
