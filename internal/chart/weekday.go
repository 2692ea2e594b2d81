package chart

import (
	"cmp"
	"slices"
)

// AverageByWeekday groups points by weekday and returns one mean per
// weekday present, ordered Sunday..Saturday. Empty input gives an empty
// result.
func AverageByWeekday(points []Point) []WeekdayAverage {
	return groupByWeekday(points)
}

// AverageDailyDiffs differences consecutive points (which must already be
// chronological) and averages the differences per weekday. Each difference
// is dated on the later day, so n points yield n-1 differences; callers
// wanting N days of change must supply N+1 points.
func AverageDailyDiffs(points []Point) []WeekdayAverage {
	if len(points) < 2 {
		return []WeekdayAverage{}
	}
	diffs := make([]Point, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		diffs = append(diffs, Point{
			Date:  points[i].Date,
			Value: points[i].Value - points[i-1].Value,
		})
	}
	return groupByWeekday(diffs)
}

// groupByWeekday stable-sorts by weekday index, then averages each run of
// equal indices. The first point of a run is its exemplar.
func groupByWeekday(points []Point) []WeekdayAverage {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b Point) int {
		return cmp.Compare(WeekdayIndex(a.Date), WeekdayIndex(b.Date))
	})

	out := make([]WeekdayAverage, 0, 7)
	for start := 0; start < len(sorted); {
		day := WeekdayIndex(sorted[start].Date)
		end := start
		var total float64
		for end < len(sorted) && WeekdayIndex(sorted[end].Date) == day {
			total += sorted[end].Value
			end++
		}
		out = append(out, WeekdayAverage{
			Date:  sorted[start].Date,
			Value: total / float64(end-start),
		})
		start = end
	}
	return out
}
