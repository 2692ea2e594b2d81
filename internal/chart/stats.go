package chart

import (
	"errors"
	"fmt"
	"math"

	"healthcharts/internal/domain"
)

// Average is the arithmetic mean of the point values, 0 for no points.
func Average(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total / float64(len(points))
}

// Min is the smallest point value, 0 for no points.
func Min(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	lo := points[0].Value
	for _, p := range points[1:] {
		lo = math.Min(lo, p.Value)
	}
	return lo
}

// DefaultWindowDays is the display window of every chart.
const DefaultWindowDays = 28

// ErrWindowMisaligned is returned when a fetched series does not fit the
// window it was requested for.
var ErrWindowMisaligned = errors.New("series does not fit fetch window")

// Window fixes how many days each series is fetched for.
type Window struct {
	Days int
}

// DiffDays is the number of days fetched for the weight-change source: one
// leading day more than the display window, so Days differences result.
func (w Window) DiffDays() int { return w.Days + 1 }

// CheckWindow rejects a series with more points than days or with points
// outside iv. Fewer points than days is fine; days without data are skipped.
func CheckWindow(points []Point, days int, iv domain.DateInterval) error {
	if len(points) > days {
		return fmt.Errorf("%w: %d points for %d days", ErrWindowMisaligned, len(points), days)
	}
	for _, p := range points {
		if !iv.Contains(p.Date) {
			return fmt.Errorf("%w: %s outside [%s, %s)", ErrWindowMisaligned,
				p.Date.Format("2006-01-02"), iv.Start.Format("2006-01-02"), iv.End.Format("2006-01-02"))
		}
	}
	return nil
}
