// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"fmt"
	"time"
)

// Metric names a health quantity tracked by the system.
type Metric string

const (
	MetricSteps  Metric = "steps"
	MetricWeight Metric = "weight"
)

// Metrics lists every supported metric in display order.
var Metrics = []Metric{MetricSteps, MetricWeight}

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricSteps, MetricWeight:
		return Metric(s), nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Title is the display name of the metric.
func (m Metric) Title() string {
	switch m {
	case MetricSteps:
		return "Steps"
	case MetricWeight:
		return "Weight"
	}
	return string(m)
}

// RawSample is one measurement as delivered by a SampleSource.
type RawSample struct {
	Start time.Time
	Value float64
}

// Sample is a stored measurement row.
type Sample struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"userId"`
	Metric  Metric    `json:"metric"`
	Value   float64   `json:"value"`
	TakenAt time.Time `json:"takenAt"`
}

// Aggregation selects how samples within one day collapse to one value.
type Aggregation int

const (
	// AggregateSum adds up every sample of the day (steps).
	AggregateSum Aggregation = iota
	// AggregateMostRecent keeps the latest sample of the day (weight).
	AggregateMostRecent
)

// AggregationFor returns the daily statistic used for a metric.
func AggregationFor(m Metric) Aggregation {
	if m == MetricWeight {
		return AggregateMostRecent
	}
	return AggregateSum
}

// DateInterval is a half-open [Start, End) range.
type DateInterval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval.
func (iv DateInterval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// IntervalEndingToday returns the interval covering daysBack whole days,
// ending at the close of the local day containing now.
func IntervalEndingToday(now time.Time, daysBack int) DateInterval {
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := startOfToday.AddDate(0, 0, 1)
	return DateInterval{Start: end.AddDate(0, 0, -daysBack), End: end}
}

// SampleRepository is the port for raw sample persistence. Daily statistics
// are bucketed by local day in loc.
type SampleRepository interface {
	AddSample(ctx context.Context, userID int64, metric Metric, value float64, takenAt time.Time) (int64, error)
	DailyStatistics(ctx context.Context, userID int64, metric Metric, agg Aggregation, iv DateInterval, loc *time.Location) ([]RawSample, error)
}

// SampleSource supplies one sample per day with data in iv, oldest first,
// and accepts new samples. Implementations report ErrAuthNotDetermined,
// *SharingDeniedError, ErrNoData and ErrUnableToComplete.
type SampleSource interface {
	FetchDaily(ctx context.Context, userID int64, metric Metric, iv DateInterval) ([]RawSample, error)
	AddSample(ctx context.Context, userID int64, metric Metric, s RawSample) error
}
