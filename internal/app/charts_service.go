package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"healthcharts/internal/chart"
	"healthcharts/internal/domain"
	"healthcharts/internal/store"
)

// RefreshObserver records the outcome of fetch cycles.
type RefreshObserver interface {
	ObserveRefresh(outcome string, d time.Duration)
}

// ChartsConfig configures a ChartsService.
type ChartsConfig struct {
	Window     chart.Window
	Location   *time.Location
	GoalWeight float64
	Observer   RefreshObserver
	// Now overrides the clock in tests.
	Now func() time.Time
}

// ChartsService runs fetch cycles into each user's MetricStore and derives
// chart views from the stored series.
type ChartsService struct {
	source domain.SampleSource
	stores *store.Registry
	cfg    ChartsConfig
}

// NewChartsService creates a ChartsService reading from source.
func NewChartsService(source domain.SampleSource, stores *store.Registry, cfg ChartsConfig) *ChartsService {
	if cfg.Window.Days <= 0 {
		cfg.Window.Days = chart.DefaultWindowDays
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ChartsService{source: source, stores: stores, cfg: cfg}
}

// Location is the zone days are bucketed and compared in.
func (s *ChartsService) Location() *time.Location {
	return s.cfg.Location
}

// StepChart is the daily step bar chart.
type StepChart struct {
	Items     []chart.Point `json:"items"`
	Average   int           `json:"average"`
	Selected  *chart.Point  `json:"selected"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// WeightChart is the daily weight line chart.
type WeightChart struct {
	Items     []chart.Point `json:"items"`
	Average   float64       `json:"average"`
	Min       float64       `json:"min"`
	Goal      float64       `json:"goal"`
	Selected  *chart.Point  `json:"selected"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// WeekdayChart is a chart of one value per weekday.
type WeekdayChart struct {
	Items     []chart.WeekdayAverage `json:"items"`
	Selected  *chart.WeekdayAverage  `json:"selected"`
	FetchedAt time.Time              `json:"fetchedAt"`
}

// Refresh fetches steps, weights and the weight-change source for the
// user's window and replaces the user's store. On any failure the previous
// series are kept.
func (s *ChartsService) Refresh(ctx context.Context, userID int64) error {
	start := time.Now()
	err := s.refresh(ctx, userID, domain.MetricSteps, domain.MetricWeight)
	s.observe(err, time.Since(start))
	if err != nil {
		log.Printf("refresh: user %d: %v", userID, err)
	}
	return err
}

// RefreshMetric refetches only the series backed by metric, keeping the
// others from the current snapshot. An empty store gets a full cycle.
func (s *ChartsService) RefreshMetric(ctx context.Context, userID int64, metric domain.Metric) error {
	start := time.Now()
	err := s.refresh(ctx, userID, metric)
	s.observe(err, time.Since(start))
	if err != nil {
		log.Printf("refresh: user %d %s: %v", userID, metric, err)
	}
	return err
}

// RefreshAll refreshes every user that has a store. Failures are logged and
// do not stop the remaining users.
func (s *ChartsService) RefreshAll(ctx context.Context) {
	for _, id := range s.stores.Users() {
		if ctx.Err() != nil {
			return
		}
		_ = s.Refresh(ctx, id)
	}
}

func (s *ChartsService) refresh(ctx context.Context, userID int64, metrics ...domain.Metric) error {
	now := s.cfg.Now().In(s.cfg.Location)
	return s.stores.For(userID).Update(func(next store.Snapshot) (store.Snapshot, error) {
		if next.FetchedAt.IsZero() {
			metrics = domain.Metrics
		}
		for _, m := range metrics {
			switch m {
			case domain.MetricSteps:
				steps, err := s.fetch(ctx, userID, m, now, s.cfg.Window.Days)
				if err != nil {
					return next, err
				}
				next.Steps = steps
			case domain.MetricWeight:
				weights, err := s.fetch(ctx, userID, m, now, s.cfg.Window.Days)
				if err != nil {
					return next, err
				}
				diffSource, err := s.fetch(ctx, userID, m, now, s.cfg.Window.DiffDays())
				if err != nil {
					return next, err
				}
				next.Weights = weights
				next.WeightDiffSource = diffSource
			}
		}

		next.FetchedAt = now
		log.Printf("refresh: user %d: %d steps, %d weights, %d diff source days",
			userID, len(next.Steps), len(next.Weights), len(next.WeightDiffSource))
		return next, nil
	})
}

func (s *ChartsService) fetch(ctx context.Context, userID int64, metric domain.Metric, now time.Time, days int) ([]chart.Point, error) {
	iv := domain.IntervalEndingToday(now, days)
	raw, err := s.source.FetchDaily(ctx, userID, metric, iv)
	if errors.Is(err, domain.ErrNoData) {
		return []chart.Point{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", metric, err)
	}
	points := chart.Normalize(raw)
	if err := chart.CheckWindow(points, days, iv); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", metric, err)
	}
	return points, nil
}

func (s *ChartsService) observe(err error, d time.Duration) {
	if s.cfg.Observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.cfg.Observer.ObserveRefresh(outcome, d)
}

// snapshot returns the user's series, running a first fetch cycle when the
// store is still empty.
func (s *ChartsService) snapshot(ctx context.Context, userID int64) (store.Snapshot, error) {
	ms := s.stores.For(userID)
	if !ms.Loaded() {
		if err := s.Refresh(ctx, userID); err != nil {
			return store.Snapshot{}, err
		}
	}
	return ms.Snapshot(), nil
}

// Steps returns the step chart with the point on the selected day, if any.
func (s *ChartsService) Steps(ctx context.Context, userID int64, selected *time.Time) (StepChart, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return StepChart{}, err
	}
	out := StepChart{
		Items:     snap.Steps,
		Average:   int(math.Round(chart.Average(snap.Steps))),
		FetchedAt: snap.FetchedAt,
	}
	if p, ok := chart.SelectByDate(snap.Steps, selected); ok {
		out.Selected = &p
	}
	return out, nil
}

// StepWeekdays returns average steps per weekday. selected is a cumulative
// value along the weekday order, as produced by an angular pick.
func (s *ChartsService) StepWeekdays(ctx context.Context, userID int64, selected *float64) (WeekdayChart, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return WeekdayChart{}, err
	}
	out := WeekdayChart{Items: chart.AverageByWeekday(snap.Steps), FetchedAt: snap.FetchedAt}
	if w, ok := chart.SelectByCumulativeValue(out.Items, selected); ok {
		out.Selected = &w
	}
	return out, nil
}

// Weight returns the weight chart in pounds.
func (s *ChartsService) Weight(ctx context.Context, userID int64, selected *time.Time) (WeightChart, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return WeightChart{}, err
	}
	out := WeightChart{
		Items:     snap.Weights,
		Average:   chart.Average(snap.Weights),
		Min:       chart.Min(snap.Weights),
		Goal:      s.cfg.GoalWeight,
		FetchedAt: snap.FetchedAt,
	}
	if p, ok := chart.SelectByDate(snap.Weights, selected); ok {
		out.Selected = &p
	}
	return out, nil
}

// WeightDiffs returns the average day-over-day weight change per weekday.
func (s *ChartsService) WeightDiffs(ctx context.Context, userID int64, selected *time.Time) (WeekdayChart, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return WeekdayChart{}, err
	}
	out := WeekdayChart{Items: chart.AverageDailyDiffs(snap.WeightDiffSource), FetchedAt: snap.FetchedAt}
	if w, ok := chart.SelectWeekdayByDate(out.Items, selected); ok {
		out.Selected = &w
	}
	return out, nil
}

// Samples returns the stored series for metric, newest first.
func (s *ChartsService) Samples(ctx context.Context, userID int64, metric domain.Metric) ([]chart.Point, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := snap.Steps
	if metric == domain.MetricWeight {
		items = snap.Weights
	}
	slices.Reverse(items)
	return items, nil
}
