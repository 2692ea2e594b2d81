package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"healthcharts/internal/domain"
)

// SamplesService records new measurements and keeps the charts current.
type SamplesService struct {
	source domain.SampleSource
	charts *ChartsService
	now    func() time.Time
}

// NewSamplesService creates a SamplesService writing to source.
func NewSamplesService(source domain.SampleSource, charts *ChartsService) *SamplesService {
	return &SamplesService{source: source, charts: charts, now: time.Now}
}

// ParseValue validates a user-entered value for metric. Steps must be a
// positive whole number; weight must be positive with at most one decimal
// place and is returned in pounds.
func ParseValue(metric domain.Metric, raw, unit string) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidValue, raw)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: must be > 0", domain.ErrInvalidValue)
	}

	switch metric {
	case domain.MetricSteps:
		if !d.IsInteger() {
			return 0, fmt.Errorf("%w: steps must be a whole number", domain.ErrInvalidValue)
		}
		return d.InexactFloat64(), nil
	case domain.MetricWeight:
		if !d.Equal(d.Round(1)) {
			return 0, fmt.Errorf("%w: at most one decimal place", domain.ErrInvalidValue)
		}
		if unit == "" {
			unit = domain.UnitLb
		}
		if unit != domain.UnitKg && unit != domain.UnitLb {
			return 0, fmt.Errorf("%w: unit must be \"kg\" or \"lb\"", domain.ErrInvalidValue)
		}
		return domain.ToPounds(d.InexactFloat64(), unit), nil
	}
	return 0, fmt.Errorf("%w: unknown metric %q", domain.ErrInvalidValue, metric)
}

// Record validates and stores a measurement taken at takenAt (now when
// zero), then refetches the series it affects.
func (s *SamplesService) Record(ctx context.Context, userID int64, metric domain.Metric, raw, unit string, takenAt time.Time) error {
	value, err := ParseValue(metric, raw, unit)
	if err != nil {
		return err
	}
	if takenAt.IsZero() {
		takenAt = s.now()
	}
	if err := s.source.AddSample(ctx, userID, metric, domain.RawSample{Start: takenAt, Value: value}); err != nil {
		return err
	}
	return s.charts.RefreshMetric(ctx, userID, metric)
}
