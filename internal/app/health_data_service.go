package app

import (
	"context"
	"fmt"
	"time"

	"healthcharts/internal/domain"
)

// HealthDataService is the SampleSource backed by stored samples. It applies
// the user's per-metric authorization before touching the repository.
type HealthDataService struct {
	samples domain.SampleRepository
	perms   domain.PermissionRepository
	loc     *time.Location
}

var _ domain.SampleSource = (*HealthDataService)(nil)

// NewHealthDataService creates a HealthDataService bucketing days in loc.
func NewHealthDataService(samples domain.SampleRepository, perms domain.PermissionRepository, loc *time.Location) *HealthDataService {
	if loc == nil {
		loc = time.Local
	}
	return &HealthDataService{samples: samples, perms: perms, loc: loc}
}

// FetchDaily returns the daily statistic for metric over iv: the step total
// per day, or the most recent weight per day. An empty range is ErrNoData.
func (s *HealthDataService) FetchDaily(ctx context.Context, userID int64, metric domain.Metric, iv domain.DateInterval) ([]domain.RawSample, error) {
	status, err := s.perms.GetStatus(ctx, userID, metric)
	if err != nil {
		return nil, fmt.Errorf("%w: read permission: %v", domain.ErrUnableToComplete, err)
	}
	if status == domain.StatusNotDetermined {
		return nil, domain.ErrAuthNotDetermined
	}

	out, err := s.samples.DailyStatistics(ctx, userID, metric, domain.AggregationFor(metric), iv, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnableToComplete, err)
	}
	if len(out) == 0 {
		return nil, domain.ErrNoData
	}
	return out, nil
}

// AddSample stores one measurement. Writes need an explicit grant.
func (s *HealthDataService) AddSample(ctx context.Context, userID int64, metric domain.Metric, sample domain.RawSample) error {
	status, err := s.perms.GetStatus(ctx, userID, metric)
	if err != nil {
		return fmt.Errorf("%w: read permission: %v", domain.ErrUnableToComplete, err)
	}
	switch status {
	case domain.StatusNotDetermined:
		return domain.ErrAuthNotDetermined
	case domain.StatusDenied:
		return &domain.SharingDeniedError{Metric: metric}
	}

	if _, err := s.samples.AddSample(ctx, userID, metric, sample.Value, sample.Start); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnableToComplete, err)
	}
	return nil
}
