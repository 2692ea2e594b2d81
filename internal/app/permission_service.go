package app

import (
	"context"

	"healthcharts/internal/domain"
)

// PermissionService manages per-metric authorization decisions.
type PermissionService struct {
	repo domain.PermissionRepository
}

// NewPermissionService creates a PermissionService backed by repo.
func NewPermissionService(repo domain.PermissionRepository) *PermissionService {
	return &PermissionService{repo: repo}
}

// Statuses returns the user's decision for every metric.
func (s *PermissionService) Statuses(ctx context.Context, userID int64) (map[domain.Metric]domain.AuthorizationStatus, error) {
	out := make(map[domain.Metric]domain.AuthorizationStatus, len(domain.Metrics))
	for _, m := range domain.Metrics {
		st, err := s.repo.GetStatus(ctx, userID, m)
		if err != nil {
			return nil, err
		}
		out[m] = st
	}
	return out, nil
}

// Set records a grant or denial for one metric.
func (s *PermissionService) Set(ctx context.Context, userID int64, metric domain.Metric, status domain.AuthorizationStatus) error {
	if _, err := domain.ParseAuthorizationStatus(string(status)); err != nil {
		return err
	}
	return s.repo.SetStatus(ctx, userID, metric, status)
}
