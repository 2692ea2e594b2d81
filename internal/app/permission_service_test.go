package app

import (
	"context"
	"testing"

	"healthcharts/internal/domain"
)

func TestPermissionService_Statuses(t *testing.T) {
	repo := &mockPermissionRepo{statuses: map[domain.Metric]domain.AuthorizationStatus{
		domain.MetricWeight: domain.StatusDenied,
	}}
	svc := NewPermissionService(repo)

	got, err := svc.Statuses(context.Background(), 1)
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if got[domain.MetricSteps] != domain.StatusNotDetermined {
		t.Errorf("steps = %s, want notDetermined", got[domain.MetricSteps])
	}
	if got[domain.MetricWeight] != domain.StatusDenied {
		t.Errorf("weight = %s, want sharingDenied", got[domain.MetricWeight])
	}
}

func TestPermissionService_Set(t *testing.T) {
	var stored domain.AuthorizationStatus
	repo := &mockPermissionRepo{
		setFn: func(_ context.Context, _ int64, _ domain.Metric, status domain.AuthorizationStatus) error {
			stored = status
			return nil
		},
	}
	svc := NewPermissionService(repo)
	ctx := context.Background()

	if err := svc.Set(ctx, 1, domain.MetricSteps, domain.StatusAuthorized); err != nil {
		t.Fatalf("set: %v", err)
	}
	if stored != domain.StatusAuthorized {
		t.Errorf("stored %s", stored)
	}
	if err := svc.Set(ctx, 1, domain.MetricSteps, domain.StatusNotDetermined); err == nil {
		t.Error("resetting to notDetermined should be rejected")
	}
}
