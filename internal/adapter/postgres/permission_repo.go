package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"healthcharts/internal/domain"
)

var _ domain.PermissionRepository = (*DB)(nil)

// GetStatus returns the stored decision, or StatusNotDetermined when the user
// has not made one.
func (d *DB) GetStatus(ctx context.Context, userID int64, metric domain.Metric) (domain.AuthorizationStatus, error) {
	var status string
	err := d.sql.QueryRowContext(ctx,
		"SELECT status FROM permissions WHERE user_id = $1 AND metric = $2;",
		userID, string(metric),
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StatusNotDetermined, nil
	}
	if err != nil {
		return "", err
	}
	return domain.AuthorizationStatus(status), nil
}

// SetStatus upserts a decision.
func (d *DB) SetStatus(ctx context.Context, userID int64, metric domain.Metric, status domain.AuthorizationStatus) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO permissions(user_id, metric, status, updated_at) VALUES($1, $2, $3, $4)
ON CONFLICT (user_id, metric) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at;`,
		userID, string(metric), string(status), time.Now(),
	)
	return err
}
