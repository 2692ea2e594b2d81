package postgres

import (
	"context"
	"time"

	"healthcharts/internal/domain"
)

var _ domain.SampleRepository = (*DB)(nil)

// AddSample inserts a measurement.
func (d *DB) AddSample(ctx context.Context, userID int64, metric domain.Metric, value float64, takenAt time.Time) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO samples(user_id, metric, value, taken_at) VALUES($1, $2, $3, $4) RETURNING id;",
		userID, string(metric), value, takenAt.UTC(),
	).Scan(&id)
	return id, err
}

// Both queries bucket by the local calendar day of taken_at in $5 and return
// the day as a YYYY-MM-DD string, which is rebuilt in loc.
const (
	dailySumQuery = `
SELECT to_char(date_trunc('day', taken_at AT TIME ZONE $5), 'YYYY-MM-DD') AS day, SUM(value)
FROM samples
WHERE user_id = $1 AND metric = $2 AND taken_at >= $3 AND taken_at < $4
GROUP BY day
ORDER BY day;`

	dailyMostRecentQuery = `
SELECT day, value FROM (
	SELECT DISTINCT ON (day) to_char(date_trunc('day', taken_at AT TIME ZONE $5), 'YYYY-MM-DD') AS day, value
	FROM samples
	WHERE user_id = $1 AND metric = $2 AND taken_at >= $3 AND taken_at < $4
	ORDER BY day, taken_at DESC, id DESC
) latest
ORDER BY day;`
)

// DailyStatistics returns one aggregated value per local day with data in iv.
func (d *DB) DailyStatistics(ctx context.Context, userID int64, metric domain.Metric, agg domain.Aggregation, iv domain.DateInterval, loc *time.Location) ([]domain.RawSample, error) {
	q := dailySumQuery
	if agg == domain.AggregateMostRecent {
		q = dailyMostRecentQuery
	}
	rows, err := d.sql.QueryContext(ctx, q, userID, string(metric), iv.Start.UTC(), iv.End.UTC(), loc.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RawSample
	for rows.Next() {
		sample, err := scanDay(rows, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}
