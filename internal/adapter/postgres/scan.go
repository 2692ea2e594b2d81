package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"healthcharts/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// lookup scans a single-row query. A missing row is (nil, nil).
func lookup[T any](row rowScanner, scan func(rowScanner) (*T, error)) (*T, error) {
	v, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

const userColumns = "id, username, password_hash, created_at"

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

const sessionColumns = "token, user_id, user_agent, ip, expires_at, created_at"

func scanSession(row rowScanner) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.Token, &s.UserID, &s.UserAgent, &s.IP, &s.ExpiresAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// scanDay reads a (YYYY-MM-DD, value) row and places the day in loc.
func scanDay(row rowScanner, loc *time.Location) (domain.RawSample, error) {
	var (
		day   string
		value float64
	)
	if err := row.Scan(&day, &value); err != nil {
		return domain.RawSample{}, err
	}
	start, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return domain.RawSample{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return domain.RawSample{Start: start, Value: value}, nil
}
