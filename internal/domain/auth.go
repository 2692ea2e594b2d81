package domain

import (
	"context"
	"fmt"
	"time"
)

// User represents an authenticated user in the system.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents an active user session.
type Session struct {
	Token     string
	UserID    int64
	UserAgent string
	IP        string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthorizationStatus is a user's access decision for one metric.
type AuthorizationStatus string

const (
	StatusNotDetermined AuthorizationStatus = "notDetermined"
	StatusDenied        AuthorizationStatus = "sharingDenied"
	StatusAuthorized    AuthorizationStatus = "sharingAuthorized"
)

// ParseAuthorizationStatus accepts the two statuses a user can set.
func ParseAuthorizationStatus(s string) (AuthorizationStatus, error) {
	switch AuthorizationStatus(s) {
	case StatusDenied, StatusAuthorized:
		return AuthorizationStatus(s), nil
	}
	return "", fmt.Errorf("status must be %q or %q", StatusDenied, StatusAuthorized)
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}

// PermissionRepository stores per-metric authorization decisions. A metric
// with no stored decision reads as StatusNotDetermined.
type PermissionRepository interface {
	GetStatus(ctx context.Context, userID int64, metric Metric) (AuthorizationStatus, error)
	SetStatus(ctx context.Context, userID int64, metric Metric, status AuthorizationStatus) error
}
