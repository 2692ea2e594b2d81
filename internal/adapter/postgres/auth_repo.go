package postgres

import (
	"context"
	"time"

	"healthcharts/internal/domain"
)

var (
	_ domain.UserRepository    = (*DB)(nil)
	_ domain.SessionRepository = (*SessionRepo)(nil)
)

// GetByUsername returns nil when no user has that name.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1;", username)
	return lookup(row, scanUser)
}

// GetByID returns nil when the user does not exist.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := d.sql.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1;", id)
	return lookup(row, scanUser)
}

// Create inserts a user. A duplicate username fails on the unique index.
func (d *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	row := d.sql.QueryRowContext(ctx,
		"INSERT INTO users(username, password_hash, created_at) VALUES($1, $2, $3) RETURNING "+userColumns+";",
		username, passwordHash, time.Now(),
	)
	return scanUser(row)
}

func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users;").Scan(&n)
	return n, err
}

// SessionRepo stores login sessions in the sessions table.
type SessionRepo struct {
	db *DB
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create records a session bound to the client's user agent and address.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions("+sessionColumns+") VALUES($1, $2, $3, $4, $5, $6);",
		token, userID, userAgent, ip, expiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

// GetByToken returns nil for an unknown token. Expiry is left to the caller.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	row := r.db.sql.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE token = $1;", token)
	return lookup(row, scanSession)
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1;", token)
	return err
}

// DeleteExpired removes every session past its expiry.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1;", time.Now().UTC())
	return err
}
