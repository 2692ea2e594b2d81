// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"healthcharts/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu          sync.Mutex
	samples     []domain.Sample
	users       []*domain.User
	sessions    map[string]*domain.Session
	permissions map[permKey]domain.AuthorizationStatus

	sampleIDCounter int64
	userIDCounter   int64
}

type permKey struct {
	userID int64
	metric domain.Metric
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions:    make(map[string]*domain.Session),
		permissions: make(map[permKey]domain.AuthorizationStatus),
	}
}

// Ensure interfaces are met.
var _ domain.SampleRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.PermissionRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- SampleRepository ---

// AddSample stores one measurement.
func (db *DB) AddSample(ctx context.Context, userID int64, metric domain.Metric, value float64, takenAt time.Time) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.sampleIDCounter++
	db.samples = append(db.samples, domain.Sample{
		ID:      db.sampleIDCounter,
		UserID:  userID,
		Metric:  metric,
		Value:   value,
		TakenAt: takenAt.UTC(),
	})
	return db.sampleIDCounter, nil
}

// DailyStatistics buckets the user's samples in iv by local day in loc and
// returns one value per day with data, oldest first.
func (db *DB) DailyStatistics(ctx context.Context, userID int64, metric domain.Metric, agg domain.Aggregation, iv domain.DateInterval, loc *time.Location) ([]domain.RawSample, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	type bucket struct {
		day    time.Time
		value  float64
		latest time.Time
	}
	buckets := make(map[time.Time]*bucket)

	for _, s := range db.samples {
		if s.UserID != userID || s.Metric != metric || !iv.Contains(s.TakenAt) {
			continue
		}
		local := s.TakenAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{day: day, value: s.Value, latest: s.TakenAt}
			buckets[day] = b
			continue
		}
		switch agg {
		case domain.AggregateSum:
			b.value += s.Value
		case domain.AggregateMostRecent:
			// Ties keep the later insert.
			if !s.TakenAt.Before(b.latest) {
				b.value = s.Value
				b.latest = s.TakenAt
			}
		}
	}

	out := make([]domain.RawSample, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, domain.RawSample{Start: b.day, Value: b.value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// --- PermissionRepository ---

// GetStatus returns the stored decision, or StatusNotDetermined.
func (db *DB) GetStatus(ctx context.Context, userID int64, metric domain.Metric) (domain.AuthorizationStatus, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if st, ok := db.permissions[permKey{userID, metric}]; ok {
		return st, nil
	}
	return domain.StatusNotDetermined, nil
}

// SetStatus records a decision.
func (db *DB) SetStatus(ctx context.Context, userID int64, metric domain.Metric, status domain.AuthorizationStatus) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.permissions[permKey{userID, metric}] = status
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token. The expiry check is left to the
// caller.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
