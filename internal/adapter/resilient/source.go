// Package resilient wraps a SampleSource with a circuit breaker and retry
// with exponential backoff.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/sony/gobreaker"

	"healthcharts/internal/domain"
)

// BackoffConfig controls retries of failed reads.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// StateObserver is told about breaker state changes.
type StateObserver interface {
	SetCircuitBreakerState(target string, state float64)
}

// Config configures a Source.
type Config struct {
	Name     string
	Backoff  BackoffConfig
	Observer StateObserver
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open.
	Timeout time.Duration
}

// Source is a domain.SampleSource guarded by a circuit breaker. Only
// ErrUnableToComplete counts as a failure; the other source errors describe
// the user's data or decisions and pass through.
type Source struct {
	next    domain.SampleSource
	cb      *gobreaker.CircuitBreaker
	backoff BackoffConfig
}

var _ domain.SampleSource = (*Source)(nil)

// New wraps next.
func New(next domain.SampleSource, cfg Config) *Source {
	if cfg.Name == "" {
		cfg.Name = "samples"
	}
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff.InitialInterval = 200 * time.Millisecond
	}

	obs := cfg.Observer
	if obs != nil {
		obs.SetCircuitBreakerState(cfg.Name, 0)
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrUnableToComplete)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("breaker: %s %s -> %s", name, from, to)
			if obs != nil {
				obs.SetCircuitBreakerState(name, stateValue(to))
			}
		},
	})
	return &Source{next: next, cb: cb, backoff: cfg.Backoff}
}

// State reports the breaker state.
func (s *Source) State() gobreaker.State {
	return s.cb.State()
}

// FetchDaily reads through the breaker, retrying transient failures.
func (s *Source) FetchDaily(ctx context.Context, userID int64, metric domain.Metric, iv domain.DateInterval) ([]domain.RawSample, error) {
	var attempt int
	for {
		out, err := s.execute(func() (interface{}, error) {
			return s.next.FetchDaily(ctx, userID, metric, iv)
		})
		if err == nil {
			return out.([]domain.RawSample), nil
		}
		if !errors.Is(err, domain.ErrUnableToComplete) || isOpen(err) || attempt >= s.backoff.MaxRetries {
			return nil, err
		}

		delay := s.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if s.backoff.MaxInterval > 0 && delay > s.backoff.MaxInterval {
			delay = s.backoff.MaxInterval
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", domain.ErrUnableToComplete, ctx.Err())
		case <-timer.C:
		}
		attempt++
	}
}

// AddSample writes through the breaker without retrying.
func (s *Source) AddSample(ctx context.Context, userID int64, metric domain.Metric, sample domain.RawSample) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.next.AddSample(ctx, userID, metric, sample)
	})
	return err
}

func (s *Source) execute(fn func() (interface{}, error)) (interface{}, error) {
	out, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &openError{err: err}
	}
	return out, err
}

// openError reports a rejected call. It is an ErrUnableToComplete so
// callers see the usual transient failure.
type openError struct {
	err error
}

func (e *openError) Error() string {
	return fmt.Sprintf("%v: %v", domain.ErrUnableToComplete, e.err)
}

func (e *openError) Is(target error) bool {
	return target == domain.ErrUnableToComplete
}

func (e *openError) Unwrap() error { return e.err }

func isOpen(err error) bool {
	var oe *openError
	return errors.As(err, &oe)
}

func stateValue(st gobreaker.State) float64 {
	switch st {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}
