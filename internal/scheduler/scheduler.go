// Package scheduler runs periodic chart refreshes and session cleanup.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher refreshes every known user's charts.
type Refresher interface {
	RefreshAll(ctx context.Context)
}

// SessionPurger removes expired sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) error
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	charts   Refresher
	sessions SessionPurger
	timeout  time.Duration
}

// New creates a Scheduler whose expressions are evaluated in loc. Overlapping
// runs of the same job are skipped.
func New(charts Refresher, sessions SessionPurger, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		charts:   charts,
		sessions: sessions,
		timeout:  2 * time.Minute,
	}
}

// Register adds the refresh and cleanup jobs with standard five-field
// expressions.
func (s *Scheduler) Register(refreshCron, cleanupCron string) error {
	if _, err := s.cron.AddFunc(refreshCron, s.RunRefresh); err != nil {
		return fmt.Errorf("register refresh: %w", err)
	}
	if _, err := s.cron.AddFunc(cleanupCron, s.RunCleanup); err != nil {
		return fmt.Errorf("register session cleanup: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("scheduler: started")
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	log.Println("scheduler: stopped")
}

// RunRefresh refreshes every user's charts once.
func (s *Scheduler) RunRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	log.Println("scheduler: running chart refresh")
	s.charts.RefreshAll(ctx)
	log.Printf("scheduler: chart refresh done in %s", time.Since(start).Round(time.Millisecond))
}

// RunCleanup purges expired sessions once.
func (s *Scheduler) RunCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.sessions.PurgeExpiredSessions(ctx); err != nil {
		log.Printf("scheduler: session cleanup: %v", err)
	}
}
