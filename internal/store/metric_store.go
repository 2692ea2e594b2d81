// Package store holds the most recently fetched series per user.
package store

import (
	"slices"
	"sort"
	"sync"
	"time"

	"healthcharts/internal/chart"
)

// Snapshot is one fetch cycle's worth of series. WeightDiffSource covers
// one leading day more than Weights.
type Snapshot struct {
	Steps            []chart.Point
	Weights          []chart.Point
	WeightDiffSource []chart.Point
	FetchedAt        time.Time
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Steps:            slices.Clone(s.Steps),
		Weights:          slices.Clone(s.Weights),
		WeightDiffSource: slices.Clone(s.WeightDiffSource),
		FetchedAt:        s.FetchedAt,
	}
}

// MetricStore is a concurrency-safe holder of the latest Snapshot. It is
// empty until the first Replace.
type MetricStore struct {
	// update serializes Update calls; readers only take mu.
	update sync.Mutex
	mu     sync.RWMutex
	snap   Snapshot
}

// NewMetricStore creates an empty MetricStore.
func NewMetricStore() *MetricStore {
	return &MetricStore{}
}

// Replace swaps in s wholesale. The store keeps its own copy.
func (m *MetricStore) Replace(s Snapshot) {
	c := s.clone()
	m.mu.Lock()
	m.snap = c
	m.mu.Unlock()
}

// Update runs fn on a copy of the current snapshot and stores the result
// unless fn returns an error. Updates on one store run one at a time, so fn
// always starts from the result of the previous Update. Readers keep seeing
// the previous snapshot while fn runs.
func (m *MetricStore) Update(fn func(Snapshot) (Snapshot, error)) error {
	m.update.Lock()
	defer m.update.Unlock()
	next, err := fn(m.Snapshot())
	if err != nil {
		return err
	}
	m.Replace(next)
	return nil
}

// Snapshot returns a copy of the current series that is safe to read while
// another goroutine calls Replace.
func (m *MetricStore) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.clone()
}

// Loaded reports whether a fetch cycle has completed.
func (m *MetricStore) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.snap.FetchedAt.IsZero()
}

// Registry keeps one MetricStore per user.
type Registry struct {
	mu     sync.Mutex
	stores map[int64]*MetricStore
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[int64]*MetricStore)}
}

// For returns the user's store, creating an empty one on first use.
func (r *Registry) For(userID int64) *MetricStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[userID]
	if !ok {
		s = NewMetricStore()
		r.stores[userID] = s
	}
	return s
}

// Users lists every user with a store, ascending.
func (r *Registry) Users() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
