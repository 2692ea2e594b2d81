package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"healthcharts/internal/chart"
)

func series(n int, v float64) []chart.Point {
	out := make([]chart.Point, n)
	start := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = chart.Point{Date: start.AddDate(0, 0, i), Value: v}
	}
	return out
}

func TestMetricStoreEmpty(t *testing.T) {
	s := NewMetricStore()
	if s.Loaded() {
		t.Fatal("new store should not be loaded")
	}
	snap := s.Snapshot()
	if len(snap.Steps) != 0 || len(snap.Weights) != 0 || len(snap.WeightDiffSource) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricStoreReplace(t *testing.T) {
	s := NewMetricStore()
	s.Replace(Snapshot{
		Steps:            series(28, 1000),
		Weights:          series(28, 180),
		WeightDiffSource: series(29, 180),
		FetchedAt:        time.Now(),
	})
	if !s.Loaded() {
		t.Fatal("expected loaded store")
	}
	snap := s.Snapshot()
	if len(snap.Steps) != 28 || len(snap.Weights) != 28 || len(snap.WeightDiffSource) != 29 {
		t.Fatalf("unexpected lengths: %d %d %d", len(snap.Steps), len(snap.Weights), len(snap.WeightDiffSource))
	}

	s.Replace(Snapshot{Steps: series(3, 1), FetchedAt: time.Now()})
	snap = s.Snapshot()
	if len(snap.Steps) != 3 || len(snap.Weights) != 0 {
		t.Fatalf("replace should be wholesale, got %d steps and %d weights", len(snap.Steps), len(snap.Weights))
	}
}

func TestMetricStoreCopiesOnReadAndWrite(t *testing.T) {
	s := NewMetricStore()
	in := series(2, 5)
	s.Replace(Snapshot{Steps: in, FetchedAt: time.Now()})

	in[0].Value = 99
	out := s.Snapshot()
	if out.Steps[0].Value != 5 {
		t.Fatal("store shares backing array with writer")
	}

	out.Steps[1].Value = 42
	if s.Snapshot().Steps[1].Value != 5 {
		t.Fatal("store shares backing array with reader")
	}
}

func TestMetricStoreConcurrentReplaceAndRead(t *testing.T) {
	s := NewMetricStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(v float64) {
			defer wg.Done()
			s.Replace(Snapshot{Steps: series(28, v), FetchedAt: time.Now()})
		}(float64(i))
		go func() {
			defer wg.Done()
			snap := s.Snapshot()
			if len(snap.Steps) == 0 {
				return
			}
			first := snap.Steps[0].Value
			for _, p := range snap.Steps {
				if p.Value != first {
					t.Error("snapshot mixes two fetch cycles")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestMetricStoreUpdate(t *testing.T) {
	s := NewMetricStore()
	s.Replace(Snapshot{Steps: series(3, 1), Weights: series(3, 180), FetchedAt: time.Now()})

	err := s.Update(func(cur Snapshot) (Snapshot, error) {
		cur.Weights = series(3, 175)
		return cur, nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	snap := s.Snapshot()
	if snap.Weights[0].Value != 175 || snap.Steps[0].Value != 1 {
		t.Fatalf("unexpected snapshot after update: %+v", snap)
	}

	boom := errors.New("boom")
	err = s.Update(func(cur Snapshot) (Snapshot, error) {
		cur.Weights = nil
		return cur, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(s.Snapshot().Weights) != 3 {
		t.Fatal("failed update replaced the snapshot")
	}
}

func TestMetricStoreUpdatesDoNotOverlap(t *testing.T) {
	s := NewMetricStore()
	s.Replace(Snapshot{FetchedAt: time.Now()})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(func(cur Snapshot) (Snapshot, error) {
				cur.Steps = append(cur.Steps, chart.Point{Value: 1})
				return cur, nil
			})
		}()
	}
	wg.Wait()
	if got := len(s.Snapshot().Steps); got != 20 {
		t.Fatalf("expected 20 steps from 20 updates, got %d", got)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if len(r.Users()) != 0 {
		t.Fatal("expected no users")
	}
	a := r.For(2)
	if r.For(2) != a {
		t.Fatal("expected the same store for the same user")
	}
	if r.For(1) == a {
		t.Fatal("expected separate stores per user")
	}
	users := r.Users()
	if len(users) != 2 || users[0] != 1 || users[1] != 2 {
		t.Fatalf("unexpected users: %v", users)
	}
}
