package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"matrix-bruteforce/internal/bruteforce"
)

// MockDB is an in-memory database for demo mode and tests
type MockDB struct {
	mu    sync.RWMutex
	runs  []Run
	index map[string]int64 // target + digest -> run id
}

// NewMock creates a new mock database
func NewMock() *MockDB {
	return &MockDB{
		index: make(map[string]int64),
	}
}

func (m *MockDB) Close() error { return nil }

func (m *MockDB) Health(ctx context.Context) HealthStatus {
	return HealthStatus{Connected: true, LatencyMs: 1}
}

func cloneRun(r Run, withMatches bool) Run {
	if withMatches {
		r.Matches = append([]bruteforce.Match{}, r.Matches...)
	} else {
		r.Matches = nil
	}
	return r
}

func (m *MockDB) SaveRun(ctx context.Context, run *Run) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := run.Target + "/" + run.Digest
	if id, ok := m.index[key]; ok {
		run.ID = id
		return id, false, nil
	}

	run.ID = int64(len(m.runs) + 1)
	run.MatchCount = len(run.Matches)
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.runs = append(m.runs, cloneRun(*run, true))
	m.index[key] = run.ID
	return run.ID, true, nil
}

func (m *MockDB) GetRun(ctx context.Context, id int64) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > int64(len(m.runs)) {
		return nil, ErrNotFound
	}
	r := cloneRun(m.runs[id-1], true)
	return &r, nil
}

func (m *MockDB) GetRuns(ctx context.Context, limit int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	runs := []Run{}
	for i := len(m.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, cloneRun(m.runs[i], false))
	}
	return runs, nil
}

func (m *MockDB) GetRunsByTargets(ctx context.Context, targets []string) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[string]bool, len(targets))
	for _, t := range targets {
		want[t] = true
	}
	runs := []Run{}
	for _, r := range m.runs {
		if want[r.Target] {
			runs = append(runs, cloneRun(r, false))
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	return runs, nil
}

func (m *MockDB) GetStats(ctx context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	targets := make(map[string]bool)
	matches := 0
	for _, r := range m.runs {
		targets[r.Target] = true
		matches += r.MatchCount
	}
	return &Stats{
		TotalRuns:    len(m.runs),
		TotalMatches: matches,
		Targets:      len(targets),
		Healthy:      true,
	}, nil
}
