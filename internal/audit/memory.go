package audit

import (
	"context"
	"sync"

	"lakeetl/internal/period"
)

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	Runs   []Entry
	Errors []ErrorEntry

	// FailWrites simulates a broken control store.
	FailWrites error
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) RecordRun(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.Runs = append(m.Runs, e)
	return nil
}

func (m *MemoryStore) RecordError(_ context.Context, e ErrorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.Errors = append(m.Errors, e)
	return nil
}

func (m *MemoryStore) MaxSucceededPeriod(_ context.Context, table string) (period.Period, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best period.Period
	found := false
	for _, e := range m.Runs {
		if e.Table != table || e.Status != StatusSucceeded {
			continue
		}
		if !found || best.Before(e.Period) {
			best = e.Period
			found = true
		}
	}
	return best, found, nil
}
