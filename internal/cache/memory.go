package cache

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded map. Each ticker is processed by exactly
// one worker, so no finer-grained locking is needed.
type MemoryStore struct {
	mu     sync.RWMutex
	ratios map[string]float64
}

// NewMemoryStore creates an empty per-run P/E cache
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ratios: make(map[string]float64)}
}

func (m *MemoryStore) Get(_ context.Context, ticker string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ratio, ok := m.ratios[ticker]
	return ratio, ok
}

func (m *MemoryStore) Set(_ context.Context, ticker string, ratio float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratios[ticker] = ratio
}

// Len reports how many tickers have cached estimates
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ratios)
}
