package repository

import (
	"sync"

	"titan-screener/internal/domain"
)

// InMemoryScanRepository keeps the latest scan snapshot, replaced whole on
// every completed scan. History is deliberately not kept.
type InMemoryScanRepository struct {
	snapshot *domain.ScanSnapshot
	mu       sync.RWMutex
}

func NewInMemoryScanRepository() *InMemoryScanRepository {
	return &InMemoryScanRepository{}
}

func (r *InMemoryScanRepository) SaveSnapshot(snap *domain.ScanSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = snap
}

// Latest returns the most recent snapshot, or nil before the first scan
// completes. The snapshot is shared read-only; callers serialize it,
// never mutate it.
func (r *InMemoryScanRepository) Latest() *domain.ScanSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}
