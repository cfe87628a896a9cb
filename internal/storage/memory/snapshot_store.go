package memory

import (
	"context"
	"sync"
	"time"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
// Reconstruction runs replace the whole series, so the store keeps a single
// slice swapped under the lock.
type SnapshotStore struct {
	mu   sync.RWMutex
	data []*domain.PortfolioSnapshot // ordered by date ASC
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// ReplaceAll atomically swaps the stored series for the given one.
func (s *SnapshotStore) ReplaceAll(_ context.Context, snapshots []*domain.PortfolioSnapshot) error {
	replacement := make([]*domain.PortfolioSnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil {
			return storage.ErrInvalidInput
		}
		copy := *snap
		replacement = append(replacement, &copy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = replacement
	return nil
}

// GetAll retrieves the stored series, ordered by date ASC.
func (s *SnapshotStore) GetAll(_ context.Context) ([]*domain.PortfolioSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PortfolioSnapshot, 0, len(s.data))
	for _, snap := range s.data {
		copy := *snap
		result = append(result, &copy)
	}
	return result, nil
}

// GetByDateRange retrieves snapshots within [start, end] (inclusive).
func (s *SnapshotStore) GetByDateRange(_ context.Context, start, end time.Time) ([]*domain.PortfolioSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PortfolioSnapshot
	for _, snap := range s.data {
		if snap.Date.Before(start) || snap.Date.After(end) {
			continue
		}
		copy := *snap
		result = append(result, &copy)
	}
	return result, nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
