package memory

import (
	"context"
	"sync"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/storage"
)

// ExpiredOptionStore is an in-memory implementation of
// storage.ExpiredOptionStore with the same replace-on-rerun semantics as the
// snapshot store.
type ExpiredOptionStore struct {
	mu   sync.RWMutex
	data []*domain.ExpiredOptionRecord // ordered by expiry date ASC
}

// NewExpiredOptionStore creates a new in-memory expired option store.
func NewExpiredOptionStore() *ExpiredOptionStore {
	return &ExpiredOptionStore{}
}

// ReplaceAll atomically swaps the stored log for the given one.
func (s *ExpiredOptionStore) ReplaceAll(_ context.Context, records []*domain.ExpiredOptionRecord) error {
	replacement := make([]*domain.ExpiredOptionRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			return storage.ErrInvalidInput
		}
		copy := *r
		replacement = append(replacement, &copy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = replacement
	return nil
}

// GetAll retrieves the stored log, ordered by expiry date ASC.
func (s *ExpiredOptionStore) GetAll(_ context.Context) ([]*domain.ExpiredOptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ExpiredOptionRecord, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

// GetBySymbol retrieves the log restricted to one underlying.
func (s *ExpiredOptionStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.ExpiredOptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ExpiredOptionRecord
	for _, r := range s.data {
		if r.Symbol == symbol {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

var _ storage.ExpiredOptionStore = (*ExpiredOptionStore)(nil)
