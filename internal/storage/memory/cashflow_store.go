package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"options-wheel-lab/internal/domain"
	"options-wheel-lab/internal/storage"
)

// CashFlowStore is an in-memory implementation of storage.CashFlowStore.
type CashFlowStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CashFlow // keyed by cash_flow_id
}

// NewCashFlowStore creates a new in-memory cash flow store.
func NewCashFlowStore() *CashFlowStore {
	return &CashFlowStore{
		data: make(map[string]*domain.CashFlow),
	}
}

// Insert adds a new cash flow. Returns ErrDuplicateKey if cash_flow_id exists.
func (s *CashFlowStore) Insert(_ context.Context, cf *domain.CashFlow) error {
	if cf == nil || cf.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[cf.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *cf
	s.data[cf.ID] = &copy
	return nil
}

// InsertBulk adds multiple cash flows atomically. Fails entire batch on any duplicate.
func (s *CashFlowStore) InsertBulk(_ context.Context, flows []*domain.CashFlow) error {
	if len(flows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(flows))
	for _, cf := range flows {
		if cf == nil || cf.ID == "" {
			return storage.ErrInvalidInput
		}

		if _, exists := s.data[cf.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[cf.ID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[cf.ID] = struct{}{}
	}

	for _, cf := range flows {
		copy := *cf
		s.data[cf.ID] = &copy
	}

	return nil
}

// GetAll retrieves all cash flows, ordered by date ASC.
func (s *CashFlowStore) GetAll(_ context.Context) ([]*domain.CashFlow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CashFlow, 0, len(s.data))
	for _, cf := range s.data {
		copy := *cf
		result = append(result, &copy)
	}

	sortFlowsByDate(result)
	return result, nil
}

// GetByDateRange retrieves cash flows within [start, end] (inclusive).
func (s *CashFlowStore) GetByDateRange(_ context.Context, start, end time.Time) ([]*domain.CashFlow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CashFlow
	for _, cf := range s.data {
		if cf.Date.Before(start) || cf.Date.After(end) {
			continue
		}
		copy := *cf
		result = append(result, &copy)
	}

	sortFlowsByDate(result)
	return result, nil
}

func sortFlowsByDate(flows []*domain.CashFlow) {
	sort.Slice(flows, func(i, j int) bool {
		if !flows[i].Date.Equal(flows[j].Date) {
			return flows[i].Date.Before(flows[j].Date)
		}
		return flows[i].ID < flows[j].ID
	})
}

var _ storage.CashFlowStore = (*CashFlowStore)(nil)
