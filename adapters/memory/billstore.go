package memory

import (
	"context"
	"sync"

	"github.com/metersplit/metersplit/domain/bill"
	"github.com/metersplit/metersplit/ports"
)

// BillStore is an in-memory implementation of ports.BillStore.
type BillStore struct {
	mu      sync.RWMutex
	records map[string]ports.BillRecord
	users   map[string][]bill.UserShare
	order   []string
}

// NewBillStore creates a new in-memory bill store.
func NewBillStore() *BillStore {
	return &BillStore{
		records: make(map[string]ports.BillRecord),
		users:   make(map[string][]bill.UserShare),
	}
}

// Save stores a bill record with its per-user breakdown.
func (s *BillStore) Save(ctx context.Context, rec ports.BillRecord, users []bill.UserShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
	s.users[rec.ID] = append([]bill.UserShare(nil), users...)
	return nil
}

// Get retrieves a bill record by ID.
func (s *BillStore) Get(ctx context.Context, id string) (ports.BillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return ports.BillRecord{}, ErrNotFound
	}
	return rec, nil
}

// List returns bill records newest first.
func (s *BillStore) List(ctx context.Context, limit int) ([]ports.BillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.BillRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, s.records[s.order[i]])
	}
	return out, nil
}

// ListUsers returns the stored per-user breakdown for a bill.
func (s *BillStore) ListUsers(ctx context.Context, billID string) ([]bill.UserShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]bill.UserShare(nil), s.users[billID]...), nil
}

// Delete removes a bill record and its breakdown.
func (s *BillStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	delete(s.users, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ensure interface compliance.
var _ ports.BillStore = (*BillStore)(nil)
