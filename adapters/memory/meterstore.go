// Package memory provides in-memory implementations of storage ports,
// used by tests and by demo mode.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/ports"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = fmt.Errorf("not found")

// MeterStore is an in-memory implementation of ports.MeterStore.
type MeterStore struct {
	mu    sync.RWMutex
	main  meter.Reading
	subs  map[string]meter.Reading
	order []string
}

// NewMeterStore creates a new in-memory meter store.
func NewMeterStore() *MeterStore {
	return &MeterStore{subs: make(map[string]meter.Reading)}
}

// GetMain retrieves the main meter reading.
func (s *MeterStore) GetMain(ctx context.Context) (meter.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.main, nil
}

// SetMain stores the main meter reading.
func (s *MeterStore) SetMain(ctx context.Context, r meter.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.main = r
	return nil
}

// Get retrieves a sub-meter by ID.
func (s *MeterStore) Get(ctx context.Context, id string) (meter.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.subs[id]
	if !ok {
		return meter.Reading{}, ErrNotFound
	}
	return r, nil
}

// List returns all sub-meters in insertion order.
func (s *MeterStore) List(ctx context.Context) ([]meter.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]meter.Reading, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.subs[id])
	}
	return out, nil
}

// Create stores a new sub-meter.
func (s *MeterStore) Create(ctx context.Context, r meter.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[r.ID]; exists {
		return fmt.Errorf("meter %s already exists", r.ID)
	}
	s.subs[r.ID] = r
	s.order = append(s.order, r.ID)
	return nil
}

// Update modifies an existing sub-meter.
func (s *MeterStore) Update(ctx context.Context, r meter.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[r.ID]; !exists {
		return ErrNotFound
	}
	s.subs[r.ID] = r
	return nil
}

// Delete removes a sub-meter.
func (s *MeterStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[id]; !exists {
		return ErrNotFound
	}
	delete(s.subs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ensure interface compliance.
var _ ports.MeterStore = (*MeterStore)(nil)
