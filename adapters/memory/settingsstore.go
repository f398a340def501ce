package memory

import (
	"context"
	"sync"

	"github.com/metersplit/metersplit/ports"
)

// SettingsStore is an in-memory implementation of ports.SettingsStore.
type SettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSettingsStore creates a new in-memory settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{values: make(map[string]string)}
}

// Get retrieves a single setting by key.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores or updates a setting.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes a setting.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Ensure interface compliance.
var _ ports.SettingsStore = (*SettingsStore)(nil)
