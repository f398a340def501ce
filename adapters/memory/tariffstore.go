package memory

import (
	"context"
	"sync"

	"github.com/metersplit/metersplit/domain/tariff"
	"github.com/metersplit/metersplit/ports"
)

// TariffStore is an in-memory implementation of ports.TariffStore.
type TariffStore struct {
	mu      sync.RWMutex
	cfg     tariff.Config
	version int64
}

// NewTariffStore creates a new in-memory tariff store seeded with cfg at
// version 1.
func NewTariffStore(cfg tariff.Config) *TariffStore {
	return &TariffStore{cfg: cfg, version: 1}
}

// Get retrieves the current tariff config and its version.
func (s *TariffStore) Get(ctx context.Context) (tariff.Config, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Copy the slab slice so callers cannot alias internal state.
	cfg := s.cfg
	cfg.Slabs = append([]tariff.Slab(nil), s.cfg.Slabs...)
	return cfg, s.version, nil
}

// Put stores a new tariff config, returning the new version.
func (s *TariffStore) Put(ctx context.Context, cfg tariff.Config) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.cfg.Slabs = append([]tariff.Slab(nil), cfg.Slabs...)
	s.version++
	return s.version, nil
}

// Ensure interface compliance.
var _ ports.TariffStore = (*TariffStore)(nil)
