package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/metersplit/metersplit/adapters/metrics"
	"github.com/metersplit/metersplit/domain/tariff"
	"github.com/metersplit/metersplit/ports"
)

// TariffService manages the tariff configuration. Validation happens here,
// at the edge; the engine itself trusts whatever config it is handed.
type TariffService struct {
	store   ports.TariffStore
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// NewTariffService creates a new tariff service.
func NewTariffService(store ports.TariffStore, logger zerolog.Logger, m *metrics.Collector) *TariffService {
	return &TariffService{store: store, logger: logger, metrics: m}
}

// Get retrieves the current tariff config and its version.
func (s *TariffService) Get(ctx context.Context) (tariff.Config, int64, error) {
	return s.store.Get(ctx)
}

// Update validates and stores a new tariff config, returning the version.
func (s *TariffService) Update(ctx context.Context, cfg tariff.Config) (int64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid tariff: %w", err)
	}

	version, err := s.store.Put(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("store tariff: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TariffUpdates.Inc()
		s.metrics.TariffVersion.Set(float64(version))
	}
	s.logger.Info().
		Int64("version", version).
		Int("slabs", len(cfg.Slabs)).
		Float64("vat_rate", cfg.VATRate).
		Msg("tariff updated")

	return version, nil
}
