package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/ports"
)

// MeterService manages the main meter and tenant sub-meters. Each mutable
// field has an explicit update operation; there is no generic setter.
type MeterService struct {
	store  ports.MeterStore
	ids    ports.IDGenerator
	logger zerolog.Logger
}

// NewMeterService creates a new meter service.
func NewMeterService(store ports.MeterStore, ids ports.IDGenerator, logger zerolog.Logger) *MeterService {
	return &MeterService{store: store, ids: ids, logger: logger}
}

// List returns all sub-meters.
func (s *MeterService) List(ctx context.Context) ([]meter.Reading, error) {
	return s.store.List(ctx)
}

// Get retrieves a sub-meter by ID.
func (s *MeterService) Get(ctx context.Context, id string) (meter.Reading, error) {
	return s.store.Get(ctx, id)
}

// Add registers a new tenant sub-meter. Readings start at zero.
func (s *MeterService) Add(ctx context.Context, name, meterNo string) (meter.Reading, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return meter.Reading{}, fmt.Errorf("meter name is required")
	}

	r := meter.Reading{
		ID:      s.ids.New(),
		Name:    name,
		MeterNo: strings.TrimSpace(meterNo),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return meter.Reading{}, fmt.Errorf("create meter: %w", err)
	}

	s.logger.Info().Str("meter_id", r.ID).Str("name", r.Name).Msg("sub-meter added")
	return r, nil
}

// Rename changes a sub-meter's display name.
func (s *MeterService) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("meter name is required")
	}
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load meter %s: %w", id, err)
	}
	r.Name = name
	return s.store.Update(ctx, r)
}

// SetMeterNo changes a sub-meter's physical meter number.
func (s *MeterService) SetMeterNo(ctx context.Context, id, meterNo string) error {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load meter %s: %w", id, err)
	}
	r.MeterNo = strings.TrimSpace(meterNo)
	return s.store.Update(ctx, r)
}

// SetReadings updates a sub-meter's previous and current readings. Nil
// means leave that reading unchanged.
func (s *MeterService) SetReadings(ctx context.Context, id string, previous, current *float64) (meter.Reading, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return meter.Reading{}, fmt.Errorf("load meter %s: %w", id, err)
	}
	if previous != nil {
		r.Previous = *previous
	}
	if current != nil {
		r.Current = *current
	}
	if err := s.store.Update(ctx, r); err != nil {
		return meter.Reading{}, fmt.Errorf("update meter %s: %w", id, err)
	}
	return r, nil
}

// Remove deletes a sub-meter.
func (s *MeterService) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete meter %s: %w", id, err)
	}
	s.logger.Info().Str("meter_id", id).Msg("sub-meter removed")
	return nil
}

// Main retrieves the main meter reading.
func (s *MeterService) Main(ctx context.Context) (meter.Reading, error) {
	return s.store.GetMain(ctx)
}

// SetMainReadings updates the main meter's readings and identity fields.
// Nil numeric fields mean leave that reading unchanged.
func (s *MeterService) SetMainReadings(ctx context.Context, meterNo string, previous, current *float64) (meter.Reading, error) {
	r, err := s.store.GetMain(ctx)
	if err != nil {
		return meter.Reading{}, fmt.Errorf("load main meter: %w", err)
	}
	if meterNo != "" {
		r.MeterNo = strings.TrimSpace(meterNo)
	}
	if previous != nil {
		r.Previous = *previous
	}
	if current != nil {
		r.Current = *current
	}
	if err := s.store.SetMain(ctx, r); err != nil {
		return meter.Reading{}, fmt.Errorf("update main meter: %w", err)
	}
	return r, nil
}
