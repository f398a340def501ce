// Package app provides application services that orchestrate domain logic
// and storage ports.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/metersplit/metersplit/adapters/metrics"
	"github.com/metersplit/metersplit/domain/bill"
	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/ports"
)

// Snapshot is the frozen input set for one allocation: what the engine saw.
type Snapshot struct {
	Main          meter.Reading
	Subs          []meter.Reading
	TariffVersion int64
}

// BillingService runs the allocation engine against stored state and
// manages bill history.
type BillingService struct {
	meters  ports.MeterStore
	tariffs ports.TariffStore
	bills   ports.BillStore
	clock   ports.Clock
	ids     ports.IDGenerator
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// BillingDeps contains dependencies for the billing service.
type BillingDeps struct {
	Meters  ports.MeterStore
	Tariffs ports.TariffStore
	Bills   ports.BillStore
	Clock   ports.Clock
	IDs     ports.IDGenerator
	Logger  zerolog.Logger
	Metrics *metrics.Collector // optional
}

// NewBillingService creates a new billing service.
func NewBillingService(deps BillingDeps) *BillingService {
	return &BillingService{
		meters:  deps.Meters,
		tariffs: deps.Tariffs,
		bills:   deps.Bills,
		clock:   deps.Clock,
		ids:     deps.IDs,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
}

// Preview loads a frozen snapshot of the current meters and tariff and runs
// the allocation engine. Nothing is persisted.
func (s *BillingService) Preview(ctx context.Context, opts bill.Options) (bill.Result, Snapshot, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return bill.Result{}, Snapshot{}, err
	}

	cfg, _, err := s.tariffs.Get(ctx)
	if err != nil {
		return bill.Result{}, Snapshot{}, fmt.Errorf("load tariff: %w", err)
	}

	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = s.clock.Now()
	}
	if opts.Month == "" {
		opts.Month = opts.GeneratedAt.Format("2006-01")
	}

	res := bill.Allocate(opts, snap.Main, snap.Subs, cfg)

	if s.metrics != nil {
		s.metrics.Allocations.Inc()
		s.metrics.TotalCollection.Set(res.TotalCollection)
		s.metrics.SubMeters.Set(float64(len(snap.Subs)))
	}

	s.logger.Debug().
		Str("month", opts.Month).
		Float64("total_collection", res.TotalCollection).
		Float64("total_units", res.TotalUnits).
		Int("users", len(res.Users)).
		Msg("bill allocated")

	return res, snap, nil
}

// SaveToHistory runs the engine and persists the full input snapshot with
// the computed system-wide total written back as the period's payable.
func (s *BillingService) SaveToHistory(ctx context.Context, opts bill.Options) (ports.BillRecord, bill.Result, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return ports.BillRecord{}, bill.Result{}, err
	}

	cfg, version, err := s.tariffs.Get(ctx)
	if err != nil {
		return ports.BillRecord{}, bill.Result{}, fmt.Errorf("load tariff: %w", err)
	}

	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = s.clock.Now()
	}
	if opts.Month == "" {
		opts.Month = opts.GeneratedAt.Format("2006-01")
	}

	res := bill.Allocate(opts, snap.Main, snap.Subs, cfg)

	rec := ports.BillRecord{
		ID:               s.ids.New(),
		Month:            opts.Month,
		GeneratedAt:      opts.GeneratedAt,
		IncludeLateFee:   opts.IncludeLateFee,
		IncludeBkashFee:  opts.IncludeBkashFee,
		TotalBillPayable: res.TotalCollection,
		MainMeter:        snap.Main,
		SubMeters:        snap.Subs,
		TariffVersion:    version,
	}
	if err := s.bills.Save(ctx, rec, res.Users); err != nil {
		return ports.BillRecord{}, bill.Result{}, fmt.Errorf("save bill: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Allocations.Inc()
		s.metrics.BillsSaved.Inc()
		s.metrics.TotalCollection.Set(res.TotalCollection)
	}

	s.logger.Info().
		Str("bill_id", rec.ID).
		Str("month", rec.Month).
		Float64("total_payable", rec.TotalBillPayable).
		Msg("bill saved to history")

	return rec, res, nil
}

// Replay re-runs the engine over a stored bill's meter snapshot using the
// current tariff. The stored record keeps only the reading snapshot and
// period flags; tariff changes since the save show up in the replayed total.
func (s *BillingService) Replay(ctx context.Context, billID string) (ports.BillRecord, bill.Result, error) {
	rec, err := s.bills.Get(ctx, billID)
	if err != nil {
		return ports.BillRecord{}, bill.Result{}, fmt.Errorf("load bill %s: %w", billID, err)
	}

	cfg, _, err := s.tariffs.Get(ctx)
	if err != nil {
		return ports.BillRecord{}, bill.Result{}, fmt.Errorf("load tariff: %w", err)
	}

	opts := bill.Options{
		Month:           rec.Month,
		GeneratedAt:     rec.GeneratedAt,
		IncludeLateFee:  rec.IncludeLateFee,
		IncludeBkashFee: rec.IncludeBkashFee,
	}
	res := bill.Allocate(opts, rec.MainMeter, rec.SubMeters, cfg)

	if s.metrics != nil {
		s.metrics.Allocations.Inc()
	}
	return rec, res, nil
}

// Rollover closes the current billing period: every meter's previous
// reading becomes its current reading.
func (s *BillingService) Rollover(ctx context.Context) error {
	main, err := s.meters.GetMain(ctx)
	if err != nil {
		return fmt.Errorf("load main meter: %w", err)
	}
	if err := s.meters.SetMain(ctx, main.Rollover()); err != nil {
		return fmt.Errorf("rollover main meter: %w", err)
	}

	subs, err := s.meters.List(ctx)
	if err != nil {
		return fmt.Errorf("list sub-meters: %w", err)
	}
	for _, sub := range subs {
		if err := s.meters.Update(ctx, sub.Rollover()); err != nil {
			return fmt.Errorf("rollover meter %s: %w", sub.ID, err)
		}
	}

	if s.metrics != nil {
		s.metrics.Rollovers.Inc()
	}
	s.logger.Info().Int("sub_meters", len(subs)).Msg("billing period rolled over")
	return nil
}

func (s *BillingService) snapshot(ctx context.Context) (Snapshot, error) {
	main, err := s.meters.GetMain(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load main meter: %w", err)
	}
	subs, err := s.meters.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list sub-meters: %w", err)
	}
	return Snapshot{Main: main, Subs: subs}, nil
}
