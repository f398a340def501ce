package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/metersplit/metersplit/domain/tariff"
	"github.com/metersplit/metersplit/ports"
)

// TariffStore implements ports.TariffStore with SQLite.
// Every Put appends a new immutable version; Get reads the latest.
type TariffStore struct {
	db *DB
}

// NewTariffStore creates a new SQLite tariff store.
func NewTariffStore(db *DB) *TariffStore {
	return &TariffStore{db: db}
}

// Get retrieves the current tariff config and its version.
// A fresh database yields a zero config at version 0.
func (s *TariffStore) Get(ctx context.Context) (tariff.Config, int64, error) {
	var cfg tariff.Config
	var version int64
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT version, vat_rate, demand_charge, meter_rent, bkash_charge
		FROM tariff_configs ORDER BY version DESC LIMIT 1
	`).Scan(&version, &cfg.VATRate, &cfg.DemandCharge, &cfg.MeterRent, &cfg.BkashCharge)
	if err == sql.ErrNoRows {
		return tariff.Config{}, 0, nil
	}
	if err != nil {
		return tariff.Config{}, 0, err
	}

	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT tier_limit, rate FROM tariff_slabs
		WHERE version = ? ORDER BY idx ASC
	`, version)
	if err != nil {
		return tariff.Config{}, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var slab tariff.Slab
		if err := rows.Scan(&slab.Limit, &slab.Rate); err != nil {
			return tariff.Config{}, 0, err
		}
		cfg.Slabs = append(cfg.Slabs, slab)
	}
	return cfg, version, rows.Err()
}

// Put stores a new tariff config version, returning the new version.
func (s *TariffStore) Put(ctx context.Context, cfg tariff.Config) (int64, error) {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO tariff_configs (vat_rate, demand_charge, meter_rent, bkash_charge)
		VALUES (?, ?, ?, ?)
	`, cfg.VATRate, cfg.DemandCharge, cfg.MeterRent, cfg.BkashCharge)
	if err != nil {
		return 0, fmt.Errorf("insert config: %w", err)
	}
	version, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, slab := range cfg.Slabs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tariff_slabs (version, idx, tier_limit, rate)
			VALUES (?, ?, ?, ?)
		`, version, i, slab.Limit, slab.Rate); err != nil {
			return 0, fmt.Errorf("insert slab %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return version, nil
}

// Ensure interface compliance.
var _ ports.TariffStore = (*TariffStore)(nil)
