package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/metersplit/metersplit/domain/bill"
	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/ports"
)

// BillStore implements ports.BillStore with SQLite.
type BillStore struct {
	db *DB
}

// NewBillStore creates a new SQLite bill store.
func NewBillStore(db *DB) *BillStore {
	return &BillStore{db: db}
}

// Save stores a bill record with its per-user breakdown. Saving an
// existing ID replaces the previous snapshot.
func (s *BillStore) Save(ctx context.Context, rec ports.BillRecord, users []bill.UserShare) error {
	tx, err := s.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("replace bill: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bills (id, month, generated_at, include_late_fee, include_bkash_fee,
			total_bill_payable, tariff_version, main_id, main_name, main_meter_no,
			main_previous, main_current)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Month, rec.GeneratedAt, rec.IncludeLateFee, rec.IncludeBkashFee,
		rec.TotalBillPayable, rec.TariffVersion, rec.MainMeter.ID, rec.MainMeter.Name,
		rec.MainMeter.MeterNo, rec.MainMeter.Previous, rec.MainMeter.Current); err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}

	for i, m := range rec.SubMeters {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bill_meters (bill_id, idx, meter_id, name, meter_no, previous, current)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, i, m.ID, m.Name, m.MeterNo, m.Previous, m.Current); err != nil {
			return fmt.Errorf("insert bill meter %d: %w", i, err)
		}
	}

	for i, u := range users {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bill_users (bill_id, idx, user_id, name, units_used,
				energy_cost, fixed_cost, total_payable, previous, current)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, i, u.ID, u.Name, u.UnitsUsed, u.EnergyCost, u.FixedCost,
			u.TotalPayable, u.Previous, u.Current); err != nil {
			return fmt.Errorf("insert bill user %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get retrieves a bill record by ID, including its sub-meter snapshot.
func (s *BillStore) Get(ctx context.Context, id string) (ports.BillRecord, error) {
	var rec ports.BillRecord
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT id, month, generated_at, include_late_fee, include_bkash_fee,
			   total_bill_payable, tariff_version, main_id, main_name, main_meter_no,
			   main_previous, main_current, created_at
		FROM bills WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Month, &rec.GeneratedAt, &rec.IncludeLateFee,
		&rec.IncludeBkashFee, &rec.TotalBillPayable, &rec.TariffVersion,
		&rec.MainMeter.ID, &rec.MainMeter.Name, &rec.MainMeter.MeterNo,
		&rec.MainMeter.Previous, &rec.MainMeter.Current, &rec.CreatedAt)
	if err != nil {
		return ports.BillRecord{}, err
	}

	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT meter_id, name, meter_no, previous, current
		FROM bill_meters WHERE bill_id = ? ORDER BY idx ASC
	`, id)
	if err != nil {
		return ports.BillRecord{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var m meter.Reading
		if err := rows.Scan(&m.ID, &m.Name, &m.MeterNo, &m.Previous, &m.Current); err != nil {
			return ports.BillRecord{}, err
		}
		rec.SubMeters = append(rec.SubMeters, m)
	}
	return rec, rows.Err()
}

// List returns bill records newest first, without sub-meter snapshots.
func (s *BillStore) List(ctx context.Context, limit int) ([]ports.BillRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, month, generated_at, include_late_fee, include_bkash_fee,
			   total_bill_payable, tariff_version, main_id, main_name, main_meter_no,
			   main_previous, main_current, created_at
		FROM bills ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ports.BillRecord
	for rows.Next() {
		var rec ports.BillRecord
		if err := rows.Scan(&rec.ID, &rec.Month, &rec.GeneratedAt, &rec.IncludeLateFee,
			&rec.IncludeBkashFee, &rec.TotalBillPayable, &rec.TariffVersion,
			&rec.MainMeter.ID, &rec.MainMeter.Name, &rec.MainMeter.MeterNo,
			&rec.MainMeter.Previous, &rec.MainMeter.Current, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListUsers returns the stored per-user breakdown for a bill.
func (s *BillStore) ListUsers(ctx context.Context, billID string) ([]bill.UserShare, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT user_id, name, units_used, energy_cost, fixed_cost,
			   total_payable, previous, current
		FROM bill_users WHERE bill_id = ? ORDER BY idx ASC
	`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []bill.UserShare
	for rows.Next() {
		var u bill.UserShare
		if err := rows.Scan(&u.ID, &u.Name, &u.UnitsUsed, &u.EnergyCost,
			&u.FixedCost, &u.TotalPayable, &u.Previous, &u.Current); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Delete removes a bill record and its breakdown.
func (s *BillStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.DB.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

// Ensure interface compliance.
var _ ports.BillStore = (*BillStore)(nil)
