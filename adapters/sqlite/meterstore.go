package sqlite

import (
	"context"
	"database/sql"

	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/ports"
)

// mainMeterID is the fixed row ID of the single main meter.
const mainMeterID = "main"

// MeterStore implements ports.MeterStore with SQLite.
type MeterStore struct {
	db *DB
}

// NewMeterStore creates a new SQLite meter store.
func NewMeterStore(db *DB) *MeterStore {
	return &MeterStore{db: db}
}

// GetMain retrieves the main meter reading. A missing row reads as an
// empty main meter rather than an error, matching a fresh installation.
func (s *MeterStore) GetMain(ctx context.Context) (meter.Reading, error) {
	var r meter.Reading
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT id, name, meter_no, previous, current
		FROM meters WHERE is_main = 1
	`).Scan(&r.ID, &r.Name, &r.MeterNo, &r.Previous, &r.Current)
	if err == sql.ErrNoRows {
		return meter.Reading{ID: mainMeterID}, nil
	}
	return r, err
}

// SetMain stores the main meter reading.
func (s *MeterStore) SetMain(ctx context.Context, r meter.Reading) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO meters (id, name, meter_no, previous, current, is_main)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, meter_no = excluded.meter_no,
			previous = excluded.previous, current = excluded.current,
			updated_at = CURRENT_TIMESTAMP
	`, mainMeterID, r.Name, r.MeterNo, r.Previous, r.Current)
	return err
}

// Get retrieves a sub-meter by ID.
func (s *MeterStore) Get(ctx context.Context, id string) (meter.Reading, error) {
	var r meter.Reading
	err := s.db.DB.QueryRowContext(ctx, `
		SELECT id, name, meter_no, previous, current
		FROM meters WHERE id = ? AND is_main = 0
	`, id).Scan(&r.ID, &r.Name, &r.MeterNo, &r.Previous, &r.Current)
	return r, err
}

// List returns all sub-meters in insertion order.
func (s *MeterStore) List(ctx context.Context) ([]meter.Reading, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT id, name, meter_no, previous, current
		FROM meters WHERE is_main = 0
		ORDER BY position ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []meter.Reading
	for rows.Next() {
		var r meter.Reading
		if err := rows.Scan(&r.ID, &r.Name, &r.MeterNo, &r.Previous, &r.Current); err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// Create stores a new sub-meter at the end of the display order.
func (s *MeterStore) Create(ctx context.Context, r meter.Reading) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO meters (id, name, meter_no, previous, current, is_main, position)
		VALUES (?, ?, ?, ?, ?, 0,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM meters WHERE is_main = 0))
	`, r.ID, r.Name, r.MeterNo, r.Previous, r.Current)
	return err
}

// Update modifies an existing sub-meter.
func (s *MeterStore) Update(ctx context.Context, r meter.Reading) error {
	res, err := s.db.DB.ExecContext(ctx, `
		UPDATE meters SET name = ?, meter_no = ?, previous = ?, current = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_main = 0
	`, r.Name, r.MeterNo, r.Previous, r.Current, r.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return err
}

// Delete removes a sub-meter.
func (s *MeterStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM meters WHERE id = ? AND is_main = 0`, id)
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
var _ ports.MeterStore = (*MeterStore)(nil)
