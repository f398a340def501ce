package sqlite

import (
	"context"

	"github.com/metersplit/metersplit/ports"
)

// SettingsStore implements ports.SettingsStore with SQLite.
type SettingsStore struct {
	db *DB
}

// NewSettingsStore creates a new SQLite settings store.
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get retrieves a single setting by key.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	return value, err
}

// Set stores or updates a setting.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// Delete removes a setting.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.DB.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}

// Ensure interface compliance.
var _ ports.SettingsStore = (*SettingsStore)(nil)
