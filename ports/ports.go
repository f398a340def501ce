// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/metersplit/metersplit/domain/bill"
	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/domain/tariff"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides password/key hashing.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// MeterStore persists the main meter and tenant sub-meters.
type MeterStore interface {
	// GetMain retrieves the main meter reading.
	GetMain(ctx context.Context) (meter.Reading, error)

	// SetMain stores the main meter reading.
	SetMain(ctx context.Context, r meter.Reading) error

	// Get retrieves a sub-meter by ID.
	Get(ctx context.Context, id string) (meter.Reading, error)

	// List returns all sub-meters in insertion order.
	List(ctx context.Context) ([]meter.Reading, error)

	// Create stores a new sub-meter.
	Create(ctx context.Context, r meter.Reading) error

	// Update modifies an existing sub-meter.
	Update(ctx context.Context, r meter.Reading) error

	// Delete removes a sub-meter.
	Delete(ctx context.Context, id string) error
}

// TariffStore persists the tariff configuration as a versioned record.
type TariffStore interface {
	// Get retrieves the current tariff config and its version.
	Get(ctx context.Context) (tariff.Config, int64, error)

	// Put stores a new tariff config, returning the new version.
	Put(ctx context.Context, cfg tariff.Config) (int64, error)
}

// BillRecord is a stored billing period: the input snapshot plus the
// system-wide total written back at save time.
type BillRecord struct {
	ID               string
	Month            string
	GeneratedAt      time.Time
	IncludeLateFee   bool
	IncludeBkashFee  bool
	TotalBillPayable float64
	MainMeter        meter.Reading
	SubMeters        []meter.Reading
	TariffVersion    int64
	CreatedAt        time.Time
}

// BillStore persists bill history for later replay through the engine.
type BillStore interface {
	// Save stores a bill record with its per-user breakdown.
	Save(ctx context.Context, rec BillRecord, users []bill.UserShare) error

	// Get retrieves a bill record by ID.
	Get(ctx context.Context, id string) (BillRecord, error)

	// List returns bill records newest first.
	List(ctx context.Context, limit int) ([]BillRecord, error)

	// ListUsers returns the stored per-user breakdown for a bill.
	ListUsers(ctx context.Context, billID string) ([]bill.UserShare, error)

	// Delete removes a bill record and its breakdown.
	Delete(ctx context.Context, id string) error
}

// SettingsStore persists application settings.
type SettingsStore interface {
	// Get retrieves a single setting by key.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or updates a setting.
	Set(ctx context.Context, key, value string) error

	// Delete removes a setting.
	Delete(ctx context.Context, key string) error
}
