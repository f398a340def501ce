package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/metersplit/metersplit/adapters/memory"
	"github.com/metersplit/metersplit/domain/bill"
	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/domain/tariff"
	"github.com/metersplit/metersplit/ports"
)

func TestMeterStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.NewMeterStore()

	if err := s.Create(ctx, meter.Reading{ID: "a", Name: "Flat A", Previous: 0, Current: 50}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, meter.Reading{ID: "b", Name: "Flat B"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, meter.Reading{ID: "a"}); err == nil {
		t.Error("Create duplicate should fail")
	}

	got, err := s.Get(ctx, "a")
	if err != nil || got.Name != "Flat A" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	got.Current = 80
	if err := s.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = s.Get(ctx, "a")
	if got.Current != 80 {
		t.Errorf("Current = %v after update, want 80", got.Current)
	}

	list, _ := s.List(ctx)
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("List = %+v, want [a b] in insertion order", list)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "a"); err != memory.ErrNotFound {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	list, _ = s.List(ctx)
	if len(list) != 1 {
		t.Errorf("List after delete = %d entries, want 1", len(list))
	}
}

func TestMeterStore_Main(t *testing.T) {
	ctx := context.Background()
	s := memory.NewMeterStore()

	main := meter.Reading{ID: "main", MeterNo: "M-001", Previous: 100, Current: 220}
	if err := s.SetMain(ctx, main); err != nil {
		t.Fatalf("SetMain: %v", err)
	}

	got, err := s.GetMain(ctx)
	if err != nil {
		t.Fatalf("GetMain: %v", err)
	}
	if got != main {
		t.Errorf("GetMain = %+v, want %+v", got, main)
	}
}

func TestTariffStore_Versioning(t *testing.T) {
	ctx := context.Background()
	initial := tariff.Config{
		Slabs:   []tariff.Slab{{Limit: 100, Rate: 5}},
		VATRate: 0.05,
	}
	s := memory.NewTariffStore(initial)

	cfg, version, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if version != 1 {
		t.Errorf("initial version = %d, want 1", version)
	}

	// Mutating the returned slice must not affect the store.
	cfg.Slabs[0].Rate = 99
	cfg2, _, _ := s.Get(ctx)
	if cfg2.Slabs[0].Rate != 5 {
		t.Error("Get returned aliased slab slice")
	}

	cfg2.MeterRent = 40
	version, err = s.Put(ctx, cfg2)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if version != 2 {
		t.Errorf("version after Put = %d, want 2", version)
	}
}

func TestBillStore(t *testing.T) {
	ctx := context.Background()
	s := memory.NewBillStore()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	users := []bill.UserShare{{ID: "a", TotalPayable: 383}, {ID: "b", TotalPayable: 383}}

	for i, id := range []string{"b1", "b2", "b3"} {
		rec := ports.BillRecord{
			ID:               id,
			Month:            now.AddDate(0, i, 0).Format("2006-01"),
			GeneratedAt:      now.AddDate(0, i, 0),
			TotalBillPayable: 766,
		}
		if err := s.Save(ctx, rec, users); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	list, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b3" || list[1].ID != "b2" {
		t.Errorf("List = %+v, want newest first with limit", list)
	}

	rec, err := s.Get(ctx, "b1")
	if err != nil || rec.TotalBillPayable != 766 {
		t.Fatalf("Get = %+v, %v", rec, err)
	}

	stored, err := s.ListUsers(ctx, "b1")
	if err != nil || len(stored) != 2 {
		t.Fatalf("ListUsers = %+v, %v", stored, err)
	}

	if err := s.Delete(ctx, "b2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "b2"); err != memory.ErrNotFound {
		t.Errorf("Get deleted bill = %v, want ErrNotFound", err)
	}
}

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSettingsStore()

	if _, err := s.Get(ctx, "missing"); err != memory.ErrNotFound {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "admin_key_hash", "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := s.Get(ctx, "admin_key_hash")
	if err != nil || v != "abc" {
		t.Fatalf("Get = %q, %v", v, err)
	}

	if err := s.Delete(ctx, "admin_key_hash"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "admin_key_hash"); err != memory.ErrNotFound {
		t.Error("setting should be gone after delete")
	}
}
