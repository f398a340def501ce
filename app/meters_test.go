package app_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/metersplit/metersplit/adapters/idgen"
	"github.com/metersplit/metersplit/adapters/memory"
	"github.com/metersplit/metersplit/app"
)

func newMeterService() (*app.MeterService, *memory.MeterStore) {
	store := memory.NewMeterStore()
	return app.NewMeterService(store, idgen.NewSequential("m_"), zerolog.Nop()), store
}

func floatPtr(f float64) *float64 { return &f }

func TestMeterService_Add(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMeterService()

	r, err := svc.Add(ctx, "  Flat A  ", " A-1 ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if r.ID != "m_1" || r.Name != "Flat A" || r.MeterNo != "A-1" {
		t.Errorf("Add = %+v, want trimmed fields and generated ID", r)
	}
	if r.Previous != 0 || r.Current != 0 {
		t.Error("new meter must start at zero readings")
	}

	if _, err := svc.Add(ctx, "   ", ""); err == nil {
		t.Error("Add with blank name should fail")
	}
}

func TestMeterService_FieldUpdates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMeterService()

	r, _ := svc.Add(ctx, "Flat A", "A-1")

	if err := svc.Rename(ctx, r.ID, "Flat A1"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := svc.SetMeterNo(ctx, r.ID, "A-2"); err != nil {
		t.Fatalf("SetMeterNo: %v", err)
	}

	got, _ := svc.Get(ctx, r.ID)
	if got.Name != "Flat A1" || got.MeterNo != "A-2" {
		t.Errorf("after updates = %+v", got)
	}

	if err := svc.Rename(ctx, r.ID, ""); err == nil {
		t.Error("Rename to blank should fail")
	}
	if err := svc.Rename(ctx, "missing", "X"); err == nil {
		t.Error("Rename of missing meter should fail")
	}
}

func TestMeterService_SetReadings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMeterService()

	r, _ := svc.Add(ctx, "Flat A", "")

	got, err := svc.SetReadings(ctx, r.ID, floatPtr(100), floatPtr(160))
	if err != nil {
		t.Fatalf("SetReadings: %v", err)
	}
	if got.Previous != 100 || got.Current != 160 {
		t.Errorf("SetReadings = %+v", got)
	}

	// Partial update: nil leaves the other reading alone.
	got, err = svc.SetReadings(ctx, r.ID, nil, floatPtr(200))
	if err != nil {
		t.Fatalf("partial SetReadings: %v", err)
	}
	if got.Previous != 100 || got.Current != 200 {
		t.Errorf("partial SetReadings = %+v, want previous untouched", got)
	}
}

func TestMeterService_Main(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMeterService()

	got, err := svc.SetMainReadings(ctx, "M-001", floatPtr(0), floatPtr(120))
	if err != nil {
		t.Fatalf("SetMainReadings: %v", err)
	}
	if got.MeterNo != "M-001" || got.Current != 120 {
		t.Errorf("SetMainReadings = %+v", got)
	}

	main, err := svc.Main(ctx)
	if err != nil || main.Current != 120 {
		t.Fatalf("Main = %+v, %v", main, err)
	}
}

func TestMeterService_Remove(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMeterService()

	r, _ := svc.Add(ctx, "Flat A", "")
	if err := svc.Remove(ctx, r.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := svc.Get(ctx, r.ID); err == nil {
		t.Error("meter should be gone after Remove")
	}
	if err := svc.Remove(ctx, r.ID); err == nil {
		t.Error("removing a missing meter should fail")
	}
}
