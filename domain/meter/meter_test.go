package meter_test

import (
	"testing"

	"github.com/metersplit/metersplit/domain/meter"
)

func TestReading_Consumption(t *testing.T) {
	tests := []struct {
		name     string
		previous float64
		current  float64
		want     float64
	}{
		{"normal delta", 100, 150, 50},
		{"zero delta", 100, 100, 0},
		{"negative delta clamps to zero", 20, 10, 0},
		{"fresh meter", 0, 0, 0},
		{"fractional units", 10.5, 12.75, 2.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := meter.Reading{Previous: tt.previous, Current: tt.current}
			if got := r.Consumption(); got != tt.want {
				t.Errorf("Consumption() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReading_Rollover(t *testing.T) {
	r := meter.Reading{ID: "m1", Name: "Flat 2A", MeterNo: "X-100", Previous: 100, Current: 180}

	next := r.Rollover()

	if next.Previous != 180 || next.Current != 180 {
		t.Errorf("Rollover() = {Previous: %v, Current: %v}, want both 180", next.Previous, next.Current)
	}
	if next.ID != "m1" || next.Name != "Flat 2A" || next.MeterNo != "X-100" {
		t.Error("Rollover() must carry identity fields unchanged")
	}
	if next.Consumption() != 0 {
		t.Errorf("new period should start at zero consumption, got %v", next.Consumption())
	}

	// Value semantics: receiver untouched.
	if r.Previous != 100 {
		t.Errorf("Rollover() mutated receiver: Previous = %v", r.Previous)
	}
}

func TestTotalConsumption(t *testing.T) {
	readings := []meter.Reading{
		{Previous: 0, Current: 60},
		{Previous: 0, Current: 60},
		{Previous: 20, Current: 10}, // clamped to 0
	}

	if got := meter.TotalConsumption(readings); got != 120 {
		t.Errorf("TotalConsumption() = %v, want 120", got)
	}

	if got := meter.TotalConsumption(nil); got != 0 {
		t.Errorf("TotalConsumption(nil) = %v, want 0", got)
	}
}
