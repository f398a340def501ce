package tariff_test

import (
	"math"
	"testing"

	"github.com/metersplit/metersplit/domain/tariff"
)

var standardSlabs = []tariff.Slab{
	{Limit: 50, Rate: 4},
	{Limit: 100, Rate: 5},
	{Limit: 99999, Rate: 6},
}

func TestEnergyCost(t *testing.T) {
	tests := []struct {
		name  string
		units float64
		slabs []tariff.Slab
		want  float64
	}{
		{"zero units", 0, standardSlabs, 0},
		{"within first tier", 30, standardSlabs, 120},
		{"exactly first tier boundary", 50, standardSlabs, 200},
		{"spans two tiers", 80, standardSlabs, 200 + 150},
		{"spans three tiers", 120, standardSlabs, 200 + 250 + 120},
		{"empty slab table", 500, nil, 0},
		{"single slab", 40, []tariff.Slab{{Limit: 100, Rate: 5}}, 200},
		{"overflow uses last rate", 150, []tariff.Slab{{Limit: 100, Rate: 5}}, 100*5 + 50*5},
		{"fractional units", 10.5, []tariff.Slab{{Limit: 100, Rate: 2}}, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tariff.EnergyCost(tt.units, tt.slabs); got != tt.want {
				t.Errorf("EnergyCost(%v) = %v, want %v", tt.units, got, tt.want)
			}
		})
	}
}

func TestEnergyCost_BoundaryExact(t *testing.T) {
	// Consumption equal to the first limit must not bleed into tier 2.
	got := tariff.EnergyCost(standardSlabs[0].Limit, standardSlabs)
	want := standardSlabs[0].Limit * standardSlabs[0].Rate
	if got != want {
		t.Errorf("EnergyCost(limit) = %v, want exactly %v", got, want)
	}
}

func TestEnergyCost_Monotonic(t *testing.T) {
	// Cost must be non-decreasing in units for a fixed slab table.
	prev := math.Inf(-1)
	for u := 0.0; u <= 300; u += 7.3 {
		cost := tariff.EnergyCost(u, standardSlabs)
		if cost < prev {
			t.Fatalf("EnergyCost not monotonic: cost(%v) = %v dropped below %v", u, cost, prev)
		}
		prev = cost
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := tariff.Config{
		Slabs:        standardSlabs,
		VATRate:      0.05,
		DemandCharge: 100,
		MeterRent:    50,
		BkashCharge:  10,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*tariff.Config)
	}{
		{"unsorted slabs", func(c *tariff.Config) {
			c.Slabs = []tariff.Slab{{Limit: 100, Rate: 5}, {Limit: 50, Rate: 4}}
		}},
		{"zero limit", func(c *tariff.Config) {
			c.Slabs = []tariff.Slab{{Limit: 0, Rate: 4}}
		}},
		{"negative rate", func(c *tariff.Config) {
			c.Slabs = []tariff.Slab{{Limit: 50, Rate: -1}}
		}},
		{"negative vat", func(c *tariff.Config) { c.VATRate = -0.05 }},
		{"negative demand charge", func(c *tariff.Config) { c.DemandCharge = -1 }},
		{"negative meter rent", func(c *tariff.Config) { c.MeterRent = -1 }},
		{"negative bkash charge", func(c *tariff.Config) { c.BkashCharge = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestConfig_ValidateEmptySlabs(t *testing.T) {
	// An empty slab table is a legal degenerate config, not an error.
	if err := (tariff.Config{}).Validate(); err != nil {
		t.Errorf("Validate() on empty config: %v", err)
	}
}
