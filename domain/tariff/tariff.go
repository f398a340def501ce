// Package tariff provides tariff configuration value types and the tiered
// energy cost evaluator.
package tariff

import "fmt"

// Slab is one tier in a progressive pricing table. It covers consumption
// between the previous slab's Limit (0 for the first) and its own Limit,
// billed at Rate per unit.
type Slab struct {
	Limit float64 `yaml:"limit" json:"limit"`
	Rate  float64 `yaml:"rate" json:"rate"`
}

// Config is a versioned tariff configuration. It is immutable for the
// duration of one calculation call.
type Config struct {
	Slabs        []Slab  `yaml:"slabs" json:"slabs"`
	VATRate      float64 `yaml:"vat_rate" json:"vat_rate"`
	DemandCharge float64 `yaml:"demand_charge" json:"demand_charge"`
	MeterRent    float64 `yaml:"meter_rent" json:"meter_rent"`
	BkashCharge  float64 `yaml:"bkash_charge" json:"bkash_charge"`
}

// EnergyCost evaluates the cost of units against the slab table.
// Slabs must be sorted ascending by Limit; the evaluator trusts its input
// and does not sort. Consumption beyond the last slab's limit is billed at
// the last slab's rate. An empty slab table prices everything at zero.
// This is a PURE function.
func EnergyCost(units float64, slabs []Slab) float64 {
	var cost float64
	remaining := units
	previousLimit := 0.0

	for _, s := range slabs {
		if remaining <= 0 {
			return cost
		}
		tierWidth := s.Limit - previousLimit
		billed := remaining
		if tierWidth < billed {
			billed = tierWidth
		}
		cost += billed * s.Rate
		remaining -= billed
		previousLimit = s.Limit
	}

	// Unbounded final tier at the last slab's rate.
	if remaining > 0 && len(slabs) > 0 {
		cost += remaining * slabs[len(slabs)-1].Rate
	}
	return cost
}

// Validate checks a configuration for use by the settings surface.
// The evaluator itself never validates; malformed configs flow through it
// silently. Callers that accept user input should validate first.
func (c Config) Validate() error {
	prev := 0.0
	for i, s := range c.Slabs {
		if s.Limit <= prev && i > 0 {
			return fmt.Errorf("slabs[%d].limit %v is not above the previous limit %v", i, s.Limit, prev)
		}
		if s.Limit <= 0 {
			return fmt.Errorf("slabs[%d].limit must be positive, got %v", i, s.Limit)
		}
		if s.Rate < 0 {
			return fmt.Errorf("slabs[%d].rate must not be negative, got %v", i, s.Rate)
		}
		prev = s.Limit
	}
	if c.VATRate < 0 {
		return fmt.Errorf("vat_rate must not be negative, got %v", c.VATRate)
	}
	if c.DemandCharge < 0 {
		return fmt.Errorf("demand_charge must not be negative, got %v", c.DemandCharge)
	}
	if c.MeterRent < 0 {
		return fmt.Errorf("meter_rent must not be negative, got %v", c.MeterRent)
	}
	if c.BkashCharge < 0 {
		return fmt.Errorf("bkash_charge must not be negative, got %v", c.BkashCharge)
	}
	return nil
}
