// Package bill provides the bill allocation engine: a pure computation that
// splits one main-meter bill across sub-metered tenants using tiered energy
// pricing plus fixed charges, VAT, and fees.
package bill

import (
	"time"

	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/domain/tariff"
)

// Options carries the per-period flags for one allocation.
type Options struct {
	Month           string
	GeneratedAt     time.Time
	IncludeLateFee  bool
	IncludeBkashFee bool
}

// UserShare is one tenant's row in the allocation result.
type UserShare struct {
	ID           string
	Name         string
	UnitsUsed    float64
	EnergyCost   float64
	FixedCost    float64
	TotalPayable float64
	Previous     float64
	Current      float64
}

// Result is the full allocation breakdown. Produced fresh on every call,
// never mutated after return.
type Result struct {
	VATFixed        float64
	VATDistributed  float64
	VATTotal        float64
	LateFee         float64
	CalculatedRate  float64
	TotalUnits      float64
	TotalCollection float64
	Users           []UserShare
}

// Allocate computes a reconciled cost split: the sum of every tenant's
// TotalPayable equals TotalCollection whenever sub-meters exist and recorded
// any consumption. Metering loss or gain between the main meter and the
// sub-meter total is absorbed into CalculatedRate, the back-solved per-unit
// rate, rather than surfaced as its own line item.
//
// All degenerate inputs (empty slabs, no sub-meters, zero or negative
// consumption) produce zero contributions, never an error.
// This is a PURE function.
func Allocate(opts Options, main meter.Reading, subs []meter.Reading, cfg tariff.Config) Result {
	mainUnits := main.Consumption()
	energyCostBase := tariff.EnergyCost(mainUnits, cfg.Slabs)

	fixedBase := cfg.DemandCharge + cfg.MeterRent
	taxableBase := energyCostBase + fixedBase
	vatTotal := taxableBase * cfg.VATRate

	// Late fee duplicates the VAT amount. This mirrors the shipping billing
	// rule; a separate penalty percentage is pending product clarification.
	var lateFee float64
	if opts.IncludeLateFee {
		lateFee = vatTotal
	}

	var bkashFee float64
	if opts.IncludeBkashFee {
		bkashFee = cfg.BkashCharge
	}

	// Authoritative system-wide total, independent of sub-meter data.
	totalCollection := taxableBase + vatTotal + lateFee + bkashFee

	vatFixed := fixedBase * cfg.VATRate
	vatDistributed := vatTotal - vatFixed

	totalSubUnits := meter.TotalConsumption(subs)

	// Every non-energy component is split evenly across tenants.
	fixedSharedPool := fixedBase + vatFixed + bkashFee + lateFee
	var fixedCostPerUser float64
	if len(subs) > 0 {
		fixedCostPerUser = fixedSharedPool / float64(len(subs))
	}

	energySharedPool := energyCostBase + vatDistributed
	var calculatedRate float64
	if totalSubUnits > 0 {
		calculatedRate = energySharedPool / totalSubUnits
	}

	users := make([]UserShare, 0, len(subs))
	for _, sub := range subs {
		units := sub.Consumption()
		energyCost := units * calculatedRate
		users = append(users, UserShare{
			ID:           sub.ID,
			Name:         sub.Name,
			UnitsUsed:    units,
			EnergyCost:   energyCost,
			FixedCost:    fixedCostPerUser,
			TotalPayable: energyCost + fixedCostPerUser,
			Previous:     sub.Previous,
			Current:      sub.Current,
		})
	}

	return Result{
		VATFixed:        vatFixed,
		VATDistributed:  vatDistributed,
		VATTotal:        vatTotal,
		LateFee:         lateFee,
		CalculatedRate:  calculatedRate,
		TotalUnits:      totalSubUnits,
		TotalCollection: totalCollection,
		Users:           users,
	}
}
