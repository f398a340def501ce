package bill_test

import (
	"math"
	"testing"

	"github.com/metersplit/metersplit/domain/bill"
	"github.com/metersplit/metersplit/domain/meter"
	"github.com/metersplit/metersplit/domain/tariff"
)

var testTariff = tariff.Config{
	Slabs: []tariff.Slab{
		{Limit: 50, Rate: 4},
		{Limit: 100, Rate: 5},
		{Limit: 99999, Rate: 6},
	},
	VATRate:      0.05,
	DemandCharge: 100,
	MeterRent:    50,
	BkashCharge:  10,
}

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= 1e-9*scale
}

func TestAllocate_WorkedExample(t *testing.T) {
	main := meter.Reading{ID: "main", Previous: 0, Current: 120}
	subs := []meter.Reading{
		{ID: "u1", Name: "Flat A", Previous: 0, Current: 60},
		{ID: "u2", Name: "Flat B", Previous: 0, Current: 60},
	}

	res := bill.Allocate(bill.Options{IncludeBkashFee: true}, main, subs, testTariff)

	// energy 50*4 + 50*5 + 20*6 = 570; fixed 150; vat (570+150)*0.05 = 36
	if !almostEqual(res.VATTotal, 36) {
		t.Errorf("VATTotal = %v, want 36", res.VATTotal)
	}
	if res.LateFee != 0 {
		t.Errorf("LateFee = %v, want 0", res.LateFee)
	}
	if !almostEqual(res.TotalCollection, 766) {
		t.Errorf("TotalCollection = %v, want 766", res.TotalCollection)
	}
	if !almostEqual(res.VATFixed, 7.5) {
		t.Errorf("VATFixed = %v, want 7.5", res.VATFixed)
	}
	if !almostEqual(res.VATDistributed, 28.5) {
		t.Errorf("VATDistributed = %v, want 28.5", res.VATDistributed)
	}
	if res.TotalUnits != 120 {
		t.Errorf("TotalUnits = %v, want 120", res.TotalUnits)
	}
	if !almostEqual(res.CalculatedRate, 4.9875) {
		t.Errorf("CalculatedRate = %v, want 4.9875", res.CalculatedRate)
	}

	if len(res.Users) != 2 {
		t.Fatalf("len(Users) = %d, want 2", len(res.Users))
	}
	for i, u := range res.Users {
		if !almostEqual(u.EnergyCost, 299.25) {
			t.Errorf("Users[%d].EnergyCost = %v, want 299.25", i, u.EnergyCost)
		}
		if !almostEqual(u.FixedCost, 83.75) {
			t.Errorf("Users[%d].FixedCost = %v, want 83.75", i, u.FixedCost)
		}
		if !almostEqual(u.TotalPayable, 383) {
			t.Errorf("Users[%d].TotalPayable = %v, want 383", i, u.TotalPayable)
		}
	}
}

func TestAllocate_Reconciliation(t *testing.T) {
	// The sum of all tenant totals must equal the system-wide collection,
	// even when the sub-meter total disagrees with the main meter.
	tests := []struct {
		name string
		main meter.Reading
		subs []meter.Reading
		opts bill.Options
	}{
		{
			"exact metering",
			meter.Reading{Previous: 0, Current: 120},
			[]meter.Reading{{ID: "a", Previous: 0, Current: 70}, {ID: "b", Previous: 0, Current: 50}},
			bill.Options{},
		},
		{
			"system loss absorbed into rate",
			meter.Reading{Previous: 1000, Current: 1200},
			[]meter.Reading{{ID: "a", Previous: 0, Current: 90}, {ID: "b", Previous: 0, Current: 85}},
			bill.Options{IncludeBkashFee: true},
		},
		{
			"system gain absorbed into rate",
			meter.Reading{Previous: 0, Current: 100},
			[]meter.Reading{{ID: "a", Previous: 0, Current: 60}, {ID: "b", Previous: 0, Current: 55}},
			bill.Options{IncludeLateFee: true},
		},
		{
			"uneven shares with all fees",
			meter.Reading{Previous: 500, Current: 812.5},
			[]meter.Reading{
				{ID: "a", Previous: 10, Current: 110.25},
				{ID: "b", Previous: 0, Current: 77},
				{ID: "c", Previous: 3, Current: 120},
			},
			bill.Options{IncludeLateFee: true, IncludeBkashFee: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := bill.Allocate(tt.opts, tt.main, tt.subs, testTariff)

			var sum float64
			for _, u := range res.Users {
				sum += u.TotalPayable
			}
			if !almostEqual(sum, res.TotalCollection) {
				t.Errorf("sum of user totals = %v, TotalCollection = %v", sum, res.TotalCollection)
			}
		})
	}
}

func TestAllocate_LateFeeDuplicatesVAT(t *testing.T) {
	main := meter.Reading{Previous: 0, Current: 120}
	subs := []meter.Reading{{ID: "a", Previous: 0, Current: 120}}

	res := bill.Allocate(bill.Options{IncludeLateFee: true}, main, subs, testTariff)

	if res.LateFee != res.VATTotal {
		t.Errorf("LateFee = %v, want exactly VATTotal %v", res.LateFee, res.VATTotal)
	}
}

func TestAllocate_NoSubMeters(t *testing.T) {
	main := meter.Reading{Previous: 0, Current: 120}

	res := bill.Allocate(bill.Options{IncludeBkashFee: true}, main, nil, testTariff)

	if len(res.Users) != 0 {
		t.Errorf("len(Users) = %d, want 0", len(res.Users))
	}
	if res.TotalUnits != 0 {
		t.Errorf("TotalUnits = %v, want 0", res.TotalUnits)
	}
	if res.CalculatedRate != 0 {
		t.Errorf("CalculatedRate = %v, want 0", res.CalculatedRate)
	}
	// The system-wide total is still computed from the main meter alone.
	if !almostEqual(res.TotalCollection, 766) {
		t.Errorf("TotalCollection = %v, want 766", res.TotalCollection)
	}
}

func TestAllocate_ZeroSubConsumption(t *testing.T) {
	main := meter.Reading{Previous: 0, Current: 120}
	subs := []meter.Reading{
		{ID: "a", Previous: 50, Current: 50},
		{ID: "b", Previous: 80, Current: 80},
	}

	res := bill.Allocate(bill.Options{}, main, subs, testTariff)

	if res.CalculatedRate != 0 {
		t.Errorf("CalculatedRate = %v, want 0", res.CalculatedRate)
	}
	for i, u := range res.Users {
		if u.EnergyCost != 0 {
			t.Errorf("Users[%d].EnergyCost = %v, want 0", i, u.EnergyCost)
		}
		// Fixed costs still split evenly even with no consumption.
		if !almostEqual(u.FixedCost, res.Users[0].FixedCost) {
			t.Errorf("Users[%d].FixedCost = %v, want even split", i, u.FixedCost)
		}
		if u.FixedCost == 0 {
			t.Errorf("Users[%d].FixedCost = 0, want nonzero share", i)
		}
	}
}

func TestAllocate_NegativeDeltaClamp(t *testing.T) {
	main := meter.Reading{Previous: 0, Current: 100}
	subs := []meter.Reading{
		{ID: "a", Previous: 20, Current: 10}, // contributes 0, not -10
		{ID: "b", Previous: 0, Current: 100},
	}

	res := bill.Allocate(bill.Options{}, main, subs, testTariff)

	if res.TotalUnits != 100 {
		t.Errorf("TotalUnits = %v, want 100", res.TotalUnits)
	}
	if res.Users[0].UnitsUsed != 0 {
		t.Errorf("Users[0].UnitsUsed = %v, want 0", res.Users[0].UnitsUsed)
	}
	if res.Users[0].EnergyCost != 0 {
		t.Errorf("Users[0].EnergyCost = %v, want 0", res.Users[0].EnergyCost)
	}
}

func TestAllocate_EmptySlabTable(t *testing.T) {
	cfg := testTariff
	cfg.Slabs = nil

	main := meter.Reading{Previous: 0, Current: 500}
	subs := []meter.Reading{{ID: "a", Previous: 0, Current: 500}}

	res := bill.Allocate(bill.Options{}, main, subs, cfg)

	// Only fixed charges and their VAT remain.
	want := (150.0) * 1.05
	if !almostEqual(res.TotalCollection, want) {
		t.Errorf("TotalCollection = %v, want %v", res.TotalCollection, want)
	}
}

func TestAllocate_DoesNotMutateInputs(t *testing.T) {
	main := meter.Reading{ID: "main", Previous: 10, Current: 130}
	subs := []meter.Reading{{ID: "a", Previous: 5, Current: 65}}
	cfg := testTariff

	_ = bill.Allocate(bill.Options{IncludeLateFee: true, IncludeBkashFee: true}, main, subs, cfg)

	if main.Previous != 10 || main.Current != 130 {
		t.Error("main reading mutated")
	}
	if subs[0].Previous != 5 || subs[0].Current != 65 {
		t.Error("sub reading mutated")
	}
	if len(cfg.Slabs) != 3 || cfg.VATRate != 0.05 {
		t.Error("tariff config mutated")
	}
}
