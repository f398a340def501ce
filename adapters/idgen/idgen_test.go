package idgen_test

import (
	"testing"

	"github.com/metersplit/metersplit/adapters/idgen"
)

func TestUUID_New(t *testing.T) {
	g := idgen.UUID{}

	a := g.New()
	b := g.New()

	if a == b {
		t.Error("consecutive UUIDs must differ")
	}
	if len(a) != 36 {
		t.Errorf("len(UUID) = %d, want 36", len(a))
	}
}

func TestSequential(t *testing.T) {
	g := idgen.NewSequential("meter_")

	if got := g.New(); got != "meter_1" {
		t.Errorf("New() = %q, want meter_1", got)
	}
	if got := g.New(); got != "meter_2" {
		t.Errorf("New() = %q, want meter_2", got)
	}

	g.Reset()
	if got := g.New(); got != "meter_1" {
		t.Errorf("after Reset: New() = %q, want meter_1", got)
	}
}
