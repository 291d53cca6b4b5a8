package rosetta

import (
	"reflect"
	"testing"

	"github.com/reshop/reshop/internal/rid"
)

func TestCompressVarsScenario(t *testing.T) {
	// spec §8 scenario 5: 10 variables, filter deactivates {2, 5}.
	deactivated := map[rid.Idx]bool{2: true, 5: true}
	keepVar := func(vi rid.Idx) bool { return !deactivated[vi] }
	rosettaVars, revRosetta, dropped, err := CompressVars(10, keepVar, nil)
	if err != nil {
		t.Fatalf("CompressVars: %v", err)
	}
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	want := []rid.Idx{0, 1, rid.Deleted, 2, 3, rid.Deleted, 4, 5, 6, 7}
	if !reflect.DeepEqual(rosettaVars, want) {
		t.Fatalf("rosettaVars = %v, want %v", rosettaVars, want)
	}
	wantRev := []rid.Idx{0, 1, 3, 4, 6, 7, 8, 9}
	if !reflect.DeepEqual(revRosetta, wantRev) {
		t.Fatalf("revRosetta = %v, want %v", revRosetta, wantRev)
	}
}

func TestChainDetectsCycle(t *testing.T) {
	entries := map[rid.Idx]EquEntry{
		0: Replacement(1, false),
		1: Replacement(0, false),
	}
	_, err := Chain(0, func(ei rid.Idx) (EquEntry, bool) { e, ok := entries[ei]; return e, ok })
	if err == nil {
		t.Fatalf("expected a cycle error")
	}
}

func TestChainTerminatesAtFixedPoint(t *testing.T) {
	entries := map[rid.Idx]EquEntry{
		0: Replacement(1, false),
		1: Identity(1),
	}
	got, err := Chain(0, func(ei rid.Idx) (EquEntry, bool) { e, ok := entries[ei]; return e, ok })
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	if got != 1 {
		t.Fatalf("Chain = %s, want 1", got)
	}
}

func TestCompressEqusSurfacesModelInfeasible(t *testing.T) {
	keepEqu := func(ei rid.Idx) bool { return ei != 1 }
	isVacuousOK := func(ei rid.Idx) (bool, error) { return false, nil }
	_, _, err := CompressEqus(3, keepEqu, isVacuousOK, nil)
	if err == nil {
		t.Fatalf("expected ModelInfeasible error")
	}
}
