package fops

import (
	"testing"

	"github.com/reshop/reshop/internal/bytecode"
	"github.com/reshop/reshop/internal/cmat"
	"github.com/reshop/reshop/internal/pool"
	"github.com/reshop/reshop/internal/rid"
)

func TestEmptyKeepsEverything(t *testing.T) {
	e := Empty{N: 3, M: 2}
	if !e.KeepVar(0) || !e.KeepEqu(1) {
		t.Fatalf("Empty fops must keep everything")
	}
	n, m := e.Sizes()
	if n != 3 || m != 2 {
		t.Fatalf("Sizes = (%d,%d), want (3,2)", n, m)
	}
}

func TestActiveRespectsDeactivatedSet(t *testing.T) {
	c := cmat.New(1, 2)
	_ = c.FillEqu(0, []rid.Idx{0, 1}, []float64{1, 2}, nil, nil)
	a := Active{Src: c, DeactVars: map[rid.Idx]bool{1: true}}
	if !a.KeepVar(0) {
		t.Fatalf("variable 0 should be kept")
	}
	if a.KeepVar(1) {
		t.Fatalf("variable 1 is deactivated, should not be kept")
	}
}

func TestRewriteStreamSubstitutesPlaceholderForFilteredVar(t *testing.T) {
	p := pool.New(1)
	idx, _ := p.Get(3.5)
	rosettaVars := []rid.Idx{0, rid.Deleted}
	instrs := bytecode.Stream{
		{Op: bytecode.NlPushV, Arg: 2}, // variable 1, filtered out
		{Op: bytecode.NlHeader, Arg: 2},
	}
	out, err := RewriteStream(instrs, rosettaVars, 4, func(vi rid.Idx) (uint32, bool) {
		if vi == 1 {
			return idx, true
		}
		return 0, false
	})
	if err != nil {
		t.Fatalf("RewriteStream: %v", err)
	}
	if out[0].Op != bytecode.NlPushI || out[0].Arg != int32(idx) {
		t.Fatalf("rewritten instr = %+v, want nlPushI(%d)", out[0], idx)
	}
}

func TestRewriteStreamTranslatesKeptVar(t *testing.T) {
	rosettaVars := []rid.Idx{5}
	instrs := bytecode.Stream{
		{Op: bytecode.NlPushV, Arg: 1},
		{Op: bytecode.NlStore, Arg: 9},
		{Op: bytecode.NlHeader, Arg: 3},
	}
	out, err := RewriteStream(instrs, rosettaVars, 2, nil)
	if err != nil {
		t.Fatalf("RewriteStream: %v", err)
	}
	if out[0].Arg != 6 {
		t.Fatalf("translated var arg = %d, want 6 (1-based of 5)", out[0].Arg)
	}
	if out[1].Arg != 3 {
		t.Fatalf("nlStore arg = %d, want 3 (1-based of newEquIdx=2)", out[1].Arg)
	}
}
