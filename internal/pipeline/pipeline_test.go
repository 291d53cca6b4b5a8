package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/reshop/reshop/internal/avar"
	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/fops"
	"github.com/reshop/reshop/internal/rid"
)

func newTestContainer(t *testing.T) (*ctr.Container, []rid.Idx) {
	t.Helper()
	c := ctr.New(1, 2)
	vis, err := c.AddVars(2, 0, 10)
	if err != nil {
		t.Fatalf("AddVars: %v", err)
	}
	ei, err := c.AddEquation(equvar.Unset, equvar.ConeRPlus)
	if err != nil {
		t.Fatalf("AddEquation: %v", err)
	}
	if err := c.AddLin(ei, avar.NewList(vis), []float64{1, 1}); err != nil {
		t.Fatalf("AddLin: %v", err)
	}
	return c, vis
}

// fakeSolver reports fixed levels for whatever it's handed, recording
// every container it was called with so tests can assert call order.
type fakeSolver struct {
	calls  *[]string
	name   string
	levels map[rid.Idx]float64
	err    error
}

func (s fakeSolver) Solve(ctx context.Context, dst *ctr.Container) (*Solution, error) {
	*s.calls = append(*s.calls, s.name)
	if s.err != nil {
		return nil, s.err
	}
	return &Solution{VarLevels: s.levels}, nil
}

func TestRunMergesSolverLevelsBackIntoSource(t *testing.T) {
	c, vis := newTestContainer(t)
	var calls []string
	p := New(Stage{Subsets: []*FilterSubset{{
		Fops:  fops.Empty{N: c.TotalN, M: c.TotalM},
		Solve: fakeSolver{calls: &calls, name: "s0", levels: map[rid.Idx]float64{0: 3.5, 1: 4.5}},
	}}})

	if err := p.Run(context.Background(), c); err != nil {
		t.Fatalf("Run: %v", err)
	}
	v0, err := c.Var(vis[0])
	if err != nil {
		t.Fatalf("Var: %v", err)
	}
	if v0.Level != 3.5 {
		t.Fatalf("v0.Level = %v, want 3.5", v0.Level)
	}
	v1, err := c.Var(vis[1])
	if err != nil {
		t.Fatalf("Var: %v", err)
	}
	if v1.Level != 4.5 {
		t.Fatalf("v1.Level = %v, want 4.5", v1.Level)
	}
	if c.CurrentStage != 1 {
		t.Fatalf("CurrentStage = %d, want 1 after a successful run", c.CurrentStage)
	}
}

func TestRunProcessesSubsetsWithinAStageInReverseOrder(t *testing.T) {
	c, _ := newTestContainer(t)
	var calls []string
	p := New(Stage{Subsets: []*FilterSubset{
		{Fops: fops.Empty{N: c.TotalN, M: c.TotalM}, Solve: fakeSolver{calls: &calls, name: "first"}},
		{Fops: fops.Empty{N: c.TotalN, M: c.TotalM}, Solve: fakeSolver{calls: &calls, name: "second"}},
	}})

	if err := p.Run(context.Background(), c); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calls) != 2 || calls[0] != "second" || calls[1] != "first" {
		t.Fatalf("call order = %v, want [second first]", calls)
	}
}

func TestRunRestoresStageOnSolverFailure(t *testing.T) {
	c, _ := newTestContainer(t)
	c.CurrentStage = 2
	var calls []string
	p := New(Stage{Subsets: []*FilterSubset{{
		Fops:  fops.Empty{N: c.TotalN, M: c.TotalM},
		Solve: fakeSolver{calls: &calls, name: "boom", err: errors.New("solver exploded")},
	}}})

	if err := p.Run(context.Background(), c); err == nil {
		t.Fatal("Run: expected error, got nil")
	}
	if c.CurrentStage != 2 {
		t.Fatalf("CurrentStage = %d, want restored to 2 after failure", c.CurrentStage)
	}
}
