// Package pipeline implements the staged presolve pipeline of spec.md
// §4.7: a sequence of stages, each attaching auxiliary subproblems that
// get exported to a fresh compressed container, handed to an external
// solver, and merged back into the source container.
package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/fops"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// Solution is what an external solver reports back for one subproblem
// (spec §4.7 step d: report the subproblem's variable values and
// multipliers back into the source container).
type Solution struct {
	VarLevels      map[rid.Idx]float64
	VarMultipliers map[rid.Idx]float64
	EquLevels      map[rid.Idx]float64
	EquMultipliers map[rid.Idx]float64
}

// Solver is the external-solver contract a FilterSubset hands its
// compressed destination container to (spec §4.7 step c). The pipeline
// only needs the blocking call-and-return shape; what transport carries
// it (a GAMS/AMPL subprocess, a gRPC service) is the concern of whatever
// constructs a Solver, not of the pipeline itself.
type Solver interface {
	Solve(ctx context.Context, dst *ctr.Container) (*Solution, error)
}

// FilterSubset names one auxiliary problem to presolve within a stage:
// the fops defining what to export, and the solver that consumes the
// resulting container (spec §4.7: "a list of FilterSubsets defining
// auxiliary problems").
type FilterSubset struct {
	Fops  fops.Fops
	Solve Solver
}

// Stage is one presolve epoch's attached subproblems (spec §4.7).
type Stage struct {
	Subsets []*FilterSubset
}

// Pipeline is a sequence of presolve stages run against one source
// container (spec §4.7).
type Pipeline struct {
	stages []Stage
}

// New builds a Pipeline from its stages, mirroring the teacher's
// New(processors...) constructor shape.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes every stage's subsets against src, processing each
// stage's subsets in reverse order (spec §4.7 step 3: "for each attached
// subset in reverse order"). Subsets within a stage run strictly
// sequentially, never concurrently: step d has a later subproblem read
// the *updated* pool value an earlier one just wrote — a frozen-constant
// dependency that concurrent execution would race (spec §5: "single-
// threaded cooperative" scheduling, no suspension points inside the
// core). golang.org/x/sync/errgroup is used purely to give the one
// external solver call per subset proper context-cancellation plumbing:
// if ctx is cancelled mid-solve, the in-flight call is told to abort
// rather than left to run to completion for a result nobody will use.
//
// Failure at any subproblem aborts the pipeline and restores the
// container's stage counter (spec §4.7 step 4: "failure at any
// subproblem aborts the pipeline but still restores state").
func (p *Pipeline) Run(ctx context.Context, src *ctr.Container) error {
	savedStage := src.CurrentStage

	for stageIdx, stage := range p.stages {
		src.CurrentStage = stageIdx + 1
		for i := len(stage.Subsets) - 1; i >= 0; i-- {
			if err := p.runSubset(ctx, src, stage.Subsets[i]); err != nil {
				src.CurrentStage = savedStage
				return err
			}
		}
	}
	return nil
}

func (p *Pipeline) runSubset(ctx context.Context, src *ctr.Container, subset *FilterSubset) error {
	dst, err := src.Compress(subset.Fops)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	var sol *Solution
	g.Go(func() error {
		s, err := subset.Solve.Solve(gctx, dst)
		if err != nil {
			return err
		}
		sol = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if sol == nil {
		return nil
	}
	return mergeSolution(src, dst, sol)
}

// mergeSolution writes a subproblem's reported values back into src
// through dst's inherited-index mapping (spec §4.7 step d). Var levels
// are also re-interned into src.Pool so a later subproblem treating the
// same variable as a frozen constant reads the refreshed value.
func mergeSolution(src, dst *ctr.Container, sol *Solution) error {
	if dst.VarInherited == nil {
		return rherr.E(rherr.Inconsistency, "pipeline.mergeSolution", "destination container has no variable inheritance record")
	}
	for dstIdx, srcIdx := range dst.VarInherited.SourceIdx {
		v, err := src.Var(srcIdx)
		if err != nil {
			return err
		}
		if level, ok := sol.VarLevels[rid.Idx(dstIdx)]; ok {
			v.Level = level
			if _, err := src.Pool.Get(level); err != nil {
				return err
			}
		}
		if mult, ok := sol.VarMultipliers[rid.Idx(dstIdx)]; ok {
			v.Multiplier = mult
		}
	}
	if dst.EquInherited == nil {
		return nil
	}
	for dstIdx, srcIdx := range dst.EquInherited.SourceIdx {
		e, err := src.Equ(srcIdx)
		if err != nil {
			return err
		}
		if level, ok := sol.EquLevels[rid.Idx(dstIdx)]; ok {
			e.Level = level
		}
		if mult, ok := sol.EquMultipliers[rid.Idx(dstIdx)]; ok {
			e.Multiplier = mult
		}
	}
	return nil
}
