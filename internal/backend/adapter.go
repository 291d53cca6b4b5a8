package backend

import (
	"context"

	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/pipeline"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// Adapter satisfies pipeline.Solver by running b and translating its
// positional Report back into pipeline.Solution's rid.Idx-keyed maps.
type Adapter struct {
	Backend Backend
}

func (a Adapter) Solve(ctx context.Context, dst *ctr.Container) (*pipeline.Solution, error) {
	rep, err := a.Backend.Run(ctx, dst)
	if err != nil {
		return nil, err
	}
	if !rep.Success {
		return nil, rherr.E(rherr.RuntimeError, "backend.Adapter.Solve", "%s backend reported failure: %s", a.Backend.Name(), rep.Message)
	}

	sol := &pipeline.Solution{
		VarLevels:      reindex(rep.VarLevels),
		VarMultipliers: reindex(rep.VarMultipliers),
		EquLevels:      reindex(rep.EquLevels),
		EquMultipliers: reindex(rep.EquMultipliers),
	}
	return sol, nil
}

func reindex(in map[int]float64) map[rid.Idx]float64 {
	out := make(map[rid.Idx]float64, len(in))
	for i, v := range in {
		out[rid.Idx(i)] = v
	}
	return out
}
