package reshop

import (
	"context"

	"github.com/reshop/reshop/internal/pipeline"
)

// RunPipeline drives the staged presolve pipeline (spec §4.7) against
// this model's container, blocking until every stage's subsets have been
// exported, solved, and merged back, or until one fails.
func (m *Model) RunPipeline(ctx context.Context, p *pipeline.Pipeline) error {
	return p.Run(ctx, m.ctr)
}
