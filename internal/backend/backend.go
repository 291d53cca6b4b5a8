// Package backend bridges the Staged Pipeline (internal/pipeline) to the
// minimal contract spec.md §1 keeps in scope for GAMS GMO, AMPL NL, and a
// Julia-style bridge: a SolveRequest/SolveReport gRPC service that such
// backends implement out-of-process. ReSHOP never implements the solver
// itself; this package only gets a compressed container onto the wire and
// a reported solution back off it.
package backend

import (
	"context"

	"github.com/reshop/reshop/internal/ctr"
)

// Report is what one Solve call returns, indexed by position — position
// i corresponds to rid.Idx(i) in the destination container that was
// exported (spec §4.7 step d's "variable values and multipliers").
type Report struct {
	Success bool
	Message string

	VarLevels      map[int]float64
	VarMultipliers map[int]float64
	EquLevels      map[int]float64
	EquMultipliers map[int]float64
}

// Backend is the interface every out-of-process solver bridge implements
// (SPEC_FULL.md's AMBIENT STACK: Run(ctx, dst) (*Report, error) and
// Name() string).
type Backend interface {
	Run(ctx context.Context, dst *ctr.Container) (*Report, error)
	Name() string
}

// def is the package-level default backend, selected the way the
// teacher's own BackendType build-time variable picks a default —
// except here it is an ordinary overridable package variable rather
// than a build tag, since nothing about backend choice needs to be
// fixed at compile time.
var def Backend

// Default returns the package-level default backend, or nil if none has
// been configured yet.
func Default() Backend { return def }

// SetDefault overrides the package-level default backend.
func SetDefault(b Backend) { def = b }
