// Package reshop is the public entry point for building and reformulating
// a mathematical program: a thin wrapper around internal/ctr.Container
// that also carries the process-wide option bag (internal/config) and
// wires a built model into the staged presolve pipeline
// (internal/pipeline) and an external solver backend (internal/backend).
//
// Per spec.md §1, the thin public C API (argument-null checks, index
// validation) and the higher-level EMPDAG/OVF/latex layers are out of
// scope; Model exposes the core container operations a Go host program
// needs, not a full re-implementation of that C surface.
package reshop

import (
	"github.com/google/uuid"

	"github.com/reshop/reshop/internal/config"
	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/nltree"
	"github.com/reshop/reshop/internal/rid"
)

// Model is one mathematical program under construction: a Container plus
// the option bag that governs how its pipeline stages and backend calls
// behave.
type Model struct {
	ctr     *ctr.Container
	options *config.Bag
}

// New returns an empty model reserved for mEst equations and nEst
// variables (spec §6.1 "mdl_reserve_equs/vars" sizing hint), seeded with
// defs as its initial option set. A nil defs starts from an empty bag.
func New(mEst, nEst int, defs *config.Defaults) *Model {
	opts := config.New()
	if defs != nil {
		opts = defs.Bag()
	}
	return &Model{ctr: ctr.New(mEst, nEst), options: opts}
}

// SessionID returns the session id of the model's container. Each
// pipeline subproblem export is a new container with its own fresh id,
// and backend RPC calls carry that exported container's id, not this one.
func (m *Model) SessionID() uuid.UUID { return m.ctr.SessionID }

// Options returns the model's option bag (spec §6.1 "set_option_{b,d,i,s}").
func (m *Model) Options() *config.Bag { return m.options }

// Container exposes the underlying container for packages that need the
// full internal surface (internal/pipeline, internal/backend). Host
// programs outside this module should prefer Model's own methods.
func (m *Model) Container() *ctr.Container { return m.ctr }

// ReserveVars grows the variable storage estimate (spec §6.1
// "mdl_reserve_vars").
func (m *Model) ReserveVars(n int) error { return m.ctr.ReserveVars(n) }

// ReserveEqus grows the equation storage estimate (spec §6.1
// "mdl_reserve_equs").
func (m *Model) ReserveEqus(n int) error { return m.ctr.ReserveEqus(n) }

// AddVar adds one variable bounded in [lb, ub] (spec §6.1 "add_var").
func (m *Model) AddVar(lb, ub float64) (rid.Idx, error) {
	return m.ctr.AddVar(lb, ub)
}

// AddVars adds n variables, all bounded in [lb, ub] (spec §6.1
// "add_vars").
func (m *Model) AddVars(n int, lb, ub float64) ([]rid.Idx, error) {
	return m.ctr.AddVars(n, lb, ub)
}

// AddPosVars adds n nonnegative variables (spec §6.1 "add_posvars").
func (m *Model) AddPosVars(n int) ([]rid.Idx, error) {
	return m.ctr.AddPosVars(n)
}

// AddNegVars adds n nonpositive variables (spec §6.1 "add_negvars").
func (m *Model) AddNegVars(n int) ([]rid.Idx, error) {
	return m.ctr.AddNegVars(n)
}

// AddVarsInBox adds n variables sharing the box [lb, ub] (spec §6.1
// "add_varsinbox").
func (m *Model) AddVarsInBox(n int, lb, ub float64) ([]rid.Idx, error) {
	return m.ctr.AddVarsInBox(n, lb, ub)
}

// AddVarsInBoxes adds len(lbs) variables, each bounded by its own entry
// in lbs/ubs (spec §6.1 "add_varsinboxes").
func (m *Model) AddVarsInBoxes(lbs, ubs []float64) ([]rid.Idx, error) {
	return m.ctr.AddVarsInBoxes(lbs, ubs)
}

// AddEquation adds one equation of the given object type and cone
// (spec §6.1 "add_equation").
func (m *Model) AddEquation(obj equvar.ObjType, cone equvar.Cone) (rid.Idx, error) {
	return m.ctr.AddEquation(obj, cone)
}

// AddEquations adds n plain equations (spec §6.1 "add_equations").
func (m *Model) AddEquations(n int) ([]rid.Idx, error) {
	return m.ctr.AddEquations(n)
}

// AddCon adds one constraint equation in the given cone (spec §6.1
// "add_con").
func (m *Model) AddCon(cone equvar.Cone) (rid.Idx, error) {
	return m.ctr.AddCon(cone)
}

// AddCons adds n constraint equations sharing a cone (spec §6.1
// "add_cons").
func (m *Model) AddCons(n int, cone equvar.Cone) ([]rid.Idx, error) {
	return m.ctr.AddCons(n, cone)
}

// IsVarValid reports whether vi names a live variable (spec §6.1
// "is_var_valid").
func (m *Model) IsVarValid(vi rid.Idx) bool { return m.ctr.IsVarValid(vi) }

// IsEquValid reports whether ei names a live equation (spec §6.1
// "is_equ_valid").
func (m *Model) IsEquValid(ei rid.Idx) bool { return m.ctr.IsEquValid(ei) }

// Var returns the metadata record for vi (spec §6.1 "avar_get" applied
// to a single index).
func (m *Model) Var(vi rid.Idx) (*equvar.Var, error) { return m.ctr.Var(vi) }

// Equ returns the metadata record for ei.
func (m *Model) Equ(ei rid.Idx) (*equvar.Equ, error) { return m.ctr.Equ(ei) }

// DeleteVar removes vi from the model (spec §6.1 "delete_var").
func (m *Model) DeleteVar(vi rid.Idx) error { return m.ctr.DeleteVar(vi) }

// DeleteEqu removes ei from the model (spec §6.1 "delete_equ").
func (m *Model) DeleteEqu(ei rid.Idx) error { return m.ctr.DeleteEqu(ei) }

// SetObjEqu sets ei's object type to obj (spec §6.1 "mdl_setobjequ").
// The model does not record which equation is the objective.
func (m *Model) SetObjEqu(ei rid.Idx, obj equvar.ObjType) error {
	return m.ctr.SetObjEqu(ei, obj)
}

// GetNlTree returns ei's nonlinear expression tree, or nil if ei is
// purely linear (spec §6.1 "mdl_getnltree").
func (m *Model) GetNlTree(ei rid.Idx) (*nltree.Tree, error) {
	return m.ctr.GetNlTree(ei)
}

// CheckExpensive runs the model's full consistency check (spec §4.4's
// "semantic checks", intended for tests and debugging, not the hot
// editing path).
func (m *Model) CheckExpensive() error { return m.ctr.CheckExpensive() }
