// Package ctr implements the Container of spec.md §2/§3.7/§4.4: the
// self-contained in-memory model tying together the numeric pool
// (internal/pool), the incidence structure (internal/cmat), and the
// per-index equation/variable records (internal/equvar), plus the
// staged editing discipline that keeps them all coherent.
package ctr

import (
	"math"

	"github.com/google/uuid"

	"github.com/reshop/reshop/internal/avar"
	"github.com/reshop/reshop/internal/cmat"
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/pool"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
	"github.com/reshop/reshop/internal/rosetta"
)

// EvalPair marks a variable whose value must be recomputed from an
// equation during post-solve reporting (spec §3.7 "equvar_evals").
type EvalPair struct {
	Equ, Var rid.Idx
}

// Inherited records the (current_indices, source_indices) pairing when
// a container was produced by compressing another (spec §3.7
// "equ_inherited"/"var_inherited"). Per spec §9's decided Open Question,
// the reimplementation uses strict ownership (deep copy on inherit)
// rather than a borrow relationship; Inherited exists purely to answer
// "what did index i come from" for names/trees, not to share storage.
type Inherited struct {
	CurrentIdx []rid.Idx
	SourceIdx  []rid.Idx
}

// Container is one self-contained in-memory model (spec §3.7).
type Container struct {
	// SessionID tags this container across its lifetime. A container
	// produced by Compress gets a fresh id of its own; backend RPC
	// requests carry the id of the container being sent, so a
	// solver-side log can be traced back to that exported container.
	SessionID uuid.UUID

	Pool *pool.Pool
	CMat *cmat.CMat

	Equs []*equvar.Equ
	Vars []*equvar.Var

	TotalM, TotalN int
	M, N           int
	MaxM, MaxN     int

	EquRosetta []rosetta.EquEntry
	EquStage   []int
	CurrentStage int

	EquVarEvals map[int][]EvalPair

	EquInherited, VarInherited *Inherited

	// named marks whether this container accepts the named variants of
	// add_var/add_equation (spec §6.1 "named variants accept a basename
	// copied internally"). A container created by New, not NewNamed,
	// rejects every named operation with WrongModelForFunction (spec §7:
	// "an operation was called on a container whose backend does not
	// support it, e.g. named-variable query on the non-named backend").
	named     bool
	varNames  map[string]rid.Idx
	equNames  map[string]rid.Idx

	// borrowed is a "borrow at most one at a time" scratch buffer flag
	// (spec §5 "Working buffer (ctr.workspace)"). true marks it in use;
	// Borrow/Release toggle it, and Borrow returns an Inconsistency
	// error on a double-borrow rather than silently corrupting state.
	borrowed bool
}

// New returns an empty container reserved for mEst equations and nEst
// variables.
func New(mEst, nEst int) *Container {
	return &Container{
		SessionID:   uuid.New(),
		Pool:        pool.New(nEst),
		CMat:        cmat.New(mEst, nEst),
		Equs:        make([]*equvar.Equ, 0, mEst),
		Vars:        make([]*equvar.Var, 0, nEst),
		EquVarEvals: make(map[int][]EvalPair),
	}
}

// NewNamed is New, but additionally enables the named add_var/add_equation
// variants and their by-name lookups (spec §6.1's "named variants").
func NewNamed(mEst, nEst int) *Container {
	c := New(mEst, nEst)
	c.named = true
	c.varNames = make(map[string]rid.Idx)
	c.equNames = make(map[string]rid.Idx)
	return c
}

// Borrow claims the container's single working-buffer slot. Calling it
// while already borrowed is a programming error (spec §5); it returns
// an Inconsistency error rather than silently racing, since the core is
// single-threaded and a double-borrow can only be a caller bug.
func (c *Container) Borrow() error {
	if c.borrowed {
		return rherr.E(rherr.Inconsistency, "ctr.Borrow", "workspace buffer is already borrowed")
	}
	c.borrowed = true
	return nil
}

// Release returns the working-buffer slot.
func (c *Container) Release() { c.borrowed = false }

// ReserveVars ensures the container can hold at least n variables
// without reallocating Vars (spec §6.1 "mdl_reserve_vars"). A
// reservation below the variable count already in use is rejected
// rather than silently ignored (spec §7 "SizeTooSmall — a reservation
// was insufficient").
func (c *Container) ReserveVars(n int) error {
	if n < c.TotalN {
		return rherr.E(rherr.SizeTooSmall, "ctr.ReserveVars", "reservation %d is below the %d variables already in use", n, c.TotalN)
	}
	if cap(c.Vars) >= n {
		return nil
	}
	grown := make([]*equvar.Var, len(c.Vars), n)
	copy(grown, c.Vars)
	c.Vars = grown
	if n > c.MaxN {
		c.MaxN = n
	}
	return nil
}

// ReserveEqus is ReserveVars' equation-space analogue (spec §6.1
// "mdl_reserve_equs").
func (c *Container) ReserveEqus(n int) error {
	if n < c.TotalM {
		return rherr.E(rherr.SizeTooSmall, "ctr.ReserveEqus", "reservation %d is below the %d equations already in use", n, c.TotalM)
	}
	if cap(c.Equs) >= n {
		return nil
	}
	grown := make([]*equvar.Equ, len(c.Equs), n)
	copy(grown, c.Equs)
	c.Equs = grown
	if n > c.MaxM {
		c.MaxM = n
	}
	return nil
}

// AddVar creates one fresh continuous variable over [lb, ub] and returns
// its index (spec §6.1 "add_var").
func (c *Container) AddVar(lb, ub float64) (rid.Idx, error) {
	idx := rid.Idx(c.TotalN)
	v := equvar.NewVar(idx, lb, ub)
	c.Vars = append(c.Vars, v)
	c.TotalN++
	c.N++
	return idx, nil
}

// AddVars creates n fresh continuous variables over [lb, ub] (spec §6.1
// "add_vars(n)").
func (c *Container) AddVars(n int, lb, ub float64) ([]rid.Idx, error) {
	if n < 0 {
		return nil, rherr.E(rherr.InvalidArgument, "ctr.AddVars", "n must be >= 0, got %d", n)
	}
	out := make([]rid.Idx, n)
	for i := 0; i < n; i++ {
		idx, err := c.AddVar(lb, ub)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// AddPosVars creates n variables in [0, +Inf) (spec §6.1 "add_posvars").
func (c *Container) AddPosVars(n int) ([]rid.Idx, error) {
	return c.AddVars(n, 0, math.Inf(1))
}

// AddNegVars creates n variables in (-Inf, 0] (spec §6.1 "add_negvars").
func (c *Container) AddNegVars(n int) ([]rid.Idx, error) {
	return c.AddVars(n, math.Inf(-1), 0)
}

// AddVarsInBox creates n variables sharing one [lb, ub] box (spec §6.1
// "add_varsinbox").
func (c *Container) AddVarsInBox(n int, lb, ub float64) ([]rid.Idx, error) {
	return c.AddVars(n, lb, ub)
}

// AddVarsInBoxes creates len(lbs) variables, each with its own bounds
// (spec §6.1 "add_varsinboxes").
func (c *Container) AddVarsInBoxes(lbs, ubs []float64) ([]rid.Idx, error) {
	if len(lbs) != len(ubs) {
		return nil, rherr.E(rherr.InvalidArgument, "ctr.AddVarsInBoxes", "|lbs|=%d != |ubs|=%d", len(lbs), len(ubs))
	}
	out := make([]rid.Idx, len(lbs))
	for i := range lbs {
		idx, err := c.AddVar(lbs[i], ubs[i])
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// AddEquation creates one fresh equation of the given object type and
// cone (spec §6.1 "add_equation"/"add_con").
func (c *Container) AddEquation(obj equvar.ObjType, cone equvar.Cone) (rid.Idx, error) {
	idx := rid.Idx(c.TotalM)
	e := equvar.NewEqu(idx, obj, cone)
	c.Equs = append(c.Equs, e)
	c.growStageBookkeeping()
	c.TotalM++
	c.M++
	return idx, nil
}

// AddEquations creates n fresh Mapping equations in cone R (spec §6.1
// "add_equations(n)").
func (c *Container) AddEquations(n int) ([]rid.Idx, error) {
	out := make([]rid.Idx, n)
	for i := 0; i < n; i++ {
		idx, err := c.AddEquation(equvar.Mapping, equvar.ConeR)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// AddCon creates one constraint equation lying in the given cone (spec
// §6.1 "add_con(cone)").
func (c *Container) AddCon(cone equvar.Cone) (rid.Idx, error) {
	return c.AddEquation(equvar.ConeInclusion, cone)
}

// AddCons creates n constraint equations sharing one cone (spec §6.1
// "add_cons(n, cone)").
func (c *Container) AddCons(n int, cone equvar.Cone) ([]rid.Idx, error) {
	out := make([]rid.Idx, n)
	for i := 0; i < n; i++ {
		idx, err := c.AddCon(cone)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

func (c *Container) growStageBookkeeping() {
	for len(c.EquStage) < len(c.Equs) {
		c.EquStage = append(c.EquStage, c.CurrentStage)
		c.EquRosetta = append(c.EquRosetta, rosetta.Identity(rid.Idx(len(c.EquStage)-1)))
	}
}

// IsVarValid reports whether vi names a live, undeleted variable (spec
// §6.1 "is_var_valid").
func (c *Container) IsVarValid(vi rid.Idx) bool {
	if int(vi) < 0 || int(vi) >= len(c.Vars) {
		return false
	}
	v := c.Vars[vi]
	return v != nil && !v.Deleted
}

// IsEquValid reports whether ei names a live, undeleted equation (spec
// §6.1 "is_equ_valid").
func (c *Container) IsEquValid(ei rid.Idx) bool {
	if int(ei) < 0 || int(ei) >= len(c.Equs) {
		return false
	}
	e := c.Equs[ei]
	return e != nil && !e.Deleted
}

// Equ returns the equation record for ei, validating the index first.
func (c *Container) Equ(ei rid.Idx) (*equvar.Equ, error) {
	if !c.IsEquValid(ei) {
		return nil, rherr.E(rherr.IndexOutOfRange, "ctr.Equ", "equation %s is not a valid, live index", ei)
	}
	return c.Equs[ei], nil
}

// Var returns the variable record for vi, validating the index first.
func (c *Container) Var(vi rid.Idx) (*equvar.Var, error) {
	if !c.IsVarValid(vi) {
		return nil, rherr.E(rherr.IndexOutOfRange, "ctr.Var", "variable %s is not a valid, live index", vi)
	}
	return c.Vars[vi], nil
}

// DeleteVar marks vi deleted; deleting an already-deleted variable is
// refused (spec §6.1 "delete_* refuses to delete twice").
func (c *Container) DeleteVar(vi rid.Idx) error {
	v, err := c.Var(vi)
	if err != nil {
		return err
	}
	v.Deleted = true
	c.N--
	return nil
}

// DeleteEqu marks ei deleted and unlinks its CMat row (spec §6.1
// "delete_equ").
func (c *Container) DeleteEqu(ei rid.Idx) error {
	e, err := c.Equ(ei)
	if err != nil {
		return err
	}
	if err := c.CMat.RmEqu(ei); err != nil {
		return err
	}
	e.Deleted = true
	c.M--
	return nil
}

// avarSlice materializes an avar.Set as a plain index slice; a small
// local helper so edit.go doesn't repeat the Each-based loop everywhere.
func avarSlice(v *avar.Set) []rid.Idx { return v.Slice() }
