// Package fops implements the filter-ops sum type of spec.md §4.5: a
// small family of predicates over equation/variable indices, used to
// decide what survives compression and how bytecode referencing a
// filtered-out variable gets rewritten to a constant.
package fops

import (
	"github.com/reshop/reshop/internal/bytecode"
	"github.com/reshop/reshop/internal/cmat"
	"github.com/reshop/reshop/internal/pool"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// Fops is the common interface every filter-ops variant implements
// (spec §4.5 "Required operations of every fops"; spec §9's "sum type
// ... with a single trait-like interface").
type Fops interface {
	KeepVar(vi rid.Idx) bool
	KeepEqu(ei rid.Idx) bool
	Sizes() (nActive, mActive int)
	TransformGamsOpcode(ei rid.Idx, instrs bytecode.Stream, rosettaVars []rid.Idx, newEquIdx rid.Idx) (bytecode.Stream, error)
	// VarsPermutation overrides the default compaction order for vi, if
	// this fops variant defines one. ok is false when it does not.
	VarsPermutation(vi rid.Idx) (dst rid.Idx, ok bool)
}

// RewriteStream rewrites instrs' variable operands through rosettaVars
// (spec §4.5 "transform_gamsopcode"): a kept variable's nlPushV/fused-V
// argument is translated to its new index; a filtered-out variable's
// operand is rewritten to push the constant named by placeholderOf
// instead. Every nlStore's argument is set to newEquIdx+1.
func RewriteStream(instrs bytecode.Stream, rosettaVars []rid.Idx, newEquIdx rid.Idx, placeholderOf func(vi rid.Idx) (uint32, bool)) (bytecode.Stream, error) {
	out := make(bytecode.Stream, len(instrs))
	for i, instr := range instrs {
		out[i] = instr
		switch instr.Op {
		case bytecode.NlStore:
			out[i].Arg = int32(newEquIdx) + 1
		case bytecode.NlPushV:
			if err := rewriteVarArg(&out[i], rosettaVars, placeholderOf, bytecode.NlPushI); err != nil {
				return nil, err
			}
		case bytecode.NlUMinV:
			// A filtered-out operand here has no single-instruction constant
			// form (nlUMinV has no "push negated constant" counterpart); the
			// caller must have already folded such equations' values before
			// reaching this rewrite.
			if err := rewriteVarArgNoConst(&out[i], rosettaVars); err != nil {
				return nil, err
			}
		case bytecode.NlAddV, bytecode.NlSubV, bytecode.NlMulV, bytecode.NlDivV:
			if err := rewriteVarArg(&out[i], rosettaVars, placeholderOf, fusedToConst(instr.Op)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func rewriteVarArgNoConst(instr *bytecode.Instr, rosettaVars []rid.Idx) error {
	vi := rid.Idx(instr.Arg - 1)
	if int(vi) >= len(rosettaVars) {
		return rherr.E(rherr.IndexOutOfRange, "fops.RewriteStream", "variable %s has no rosetta entry", vi)
	}
	nv := rosettaVars[vi]
	if !rid.Valid(nv) {
		return rherr.E(rherr.Inconsistency, "fops.RewriteStream", "nlUMinV operand %s was filtered out and has no constant-folded form", vi)
	}
	instr.Arg = int32(nv) + 1
	return nil
}

func fusedToConst(op bytecode.GamsOp) bytecode.GamsOp {
	switch op {
	case bytecode.NlAddV:
		return bytecode.NlAddI
	case bytecode.NlSubV:
		return bytecode.NlSubI
	case bytecode.NlMulV:
		return bytecode.NlMulI
	default:
		return bytecode.NlDivI
	}
}

func rewriteVarArg(instr *bytecode.Instr, rosettaVars []rid.Idx, placeholderOf func(rid.Idx) (uint32, bool), constForm bytecode.GamsOp) error {
	vi := rid.Idx(instr.Arg - 1)
	if int(vi) >= len(rosettaVars) {
		return rherr.E(rherr.IndexOutOfRange, "fops.RewriteStream", "variable %s has no rosetta entry", vi)
	}
	nv := rosettaVars[vi]
	if rid.Valid(nv) {
		instr.Arg = int32(nv) + 1
		return nil
	}
	if placeholderOf == nil {
		return rherr.E(rherr.Inconsistency, "fops.RewriteStream", "variable %s was filtered out but this fops has no placeholder table", vi)
	}
	poolIdx, ok := placeholderOf(vi)
	if !ok {
		return rherr.E(rherr.Inconsistency, "fops.RewriteStream", "variable %s has no placeholder pool entry", vi)
	}
	instr.Op = constForm
	instr.Arg = int32(poolIdx)
	return nil
}

// Empty passes everything through unchanged.
type Empty struct {
	N, M int
}

func (Empty) KeepVar(rid.Idx) bool { return true }
func (Empty) KeepEqu(rid.Idx) bool { return true }
func (e Empty) Sizes() (int, int)  { return e.N, e.M }
func (Empty) TransformGamsOpcode(ei rid.Idx, instrs bytecode.Stream, rosettaVars []rid.Idx, newEquIdx rid.Idx) (bytecode.Stream, error) {
	return RewriteStream(instrs, rosettaVars, newEquIdx, nil)
}
func (Empty) VarsPermutation(rid.Idx) (rid.Idx, bool) { return rid.Invalid, false }

// Active keeps entries whose CMat row/column is non-null, minus an
// auxiliary set of explicitly deactivated indices.
type Active struct {
	Src         *cmat.CMat
	DeactVars   map[rid.Idx]bool
	DeactEqus   map[rid.Idx]bool
}

func (a Active) KeepVar(vi rid.Idx) bool {
	if a.DeactVars != nil && a.DeactVars[vi] {
		return false
	}
	return a.Src.ColHead(vi) != nil
}

func (a Active) KeepEqu(ei rid.Idx) bool {
	if a.DeactEqus != nil && a.DeactEqus[ei] {
		return false
	}
	return a.Src.RowHead(ei) != nil
}

func (a Active) Sizes() (int, int) { return a.Src.ActiveVars(), 0 }

func (a Active) TransformGamsOpcode(ei rid.Idx, instrs bytecode.Stream, rosettaVars []rid.Idx, newEquIdx rid.Idx) (bytecode.Stream, error) {
	return RewriteStream(instrs, rosettaVars, newEquIdx, nil)
}
func (Active) VarsPermutation(rid.Idx) (rid.Idx, bool) { return rid.Invalid, false }

// Subset keeps only entries in both avar/aequ and active in the source,
// and owns a side table mapping filtered-out variables to placeholder
// pool indices carrying their current value (spec §4.5 "Subset").
type Subset struct {
	Src         *cmat.CMat
	Vars, Equs  Membership
	placeholder map[rid.Idx]uint32
}

// Membership abstracts "does this index belong to the allowed set" so
// Subset does not need to import internal/avar directly (an avar.Set's
// Contains method satisfies this).
type Membership interface {
	Contains(rid.Idx) bool
	Size() int
}

// NewSubset builds a Subset fops with an empty placeholder table. The
// current values of variables that end up outside vars are interned
// later, into the pool passed to RegisterPlaceholder.
func NewSubset(src *cmat.CMat, vars, equs Membership) *Subset {
	return &Subset{Src: src, Vars: vars, Equs: equs, placeholder: make(map[rid.Idx]uint32)}
}

func (s *Subset) KeepVar(vi rid.Idx) bool {
	return s.Vars.Contains(vi) && s.Src.ColHead(vi) != nil
}

func (s *Subset) KeepEqu(ei rid.Idx) bool {
	return s.Equs.Contains(ei) && s.Src.RowHead(ei) != nil
}

func (s *Subset) Sizes() (int, int) { return s.Vars.Size(), s.Equs.Size() }

// RegisterPlaceholder records that a variable outside the subset should
// be rewritten to the given pool index when bytecode references it
// (spec §4.5: "a side-table mapping variables not in the subset to
// placeholder pool indices").
func (s *Subset) RegisterPlaceholder(vi rid.Idx, p *pool.Pool, currentValue float64) error {
	idx, err := p.Get(currentValue)
	if err != nil {
		return err
	}
	s.placeholder[vi] = idx
	return nil
}

func (s *Subset) TransformGamsOpcode(ei rid.Idx, instrs bytecode.Stream, rosettaVars []rid.Idx, newEquIdx rid.Idx) (bytecode.Stream, error) {
	return RewriteStream(instrs, rosettaVars, newEquIdx, func(vi rid.Idx) (uint32, bool) {
		idx, ok := s.placeholder[vi]
		return idx, ok
	})
}
func (*Subset) VarsPermutation(rid.Idx) (rid.Idx, bool) { return rid.Invalid, false }

// EmpDagSubDag derives from a Subset by restricting further to the
// equations/variables reachable by a depth-first traversal of an
// EMPDAG sub-hierarchy, optionally composing with a parent fops (spec
// §4.5 "EmpDagSubDag"). members is the traversal's membership test,
// produced by the caller's own EMPDAG walk.
type EmpDagSubDag struct {
	*Subset
	Members Membership
	Parent  Fops // optional; nil means no further restriction
}

func (e *EmpDagSubDag) KeepVar(vi rid.Idx) bool {
	if !e.Subset.KeepVar(vi) || !e.Members.Contains(vi) {
		return false
	}
	return e.Parent == nil || e.Parent.KeepVar(vi)
}

func (e *EmpDagSubDag) KeepEqu(ei rid.Idx) bool {
	if !e.Subset.KeepEqu(ei) || !e.Members.Contains(ei) {
		return false
	}
	return e.Parent == nil || e.Parent.KeepEqu(ei)
}

// EmpDagSingleMp keeps only equations (and their incident variables)
// belonging to one math-program id (spec §4.5 "EmpDagSingleMp / Nash").
type EmpDagSingleMp struct {
	Src      *cmat.CMat
	EquMP    func(rid.Idx) (int, bool) // equation -> owning MP id
	VarMP    func(rid.Idx) (int, bool)
	MPId     int
}

func (m EmpDagSingleMp) KeepEqu(ei rid.Idx) bool {
	id, ok := m.EquMP(ei)
	return ok && id == m.MPId && m.Src.RowHead(ei) != nil
}
func (m EmpDagSingleMp) KeepVar(vi rid.Idx) bool {
	id, ok := m.VarMP(vi)
	return ok && id == m.MPId && m.Src.ColHead(vi) != nil
}
func (m EmpDagSingleMp) Sizes() (int, int) { return 0, 0 }
func (m EmpDagSingleMp) TransformGamsOpcode(ei rid.Idx, instrs bytecode.Stream, rosettaVars []rid.Idx, newEquIdx rid.Idx) (bytecode.Stream, error) {
	return RewriteStream(instrs, rosettaVars, newEquIdx, nil)
}
func (EmpDagSingleMp) VarsPermutation(rid.Idx) (rid.Idx, bool) { return rid.Invalid, false }

// Nash is EmpDagSingleMp generalized to a set of math-program ids (spec
// §4.5: "keep only equations ... of a set of math-programs").
type Nash struct {
	Src   *cmat.CMat
	EquMP func(rid.Idx) (int, bool)
	VarMP func(rid.Idx) (int, bool)
	MPIds map[int]bool
}

func (n Nash) KeepEqu(ei rid.Idx) bool {
	id, ok := n.EquMP(ei)
	return ok && n.MPIds[id] && n.Src.RowHead(ei) != nil
}
func (n Nash) KeepVar(vi rid.Idx) bool {
	id, ok := n.VarMP(vi)
	return ok && n.MPIds[id] && n.Src.ColHead(vi) != nil
}
func (n Nash) Sizes() (int, int) { return 0, 0 }
func (n Nash) TransformGamsOpcode(ei rid.Idx, instrs bytecode.Stream, rosettaVars []rid.Idx, newEquIdx rid.Idx) (bytecode.Stream, error) {
	return RewriteStream(instrs, rosettaVars, newEquIdx, nil)
}
func (Nash) VarsPermutation(rid.Idx) (rid.Idx, bool) { return rid.Invalid, false }
