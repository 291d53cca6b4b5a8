package ctr

import (
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/fops"
	"github.com/reshop/reshop/internal/nltree"
	"github.com/reshop/reshop/internal/rid"
	"github.com/reshop/reshop/internal/rosetta"
)

// isVacuous reports whether ei — already decided by f to be dropped —
// is consistent with being dropped: either already deleted, or an
// empty mapping (no linear terms, no tree) whose constant trivially
// satisfies its cone (spec §4.6 compress_equs' isVacuousOK consultation).
func (c *Container) isVacuous(ei rid.Idx) (bool, error) {
	if !c.IsEquValid(ei) {
		return true, nil
	}
	e, err := c.Equ(ei)
	if err != nil {
		return false, err
	}
	if e.Lequ.Len() > 0 || e.HasTree() {
		return false, nil
	}
	switch e.Cone {
	case equvar.ConeR:
		return true, nil
	case equvar.ConeRPlus:
		return e.Cst >= 0, nil
	case equvar.ConeRMinus:
		return e.Cst <= 0, nil
	case equvar.ConeZero:
		return e.Cst == 0, nil
	default:
		return false, nil
	}
}

func allIdx(n int) []rid.Idx {
	out := make([]rid.Idx, n)
	for i := range out {
		out[i] = rid.Idx(i)
	}
	return out
}

// rebuildCMat replays every kept equation's Lequ/Tree content through
// the ordinary incidence-building calls, reusing cmat's own
// accumulate-or-append semantics rather than poking at its internals
// directly.
func (c *Container) rebuildCMat() error {
	for _, e := range c.Equs {
		for i := 0; i < e.Lequ.Len(); i++ {
			vi, val := e.Lequ.At(i)
			if _, err := c.CMat.EquAddLVar(e.Idx, vi, val); err != nil {
				return err
			}
		}
		if e.HasTree() {
			for _, vi := range e.Tree.VList() {
				if _, err := c.CMat.EquAddNLVar(e.Idx, vi, 0); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Compress implements spec §4.6 "compress_vars"/"compress_equs": builds
// a fresh container holding only what f keeps, with every surviving
// index translated through the resulting rosetta. Per §9's decided Open
// Question, the new container owns deep copies of everything it keeps
// rather than sharing storage with c; c itself only records, in
// EquRosetta, what became of each of its equations.
func (c *Container) Compress(f fops.Fops) (*Container, error) {
	rosettaVars, revVars, _, err := rosetta.CompressVars(c.TotalN, f.KeepVar, f.VarsPermutation)
	if err != nil {
		return nil, err
	}
	rosettaEqus, revEqus, err := rosetta.CompressEqus(c.TotalM, f.KeepEqu, c.isVacuous, nil)
	if err != nil {
		return nil, err
	}

	nNew, mNew := len(revVars), len(revEqus)
	out := New(mNew, nNew)

	for dst, src := range revVars {
		sv, err := c.Var(src)
		if err != nil {
			return nil, err
		}
		nv := equvar.NewVar(rid.Idx(dst), sv.Lb, sv.Ub)
		nv.Basis = sv.Basis
		nv.Type = sv.Type
		nv.Level = sv.Level
		nv.Multiplier = sv.Multiplier
		nv.Conic = sv.Conic
		nv.SOSWeights = append([]float64(nil), sv.SOSWeights...)
		out.Vars = append(out.Vars, nv)
	}
	out.TotalN = nNew
	out.N = nNew
	out.VarInherited = &Inherited{CurrentIdx: allIdx(nNew), SourceIdx: revVars}

	for dst, src := range revEqus {
		se, err := c.Equ(src)
		if err != nil {
			return nil, err
		}
		ne := equvar.NewEqu(rid.Idx(dst), se.Obj, se.Cone)
		ne.Basis = se.Basis
		ne.IsQuad = se.IsQuad
		ne.Cst = se.Cst
		ne.ConeParams = append([]float64(nil), se.ConeParams...)
		ne.Level = se.Level
		ne.Multiplier = se.Multiplier

		lin := se.Lequ.Clone()
		if err := lin.ApplyRosetta(rosettaVars); err != nil {
			return nil, err
		}
		ne.Lequ = lin

		if se.HasTree() {
			ne.Tree = nltree.Bootstrap(se.Tree.NodeCount(), 2)
			ne.Tree.EquIdx = rid.Idx(dst)
			if err := nltree.AddNlExpr(ne.Tree, nltree.RootAddr(ne.Tree), out.Pool, c.Pool, se.Tree.Root, 1); err != nil {
				return nil, err
			}
			if err := ne.Tree.ApplyRosetta(rosettaVars); err != nil {
				return nil, err
			}
		}
		out.Equs = append(out.Equs, ne)
	}
	out.TotalM = mNew
	out.M = mNew
	out.EquInherited = &Inherited{CurrentIdx: allIdx(mNew), SourceIdx: revEqus}
	out.growStageBookkeeping()

	if err := out.rebuildCMat(); err != nil {
		return nil, err
	}

	c.EquRosetta = rosettaEqus
	return out, nil
}
