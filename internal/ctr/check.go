package ctr

import (
	"github.com/reshop/reshop/internal/cmat"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// CheckExpensive implements spec §4.3 "cmat_chk_expensive": a full
// consistency sweep over the container, meant for test harnesses and
// debug builds rather than the hot edit path. It verifies that:
//   - every live equation's row is reachable forward from RowHead and
//     its cells reference a live variable;
//   - every live variable's column is reachable forward from ColHead
//     (and, where tracked, backward via PrevEqu);
//   - a cell's Type agrees with whether the owning equation's Lequ
//     carries that variable (Lin/Quad) or its tree does (NL);
//   - IsQuad is only set on equations that actually have nonlinear
//     content.
//
// It returns the first Inconsistency found, wrapped with enough context
// to locate it; a nil return means the container passed every check.
func (c *Container) CheckExpensive() error {
	for vi, v := range c.Vars {
		if v == nil || v.Deleted {
			continue
		}
		seen := map[rid.Idx]bool{}
		for cell := c.CMat.ColHead(rid.Idx(vi)); cell != nil; cell = cell.NextEqu {
			if seen[cell.Ei] {
				return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "variable %s's column cycles back to equation %s", rid.Idx(vi), cell.Ei)
			}
			seen[cell.Ei] = true
			if !c.IsEquValid(cell.Ei) {
				return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "variable %s's column references deleted equation %s", rid.Idx(vi), cell.Ei)
			}
			if cell.PrevEqu != nil && cell.PrevEqu.NextEqu != cell {
				return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "variable %s's column back-link is broken at equation %s", rid.Idx(vi), cell.Ei)
			}
		}
	}

	for ei, e := range c.Equs {
		if e == nil || e.Deleted {
			continue
		}
		seen := map[rid.Idx]bool{}
		hasNL := false
		for cell := c.CMat.RowHead(rid.Idx(ei)); cell != nil; cell = cell.NextVar {
			if seen[cell.Vi] {
				return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "equation %s's row repeats variable %s", rid.Idx(ei), cell.Vi)
			}
			seen[cell.Vi] = true
			if !c.IsVarValid(cell.Vi) {
				return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "equation %s's row references deleted variable %s", rid.Idx(ei), cell.Vi)
			}
			switch cell.Type {
			case cmat.NL:
				hasNL = true
				if !e.HasTree() || !e.Tree.HasVar(cell.Vi) {
					return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "equation %s cell for variable %s is marked NL but the tree doesn't reference it", rid.Idx(ei), cell.Vi)
				}
			case cmat.Lin, cmat.Quad:
				if e.Lequ.Find(cell.Vi) < 0 {
					return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "equation %s cell for variable %s is marked %s but Lequ doesn't carry it", rid.Idx(ei), cell.Vi, cell.Type)
				}
			}
		}
		if e.IsQuad && !hasNL {
			return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "equation %s is flagged IsQuad but has no NL incidence", rid.Idx(ei))
		}
		for i := 0; i < e.Lequ.Len(); i++ {
			vi, _ := e.Lequ.At(i)
			if !seen[vi] {
				return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "equation %s's Lequ references variable %s with no matching CMat cell", rid.Idx(ei), vi)
			}
		}
		if e.HasTree() {
			for _, vi := range e.Tree.VList() {
				if !seen[vi] {
					return rherr.E(rherr.Inconsistency, "ctr.CheckExpensive", "equation %s's tree references variable %s with no matching CMat cell", rid.Idx(ei), vi)
				}
			}
		}
	}
	return nil
}
