// Package cmat implements the container matrix of spec.md §3.5/§4.3: a
// doubly-linked sparse equation/variable incidence structure, allocated
// from a per-container arena and never individually freed — column-list
// edits rewire pointers but never reclaim memory.
package cmat

import (
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// Type tags what a cell represents (spec §3.5).
type Type int

const (
	Lin Type = iota
	Quad
	NL
	CstEqu  // placeholder for a constant equation
	ObjVar  // placeholder for an unattached objective variable
	VarPerp // isolated variable perpendicular to an equation
)

func (t Type) String() string {
	switch t {
	case Lin:
		return "Lin"
	case Quad:
		return "Quad"
	case NL:
		return "NL"
	case CstEqu:
		return "CstEqu"
	case ObjVar:
		return "ObjVar"
	case VarPerp:
		return "VarPerp"
	default:
		return "Type(?)"
	}
}

// Cell is one (equation, variable) incidence, or a typed placeholder
// (spec §3.5). Value is tri-state rather than relying on a
// signalling-NaN sentinel (spec §9 design note): ValueSet is false for a
// purely nonlinear cell that carries no Jacobian coefficient yet.
type Cell struct {
	Ei, Vi   rid.Idx
	Value    float64
	ValueSet bool
	Type     Type

	NextVar  *Cell // next cell in the same equation's row
	NextEqu  *Cell // next cell in the same variable's column
	PrevEqu  *Cell // previous cell in the same variable's column
}

// CMat is one container's incidence structure.
type CMat struct {
	equs        []*Cell // row heads, indexed by ei
	vars        []*Cell // column heads, indexed by vi
	lastEqu     []*Cell // column tails, indexed by vi
	deletedEqus []*Cell // retained row heads of removed equations

	activeVars int
	arenaSize  int
}

// New returns an empty CMat reserved for mEst equations and nEst variables.
func New(mEst, nEst int) *CMat {
	return &CMat{
		equs:    make([]*Cell, 0, mEst),
		vars:    make([]*Cell, 0, nEst),
		lastEqu: make([]*Cell, 0, nEst),
	}
}

func (c *CMat) ensureEqu(ei rid.Idx) {
	for rid.Idx(len(c.equs)) <= ei {
		c.equs = append(c.equs, nil)
		c.deletedEqus = append(c.deletedEqus, nil)
	}
}

func (c *CMat) ensureVar(vi rid.Idx) {
	for rid.Idx(len(c.vars)) <= vi {
		c.vars = append(c.vars, nil)
		c.lastEqu = append(c.lastEqu, nil)
	}
}

// RowHead returns the head cell of ei's row (nil if empty/unset).
func (c *CMat) RowHead(ei rid.Idx) *Cell {
	if int(ei) >= len(c.equs) {
		return nil
	}
	return c.equs[ei]
}

// SetRowHead sets ei's row head directly; used by row construction and
// linking once the first cell of a row has been allocated.
func (c *CMat) SetRowHead(ei rid.Idx, cell *Cell) {
	c.ensureEqu(ei)
	c.equs[ei] = cell
}

// ColHead returns the head cell of vi's column (nil if empty/unset).
func (c *CMat) ColHead(vi rid.Idx) *Cell {
	if int(vi) >= len(c.vars) {
		return nil
	}
	return c.vars[vi]
}

// ActiveVars is the number of variables with a non-empty column.
func (c *CMat) ActiveVars() int { return c.activeVars }

// DeletedRow returns the retained row head of a removed equation, for
// read-only use by the deferred-evaluation subsystem.
func (c *CMat) DeletedRow(ei rid.Idx) *Cell {
	if int(ei) >= len(c.deletedEqus) {
		return nil
	}
	return c.deletedEqus[ei]
}

// NewCell allocates and links a cell into vi's column per spec §4.3
// "Insertion of a single cell". Row linking (next_var) is the caller's
// responsibility.
func (c *CMat) NewCell(ei, vi rid.Idx, typ Type, val float64, valSet bool) *Cell {
	c.ensureEqu(ei)
	c.ensureVar(vi)
	cell := &Cell{Ei: ei, Vi: vi, Value: val, ValueSet: valSet, Type: typ}
	c.arenaSize++

	switch {
	case c.vars[vi] == nil:
		c.activeVars++
		c.vars[vi] = cell
	case c.lastEqu[vi] == nil:
		// prior head was a placeholder; replace without relinking.
		c.vars[vi] = cell
	default:
		cell.PrevEqu = c.lastEqu[vi]
		c.lastEqu[vi].NextEqu = cell
	}
	c.lastEqu[vi] = cell
	return cell
}

// FillEqu creates one cell per variable in v, in order, linking them via
// NextVar (spec §4.3 "Row construction"). ei must not already have a row.
func (c *CMat) FillEqu(ei rid.Idx, vis []rid.Idx, vals []float64, valSets, nlFlags []bool) error {
	c.ensureEqu(ei)
	if c.equs[ei] != nil {
		return rherr.E(rherr.Inconsistency, "cmat.FillEqu", "equation %s already has a row", ei)
	}
	var head, tail *Cell
	for i, vi := range vis {
		if !rid.Valid(vi) {
			return rherr.E(rherr.InvalidArgument, "cmat.FillEqu", "variable %s is not valid", vi)
		}
		typ := Lin
		if nlFlags != nil && nlFlags[i] {
			typ = NL
		}
		cell := c.NewCell(ei, vi, typ, vals[i], valSets == nil || valSets[i])
		if head == nil {
			head = cell
		} else {
			tail.NextVar = cell
		}
		tail = cell
	}
	c.equs[ei] = head
	return nil
}

// EquAddLVar scans ei's row for vi; if present, accumulates val into the
// existing cell and returns its current NL-ness. Otherwise it appends a
// new Lin cell to the row tail (spec §4.3 "Adding a variable to an
// existing row").
func (c *CMat) EquAddLVar(ei, vi rid.Idx, val float64) (isNL bool, err error) {
	c.ensureEqu(ei)
	var tail *Cell
	for cell := c.equs[ei]; cell != nil; cell = cell.NextVar {
		if cell.Vi == vi {
			cell.Value += val
			cell.ValueSet = true
			return cell.Type == NL, nil
		}
		tail = cell
	}
	cell := c.NewCell(ei, vi, Lin, val, true)
	if tail == nil {
		c.equs[ei] = cell
	} else {
		tail.NextVar = cell
	}
	return false, nil
}

// EquAddNLVar scans ei's row for vi. If present and currently Lin or
// Quad, promotes the cell's type to NL (spec §4.3 "Promoting a variable
// to nonlinear"); moving the coefficient out of Lequ and into the
// expression tree is the caller's responsibility (equ_switch_var_nl),
// since CMat owns only incidence, not the algebraic payload.
func (c *CMat) EquAddNLVar(ei, vi rid.Idx, jacVal float64) (promoted bool, err error) {
	c.ensureEqu(ei)
	var tail *Cell
	for cell := c.equs[ei]; cell != nil; cell = cell.NextVar {
		if cell.Vi == vi {
			if cell.Type == Lin || cell.Type == Quad {
				cell.Type = NL
				cell.ValueSet = false
				return true, nil
			}
			return false, nil
		}
		tail = cell
	}
	cell := c.NewCell(ei, vi, NL, jacVal, false)
	if tail == nil {
		c.equs[ei] = cell
	} else {
		tail.NextVar = cell
	}
	return false, nil
}

// RmVar unlinks vi from ei's row and from vi's column (spec §4.3
// "Removing a variable from a row"). If the row becomes empty, the
// caller must replace it with a CstEqu placeholder (if the equation has
// a finite constant) or treat the resulting Inconsistency as fatal; this
// function reports which applies via rowEmpty.
func (c *CMat) RmVar(ei, vi rid.Idx) (rowEmpty, colEmpty bool, err error) {
	c.ensureEqu(ei)
	c.ensureVar(vi)

	var prevRow, target *Cell
	for cell := c.equs[ei]; cell != nil; cell = cell.NextVar {
		if cell.Vi == vi {
			target = cell
			break
		}
		prevRow = cell
	}
	if target == nil {
		return false, false, rherr.E(rherr.NotFound, "cmat.RmVar", "variable %s not found in equation %s's row", vi, ei)
	}
	if prevRow == nil {
		c.equs[ei] = target.NextVar
	} else {
		prevRow.NextVar = target.NextVar
	}

	if target.PrevEqu != nil {
		target.PrevEqu.NextEqu = target.NextEqu
	} else {
		c.vars[vi] = target.NextEqu
	}
	if target.NextEqu != nil {
		target.NextEqu.PrevEqu = target.PrevEqu
	} else {
		c.lastEqu[vi] = target.PrevEqu
	}

	rowEmpty = c.equs[ei] == nil
	colEmpty = c.vars[vi] == nil
	if colEmpty {
		c.activeVars--
	}
	return rowEmpty, colEmpty, nil
}

// SetPlaceholder replaces ei's row with a single typed placeholder cell
// (CstEqu/ObjVar/VarPerp), used once a row becomes empty.
func (c *CMat) SetPlaceholder(ei rid.Idx, typ Type) {
	c.ensureEqu(ei)
	c.equs[ei] = &Cell{Ei: ei, Vi: rid.NA, Type: typ}
}

// RmEqu walks ei's row, unlinking every cell from its column, retains the
// row head for read-only post-solve use, and clears the row (spec §4.3
// "Removing an equation").
func (c *CMat) RmEqu(ei rid.Idx) error {
	c.ensureEqu(ei)
	head := c.equs[ei]
	for cell := head; cell != nil; cell = cell.NextVar {
		if !rid.Valid(cell.Vi) {
			continue // placeholder cell, nothing to unlink
		}
		if cell.PrevEqu != nil {
			cell.PrevEqu.NextEqu = cell.NextEqu
		} else {
			c.ensureVar(cell.Vi)
			c.vars[cell.Vi] = cell.NextEqu
		}
		if cell.NextEqu != nil {
			cell.NextEqu.PrevEqu = cell.PrevEqu
		} else {
			c.ensureVar(cell.Vi)
			c.lastEqu[cell.Vi] = cell.PrevEqu
		}
		if c.vars[cell.Vi] == nil {
			c.activeVars--
		}
	}
	c.deletedEqus[ei] = head
	c.equs[ei] = nil
	return nil
}

// CopyEqu duplicates src's row into dst, preserving type/value/ValueSet.
// dst must currently be empty.
func (c *CMat) CopyEqu(src, dst rid.Idx) error {
	return c.copyEquFn(src, dst, nil, rid.NA)
}

// CopyEquFlipped is CopyEqu but negates every coefficient.
func (c *CMat) CopyEquFlipped(src, dst rid.Idx) error {
	return c.copyEquFn(src, dst, func(v float64) float64 { return -v }, rid.NA)
}

// CopyEquExcept is CopyEqu but omits the cell for vi (if present).
func (c *CMat) CopyEquExcept(src, dst, viSkip rid.Idx) error {
	return c.copyEquFn(src, dst, nil, viSkip)
}

func (c *CMat) copyEquFn(src, dst rid.Idx, transform func(float64) float64, viSkip rid.Idx) error {
	c.ensureEqu(dst)
	if c.equs[dst] != nil {
		return rherr.E(rherr.Inconsistency, "cmat.copyEqu", "destination equation %s is not empty", dst)
	}
	var head, tail *Cell
	for cell := c.RowHead(src); cell != nil; cell = cell.NextVar {
		if rid.Valid(viSkip) && cell.Vi == viSkip {
			continue
		}
		val := cell.Value
		if transform != nil && cell.ValueSet {
			val = transform(cell.Value)
		}
		nc := c.NewCell(dst, cell.Vi, cell.Type, val, cell.ValueSet)
		if head == nil {
			head = nc
		} else {
			tail.NextVar = nc
		}
		tail = nc
	}
	if head == nil {
		c.SetPlaceholder(dst, CstEqu)
	} else {
		c.equs[dst] = head
	}
	return nil
}
