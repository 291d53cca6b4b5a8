package reshop

import (
	"github.com/reshop/reshop/internal/avar"
	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/lequ"
	"github.com/reshop/reshop/internal/rid"
)

// SpMat is a sparse quadratic form, re-exported from internal/ctr so
// callers building AddQuadratic arguments don't need an internal import.
type SpMat = ctr.SpMat

// AddLin adds a linear term sum(vals[i] * v[i]) to ei (spec §6.1
// "equ_addlin").
func (m *Model) AddLin(ei rid.Idx, v *avar.Set, vals []float64) error {
	return m.ctr.AddLin(ei, v, vals)
}

// AddLinCoeff adds coeff*sum(vals[i]*v[i]) to ei (spec §6.1
// "equ_addlincoeff").
func (m *Model) AddLinCoeff(ei rid.Idx, v *avar.Set, vals []float64, coeff float64) error {
	return m.ctr.AddLinCoeff(ei, v, vals, coeff)
}

// AddQuadratic adds the quadratic form of M over v, scaled by coeff, to
// ei's nonlinear part (spec §6.1 "equ_addquadabsolute"). coeff follows
// the 1/2 x^T M x convention: diagonal entries are halved, off-diagonal
// triplet entries enter once at coeff*x. Triplet indices are absolute
// variable indices; no relative-index form is offered.
func (m *Model) AddQuadratic(ei rid.Idx, mat SpMat, v *avar.Set, coeff float64) error {
	return m.ctr.AddQuadratic(ei, mat, v, coeff)
}

// AddBilin adds coeff * v1 . v2 (elementwise dot of two equal-length
// variable sets) to ei (spec §6.1 "equ_addbilin").
func (m *Model) AddBilin(ei rid.Idx, v1, v2 *avar.Set, coeff float64) error {
	return m.ctr.AddBilin(ei, v1, v2, coeff)
}

// AddNewMap treats eiSrc as defining viMap (z = f(x), where z appears
// linearly with coefficient c_z) and adds (coeff / -c_z) * f(x), that is
// eiSrc without its viMap term, into eDst.
func (m *Model) AddNewMap(eDst rid.Idx, eiSrc, viMap rid.Idx, coeff float64) error {
	return m.ctr.AddNewMap(eDst, eiSrc, viMap, coeff)
}

// AddEqu adds coeff*eSrc's full expression (linear and nonlinear) into
// eDst, translating eSrc's variables through rosettaVars.
func (m *Model) AddEqu(eDst, eSrc rid.Idx, coeff float64, rosettaVars []rid.Idx) error {
	return m.ctr.AddEqu(eDst, eSrc, coeff, rosettaVars)
}

// AddMulVEqu adds coeff * vi * eSrc to eDst.
func (m *Model) AddMulVEqu(eDst, eSrc, vi rid.Idx, coeff float64) error {
	return m.ctr.AddMulVEqu(eDst, eSrc, vi, coeff)
}

// Scal multiplies every term of ei by coeff (spec §6.1 implied scaling
// primitive behind the quadratic/bilinear editors).
func (m *Model) Scal(ei rid.Idx, coeff float64) error {
	return m.ctr.Scal(ei, coeff)
}

// Flip negates ei and swaps its cone (ConeRPlus <-> ConeRMinus) into a
// new equation, deletes ei, and returns the new equation's index (spec
// §4.4 "Flip").
func (m *Model) Flip(ei rid.Idx) (rid.Idx, error) {
	return m.ctr.Flip(ei)
}

// DupEqu duplicates ei into a new equation, optionally adding linExtra
// and skipping viSkip's column (spec §4.4 "duplicate and evolve an
// equation across transformation stages").
func (m *Model) DupEqu(ei rid.Idx, linExtra *lequ.Lequ, viSkip rid.Idx) (rid.Idx, error) {
	return m.ctr.DupEqu(ei, linExtra, viSkip)
}
