// Package lequ implements the linear part of an equation (spec.md §3.3):
// a sparse vector stored as parallel (variable, coefficient) arrays.
package lequ

import (
	"math"

	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// Lequ is a sparse linear combination of variables. Order carries no
// semantic meaning; Delete swaps with the last element for O(1) removal.
type Lequ struct {
	vis    []rid.Idx
	coeffs []float64
}

// New returns an empty Lequ with room for hint terms.
func New(hint int) *Lequ {
	return &Lequ{vis: make([]rid.Idx, 0, hint), coeffs: make([]float64, 0, hint)}
}

// Len reports the number of terms.
func (l *Lequ) Len() int { return len(l.vis) }

// At returns the i'th (variable, coefficient) pair.
func (l *Lequ) At(i int) (rid.Idx, float64) { return l.vis[i], l.coeffs[i] }

// Vars returns the variable indices in storage order (borrowed, do not mutate).
func (l *Lequ) Vars() []rid.Idx { return l.vis }

// Coeffs returns the coefficients in storage order (borrowed, do not mutate).
func (l *Lequ) Coeffs() []float64 { return l.coeffs }

// Find returns the storage position of vi, or -1 if absent. O(n).
func (l *Lequ) Find(vi rid.Idx) int {
	for i, v := range l.vis {
		if v == vi {
			return i
		}
	}
	return -1
}

// Add appends (vi, coeff) without checking for a prior occurrence of vi.
func (l *Lequ) Add(vi rid.Idx, coeff float64) error {
	if !rid.Valid(vi) {
		return rherr.E(rherr.IndexOutOfRange, "lequ.Add", "invalid variable index %s", vi)
	}
	if math.IsNaN(coeff) || math.IsInf(coeff, 0) {
		return rherr.E(rherr.InvalidValue, "lequ.Add", "non-finite coefficient %v for var %s", coeff, vi)
	}
	l.vis = append(l.vis, vi)
	l.coeffs = append(l.coeffs, coeff)
	return nil
}

// AddUnique appends (vi, coeff), rejecting a variable already present.
func (l *Lequ) AddUnique(vi rid.Idx, coeff float64) error {
	if l.Find(vi) >= 0 {
		return rherr.E(rherr.DuplicateValue, "lequ.AddUnique", "variable %s already present", vi)
	}
	return l.Add(vi, coeff)
}

// SetCoeff overwrites the coefficient at storage position pos.
func (l *Lequ) SetCoeff(pos int, coeff float64) error {
	if pos < 0 || pos >= len(l.vis) {
		return rherr.E(rherr.IndexOutOfRange, "lequ.SetCoeff", "position %d out of range [0,%d)", pos, len(l.vis))
	}
	if math.IsNaN(coeff) || math.IsInf(coeff, 0) {
		return rherr.E(rherr.InvalidValue, "lequ.SetCoeff", "non-finite coefficient %v", coeff)
	}
	l.coeffs[pos] = coeff
	return nil
}

// Delete removes the term at storage position pos by swapping with the
// last element; O(1), order is not preserved.
func (l *Lequ) Delete(pos int) error {
	n := len(l.vis)
	if pos < 0 || pos >= n {
		return rherr.E(rherr.IndexOutOfRange, "lequ.Delete", "position %d out of range [0,%d)", pos, n)
	}
	last := n - 1
	l.vis[pos] = l.vis[last]
	l.coeffs[pos] = l.coeffs[last]
	l.vis = l.vis[:last]
	l.coeffs = l.coeffs[:last]
	return nil
}

// Scale multiplies every coefficient by c.
func (l *Lequ) Scale(c float64) error {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return rherr.E(rherr.InvalidValue, "lequ.Scale", "non-finite scale factor %v", c)
	}
	for i := range l.coeffs {
		l.coeffs[i] *= c
	}
	return nil
}

// Clone returns a deep copy.
func (l *Lequ) Clone() *Lequ {
	out := &Lequ{vis: make([]rid.Idx, len(l.vis)), coeffs: make([]float64, len(l.coeffs))}
	copy(out.vis, l.vis)
	copy(out.coeffs, l.coeffs)
	return out
}

// CloneFlipped returns a deep copy with every coefficient negated.
func (l *Lequ) CloneFlipped() *Lequ {
	out := l.Clone()
	for i := range out.coeffs {
		out.coeffs[i] = -out.coeffs[i]
	}
	return out
}

// CloneExcept returns a deep copy omitting the term for variable skip, if any.
func (l *Lequ) CloneExcept(skip rid.Idx) *Lequ {
	out := New(len(l.vis))
	for i, vi := range l.vis {
		if vi == skip {
			continue
		}
		_ = out.Add(vi, l.coeffs[i])
	}
	return out
}

// ApplyRosetta replaces every variable index vi by rosetta[vi] in place.
// A missing entry, or a non-valid destination such as rid.Deleted, for a
// present variable is reported as an Inconsistency error.
func (l *Lequ) ApplyRosetta(rosetta []rid.Idx) error {
	for i, vi := range l.vis {
		if int(vi) >= len(rosetta) {
			return rherr.E(rherr.Inconsistency, "lequ.ApplyRosetta", "variable %s has no rosetta entry", vi)
		}
		nv := rosetta[vi]
		if !rid.Valid(nv) {
			return rherr.E(rherr.Inconsistency, "lequ.ApplyRosetta", "variable %s maps to non-valid index %s", vi, nv)
		}
		l.vis[i] = nv
	}
	return nil
}
