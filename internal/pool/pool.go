// Package pool implements the constant-interning table of spec.md §4.1.
//
// Bytecode constants are dense small integers; interning keeps the
// expression tree's payload compact (a node stores a pool index rather
// than a float) and makes "two nodes reference the same constant"
// comparisons an index equality check. Indices are 1-based: 0 is
// reserved so a zero payload can always mean "no constant" (spec §6.4).
package pool

import (
	"math"

	"github.com/reshop/reshop/internal/rherr"
)

// Pool interns finite float64 constants and hands back a stable 1-based
// index. It may be shared read-only by many readers; growth happens only
// under the container's exclusive-mutation discipline (spec §5).
type Pool struct {
	vals []float64      // vals[idx-1] is the interned value for idx
	byV  map[float64]uint32
}

// New returns an empty pool with room for hint constants.
func New(hint int) *Pool {
	if hint < 0 {
		hint = 0
	}
	return &Pool{
		vals: make([]float64, 0, hint),
		byV:  make(map[float64]uint32, hint),
	}
}

// Get interns val and returns its 1-based index. Equal values (including
// repeated calls with the same val) always yield the same index.
func (p *Pool) Get(val float64) (uint32, error) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, rherr.E(rherr.InvalidValue, "pool.Get", "non-finite constant %v", val)
	}
	if idx, ok := p.byV[val]; ok {
		return idx, nil
	}
	p.vals = append(p.vals, val)
	idx := uint32(len(p.vals))
	p.byV[val] = idx
	return idx, nil
}

// Read returns the constant previously interned at idx.
func (p *Pool) Read(idx uint32) (float64, error) {
	if idx == 0 || int(idx) > len(p.vals) {
		return 0, rherr.E(rherr.IndexOutOfRange, "pool.Read", "pool index %d out of range [1,%d]", idx, len(p.vals))
	}
	return p.vals[idx-1], nil
}

// Len reports how many distinct constants are interned.
func (p *Pool) Len() int { return len(p.vals) }
