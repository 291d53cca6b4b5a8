package nltree

import (
	"github.com/reshop/reshop/internal/avar"
	"github.com/reshop/reshop/internal/pool"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// AddCst inserts a constant leaf for c at addr (spec §4.2 add_cst).
func AddCst(t *Tree, addr Addr, p *pool.Pool, c float64) error {
	idx, err := p.Get(c)
	if err != nil {
		return err
	}
	addr.set(t.alloc(newCst(idx)))
	return nil
}

// AddVar inserts a variable leaf for vi at addr, fusing coeff into the
// leaf as a 1-explicit-child Mul when coeff != 1 (spec §4.2 add_var).
func AddVar(t *Tree, addr Addr, p *pool.Pool, vi rid.Idx, coeff float64) error {
	if coeff == 1 {
		addr.set(t.alloc(newVar(vi)))
		t.noteVar(vi)
		return nil
	}
	idx, err := p.Get(coeff)
	if err != nil {
		return err
	}
	m := &Node{Op: Mul, OpArg: ArgCst, Value: idx, Children: []*Node{newVar(vi)}}
	t.alloc(m)
	addr.set(m)
	t.noteVar(vi)
	return nil
}

// MulCst multiplies the subtree at addr by coeff in place (spec §4.2
// mul_cst). coeff == 1 is a no-op; multiplying an already Cst-fused Mul
// node folds the two constants into one rather than nesting.
func MulCst(t *Tree, addr Addr, p *pool.Pool, coeff float64) error {
	if coeff == 1 {
		return nil
	}
	n := addr.get()
	if n == nil {
		return rherr.E(rherr.InvalidArgument, "nltree.MulCst", "addr has no node to scale")
	}
	if n.Op == Mul && n.OpArg == ArgCst {
		old, err := p.Read(n.Value)
		if err != nil {
			return err
		}
		idx, err := p.Get(old * coeff)
		if err != nil {
			return err
		}
		n.Value = idx
		return nil
	}
	idx, err := p.Get(coeff)
	if err != nil {
		return err
	}
	wrapped := &Node{Op: Mul, OpArg: ArgCst, Value: idx, Children: []*Node{n}}
	t.alloc(wrapped)
	addr.set(wrapped)
	return nil
}

// Scal multiplies the whole tree by coeff: wraps the root in a fused Mul
// (or folds into the root's existing Cst-fused multiplier).
func (t *Tree) Scal(p *pool.Pool, coeff float64) error {
	if t.Root == nil || coeff == 1 {
		return nil
	}
	return MulCst(t, RootAddr(t), p, coeff)
}

// AddBilin splices coeff * sum_i(v1[i] * v2[i]) under addr (spec §4.2
// add_bilin). len(v1) must equal len(v2).
func AddBilin(t *Tree, addr Addr, p *pool.Pool, coeff float64, v1, v2 []rid.Idx) error {
	if len(v1) != len(v2) {
		return rherr.E(rherr.InvalidArgument, "nltree.AddBilin", "|v1|=%d != |v2|=%d", len(v1), len(v2))
	}
	if len(v1) == 0 {
		return rherr.E(rherr.RuntimeError, "nltree.AddBilin", "empty variable lists")
	}
	idx, err := p.Get(coeff)
	if err != nil {
		return err
	}
	terms := make([]*Node, len(v1))
	for i := range v1 {
		prod := &Node{Op: Mul, Children: []*Node{newVar(v1[i]), newVar(v2[i])}}
		t.alloc(prod)
		scaled := &Node{Op: Mul, OpArg: ArgCst, Value: idx, Children: []*Node{prod}}
		t.alloc(scaled)
		terms[i] = scaled
		t.noteVar(v1[i])
		t.noteVar(v2[i])
	}
	addr.set(bundle(t, terms))
	return nil
}

// AddSqr splices v*v under addr using the fnsqr Call1 node (spec §4.2 add_sqr).
func AddSqr(t *Tree, addr Addr, v rid.Idx) error {
	n := &Node{Op: Call1, Value: uint32(FnSqr), Children: []*Node{newVar(v)}}
	t.alloc(n)
	addr.set(n)
	t.noteVar(v)
	return nil
}

// AddQuadCOO appends coeff * sum_k(x[k] * v_i[k] * v_j[k]) under addr,
// promoting diagonal entries (i[k] == j[k]) to fnsqr nodes scaled by
// coeff*x[k]/2, consistent with the "coeff encodes 1/2 x^T M x"
// convention (spec §4.2 add_quad_coo, §4.4 add_quadratic).
func AddQuadCOO(t *Tree, addr Addr, p *pool.Pool, ii, jj []rid.Idx, xx []float64, coeff float64) error {
	nnz := len(ii)
	if nnz == 0 || len(jj) != nnz || len(xx) != nnz {
		return rherr.E(rherr.RuntimeError, "nltree.AddQuadCOO", "nnz=0 or mismatched index/value lengths")
	}
	terms := make([]*Node, nnz)
	for k := 0; k < nnz; k++ {
		if ii[k] == jj[k] {
			idx, err := p.Get(coeff * xx[k] / 2)
			if err != nil {
				return err
			}
			sqr := &Node{Op: Call1, Value: uint32(FnSqr), Children: []*Node{newVar(ii[k])}}
			t.alloc(sqr)
			scaled := &Node{Op: Mul, OpArg: ArgCst, Value: idx, Children: []*Node{sqr}}
			t.alloc(scaled)
			terms[k] = scaled
			t.noteVar(ii[k])
		} else {
			idx, err := p.Get(coeff * xx[k])
			if err != nil {
				return err
			}
			prod := &Node{Op: Mul, Children: []*Node{newVar(ii[k]), newVar(jj[k])}}
			t.alloc(prod)
			scaled := &Node{Op: Mul, OpArg: ArgCst, Value: idx, Children: []*Node{prod}}
			t.alloc(scaled)
			terms[k] = scaled
			t.noteVar(ii[k])
			t.noteVar(jj[k])
		}
	}
	addr.set(bundle(t, terms))
	return nil
}

// AddQuadCOORelative is AddQuadCOO with i/j given as positions into row
// and col abstract variable sets rather than absolute indices.
func AddQuadCOORelative(t *Tree, addr Addr, p *pool.Pool, row, col *avar.Set, ii, jj []int, xx []float64, coeff float64) error {
	abs := func(set *avar.Set, rel []int) ([]rid.Idx, error) {
		out := make([]rid.Idx, len(rel))
		for k, pos := range rel {
			v, err := set.Get(pos)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	absI, err := abs(row, ii)
	if err != nil {
		return err
	}
	absJ, err := abs(col, jj)
	if err != nil {
		return err
	}
	return AddQuadCOO(t, addr, p, absI, absJ, xx, coeff)
}

// MulVar wraps the subtree currently at addr in a product with variable
// vi, in place (used by add_mulv_equ, spec §4.4, to turn a copied
// subtree s into vi*s without going through the pool).
func MulVar(t *Tree, addr Addr, vi rid.Idx) error {
	n := addr.get()
	if n == nil {
		return rherr.E(rherr.InvalidArgument, "nltree.MulVar", "addr has no node to multiply")
	}
	wrapped := &Node{Op: Mul, Children: []*Node{n, newVar(vi)}}
	t.alloc(wrapped)
	addr.set(wrapped)
	t.noteVar(vi)
	return nil
}

// Negate implements spec §4.4 flip's tree mechanism: wraps the subtree
// at addr in a Umin node, or unwraps it if it is already one (double
// negation cancels rather than nesting Umin(Umin(x))).
func Negate(t *Tree, addr Addr) error {
	n := addr.get()
	if n == nil {
		return rherr.E(rherr.InvalidArgument, "nltree.Negate", "addr has no node to negate")
	}
	if n.Op == Umin {
		addr.set(n.Children[0])
		return nil
	}
	wrapped := &Node{Op: Umin, Children: []*Node{n}}
	t.alloc(wrapped)
	addr.set(wrapped)
	return nil
}

// bundle wraps terms in a single Add root (collapsing to the sole term
// when there is only one, per check_add).
func bundle(t *Tree, terms []*Node) *Node {
	if len(terms) == 1 {
		return terms[0]
	}
	add := &Node{Op: Add, Children: terms}
	t.alloc(add)
	return checkAdd(add)
}

// AddNlExpr deep-copies src (a node from srcPool's tree, possibly a
// foreign container) into t, scaled by coeff, under addr (spec §4.2
// add_nlexpr). If srcPool != dstPool, constant leaves are re-interned
// into dstPool rather than assumed to share indices.
func AddNlExpr(t *Tree, addr Addr, dstPool, srcPool *pool.Pool, src *Node, coeff float64) error {
	if src == nil {
		return rherr.E(rherr.NullPointer, "nltree.AddNlExpr", "nil source node")
	}
	clone, err := cloneInto(t, dstPool, srcPool, src)
	if err != nil {
		return err
	}
	addr.set(clone)
	if coeff != 1 {
		if err := MulCst(t, addr, dstPool, coeff); err != nil {
			return err
		}
	}
	t.rebuildVList()
	return nil
}

func cloneInto(t *Tree, dstPool, srcPool *pool.Pool, n *Node) (*Node, error) {
	if n == nil {
		return nil, nil
	}
	out := &Node{Op: n.Op, OpArg: n.OpArg, Value: n.Value, PrintNow: n.PrintNow}
	if n.Op == Cst || ((n.OpArg == ArgCst || n.OpArg == ArgFMA) && dstPool != srcPool) {
		v, err := srcPool.Read(n.Value)
		if err != nil {
			return nil, err
		}
		idx, err := dstPool.Get(v)
		if err != nil {
			return nil, err
		}
		out.Value = idx
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cc, err := cloneInto(t, dstPool, srcPool, c)
			if err != nil {
				return nil, err
			}
			out.Children[i] = cc
		}
	}
	t.alloc(out)
	return out, nil
}

// ApplyRosetta replaces every variable leaf's index (explicit Var nodes
// and Add/Mul implicit-Var operands) through rosetta, then rebuilds
// VList (spec §4.2 apply_rosetta).
func (t *Tree) ApplyRosetta(rosetta []rid.Idx) error {
	if t.Root == nil {
		return nil
	}
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n.Op == Var {
			nv, err := translate(rosetta, n.VarIdx())
			if err != nil {
				return err
			}
			n.Value = uint32(nv) + 1
		}
		if n.OpArg == ArgVar {
			nv, err := translate(rosetta, n.ImplicitVar())
			if err != nil {
				return err
			}
			n.Value = uint32(nv) + 1
		}
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t.Root); err != nil {
		return err
	}
	t.rebuildVList()
	return nil
}

func translate(rosetta []rid.Idx, vi rid.Idx) (rid.Idx, error) {
	if int(vi) >= len(rosetta) {
		return rid.Invalid, rherr.E(rherr.Inconsistency, "nltree.ApplyRosetta", "variable %s has no rosetta entry", vi)
	}
	nv := rosetta[vi]
	if !rid.Valid(nv) {
		return rid.Invalid, rherr.E(rherr.Inconsistency, "nltree.ApplyRosetta", "variable %s maps to non-valid index %s", vi, nv)
	}
	return nv, nil
}

// FindOrAddRootAddNode ensures t's root is an Add node and returns the
// address of a fresh child slot a new summand of the given coefficient
// should be attached to (spec §4.2 find_or_add_root_add_node).
func FindOrAddRootAddNode(t *Tree, coeff float64) (Addr, float64, error) {
	if t.Root == nil {
		t.Root = t.alloc(&Node{Op: Add, Children: []*Node{nil}})
		addr, err := ChildAddr(t.Root, 0)
		return addr, coeff, err
	}
	if t.Root.Op != Add {
		wrapped := t.Root
		t.Root = t.alloc(&Node{Op: Add, Children: []*Node{wrapped, nil}})
		addr, err := ChildAddr(t.Root, 1)
		return addr, coeff, err
	}
	t.Root.Children = append(t.Root.Children, nil)
	addr, err := ChildAddr(t.Root, len(t.Root.Children)-1)
	return addr, coeff, err
}

// CheckAdd is the exported form of check_add (spec §4.2): if node is an
// Add whose effective operand count collapsed to 1, it returns the
// surviving sole operand; otherwise it returns node unchanged.
func CheckAdd(node *Node) *Node { return checkAdd(node) }
