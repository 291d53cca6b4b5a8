package nltree

import (
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// Tree is one equation's nonlinear part: an arena of nodes rooted at
// Root (nil for a purely linear equation), plus VList, the de-duplicated
// list of variables reachable from Root that the container matrix uses
// to resync incidence after a bulk edit (spec §3.4).
type Tree struct {
	Root   *Node
	EquIdx rid.Idx // set by nlStore during construction; NA until then

	vlist    []rid.Idx
	vseen    map[rid.Idx]bool
	arena    []*Node
	estNodes int
	estKids  int
}

// Bootstrap creates an empty tree sized for an expected estNodes nodes
// averaging estChildren children each. The estimate only pre-sizes
// internal slices; it is never a hard cap except where §4.2 names one
// explicitly (the emission slot budget).
func Bootstrap(estNodes, estChildren int) *Tree {
	if estNodes < 0 {
		estNodes = 0
	}
	return &Tree{
		EquIdx:   rid.NA,
		vlist:    make([]rid.Idx, 0, estNodes/4+1),
		vseen:    make(map[rid.Idx]bool, estNodes/4+1),
		arena:    make([]*Node, 0, estNodes),
		estNodes: estNodes,
		estKids:  estChildren,
	}
}

// IsEmpty reports whether the equation is purely linear (no tree content).
func (t *Tree) IsEmpty() bool { return t == nil || t.Root == nil }

// VList returns the de-duplicated list of variables reachable from Root,
// in first-seen order.
func (t *Tree) VList() []rid.Idx { return t.vlist }

// HasVar reports whether vi is reachable from Root.
func (t *Tree) HasVar(vi rid.Idx) bool { return t.vseen != nil && t.vseen[vi] }

func (t *Tree) noteVar(vi rid.Idx) {
	if t.vseen == nil {
		t.vseen = make(map[rid.Idx]bool)
	}
	if !t.vseen[vi] {
		t.vseen[vi] = true
		t.vlist = append(t.vlist, vi)
	}
}

// rebuildVList walks the tree from Root and recomputes vlist/vseen from
// scratch. Used after structural edits (deep copy, rosetta application)
// where tracking incremental deltas would be more error-prone than a
// full recompute.
func (t *Tree) rebuildVList() {
	t.vlist = t.vlist[:0]
	t.vseen = make(map[rid.Idx]bool)
	if t.Root == nil {
		return
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Op == Var {
			t.noteVar(n.VarIdx())
		}
		if n.ImplicitVar() != rid.Invalid {
			t.noteVar(n.ImplicitVar())
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
}

func (t *Tree) alloc(n *Node) *Node {
	t.arena = append(t.arena, n)
	return n
}

// NodeCount reports how many nodes this tree has ever allocated (the
// arena is never individually freed; it is reclaimed with the tree).
func (t *Tree) NodeCount() int { return len(t.arena) }

// Addr names a location a new node can be attached to: either the
// tree's Root slot, or a specific child slot of an existing node.
type Addr interface {
	get() *Node
	set(*Node)
}

type rootAddr struct{ t *Tree }

func (a rootAddr) get() *Node  { return a.t.Root }
func (a rootAddr) set(n *Node) { a.t.Root = n }

// RootAddr addresses t's root slot.
func RootAddr(t *Tree) Addr { return rootAddr{t} }

type childAddr struct {
	parent *Node
	idx    int
}

func (a childAddr) get() *Node  { return a.parent.Children[a.idx] }
func (a childAddr) set(n *Node) { a.parent.Children[a.idx] = n }

// ChildAddr addresses the idx'th child slot of parent. parent.Children
// must already have a slot at idx (nil is a valid placeholder value).
func ChildAddr(parent *Node, idx int) (Addr, error) {
	if idx < 0 || idx >= len(parent.Children) {
		return nil, rherr.E(rherr.IndexOutOfRange, "nltree.ChildAddr", "child slot %d out of range [0,%d)", idx, len(parent.Children))
	}
	return childAddr{parent, idx}, nil
}

// checkAdd collapses node if it is an Add whose effective
// child count (explicit children plus any fused implicit operand) is 1
// (spec §4.2's check_add). It returns the node that should now occupy
// the slot node used to occupy: either node unchanged, or its sole
// remaining operand.
func checkAdd(node *Node) *Node {
	if node == nil || node.Op != Add {
		return node
	}
	if node.EffectiveChildCount() != 1 {
		return node
	}
	if len(node.Children) == 1 {
		return node.Children[0]
	}
	// The only operand is the implicit one; materialize it as a leaf.
	if node.OpArg == ArgVar {
		return newVar(node.ImplicitVar())
	}
	return newCst(node.Value)
}
