// Package nltree implements the expression tree of spec.md §3.4/§4.2:
// an arena-allocated DAG of arithmetic/function nodes representing the
// nonlinear part of one equation, built from (and emitted back to)
// external bytecode, and edited in place by the container's equation
// editors.
package nltree

import "github.com/reshop/reshop/internal/rid"

// Op is a node's arithmetic/function tag.
type Op int

const (
	Cst Op = iota
	Var
	Add
	Sub
	Mul
	Div
	Call1
	Call2
	CallN
	Umin
)

func (op Op) String() string {
	switch op {
	case Cst:
		return "Cst"
	case Var:
		return "Var"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	case Div:
		return "Div"
	case Call1:
		return "Call1"
	case Call2:
		return "Call2"
	case CallN:
		return "CallN"
	case Umin:
		return "Umin"
	default:
		return "Op(?)"
	}
}

// OpArg describes whether a node carries an additional operand fused
// into the node itself rather than as an explicit child (spec §3.4's
// "FMA opaqueness").
type OpArg int

const (
	ArgUnset OpArg = iota
	ArgCst
	ArgVar
	ArgFMA
)

// Function codes for Call1/Call2/CallN nodes. Only the subset the core
// needs to round-trip through both backends is named; others pass
// through as an opaque code.
type FuncCode uint32

const (
	FnSqr FuncCode = iota + 1
	FnSqrt
	FnExp
	FnLog
	FnSin
	FnCos
	FnPower
)

// Node is one arena-allocated expression-tree node.
//
// Invariants (spec §3.4, enforced by the constructors in this package,
// never by direct field mutation from outside):
//   - Var and Cst nodes have zero children.
//   - Umin has exactly one child.
//   - Call1/Call2 have exactly 1/2 children; CallN has >= 3.
//   - Add/Mul with OpArg != ArgUnset carry an implicit extra operand in
//     Value, in addition to their explicit Children.
type Node struct {
	Op       Op
	OpArg    OpArg
	Value    uint32 // variable idx+1, pool idx, or function code, per Op/OpArg
	Children []*Node
	PrintNow bool // ppty print-now flag; copied by AddNlExpr, not read by ToGams or ToAmpl
}

// VarIdx returns the variable this node references (as a plain 0-based
// rid.Idx) when Op == Var, or rid.Invalid otherwise.
func (n *Node) VarIdx() rid.Idx {
	if n.Op != Var || n.Value == 0 {
		return rid.Invalid
	}
	return rid.Idx(n.Value - 1)
}

// ImplicitVar returns the implicit variable operand of an Add/Mul node
// carrying OpArg == ArgVar, or rid.Invalid otherwise.
func (n *Node) ImplicitVar() rid.Idx {
	if n.OpArg != ArgVar || n.Value == 0 {
		return rid.Invalid
	}
	return rid.Idx(n.Value - 1)
}

// HasImplicitOperand reports whether n carries a fused extra operand.
func (n *Node) HasImplicitOperand() bool { return n.OpArg != ArgUnset }

// EffectiveChildCount is the number of operands a node has once its
// implicit (fused) operand, if any, is counted alongside its explicit
// Children. Used by check_add (spec §4.2) to detect degenerate Add
// nodes that should collapse to their single remaining child.
func (n *Node) EffectiveChildCount() int {
	n2 := len(n.Children)
	if n.HasImplicitOperand() {
		n2++
	}
	return n2
}

func newLeaf(op Op, value uint32) *Node {
	return &Node{Op: op, OpArg: ArgUnset, Value: value, Children: nil}
}

func newVar(vi rid.Idx) *Node { return newLeaf(Var, uint32(vi)+1) }

func newCst(poolIdx uint32) *Node { return newLeaf(Cst, poolIdx) }
