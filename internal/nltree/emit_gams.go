package nltree

import (
	"github.com/reshop/reshop/internal/bytecode"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// maxEmitSlots bounds how many instructions ToGams may produce for a
// tree built from at most bucketCount buckets (top-level summands) over
// a pool with poolMax entries (spec §4.2's pre-reserved slot budget).
func maxEmitSlots(bucketCount, poolMax int) int {
	return 3 * (bucketCount + 1) * (poolMax + 1)
}

// ToGams emits t back to a GAMS nl-code instruction stream (spec §4.2,
// §4.8). The body (everything between the leading nlStore and the
// trailing nlHeader) is a correct left-to-right postorder stack-machine
// program: spec §4.2 builds it by appending each node's own opcode
// before its children (in reverse explicit order) and reversing the
// whole result once at the end. Recursively, that double reversal is
// exactly what turns "node, then reversed children" into "children,
// then node" — ordinary postorder — so ToGams simply emits postorder
// directly rather than performing the reversal as a separate pass.
// spec §4.8 then "prepend[s] nlStore ... and append[s] nlHeader ...
// then reverse[s] the whole stream": since the postorder body is
// already in its final form, that second reversal is this same
// construction, not an additional inversion, so the wire order below
// places nlStore before and nlHeader after the body — that is the form
// FromGamsBytecode expects.
func (t *Tree) ToGams(poolMax int) (bytecode.Stream, error) {
	var body []bytecode.Instr
	bucketCount := 0
	if t.Root != nil {
		if t.Root.Op == Add {
			bucketCount = t.Root.EffectiveChildCount()
		} else {
			bucketCount = 1
		}
		if err := emitGamsNode(t.Root, &body); err != nil {
			return nil, err
		}
	}
	if len(body) > maxEmitSlots(bucketCount, poolMax) {
		return nil, rherr.E(rherr.InsufficientMemory, "nltree.ToGams", "emission needed %d slots, budget was %d", len(body), maxEmitSlots(bucketCount, poolMax))
	}

	out := make(bytecode.Stream, 0, len(body)+2)
	if rid.Valid(t.EquIdx) {
		out = append(out, bytecode.Instr{Op: bytecode.NlStore, Arg: int32(t.EquIdx) + 1})
	}
	out = append(out, body...)
	out = append(out, bytecode.Instr{Op: bytecode.NlHeader, Arg: int32(len(out)) + 1})

	if err := ChkGmsOpcode(out); err != nil {
		return nil, err
	}
	return out, nil
}

func emitGamsNode(n *Node, out *[]bytecode.Instr) error {
	if n == nil {
		return rherr.E(rherr.InvalidValue, "nltree.ToGams", "nil node in tree")
	}
	switch n.Op {
	case Var:
		if err := emitChildren(n, out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: bytecode.NlPushV, Arg: int32(n.Value)})
		return nil
	case Cst:
		if err := emitChildren(n, out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: bytecode.NlPushI, Arg: int32(n.Value)})
		return nil
	case Umin:
		if len(n.Children) != 1 {
			return rherr.E(rherr.UnExpectedData, "nltree.ToGams", "Umin node with %d children, want 1", len(n.Children))
		}
		if n.Children[0].Op == Var && n.Children[0].EffectiveChildCount() == 0 {
			*out = append(*out, bytecode.Instr{Op: bytecode.NlUMinV, Arg: int32(n.Children[0].Value)})
			return nil
		}
		if err := emitGamsNode(n.Children[0], out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: bytecode.NlUMin})
		return nil
	case Add, Sub, Mul, Div:
		return emitArith(n, out)
	case Call1:
		if len(n.Children) != 1 {
			return rherr.E(rherr.UnExpectedData, "nltree.ToGams", "Call1 with %d children", len(n.Children))
		}
		if err := emitGamsNode(n.Children[0], out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: bytecode.NlCallArg1, Arg: int32(n.Value)})
		return nil
	case Call2:
		if len(n.Children) != 2 {
			return rherr.E(rherr.UnExpectedData, "nltree.ToGams", "Call2 with %d children", len(n.Children))
		}
		if err := emitGamsNode(n.Children[0], out); err != nil {
			return err
		}
		if err := emitGamsNode(n.Children[1], out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: bytecode.NlCallArg2, Arg: int32(n.Value)})
		return nil
	case CallN:
		if len(n.Children) < 3 {
			return rherr.E(rherr.UnExpectedData, "nltree.ToGams", "CallN with %d children, want >= 3", len(n.Children))
		}
		for _, c := range n.Children {
			if err := emitGamsNode(c, out); err != nil {
				return err
			}
		}
		*out = append(*out, bytecode.Instr{Op: bytecode.NlFuncArgN, Arg: int32(len(n.Children))})
		*out = append(*out, bytecode.Instr{Op: bytecode.NlCallArgN, Arg: int32(n.Value)})
		return nil
	default:
		return rherr.E(rherr.InvalidOpCode, "nltree.ToGams", "unemittable op %s", n.Op)
	}
}

func emitChildren(n *Node, out *[]bytecode.Instr) error {
	for _, c := range n.Children {
		if err := emitGamsNode(c, out); err != nil {
			return err
		}
	}
	return nil
}

// emitArith handles Add/Sub/Mul/Div, including their FMA/Cst/Var fused
// forms (spec §3.4/§4.2).
func emitArith(n *Node, out *[]bytecode.Instr) error {
	if n.OpArg == ArgFMA {
		if len(n.Children) != 2 {
			return rherr.E(rherr.UnExpectedData, "nltree.ToGams", "FMA Add with %d children, want 2", len(n.Children))
		}
		if err := emitGamsNode(n.Children[0], out); err != nil {
			return err
		}
		if err := emitGamsNode(n.Children[1], out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: bytecode.NlMulIAdd, Arg: int32(n.Value)})
		return nil
	}
	if n.OpArg == ArgVar || n.OpArg == ArgCst {
		if len(n.Children) != 1 {
			return rherr.E(rherr.UnExpectedData, "nltree.ToGams", "fused %s with %d children, want 1", n.Op, len(n.Children))
		}
		if err := emitGamsNode(n.Children[0], out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: fusedGamsOp(n.Op, n.OpArg), Arg: int32(n.Value)})
		return nil
	}
	if n.Op != Add {
		if len(n.Children) != 2 {
			return rherr.E(rherr.UnExpectedData, "nltree.ToGams", "%s with %d children, want 2", n.Op, len(n.Children))
		}
		if err := emitGamsNode(n.Children[0], out); err != nil {
			return err
		}
		if err := emitGamsNode(n.Children[1], out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: plainGamsOp(n.Op)})
		return nil
	}

	// bundle()/FindOrAddRootAddNode build a plain Add's children directly,
	// without re-flattening into a binary chain (one slot for the first
	// nonlinear term grafted onto a linear equation, one term per summand
	// for add_bilin/add_quadratic). Emit the same chain build_gams_opcode_v2
	// does: all but the first child get their own trailing nlAdd.
	switch len(n.Children) {
	case 0:
		return rherr.E(rherr.UnExpectedData, "nltree.ToGams", "Add with 0 children")
	case 1:
		return emitGamsNode(n.Children[0], out)
	}
	if err := emitGamsNode(n.Children[0], out); err != nil {
		return err
	}
	for _, c := range n.Children[1:] {
		if err := emitGamsNode(c, out); err != nil {
			return err
		}
		*out = append(*out, bytecode.Instr{Op: bytecode.NlAdd})
	}
	return nil
}

func plainGamsOp(op Op) bytecode.GamsOp {
	switch op {
	case Add:
		return bytecode.NlAdd
	case Sub:
		return bytecode.NlSub
	case Mul:
		return bytecode.NlMul
	default:
		return bytecode.NlDiv
	}
}

func fusedGamsOp(op Op, arg OpArg) bytecode.GamsOp {
	v := arg == ArgVar
	switch op {
	case Add:
		if v {
			return bytecode.NlAddV
		}
		return bytecode.NlAddI
	case Sub:
		if v {
			return bytecode.NlSubV
		}
		return bytecode.NlSubI
	case Mul:
		if v {
			return bytecode.NlMulV
		}
		return bytecode.NlMulI
	default:
		if v {
			return bytecode.NlDivV
		}
		return bytecode.NlDivI
	}
}

// ChkGmsOpcode validates a produced GAMS stream (spec §4.8): header
// present, declared length matches, no illegal opcodes, no NoOps.
func ChkGmsOpcode(s bytecode.Stream) error {
	if len(s) == 0 {
		return rherr.E(rherr.UnExpectedData, "nltree.ChkGmsOpcode", "empty stream, nlHeader required")
	}
	last := s[len(s)-1]
	if last.Op != bytecode.NlHeader {
		return rherr.E(rherr.UnExpectedData, "nltree.ChkGmsOpcode", "stream must terminate with nlHeader, got %s", last.Op)
	}
	if int(last.Arg) != len(s) {
		return rherr.E(rherr.UnExpectedData, "nltree.ChkGmsOpcode", "declared length %d does not match actual stream length %d", last.Arg, len(s))
	}
	for _, instr := range s[:len(s)-1] {
		if instr.Op == bytecode.NlNoOp {
			return rherr.E(rherr.InvalidOpCode, "nltree.ChkGmsOpcode", "stray nlNoOp in stream")
		}
		if instr.Op < bytecode.NlHeader || instr.Op > bytecode.NlChk {
			return rherr.E(rherr.InvalidOpCode, "nltree.ChkGmsOpcode", "opcode %d out of the known alphabet", instr.Op)
		}
	}
	return nil
}
