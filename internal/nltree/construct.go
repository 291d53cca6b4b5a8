package nltree

import (
	"github.com/reshop/reshop/internal/bytecode"
	"github.com/reshop/reshop/internal/pool"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// ridFromArg converts a 1-based wire argument naming a variable into a
// plain 0-based rid.Idx.
func ridFromArg(arg int32) rid.Idx { return rid.Idx(arg - 1) }

// equFromArg converts a 1-based nlStore argument into a plain 0-based
// equation rid.Idx.
func equFromArg(arg int32) rid.Idx { return rid.Idx(arg - 1) }

// FromGamsBytecode builds a Tree from a GAMS nl-code instruction stream
// (spec §4.2). The stream's pool-index arguments must already refer to
// p; arguments naming variables are 1-based per spec §6.3.
//
// The stream is a postorder stack-machine program: nlPushV/nlPushI/
// nlPushZero push leaves, the Add/Sub/Mul/Div families combine the top
// of the stack, and nlStore/nlHeader/nlNoOp are positional markers that
// do not touch the stack (ToGams places nlStore before, and nlHeader
// after, the postorder body — see ToGams's doc comment for why that is
// the form spec §4.2/§4.8 describe).
func FromGamsBytecode(instrs bytecode.Stream, p *pool.Pool) (*Tree, error) {
	t := Bootstrap(len(instrs), 2)
	var stack []*Node
	pop := func(op string) (*Node, error) {
		if len(stack) == 0 {
			return nil, rherr.E(rherr.InvalidValue, "nltree.FromGamsBytecode", "%s: operand stack underflow", op)
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return n, nil
	}
	push := func(n *Node) { stack = append(stack, t.alloc(n)) }

	var pendingFuncArgN = -1

	for _, instr := range instrs {
		switch instr.Op {
		case bytecode.NlHeader, bytecode.NlNoOp:
			// positional markers only
		case bytecode.NlStore:
			t.EquIdx = equFromArg(instr.Arg)
		case bytecode.NlPushV:
			push(newVar(ridFromArg(instr.Arg)))
		case bytecode.NlPushI:
			push(newCst(uint32(instr.Arg)))
		case bytecode.NlPushZero:
			z, err := p.Get(0)
			if err != nil {
				return nil, err
			}
			push(newCst(z))
		case bytecode.NlAdd, bytecode.NlSub, bytecode.NlMul, bytecode.NlDiv:
			b, err := pop(instr.Op.String())
			if err != nil {
				return nil, err
			}
			a, err := pop(instr.Op.String())
			if err != nil {
				return nil, err
			}
			push(&Node{Op: binaryOp(instr.Op), Children: []*Node{a, b}})
		case bytecode.NlAddV, bytecode.NlSubV, bytecode.NlMulV, bytecode.NlDivV:
			a, err := pop(instr.Op.String())
			if err != nil {
				return nil, err
			}
			push(&Node{Op: fusedBinaryOp(instr.Op), OpArg: ArgVar, Value: uint32(instr.Arg), Children: []*Node{a}})
		case bytecode.NlAddI, bytecode.NlSubI, bytecode.NlMulI, bytecode.NlDivI:
			a, err := pop(instr.Op.String())
			if err != nil {
				return nil, err
			}
			push(&Node{Op: fusedBinaryOp(instr.Op), OpArg: ArgCst, Value: uint32(instr.Arg), Children: []*Node{a}})
		case bytecode.NlUMin:
			a, err := pop("nlUMin")
			if err != nil {
				return nil, err
			}
			push(&Node{Op: Umin, Children: []*Node{a}})
		case bytecode.NlUMinV:
			push(&Node{Op: Umin, Children: []*Node{newVar(ridFromArg(instr.Arg))}})
		case bytecode.NlMulIAdd:
			v, err := pop("nlMulIAdd")
			if err != nil {
				return nil, err
			}
			a, err := pop("nlMulIAdd")
			if err != nil {
				return nil, err
			}
			push(&Node{Op: Add, OpArg: ArgFMA, Value: uint32(instr.Arg), Children: []*Node{a, v}})
		case bytecode.NlCallArg1:
			c, err := pop("nlCallArg1")
			if err != nil {
				return nil, err
			}
			push(&Node{Op: Call1, Value: uint32(instr.Arg), Children: []*Node{c}})
		case bytecode.NlCallArg2:
			c2, err := pop("nlCallArg2")
			if err != nil {
				return nil, err
			}
			c1, err := pop("nlCallArg2")
			if err != nil {
				return nil, err
			}
			push(&Node{Op: Call2, Value: uint32(instr.Arg), Children: []*Node{c1, c2}})
		case bytecode.NlFuncArgN:
			pendingFuncArgN = int(instr.Arg)
		case bytecode.NlCallArgN:
			if pendingFuncArgN < 3 {
				return nil, rherr.E(rherr.InvalidValue, "nltree.FromGamsBytecode", "nlCallArgN requires a preceding nlFuncArgN >= 3, got %d", pendingFuncArgN)
			}
			children := make([]*Node, pendingFuncArgN)
			for i := pendingFuncArgN - 1; i >= 0; i-- {
				c, err := pop("nlCallArgN")
				if err != nil {
					return nil, err
				}
				children[i] = c
			}
			push(&Node{Op: CallN, Value: uint32(instr.Arg), Children: children})
			pendingFuncArgN = -1
		case bytecode.NlChk:
			// checksum marker, nothing to validate at construction time
		default:
			return nil, rherr.E(rherr.InvalidOpCode, "nltree.FromGamsBytecode", "unknown opcode %d", instr.Op)
		}
	}

	switch len(stack) {
	case 0:
		t.Root = nil
	case 1:
		t.Root = stack[0]
	default:
		return nil, rherr.E(rherr.InvalidValue, "nltree.FromGamsBytecode", "stream left %d operands on the stack, expected 0 or 1", len(stack))
	}
	t.rebuildVList()
	return t, nil
}

func binaryOp(op bytecode.GamsOp) Op {
	switch op {
	case bytecode.NlAdd:
		return Add
	case bytecode.NlSub:
		return Sub
	case bytecode.NlMul:
		return Mul
	default:
		return Div
	}
}

func fusedBinaryOp(op bytecode.GamsOp) Op {
	switch op {
	case bytecode.NlAddV, bytecode.NlAddI:
		return Add
	case bytecode.NlSubV, bytecode.NlSubI:
		return Sub
	case bytecode.NlMulV, bytecode.NlMulI:
		return Mul
	default:
		return Div
	}
}
