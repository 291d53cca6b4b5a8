package nltree

import (
	"github.com/reshop/reshop/internal/bytecode"
	"github.com/reshop/reshop/internal/pool"
	"github.com/reshop/reshop/internal/rherr"
)

// ToAmpl emits t as a prefix-notation AMPL NL token stream (spec §4.2
// "Emission to AMPL NL format", §4.8 "To AMPL"): each node contributes
// its own "o<opcode>" token before its children's tokens, unlike the
// postorder GAMS form.
func (t *Tree) ToAmpl(p *pool.Pool) ([]bytecode.AmplToken, error) {
	if t.Root == nil {
		return nil, nil
	}
	var out []bytecode.AmplToken
	if err := emitAmplNode(t.Root, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func emitAmplNode(n *Node, p *pool.Pool, out *[]bytecode.AmplToken) error {
	switch n.Op {
	case Var:
		*out = append(*out, bytecode.AmplToken{Kind: bytecode.AmplVar, Int: int(n.VarIdx())})
		return nil
	case Cst:
		v, err := p.Read(n.Value)
		if err != nil {
			return err
		}
		*out = append(*out, bytecode.AmplToken{Kind: bytecode.AmplNum, Float: v})
		return nil
	case Umin:
		*out = append(*out, bytecode.AmplToken{Kind: bytecode.AmplOp, Int: int(bytecode.OpUMinus)})
		return emitAmplNode(n.Children[0], p, out)
	case Add, Sub, Mul, Div:
		return emitAmplArith(n, p, out)
	case Call1:
		code, err := amplFuncCode(FuncCode(n.Value))
		if err != nil {
			return err
		}
		*out = append(*out, bytecode.AmplToken{Kind: bytecode.AmplOp, Int: int(code)})
		return emitAmplNode(n.Children[0], p, out)
	case Call2, CallN:
		return rherr.E(rherr.InvalidOpCode, "nltree.ToAmpl", "%s has no AMPL mapping in this core", n.Op)
	default:
		return rherr.E(rherr.InvalidOpCode, "nltree.ToAmpl", "unemittable op %s", n.Op)
	}
}

func emitAmplArith(n *Node, p *pool.Pool, out *[]bytecode.AmplToken) error {
	var opc bytecode.AmplOpcode
	switch n.Op {
	case Add:
		opc = bytecode.OpPlus
	case Sub:
		opc = bytecode.OpMinus
	case Mul:
		opc = bytecode.OpMult
	default:
		opc = bytecode.OpDiv
	}
	*out = append(*out, bytecode.AmplToken{Kind: bytecode.AmplOp, Int: int(opc)})

	if n.OpArg == ArgFMA {
		return rherr.E(rherr.InvalidOpCode, "nltree.ToAmpl", "FMA-fused Add has no direct AMPL mapping")
	}
	for _, c := range n.Children {
		if err := emitAmplNode(c, p, out); err != nil {
			return err
		}
	}
	if n.OpArg == ArgVar {
		*out = append(*out, bytecode.AmplToken{Kind: bytecode.AmplVar, Int: int(n.ImplicitVar())})
	} else if n.OpArg == ArgCst {
		v, err := p.Read(n.Value)
		if err != nil {
			return err
		}
		*out = append(*out, bytecode.AmplToken{Kind: bytecode.AmplNum, Float: v})
	}
	return nil
}

func amplFuncCode(fn FuncCode) (bytecode.AmplOpcode, error) {
	switch fn {
	case FnSqr:
		return bytecode.Op2Pow, nil
	case FnSqrt:
		return bytecode.OpSqrt, nil
	case FnExp:
		return bytecode.OpExp, nil
	case FnLog:
		return bytecode.OpLog, nil
	case FnSin:
		return bytecode.OpSin, nil
	case FnCos:
		return bytecode.OpCos, nil
	default:
		return 0, rherr.E(rherr.InvalidOpCode, "nltree.ToAmpl", "function code %d has no AMPL equivalent", fn)
	}
}
