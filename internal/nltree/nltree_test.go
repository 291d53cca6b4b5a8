package nltree

import (
	"testing"

	"github.com/reshop/reshop/internal/bytecode"
	"github.com/reshop/reshop/internal/pool"
	"github.com/reshop/reshop/internal/rid"
)

func TestFromGamsBytecodeRoundTrip(t *testing.T) {
	p := pool.New(4)
	c2, err := p.Get(2.0)
	if err != nil {
		t.Fatalf("Get(2.0): %v", err)
	}
	// equ 0: v0 + v1 * 2.0, stored for equation index 0
	in := bytecode.Stream{
		{Op: bytecode.NlStore, Arg: 1},
		{Op: bytecode.NlPushV, Arg: 1},
		{Op: bytecode.NlPushV, Arg: 2},
		{Op: bytecode.NlMulI, Arg: int32(c2)},
		{Op: bytecode.NlAdd},
		{Op: bytecode.NlHeader, Arg: 6},
	}
	tree, err := FromGamsBytecode(in, p)
	if err != nil {
		t.Fatalf("FromGamsBytecode: %v", err)
	}
	if tree.EquIdx != 0 {
		t.Fatalf("EquIdx = %s, want 0", tree.EquIdx)
	}
	if tree.Root == nil || tree.Root.Op != Add {
		t.Fatalf("root = %+v, want Add", tree.Root)
	}
	if !tree.HasVar(0) || !tree.HasVar(1) {
		t.Fatalf("VList = %v, want {0,1}", tree.VList())
	}

	out, err := tree.ToGams(int(c2))
	if err != nil {
		t.Fatalf("ToGams: %v", err)
	}
	if err := ChkGmsOpcode(out); err != nil {
		t.Fatalf("ChkGmsOpcode: %v", err)
	}
	back, err := FromGamsBytecode(out, p)
	if err != nil {
		t.Fatalf("FromGamsBytecode(round trip): %v", err)
	}
	if back.EquIdx != tree.EquIdx {
		t.Fatalf("round trip EquIdx = %s, want %s", back.EquIdx, tree.EquIdx)
	}
	if back.NodeCount() == 0 {
		t.Fatalf("round trip produced an empty tree")
	}
}

func TestFromGamsBytecodeStackUnderflow(t *testing.T) {
	p := pool.New(1)
	in := bytecode.Stream{
		{Op: bytecode.NlAdd},
		{Op: bytecode.NlHeader, Arg: 2},
	}
	if _, err := FromGamsBytecode(in, p); err == nil {
		t.Fatalf("expected stack underflow error, got nil")
	}
}

func TestCheckAddCollapsesSingleChild(t *testing.T) {
	tr := Bootstrap(4, 2)
	v := tr.alloc(newVar(3))
	add := tr.alloc(&Node{Op: Add, Children: []*Node{v}})
	got := checkAdd(add)
	if got != v {
		t.Fatalf("checkAdd did not collapse single-child Add")
	}
}

func TestCheckAddLeavesMultiChildAlone(t *testing.T) {
	tr := Bootstrap(4, 2)
	a := tr.alloc(newVar(1))
	b := tr.alloc(newVar(2))
	add := tr.alloc(&Node{Op: Add, Children: []*Node{a, b}})
	if checkAdd(add) != add {
		t.Fatalf("checkAdd altered a genuine 2-child Add")
	}
}

func TestAddVarFusesCoefficient(t *testing.T) {
	p := pool.New(2)
	tr := Bootstrap(4, 2)
	tr.Root = &Node{Op: Add, Children: []*Node{nil}}
	addr, _ := ChildAddr(tr.Root, 0)
	if err := AddVar(tr, addr, p, 5, 3.0); err != nil {
		t.Fatalf("AddVar: %v", err)
	}
	child := tr.Root.Children[0]
	if child.Op != Mul || child.OpArg != ArgCst {
		t.Fatalf("fused var node = %+v, want Mul/ArgCst", child)
	}
	if !tr.HasVar(5) {
		t.Fatalf("VList missing fused variable")
	}
}

func TestAddBilinThreeTerms(t *testing.T) {
	p := pool.New(2)
	tr := Bootstrap(8, 2)
	v := []rid.Idx{0, 1, 2}
	w := []rid.Idx{10, 11, 12}
	if err := AddBilin(tr, RootAddr(tr), p, 0.5, v, w); err != nil {
		t.Fatalf("AddBilin: %v", err)
	}
	if tr.Root.Op != Add || len(tr.Root.Children) != 3 {
		t.Fatalf("root = %+v, want 3-child Add", tr.Root)
	}
	for _, term := range tr.Root.Children {
		if term.Op != Mul || term.OpArg != ArgCst {
			t.Fatalf("bilinear term = %+v, want Mul/ArgCst wrapping a product", term)
		}
		val, err := p.Read(term.Value)
		if err != nil || val != 0.5 {
			t.Fatalf("bilinear term coeff = %v (err %v), want 0.5", val, err)
		}
	}
}

func TestAddQuadCOODiagonalPromotesToSqr(t *testing.T) {
	p := pool.New(4)
	tr := Bootstrap(8, 2)
	ii := []rid.Idx{0, 1, 2}
	jj := []rid.Idx{0, 1, 2}
	xx := []float64{2, 4, 6}
	if err := AddQuadCOO(tr, RootAddr(tr), p, ii, jj, xx, 1.0); err != nil {
		t.Fatalf("AddQuadCOO: %v", err)
	}
	if tr.Root.Op != Add || len(tr.Root.Children) != 3 {
		t.Fatalf("root = %+v, want 3-child Add", tr.Root)
	}
	wantHalves := []float64{1, 2, 3}
	for i, term := range tr.Root.Children {
		if term.Op != Mul || len(term.Children) != 1 || term.Children[0].Op != Call1 {
			t.Fatalf("diag term %d = %+v, want Mul wrapping a Call1(fnsqr)", i, term)
		}
		val, err := p.Read(term.Value)
		if err != nil || val != wantHalves[i] {
			t.Fatalf("diag term %d coeff = %v (err %v), want %v", i, val, err, wantHalves[i])
		}
	}
}

func TestApplyRosettaTranslatesVars(t *testing.T) {
	p := pool.New(1)
	tr := Bootstrap(4, 2)
	tr.Root = newVar(2)
	tr.alloc(tr.Root)
	tr.noteVar(2)
	rosetta := []rid.Idx{0, 1, 99}
	if err := tr.ApplyRosetta(rosetta); err != nil {
		t.Fatalf("ApplyRosetta: %v", err)
	}
	if tr.Root.VarIdx() != 99 {
		t.Fatalf("root var = %s, want 99", tr.Root.VarIdx())
	}
	if !tr.HasVar(99) || tr.HasVar(2) {
		t.Fatalf("VList not rebuilt after rosetta: %v", tr.VList())
	}
	_ = p
}

func TestApplyRosettaRejectsNonValidTarget(t *testing.T) {
	tr := Bootstrap(4, 2)
	tr.Root = newVar(0)
	tr.alloc(tr.Root)
	if err := tr.ApplyRosetta([]rid.Idx{rid.Deleted}); err == nil {
		t.Fatalf("expected error translating into a deleted slot")
	}
}

func TestFindOrAddRootAddNodeWrapsNonAddRoot(t *testing.T) {
	tr := Bootstrap(4, 2)
	tr.Root = newVar(7)
	tr.alloc(tr.Root)
	addr, coeff, err := FindOrAddRootAddNode(tr, 2.0)
	if err != nil {
		t.Fatalf("FindOrAddRootAddNode: %v", err)
	}
	if tr.Root.Op != Add || len(tr.Root.Children) != 2 {
		t.Fatalf("root = %+v, want 2-child Add wrapping the old root", tr.Root)
	}
	if coeff != 2.0 {
		t.Fatalf("coeff = %v, want unchanged 2.0", coeff)
	}
	if addr.get() != nil {
		t.Fatalf("returned addr should name an empty slot")
	}
}

func TestToAmplPrefixOrder(t *testing.T) {
	p := pool.New(2)
	tr := Bootstrap(4, 2)
	tr.Root = &Node{Op: Add, Children: []*Node{newVar(0), newVar(1)}}
	tr.alloc(tr.Root)
	toks, err := tr.ToAmpl(p)
	if err != nil {
		t.Fatalf("ToAmpl: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("len(toks) = %d, want 3 (op, var, var)", len(toks))
	}
	if toks[0].Kind != bytecode.AmplOp || toks[0].Int != int(bytecode.OpPlus) {
		t.Fatalf("toks[0] = %+v, want the '+' opcode first", toks[0])
	}
}

func TestAddNlExprDeepCopiesAcrossPools(t *testing.T) {
	srcPool := pool.New(1)
	dstPool := pool.New(1)
	srcIdx, _ := srcPool.Get(9.5)
	src := &Node{Op: Cst, Value: srcIdx}

	tr := Bootstrap(4, 2)
	if err := AddNlExpr(tr, RootAddr(tr), dstPool, srcPool, src, 1.0); err != nil {
		t.Fatalf("AddNlExpr: %v", err)
	}
	if tr.Root == src {
		t.Fatalf("AddNlExpr must deep copy, not alias, the source node")
	}
	got, err := dstPool.Read(tr.Root.Value)
	if err != nil || got != 9.5 {
		t.Fatalf("copied constant = %v (err %v), want 9.5", got, err)
	}
}

func TestToGamsEmitsNaryAddAsChain(t *testing.T) {
	p := pool.New(4)
	tr := Bootstrap(8, 2)
	if err := AddBilin(tr, RootAddr(tr), p, 0.5, []rid.Idx{0, 1, 2}, []rid.Idx{10, 11, 12}); err != nil {
		t.Fatalf("AddBilin: %v", err)
	}
	if len(tr.Root.Children) != 3 {
		t.Fatalf("root has %d children, want 3", len(tr.Root.Children))
	}

	out, err := tr.ToGams(8)
	if err != nil {
		t.Fatalf("ToGams: %v", err)
	}
	if err := ChkGmsOpcode(out); err != nil {
		t.Fatalf("ChkGmsOpcode: %v", err)
	}
	adds := 0
	for _, instr := range out {
		if instr.Op == bytecode.NlAdd {
			adds++
		}
	}
	if adds != len(tr.Root.Children)-1 {
		t.Fatalf("nlAdd count = %d, want %d for a %d-child Add", adds, len(tr.Root.Children)-1, len(tr.Root.Children))
	}
}

func TestToGamsEmitsSingleChildAddDirectly(t *testing.T) {
	tr := Bootstrap(4, 2)
	addr, _, err := FindOrAddRootAddNode(tr, 1.0)
	if err != nil {
		t.Fatalf("FindOrAddRootAddNode: %v", err)
	}
	addr.set(newVar(3))
	if len(tr.Root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(tr.Root.Children))
	}

	out, err := tr.ToGams(2)
	if err != nil {
		t.Fatalf("ToGams: %v", err)
	}
	for _, instr := range out {
		if instr.Op == bytecode.NlAdd {
			t.Fatalf("stream %v should not contain nlAdd for a 1-child Add", out)
		}
	}
}

func TestNegateWrapsThenUnwraps(t *testing.T) {
	tr := Bootstrap(4, 2)
	tr.Root = newVar(4)
	tr.alloc(tr.Root)

	if err := Negate(tr, RootAddr(tr)); err != nil {
		t.Fatalf("Negate: %v", err)
	}
	if tr.Root.Op != Umin || len(tr.Root.Children) != 1 {
		t.Fatalf("root = %+v, want 1-child Umin", tr.Root)
	}
	inner := tr.Root.Children[0]

	if err := Negate(tr, RootAddr(tr)); err != nil {
		t.Fatalf("Negate: %v", err)
	}
	if tr.Root != inner {
		t.Fatalf("second Negate should unwrap back to the original node, got %+v", tr.Root)
	}
}
