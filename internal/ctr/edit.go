package ctr

import (
	"github.com/reshop/reshop/internal/avar"
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/lequ"
	"github.com/reshop/reshop/internal/nltree"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
	"github.com/reshop/reshop/internal/rosetta"
)

// ensureWritable implements the staged-editing discipline (spec §4.4
// "Staged-editing discipline"): if ei's stage predates the container's
// current stage, it must be duplicated first and the edit redirected to
// the new index (the rosetta preserves downstream references).
func (c *Container) ensureWritable(ei rid.Idx) (rid.Idx, error) {
	if int(ei) >= len(c.EquStage) {
		return ei, rherr.E(rherr.IndexOutOfRange, "ctr.ensureWritable", "equation %s has no stage record", ei)
	}
	if c.EquStage[ei] >= c.CurrentStage {
		return ei, nil
	}
	return c.DupEqu(ei, nil, rid.Invalid)
}

func (c *Container) ensureTree(e *equvar.Equ) *nltree.Tree {
	if e.Tree == nil {
		e.Tree = nltree.Bootstrap(8, 2)
		e.Tree.EquIdx = e.Idx
	}
	return e.Tree
}

// addLequTerm accumulates coeff into e.Lequ's entry for vi, adding a new
// entry if none exists yet.
func addLequTerm(l *lequ.Lequ, vi rid.Idx, coeff float64) error {
	if pos := l.Find(vi); pos >= 0 {
		_, cur := l.At(pos)
		return l.SetCoeff(pos, cur+coeff)
	}
	return l.Add(vi, coeff)
}

// AddLin implements spec §4.4 "add_lin(e, Avar v, vals[])" (safe).
func (c *Container) AddLin(ei rid.Idx, v *avar.Set, vals []float64) error {
	ei, err := c.ensureWritable(ei)
	if err != nil {
		return err
	}
	e, err := c.Equ(ei)
	if err != nil {
		return err
	}
	vis := avarSlice(v)
	if len(vis) != len(vals) {
		return rherr.E(rherr.InvalidArgument, "ctr.AddLin", "|v|=%d != |vals|=%d", len(vis), len(vals))
	}
	for i, vi := range vis {
		isNL, err := c.CMat.EquAddLVar(ei, vi, vals[i])
		if err != nil {
			return err
		}
		if isNL {
			t := c.ensureTree(e)
			addr, coeff, err := nltree.FindOrAddRootAddNode(t, vals[i])
			if err != nil {
				return err
			}
			if err := nltree.AddVar(t, addr, c.Pool, vi, coeff); err != nil {
				return err
			}
		} else if err := addLequTerm(e.Lequ, vi, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// AddLinCoeff implements spec §4.4 "add_lin_coeff(e, Avar v, vals[], c)"
// (safe): every val is pre-scaled by c before the equivalent of AddLin
// runs; c == 1 skips the extra multiply.
func (c *Container) AddLinCoeff(ei rid.Idx, v *avar.Set, vals []float64, coeff float64) error {
	if coeff == 1 {
		return c.AddLin(ei, v, vals)
	}
	scaled := make([]float64, len(vals))
	for i, val := range vals {
		scaled[i] = val * coeff
	}
	return c.AddLin(ei, v, scaled)
}

// SpMatKind tags which sparse-matrix representation SpMat carries (spec
// §4.4 "add_quadratic"). CSR/CSC are deliberately not modeled: spec
// explicitly says "CSR/CSC are not supported".
type SpMatKind int

const (
	IdentityDiag SpMatKind = iota
	BlockDiag
	Triplet
)

// SpMat is the quadratic-form matrix argument to AddQuadratic.
type SpMat struct {
	Kind SpMatKind

	Diag []float64 // IdentityDiag: one entry per variable in v, in order

	Blocks []SpMat    // BlockDiag: nested identity-like (or further block) sub-matrices
	Sizes  []int      // BlockDiag: how many of v's variables each block consumes, in order

	I, J []rid.Idx // Triplet: absolute variable indices
	X    []float64 // Triplet: coefficients
}

// AddQuadratic implements spec §4.4 "add_quadratic(e, SpMat M, Avar v,
// coeff)" (safe). The convention is coeff encodes 1/2 x^T M x, so
// coeff=1 means "use M's entries directly halved on the diagonal" —
// AddQuadCOO already halves diagonal entries, which is why IdentityDiag
// and Triplet both delegate to it directly.
func (c *Container) AddQuadratic(ei rid.Idx, m SpMat, v *avar.Set, coeff float64) error {
	ei, err := c.ensureWritable(ei)
	if err != nil {
		return err
	}
	e, err := c.Equ(ei)
	if err != nil {
		return err
	}
	t := c.ensureTree(e)
	addr, coeff, err := nltree.FindOrAddRootAddNode(t, coeff)
	if err != nil {
		return err
	}
	return c.addQuadraticInto(t, addr, m, v, coeff, e, ei)
}

func (c *Container) addQuadraticInto(t *nltree.Tree, addr nltree.Addr, m SpMat, v *avar.Set, coeff float64, e *equvar.Equ, ei rid.Idx) error {
	switch m.Kind {
	case IdentityDiag:
		vis := avarSlice(v)
		if len(vis) != len(m.Diag) {
			return rherr.E(rherr.InvalidArgument, "ctr.AddQuadratic", "|v|=%d != |diag|=%d", len(vis), len(m.Diag))
		}
		if err := nltree.AddQuadCOO(t, addr, c.Pool, vis, vis, m.Diag, coeff); err != nil {
			return err
		}
	case Triplet:
		if err := nltree.AddQuadCOO(t, addr, c.Pool, m.I, m.J, m.X, coeff); err != nil {
			return err
		}
	case BlockDiag:
		if len(m.Blocks) != len(m.Sizes) {
			return rherr.E(rherr.InvalidArgument, "ctr.AddQuadratic", "|blocks|=%d != |sizes|=%d", len(m.Blocks), len(m.Sizes))
		}
		vis := avarSlice(v)
		off := 0
		for bi, block := range m.Blocks {
			n := m.Sizes[bi]
			if off+n > len(vis) {
				return rherr.E(rherr.InvalidArgument, "ctr.AddQuadratic", "block sizes exceed |v|=%d", len(vis))
			}
			sub, err := avar.NewSortedList(append([]rid.Idx(nil), vis[off:off+n]...))
			if err != nil {
				sub = avar.NewListBorrow(vis[off : off+n])
			}
			subAddr, subCoeff, err := nltree.FindOrAddRootAddNode(t, coeff)
			if err != nil {
				return err
			}
			if err := c.addQuadraticInto(t, subAddr, block, sub, subCoeff, e, ei); err != nil {
				return err
			}
			off += n
		}
	default:
		return rherr.E(rherr.NotImplemented, "ctr.AddQuadratic", "CSR/CSC quadratic forms are not supported")
	}
	for _, vi := range avarSlice(v) {
		if _, err := c.CMat.EquAddNLVar(ei, vi, 0); err != nil {
			return err
		}
	}
	return nil
}

// AddBilin implements spec §4.4 "add_bilin(e, v1, v2, coeff)" (safe).
func (c *Container) AddBilin(ei rid.Idx, v1, v2 *avar.Set, coeff float64) error {
	ei, err := c.ensureWritable(ei)
	if err != nil {
		return err
	}
	e, err := c.Equ(ei)
	if err != nil {
		return err
	}
	vis1, vis2 := avarSlice(v1), avarSlice(v2)
	if len(vis1) != len(vis2) {
		return rherr.E(rherr.InvalidArgument, "ctr.AddBilin", "|v1|=%d != |v2|=%d", len(vis1), len(vis2))
	}
	t := c.ensureTree(e)
	addr, coeff, err := nltree.FindOrAddRootAddNode(t, coeff)
	if err != nil {
		return err
	}
	if err := nltree.AddBilin(t, addr, c.Pool, coeff, vis1, vis2); err != nil {
		return err
	}
	for _, vi := range vis1 {
		if _, err := c.CMat.EquAddNLVar(ei, vi, 0); err != nil {
			return err
		}
	}
	for _, vi := range vis2 {
		if _, err := c.CMat.EquAddNLVar(ei, vi, 0); err != nil {
			return err
		}
	}
	return nil
}

// AddNewMap implements spec §4.4 "add_new_map(e_dst, ei_src, vi_map,
// coeff)" (unsafe: the caller guarantees no collisions). Treats ei_src
// as z = f(x) with z = vi_map carrying coefficient c_z, and produces
// e_dst += (coeff / -c_z) * f(x).
func (c *Container) AddNewMap(eDst rid.Idx, eiSrc, viMap rid.Idx, coeff float64) error {
	eDst, err := c.ensureWritable(eDst)
	if err != nil {
		return err
	}
	dst, err := c.Equ(eDst)
	if err != nil {
		return err
	}
	src, err := c.Equ(eiSrc)
	if err != nil {
		return err
	}
	pos := src.Lequ.Find(viMap)
	if pos < 0 {
		return rherr.E(rherr.Inconsistency, "ctr.AddNewMap", "vi_map %s does not appear linearly in source equation %s", viMap, eiSrc)
	}
	_, cz := src.Lequ.At(pos)
	if cz == 0 {
		return rherr.E(rherr.InvalidValue, "ctr.AddNewMap", "vi_map %s has a zero coefficient in source equation %s", viMap, eiSrc)
	}
	scale := coeff / -cz

	dst.Cst += scale * src.Cst

	rest := src.Lequ.CloneExcept(viMap)
	if err := rest.Scale(scale); err != nil {
		return err
	}
	for i := 0; i < rest.Len(); i++ {
		vi, val := rest.At(i)
		if err := addLequTerm(dst.Lequ, vi, val); err != nil {
			return err
		}
		if _, err := c.CMat.EquAddLVar(eDst, vi, val); err != nil {
			return err
		}
	}

	if src.HasTree() {
		t := c.ensureTree(dst)
		addr, adjScale, err := nltree.FindOrAddRootAddNode(t, scale)
		if err != nil {
			return err
		}
		if err := nltree.AddNlExpr(t, addr, c.Pool, c.Pool, src.Tree.Root, adjScale); err != nil {
			return err
		}
		for _, vi := range src.Tree.VList() {
			if _, err := c.CMat.EquAddNLVar(eDst, vi, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddEqu implements spec §4.4 "add_equ(e_dst, e_src, coeff, rosetta)"
// (safe): generic e_dst += coeff * rosetta(e_src).
func (c *Container) AddEqu(eDst, eSrc rid.Idx, coeff float64, rosettaVars []rid.Idx) error {
	eDst, err := c.ensureWritable(eDst)
	if err != nil {
		return err
	}
	dst, err := c.Equ(eDst)
	if err != nil {
		return err
	}
	src, err := c.Equ(eSrc)
	if err != nil {
		return err
	}

	dst.Cst += coeff * src.Cst

	lin := src.Lequ.Clone()
	if rosettaVars != nil {
		if err := lin.ApplyRosetta(rosettaVars); err != nil {
			return err
		}
	}
	if err := lin.Scale(coeff); err != nil {
		return err
	}
	for i := 0; i < lin.Len(); i++ {
		vi, val := lin.At(i)
		if err := addLequTerm(dst.Lequ, vi, val); err != nil {
			return err
		}
		if _, err := c.CMat.EquAddLVar(eDst, vi, val); err != nil {
			return err
		}
	}

	if src.HasTree() {
		t := c.ensureTree(dst)
		addr, scale, err := nltree.FindOrAddRootAddNode(t, coeff)
		if err != nil {
			return err
		}
		if err := nltree.AddNlExpr(t, addr, c.Pool, c.Pool, src.Tree.Root, scale); err != nil {
			return err
		}
		if rosettaVars != nil {
			if err := t.ApplyRosetta(rosettaVars); err != nil {
				return err
			}
		}
		for _, vi := range t.VList() {
			if _, err := c.CMat.EquAddNLVar(eDst, vi, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddMulVEqu implements spec §4.4 "add_mulv_equ(e_dst, e_src, vi,
// coeff)" (safe): e_dst += coeff * vi * e_src. Since multiplying by a
// variable always produces a nonlinear term (a bilinear vi*vi_src for
// each linear term of e_src, and a vi*tree product for e_src's
// nonlinear part), every contribution lands in e_dst's tree; only
// e_src's constant term stays linear, contributing coeff*cst*vi.
func (c *Container) AddMulVEqu(eDst, eSrc, vi rid.Idx, coeff float64) error {
	eDst, err := c.ensureWritable(eDst)
	if err != nil {
		return err
	}
	dst, err := c.Equ(eDst)
	if err != nil {
		return err
	}
	src, err := c.Equ(eSrc)
	if err != nil {
		return err
	}

	t := c.ensureTree(dst)

	for i := 0; i < src.Lequ.Len(); i++ {
		lvi, lval := src.Lequ.At(i)
		termAddr, termScale, err := nltree.FindOrAddRootAddNode(t, coeff*lval)
		if err != nil {
			return err
		}
		if err := nltree.AddBilin(t, termAddr, c.Pool, termScale, []rid.Idx{vi}, []rid.Idx{lvi}); err != nil {
			return err
		}
		if _, err := c.CMat.EquAddNLVar(eDst, lvi, 0); err != nil {
			return err
		}
	}

	if src.HasTree() {
		addr, scale, err := nltree.FindOrAddRootAddNode(t, coeff)
		if err != nil {
			return err
		}
		if err := nltree.AddNlExpr(t, addr, c.Pool, c.Pool, src.Tree.Root, scale); err != nil {
			return err
		}
		if err := nltree.MulVar(t, addr, vi); err != nil {
			return err
		}
		for _, svi := range src.Tree.VList() {
			if _, err := c.CMat.EquAddNLVar(eDst, svi, 0); err != nil {
				return err
			}
		}
	}

	if _, err := c.CMat.EquAddNLVar(eDst, vi, 0); err != nil {
		return err
	}

	if src.Cst != 0 {
		if err := addLequTerm(dst.Lequ, vi, coeff*src.Cst); err != nil {
			return err
		}
		if _, err := c.CMat.EquAddLVar(eDst, vi, coeff*src.Cst); err != nil {
			return err
		}
	}
	return nil
}

// Scal implements spec §4.4 "scal(e, coeff)" (safe): scales Lequ,
// the expression tree, the constant term, and the corresponding CMat
// cells.
func (c *Container) Scal(ei rid.Idx, coeff float64) error {
	ei, err := c.ensureWritable(ei)
	if err != nil {
		return err
	}
	e, err := c.Equ(ei)
	if err != nil {
		return err
	}
	if coeff == 1 {
		return nil
	}
	if err := e.Lequ.Scale(coeff); err != nil {
		return err
	}
	if e.HasTree() {
		if err := e.Tree.Scal(c.Pool, coeff); err != nil {
			return err
		}
	}
	e.Cst *= coeff
	for cell := c.CMat.RowHead(ei); cell != nil; cell = cell.NextVar {
		if cell.ValueSet {
			cell.Value *= coeff
		}
	}
	return nil
}

// Flip implements spec §4.4 "flip(e) -> e_new": only meaningful for
// equations in a 1-D polyhedral cone. Duplicates e with every sign
// negated, flips the cone and basis status, and removes the source.
func (c *Container) Flip(ei rid.Idx) (rid.Idx, error) {
	e, err := c.Equ(ei)
	if err != nil {
		return rid.Invalid, err
	}
	if !e.Cone.IsScalar() {
		return rid.Invalid, rherr.E(rherr.InvalidArgument, "ctr.Flip", "flip is only meaningful for a 1-D polyhedral cone, equation %s is in %s", ei, e.Cone)
	}

	newIdx, err := c.AddEquation(e.Obj, e.Cone.Flip())
	if err != nil {
		return rid.Invalid, err
	}
	dst, _ := c.Equ(newIdx)
	dst.Cst = -e.Cst
	dst.Basis = e.Basis.Flip()
	dst.Multiplier = -e.Multiplier
	dst.Lequ = e.Lequ.CloneFlipped()

	if e.HasTree() {
		dst.Tree = nltree.Bootstrap(e.Tree.NodeCount(), 2)
		dst.Tree.EquIdx = newIdx
		if err := nltree.AddNlExpr(dst.Tree, nltree.RootAddr(dst.Tree), c.Pool, c.Pool, e.Tree.Root, 1); err != nil {
			return rid.Invalid, err
		}
		if err := nltree.Negate(dst.Tree, nltree.RootAddr(dst.Tree)); err != nil {
			return rid.Invalid, err
		}
	}

	if err := c.CMat.CopyEquFlipped(ei, newIdx); err != nil {
		return rid.Invalid, err
	}
	if err := c.DeleteEqu(ei); err != nil {
		return rid.Invalid, err
	}
	c.EquRosetta[ei] = rosettaReplacementFlipped(newIdx)
	return newIdx, nil
}

// DupEqu implements spec §4.4 "dup_equ(e, lin_extra, vi_skip) -> e_new":
// allocates a new slot, copies metadata/Lequ/NlTree omitting vi_skip,
// registers the new CMat row, then removes the original.
func (c *Container) DupEqu(ei rid.Idx, linExtra *lequ.Lequ, viSkip rid.Idx) (rid.Idx, error) {
	e, err := c.Equ(ei)
	if err != nil {
		return rid.Invalid, err
	}
	newIdx, err := c.AddEquation(e.Obj, e.Cone)
	if err != nil {
		return rid.Invalid, err
	}
	dst, _ := c.Equ(newIdx)
	dst.Cst = e.Cst
	dst.Basis = e.Basis
	dst.Multiplier = e.Multiplier
	dst.Level = e.Level
	dst.IsQuad = e.IsQuad

	if rid.Valid(viSkip) {
		dst.Lequ = e.Lequ.CloneExcept(viSkip)
	} else {
		dst.Lequ = e.Lequ.Clone()
	}
	if linExtra != nil {
		for i := 0; i < linExtra.Len(); i++ {
			vi, val := linExtra.At(i)
			if err := addLequTerm(dst.Lequ, vi, val); err != nil {
				return rid.Invalid, err
			}
		}
	}
	if e.HasTree() {
		dst.Tree = nltree.Bootstrap(e.Tree.NodeCount(), 2)
		dst.Tree.EquIdx = newIdx
		if err := nltree.AddNlExpr(dst.Tree, nltree.RootAddr(dst.Tree), c.Pool, c.Pool, e.Tree.Root, 1); err != nil {
			return rid.Invalid, err
		}
	}

	if rid.Valid(viSkip) {
		if err := c.CMat.CopyEquExcept(ei, newIdx, viSkip); err != nil {
			return rid.Invalid, err
		}
	} else {
		if err := c.CMat.CopyEqu(ei, newIdx); err != nil {
			return rid.Invalid, err
		}
	}
	c.EquStage[newIdx] = c.CurrentStage

	if err := c.DeleteEqu(ei); err != nil {
		return rid.Invalid, err
	}
	c.EquRosetta[ei] = rosettaReplacement(newIdx)
	return newIdx, nil
}

func rosettaReplacement(to rid.Idx) rosetta.EquEntry {
	return rosetta.Replacement(to, false)
}

func rosettaReplacementFlipped(to rid.Idx) rosetta.EquEntry {
	return rosetta.Replacement(to, true)
}
