// Package equvar implements the Equ/Var records of spec.md §3.6: the
// per-index metadata a container keeps alongside the incidence
// structure in internal/cmat and the algebraic payload in internal/lequ
// and internal/nltree.
package equvar

import (
	"github.com/reshop/reshop/internal/lequ"
	"github.com/reshop/reshop/internal/nltree"
	"github.com/reshop/reshop/internal/rid"
)

// Cone is the geometric set an equation's body must lie in (spec §6.2).
// Only R, RPlus, RMinus and Zero admit a scalar constant term; the rest
// carry structured cone data in Equ.ConeParams.
type Cone int

const (
	ConeR Cone = iota
	ConeRPlus
	ConeRMinus
	ConeZero
	ConeSOC
	ConeRSOC
	ConeEXP
	ConeDEXP
	ConePOWER
	ConeDPOWER
	ConePOLYHEDRAL
	ConeNONE
)

func (c Cone) String() string {
	names := [...]string{"R", "R+", "R-", "{0}", "SOC", "RSOC", "EXP", "DEXP", "POWER", "DPOWER", "POLYHEDRAL", "NONE"}
	if int(c) < len(names) {
		return names[c]
	}
	return "Cone(?)"
}

// IsScalar reports whether the cone admits a plain scalar constant term
// rather than structured cone parameters.
func (c Cone) IsScalar() bool {
	return c == ConeR || c == ConeRPlus || c == ConeRMinus || c == ConeZero
}

// Flip returns the cone obtained by negating a 1-D polyhedral
// inequality's body (spec §4.4 "Flip"); only meaningful for ConeRPlus/
// ConeRMinus, which swap, and ConeZero/ConeR, which are self-flipped.
func (c Cone) Flip() Cone {
	switch c {
	case ConeRPlus:
		return ConeRMinus
	case ConeRMinus:
		return ConeRPlus
	default:
		return c
	}
}

// ObjType is an equation's object type (spec §3.6).
type ObjType int

const (
	Unset ObjType = iota
	Mapping
	DefinedMapping
	ConeInclusion
	BooleanRelation
)

// BasisStatus is a shared basis-status enum for equations and variables.
type BasisStatus int

const (
	BasisUnknown BasisStatus = iota
	BasisLower
	BasisUpper
	BasisBasic
	BasisFixed
	BasisSuperBasic
)

// Flip swaps Lower/Upper, leaving every other status unchanged (spec
// §4.4 "Flip": "Basis status is remapped (BasisUpper <-> BasisLower)").
func (b BasisStatus) Flip() BasisStatus {
	switch b {
	case BasisLower:
		return BasisUpper
	case BasisUpper:
		return BasisLower
	default:
		return b
	}
}

// Role is optional EMP-hierarchy metadata for an equation or variable.
type Role int

const (
	RoleUnset Role = iota
	RoleObjective
	RoleConstraint
	RoleVIFunction
)

// VarType is a variable's declared kind (spec §3.6).
type VarType int

const (
	Continuous VarType = iota
	Binary
	Integer
	SemiContinuous
	SemiInteger
	SOS1Member
	SOS2Member
)

// Metadata is the optional EMP-hierarchy bookkeeping attached to an
// equation or variable (spec §3.6 "Metadata"). It is a separate struct
// (rather than inline fields) so containers that never touch the EMP
// hierarchy can leave it nil throughout.
type Metadata struct {
	Role    Role
	Dual    rid.Idx // paired variable (for an equation) or equation (for a variable)
	MPId    int     // owning math-program id
	Deleted bool
	Flipped bool
}

// Equ is one equation's full record (spec §3.6).
type Equ struct {
	Idx   rid.Idx
	Basis BasisStatus
	Obj   ObjType
	Cone  Cone
	IsQuad bool

	Cst       float64 // constant term, valid when Cone.IsScalar()
	ConeParams []float64 // structured cone parameters, valid otherwise

	Level      float64
	Multiplier float64
	Deleted    bool

	Lequ *lequ.Lequ
	Tree *nltree.Tree

	Meta *Metadata
}

// NewEqu returns a fresh equation of object type obj in cone, with an
// empty linear part and no expression tree.
func NewEqu(idx rid.Idx, obj ObjType, cone Cone) *Equ {
	return &Equ{
		Idx:  idx,
		Obj:  obj,
		Cone: cone,
		Lequ: lequ.New(4),
	}
}

// HasTree reports whether e carries a nonempty expression tree.
func (e *Equ) HasTree() bool { return e.Tree != nil && !e.Tree.IsEmpty() }

// Var is one variable's full record (spec §3.6).
type Var struct {
	Idx   rid.Idx
	Basis BasisStatus
	Type  VarType
	Lb, Ub float64
	Level, Multiplier float64
	Deleted bool
	Conic   bool

	SOSWeights []float64 // optional; nil means "default uniform"

	Meta *Metadata
}

// NewVar returns a fresh continuous variable over [lb, ub].
func NewVar(idx rid.Idx, lb, ub float64) *Var {
	return &Var{Idx: idx, Lb: lb, Ub: ub}
}

// IsFixed reports whether the variable's bounds are numerically equal
// (spec §8 "get_nb_var_fx flags a variable iff |ub - lb| < 100 * eps").
func (v *Var) IsFixed(eps float64) bool {
	d := v.Ub - v.Lb
	if d < 0 {
		d = -d
	}
	return d < 100*eps
}
