package reshop

import (
	"github.com/reshop/reshop/internal/config"
	"github.com/reshop/reshop/internal/ctr"
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/rid"
)

// NewNamed is New, but builds a container that accepts the named
// add_var/add_equation variants and their by-name lookups (spec §6.1).
func NewNamed(mEst, nEst int, defs *config.Defaults) *Model {
	opts := config.New()
	if defs != nil {
		opts = defs.Bag()
	}
	return &Model{ctr: ctr.NewNamed(mEst, nEst), options: opts}
}

// AddVarNamed adds a variable under a basename copied internally (spec
// §6.1 "named variants"), rejected with WrongModelForFunction unless the
// model was built with NewNamed.
func (m *Model) AddVarNamed(name string, lb, ub float64) (rid.Idx, error) {
	return m.ctr.AddVarNamed(name, lb, ub)
}

// AddEquationNamed adds an equation under a basename copied internally.
func (m *Model) AddEquationNamed(name string, obj equvar.ObjType, cone equvar.Cone) (rid.Idx, error) {
	return m.ctr.AddEquationNamed(name, obj, cone)
}

// LookupVar resolves a variable's index by its registered name.
func (m *Model) LookupVar(name string) (rid.Idx, error) { return m.ctr.LookupVar(name) }

// LookupEqu resolves an equation's index by its registered name.
func (m *Model) LookupEqu(name string) (rid.Idx, error) { return m.ctr.LookupEqu(name) }
