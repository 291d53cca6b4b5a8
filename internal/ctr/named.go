package ctr

import (
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// AddVarNamed is AddVar, additionally registering name for later lookup
// by LookupVar (spec §6.1 "named variants accept a basename copied
// internally"). It requires a container built with NewNamed.
func (c *Container) AddVarNamed(name string, lb, ub float64) (rid.Idx, error) {
	if !c.named {
		return rid.Invalid, rherr.E(rherr.WrongModelForFunction, "ctr.AddVarNamed", "container does not support named variables")
	}
	if _, exists := c.varNames[name]; exists {
		return rid.Invalid, rherr.E(rherr.DuplicateValue, "ctr.AddVarNamed", "variable name %q already in use", name)
	}
	idx, err := c.AddVar(lb, ub)
	if err != nil {
		return rid.Invalid, err
	}
	c.varNames[name] = idx
	return idx, nil
}

// AddEquationNamed is AddEquation, additionally registering name for
// later lookup by LookupEqu. It requires a container built with
// NewNamed.
func (c *Container) AddEquationNamed(name string, obj equvar.ObjType, cone equvar.Cone) (rid.Idx, error) {
	if !c.named {
		return rid.Invalid, rherr.E(rherr.WrongModelForFunction, "ctr.AddEquationNamed", "container does not support named equations")
	}
	if _, exists := c.equNames[name]; exists {
		return rid.Invalid, rherr.E(rherr.DuplicateValue, "ctr.AddEquationNamed", "equation name %q already in use", name)
	}
	idx, err := c.AddEquation(obj, cone)
	if err != nil {
		return rid.Invalid, err
	}
	c.equNames[name] = idx
	return idx, nil
}

// LookupVar resolves a variable's index by its registered name (spec §7
// "NotFound — lookup by name yielded nothing").
func (c *Container) LookupVar(name string) (rid.Idx, error) {
	if !c.named {
		return rid.Invalid, rherr.E(rherr.WrongModelForFunction, "ctr.LookupVar", "container does not support named variables")
	}
	idx, ok := c.varNames[name]
	if !ok {
		return rid.Invalid, rherr.E(rherr.NotFound, "ctr.LookupVar", "no variable named %q", name)
	}
	return idx, nil
}

// LookupEqu resolves an equation's index by its registered name.
func (c *Container) LookupEqu(name string) (rid.Idx, error) {
	if !c.named {
		return rid.Invalid, rherr.E(rherr.WrongModelForFunction, "ctr.LookupEqu", "container does not support named equations")
	}
	idx, ok := c.equNames[name]
	if !ok {
		return rid.Invalid, rherr.E(rherr.NotFound, "ctr.LookupEqu", "no equation named %q", name)
	}
	return idx, nil
}
