package ctr

import (
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/nltree"
	"github.com/reshop/reshop/internal/rid"
)

// SetObjEqu sets ei's object type to obj (spec §6.1 "mdl_setobjequ"),
// validating that the equation exists first. The container does not
// record which equation is the objective.
func (c *Container) SetObjEqu(ei rid.Idx, obj equvar.ObjType) error {
	e, err := c.Equ(ei)
	if err != nil {
		return err
	}
	e.Obj = obj
	return nil
}

// GetNlTree returns ei's nonlinear expression tree, or nil if the
// equation is purely linear (spec §6.1 "mdl_getnltree").
func (c *Container) GetNlTree(ei rid.Idx) (*nltree.Tree, error) {
	e, err := c.Equ(ei)
	if err != nil {
		return nil, err
	}
	if !e.HasTree() {
		return nil, nil
	}
	return e.Tree, nil
}
