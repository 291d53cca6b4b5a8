package reshop

import (
	"testing"

	"github.com/reshop/reshop/internal/avar"
	"github.com/reshop/reshop/internal/equvar"
	"github.com/reshop/reshop/internal/rid"
)

func TestNewModelHasDistinctSessionID(t *testing.T) {
	m1 := New(1, 2, nil)
	m2 := New(1, 2, nil)
	if m1.SessionID() == m2.SessionID() {
		t.Fatalf("two models share a session id: %v", m1.SessionID())
	}
}

func TestAddVarsAndEquationRoundTrip(t *testing.T) {
	m := New(1, 2, nil)

	vis, err := m.AddVars(2, 0, 10)
	if err != nil {
		t.Fatalf("AddVars: %v", err)
	}
	if len(vis) != 2 {
		t.Fatalf("AddVars returned %d indices, want 2", len(vis))
	}

	ei, err := m.AddCon(equvar.ConeRPlus)
	if err != nil {
		t.Fatalf("AddCon: %v", err)
	}
	if err := m.AddLin(ei, avar.NewList(vis), []float64{1, -1}); err != nil {
		t.Fatalf("AddLin: %v", err)
	}

	if !m.IsEquValid(ei) {
		t.Fatalf("equation %v reported invalid after creation", ei)
	}
	for _, vi := range vis {
		if !m.IsVarValid(vi) {
			t.Fatalf("variable %v reported invalid after creation", vi)
		}
	}

	if err := m.CheckExpensive(); err != nil {
		t.Fatalf("CheckExpensive: %v", err)
	}
}

func TestSetObjEquAndGetNlTree(t *testing.T) {
	m := New(1, 1, nil)
	vi, err := m.AddVar(0, 10)
	if err != nil {
		t.Fatalf("AddVar: %v", err)
	}
	ei, err := m.AddEquation(equvar.Unset, equvar.ConeRPlus)
	if err != nil {
		t.Fatalf("AddEquation: %v", err)
	}
	if err := m.AddLin(ei, avar.NewList([]rid.Idx{vi}), []float64{1}); err != nil {
		t.Fatalf("AddLin: %v", err)
	}
	if err := m.SetObjEqu(ei, equvar.Mapping); err != nil {
		t.Fatalf("SetObjEqu: %v", err)
	}

	tree, err := m.GetNlTree(ei)
	if err != nil {
		t.Fatalf("GetNlTree: %v", err)
	}
	if tree != nil {
		t.Fatalf("GetNlTree = %v, want nil for a purely linear equation", tree)
	}
}

func TestDeleteVarMarksInvalid(t *testing.T) {
	m := New(1, 1, nil)
	vi, err := m.AddVar(0, 1)
	if err != nil {
		t.Fatalf("AddVar: %v", err)
	}
	if err := m.DeleteVar(vi); err != nil {
		t.Fatalf("DeleteVar: %v", err)
	}
	if m.IsVarValid(vi) {
		t.Fatalf("variable %v still valid after delete", vi)
	}
}
