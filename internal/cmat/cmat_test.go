package cmat

import (
	"testing"

	"github.com/reshop/reshop/internal/rid"
)

func TestFillEquLinksRow(t *testing.T) {
	c := New(2, 4)
	vis := []rid.Idx{0, 1, 2}
	vals := []float64{1.5, -2.0, 0.25}
	if err := c.FillEqu(0, vis, vals, nil, nil); err != nil {
		t.Fatalf("FillEqu: %v", err)
	}
	got := []rid.Idx{}
	for cell := c.RowHead(0); cell != nil; cell = cell.NextVar {
		got = append(got, cell.Vi)
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("row = %v, want [0 1 2]", got)
	}
	if c.ActiveVars() != 3 {
		t.Fatalf("ActiveVars = %d, want 3", c.ActiveVars())
	}
}

func TestFillEquRejectsNonEmptyRow(t *testing.T) {
	c := New(1, 1)
	_ = c.FillEqu(0, []rid.Idx{0}, []float64{1}, nil, nil)
	if err := c.FillEqu(0, []rid.Idx{1}, []float64{2}, nil, nil); err == nil {
		t.Fatalf("expected error refilling a non-empty row")
	}
}

func TestEquAddLVarAccumulates(t *testing.T) {
	c := New(1, 2)
	_ = c.FillEqu(0, []rid.Idx{0}, []float64{1.0}, nil, nil)
	isNL, err := c.EquAddLVar(0, 0, 4.0)
	if err != nil {
		t.Fatalf("EquAddLVar: %v", err)
	}
	if isNL {
		t.Fatalf("expected Lin cell, got NL")
	}
	if c.RowHead(0).Value != 5.0 {
		t.Fatalf("value = %v, want 5.0 (accumulated)", c.RowHead(0).Value)
	}
}

func TestEquAddLVarAppendsNew(t *testing.T) {
	c := New(1, 2)
	_ = c.FillEqu(0, []rid.Idx{0}, []float64{1.0}, nil, nil)
	if _, err := c.EquAddLVar(0, 1, 2.0); err != nil {
		t.Fatalf("EquAddLVar: %v", err)
	}
	n := 0
	for cell := c.RowHead(0); cell != nil; cell = cell.NextVar {
		n++
	}
	if n != 2 {
		t.Fatalf("row length = %d, want 2", n)
	}
}

func TestEquAddNLVarPromotes(t *testing.T) {
	c := New(1, 1)
	_ = c.FillEqu(0, []rid.Idx{0}, []float64{1.0}, nil, nil)
	promoted, err := c.EquAddNLVar(0, 0, 0)
	if err != nil {
		t.Fatalf("EquAddNLVar: %v", err)
	}
	if !promoted {
		t.Fatalf("expected promotion from Lin to NL")
	}
	if c.RowHead(0).Type != NL {
		t.Fatalf("cell type = %s, want NL", c.RowHead(0).Type)
	}
}

func TestRmVarUnlinksRowAndColumn(t *testing.T) {
	c := New(1, 2)
	_ = c.FillEqu(0, []rid.Idx{0, 1}, []float64{1, 2}, nil, nil)
	rowEmpty, colEmpty, err := c.RmVar(0, 0)
	if err != nil {
		t.Fatalf("RmVar: %v", err)
	}
	if rowEmpty || !colEmpty {
		t.Fatalf("rowEmpty=%v colEmpty=%v, want false true", rowEmpty, colEmpty)
	}
	if c.ColHead(0) != nil {
		t.Fatalf("column 0 should be empty after removal")
	}
	if c.RowHead(0) == nil || c.RowHead(0).Vi != 1 {
		t.Fatalf("row 0 should still contain variable 1")
	}
}

func TestRmEquRetainsRowForDeferredRead(t *testing.T) {
	c := New(1, 2)
	_ = c.FillEqu(0, []rid.Idx{0, 1}, []float64{1, 2}, nil, nil)
	if err := c.RmEqu(0); err != nil {
		t.Fatalf("RmEqu: %v", err)
	}
	if c.RowHead(0) != nil {
		t.Fatalf("row should be cleared after removal")
	}
	if c.DeletedRow(0) == nil {
		t.Fatalf("deleted row should be retained")
	}
	if c.ColHead(0) != nil || c.ColHead(1) != nil {
		t.Fatalf("columns should be unlinked after RmEqu")
	}
}

func TestCopyEquFlippedNegates(t *testing.T) {
	c := New(2, 2)
	_ = c.FillEqu(0, []rid.Idx{0, 1}, []float64{2, -3}, nil, nil)
	if err := c.CopyEquFlipped(0, 1); err != nil {
		t.Fatalf("CopyEquFlipped: %v", err)
	}
	var got []float64
	for cell := c.RowHead(1); cell != nil; cell = cell.NextVar {
		got = append(got, cell.Value)
	}
	if len(got) != 2 || got[0] != -2 || got[1] != 3 {
		t.Fatalf("flipped values = %v, want [-2 3]", got)
	}
}

func TestCopyEquExceptEmptyBecomesPlaceholder(t *testing.T) {
	c := New(2, 1)
	_ = c.FillEqu(0, []rid.Idx{0}, []float64{1}, nil, nil)
	if err := c.CopyEquExcept(0, 1, 0); err != nil {
		t.Fatalf("CopyEquExcept: %v", err)
	}
	if c.RowHead(1) == nil || c.RowHead(1).Type != CstEqu {
		t.Fatalf("expected a CstEqu placeholder, got %+v", c.RowHead(1))
	}
}
