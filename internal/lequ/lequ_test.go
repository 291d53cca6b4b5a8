package lequ

import (
	"testing"

	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

func TestAddAndGet(t *testing.T) {
	l := New(0)
	if err := l.Add(0, 1.5); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := l.Add(1, -2.0); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := l.Add(2, 0.25); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if l.Len() != 3 {
		t.Fatalf("expected 3 terms, got %d", l.Len())
	}
	wantV := []rid.Idx{0, 1, 2}
	wantC := []float64{1.5, -2.0, 0.25}
	for i := 0; i < 3; i++ {
		vi, c := l.At(i)
		if vi != wantV[i] || c != wantC[i] {
			t.Fatalf("term %d: got (%s,%v) want (%s,%v)", i, vi, c, wantV[i], wantC[i])
		}
	}
}

func TestAddUniqueRejectsDuplicate(t *testing.T) {
	l := New(0)
	_ = l.Add(0, 1.0)
	if err := l.AddUnique(0, 2.0); !rherr.Has(err, rherr.DuplicateValue) {
		t.Fatalf("expected DuplicateValue, got %v", err)
	}
}

func TestDeleteSwapsWithLast(t *testing.T) {
	l := New(0)
	_ = l.Add(0, 1)
	_ = l.Add(1, 2)
	_ = l.Add(2, 3)
	if err := l.Delete(0); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 terms after delete, got %d", l.Len())
	}
	vi, c := l.At(0)
	if vi != 2 || c != 3 {
		t.Fatalf("expected position 0 to now hold the former last term (2,3), got (%s,%v)", vi, c)
	}
}

func TestScale(t *testing.T) {
	l := New(0)
	_ = l.Add(0, 1)
	_ = l.Add(1, 2)
	if err := l.Scale(2.0); err != nil {
		t.Fatalf("Scale: %v", err)
	}
	_, c0 := l.At(0)
	_, c1 := l.At(1)
	if c0 != 2 || c1 != 4 {
		t.Fatalf("expected scaled coefficients [2,4], got [%v,%v]", c0, c1)
	}
}

func TestCloneFlipped(t *testing.T) {
	l := New(0)
	_ = l.Add(0, 2)
	_ = l.Add(1, 3)
	f := l.CloneFlipped()
	_, c0 := f.At(0)
	_, c1 := f.At(1)
	if c0 != -2 || c1 != -3 {
		t.Fatalf("expected flipped coefficients [-2,-3], got [%v,%v]", c0, c1)
	}
	// original untouched
	_, o0 := l.At(0)
	if o0 != 2 {
		t.Fatalf("expected original Lequ unmodified by CloneFlipped")
	}
}

func TestApplyRosetta(t *testing.T) {
	l := New(0)
	_ = l.Add(0, 1)
	_ = l.Add(2, 2)
	rosetta := []rid.Idx{5, 6, 7}
	if err := l.ApplyRosetta(rosetta); err != nil {
		t.Fatalf("ApplyRosetta: %v", err)
	}
	vi0, _ := l.At(0)
	vi1, _ := l.At(1)
	if vi0 != 5 || vi1 != 7 {
		t.Fatalf("expected rosetta-translated indices [5,7], got [%s,%s]", vi0, vi1)
	}
}
