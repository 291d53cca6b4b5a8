package avar

import (
	"testing"

	"github.com/reshop/reshop/internal/rid"
)

func TestCompact(t *testing.T) {
	s := NewCompact(10, 5)
	if s.Size() != 5 {
		t.Fatalf("expected size 5, got %d", s.Size())
	}
	v, err := s.Get(2)
	if err != nil || v != 12 {
		t.Fatalf("Get(2) = %v, %v; want 12, nil", v, err)
	}
	if pos := s.Find(13); pos != 3 {
		t.Fatalf("Find(13) = %d, want 3", pos)
	}
	if s.Contains(9) {
		t.Fatalf("expected 9 not in [10,15)")
	}
}

func TestListFind(t *testing.T) {
	s := NewList([]rid.Idx{4, 1, 9, 2})
	if pos := s.Find(9); pos != 2 {
		t.Fatalf("Find(9) = %d, want 2", pos)
	}
	if pos := s.Find(100); pos != -1 {
		t.Fatalf("Find(100) = %d, want -1", pos)
	}
}

func TestSortedListRejectsUnsorted(t *testing.T) {
	if _, err := NewSortedList([]rid.Idx{1, 1, 2}); err == nil {
		t.Fatalf("expected error for non-strictly-increasing input")
	}
	s, err := NewSortedList([]rid.Idx{1, 3, 7, 9})
	if err != nil {
		t.Fatalf("NewSortedList: %v", err)
	}
	if pos := s.Find(7); pos != 2 {
		t.Fatalf("Find(7) = %d, want 2", pos)
	}
}

func TestBlockExtend(t *testing.T) {
	b := NewBlock()
	if err := b.Extend(NewCompact(0, 3)); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if err := b.Extend(NewList([]rid.Idx{10, 11})); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if b.Size() != 5 {
		t.Fatalf("expected block size 5, got %d", b.Size())
	}
	got := b.Slice()
	want := []rid.Idx{0, 1, 2, 10, 11}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("Slice()[%d] = %s, want %s", i, got[i], w)
		}
	}
	if pos := b.Find(11); pos != 4 {
		t.Fatalf("Find(11) = %d, want 4", pos)
	}
}

func TestExtendOnlyOnBlock(t *testing.T) {
	s := NewCompact(0, 1)
	if err := s.Extend(NewCompact(1, 1)); err == nil {
		t.Fatalf("expected error extending a non-Block set")
	}
}
