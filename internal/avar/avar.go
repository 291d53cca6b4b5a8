// Package avar implements the abstract equation/variable sets of
// spec.md §3.2: value-level handles denoting a set of indices, in one
// of four representations. Avar and Aequ share this implementation
// (they differ only in which index space they name); callers alias the
// type to keep the two nominally distinct where useful.
package avar

import (
	"sort"

	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// Kind tags which representation a Set uses.
type Kind int

const (
	Compact Kind = iota
	List
	SortedList
	Block
)

// Set is a value object denoting a set of indices (spec §3.2). Exactly
// one of the representation-specific fields is populated, per kind.
type Set struct {
	kind Kind

	// Compact: [start, start+size)
	start rid.Idx
	size  int

	// List / SortedList: an owned or borrowed slice.
	list []rid.Idx

	// Block: heterogeneous concatenation of sub-sets.
	parts []*Set
}

// NewCompact returns the contiguous range [start, start+size).
func NewCompact(start rid.Idx, size int) *Set {
	return &Set{kind: Compact, start: start, size: size}
}

// NewList returns an unordered set copying idxs.
func NewList(idxs []rid.Idx) *Set {
	cp := make([]rid.Idx, len(idxs))
	copy(cp, idxs)
	return &Set{kind: List, list: cp}
}

// NewListBorrow returns an unordered set that borrows idxs without
// copying; the caller must not mutate idxs afterward.
func NewListBorrow(idxs []rid.Idx) *Set {
	return &Set{kind: List, list: idxs}
}

// NewSortedList returns a set backed by a strictly increasing slice,
// copying and validating the ordering of idxs.
func NewSortedList(idxs []rid.Idx) (*Set, error) {
	cp := make([]rid.Idx, len(idxs))
	copy(cp, idxs)
	for i := 1; i < len(cp); i++ {
		if cp[i] <= cp[i-1] {
			return nil, rherr.E(rherr.InvalidArgument, "avar.NewSortedList", "indices not strictly increasing at position %d", i)
		}
	}
	return &Set{kind: SortedList, list: cp}, nil
}

// NewBlock returns an empty Block set ready for Extend.
func NewBlock() *Set { return &Set{kind: Block} }

// Size returns the number of indices denoted by the set.
func (s *Set) Size() int {
	switch s.kind {
	case Compact:
		return s.size
	case List, SortedList:
		return len(s.list)
	case Block:
		n := 0
		for _, p := range s.parts {
			n += p.Size()
		}
		return n
	}
	return 0
}

// Get returns the i'th index of the set, 0 <= i < Size().
func (s *Set) Get(i int) (rid.Idx, error) {
	if i < 0 || i >= s.Size() {
		return rid.Invalid, rherr.E(rherr.IndexOutOfRange, "avar.Get", "position %d out of range [0,%d)", i, s.Size())
	}
	switch s.kind {
	case Compact:
		return s.start + rid.Idx(i), nil
	case List, SortedList:
		return s.list[i], nil
	case Block:
		for _, p := range s.parts {
			n := p.Size()
			if i < n {
				return p.Get(i)
			}
			i -= n
		}
	}
	return rid.Invalid, rherr.E(rherr.Inconsistency, "avar.Get", "unreachable")
}

// Find returns the position of idx within the set, or -1 if absent.
// SortedList uses binary search (O(log n)); List scans (O(n));
// Compact computes directly (O(1)).
func (s *Set) Find(idx rid.Idx) int {
	switch s.kind {
	case Compact:
		if idx >= s.start && idx < s.start+rid.Idx(s.size) {
			return int(idx - s.start)
		}
		return -1
	case List:
		for i, v := range s.list {
			if v == idx {
				return i
			}
		}
		return -1
	case SortedList:
		n := len(s.list)
		pos := sort.Search(n, func(i int) bool { return s.list[i] >= idx })
		if pos < n && s.list[pos] == idx {
			return pos
		}
		return -1
	case Block:
		base := 0
		for _, p := range s.parts {
			if pos := p.Find(idx); pos >= 0 {
				return base + pos
			}
			base += p.Size()
		}
		return -1
	}
	return -1
}

// Contains reports whether idx belongs to the set.
func (s *Set) Contains(idx rid.Idx) bool { return s.Find(idx) >= 0 }

// Extend appends other as a new part of a Block set, taking ownership of
// it (the caller must not mutate other afterward). Only valid on a Block.
func (s *Set) Extend(other *Set) error {
	if s.kind != Block {
		return rherr.E(rherr.InvalidArgument, "avar.Extend", "Extend is only valid on a Block set")
	}
	s.parts = append(s.parts, other)
	return nil
}

// Each calls fn with every index in the set, in order.
func (s *Set) Each(fn func(rid.Idx) error) error {
	n := s.Size()
	for i := 0; i < n; i++ {
		idx, err := s.Get(i)
		if err != nil {
			return err
		}
		if err := fn(idx); err != nil {
			return err
		}
	}
	return nil
}

// Slice materializes the set as a plain index slice, in order.
func (s *Set) Slice() []rid.Idx {
	out := make([]rid.Idx, 0, s.Size())
	_ = s.Each(func(i rid.Idx) error { out = append(out, i); return nil })
	return out
}

// Kind reports the set's representation.
func (s *Set) Kind() Kind { return s.kind }
