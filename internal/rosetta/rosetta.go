// Package rosetta implements the index-translation records and
// compression algorithm of spec.md §3.7/§4.6: per-equation transformation
// records (same index / replacement / expanded list) and the
// "compact the active variables and equations into a contiguous prefix"
// procedure run after filtering.
package rosetta

import (
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

func errCycle(start rid.Idx) error {
	return rherr.E(rherr.Inconsistency, "rosetta.Chain", "rosetta chain starting at %s cycles back on itself", start)
}

func errModelInfeasible(ei rid.Idx) error {
	return rherr.E(rherr.ModelInfeasible, "rosetta.CompressEqus", "equation %s is filtered out but not vacuous", ei)
}

// EquEntry is one equation's transformation record (spec §3.7
// "equ_rosetta[ei]"): either "same index", a single replacement index
// (possibly FLIPPED), or an expanded list of replacement indices
// (EXPANDED).
type EquEntry struct {
	Same     bool
	Target   rid.Idx
	Flipped  bool
	Expanded []rid.Idx
}

// Identity returns the "unchanged" record for equation ei.
func Identity(ei rid.Idx) EquEntry { return EquEntry{Same: true, Target: ei} }

// Replacement returns the record for an equation relocated to a single
// new index, optionally flagged FLIPPED (produced by flip/dup_equ).
func Replacement(to rid.Idx, flipped bool) EquEntry {
	return EquEntry{Target: to, Flipped: flipped}
}

// Expand returns the record for an equation that expanded into several
// replacement indices.
func Expand(to []rid.Idx) EquEntry { return EquEntry{Expanded: to} }

// IsExpanded reports whether this record names more than one successor.
func (e EquEntry) IsExpanded() bool { return e.Expanded != nil }

// Resolve returns the record's single successor index. Calling it on an
// EXPANDED record is a programming error (callers must check
// IsExpanded first); it returns rid.Invalid in that case rather than
// panicking, since leaf primitives never panic on caller misuse (spec §7).
func (e EquEntry) Resolve() rid.Idx {
	if e.Same {
		return e.Target
	}
	if e.IsExpanded() {
		return rid.Invalid
	}
	return e.Target
}

// Chain follows a (possibly multi-hop) sequence of single-target
// entries starting at ei to its fixed point, detecting cycles (spec §8:
// "following equ_rosetta[ei].res.equ terminates at a fixed point...
// unless the ppty is EXPANDED"). lookup(ei) must return ei's own entry.
func Chain(start rid.Idx, lookup func(rid.Idx) (EquEntry, bool)) (rid.Idx, error) {
	seen := map[rid.Idx]bool{start: true}
	cur := start
	for {
		entry, ok := lookup(cur)
		if !ok || entry.Same || entry.IsExpanded() {
			return cur, nil
		}
		next := entry.Target
		if seen[next] {
			return rid.Invalid, errCycle(start)
		}
		seen[next] = true
		cur = next
	}
}

// CompressVars assigns each of the totalN source variables a destination
// index per spec §4.6 "compress_vars": kept variables (per keepVar) get
// the next free destination index, or permute(src)'s override if
// supplied; dropped variables map to rid.Deleted. It returns the forward
// map (rosettaVars[src] = dst) and the reverse map (revRosetta[dst] =
// src), plus how many variables were dropped (for the caller's
// active-count-delta consistency check).
func CompressVars(totalN int, keepVar func(rid.Idx) bool, permute func(src rid.Idx) (rid.Idx, bool)) (rosettaVars, revRosetta []rid.Idx, dropped int, err error) {
	rosettaVars = make([]rid.Idx, totalN)
	revRosetta = make([]rid.Idx, 0, totalN)
	next := rid.Idx(0)
	for src := 0; src < totalN; src++ {
		srcIdx := rid.Idx(src)
		if !keepVar(srcIdx) {
			rosettaVars[src] = rid.Deleted
			dropped++
			continue
		}
		dst := next
		if permute != nil {
			if override, ok := permute(srcIdx); ok {
				dst = override
			}
		}
		rosettaVars[src] = dst
		for rid.Idx(len(revRosetta)) <= dst {
			revRosetta = append(revRosetta, rid.Invalid)
		}
		revRosetta[dst] = srcIdx
		if dst == next {
			next++
		}
	}
	return rosettaVars, revRosetta, dropped, nil
}

// CompressEqus is CompressVars' equation-space analogue (spec §4.6
// "compress_equs"). isVacuousOK(ei) is consulted only for equations
// dropped by keepEqu; it must report whether the dropped equation's
// content is consistent with being vacuous (already deleted in the
// source, or an empty linear part + empty tree + a constant consistent
// with its cone) — returning false raises ModelInfeasible, which this
// function surfaces as an error rather than deciding itself.
func CompressEqus(totalM int, keepEqu func(rid.Idx) bool, isVacuousOK func(rid.Idx) (bool, error), permute func(src rid.Idx) (rid.Idx, bool)) (rosettaEqus []EquEntry, revRosetta []rid.Idx, err error) {
	rosettaEqus = make([]EquEntry, totalM)
	revRosetta = make([]rid.Idx, 0, totalM)
	next := rid.Idx(0)
	for src := 0; src < totalM; src++ {
		srcIdx := rid.Idx(src)
		if !keepEqu(srcIdx) {
			ok, err := isVacuousOK(srcIdx)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				return nil, nil, errModelInfeasible(srcIdx)
			}
			rosettaEqus[src] = EquEntry{Target: rid.Deleted}
			continue
		}
		dst := next
		if permute != nil {
			if override, ok := permute(srcIdx); ok {
				dst = override
			}
		}
		rosettaEqus[src] = Replacement(dst, false)
		for rid.Idx(len(revRosetta)) <= dst {
			revRosetta = append(revRosetta, rid.Invalid)
		}
		revRosetta[dst] = srcIdx
		if dst == next {
			next++
		}
	}
	return rosettaEqus, revRosetta, nil
}
