package ctr

import (
	"github.com/reshop/reshop/internal/rherr"
	"github.com/reshop/reshop/internal/rid"
)

// RegisterEval records that, once stage finishes, vi's reported value
// must come from evaluating ei rather than the solver's own return
// (spec §3.7 "equvar_evals" — e.g. a slack or defined variable that a
// presolve stage introduced and nothing else outputs directly).
func (c *Container) RegisterEval(stage int, ei, vi rid.Idx) {
	c.EquVarEvals[stage] = append(c.EquVarEvals[stage], EvalPair{Equ: ei, Var: vi})
}

// EvalOrder topologically sorts stage's deferred-evaluation pairs so
// that an equation depending on another pair's variable is evaluated
// after it (spec §8 "deferred evaluation"). It uses Kahn's algorithm and
// surfaces a cycle as Inconsistency rather than looping forever.
func (c *Container) EvalOrder(stage int) ([]EvalPair, error) {
	pairs := c.EquVarEvals[stage]
	if len(pairs) == 0 {
		return nil, nil
	}

	producedBy := make(map[rid.Idx]int, len(pairs))
	for i, p := range pairs {
		producedBy[p.Var] = i
	}

	adj := make([][]int, len(pairs))
	indeg := make([]int, len(pairs))
	for i, p := range pairs {
		e, err := c.Equ(p.Equ)
		if err != nil {
			return nil, err
		}
		deps := map[int]bool{}
		for j := 0; j < e.Lequ.Len(); j++ {
			vi, _ := e.Lequ.At(j)
			if dep, ok := producedBy[vi]; ok && dep != i {
				deps[dep] = true
			}
		}
		if e.HasTree() {
			for _, vi := range e.Tree.VList() {
				if dep, ok := producedBy[vi]; ok && dep != i {
					deps[dep] = true
				}
			}
		}
		for dep := range deps {
			adj[dep] = append(adj[dep], i)
			indeg[i]++
		}
	}

	queue := make([]int, 0, len(pairs))
	for i, d := range indeg {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]EvalPair, 0, len(pairs))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, pairs[n])
		for _, m := range adj[n] {
			indeg[m]--
			if indeg[m] == 0 {
				queue = append(queue, m)
			}
		}
	}
	if len(order) != len(pairs) {
		return nil, rherr.E(rherr.Inconsistency, "ctr.EvalOrder", "deferred-evaluation graph for stage %d has a cycle", stage)
	}
	return order, nil
}
