// Package classes implements the class hierarchy (spec C4, §3.5): an
// indexed DAG of nominal class edges, generic parameterization, and the
// BFS/linearization queries built on top of it. Every class name is
// interned to a dense ClassIndex the way the spec requires ("every class
// name is interned to a dense ClassIndex"), mirroring the teacher's own
// intern-by-dense-index habit (see internal/symbols's scope chain, which
// interns names into one flat store per scope) even though the teacher
// itself has no nominal class graph to index.
package classes

import (
	"github.com/glyphlang/typecore/internal/coreerrors"
	"github.com/glyphlang/typecore/internal/ordered"
	"github.com/glyphlang/typecore/internal/types"
)

// ClassIndex is a dense handle for an interned class name.
type ClassIndex int

// Edge is one edge out of a class toward a parent, carrying the
// parameters the parent is instantiated with (spec §3.5).
type Edge struct {
	Target     ClassIndex
	Parameters []types.Type
}

// ClassInfo is everything the hierarchy tracks about one class.
type ClassInfo struct {
	Index     ClassIndex
	Name      string
	Bases     []Edge
	Variables []ordered.DeclaredSlot // declared type-parameters, in order
}

// Hierarchy is the indexed DAG (spec §3.5).
type Hierarchy struct {
	byName  map[string]ClassIndex
	classes []ClassInfo
}

func NewHierarchy() *Hierarchy {
	return &Hierarchy{byName: map[string]ClassIndex{}}
}

// Intern returns the ClassIndex for name, creating an empty entry (no
// bases, no variables) if this is the first time it's seen — callers
// populate bases/variables afterward via SetBases/SetVariables, which
// lets forward references between classes resolve without two-pass
// sequencing (mirrors the teacher's "IsPending" forward-declaration flag
// in symbols.Symbol).
func (h *Hierarchy) Intern(name string) ClassIndex {
	name = types.Intern(name)
	if idx, ok := h.byName[name]; ok {
		return idx
	}
	idx := ClassIndex(len(h.classes))
	h.classes = append(h.classes, ClassInfo{Index: idx, Name: name})
	h.byName[name] = idx
	return idx
}

func (h *Hierarchy) Contains(name string) bool {
	_, ok := h.byName[types.Intern(name)]
	return ok
}

func (h *Hierarchy) IndexOf(name string) (ClassIndex, bool) {
	idx, ok := h.byName[types.Intern(name)]
	return idx, ok
}

func (h *Hierarchy) Info(idx ClassIndex) (ClassInfo, bool) {
	if int(idx) < 0 || int(idx) >= len(h.classes) {
		return ClassInfo{}, false
	}
	return h.classes[idx], true
}

func (h *Hierarchy) SetBases(idx ClassIndex, bases []Edge) {
	h.classes[idx].Bases = bases
}

func (h *Hierarchy) SetVariables(idx ClassIndex, vars []ordered.DeclaredSlot) {
	h.classes[idx].Variables = vars
}

// Edges returns the declared parent edges of idx, or ok=false if idx is
// not a valid index at all (distinct from "has zero bases", which is a
// valid, populated root class).
func (h *Hierarchy) Edges(idx ClassIndex) ([]Edge, bool) {
	info, ok := h.Info(idx)
	if !ok {
		return nil, false
	}
	return info.Bases, true
}

// IsTransitiveSuccessor reports whether tgt is reachable from src by
// walking Bases edges (spec §3.5), via BFS with a visited set.
func (h *Hierarchy) IsTransitiveSuccessor(src, tgt ClassIndex) bool {
	if src == tgt {
		return true
	}
	visited := map[ClassIndex]bool{src: true}
	queue := []ClassIndex{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		edges, ok := h.Edges(cur)
		if !ok {
			continue
		}
		for _, e := range edges {
			if e.Target == tgt {
				return true
			}
			if !visited[e.Target] {
				visited[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}
	return false
}

// LeastUpperBound finds the minimum-weight common successor of a and b by
// parallel BFS (spec §3.5): the common ancestor reachable in the fewest
// combined steps from both.
func (h *Hierarchy) LeastUpperBound(a, b ClassIndex) (ClassIndex, bool) {
	distA := h.distances(a)
	distB := h.distances(b)

	best := ClassIndex(-1)
	bestWeight := -1
	for idx, da := range distA {
		if db, ok := distB[idx]; ok {
			weight := da + db
			if bestWeight == -1 || weight < bestWeight {
				bestWeight = weight
				best = idx
			}
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

func (h *Hierarchy) distances(start ClassIndex) map[ClassIndex]int {
	dist := map[ClassIndex]int{start: 0}
	queue := []ClassIndex{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		edges, ok := h.Edges(cur)
		if !ok {
			continue
		}
		for _, e := range edges {
			if _, seen := dist[e.Target]; !seen {
				dist[e.Target] = dist[cur] + 1
				queue = append(queue, e.Target)
			}
		}
	}
	return dist
}

// CheckIntegrity verifies the DAG is acyclic and that every class
// linearizes successfully (spec §3.5): "Invariants: acyclic; MRO
// linearization must succeed... A separate check_integrity pass verifies
// both."
func (h *Hierarchy) CheckIntegrity() []coreerrors.Error {
	var errs []coreerrors.Error
	for idx := range h.classes {
		ci := ClassIndex(idx)
		if h.hasCycleFrom(ci) {
			errs = append(errs, coreerrors.NewCyclic())
			continue
		}
		if _, err := h.Linearize(ci); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

func (h *Hierarchy) hasCycleFrom(start ClassIndex) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[ClassIndex]int{}
	var visit func(ClassIndex) bool
	visit = func(cur ClassIndex) bool {
		color[cur] = gray
		edges, _ := h.Edges(cur)
		for _, e := range edges {
			switch color[e.Target] {
			case gray:
				return true
			case white:
				if visit(e.Target) {
					return true
				}
			}
		}
		color[cur] = black
		return false
	}
	return visit(start)
}
