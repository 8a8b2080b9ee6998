// Package constraints implements the constraint store (spec C5, §3.4):
// independent lower/upper bounds per in-scope free variable, across all
// three variable kinds, plus solution extraction.
package constraints

import (
	"github.com/glyphlang/typecore/internal/types"
)

// UnaryBounds is the lower/upper bound pair tracked for one free unary
// variable.
type UnaryBounds struct {
	Lower []types.Type
	Upper []types.Type
}

// ListVariadicBounds / ParameterVariadicBounds mirror UnaryBounds for the
// other two variable kinds (spec §3.4: "for unaries, for
// parameter-variadics, for list-variadics").
type ListVariadicBounds struct {
	Lower []types.OrderedTypes
	Upper []types.OrderedTypes
}

type ParameterVariadicBounds struct {
	Lower [][]types.Parameter2
	Upper [][]types.Parameter2
}

// Set is an immutable-by-convention constraint set: every mutating method
// returns a new *Set rather than mutating in place (none of them ever
// returns nil or checks satisfiability), so that the order engine's "zero or more successor constraint
// sets" (spec §4.2.2) can be explored without aliasing bugs — the same
// discipline the teacher's Subst.Compose uses (builds a new map rather
// than mutating).
type Set struct {
	unary             map[string]UnaryBounds
	listVariadic      map[string]ListVariadicBounds
	parameterVariadic map[string]ParameterVariadicBounds
	fallbackToAny     map[string]bool
}

func New() *Set {
	return &Set{
		unary:             map[string]UnaryBounds{},
		listVariadic:      map[string]ListVariadicBounds{},
		parameterVariadic: map[string]ParameterVariadicBounds{},
		fallbackToAny:     map[string]bool{},
	}
}

func (s *Set) clone() *Set {
	out := New()
	for k, v := range s.unary {
		out.unary[k] = UnaryBounds{Lower: append([]types.Type{}, v.Lower...), Upper: append([]types.Type{}, v.Upper...)}
	}
	for k, v := range s.listVariadic {
		out.listVariadic[k] = ListVariadicBounds{Lower: append([]types.OrderedTypes{}, v.Lower...), Upper: append([]types.OrderedTypes{}, v.Upper...)}
	}
	for k, v := range s.parameterVariadic {
		out.parameterVariadic[k] = v
	}
	for k, v := range s.fallbackToAny {
		out.fallbackToAny[k] = v
	}
	return out
}

func (s *Set) UnaryBoundsFor(name string) UnaryBounds { return s.unary[name] }

// AddUnaryLowerBound adds a lower bound (spec §3.4) and returns a new Set.
// It never returns nil: the new bound is not checked against the bounds
// already recorded, so an unsatisfiable combination is not reported here.
func (s *Set) AddUnaryLowerBound(name string, t types.Type) *Set {
	out := s.clone()
	b := out.unary[name]
	b.Lower = append(b.Lower, t)
	out.unary[name] = b
	return out
}

func (s *Set) AddUnaryUpperBound(name string, t types.Type) *Set {
	out := s.clone()
	b := out.unary[name]
	b.Upper = append(b.Upper, t)
	out.unary[name] = b
	return out
}

func (s *Set) AddListVariadicLowerBound(name string, o types.OrderedTypes) *Set {
	out := s.clone()
	b := out.listVariadic[name]
	b.Lower = append(b.Lower, o)
	out.listVariadic[name] = b
	return out
}

func (s *Set) AddListVariadicUpperBound(name string, o types.OrderedTypes) *Set {
	out := s.clone()
	b := out.listVariadic[name]
	b.Upper = append(b.Upper, o)
	out.listVariadic[name] = b
	return out
}

// FallbackToAny marks a variable so that the order engine's resolveSubst
// maps it to Any when it has no lower or upper bound (spec §3.4
// "Fallback-to-any").
func (s *Set) FallbackToAny(name string) *Set {
	out := s.clone()
	out.fallbackToAny[name] = true
	return out
}

// trackedUnaryNames returns every unary variable name this set has any
// bound (or fallback marker) for.
func (s *Set) trackedUnaryNames() []string {
	seen := map[string]bool{}
	for k := range s.unary {
		seen[k] = true
	}
	for k := range s.fallbackToAny {
		seen[k] = true
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	return names
}
