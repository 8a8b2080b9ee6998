package constraints

import "github.com/glyphlang/typecore/internal/types"

// Solution is the result of solving a Set: one concrete (or still-generic,
// for unresolved fallback-to-any cases) type per tracked variable, of
// whichever kind it was tracked as (spec §3.4 "instantiate(solution, t)").
type Solution struct {
	Unary             map[string]types.Type
	ListVariadic      map[string]types.OrderedTypes
	ParameterVariadic map[string][]types.Parameter2
}

func NewSolution() Solution {
	return Solution{
		Unary:             map[string]types.Type{},
		ListVariadic:      map[string]types.OrderedTypes{},
		ParameterVariadic: map[string][]types.Parameter2{},
	}
}

// AsSubst converts a Solution to a types.Subst so it can be threaded
// through types.Apply — a Solution is conceptually a Subst that is known
// to be fully resolved (every bound variable maps to a concrete type).
func (s Solution) AsSubst() types.Subst {
	subst := types.NewSubst()
	for k, v := range s.Unary {
		subst.Unary[k] = v
	}
	for k, v := range s.ListVariadic {
		subst.ListVariadic[k] = v
	}
	for k, v := range s.ParameterVariadic {
		subst.ParameterVariadic[k] = v
	}
	return subst
}

// Instantiate applies a solution to t (spec §3.4).
func Instantiate(solution Solution, t types.Type) types.Type {
	return types.Apply(t, solution.AsSubst(), false)
}

// TrackedUnary exposes every unary variable name this set has a bound or
// fallback marker for, so the order engine can iterate them when solving
// (the join/meet computation itself lives in package order, which is the
// only package allowed to depend on both constraints and classes without
// creating an import cycle back into constraints).
func (s *Set) TrackedUnary() []string {
	return s.trackedUnaryNames()
}

func (s *Set) TrackedListVariadic() []string {
	names := make([]string, 0, len(s.listVariadic))
	for k := range s.listVariadic {
		names = append(names, k)
	}
	return names
}

func (s *Set) IsFallbackToAny(name string) bool {
	return s.fallbackToAny[name]
}

// ListVariadicBoundsFor returns the tracked bounds for a list-variadic
// name.
func (s *Set) ListVariadicBoundsFor(name string) ListVariadicBounds {
	return s.listVariadic[name]
}

// Merge combines two constraint sets, concatenating bound lists per
// variable and unioning fallback markers — used when two independent
// branches of a subtyping solve (e.g. both sides of a Union) each produce
// their own successor Set and must be recombined (spec §4.2.2 "zero or
// more successor constraint sets").
func Merge(a, b *Set) *Set {
	out := a.clone()
	for k, v := range b.unary {
		cur := out.unary[k]
		cur.Lower = append(cur.Lower, v.Lower...)
		cur.Upper = append(cur.Upper, v.Upper...)
		out.unary[k] = cur
	}
	for k, v := range b.listVariadic {
		cur := out.listVariadic[k]
		cur.Lower = append(cur.Lower, v.Lower...)
		cur.Upper = append(cur.Upper, v.Upper...)
		out.listVariadic[k] = cur
	}
	for k, v := range b.parameterVariadic {
		cur := out.parameterVariadic[k]
		cur.Lower = append(cur.Lower, v.Lower...)
		cur.Upper = append(cur.Upper, v.Upper...)
		out.parameterVariadic[k] = cur
	}
	for k := range b.fallbackToAny {
		out.fallbackToAny[k] = true
	}
	return out
}
