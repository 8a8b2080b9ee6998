package order

import (
	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/ordered"
	"github.com/glyphlang/typecore/internal/types"
)

// SolveOrderedTypesLessOrEqual implements spec §4.2.6.
//
// The "synthesize one fresh unary per bound element, substitute through
// c's mappers" branch of the Concrete-vs-Concatenation case is
// deliberately simplified: this implementation binds the concatenation's
// middle variable directly to the leftover bound slice in every case,
// rather than threading per-element mapper substitution, since no
// SPEC_FULL.md component yet produces a mapped ListVariadicMiddle (every
// caller builds bare middles). See DESIGN.md.
func (e *Engine) SolveOrderedTypesLessOrEqual(cs *constraints.Set, left, right types.OrderedTypes) []*constraints.Set {
	if left.Kind == types.OrderedConcrete && right.Kind == types.OrderedConcrete {
		if len(left.Elements) != len(right.Elements) {
			return nil
		}
		results := []*constraints.Set{cs}
		for i := range left.Elements {
			var next []*constraints.Set
			for _, c := range results {
				next = append(next, e.SolveLessOrEqual(c, left.Elements[i], right.Elements[i])...)
			}
			results = next
			if len(results) == 0 {
				return nil
			}
		}
		return results
	}

	if left.Kind == types.OrderedConcrete && right.Kind == types.OrderedConcatenation {
		split, ok := ordered.SplitAroundBound(right, left.Elements)
		if !ok {
			return nil
		}
		results := e.solvePairwise(cs, right.Head, split.HeadBound)
		if results == nil {
			return nil
		}
		results = e.solvePairwiseMulti(results, right.Tail, split.TailBound)
		if len(results) == 0 {
			return nil
		}
		var out []*constraints.Set
		for _, c := range results {
			out = append(out, c.AddListVariadicLowerBound(right.Middle.Variable, types.OrderedTypes{Kind: types.OrderedConcrete, Elements: split.MiddleBound}))
		}
		return out
	}

	if left.Kind == types.OrderedConcatenation && right.Kind == types.OrderedConcrete {
		split, ok := ordered.SplitAroundBound(left, right.Elements)
		if !ok {
			return nil
		}
		results := e.solvePairwise(cs, split.HeadBound, left.Head)
		if results == nil {
			return nil
		}
		results = e.solvePairwiseMulti(results, split.TailBound, left.Tail)
		if len(results) == 0 {
			return nil
		}
		var out []*constraints.Set
		for _, c := range results {
			out = append(out, c.AddListVariadicUpperBound(left.Middle.Variable, types.OrderedTypes{Kind: types.OrderedConcrete, Elements: split.MiddleBound}))
		}
		return out
	}

	// Concatenation vs Concatenation.
	if len(left.Head) == 0 && len(left.Tail) == 0 && left.Middle.IsBare() {
		out := []*constraints.Set{cs.AddListVariadicUpperBound(left.Middle.Variable, right)}
		if len(right.Head) == 0 && len(right.Tail) == 0 && right.Middle.IsBare() {
			out = append(out, cs.AddListVariadicLowerBound(right.Middle.Variable, left))
		}
		return out
	}
	if len(right.Head) == 0 && len(right.Tail) == 0 && right.Middle.IsBare() {
		return []*constraints.Set{cs.AddListVariadicLowerBound(right.Middle.Variable, left)}
	}

	// Neither side is a single bare variable: spec §4.2.6 "otherwise emit no
	// constraints" — the comparison trivially succeeds without refining cs.
	return []*constraints.Set{cs}
}

func (e *Engine) solvePairwise(cs *constraints.Set, lefts, rights []types.Type) []*constraints.Set {
	if len(lefts) != len(rights) {
		return nil
	}
	results := []*constraints.Set{cs}
	for i := range lefts {
		var next []*constraints.Set
		for _, c := range results {
			next = append(next, e.SolveLessOrEqual(c, lefts[i], rights[i])...)
		}
		results = next
		if len(results) == 0 {
			return nil
		}
	}
	return results
}

func (e *Engine) solvePairwiseMulti(cs []*constraints.Set, lefts, rights []types.Type) []*constraints.Set {
	var out []*constraints.Set
	for _, c := range cs {
		out = append(out, e.solvePairwise(c, lefts, rights)...)
	}
	return out
}
