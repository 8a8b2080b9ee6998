// Package ordered implements spec C3's operations over the OrderedTypes
// data shape defined in package types: splitting a concatenation around a
// required bounded length, and the variance-aware zip primitive spec §9
// calls "the single most error-prone primitive" (mixing unary,
// list-variadic, and parameter-variadic parameters against actual
// arguments). Both are written as total functions returning ok=false on
// any shape mismatch, per §9's "fail atomically rather than ad-hoc
// per-variant" guidance.
package ordered

import "github.com/glyphlang/typecore/internal/types"

// Len returns the length of a concrete OrderedTypes, or ok=false if it is
// a concatenation (whose length is not statically known).
func Len(o types.OrderedTypes) (int, bool) {
	if o.Kind != types.OrderedConcrete {
		return 0, false
	}
	return len(o.Elements), true
}

// Split is the result of SplitAroundBound, which splits a concatenation
// `head... ++ middle ++ tail...` around a concrete bound of the given length, per spec §4.2.6: the head
// and tail slices of the concatenation must fit within bound's length, and
// what's left over (the part overlapping middle) is returned as
// bound-local slices so the caller can bind or element-wise-solve middle
// against them.
type Split struct {
	// HeadBound / TailBound are the slices of `bound` that line up with
	// the concatenation's Head / Tail.
	HeadBound []types.Type
	TailBound []types.Type
	// MiddleBound is the (possibly empty) slice of `bound` that lines up
	// with `middle`.
	MiddleBound []types.Type
}

func SplitAroundBound(c types.OrderedTypes, bound []types.Type) (Split, bool) {
	if c.Kind != types.OrderedConcatenation {
		return Split{}, false
	}
	if len(bound) < len(c.Head)+len(c.Tail) {
		return Split{}, false
	}
	headBound := bound[:len(c.Head)]
	tailBound := bound[len(bound)-len(c.Tail):]
	middleBound := bound[len(c.Head) : len(bound)-len(c.Tail)]
	return Split{HeadBound: headBound, TailBound: tailBound, MiddleBound: middleBound}, true
}

// ZipKind tags what an actual parameter position was matched against.
type ZipKind int

const (
	ZipUnary ZipKind = iota
	ZipListVariadic
	ZipParameterVariadic
)

// ZippedPair is one tagged triple produced by Zip: a declared variable
// kind, the variable's name, and the actual ordered-types / parameter
// slot it was matched against (as a generic types.Type — for ZipListVariadic
// and ZipParameterVariadic the caller downcasts via the accompanying
// Ordered/ParamsOf fields).
type ZippedPair struct {
	Kind     ZipKind
	Name     string
	Actual   types.Type        // ZipUnary
	Ordered  *types.OrderedTypes // ZipListVariadic
	ParamsOf *types.CallableParameters
}

// DeclaredSlot describes one declared type-parameter slot of a class or
// generic alias (spec C4 "declared type-parameters", spec §4.2.2
// "zips the resulting parameter list with the declared variance").
type DeclaredSlot struct {
	Kind     ZipKind
	Name     string
	Variance types.Variance // meaningful for ZipUnary
}

// Zip pairs declared slots against actual parameters, failing atomically
// (returning ok=false, nil) the moment shapes disagree rather than
// producing a partial, silently-truncated result.
func Zip(declared []DeclaredSlot, actual []types.Parameter) ([]ZippedPair, bool) {
	if len(declared) != len(actual) {
		return nil, false
	}
	out := make([]ZippedPair, 0, len(declared))
	for i, d := range declared {
		a := actual[i]
		switch d.Kind {
		case ZipUnary:
			if a.Single == nil {
				return nil, false
			}
			out = append(out, ZippedPair{Kind: ZipUnary, Name: d.Name, Actual: a.Single})
		case ZipListVariadic:
			if a.Group == nil {
				return nil, false
			}
			g := *a.Group
			out = append(out, ZippedPair{Kind: ZipListVariadic, Name: d.Name, Ordered: &g})
		case ZipParameterVariadic:
			if a.CallableParameters == nil {
				return nil, false
			}
			cp := *a.CallableParameters
			out = append(out, ZippedPair{Kind: ZipParameterVariadic, Name: d.Name, ParamsOf: &cp})
		default:
			return nil, false
		}
	}
	return out, true
}
