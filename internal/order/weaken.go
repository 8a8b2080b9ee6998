package order

import (
	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/types"
)

// WeakenMutableLiterals implements spec §4.6: relaxes a literal
// container's already-inferred type towards an expected type, so e.g.
// `[1, 2]: List[object]` type-checks. isLiteral gates the whole rule —
// weakening only ever applies to a syntactic container literal at the
// expression in question, never to an arbitrary already-typed value
// that happens to share the same container shape.
func (e *Engine) WeakenMutableLiterals(cs *constraints.Set, isLiteral bool, resolved, expected types.Type) types.Type {
	if !isLiteral {
		return resolved
	}
	return e.weaken(cs, resolved, expected)
}

func (e *Engine) weaken(cs *constraints.Set, resolved, expected types.Type) types.Type {
	if inner, ok := types.IsOptional(expected); ok {
		return e.weaken(cs, resolved, inner)
	}

	if u, ok := expected.(types.Union); ok {
		for _, alt := range u.Alternatives {
			w := e.weaken(cs, resolved, alt)
			if len(e.SolveLessOrEqual(cs, w, expected)) > 0 {
				return w
			}
		}
		return resolved
	}

	if rp, ok := resolved.(types.Parametric); ok {
		if ep, ok := expected.(types.Parametric); ok &&
			isMutableContainerPair(rp.Name, ep.Name) && len(rp.Parameters) == 1 && len(ep.Parameters) == 1 {
			weakenedElem := e.weakenElement(cs, rp.Parameters[0].Single, ep.Parameters[0].Single)
			candidate := types.NewParametric(ep.Name, types.SingleParam(weakenedElem))
			if len(e.SolveLessOrEqual(cs, candidate, expected)) > 0 {
				return candidate
			}
			return resolved
		}
	}

	if rtd, ok := resolved.(types.TypedDictionary); ok {
		if etd, ok := expected.(types.TypedDictionary); ok {
			return e.weakenTypedDict(cs, rtd, etd)
		}
	}

	return resolved
}

// weakenElement applies the comparator to one element type: if it
// already fits, widen it all the way to the expected slot (the rule's
// "weaken... then union the weakened element types" collapses to a
// single check-and-substitute here, since the element type this package
// sees is already the single unified type an upstream element-by-element
// inference pass folded together, not a per-element literal list —
// coreast has no list/dict/set literal expression node carrying
// individual elements; see DESIGN.md).
func (e *Engine) weakenElement(cs *constraints.Set, actual, expected types.Type) types.Type {
	if len(e.SolveLessOrEqual(cs, actual, expected)) > 0 {
		return expected
	}
	return e.Join(actual, expected)
}

func (e *Engine) weakenTypedDict(cs *constraints.Set, resolved, expected types.TypedDictionary) types.Type {
	fields := make([]types.TypedDictionaryField, 0, len(expected.Fields))
	for _, ef := range expected.Fields {
		rf, ok := resolved.Field(ef.Name)
		if !ok {
			if expected.Total {
				return resolved
			}
			continue
		}
		fields = append(fields, types.TypedDictionaryField{Name: ef.Name, Type: e.weaken(cs, rf.Type, ef.Type)})
	}
	return types.TypedDictionary{Name: expected.Name, Fields: fields, Total: expected.Total}
}

// isMutableContainerPair reports whether a literal's concrete container
// name (always "list"/"set"/"dict", since that is what a literal
// expression infers to) may be weakened towards the expected container
// name, covering the `typing.Sequence`/`Iterable`/`Mapping`/`AbstractSet`
// re-clothing spec §4.6 names.
func isMutableContainerPair(actual, expected string) bool {
	switch actual {
	case "list":
		switch expected {
		case "list", "List", "Sequence", "Iterable":
			return true
		}
	case "set":
		switch expected {
		case "set", "Set", "AbstractSet", "Iterable":
			return true
		}
	case "dict":
		switch expected {
		case "dict", "Dict", "Mapping":
			return true
		}
	}
	return false
}
