package order

import (
	"github.com/glyphlang/typecore/internal/types"
)

// Join returns the least common supertype of a and b (spec §4.2.7):
// climbs both MROs in parallel via the hierarchy's LeastUpperBound,
// substituting parameter-wise according to variance; Top absorbs; Union
// distributes; Optional propagates.
func (e *Engine) Join(a, b types.Type) types.Type {
	a, b = types.Unwrap(a), types.Unwrap(b)

	if types.Equal(a, b) {
		return a
	}
	if types.IsTop(a) || types.IsTop(b) {
		return types.Top
	}
	if types.IsBottom(a) {
		return b
	}
	if types.IsBottom(b) {
		return a
	}

	if au, ok := a.(types.Union); ok {
		alts := make([]types.Type, len(au.Alternatives))
		copy(alts, au.Alternatives)
		return types.NewUnion(append(alts, b)...)
	}
	if bu, ok := b.(types.Union); ok {
		alts := make([]types.Type, len(bu.Alternatives))
		copy(alts, bu.Alternatives)
		return types.NewUnion(append(alts, a)...)
	}

	if td1, ok := a.(types.TypedDictionary); ok {
		if td2, ok := b.(types.TypedDictionary); ok {
			return joinTypedDictionaries(td1, td2)
		}
	}

	aName, aParams, aOK := classNameAndParams(a)
	bName, _, bOK := classNameAndParams(b)
	if aOK && bOK {
		aIdx, aIndexed := e.Classes.IndexOf(aName)
		bIdx, bIndexed := e.Classes.IndexOf(bName)
		if aIndexed && bIndexed {
			if lub, ok := e.Classes.LeastUpperBound(aIdx, bIdx); ok {
				info, ok := e.Classes.Info(lub)
				if ok && info.Name == aName {
					return a
				}
				if ok && len(info.Variables) == 0 {
					return types.NewPrimitive(info.Name)
				}
				if ok {
					instantiated, ok := e.Classes.InstantiateSuccessorsParameters(aParams, aIdx, info.Name)
					if ok {
						params := make([]types.Parameter, len(instantiated))
						for i, t := range instantiated {
							params[i] = types.SingleParam(t)
						}
						return types.NewParametric(info.Name, params...)
					}
				}
				return types.NewPrimitive(info.Name)
			}
		}
	}

	// No nominal relationship found: fall back to a plain union, the
	// always-sound over-approximation of "least common supertype".
	return types.NewUnion(a, b)
}

// joinTypedDictionaries checks for colliding keys (spec §4.2.7): if the
// same field name maps to incompatible types across the two dictionaries,
// falls back to a string-keyed mapping type rather than a merged
// TypedDictionary.
func joinTypedDictionaries(a, b types.TypedDictionary) types.Type {
	byName := map[string]types.Type{}
	for _, f := range a.Fields {
		byName[f.Name] = f.Type
	}
	for _, f := range b.Fields {
		if existing, ok := byName[f.Name]; ok && !types.Equal(existing, f.Type) {
			return types.NewParametric("Mapping",
				types.SingleParam(types.NewPrimitive("str")),
				types.SingleParam(types.Top))
		}
		byName[f.Name] = f.Type
	}
	fields := make([]types.TypedDictionaryField, 0, len(byName))
	for name, t := range byName {
		fields = append(fields, types.TypedDictionaryField{Name: name, Type: t})
	}
	return types.TypedDictionary{Name: a.Name, Fields: fields, Total: a.Total && b.Total}
}

// Meet returns the greatest common subtype of a and b (spec §4.2.7): Any
// absorbs in both directions.
func (e *Engine) Meet(a, b types.Type) types.Type {
	a, b = types.Unwrap(a), types.Unwrap(b)

	if types.Equal(a, b) {
		return a
	}
	if types.IsAny(a) {
		return b
	}
	if types.IsAny(b) {
		return a
	}
	if e.AlwaysLessOrEqual(a, b) {
		return a
	}
	if e.AlwaysLessOrEqual(b, a) {
		return b
	}
	return types.Bottom
}

// Widen implements spec §4.2.7: returns Top once iteration exceeds
// threshold, otherwise the join.
func (e *Engine) Widen(previous, next types.Type, iteration, threshold int) types.Type {
	if iteration > threshold {
		return types.Top
	}
	return e.Join(previous, next)
}

// IsCompatibleWith is a relaxed less-or-equal (spec §4.2.7): used for
// assignment-position checks where Top-on-the-right is tolerated and Any
// on either side always succeeds.
func (e *Engine) IsCompatibleWith(left, right types.Type) bool {
	if types.IsAny(left) || types.IsAny(right) || types.IsTop(right) {
		return true
	}
	return e.AlwaysLessOrEqual(left, right)
}
