package order

import (
	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/ordered"
	"github.com/glyphlang/typecore/internal/types"
)

// SolveLessOrEqual is the C6 entry point (spec §4.2.2): given a
// precondition constraint set, returns zero or more sufficient successor
// sets. An empty result means no satisfying assignment exists.
func (e *Engine) SolveLessOrEqual(cs *constraints.Set, left, right types.Type) []*constraints.Set {
	left = types.Unwrap(left)
	right = types.Unwrap(right)

	// Reflexivity.
	if types.Equal(left, right) {
		return []*constraints.Set{cs}
	}

	// Absorbing cases: everything <= Top, everything <= Any, Any <=
	// everything, Bottom <= everything.
	if types.IsTop(right) || types.IsAny(right) || types.IsAny(left) || types.IsBottom(left) {
		return []*constraints.Set{cs}
	}

	// Free variables on either side: both orientations are tried when both
	// sides are free, to keep the search complete (spec §4.2.2).
	leftVar, leftIsVar := left.(types.Variable)
	rightVar, rightIsVar := right.(types.Variable)
	if leftIsVar || rightIsVar {
		var out []*constraints.Set
		if leftIsVar {
			out = append(out, cs.AddUnaryUpperBound(leftVar.Name, right))
		}
		if rightIsVar {
			out = append(out, cs.AddUnaryLowerBound(rightVar.Name, left))
		}
		return out
	}

	// Union on the left: every alternative must solve (conjunction).
	if lu, ok := left.(types.Union); ok {
		results := []*constraints.Set{cs}
		for _, alt := range lu.Alternatives {
			var next []*constraints.Set
			for _, c := range results {
				next = append(next, e.SolveLessOrEqual(c, alt, right)...)
			}
			results = next
			if len(results) == 0 {
				return nil
			}
		}
		return results
	}

	// Union on the right: if every variable on the right is already
	// resolved (no free variables at all), a single successful alternative
	// suffices. Otherwise try every alternative and keep every success
	// (disjunction).
	if ru, ok := right.(types.Union); ok {
		if !types.ContainsVariable(right) {
			for _, alt := range ru.Alternatives {
				if res := e.SolveLessOrEqual(cs, left, alt); len(res) > 0 {
					return res
				}
			}
			return nil
		}
		var out []*constraints.Set
		for _, alt := range ru.Alternatives {
			out = append(out, e.SolveLessOrEqual(cs, left, alt)...)
		}
		return out
	}

	switch l := left.(type) {
	case types.Literal:
		if r, ok := right.(types.Literal); ok {
			if l.Kind == r.Kind && l.Bool == r.Bool && l.Int == r.Int && l.String == r.String {
				return []*constraints.Set{cs}
			}
			return nil
		}
		return e.SolveLessOrEqual(cs, weakenLiteral(l), right)

	case types.Tuple:
		if r, ok := right.(types.Tuple); ok {
			return e.solveTupleTuple(cs, l, r)
		}
		return nil

	case types.TypedDictionary:
		if r, ok := right.(types.TypedDictionary); ok {
			return e.solveTypedDictTypedDict(cs, l, r)
		}
		return nil

	case types.Callable:
		if r, ok := right.(types.Callable); ok {
			return e.solveCallableCallable(cs, l, r)
		}
		if e.Attributes != nil && e.Attributes.IsProtocol(right) {
			return e.solveProtocol(cs, left, right)
		}
		return nil

	case types.Primitive:
		return e.solveNominalOrProtocol(cs, l.Name, nil, left, right)

	case types.Parametric:
		actualParams := make([]types.Type, len(l.Parameters))
		for i, p := range l.Parameters {
			actualParams[i] = p.Single
		}
		return e.solveNominalOrProtocol(cs, l.Name, actualParams, left, right)
	}

	return nil
}

// AlwaysLessOrEqual is a convenience wrapper used where no incoming
// constraint set exists yet (spec §4.2's `always_less_or_equal`).
func (e *Engine) AlwaysLessOrEqual(left, right types.Type) bool {
	return len(e.SolveLessOrEqual(constraints.New(), left, right)) > 0
}

// solveNominalOrProtocol handles Primitive/Parametric on the left against
// any right: walk the hierarchy if right also names a class, substituting
// parameters according to declared variance; otherwise fall back to
// protocol conformance (spec §4.2.2 "Primitive vs primitive: transitive
// successor check, plus protocol conformance as fallback" — extended here
// to Parametric since the variance-zip machinery is shared).
func (e *Engine) solveNominalOrProtocol(cs *constraints.Set, leftName string, leftParams []types.Type, left, right types.Type) []*constraints.Set {
	rightName, rightParams, ok := classNameAndParams(right)
	if !ok {
		if e.Attributes != nil && e.Attributes.IsProtocol(right) {
			return e.solveProtocol(cs, left, right)
		}
		return nil
	}

	leftIdx, ok := e.Classes.IndexOf(leftName)
	if !ok {
		return nil
	}
	rightIdx, ok := e.Classes.IndexOf(rightName)
	if !ok {
		if e.Attributes != nil && e.Attributes.IsProtocol(right) {
			return e.solveProtocol(cs, left, right)
		}
		return nil
	}
	if !e.Classes.IsTransitiveSuccessor(leftIdx, rightIdx) {
		if e.Attributes != nil && e.Attributes.IsProtocol(right) {
			return e.solveProtocol(cs, left, right)
		}
		return nil
	}

	instantiated, ok := e.Classes.InstantiateSuccessorsParameters(leftParams, leftIdx, rightName)
	if !ok {
		instantiated = leftParams
	}

	info, ok := e.Classes.Info(rightIdx)
	if !ok || len(info.Variables) == 0 || len(rightParams) == 0 {
		return []*constraints.Set{cs}
	}

	results := []*constraints.Set{cs}
	n := len(info.Variables)
	if len(instantiated) < n {
		n = len(instantiated)
	}
	if len(rightParams) < n {
		n = len(rightParams)
	}
	for i := 0; i < n; i++ {
		slot := info.Variables[i]
		a, b, ok := zipUnarySlot(slot, instantiated[i], rightParams[i])
		if !ok {
			continue
		}
		var next []*constraints.Set
		for _, c := range results {
			switch slot.Variance {
			case types.Covariant:
				next = append(next, e.SolveLessOrEqual(c, a, b)...)
			case types.Contravariant:
				next = append(next, e.SolveLessOrEqual(c, b, a)...)
			case types.Invariant:
				for _, c2 := range e.SolveLessOrEqual(c, a, b) {
					next = append(next, e.SolveLessOrEqual(c2, b, a)...)
				}
			}
		}
		results = next
		if len(results) == 0 {
			return nil
		}
	}
	return results
}

// zipUnarySlot runs the declared variance-zip primitive (internal/ordered)
// over a single declared slot against its left- and right-hand actual
// parameter, rather than inlining the "is this slot unary" check: slot
// only yields a (left, right) pair to compare when both sides zip as
// ZipUnary, so list-variadic and parameter-variadic class variables (which
// solveNominalOrProtocol's flat []types.Type parameter lists can't carry
// Group/CallableParameters for) fall out of the comparison the same way
// ordered.Zip itself would reject a shape mismatch.
func zipUnarySlot(slot ordered.DeclaredSlot, left, right types.Type) (types.Type, types.Type, bool) {
	declared := []ordered.DeclaredSlot{slot}
	leftPairs, ok := ordered.Zip(declared, []types.Parameter{{Single: left}})
	if !ok || leftPairs[0].Kind != ordered.ZipUnary {
		return nil, nil, false
	}
	rightPairs, ok := ordered.Zip(declared, []types.Parameter{{Single: right}})
	if !ok {
		return nil, nil, false
	}
	return leftPairs[0].Actual, rightPairs[0].Actual, true
}

func classNameAndParams(t types.Type) (string, []types.Type, bool) {
	switch v := t.(type) {
	case types.Primitive:
		return v.Name, nil, true
	case types.Parametric:
		params := make([]types.Type, len(v.Parameters))
		for i, p := range v.Parameters {
			params[i] = p.Single
		}
		return v.Name, params, true
	default:
		return "", nil, false
	}
}

func weakenLiteral(l types.Literal) types.Type {
	switch l.Kind {
	case types.LiteralBool:
		return types.NewPrimitive("bool")
	case types.LiteralInt:
		return types.NewPrimitive("int")
	case types.LiteralString:
		return types.NewPrimitive("str")
	default:
		return types.Top
	}
}

func (e *Engine) solveTupleTuple(cs *constraints.Set, l, r types.Type) []*constraints.Set {
	lt, rt := l.(types.Tuple), r.(types.Tuple)

	if lt.Kind == types.TupleBounded && rt.Kind == types.TupleBounded {
		lLen, lok := ordered.Len(lt.Bounded)
		rLen, rok := ordered.Len(rt.Bounded)
		if !lok || !rok || lLen != rLen {
			return nil
		}
		results := []*constraints.Set{cs}
		for i := 0; i < lLen; i++ {
			var next []*constraints.Set
			for _, c := range results {
				next = append(next, e.SolveLessOrEqual(c, lt.Bounded.Elements[i], rt.Bounded.Elements[i])...)
			}
			results = next
			if len(results) == 0 {
				return nil
			}
		}
		return results
	}

	if lt.Kind == types.TupleBounded && rt.Kind == types.TupleUnbounded {
		lLen, ok := ordered.Len(lt.Bounded)
		if !ok {
			return nil
		}
		elems := make([]types.Type, lLen)
		copy(elems, lt.Bounded.Elements)
		u := types.NewUnion(elems...)
		return e.SolveLessOrEqual(cs, u, rt.Elements)
	}

	return nil
}

func (e *Engine) solveTypedDictTypedDict(cs *constraints.Set, l, r types.Type) []*constraints.Set {
	lt, rt := l.(types.TypedDictionary), r.(types.TypedDictionary)
	results := []*constraints.Set{cs}
	for _, rf := range rt.Fields {
		lf, ok := lt.Field(rf.Name)
		if !ok {
			return nil
		}
		var next []*constraints.Set
		for _, c := range results {
			fwd := e.SolveLessOrEqual(c, lf.Type, rf.Type)
			for _, c2 := range fwd {
				next = append(next, e.SolveLessOrEqual(c2, rf.Type, lf.Type)...)
			}
		}
		results = next
		if len(results) == 0 {
			return nil
		}
	}
	return results
}

// solveCallableCallable implements reversed parameter subtyping (spec
// §4.2.2): the callee's parameters must accept anything the caller's
// signature promises, so argument types are contravariant and the return
// type is covariant. Overload simulation (§4.2.4) drives the general case
// of calling a Callable; this direct comparison covers the structural
// callable-vs-callable subtyping question asked outside of a call.
func (e *Engine) solveCallableCallable(cs *constraints.Set, l, r types.Type) []*constraints.Set {
	lc, rc := l.(types.Callable), r.(types.Callable)
	lo := lc.AllOverloads()
	ro := rc.AllOverloads()
	if len(lo) == 0 || len(ro) == 0 {
		return []*constraints.Set{cs}
	}
	lov, rov := lo[0], ro[0]
	if len(lov.Defined) != len(rov.Defined) {
		return nil
	}
	results := []*constraints.Set{cs}
	for i := range lov.Defined {
		var next []*constraints.Set
		for _, c := range results {
			next = append(next, e.SolveLessOrEqual(c, rov.Defined[i].Annotation, lov.Defined[i].Annotation)...)
		}
		results = next
		if len(results) == 0 {
			return nil
		}
	}
	var next []*constraints.Set
	for _, c := range results {
		next = append(next, e.SolveLessOrEqual(c, lov.Annotation, rov.Annotation)...)
	}
	return next
}
