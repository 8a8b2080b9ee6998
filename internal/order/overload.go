package order

import (
	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/types"
)

// OverloadResult is one successful overload match (spec §4.2.4): a return
// type and the constraint set that was sufficient to reach it.
type OverloadResult struct {
	Return      types.Type
	Constraints *constraints.Set
}

// SimulateSignatureSelect implements spec §4.2.4: for each overload,
// freshen its free variables, solve parameter-list <= parameter-list
// against the precondition, discard solutions that leak a freshened
// variable, and emit (instantiated return, remaining constraints).
//
// calledAs represents the call site as a parameter list in the same
// Overload shape as a declaration — this lets overload-vs-overload
// comparisons (spec §4.2.2 Callable <= Callable) and true call-site
// matching share the same matching routine; only positional (including
// anonymous-positional) matching is implemented here: named/keyword,
// double-star, and concatenation matching against the call site are not
// done here. Package signature (C7) does its own arity matching and does
// not call this.
func (e *Engine) SimulateSignatureSelect(callable types.Callable, calledAs types.Overload, cs *constraints.Set, reg *types.Registry) []OverloadResult {
	var out []OverloadResult
	for _, o := range callable.AllOverloads() {
		freshened, renamed := e.freshenOverload(o, reg)
		if len(freshened.Defined) != len(calledAs.Defined) {
			continue
		}

		results := []*constraints.Set{cs}
		for i := range calledAs.Defined {
			var next []*constraints.Set
			for _, c := range results {
				next = append(next, e.SolveLessOrEqual(c, calledAs.Defined[i].Annotation, freshened.Defined[i].Annotation)...)
			}
			results = next
			if len(results) == 0 {
				break
			}
		}

		for _, c := range results {
			if leaksFreshVariable(c, renamed) {
				continue
			}
			ret := types.Apply(freshened.Annotation, e.resolveSubst(c), false)
			out = append(out, OverloadResult{Return: ret, Constraints: c})
		}

		// Once any overload in source order produces a match, later ones
		// are not attempted. AllOverloads yields the implementation only
		// for a callable with no overloads.
		if len(out) > 0 {
			break
		}
	}
	return out
}

// freshenOverload renames every free unary variable in o to a brand-new
// name in a fresh namespace (spec §3.2), returning the renamed overload
// and a map from fresh name back to original name (used by
// leaksFreshVariable).
func (e *Engine) freshenOverload(o types.Overload, reg *types.Registry) (types.Overload, map[string]string) {
	wrapper := types.Callable{Kind: types.CallableAnonymous, Implementation: o}
	free := types.Free(wrapper)

	ns := reg.FreshNamespace()
	subst := types.NewSubst()
	renamed := map[string]string{}
	for _, name := range free.Unary {
		info, _ := reg.Unary(name)
		fresh := reg.FreshUnary(name, ns, info.Constraints, info.Variance)
		subst.Unary[name] = fresh
		renamed[fresh.Name] = name
	}

	applied := types.Apply(wrapper, subst, false).(types.Callable)
	return applied.Implementation, renamed
}

// leaksFreshVariable reports whether any bound recorded against a
// non-freshened variable mentions one of the freshened variables —
// such a solution is unusable since the freshened variable has no
// meaning outside this one overload-matching attempt (spec §4.2.4
// "discard solutions whose bounds leak a freshened variable").
func leaksFreshVariable(cs *constraints.Set, renamed map[string]string) bool {
	for _, name := range cs.TrackedUnary() {
		if _, isFresh := renamed[name]; isFresh {
			continue
		}
		b := cs.UnaryBoundsFor(name)
		all := append(append([]types.Type{}, b.Lower...), b.Upper...)
		for _, t := range all {
			free := types.Free(t)
			for _, fn := range free.Unary {
				if _, isFresh := renamed[fn]; isFresh {
					return true
				}
			}
		}
	}
	return false
}

// ResolveSubst exposes resolveSubst for callers outside this package
// (e.g. internal/attributes binding a receiver via a solved constraint
// set) that need the same partial-solution extraction this package uses
// internally for overload simulation.
func (e *Engine) ResolveSubst(cs *constraints.Set) types.Subst {
	return e.resolveSubst(cs)
}

// resolveSubst turns a solved constraint set into a best-effort Subst:
// the join of all lower bounds when present, else the first upper bound,
// else Any for variables explicitly marked fallback-to-any. This is the
// "extract a partial solution" step of spec §4.2.4 and §3.4.
func (e *Engine) resolveSubst(cs *constraints.Set) types.Subst {
	s := types.NewSubst()
	for _, name := range cs.TrackedUnary() {
		b := cs.UnaryBoundsFor(name)
		switch {
		case len(b.Lower) > 0:
			t := b.Lower[0]
			for _, other := range b.Lower[1:] {
				t = e.Join(t, other)
			}
			s.Unary[name] = t
		case len(b.Upper) > 0:
			s.Unary[name] = b.Upper[0]
		case cs.IsFallbackToAny(name):
			s.Unary[name] = types.Any
		}
	}
	return s
}
