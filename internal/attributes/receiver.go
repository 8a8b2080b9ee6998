package attributes

import (
	"fmt"

	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/ordered"
	"github.com/glyphlang/typecore/internal/types"
)

// InstantiateAgainstReceiver implements spec §4.4.3: binds an
// uninstantiated attribute against a concrete receiver type.
func (r *Resolver) InstantiateAgainstReceiver(attr Attribute, receiver types.Type) (types.Type, bool) {
	callable, isCallable := attr.Annotation.(types.Callable)
	if !isCallable {
		return instantiateFreeVarsToReceiver(attr.Annotation, receiver), true
	}

	switch attr.Kind {
	case AttrClassMethod, AttrNew:
		typeOfR := types.NewParametric("type", types.SingleParam(receiver))
		return bindImplicit(callable, typeOfR), true
	case AttrStaticMethod:
		return callable, true
	default:
		if callable.Implicit == nil {
			return callable, true
		}
		if r.Engine == nil {
			return bindImplicit(callable, receiver), true
		}
		results := r.Engine.SolveLessOrEqual(constraints.New(), receiver, callable.Implicit.Annotation)
		if len(results) == 0 {
			return nil, false
		}
		subst := r.Engine.ResolveSubst(results[0])
		bound := types.Apply(callable, subst, false).(types.Callable)
		return bindImplicit(bound, receiver), true
	}
}

func bindImplicit(c types.Callable, receiver types.Type) types.Callable {
	paramName := "self"
	if c.Implicit != nil {
		paramName = c.Implicit.ParamName
	}
	c.Implicit = &types.ImplicitReceiver{Annotation: receiver, ParamName: paramName}
	return c
}

// instantiateFreeVarsToReceiver implements the property special case of
// spec §4.4.3: "for properties with free type variables not declared on
// the class: instantiate all free variables to the receiver."
func instantiateFreeVarsToReceiver(t types.Type, receiver types.Type) types.Type {
	free := types.Free(t)
	if len(free.Unary) == 0 {
		return t
	}
	subst := types.NewSubst()
	for _, name := range free.Unary {
		subst.Unary[name] = receiver
	}
	return types.Apply(t, subst, false)
}

// SynthesizeTypedDictionaryOverloads builds the special method overloads
// a TypedDictionary receiver gets (spec §4.4.3): `__getitem__`,
// `__setitem__`, `get`, `setdefault`, `update`, and — when the dictionary
// is non-total — `pop`/`__delitem__`.
func SynthesizeTypedDictionaryOverloads(td types.TypedDictionary) Table {
	out := make(Table, 6)

	getOverloads := make([]types.Overload, len(td.Fields))
	setOverloads := make([]types.Overload, len(td.Fields))
	for i, f := range td.Fields {
		key := types.NewStringLiteral(f.Name)
		getOverloads[i] = types.Overload{
			Annotation:     f.Type,
			ParametersKind: types.ParametersDefined,
			Defined:        []types.Parameter2{{Kind: types.ParamPositionalOnly, Index: 0, Annotation: key}},
		}
		setOverloads[i] = types.Overload{
			Annotation:     types.NoneType,
			ParametersKind: types.ParametersDefined,
			Defined: []types.Parameter2{
				{Kind: types.ParamPositionalOnly, Index: 0, Annotation: key},
				{Kind: types.ParamPositionalOnly, Index: 1, Annotation: f.Type},
			},
		}
	}
	self := &types.ImplicitReceiver{Annotation: td, ParamName: "self"}

	out["__getitem__"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
		Kind: types.CallableNamed, Reference: "__getitem__", Overloads: getOverloads, Implicit: self,
	}}
	out["__setitem__"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
		Kind: types.CallableNamed, Reference: "__setitem__", Overloads: setOverloads, Implicit: self,
	}}
	out["get"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
		Kind: types.CallableNamed, Reference: "get", Overloads: getOverloads, Implicit: self,
	}}
	out["setdefault"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
		Kind: types.CallableNamed, Reference: "setdefault", Overloads: setOverloads, Implicit: self,
	}}
	out["update"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
		Kind:      types.CallableNamed,
		Reference: "update",
		Implementation: types.Overload{
			Annotation:     types.NoneType,
			ParametersKind: types.ParametersDefined,
			Defined:        []types.Parameter2{{Kind: types.ParamPositionalOnly, Index: 0, Annotation: td}},
		},
		Implicit: self,
	}}

	if !td.Total {
		out["pop"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
			Kind: types.CallableNamed, Reference: "pop", Overloads: getOverloads, Implicit: self,
		}}
		out["__delitem__"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
			Kind: types.CallableNamed, Reference: "__delitem__",
			Implementation: types.Overload{
				Annotation:     types.NoneType,
				ParametersKind: types.ParametersDefined,
				Defined:        []types.Parameter2{{Kind: types.ParamPositionalOnly, Index: 0, Annotation: types.NewPrimitive("str")}},
			},
			Implicit: self,
		}}
	}

	return out
}

// SynthesizeTupleGetItem implements the tuple special case of spec
// §4.4.3: one `__getitem__` overload per element index, keyed by
// `Literal[i]`.
func SynthesizeTupleGetItem(t types.Tuple) (Attribute, bool) {
	if t.Kind != types.TupleBounded {
		return Attribute{}, false
	}
	n, ok := ordered.Len(t.Bounded)
	if !ok {
		return Attribute{}, false
	}
	overloads := make([]types.Overload, n)
	for i := 0; i < n; i++ {
		overloads[i] = types.Overload{
			Annotation:     t.Bounded.Elements[i],
			ParametersKind: types.ParametersDefined,
			Defined:        []types.Parameter2{{Kind: types.ParamPositionalOnly, Index: 0, Annotation: types.NewIntLiteral(int64(i))}},
		}
	}
	return Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
		Kind: types.CallableNamed, Reference: "__getitem__", Overloads: overloads,
		Implicit: &types.ImplicitReceiver{Annotation: t, ParamName: "self"},
	}}, true
}

// SynthesizeMetaclassGetItem implements a deliberately reduced version of
// spec §4.4.3's `typing.GenericMeta.__getitem__` synthesis: it generates
// one parameter per declared class variable and returns
// `type[Parametric(name, params)]`, without the special-cased `Literal`/
// `Union`/`Optional`/`Callable`/list-variadic parameter shapes the full
// rule calls for. A generic class's own declared-variable metadata (not
// yet threaded from C9's ClassMetadataEnvironment into this package) is
// required to do better; see DESIGN.md.
func SynthesizeMetaclassGetItem(className string, variableCount int) Attribute {
	params := make([]types.Parameter2, variableCount)
	typeParams := make([]types.Parameter, variableCount)
	for i := 0; i < variableCount; i++ {
		v := types.Variable{Name: fmt.Sprintf("%s.T%d", className, i)}
		params[i] = types.Parameter2{Kind: types.ParamPositionalOnly, Index: i, Annotation: types.NewParametric("type", types.SingleParam(v))}
		typeParams[i] = types.SingleParam(v)
	}
	ret := types.NewParametric("type", types.SingleParam(types.NewParametric(className, typeParams...)))
	return Attribute{Kind: AttrMethod, Implicitly: true, Annotation: types.Callable{
		Kind:           types.CallableNamed,
		Reference:      "__getitem__",
		Implementation: types.Overload{Annotation: ret, ParametersKind: types.ParametersDefined, Defined: params},
	}}
}
