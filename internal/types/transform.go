package types

import "sort"

// Subst is a substitution over all three variable kinds at once, the way
// a single constraint-solving pass (package constraints) produces bindings
// for whichever kinds of variable were in scope.
type Subst struct {
	Unary             map[string]Type
	ListVariadic      map[string]OrderedTypes
	ParameterVariadic map[string][]Parameter2
}

func NewSubst() Subst {
	return Subst{
		Unary:             map[string]Type{},
		ListVariadic:      map[string]OrderedTypes{},
		ParameterVariadic: map[string][]Parameter2{},
	}
}

func (s Subst) WithUnary(name string, t Type) Subst {
	out := s.clone()
	out.Unary[name] = t
	return out
}

func (s Subst) clone() Subst {
	out := NewSubst()
	for k, v := range s.Unary {
		out.Unary[k] = v
	}
	for k, v := range s.ListVariadic {
		out.ListVariadic[k] = v
	}
	for k, v := range s.ParameterVariadic {
		out.ParameterVariadic[k] = v
	}
	return out
}

// Compose combines two substitutions so that applying the result is
// equivalent to applying s1 then s2 (mirrors the teacher's
// Subst.Compose in internal/typesystem/types.go).
func (s1 Subst) Compose(s2 Subst) Subst {
	out := NewSubst()
	for k, v := range s2.Unary {
		out.Unary[k] = v
	}
	for k, v := range s1.Unary {
		out.Unary[k] = Apply(v, s2, false)
	}
	for k, v := range s2.ListVariadic {
		out.ListVariadic[k] = v
	}
	for k, v := range s1.ListVariadic {
		out.ListVariadic[k] = v
	}
	for k, v := range s2.ParameterVariadic {
		out.ParameterVariadic[k] = v
	}
	for k, v := range s1.ParameterVariadic {
		out.ParameterVariadic[k] = v
	}
	return out
}

// Apply is spec §4.1's instantiate(t, f): t rewritten by substitution s,
// with structural sharing of unchanged subterms. When widen is true, a
// variable bound to Bottom is rewritten to Top instead.
func Apply(t Type, s Subst, widen bool) Type {
	return applyVisited(t, s, widen, map[string]bool{})
}

func applyVisited(t Type, s Subst, widen bool, visited map[string]bool) Type {
	switch v := t.(type) {
	case Variable:
		if visited[v.Name] {
			return v
		}
		repl, ok := s.Unary[v.Name]
		if !ok {
			return v
		}
		if rv, ok := repl.(Variable); ok && rv.Name == v.Name {
			return v
		}
		if widen && IsBottom(repl) {
			return Top
		}
		nv := copyVisited(visited)
		nv[v.Name] = true
		return applyVisited(repl, s, widen, nv)

	case Parametric:
		params := make([]Parameter, len(v.Parameters))
		for i, p := range v.Parameters {
			params[i] = applyParameter(p, s, widen, visited)
		}
		return Parametric{Name: v.Name, Parameters: params}

	case Union:
		alts := make([]Type, len(v.Alternatives))
		for i, a := range v.Alternatives {
			alts[i] = applyVisited(a, s, widen, visited)
		}
		return NewUnion(alts...)

	case Tuple:
		if v.Kind == TupleUnbounded {
			return NewUnboundedTuple(applyVisited(v.Elements, s, widen, visited))
		}
		return NewBoundedTuple(applyOrdered(v.Bounded, s, widen, visited))

	case TypedDictionary:
		fields := make([]TypedDictionaryField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = TypedDictionaryField{Name: f.Name, Type: applyVisited(f.Type, s, widen, visited)}
		}
		return TypedDictionary{Name: v.Name, Fields: fields, Total: v.Total}

	case Callable:
		overloads := make([]Overload, len(v.Overloads))
		for i, o := range v.Overloads {
			overloads[i] = applyOverload(o, s, widen, visited)
		}
		impl := applyOverload(v.Implementation, s, widen, visited)
		implicit := v.Implicit
		if implicit != nil {
			a := applyVisited(implicit.Annotation, s, widen, visited)
			implicit = &ImplicitReceiver{Annotation: a, ParamName: implicit.ParamName}
		}
		return Callable{Kind: v.Kind, Reference: v.Reference, Implementation: impl, Overloads: overloads, Implicit: implicit}

	case Annotated:
		return Annotated{Inner: applyVisited(v.Inner, s, widen, visited)}

	case ParameterVariadicComponent:
		if bound, ok := s.ParameterVariadic[v.Variable]; ok {
			// Substituting a component of a resolved parameter-variadic
			// collapses to Any: the component no longer denotes a single
			// type once the whole list is known.
			_ = bound
			return Any
		}
		return v

	default:
		// Bottom, Top, Any, Primitive, Literal, Variable(handled above) —
		// all leaves with no substitutable substructure.
		return t
	}
}

func applyParameter(p Parameter, s Subst, widen bool, visited map[string]bool) Parameter {
	switch {
	case p.Single != nil:
		return SingleParam(applyVisited(p.Single, s, widen, visited))
	case p.Group != nil:
		o := applyOrdered(*p.Group, s, widen, visited)
		return GroupParam(o)
	case p.CallableParameters != nil:
		return CallableParam(*p.CallableParameters)
	default:
		return p
	}
}

func applyOrdered(o OrderedTypes, s Subst, widen bool, visited map[string]bool) OrderedTypes {
	if o.Kind == OrderedConcrete {
		elems := make([]Type, len(o.Elements))
		for i, e := range o.Elements {
			elems[i] = applyVisited(e, s, widen, visited)
		}
		return Concrete(elems...)
	}
	if bound, ok := s.ListVariadic[o.Middle.Variable]; o.Middle.IsBare() && ok {
		// Splice the bound middle directly into head/tail (spec §4.2.6).
		head := make([]Type, len(o.Head))
		for i, e := range o.Head {
			head[i] = applyVisited(e, s, widen, visited)
		}
		tail := make([]Type, len(o.Tail))
		for i, e := range o.Tail {
			tail[i] = applyVisited(e, s, widen, visited)
		}
		if bound.Kind == OrderedConcrete {
			elems := append(append([]Type{}, head...), bound.Elements...)
			elems = append(elems, tail...)
			return Concrete(elems...)
		}
		return Concatenation(append(head, bound.Head...), bound.Middle, append(bound.Tail, tail...))
	}
	head := make([]Type, len(o.Head))
	for i, e := range o.Head {
		head[i] = applyVisited(e, s, widen, visited)
	}
	tail := make([]Type, len(o.Tail))
	for i, e := range o.Tail {
		tail[i] = applyVisited(e, s, widen, visited)
	}
	return Concatenation(head, o.Middle, tail)
}

func applyOverload(o Overload, s Subst, widen bool, visited map[string]bool) Overload {
	out := Overload{Annotation: applyVisited(o.Annotation, s, widen, visited), ParametersKind: o.ParametersKind}
	switch o.ParametersKind {
	case ParametersDefined:
		out.Defined = make([]Parameter2, len(o.Defined))
		for i, p := range o.Defined {
			out.Defined[i] = applyParameter2(p, s, widen, visited)
		}
	case ParametersVariadicTypeVariable:
		out.Head = make([]Type, len(o.Head))
		for i, h := range o.Head {
			out.Head[i] = applyVisited(h, s, widen, visited)
		}
		out.Variadic = o.Variadic
	}
	return out
}

func applyParameter2(p Parameter2, s Subst, widen bool, visited map[string]bool) Parameter2 {
	out := p
	if p.Annotation != nil {
		out.Annotation = applyVisited(p.Annotation, s, widen, visited)
	}
	if p.Concatenation != nil {
		o := applyOrdered(*p.Concatenation, s, widen, visited)
		out.Concatenation = &o
	}
	return out
}

func copyVisited(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ---- Free variables ----

// FreeVars is the result of collecting every free variable in a type,
// split by kind.
type FreeVars struct {
	Unary             []string
	ListVariadic      []string
	ParameterVariadic []string
}

func (f FreeVars) sortAndDedupe() FreeVars {
	dedupe := func(xs []string) []string {
		seen := map[string]bool{}
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		}
		sort.Strings(out)
		return out
	}
	return FreeVars{
		Unary:             dedupe(f.Unary),
		ListVariadic:      dedupe(f.ListVariadic),
		ParameterVariadic: dedupe(f.ParameterVariadic),
	}
}

// Free collects every free variable appearing in t.
func Free(t Type) FreeVars {
	var f FreeVars
	collectFree(t, &f)
	return f.sortAndDedupe()
}

func collectFree(t Type, f *FreeVars) {
	switch v := t.(type) {
	case Variable:
		f.Unary = append(f.Unary, v.Name)
	case ParameterVariadicComponent:
		f.ParameterVariadic = append(f.ParameterVariadic, v.Variable)
	case Parametric:
		for _, p := range v.Parameters {
			switch {
			case p.Single != nil:
				collectFree(p.Single, f)
			case p.Group != nil:
				collectFreeOrdered(*p.Group, f)
			case p.CallableParameters != nil:
				f.ParameterVariadic = append(f.ParameterVariadic, p.CallableParameters.Variable)
			}
		}
	case Union:
		for _, a := range v.Alternatives {
			collectFree(a, f)
		}
	case Tuple:
		if v.Kind == TupleUnbounded {
			collectFree(v.Elements, f)
		} else {
			collectFreeOrdered(v.Bounded, f)
		}
	case TypedDictionary:
		for _, field := range v.Fields {
			collectFree(field.Type, f)
		}
	case Callable:
		for _, o := range v.AllOverloads() {
			collectFreeOverload(o, f)
		}
		if v.Implicit != nil {
			collectFree(v.Implicit.Annotation, f)
		}
	case Annotated:
		collectFree(v.Inner, f)
	}
}

func collectFreeOrdered(o OrderedTypes, f *FreeVars) {
	if o.Kind == OrderedConcrete {
		for _, e := range o.Elements {
			collectFree(e, f)
		}
		return
	}
	for _, e := range o.Head {
		collectFree(e, f)
	}
	f.ListVariadic = append(f.ListVariadic, o.Middle.Variable)
	for _, e := range o.Tail {
		collectFree(e, f)
	}
}

func collectFreeOverload(o Overload, f *FreeVars) {
	if o.Annotation != nil {
		collectFree(o.Annotation, f)
	}
	switch o.ParametersKind {
	case ParametersDefined:
		for _, p := range o.Defined {
			if p.Annotation != nil {
				collectFree(p.Annotation, f)
			}
			if p.Concatenation != nil {
				collectFreeOrdered(*p.Concatenation, f)
			}
		}
	case ParametersVariadicTypeVariable:
		for _, h := range o.Head {
			collectFree(h, f)
		}
		if o.Variadic != nil {
			f.ParameterVariadic = append(f.ParameterVariadic, o.Variadic.Variable)
		}
	}
}

// ContainsVariable reports whether t has any free variable of any kind.
func ContainsVariable(t Type) bool {
	f := Free(t)
	return len(f.Unary) > 0 || len(f.ListVariadic) > 0 || len(f.ParameterVariadic) > 0
}

// ContainsAny reports whether Any occurs anywhere in t's structure.
func ContainsAny(t Type) bool {
	found := false
	var walk func(Type)
	walk = func(t Type) {
		if found {
			return
		}
		if IsAny(t) {
			found = true
			return
		}
		switch v := t.(type) {
		case Parametric:
			for _, p := range v.Parameters {
				if p.Single != nil {
					walk(p.Single)
				}
				if p.Group != nil {
					walkOrdered(*p.Group, &found)
				}
			}
		case Union:
			for _, a := range v.Alternatives {
				walk(a)
			}
		case Tuple:
			if v.Kind == TupleUnbounded {
				walk(v.Elements)
			} else {
				walkOrdered(v.Bounded, &found)
			}
		case TypedDictionary:
			for _, f := range v.Fields {
				walk(f.Type)
			}
		case Callable:
			for _, o := range v.AllOverloads() {
				if o.Annotation != nil {
					walk(o.Annotation)
				}
				for _, p := range o.Defined {
					if p.Annotation != nil {
						walk(p.Annotation)
					}
				}
			}
		case Annotated:
			walk(v.Inner)
		}
	}
	walk(t)
	return found
}

func walkOrdered(o OrderedTypes, found *bool) {
	if *found {
		return
	}
	elems := o.Elements
	if o.Kind == OrderedConcatenation {
		elems = append(append([]Type{}, o.Head...), o.Tail...)
	}
	for _, e := range elems {
		if ContainsAny(e) {
			*found = true
			return
		}
	}
}

// ContainsEscapedFreeVariable reports whether any free unary variable in t
// has been marked escaped in the given registry (spec §3.1 invariant,
// §4.1 predicate).
func ContainsEscapedFreeVariable(t Type, reg *Registry) bool {
	f := Free(t)
	for _, name := range f.Unary {
		if reg.IsEscaped(name) {
			return true
		}
	}
	return false
}

// IsConcrete reports whether t has no variables and no Any anywhere, is
// not itself Top or Bottom (a nested Top or Bottom is not checked), and
// has no escaped free variable (spec §4.1): the testable law is
// IsConcrete(t) => !ContainsVariable(t) && !ContainsAny(t).
func IsConcrete(t Type, reg *Registry) bool {
	if ContainsVariable(t) || ContainsAny(t) {
		return false
	}
	if IsTop(t) || IsBottom(t) {
		return false
	}
	if ContainsEscapedFreeVariable(t, reg) {
		return false
	}
	return true
}

func IsPrimitive(t Type) bool {
	_, ok := t.(Primitive)
	return ok
}

func IsTuple(t Type) bool {
	_, ok := t.(Tuple)
	return ok
}
