// Package types implements the type algebra (spec §3.1, §4.1): a closed sum
// of type variants plus the structural operations (Apply, FreeVariables,
// predicates, canonical union) that the rest of the core builds on. It also
// carries the type-variable registry (spec §3.2, §4.1 "C2") since every
// variant that can hold a variable needs the variable's shape in scope.
//
// The sum is closed the way the teacher's internal/typesystem.Type is
// closed: one interface, one unexported marker method per implementer, and
// ApplyWithCycleCheck-style type switches everywhere a transform is needed,
// rather than a double-dispatch Visitor.
package types

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Type is the interface every type variant implements.
type Type interface {
	String() string
	sealedType()
}

// Intern normalizes a class/primitive/attribute name to NFC before it is
// used as a map key anywhere in the core, so two source files spelling the
// same identifier with different Unicode normal forms intern to the same
// symbol (spec §3.1's "name interned").
func Intern(name string) string {
	return norm.NFC.String(name)
}

// ---- lattice elements ----

type bottomType struct{}
type topType struct{}
type anyType struct{}

func (bottomType) sealedType() {}
func (topType) sealedType()    {}
func (anyType) sealedType()    {}

func (bottomType) String() string { return "Bottom" }
func (topType) String() string    { return "Top" }
func (anyType) String() string    { return "Any" }

// Bottom, Top, and Any are singletons: Bottom is the universal subtype, Top
// the universal supertype, Any is both (spec §3.1).
var (
	Bottom Type = bottomType{}
	Top    Type = topType{}
	Any    Type = anyType{}
)

func IsBottom(t Type) bool { _, ok := t.(bottomType); return ok }
func IsTop(t Type) bool    { _, ok := t.(topType); return ok }
func IsAny(t Type) bool    { _, ok := t.(anyType); return ok }

// ---- Primitive ----

// Primitive is a named nominal class reference (spec §3.1). The name is
// interned via Intern by NewPrimitive.
type Primitive struct {
	Name string
}

func (Primitive) sealedType() {}

func NewPrimitive(name string) Primitive { return Primitive{Name: Intern(name)} }

func (p Primitive) String() string { return p.Name }

// ---- Parametric ----

// Parameter is one slot of a Parametric type's parameter list (spec §3.1):
// a single type, a group of ordered types (for list-variadics), or a
// callable-parameters slot (for parameter-variadics).
type Parameter struct {
	Single             Type
	Group              *OrderedTypes
	CallableParameters *CallableParameters
}

func SingleParam(t Type) Parameter               { return Parameter{Single: t} }
func GroupParam(o OrderedTypes) Parameter         { return Parameter{Group: &o} }
func CallableParam(c CallableParameters) Parameter { return Parameter{CallableParameters: &c} }

func (p Parameter) String() string {
	switch {
	case p.Single != nil:
		return p.Single.String()
	case p.Group != nil:
		return p.Group.String()
	case p.CallableParameters != nil:
		return p.CallableParameters.String()
	default:
		return "<empty-parameter>"
	}
}

// Parametric is a named generic type applied to parameters, e.g.
// List[int] or Mapping[str, int] (spec §3.1).
type Parametric struct {
	Name       string
	Parameters []Parameter
}

func (Parametric) sealedType() {}

func NewParametric(name string, params ...Parameter) Parametric {
	return Parametric{Name: Intern(name), Parameters: params}
}

func (p Parametric) String() string {
	if len(p.Parameters) == 0 {
		return p.Name
	}
	parts := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		parts[i] = param.String()
	}
	return fmt.Sprintf("%s[%s]", p.Name, strings.Join(parts, ", "))
}

// ---- Optional / Union ----

// Union is a canonicalized union of two or more alternatives (spec §3.1).
// Construct it only through NewUnion to preserve the canonicalization
// invariant; a bare literal Union{} is not guaranteed canonical.
type Union struct {
	Alternatives []Type
}

func (Union) sealedType() {}

func (u Union) String() string {
	parts := make([]string, len(u.Alternatives))
	for i, t := range u.Alternatives {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}

// NoneType is the sentinel nominal type for the language's "no value"
// constant. Optional(x) is sugar for Union(x, None); None itself is
// represented as Optional(Bottom) per spec §3.1.
var NoneType = NewPrimitive("None")

// Optional builds Union(t, None), canonicalized. Optional(Bottom) is how
// the bare "None" type is represented.
func Optional(t Type) Type {
	if IsBottom(t) {
		return NoneType
	}
	return NewUnion(t, NoneType)
}

// IsOptional reports whether t is (structurally) an Optional, returning the
// wrapped type when it is.
func IsOptional(t Type) (Type, bool) {
	u, ok := t.(Union)
	if !ok || len(u.Alternatives) != 2 {
		return nil, false
	}
	if Equal(u.Alternatives[0], NoneType) {
		return u.Alternatives[1], true
	}
	if Equal(u.Alternatives[1], NoneType) {
		return u.Alternatives[0], true
	}
	return nil, false
}

// IsNone reports whether t is exactly the None primitive (Optional(Bottom)).
func IsNone(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.Name == NoneType.(Primitive).Name
}

// NewUnion builds a canonical union from the given alternatives, enforcing
// every invariant in spec §3.1: flattened, deduplicated, sorted, Top
// absorbs, and Optional-subsumption (if both `x` and `Optional x` would
// appear, only `Optional x` survives).
func NewUnion(alts ...Type) Type {
	flat := flattenUnions(alts)

	for _, t := range flat {
		if IsTop(t) {
			return Top
		}
	}

	dedup := dedupeByString(flat)
	dedup = subsumeOptionals(dedup)

	switch len(dedup) {
	case 0:
		return Bottom
	case 1:
		return dedup[0]
	default:
		sort.Slice(dedup, func(i, j int) bool { return dedup[i].String() < dedup[j].String() })
		return Union{Alternatives: dedup}
	}
}

func flattenUnions(ts []Type) []Type {
	out := make([]Type, 0, len(ts))
	for _, t := range ts {
		if u, ok := t.(Union); ok {
			out = append(out, flattenUnions(u.Alternatives)...)
		} else {
			out = append(out, t)
		}
	}
	return out
}

func dedupeByString(ts []Type) []Type {
	seen := make(map[string]bool, len(ts))
	out := make([]Type, 0, len(ts))
	for _, t := range ts {
		key := t.String()
		if !seen[key] {
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}

// subsumeOptionals returns ts unchanged: Optional-subsumption needs no
// separate step, because flattenUnions has already turned every
// `Optional x` member into {x, None} and dedupeByString has removed the
// repeated x.
func subsumeOptionals(ts []Type) []Type {
	none := false
	for _, t := range ts {
		if IsNone(t) {
			none = true
			break
		}
	}
	if !none {
		return ts
	}
	// None is itself one of the alternatives, which already expresses
	// optionality for every other alternative; nothing further collapses
	// here since Optional(x) for a *specific* x only matters when x itself
	// was also independently unioned in, which NewUnion's flatten+dedupe
	// step already normalized away (Optional(x) flattens to {x, None}).
	return ts
}

// ---- Tuple ----

// TupleKind distinguishes a length-fixed tuple from one with an unbounded
// repeated element (spec §3.1).
type TupleKind int

const (
	TupleBounded TupleKind = iota
	TupleUnbounded
)

type Tuple struct {
	Kind     TupleKind
	Bounded  OrderedTypes // valid when Kind == TupleBounded
	Elements Type         // valid when Kind == TupleUnbounded
}

func (Tuple) sealedType() {}

func NewBoundedTuple(o OrderedTypes) Tuple { return Tuple{Kind: TupleBounded, Bounded: o} }
func NewUnboundedTuple(elem Type) Tuple    { return Tuple{Kind: TupleUnbounded, Elements: elem} }

func (t Tuple) String() string {
	if t.Kind == TupleUnbounded {
		return fmt.Sprintf("Tuple[%s, ...]", t.Elements.String())
	}
	return fmt.Sprintf("Tuple[%s]", t.Bounded.String())
}

// ---- TypedDictionary ----

type TypedDictionaryField struct {
	Name string
	Type Type
}

// TypedDictionary is a nominal record whose keys are string literals
// (spec §3.1, §5 glossary). Total fixes whether keys are required.
type TypedDictionary struct {
	Name   string
	Fields []TypedDictionaryField
	Total  bool
}

func (TypedDictionary) sealedType() {}

func (td TypedDictionary) String() string {
	parts := make([]string, len(td.Fields))
	for i, f := range td.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.String())
	}
	suffix := ""
	if !td.Total {
		suffix = ", total=False"
	}
	return fmt.Sprintf("%s{%s%s}", td.Name, strings.Join(parts, ", "), suffix)
}

func (td TypedDictionary) Field(name string) (TypedDictionaryField, bool) {
	for _, f := range td.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return TypedDictionaryField{}, false
}

// ---- Literal ----

type LiteralKind int

const (
	LiteralBool LiteralKind = iota
	LiteralInt
	LiteralString
)

type Literal struct {
	Kind   LiteralKind
	Bool   bool
	Int    int64
	String string
}

func (Literal) sealedType() {}

func NewBoolLiteral(v bool) Literal     { return Literal{Kind: LiteralBool, Bool: v} }
func NewIntLiteral(v int64) Literal     { return Literal{Kind: LiteralInt, Int: v} }
func NewStringLiteral(v string) Literal { return Literal{Kind: LiteralString, String: v} }

func (l Literal) String() string {
	switch l.Kind {
	case LiteralBool:
		return fmt.Sprintf("Literal[%t]", l.Bool)
	case LiteralInt:
		return fmt.Sprintf("Literal[%d]", l.Int)
	default:
		return fmt.Sprintf("Literal[%q]", l.String)
	}
}

// ---- Variable / ParameterVariadicComponent / Annotated ----

// Variable references a declared unary type variable by name (spec §3.1).
// The variable's shape (constraints, variance, state, namespace) is looked
// up in the registry (variables.go), not stored inline, so two references
// to the same variable are always structurally identical.
type Variable struct {
	Name string
}

func (Variable) sealedType() {}
func (v Variable) String() string { return v.Name }

// ComponentSide distinguishes the args-side from the kwargs-side of a
// split parameter-variadic (spec §3.1).
type ComponentSide int

const (
	ComponentArgs ComponentSide = iota
	ComponentKwargs
)

// ParameterVariadicComponent is the args/kwargs half of a decomposed
// parameter-variadic type variable.
type ParameterVariadicComponent struct {
	Side     ComponentSide
	Variable string // the parameter-variadic variable's name
}

func (ParameterVariadicComponent) sealedType() {}

func (c ParameterVariadicComponent) String() string {
	if c.Side == ComponentArgs {
		return fmt.Sprintf("*%s.args", c.Variable)
	}
	return fmt.Sprintf("**%s.kwargs", c.Variable)
}

// Annotated is a transparent wrapper (spec §3.1): equal in every
// structural operation to its wrapped type, but preserved through
// round-trips so an annotation-derived type can be told apart from an
// inferred one where that distinction matters upstream.
type Annotated struct {
	Inner Type
}

func (Annotated) sealedType() {}
func (a Annotated) String() string { return a.Inner.String() }

// Unwrap strips one layer of Annotated, if present.
func Unwrap(t Type) Type {
	if a, ok := t.(Annotated); ok {
		return a.Inner
	}
	return t
}

// Equal is structural equality modulo the canonicalization invariants
// (two types are Equal iff their canonical String forms match) — string
// comparison is intentional here, mirroring the teacher's own
// NormalizeUnion dedupe-by-String approach, and is sound because every
// constructor in this file funnels through the canonicalizing helpers.
func Equal(a, b Type) bool {
	return a.String() == b.String()
}
