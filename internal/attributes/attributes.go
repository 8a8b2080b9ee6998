// Package attributes implements the attribute resolver (spec C8, §4.4):
// building an uninstantiated table of a class's members, expanding
// dataclass-like decorators, and instantiating an attribute against a
// concrete receiver type. It also implements order.AttributeProvider so
// the order engine (C6) can ask structural questions without importing
// this package directly (see internal/order/engine.go's doc comment on
// why that dependency is interface-shaped).
package attributes

import (
	"github.com/glyphlang/typecore/internal/classes"
	"github.com/glyphlang/typecore/internal/order"
	"github.com/glyphlang/typecore/internal/types"
)

// AttrKind distinguishes the shapes a declared class member can take
// (spec §4.4.1).
type AttrKind int

const (
	AttrMethod AttrKind = iota
	AttrClassMethod
	AttrStaticMethod
	AttrNew
	AttrSimpleAssignment
	AttrProperty
	AttrNestedClass
)

// Attribute is one uninstantiated entry in a class's attribute table.
type Attribute struct {
	Kind       AttrKind
	Annotation types.Type // a Callable for method-shaped kinds
	Implicitly bool       // true for synthesized fields (spec §4.4.2)
}

// Table is one class's own (non-inherited) uninstantiated attributes.
type Table map[string]Attribute

// MemberDecl is the input shape BuildUninstantiatedTable consumes — a
// declared class member already reduced from the AST to a kind + type by
// the annotation parser (C10), kept separate from coreast.Node so this
// package only depends on the type algebra, not syntax.
type MemberDecl struct {
	Name       string
	Kind       AttrKind
	Annotation types.Type
}

// ClassFlags are the per-class metadata ClassMetadataEnvironment (C9
// layer 7) tracks alongside the attribute table.
type ClassFlags struct {
	IsProtocol bool
	IsStub     bool // extends a placeholder-stub class (spec §4.4.1 step 2)
}

// BuildUninstantiatedTable implements spec §4.4.1 steps 1-2: convert each
// declared member, then synthesize `__init__`/`__getattr__` when the class
// extends a placeholder stub and doesn't already declare them.
func BuildUninstantiatedTable(members []MemberDecl, flags ClassFlags) Table {
	t := make(Table, len(members)+2)
	for _, m := range members {
		t[m.Name] = Attribute{Kind: m.Kind, Annotation: m.Annotation}
	}
	if flags.IsStub {
		if _, ok := t["__init__"]; !ok {
			t["__init__"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: zeroArgMethod("__init__", types.NoneType)}
		}
		if _, ok := t["__getattr__"]; !ok {
			t["__getattr__"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: oneArgMethod("__getattr__", types.NewPrimitive("str"), types.Any)}
		}
	}
	return t
}

// Resolver owns one hierarchy's per-class tables and flags, and (once
// wired via SetEngine) the order engine used to instantiate attributes
// against a receiver.
type Resolver struct {
	Hierarchy *classes.Hierarchy
	Engine    *order.Engine

	tables map[classes.ClassIndex]Table
	flags  map[classes.ClassIndex]ClassFlags
}

func NewResolver(h *classes.Hierarchy) *Resolver {
	return &Resolver{
		Hierarchy: h,
		tables:    map[classes.ClassIndex]Table{},
		flags:     map[classes.ClassIndex]ClassFlags{},
	}
}

// SetEngine wires the order engine in after construction, breaking the
// Resolver<->Engine construction cycle (the Engine needs a
// order.AttributeProvider, which this Resolver is, at construction time;
// the Resolver needs the Engine only once it starts instantiating).
func (r *Resolver) SetEngine(e *order.Engine) { r.Engine = e }

func (r *Resolver) SetTable(idx classes.ClassIndex, t Table)       { r.tables[idx] = t }
func (r *Resolver) SetFlags(idx classes.ClassIndex, f ClassFlags)  { r.flags[idx] = f }
func (r *Resolver) FlagsOf(idx classes.ClassIndex) ClassFlags      { return r.flags[idx] }
func (r *Resolver) OwnTable(idx classes.ClassIndex) (Table, bool) {
	t, ok := r.tables[idx]
	return t, ok
}

// AllAttributes merges idx's own table over its MRO, most-derived wins
// (spec §3.6 "uninstantiated tables"; the merge direction mirrors normal
// Python MRO attribute lookup: walk least-to-most-derived so later writes
// in the loop — the more derived classes — override).
func (r *Resolver) AllAttributes(idx classes.ClassIndex) (Table, bool) {
	mro, err := r.Hierarchy.Linearize(idx)
	if err != nil {
		return nil, false
	}
	merged := make(Table)
	for i := len(mro) - 1; i >= 0; i-- {
		for name, attr := range r.tables[mro[i]] {
			merged[name] = attr
		}
	}
	return merged, true
}

// Attributes implements order.AttributeProvider: the instantiated view of
// t's attribute table (each entry bound against t as its own receiver).
func (r *Resolver) Attributes(t types.Type) (map[string]types.Type, bool) {
	name, ok := classNameOf(t)
	if !ok {
		return nil, false
	}
	idx, ok := r.Hierarchy.IndexOf(name)
	if !ok {
		return nil, false
	}
	table, ok := r.AllAttributes(idx)
	if !ok {
		return nil, false
	}
	out := make(map[string]types.Type, len(table))
	for name, attr := range table {
		if inst, ok := r.InstantiateAgainstReceiver(attr, t); ok {
			out[name] = inst
		} else {
			out[name] = attr.Annotation
		}
	}
	return out, true
}

// IsProtocol implements order.AttributeProvider.
func (r *Resolver) IsProtocol(t types.Type) bool {
	name, ok := classNameOf(t)
	if !ok {
		return false
	}
	idx, ok := r.Hierarchy.IndexOf(name)
	if !ok {
		return false
	}
	return r.flags[idx].IsProtocol
}

func classNameOf(t types.Type) (string, bool) {
	switch v := t.(type) {
	case types.Primitive:
		return v.Name, true
	case types.Parametric:
		return v.Name, true
	default:
		return "", false
	}
}

func zeroArgMethod(name string, ret types.Type) types.Callable {
	return types.Callable{
		Kind:           types.CallableNamed,
		Reference:      name,
		Implementation: types.Overload{Annotation: ret, ParametersKind: types.ParametersDefined},
		Implicit:       &types.ImplicitReceiver{Annotation: types.Top, ParamName: "self"},
	}
}

func oneArgMethod(name string, argType, ret types.Type) types.Callable {
	return types.Callable{
		Kind:      types.CallableNamed,
		Reference: name,
		Implementation: types.Overload{
			Annotation:     ret,
			ParametersKind: types.ParametersDefined,
			Defined:        []types.Parameter2{{Kind: types.ParamPositionalOnly, Index: 0, Annotation: argType}},
		},
		Implicit: &types.ImplicitReceiver{Annotation: types.Top, ParamName: "self"},
	}
}
