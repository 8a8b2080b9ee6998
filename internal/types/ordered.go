package types

import (
	"fmt"
	"strings"
)

// OrderedTypes is the data shape behind spec §3 "ordered_types": either a
// concrete finite sequence, or a concatenation pattern
// `head... ++ middle ++ tail...` where middle stands for a list-variadic
// (spec §4.2.6, glossary "Concatenation"). The element-level algorithms
// (zipping, splitting) live in package ordered (spec C3); this type is
// defined here because Tuple and Parametric's Group parameter (package
// types, C1) are built directly out of it.
type OrderedTypesKind int

const (
	OrderedConcrete OrderedTypesKind = iota
	OrderedConcatenation
)

// ListVariadicMiddle is the `middle` of a concatenation: either a bare
// list-variadic variable, or one mapped through a type constructor
// (spec glossary "Concatenation", spec §3.2 "mapped forms (Map[F, Ts])").
type ListVariadicMiddle struct {
	Variable string
	// MappedThrough is non-empty when this is a mapped form Map[F, Ts]:
	// F is MappedThrough, Ts is Variable.
	MappedThrough string
}

func (m ListVariadicMiddle) IsBare() bool { return m.MappedThrough == "" }

func (m ListVariadicMiddle) String() string {
	if m.IsBare() {
		return fmt.Sprintf("*%s", m.Variable)
	}
	return fmt.Sprintf("Map[%s, %s]", m.MappedThrough, m.Variable)
}

type OrderedTypes struct {
	Kind OrderedTypesKind

	// OrderedConcrete
	Elements []Type

	// OrderedConcatenation
	Head   []Type
	Middle ListVariadicMiddle
	Tail   []Type
}

func Concrete(elements ...Type) OrderedTypes {
	return OrderedTypes{Kind: OrderedConcrete, Elements: elements}
}

func Concatenation(head []Type, middle ListVariadicMiddle, tail []Type) OrderedTypes {
	return OrderedTypes{Kind: OrderedConcatenation, Head: head, Middle: middle, Tail: tail}
}

func (o OrderedTypes) String() string {
	if o.Kind == OrderedConcrete {
		parts := make([]string, len(o.Elements))
		for i, t := range o.Elements {
			parts[i] = t.String()
		}
		return strings.Join(parts, ", ")
	}
	parts := make([]string, 0, len(o.Head)+1+len(o.Tail))
	for _, t := range o.Head {
		parts = append(parts, t.String())
	}
	parts = append(parts, o.Middle.String())
	for _, t := range o.Tail {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ", ")
}

// IsBareVariable reports whether this OrderedTypes is nothing but a single
// bare list-variadic variable (head and tail both empty, middle unmapped) —
// the shape spec §4.2.6 calls out for direct variable binding.
func (o OrderedTypes) IsBareVariable() (string, bool) {
	if o.Kind == OrderedConcatenation && len(o.Head) == 0 && len(o.Tail) == 0 && o.Middle.IsBare() {
		return o.Middle.Variable, true
	}
	return "", false
}
