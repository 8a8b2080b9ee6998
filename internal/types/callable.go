package types

import (
	"fmt"
	"strings"
)

// CallableKind distinguishes an anonymous callable from one with a
// reference name (spec §3.3).
type CallableKind int

const (
	CallableAnonymous CallableKind = iota
	CallableNamed
)

// ImplicitReceiver is the optional `self`-binding an Overload carries when
// it is a bound method (spec §3.3).
type ImplicitReceiver struct {
	Annotation Type
	ParamName  string
}

// Callable is a (possibly overloaded) function/method type (spec §3.3).
type Callable struct {
	Kind           CallableKind
	Reference      string // populated when Kind == CallableNamed
	Implementation Overload
	Overloads      []Overload
	Implicit       *ImplicitReceiver
}

func (Callable) sealedType() {}

func (c Callable) String() string {
	name := "<anonymous>"
	if c.Kind == CallableNamed {
		name = c.Reference
	}
	if len(c.Overloads) == 0 {
		return fmt.Sprintf("%s%s", name, c.Implementation.signatureString())
	}
	parts := make([]string, len(c.Overloads))
	for i, o := range c.Overloads {
		parts[i] = o.signatureString()
	}
	return fmt.Sprintf("%s[overload: %s]", name, strings.Join(parts, "; "))
}

// AllOverloads returns the overloads to try: the declared overloads in
// source order when there are any, and otherwise the bare implementation
// alone. The implementation of a callable with overloads is not included,
// so it is never tried as a fallback.
func (c Callable) AllOverloads() []Overload {
	if len(c.Overloads) > 0 {
		return c.Overloads
	}
	return []Overload{c.Implementation}
}

// ParametersKind distinguishes the three Overload.Parameters shapes
// (spec §3.3).
type ParametersKind int

const (
	ParametersUndefined ParametersKind = iota
	ParametersDefined
	ParametersVariadicTypeVariable
)

// Overload is one signature of a Callable (spec §3.3).
type Overload struct {
	Annotation Type // return type

	ParametersKind ParametersKind
	Defined        []Parameter2 // when ParametersKind == ParametersDefined

	// when ParametersKind == ParametersVariadicTypeVariable: a prefix of
	// head parameter types followed by a parameter-variadic tail.
	Head     []Type
	Variadic *CallableParameters
}

func (o Overload) signatureString() string {
	ret := "<?>"
	if o.Annotation != nil {
		ret = o.Annotation.String()
	}
	switch o.ParametersKind {
	case ParametersUndefined:
		return fmt.Sprintf("(...) -> %s", ret)
	case ParametersVariadicTypeVariable:
		parts := make([]string, len(o.Head))
		for i, h := range o.Head {
			parts[i] = h.String()
		}
		tail := "**P"
		if o.Variadic != nil {
			tail = o.Variadic.String()
		}
		parts = append(parts, tail)
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), ret)
	default:
		parts := make([]string, len(o.Defined))
		for i, p := range o.Defined {
			parts[i] = p.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), ret)
	}
}

// ParameterKind2 is the closed sum of parameter shapes (spec §3.3). Named
// Parameter2/ParameterKind2 to avoid colliding with the Parametric
// parameter slot type (Parameter) defined in types.go.
type ParameterKind2 int

const (
	ParamPositionalOnly ParameterKind2 = iota
	ParamNamed
	ParamKeywordOnly
	ParamVariableConcrete
	ParamVariableConcatenation
	ParamKeywords
)

type Parameter2 struct {
	Kind ParameterKind2

	// PositionalOnly
	Index int

	// Named / KeywordOnly / PositionalOnly share these:
	Name       string
	Annotation Type
	HasDefault bool

	// VariableConcatenation
	Concatenation *OrderedTypes
}

func (p Parameter2) String() string {
	def := ""
	if p.HasDefault {
		def = " = ..."
	}
	switch p.Kind {
	case ParamPositionalOnly:
		return fmt.Sprintf("%s%s", p.Annotation.String(), def)
	case ParamNamed:
		return fmt.Sprintf("%s: %s%s", p.Name, p.Annotation.String(), def)
	case ParamKeywordOnly:
		return fmt.Sprintf("*, %s: %s%s", p.Name, p.Annotation.String(), def)
	case ParamVariableConcrete:
		return fmt.Sprintf("*%s", p.Annotation.String())
	case ParamVariableConcatenation:
		return fmt.Sprintf("*%s", p.Concatenation.String())
	default: // ParamKeywords
		return fmt.Sprintf("**%s", p.Annotation.String())
	}
}

// CallableParameters stands in for an entire callable parameter list via a
// parameter-variadic type variable (spec §3.2).
type CallableParameters struct {
	Variable string
}

func (c CallableParameters) String() string { return fmt.Sprintf("**%s", c.Variable) }
