package types

import "fmt"

// Variance is a unary variable's declared variance (spec §3.2).
type Variance int

const (
	Covariant Variance = iota
	Contravariant
	Invariant
)

// ConstraintsKind is the closed sum of a unary variable's bound shape
// (spec §3.2).
type ConstraintsKind int

const (
	Unconstrained ConstraintsKind = iota
	Bound
	Explicit
	LiteralIntegers
)

type VariableConstraints struct {
	Kind ConstraintsKind
	// Bound
	BoundType Type
	// Explicit
	ExplicitTypes []Type
}

// VariableState distinguishes a free variable (eligible for
// generalization/solving) from one bound as a function parameter
// (preserved as-is, per spec §3.2).
type VariableStateKind int

const (
	StateFree VariableStateKind = iota
	StateInFunction
)

type VariableState struct {
	Kind    VariableStateKind
	Escaped bool // only meaningful when Kind == StateFree
}

// UnaryVariableInfo is the full shape of a declared unary type variable
// (spec §3.2), keyed by name in the Registry below. A bare Variable{Name}
// value (types.go) only carries the name; everything else is looked up
// here so that two Variable references to the same name are always
// structurally identical.
type UnaryVariableInfo struct {
	Name        string
	Constraints VariableConstraints
	Variance    Variance
	State       VariableState
	Namespace   uint32
}

// ParameterVariadicInfo is the declared shape of a parameter-variadic type
// variable (spec §3.2).
type ParameterVariadicInfo struct {
	Name      string
	State     VariableState
	Namespace uint32
}

// ListVariadicInfo is the declared shape of a list-variadic type variable
// (spec §3.2).
type ListVariadicInfo struct {
	Name      string
	State     VariableState
	Namespace uint32
}

// Registry is the type-variable registry (spec C2): namespacing,
// freshness, and bound/escape bookkeeping for all three variable kinds.
// A Registry is not safe for concurrent mutation — it is meant to be
// owned by one in-flight query / instantiation event, consistent with
// the "single-threaded per query" concurrency model (spec §5).
type Registry struct {
	unary             map[string]UnaryVariableInfo
	parameterVariadic map[string]ParameterVariadicInfo
	listVariadic      map[string]ListVariadicInfo
	nextNamespace     uint32
	nextFresh         uint64
}

func NewRegistry() *Registry {
	return &Registry{
		unary:             make(map[string]UnaryVariableInfo),
		parameterVariadic: make(map[string]ParameterVariadicInfo),
		listVariadic:      make(map[string]ListVariadicInfo),
		nextNamespace:     1,
	}
}

// FreshNamespace mints a namespace counter value for a new instantiation
// event (spec §3.2: "A fresh counter is minted per instantiation event").
func (r *Registry) FreshNamespace() uint32 {
	ns := r.nextNamespace
	r.nextNamespace++
	return ns
}

// FreshUnary declares a brand-new unary variable in the given namespace,
// returning the Variable reference to it.
func (r *Registry) FreshUnary(baseName string, namespace uint32, constraints VariableConstraints, variance Variance) Variable {
	r.nextFresh++
	name := fmt.Sprintf("%s$%d@%d", baseName, r.nextFresh, namespace)
	r.unary[name] = UnaryVariableInfo{
		Name:        name,
		Constraints: constraints,
		Variance:    variance,
		State:       VariableState{Kind: StateFree},
		Namespace:   namespace,
	}
	return Variable{Name: name}
}

func (r *Registry) DeclareUnary(info UnaryVariableInfo) Variable {
	r.unary[info.Name] = info
	return Variable{Name: info.Name}
}

func (r *Registry) Unary(name string) (UnaryVariableInfo, bool) {
	info, ok := r.unary[name]
	return info, ok
}

func (r *Registry) DeclareParameterVariadic(info ParameterVariadicInfo) CallableParameters {
	r.parameterVariadic[info.Name] = info
	return CallableParameters{Variable: info.Name}
}

func (r *Registry) ParameterVariadic(name string) (ParameterVariadicInfo, bool) {
	info, ok := r.parameterVariadic[name]
	return info, ok
}

func (r *Registry) DeclareListVariadic(info ListVariadicInfo) ListVariadicMiddle {
	r.listVariadic[info.Name] = info
	return ListVariadicMiddle{Variable: info.Name}
}

func (r *Registry) ListVariadic(name string) (ListVariadicInfo, bool) {
	info, ok := r.listVariadic[name]
	return info, ok
}

// MarkEscaped marks a unary variable as Free{escaped:true} — spec §4.2.5:
// "variables that remained free are escaped in a fresh namespace". The
// caller is responsible for having already moved the variable into a
// fresh namespace before calling this.
func (r *Registry) MarkEscaped(name string) {
	info, ok := r.unary[name]
	if !ok {
		return
	}
	info.State = VariableState{Kind: StateFree, Escaped: true}
	r.unary[name] = info
}

// IsEscaped reports whether the named unary variable is a Free{escaped:true}
// variable.
func (r *Registry) IsEscaped(name string) bool {
	info, ok := r.unary[name]
	return ok && info.State.Kind == StateFree && info.State.Escaped
}

// ConvergeAllNamespaces collapses every variable's namespace field to a
// single canonical value (spec §3.2: "converge_all_namespaces"), used for
// namespace-insensitive equality checks (spec §8 property 6).
func (r *Registry) ConvergeAllNamespaces(canonical uint32) {
	for k, v := range r.unary {
		v.Namespace = canonical
		r.unary[k] = v
	}
	for k, v := range r.parameterVariadic {
		v.Namespace = canonical
		r.parameterVariadic[k] = v
	}
	for k, v := range r.listVariadic {
		v.Namespace = canonical
		r.listVariadic[k] = v
	}
}
