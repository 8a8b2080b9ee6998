package environment

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/glyphlang/typecore/internal/annotation"
	"github.com/glyphlang/typecore/internal/attributes"
	"github.com/glyphlang/typecore/internal/classes"
	"github.com/glyphlang/typecore/internal/config"
	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/coreerrors"
	"github.com/glyphlang/typecore/internal/logging"
	"github.com/glyphlang/typecore/internal/lookup"
	"github.com/glyphlang/typecore/internal/order"
	"github.com/glyphlang/typecore/internal/signature"
	"github.com/glyphlang/typecore/internal/store"
	"github.com/glyphlang/typecore/internal/types"
	"github.com/google/uuid"
)

func init() {
	// Concrete types.Type variants that can reach the persisted
	// annotated_globals/undecorated_functions layers (spec §6) need to be
	// known to gob before Encode/Decode touches a value holding one behind
	// the Type interface. Passing the existing singletons registers the
	// unexported bottomType/topType/anyType without needing to name them.
	store.RegisterType(types.Bottom)
	store.RegisterType(types.Top)
	store.RegisterType(types.Any)
	store.RegisterType(types.Primitive{})
	store.RegisterType(types.Parametric{})
	store.RegisterType(types.Union{})
	store.RegisterType(types.Tuple{})
	store.RegisterType(types.TypedDictionary{})
	store.RegisterType(types.Literal{})
	store.RegisterType(types.Variable{})
	store.RegisterType(types.Annotated{})
	store.RegisterType(types.Callable{})
}

// AliasTable is one module's `name -> Alias` map (spec §4.3 layer 4),
// stored as a plain map rather than as an annotation.AliasLookup closure
// so the Table[V] cache can compare/replace it as an ordinary value.
type AliasTable map[string]annotation.Alias

func (a AliasTable) lookup(name string) (annotation.Alias, bool) {
	al, ok := a[name]
	return al, ok
}

// hierarchyKey is the single cache key the class-hierarchy layer uses:
// unlike every other layer it is not per-module, since the hierarchy
// spans every module the stack currently knows about.
const hierarchyKey = "*"

// resolverBundle is the value ClassHierarchyEnvironment-downstream layers
// share: the hierarchy plus an attributes.Resolver and order.Engine built
// over it, rebuilt together whenever any class's membership changes.
type resolverBundle struct {
	hierarchy *classes.Hierarchy
	resolver  *attributes.Resolver
	engine    *order.Engine
}

// Stack wires the ten named layers of spec §4.3 together: ModuleTracker
// produces IncrementalUpdates, AstEnvironment reparses the changed
// modules, and each successor layer below it is a Table[V] whose
// ProduceFunc reads whatever upstream layers it needs through the Query
// it's given, so the dependency graph records itself as values are read.
type Stack struct {
	mu      sync.Mutex
	modules map[ModuleReference]bool

	Tracker *ModuleTracker
	parse   ParseFunc
	cfg     config.Config
	log     *logging.Logger

	lastErrors map[string][]coreerrors.Error

	ast                  *Table[ParsedSource]
	globals              *Table[GlobalsInfo]
	aliases              *Table[AliasTable]
	emptyStub            *Table[bool]
	classHierarchy       *Table[resolverBundle]
	classMetadata        *Table[ClassMetadata]
	undecoratedFunctions *Table[types.Callable]
	annotatedGlobals     *Table[types.Type]
}

// NewStack builds the ten-layer environment over parse, the seam that
// turns a module reference into its parsed body (spec §1 Non-goals: the
// parser itself is out of scope).
func NewStack(parse ParseFunc, cfg config.Config, log *logging.Logger) *Stack {
	s := &Stack{
		modules:    make(map[ModuleReference]bool),
		lastErrors: make(map[string][]coreerrors.Error),
		Tracker:    NewModuleTracker(),
		parse:      parse,
		cfg:        cfg,
		log:        log,
	}

	eagerOpt := !cfg.LazyIncremental

	s.ast = New[ParsedSource]("ast", s.produceAst, tableOpts[ParsedSource](eagerOpt, log)...)
	s.globals = New[GlobalsInfo]("globals", s.produceGlobals, tableOpts[GlobalsInfo](eagerOpt, log)...)
	s.aliases = New[AliasTable]("aliases", s.produceAliases, tableOpts[AliasTable](eagerOpt, log)...)
	s.emptyStub = New[bool]("empty_stub", s.produceEmptyStub, tableOpts[bool](eagerOpt, log)...)
	s.classHierarchy = New[resolverBundle]("class_hierarchy", s.produceHierarchy, tableOpts[resolverBundle](eagerOpt, log)...)
	s.classMetadata = New[ClassMetadata]("class_metadata", s.produceClassMetadata, tableOpts[ClassMetadata](eagerOpt, log)...)
	s.undecoratedFunctions = New[types.Callable]("undecorated_functions", s.produceUndecoratedFunction, tableOpts[types.Callable](eagerOpt, log)...)
	s.annotatedGlobals = New[types.Type]("annotated_globals", s.produceAnnotatedGlobal, tableOpts[types.Type](eagerOpt, log)...)

	return s
}

func tableOpts[V any](eager bool, log *logging.Logger) []Option[V] {
	opts := []Option[V]{WithGenerationTokens[V](uuid.NewString)}
	if eager {
		opts = append(opts, Eager[V]())
	}
	if log != nil {
		opts = append(opts, WithLogger[V](log))
	}
	return opts
}

// ApplyUpdates implements spec §4.3.1: feed the module tracker's
// IncrementalUpdates through the stack, invalidating each layer in turn
// and returning the AstEnvironment's {reparsed, syntax_errors,
// system_errors} result (step 2) after every downstream layer has had a
// chance to invalidate (step 3).
func (s *Stack) ApplyUpdates(updates []IncrementalUpdate) AstUpdateResult {
	result := AstUpdateResult{
		SyntaxErrors: make(map[ModuleReference][]coreerrors.Error),
		SystemErrors: make(map[ModuleReference]error),
	}

	s.mu.Lock()
	for _, u := range updates {
		switch u.Kind {
		case ModuleAdded, ModuleChanged:
			s.modules[u.Reference] = true
		case ModuleRemoved:
			delete(s.modules, u.Reference)
		}
	}
	s.mu.Unlock()

	var pending []Trigger
	for _, u := range updates {
		key := string(u.Reference)
		pending = append(pending, s.ast.Invalidate(key)...)
		// Step 2 of §4.3.1 is synchronous regardless of config.LazyIncremental
		// — the caller needs {reparsed, syntax_errors, system_errors} back
		// from this very call, so the AST layer always reparses eagerly here
		// even when every layer below it stays lazy.
		s.ast.Get(NewQuery(false), key)
		result.Reparsed = append(result.Reparsed, u.Reference)

		s.mu.Lock()
		if errs := s.lastErrors[key]; len(errs) > 0 {
			result.SyntaxErrors[u.Reference] = errs
		}
		s.mu.Unlock()
	}
	// The hierarchy and everything derived from it spans every module, so
	// any module add/remove/change invalidates it wholesale rather than
	// trying to track per-class dependency edges across module boundaries.
	if len(updates) > 0 {
		pending = append(pending, s.classHierarchy.InvalidateAll()...)
	}

	s.propagate(pending, result)
	return result
}

// propagate recomputes (eager) or drops (lazy) every trigger in
// pending, following the chain until no further triggers remain (spec
// §4.3.1 step 3). A table's own Invalidate already records which keys
// downstream of it to revisit; propagate just walks that queue.
func (s *Stack) propagate(pending []Trigger, result AstUpdateResult) {
	for len(pending) > 0 {
		t := pending[0]
		pending = pending[1:]

		tbl := s.tableByName(t.Layer)
		if tbl == nil {
			continue
		}
		more := tbl.invalidateGeneric(t.Key)
		if !tbl.isLazyGeneric() {
			tbl.recomputeGeneric(t.Key)
		}
		pending = append(pending, more...)
	}
}

// anyTable is the type-erased surface Stack.propagate needs from a
// Table[V] without knowing V — Go generics give no covariant container
// for "a Table of some type", so the stack keeps a small manual vtable
// per concrete instantiation instead of reflecting over them.
type anyTable interface {
	invalidateGeneric(key string) []Trigger
	isLazyGeneric() bool
	recomputeGeneric(key string)
}

func (t *Table[V]) invalidateGeneric(key string) []Trigger { return t.Invalidate(key) }
func (t *Table[V]) isLazyGeneric() bool                    { return t.IsLazy() }
func (t *Table[V]) recomputeGeneric(key string)             { t.Get(NewQuery(true), key) }

func (s *Stack) tableByName(name string) anyTable {
	switch name {
	case "ast":
		return s.ast
	case "globals":
		return s.globals
	case "aliases":
		return s.aliases
	case "empty_stub":
		return s.emptyStub
	case "class_hierarchy":
		return s.classHierarchy
	case "class_metadata":
		return s.classMetadata
	case "undecorated_functions":
		return s.undecoratedFunctions
	case "annotated_globals":
		return s.annotatedGlobals
	default:
		return nil
	}
}

func (s *Stack) produceAst(q *Query, key string) ParsedSource {
	ref := ModuleReference(key)
	src, errs := s.parse(ref)

	s.mu.Lock()
	if len(errs) > 0 {
		s.lastErrors[key] = errs
	} else {
		delete(s.lastErrors, key)
	}
	s.mu.Unlock()

	if len(errs) > 0 && s.log != nil {
		s.log.Warnf("environment: %s failed to parse with %d error(s)", key, len(errs))
	}
	return src
}

func (s *Stack) knownModules() []ModuleReference {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ModuleReference, 0, len(s.modules))
	for m := range s.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// produceGlobals implements spec §4.3 layer 3: walk a module's parsed
// body for top-level Define/Class/Assign statements.
func (s *Stack) produceGlobals(q *Query, key string) GlobalsInfo {
	src := s.ast.Get(q, key)
	info := GlobalsInfo{Globals: map[string]UnannotatedGlobal{}, Classes: map[string]ClassDef{}}
	for _, stmt := range src.Body {
		switch st := stmt.(type) {
		case coreast.Define:
			info.Globals[st.Signature.Name] = UnannotatedGlobal{
				Name: st.Signature.Name, IsFunction: true,
			}
		case coreast.Assign:
			info.Globals[st.Target] = UnannotatedGlobal{
				Name: st.Target, Annotation: st.Annotation, Value: st.Value,
			}
		case coreast.Class:
			isProto := false
			for _, b := range st.Bases {
				if isProtocolBase(b) {
					isProto = true
				}
			}
			info.Classes[st.Name] = ClassDef{
				Name: st.Name, Bases: st.Bases, Decorators: st.Decorators,
				Body: st.Body, IsProtocol: isProto, IsStub: len(st.Body) == 0,
			}
		}
	}
	return info
}

// produceAliases implements spec §4.3 layer 4: every plain `X = Y`
// top-level assignment without a call value is a candidate type alias,
// mirroring the teacher's ResolveTypeAlias scanning module globals for
// assignment targets before resolving them lazily.
func (s *Stack) produceAliases(q *Query, key string) AliasTable {
	info := s.globals.Get(q, key)
	out := AliasTable{}
	for name, g := range info.Globals {
		if g.IsFunction || g.Value == nil {
			continue
		}
		if _, isCall := g.Value.(coreast.Call); isCall {
			continue
		}
		out[name] = annotation.Alias{Kind: annotation.TypeAliasKind, Expr: g.Value}
	}
	return out
}

// produceEmptyStub implements spec §4.3 layer 5: a class with no body
// statements at all is a placeholder stub (e.g. an unannotated
// third-party base class), per §4.4.1 step 2's "extends a placeholder
// stub" check.
func (s *Stack) produceEmptyStub(q *Query, key string) bool {
	module, className := splitQualified(key)
	info := s.globals.Get(q, string(module))
	cd, ok := info.Classes[className]
	if !ok {
		return false
	}
	return cd.IsStub
}

// produceHierarchy implements spec §4.3 layer 6: build the shared class
// hierarchy from every known module's class definitions. It depends on
// globals across every module, not just one key, so it ignores its key
// argument (always hierarchyKey) and reads the whole knownModules() set.
func (s *Stack) produceHierarchy(q *Query, _ string) resolverBundle {
	h := classes.NewHierarchy()
	type pending struct {
		idx   classes.ClassIndex
		cd    ClassDef
		mod   ModuleReference
	}
	var all []pending
	for _, mod := range s.knownModules() {
		info := s.globals.Get(q, string(mod))
		for name, cd := range info.Classes {
			idx := h.Intern(name)
			all = append(all, pending{idx: idx, cd: cd, mod: mod})
		}
	}
	resolver := attributes.NewResolver(h)
	for _, p := range all {
		var edges []classes.Edge
		for _, b := range p.cd.Bases {
			if name, ok := dottedName(b); ok {
				edges = append(edges, classes.Edge{Target: h.Intern(lastSegment(name))})
			}
		}
		h.SetBases(p.idx, edges)
		resolver.SetFlags(p.idx, attributes.ClassFlags{IsProtocol: p.cd.IsProtocol, IsStub: p.cd.IsStub})
	}
	engine := order.New(h, resolver, s.log)
	resolver.SetEngine(engine)
	return resolverBundle{hierarchy: h, resolver: resolver, engine: engine}
}

// produceClassMetadata implements spec §4.3 layer 7: successors and
// stub-ness for one class. Metaclass is left empty.
func (s *Stack) produceClassMetadata(q *Query, key string) ClassMetadata {
	bundle := s.classHierarchy.Get(q, hierarchyKey)
	_, className := splitQualified(key)
	successors, err := bundle.hierarchy.Successors(className)
	if err != nil {
		return ClassMetadata{IsStub: s.emptyStub.Get(q, key)}
	}
	return ClassMetadata{Successors: successors, IsStub: s.emptyStub.Get(q, key)}
}

// produceUndecoratedFunction implements spec §4.3 layer 8: resolve a
// module-level function's signature into a types.Callable via the
// annotation parser, ignoring its decorators (decorated functions are
// the attribute resolver's concern once they're class members).
func (s *Stack) produceUndecoratedFunction(q *Query, key string) types.Callable {
	module, fnName := splitQualified(key)
	info := s.globals.Get(q, string(module))
	aliasTable := s.aliases.Get(q, string(module))

	src := s.ast.Get(q, string(module))
	for _, stmt := range src.Body {
		def, ok := stmt.(coreast.Define)
		if !ok || def.Signature.Name != fnName {
			continue
		}
		return callableFromSignature(def.Signature, aliasTable.lookup)
	}
	_ = info
	return types.Callable{Kind: types.CallableNamed, Reference: fnName}
}

// LookupTable implements spec §6's lookup table builder for one
// module-level function: resolves its parameter annotations the same
// way produceUndecoratedFunction does, then walks its body with
// internal/lookup recording per-location types and definition
// locations for IDE consumers. An unknown module/function returns an
// empty table rather than an error, matching the rest of this layer's
// "query boundary absorbs failure" policy (spec §7).
func (s *Stack) LookupTable(module ModuleReference, fnName string) *lookup.Table {
	q := NewQuery(true)
	aliasTable := s.aliases.Get(q, string(module))
	src := s.ast.Get(q, string(module))

	for _, stmt := range src.Body {
		def, ok := stmt.(coreast.Define)
		if !ok || def.Signature.Name != fnName {
			continue
		}
		locals := make(map[string]types.Type, len(def.Signature.Parameters))
		for _, p := range def.Signature.Parameters {
			if p.Annotation != nil {
				locals[p.Name] = annotation.Resolve(p.Annotation, aliasTable.lookup)
			}
		}
		return lookup.Build(def.Signature, def.Body, locals)
	}
	return lookup.Build(coreast.Signature{}, nil, nil)
}

func callableFromSignature(sig coreast.Signature, aliases annotation.AliasLookup) types.Callable {
	defined := make([]types.Parameter2, 0, len(sig.Parameters))
	for i, p := range sig.Parameters {
		var ann types.Type = types.Any
		if p.Annotation != nil {
			ann = annotation.Resolve(p.Annotation, aliases)
		}
		defined = append(defined, types.Parameter2{
			Kind: paramKind(p.Kind), Index: i, Name: p.Name, Annotation: ann, HasDefault: p.HasDefault,
		})
	}
	ret := types.Type(types.Any)
	if sig.ReturnAnnotation != nil {
		ret = annotation.Resolve(sig.ReturnAnnotation, aliases)
	}
	return types.Callable{
		Kind:      types.CallableNamed,
		Reference: sig.Name,
		Overloads: []types.Overload{{Annotation: ret, ParametersKind: types.ParametersDefined, Defined: defined}},
	}
}

func paramKind(k coreast.ParameterKind) types.ParameterKind2 {
	switch k {
	case coreast.ParamPositionalOnly:
		return types.ParamPositionalOnly
	case coreast.ParamKeywordOnly:
		return types.ParamKeywordOnly
	case coreast.ParamVariable:
		return types.ParamVariableConcrete
	case coreast.ParamKeywords:
		return types.ParamKeywords
	default:
		return types.ParamNamed
	}
}

// produceAnnotatedGlobal implements spec §4.3 layer 10: resolve a
// module-level global's declared annotation, falling back to Any when
// the declaration carries none (inference of an unannotated global's
// value type is out of this layer's scope — it only resolves what's
// written).
func (s *Stack) produceAnnotatedGlobal(q *Query, key string) types.Type {
	module, name := splitQualified(key)
	info := s.globals.Get(q, string(module))
	aliasTable := s.aliases.Get(q, string(module))
	g, ok := info.Globals[name]
	if !ok || g.Annotation == nil {
		return types.Any
	}
	return annotation.Resolve(g.Annotation, aliasTable.lookup)
}

func splitQualified(key string) (ModuleReference, string) {
	idx := strings.LastIndex(key, ".")
	if idx < 0 {
		return "", key
	}
	return ModuleReference(key[:idx]), key[idx+1:]
}

// Qualify builds the "module.name" key the globals/aliases/undecorated-
// function/annotated-global layers use to address one declaration inside
// a module.
func Qualify(module ModuleReference, name string) string {
	return fmt.Sprintf("%s.%s", module, name)
}

// AttributeResolution exposes the spec-named method surface (§4.4, §4.5,
// §4.6) of the combined C6+C7+C8+C10 query layer (spec §4.3 layer 9),
// built from whatever the stack currently knows — callers get one fresh
// per top-level query via Stack.Attributes, mirroring Engine.NewQuery's
// per-query assumption-bag scoping.
type AttributeResolution struct {
	stack   *Stack
	bundle  resolverBundle
	aliases func(module ModuleReference) annotation.AliasLookup
}

// Attributes returns a fresh AttributeResolution query surface over the
// stack's current state. The query is tracked (NewQuery(true)): a real
// caller's read must record a dependency edge, or a later ApplyUpdates
// would have no way to find its way back to invalidate it (spec §4.3.1's
// invalidation walk starts from exactly these recorded edges).
func (s *Stack) Attributes() *AttributeResolution {
	bundle := s.classHierarchy.Get(NewQuery(true), hierarchyKey)
	return &AttributeResolution{
		stack:  s,
		bundle: resolverBundle{hierarchy: bundle.hierarchy, resolver: bundle.resolver, engine: bundle.engine.NewQuery()},
		aliases: func(module ModuleReference) annotation.AliasLookup {
			return s.aliases.Get(NewQuery(true), string(module)).lookup
		},
	}
}

// Attribute implements the `attribute(class, name)` query: the
// instantiated type of one own-or-inherited member.
func (r *AttributeResolution) Attribute(className, name string) (types.Type, bool) {
	idx, ok := r.bundle.hierarchy.IndexOf(className)
	if !ok {
		return nil, false
	}
	table, ok := r.bundle.resolver.AllAttributes(idx)
	if !ok {
		return nil, false
	}
	attr, ok := table[name]
	if !ok {
		return nil, false
	}
	return attr.Annotation, true
}

// AllAttributes implements `all_attributes(class)`.
func (r *AttributeResolution) AllAttributes(className string) (map[string]types.Type, bool) {
	idx, ok := r.bundle.hierarchy.IndexOf(className)
	if !ok {
		return nil, false
	}
	table, ok := r.bundle.resolver.AllAttributes(idx)
	if !ok {
		return nil, false
	}
	out := make(map[string]types.Type, len(table))
	for name, attr := range table {
		out[name] = attr.Annotation
	}
	return out, true
}

// Metaclass implements `metaclass(class)`: the nearest class, starting
// with className itself and then its successors in MRO order, whose own
// table declares a member named `__metaclass_hook__`. Classes without one
// report ok=false.
func (r *AttributeResolution) Metaclass(className string) (string, bool) {
	if _, ok := r.bundle.hierarchy.IndexOf(className); !ok {
		return "", false
	}
	chain := []string{className}
	if mro, err := r.bundle.hierarchy.Successors(className); err == nil {
		chain = append(chain, mro...)
	}
	for _, name := range chain {
		idx, ok := r.bundle.hierarchy.IndexOf(name)
		if !ok {
			continue
		}
		table, ok := r.bundle.resolver.OwnTable(idx)
		if !ok {
			continue
		}
		if _, has := table["__metaclass_hook__"]; has {
			return name, true
		}
	}
	return "", false
}

// Constraints implements `constraints(left, right)`: one "ok" marker per
// constraint set the subtyping solve succeeds with (not the sets
// themselves), or an empty slice if no solution exists.
func (r *AttributeResolution) Constraints(left, right types.Type) []string {
	results := r.bundle.engine.SolveLessOrEqual(constraints.New(), left, right)
	out := make([]string, 0, len(results))
	for range results {
		out = append(out, "ok")
	}
	return out
}

// ConstraintsSolutionExists implements `constraints_solution_exists(left,
// right)`.
func (r *AttributeResolution) ConstraintsSolutionExists(left, right types.Type) bool {
	return r.bundle.engine.AlwaysLessOrEqual(left, right)
}

// ResolveLiteral implements `resolve_literal(expr, module)`: resolve an
// annotation-position expression to a type under module's alias table.
func (r *AttributeResolution) ResolveLiteral(expr coreast.Expression, module ModuleReference) types.Type {
	return annotation.Resolve(expr, r.aliases(module))
}

// ParseAnnotation implements `parse_annotation(expr, module)` (spec
// §4.1), the same operation as ResolveLiteral under the spec's own name.
func (r *AttributeResolution) ParseAnnotation(expr coreast.Expression, module ModuleReference) types.Type {
	return r.ResolveLiteral(expr, module)
}

// CreateOverload implements `create_overload(params, annotation)`, a
// convenience constructor signature selection's tests lean on heavily.
func (r *AttributeResolution) CreateOverload(defined []types.Parameter2, ret types.Type) types.Overload {
	return types.Overload{Annotation: ret, ParametersKind: types.ParametersDefined, Defined: defined}
}

// SignatureSelect implements `signature_select(callable, args, resolve)`.
func (r *AttributeResolution) SignatureSelect(callable types.Callable, resolveExpr signature.ResolveExprFunc, args []coreast.Argument) signature.Result {
	return signature.Select(r.bundle.engine, callable, resolveExpr, args)
}

// Join implements the order lattice's `join(t1, t2)` query (spec §4.2).
func (r *AttributeResolution) Join(a, b types.Type) types.Type {
	return r.bundle.engine.Join(a, b)
}

// Meet implements the order lattice's `meet(t1, t2)` query (spec §4.2).
func (r *AttributeResolution) Meet(a, b types.Type) types.Type {
	return r.bundle.engine.Meet(a, b)
}

// ResolveMutableLiterals implements `resolve_mutable_literals(isLiteral,
// resolved, expected)` (spec §4.6).
func (r *AttributeResolution) ResolveMutableLiterals(isLiteral bool, resolved, expected types.Type) types.Type {
	return r.bundle.engine.WeakenMutableLiterals(constraints.New(), isLiteral, resolved, expected)
}

// UndecoratedFunction implements `UndecoratedFunctionEnvironment::get`
// (spec §4.3 layer 8): name's signature within module, before any
// decorator applies. Tracked (NewQuery(true)) for the same reason
// Attributes is: a real read must leave a dependency edge behind so a
// later update can invalidate it.
func (s *Stack) UndecoratedFunction(module ModuleReference, name string) types.Callable {
	return s.undecoratedFunctions.Get(NewQuery(true), Qualify(module, name))
}

// AnnotatedGlobal implements `AnnotatedGlobalEnvironment::get_global`
// (spec §4.3 layer 10): name's declared annotation within module, falling
// back to Any when undeclared. Tracked for the same reason.
func (s *Stack) AnnotatedGlobal(module ModuleReference, name string) types.Type {
	return s.annotatedGlobals.Get(NewQuery(true), Qualify(module, name))
}

// Persist implements spec §6: write every currently-cached
// annotated_globals and undecorated_functions entry to st, so a later
// process can restore them instead of recomputing from the AST. These two
// layers are the ones whose value type (types.Type, types.Callable) is a
// closed sum gob can round-trip once its variants are registered (see
// this package's init); the remaining layers stay recompute-from-source
// only.
func (s *Stack) Persist(st *store.Store) error {
	for _, key := range s.annotatedGlobals.Keys() {
		v, ok := s.annotatedGlobals.Peek(key)
		if !ok {
			continue
		}
		b, err := store.Encode[types.Type](v)
		if err != nil {
			return fmt.Errorf("environment: persist annotated_globals[%s]: %w", key, err)
		}
		if err := st.SaveEntry(store.Entry{
			Layer: "annotated_globals", Key: key, Value: b, Generation: s.annotatedGlobals.Generation(key),
		}); err != nil {
			return err
		}
	}
	for _, key := range s.undecoratedFunctions.Keys() {
		v, ok := s.undecoratedFunctions.Peek(key)
		if !ok {
			continue
		}
		b, err := store.Encode[types.Callable](v)
		if err != nil {
			return fmt.Errorf("environment: persist undecorated_functions[%s]: %w", key, err)
		}
		if err := st.SaveEntry(store.Entry{
			Layer: "undecorated_functions", Key: key, Value: b, Generation: s.undecoratedFunctions.Generation(key),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Restore implements the read side of spec §6: seed the annotated_globals
// and undecorated_functions caches from st, so a fresh Stack over the same
// modules starts from saved state rather than an empty cache. A module
// whose AST has changed since the save is still correct: ApplyUpdates'
// wholesale class_hierarchy invalidation and the ast layer's own
// invalidation-on-reparse both route around whatever Restore seeded here
// the moment that module is next updated.
func (s *Stack) Restore(st *store.Store) error {
	entries, err := st.AllEntries("annotated_globals")
	if err != nil {
		return err
	}
	for _, e := range entries {
		v, err := store.Decode[types.Type](e.Value)
		if err != nil {
			return fmt.Errorf("environment: restore annotated_globals[%s]: %w", e.Key, err)
		}
		s.annotatedGlobals.Seed(e.Key, v, e.Generation)
	}

	entries, err = st.AllEntries("undecorated_functions")
	if err != nil {
		return err
	}
	for _, e := range entries {
		v, err := store.Decode[types.Callable](e.Value)
		if err != nil {
			return fmt.Errorf("environment: restore undecorated_functions[%s]: %w", e.Key, err)
		}
		s.undecoratedFunctions.Seed(e.Key, v, e.Generation)
	}
	return nil
}

// Constructor implements `constructor(class)`: the callable produced by
// resolving `__init__` (or `__new__`) against the class's own receiver
// type, the same binding attribute access to an instance uses elsewhere.
func (r *AttributeResolution) Constructor(className string) (types.Callable, bool) {
	idx, ok := r.bundle.hierarchy.IndexOf(className)
	if !ok {
		return types.Callable{}, false
	}
	table, ok := r.bundle.resolver.AllAttributes(idx)
	if !ok {
		return types.Callable{}, false
	}
	receiver := types.NewPrimitive(className)
	for _, name := range []string{"__init__", "__new__"} {
		attr, has := table[name]
		if !has {
			continue
		}
		bound, ok := r.bundle.resolver.InstantiateAgainstReceiver(attr, receiver)
		if !ok {
			continue
		}
		if c, ok := bound.(types.Callable); ok {
			return c, true
		}
	}
	return types.Callable{}, false
}
