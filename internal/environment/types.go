package environment

import (
	"strings"

	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/coreerrors"
)

// ModuleReference names a module the way the rest of the core refers to
// one: a dotted path, independent of the filesystem layout that produced
// it (spec §4.3 layer 2's key).
type ModuleReference string

// IncrementalUpdateKind distinguishes the three filesystem events the
// module tracker reports (spec §6's `IncrementalUpdate` enum).
type IncrementalUpdateKind int

const (
	ModuleAdded IncrementalUpdateKind = iota
	ModuleRemoved
	ModuleChanged
)

// IncrementalUpdate is one filesystem change the module tracker detected.
type IncrementalUpdate struct {
	Kind      IncrementalUpdateKind
	Path      string
	Reference ModuleReference
}

// ParsedSource is a module's parsed form (spec §4.3 layer 2): a body of
// statements plus any wildcard (`from X import *`) export names. The
// parser itself is external (§1 Non-goals); ParseFunc is the seam a
// caller supplies to produce one.
type ParsedSource struct {
	Body            []coreast.Statement
	WildcardExports []string
}

// ParseFunc parses one module's source into a ParsedSource, reporting
// syntax errors it could not recover from.
type ParseFunc func(ref ModuleReference) (ParsedSource, []coreerrors.Error)

// AstUpdateResult is the `{reparsed, syntax_errors, system_errors}`
// result of spec §4.3.1 step 2.
type AstUpdateResult struct {
	Reparsed     []ModuleReference
	SyntaxErrors map[ModuleReference][]coreerrors.Error
	SystemErrors map[ModuleReference]error
}

// UnannotatedGlobal is a module-level name before any annotation has been
// resolved (spec §4.3 layer 3).
type UnannotatedGlobal struct {
	Name       string
	Annotation coreast.Expression // nil if the declaration has none
	Value      coreast.Expression
	IsFunction bool
}

// ClassDef is a class declaration as seen by the unannotated-global layer,
// before attribute resolution (C8) or the hierarchy (C4) act on it.
type ClassDef struct {
	Name       string
	Bases      []coreast.Expression
	Decorators []coreast.Expression
	Body       []coreast.Statement
	IsProtocol bool
	IsStub     bool
}

// GlobalsInfo is one module's unannotated surface (spec §4.3 layer 3):
// name → unannotated global, class definitions, protocol flags.
type GlobalsInfo struct {
	Globals map[string]UnannotatedGlobal
	Classes map[string]ClassDef
}

// ClassMetadata is a class's per-class metadata (spec §4.3 layer 7):
// successors list and stub flag (there is no test-module flag).
// produceClassMetadata leaves Metaclass empty; it is not computed.
type ClassMetadata struct {
	Successors []string
	IsStub     bool
	Metaclass  string
}

// isProtocolBase reports whether a base-class expression names
// `Protocol` or `typing.Protocol`.
func isProtocolBase(expr coreast.Expression) bool {
	name, ok := dottedName(expr)
	if !ok {
		return false
	}
	return lastSegment(name) == "Protocol"
}

func dottedName(expr coreast.Expression) (string, bool) {
	switch e := expr.(type) {
	case coreast.Identifier:
		return e.Name, true
	case coreast.Attribute:
		base, ok := dottedName(e.BaseExpr)
		if !ok {
			return "", false
		}
		return base + "." + e.AttrName, true
	default:
		return "", false
	}
}

func lastSegment(dotted string) string {
	idx := strings.LastIndex(dotted, ".")
	if idx < 0 {
		return dotted
	}
	return dotted[idx+1:]
}

// isDataclassDecorator reports whether a decorator expression names one
// of the recognized dataclass-like decorators (spec §4.4.2).
func isDataclassDecorator(expr coreast.Expression) (name string, ok bool) {
	switch e := expr.(type) {
	case coreast.Call:
		return isDataclassDecorator(e.Func)
	default:
		n, found := dottedName(e)
		if !found {
			return "", false
		}
		if n == "attr.s" {
			return n, true
		}
		switch lastSegment(n) {
		case "dataclass", "attrs", "attr.s":
			return lastSegment(n), true
		}
		return "", false
	}
}
