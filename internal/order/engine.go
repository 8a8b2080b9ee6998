// Package order implements the order engine (spec C6, §4.2): subtyping,
// join/meet/widen, protocol conformance, and overload simulation. It is
// the component every other solver-shaped query (signature selection,
// attribute instantiation, mutable-literal weakening) is built on top of.
package order

import (
	"github.com/glyphlang/typecore/internal/classes"
	"github.com/glyphlang/typecore/internal/logging"
	"github.com/glyphlang/typecore/internal/types"
	"github.com/google/uuid"
)

// AttributeProvider is the structural-typing surface the order engine
// needs from C8 (attribute resolution). It is expressed as an interface
// rather than a direct import of internal/attributes because the
// dependency is mutually recursive in the spec (§4.3.2: "subtyping can
// require attribute resolution which can require subtyping") — package
// attributes imports package order to call SolveLessOrEqual, so order
// cannot import attributes back without a cycle. The attributes package
// implements this interface and the caller (environment, C9) wires the
// two together.
type AttributeProvider interface {
	// Attributes returns the uninstantiated attribute table of t — its own
	// plus inherited, excluding object/Generic — or ok=false if t is not a
	// class/protocol this provider knows about.
	Attributes(t types.Type) (map[string]types.Type, bool)
	// IsProtocol reports whether t names a declared protocol class.
	IsProtocol(t types.Type) bool
}

// goalKey identifies one protocol-conformance or callable-protocol goal in
// the assumption bag (spec §4.3.2).
type goalKey struct {
	candidate string
	protocol  string
}

type assumptionBag struct {
	tentative map[goalKey][]types.Type
}

func newAssumptionBag() *assumptionBag {
	return &assumptionBag{tentative: map[goalKey][]types.Type{}}
}

// Engine bundles everything the order queries need: the class hierarchy
// for nominal questions, an attribute provider for structural ones, and a
// per-top-level-query assumption bag that cuts the mutual recursion
// between subtyping and attribute resolution.
//
// A fresh assumption bag is meant to be scoped to one top-level entry
// point (spec §5: "partial work in the assumption bag is scoped to the
// call stack and is discarded automatically") — callers get one via
// NewQuery, not by constructing Engine directly with a shared bag.
type Engine struct {
	Classes     *classes.Hierarchy
	Attributes  AttributeProvider
	Log         *logging.Logger
	assumptions *assumptionBag
}

// New constructs an Engine with its own fresh assumption bag. log may be
// nil; a nil *logging.Logger is itself a valid no-op receiver (see
// internal/logging), so callers that don't care about protocol-goal
// tracing can pass nil without an extra branch.
func New(h *classes.Hierarchy, attrs AttributeProvider, log *logging.Logger) *Engine {
	return &Engine{Classes: h, Attributes: attrs, Log: log, assumptions: newAssumptionBag()}
}

// NewQuery returns a copy of e scoped to a new top-level query, with a
// fresh assumption bag — call this at the start of each independent
// top-level solve so that goals tentatively recorded by one query never
// leak into an unrelated one.
func (e *Engine) NewQuery() *Engine {
	return &Engine{Classes: e.Classes, Attributes: e.Attributes, Log: e.Log, assumptions: newAssumptionBag()}
}

// freshGoalID mints a traceable identifier for a protocol-conformance
// goal — used only for logging/debugging, never for control flow, since
// the bag keys on (candidate, protocol) strings instead.
func freshGoalID() string {
	return uuid.NewString()
}
