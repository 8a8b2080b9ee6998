// Package lookup implements spec §6's lookup table builder: the
// IDE-facing component the core exposes alongside the environment
// handles (§4.3) and the order/attribute query surfaces (§4.2, §4.4).
// Given a function's signature, body, and a per-function local-
// annotation map, it walks the body's expressions and records which
// location resolves to which type, and which location defined the name
// referenced at another location.
package lookup

import (
	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/types"
)

// Table is the pair of maps spec §6 names, keyed by each location's
// canonical String() form: `(location -> type)` and
// `(location -> definition_location)`. The `any`/`synthetic`
// distinguished Location values are skipped entirely, as
// coreast.Location's doc comment describes.
type Table struct {
	Types       map[string]types.Type
	Definitions map[string]coreast.Location
}

func newTable() *Table {
	return &Table{Types: map[string]types.Type{}, Definitions: map[string]coreast.Location{}}
}

// Build walks sig's parameters and body, recording an entry for every
// Identifier reference whose name locals already resolves (an Attribute
// gets no entry of its own; only its base expression is walked).
// locals is the "per-function local-annotation map" spec §6 calls for:
// callers build it the same way internal/environment's
// callableFromSignature resolves parameter annotations (via
// annotation.Resolve), plus whatever locally-assigned names they choose
// to carry forward. A name missing from locals — most commonly an
// unannotated local the core has not inferred a type for — is simply
// skipped rather than guessed at.
//
// body is walked as a flat statement list, not a true control-flow
// graph: branch-sensitive narrowing is out of scope (spec §1), so every
// occurrence of a name is recorded against the same type regardless of
// which branch it appears in.
func Build(sig coreast.Signature, body []coreast.Statement, locals map[string]types.Type) *Table {
	defs := make(map[string]coreast.Location, len(sig.Parameters))
	for _, p := range sig.Parameters {
		defs[p.Name] = p.Location
	}
	w := &walker{locals: locals, defs: defs, table: newTable()}
	for _, stmt := range body {
		w.statement(stmt)
	}
	return w.table
}

type walker struct {
	locals map[string]types.Type
	defs   map[string]coreast.Location
	table  *Table
}

func (w *walker) record(name string, loc coreast.Location) {
	if loc.IsAny() || loc.IsSynthetic() {
		return
	}
	typ, ok := w.locals[name]
	if !ok {
		return
	}
	key := loc.String()
	w.table.Types[key] = typ
	if defLoc, ok := w.defs[name]; ok {
		w.table.Definitions[key] = defLoc
	}
}

func (w *walker) statement(stmt coreast.Statement) {
	switch s := stmt.(type) {
	case coreast.Assign:
		w.defs[s.Target] = s.GetLocation()
		w.expression(s.Annotation)
		w.expression(s.Value)
	case coreast.Define:
		// A nested function declares its own scope; spec §6 scopes the
		// lookup table per-function, so its body is built independently
		// by a caller that recurses with the nested Signature/Body — only
		// the enclosing scope's decorator expressions are walked here.
		for _, d := range s.Signature.Decorators {
			w.expression(d)
		}
	case coreast.Class:
		for _, b := range s.Bases {
			w.expression(b)
		}
		for _, d := range s.Decorators {
			w.expression(d)
		}
	case coreast.Import:
		// no expressions to walk
	}
}

func (w *walker) expression(expr coreast.Expression) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case coreast.Identifier:
		w.record(e.Name, e.GetLocation())
	case coreast.Attribute:
		w.expression(e.BaseExpr)
	case coreast.Call:
		w.expression(e.Func)
		for _, a := range e.Arguments {
			w.expression(a.Value)
		}
	case coreast.Subscript:
		w.expression(e.Base)
		for _, s := range e.Slice {
			w.expression(s)
		}
	case coreast.BinaryOp:
		w.expression(e.Left)
		w.expression(e.Right)
	case coreast.Constant:
		// a literal has no name to record
	}
}
