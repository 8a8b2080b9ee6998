// Package annotation implements the annotation parser (spec C10, §4.1,
// §4.3 layer 4): mapping an AST expression to a Type under the current
// alias map, resolving `X = Y`/`TypeAlias`-style chains with a
// visited-set so a cyclic alias recovers instead of recursing forever —
// the same shape as the teacher's
// resolveTypeAliasWithCycleCheck(t, visited).
package annotation

import (
	"strings"

	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/types"
)

// AliasKind distinguishes the two alias shapes spec §4.1 names.
type AliasKind int

const (
	// TypeAliasKind: the alias names an expression to resolve (`X = Y`,
	// `X: TypeAlias = Y`). Expr is the right-hand-side AST.
	TypeAliasKind AliasKind = iota
	// VariableAliasKind: the alias names a declared type variable.
	VariableAliasKind
)

type Alias struct {
	Kind     AliasKind
	Expr     coreast.Expression // valid when Kind == TypeAliasKind
	Variable string              // valid when Kind == VariableAliasKind
}

// AliasLookup resolves a bare name against the current alias map. A
// concrete instance over a module's declarations is produced by
// internal/environment's AliasEnvironment layer.
type AliasLookup func(name string) (Alias, bool)

var builtinPrimitives = map[string]bool{
	"int": true, "str": true, "bool": true, "float": true,
	"bytes": true, "object": true, "complex": true,
}

// Resolve maps an AST expression to a Type under aliases (spec C10's
// entry point; `parse_annotation` in the AttributeResolution surface,
// §4.3 layer 9). A nil expression (unannotated) resolves to Any.
func Resolve(expr coreast.Expression, aliases AliasLookup) types.Type {
	if expr == nil {
		return types.Any
	}
	return resolve(expr, aliases, map[string]bool{})
}

func resolve(expr coreast.Expression, aliases AliasLookup, visiting map[string]bool) types.Type {
	switch e := expr.(type) {
	case coreast.Identifier:
		return resolveName(e.Name, aliases, visiting)
	case coreast.Attribute:
		name, ok := dottedName(e)
		if !ok {
			return types.Any
		}
		return resolveName(name, aliases, visiting)
	case coreast.Subscript:
		return resolveSubscript(e, aliases, visiting)
	case coreast.BinaryOp:
		if e.Op == "|" {
			return types.NewUnion(resolve(e.Left, aliases, visiting), resolve(e.Right, aliases, visiting))
		}
		return types.Any
	case coreast.Constant:
		return literalFromConstant(e)
	default:
		return types.Any
	}
}

// resolveName looks a bare or dotted name up in the alias map, falling
// through to a builtin primitive or a bare nominal reference. A name
// already being resolved higher up the call stack (an alias cycle)
// recovers to Any rather than recursing.
func resolveName(name string, aliases AliasLookup, visiting map[string]bool) types.Type {
	if name == "None" {
		return types.NoneType
	}
	if builtinPrimitives[lastSegment(name)] {
		return types.NewPrimitive(lastSegment(name))
	}
	if aliases == nil {
		return types.NewPrimitive(name)
	}
	a, ok := aliases(name)
	if !ok {
		return types.NewPrimitive(name)
	}
	if a.Kind == VariableAliasKind {
		return types.Variable{Name: a.Variable}
	}
	if visiting[name] {
		return types.Any
	}
	visiting[name] = true
	defer delete(visiting, name)
	return resolve(a.Expr, aliases, visiting)
}

func resolveSubscript(e coreast.Subscript, aliases AliasLookup, visiting map[string]bool) types.Type {
	name, ok := dottedName(e.Base)
	if !ok {
		return types.Any
	}
	switch lastSegment(name) {
	case "Optional":
		if len(e.Slice) != 1 {
			return types.Any
		}
		return types.Optional(resolve(e.Slice[0], aliases, visiting))
	case "Union":
		alts := make([]types.Type, len(e.Slice))
		for i, s := range e.Slice {
			alts[i] = resolve(s, aliases, visiting)
		}
		return types.NewUnion(alts...)
	case "Literal":
		lits := make([]types.Type, 0, len(e.Slice))
		for _, s := range e.Slice {
			if c, ok := s.(coreast.Constant); ok {
				lits = append(lits, literalFromConstant(c))
			}
		}
		return types.NewUnion(lits...)
	case "Callable":
		return resolveCallable(e, aliases, visiting)
	default:
		params := make([]types.Parameter, len(e.Slice))
		for i, s := range e.Slice {
			params[i] = types.SingleParam(resolve(s, aliases, visiting))
		}
		return types.NewParametric(lastSegment(name), params...)
	}
}

// resolveCallable handles `Callable[..., Ret]`. `Callable[[params...],
// Ret]` needs a list-expression AST node this surface's Subscript (one
// base, one flat slice) cannot carry — every Callable subscript is
// treated as having undefined parameters rather than rejected; see
// DESIGN.md.
func resolveCallable(e coreast.Subscript, aliases AliasLookup, visiting map[string]bool) types.Type {
	if len(e.Slice) != 2 {
		return types.Any
	}
	ret := resolve(e.Slice[1], aliases, visiting)
	return types.Callable{
		Kind:           types.CallableAnonymous,
		Implementation: types.Overload{Annotation: ret, ParametersKind: types.ParametersUndefined},
	}
}

func literalFromConstant(c coreast.Constant) types.Type {
	switch c.Kind {
	case coreast.ConstantBool:
		return types.NewBoolLiteral(c.Bool)
	case coreast.ConstantInt:
		return types.NewIntLiteral(c.Int)
	case coreast.ConstantString:
		return types.NewStringLiteral(c.String)
	default:
		return types.NoneType
	}
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
