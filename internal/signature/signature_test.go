package signature

import (
	"testing"

	"github.com/glyphlang/typecore/internal/classes"
	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/order"
	"github.com/glyphlang/typecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildEngine() *order.Engine {
	h := classes.NewHierarchy()
	object := h.Intern("object")
	h.SetBases(object, nil)
	return order.New(h, nil, nil)
}

func namedArg(name string, t types.Type) (coreast.Argument, types.Type) {
	return coreast.Argument{Name: name, Value: coreast.Identifier{Name: name}, Kind: coreast.ArgumentPlain}, t
}

func positionalArg(exprName string, t types.Type) (coreast.Argument, types.Type) {
	return coreast.Argument{Value: coreast.Identifier{Name: exprName}, Kind: coreast.ArgumentPlain}, t
}

// resolverFor builds a ResolveExprFunc backed by a fixed expr->type table,
// keyed by the coreast.Identifier name carried on each test's argument.
func resolverFor(bindings map[coreast.Argument]types.Type) ResolveExprFunc {
	byName := map[string]types.Type{}
	for a, t := range bindings {
		if id, ok := a.Value.(coreast.Identifier); ok {
			byName[id.Name] = t
		}
	}
	return func(e coreast.Expression) (types.Type, bool) {
		id, ok := e.(coreast.Identifier)
		if !ok {
			return nil, false
		}
		t, ok := byName[id.Name]
		return t, ok
	}
}

func simpleOverload(params ...types.Parameter2) types.Overload {
	return types.Overload{
		Annotation:     types.NewPrimitive("int"),
		ParametersKind: types.ParametersDefined,
		Defined:        params,
	}
}

func TestSelectMatchesPositionalArguments(t *testing.T) {
	eng := buildEngine()
	overload := simpleOverload(
		types.Parameter2{Kind: types.ParamPositionalOnly, Index: 0, Name: "x", Annotation: types.NewPrimitive("int")},
	)
	callable := types.Callable{Kind: types.CallableNamed, Reference: "f", Implementation: overload}

	arg, argType := positionalArg("x_val", types.NewPrimitive("int"))
	resolve := resolverFor(map[coreast.Argument]types.Type{arg: argType})

	result := Select(eng, callable, resolve, []coreast.Argument{arg})
	assert.True(t, result.Found)
	assert.Equal(t, "int", result.Return.String())
}

func TestSelectReportsMissingArgument(t *testing.T) {
	eng := buildEngine()
	overload := simpleOverload(
		types.Parameter2{Kind: types.ParamNamed, Name: "x", Annotation: types.NewPrimitive("int")},
	)
	callable := types.Callable{Kind: types.CallableNamed, Reference: "f", Implementation: overload}

	result := Select(eng, callable, func(coreast.Expression) (types.Type, bool) { return nil, false }, nil)
	assert.False(t, result.Found)
	assert.Equal(t, ReasonMissingArgument, result.Reason)
}

func TestSelectReportsTooManyArguments(t *testing.T) {
	eng := buildEngine()
	overload := simpleOverload()
	callable := types.Callable{Kind: types.CallableNamed, Reference: "f", Implementation: overload}

	arg, argType := positionalArg("extra", types.NewPrimitive("int"))
	resolve := resolverFor(map[coreast.Argument]types.Type{arg: argType})

	result := Select(eng, callable, resolve, []coreast.Argument{arg})
	assert.False(t, result.Found)
	assert.Equal(t, ReasonTooManyArguments, result.Reason)
}

func TestSelectReportsUnexpectedKeyword(t *testing.T) {
	eng := buildEngine()
	overload := simpleOverload()
	callable := types.Callable{Kind: types.CallableNamed, Reference: "f", Implementation: overload}

	arg, argType := namedArg("bogus", types.NewPrimitive("int"))
	resolve := resolverFor(map[coreast.Argument]types.Type{arg: argType})

	result := Select(eng, callable, resolve, []coreast.Argument{arg})
	assert.False(t, result.Found)
	assert.Equal(t, ReasonUnexpectedKeyword, result.Reason)
}

func TestSelectDefaultsSatisfyMissingParameter(t *testing.T) {
	eng := buildEngine()
	overload := simpleOverload(
		types.Parameter2{Kind: types.ParamNamed, Name: "x", Annotation: types.NewPrimitive("int"), HasDefault: true},
	)
	callable := types.Callable{Kind: types.CallableNamed, Reference: "f", Implementation: overload}

	result := Select(eng, callable, func(coreast.Expression) (types.Type, bool) { return nil, false }, nil)
	assert.True(t, result.Found)
}

func TestSelectPicksOverloadByAnnotation(t *testing.T) {
	eng := buildEngine()
	intOverload := simpleOverload(
		types.Parameter2{Kind: types.ParamPositionalOnly, Index: 0, Name: "x", Annotation: types.NewPrimitive("int")},
	)
	strOverload := types.Overload{
		Annotation:     types.NewPrimitive("str"),
		ParametersKind: types.ParametersDefined,
		Defined: []types.Parameter2{
			{Kind: types.ParamPositionalOnly, Index: 0, Name: "x", Annotation: types.NewPrimitive("str")},
		},
	}
	callable := types.Callable{Kind: types.CallableNamed, Reference: "f", Overloads: []types.Overload{intOverload, strOverload}}

	arg, argType := positionalArg("x_val", types.NewPrimitive("str"))
	resolve := resolverFor(map[coreast.Argument]types.Type{arg: argType})

	result := Select(eng, callable, resolve, []coreast.Argument{arg})
	require.True(t, result.Found)
	assert.Equal(t, "str", result.Return.String())
}

func TestSelectReportsAnnotationMismatch(t *testing.T) {
	eng := buildEngine()
	overload := simpleOverload(
		types.Parameter2{Kind: types.ParamPositionalOnly, Index: 0, Name: "x", Annotation: types.NewPrimitive("int")},
	)
	callable := types.Callable{Kind: types.CallableNamed, Reference: "f", Implementation: overload}

	arg, argType := positionalArg("x_val", types.NewPrimitive("str"))
	resolve := resolverFor(map[coreast.Argument]types.Type{arg: argType})

	result := Select(eng, callable, resolve, []coreast.Argument{arg})
	assert.False(t, result.Found)
	assert.Equal(t, ReasonAnnotationMismatch, result.Reason)
}

func TestSelectUndefinedParametersAcceptAnyCall(t *testing.T) {
	eng := buildEngine()
	overload := types.Overload{Annotation: types.NewPrimitive("int"), ParametersKind: types.ParametersUndefined}
	callable := types.Callable{Kind: types.CallableNamed, Reference: "f", Implementation: overload}

	arg, argType := positionalArg("whatever", types.NewPrimitive("str"))
	resolve := resolverFor(map[coreast.Argument]types.Type{arg: argType})

	result := Select(eng, callable, resolve, []coreast.Argument{arg})
	assert.True(t, result.Found)
}
