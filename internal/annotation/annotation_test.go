package annotation

import (
	"testing"

	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/types"
	"github.com/stretchr/testify/assert"
)

func id(name string) coreast.Identifier { return coreast.Identifier{Name: name} }

func TestResolveBuiltinPrimitive(t *testing.T) {
	got := Resolve(id("int"), nil)
	assert.Equal(t, "int", got.String())
}

func TestResolveNoneIsNoneType(t *testing.T) {
	got := Resolve(id("None"), nil)
	assert.True(t, types.IsNone(got))
}

func TestResolveOptionalSubscript(t *testing.T) {
	expr := coreast.Subscript{Base: id("Optional"), Slice: []coreast.Expression{id("int")}}
	got := Resolve(expr, nil)
	inner, ok := types.IsOptional(got)
	assert.True(t, ok)
	assert.Equal(t, "int", inner.String())
}

func TestResolveUnionBinaryOp(t *testing.T) {
	expr := coreast.BinaryOp{Left: id("int"), Op: "|", Right: id("None")}
	got := Resolve(expr, nil)
	inner, ok := types.IsOptional(got)
	assert.True(t, ok)
	assert.Equal(t, "int", inner.String())
}

func TestResolveGenericSubscript(t *testing.T) {
	expr := coreast.Subscript{Base: id("List"), Slice: []coreast.Expression{id("str")}}
	got := Resolve(expr, nil)
	assert.Equal(t, "List[str]", got.String())
}

func TestResolveLiteralSubscript(t *testing.T) {
	expr := coreast.Subscript{
		Base: id("Literal"),
		Slice: []coreast.Expression{
			coreast.Constant{Kind: coreast.ConstantInt, Int: 1},
			coreast.Constant{Kind: coreast.ConstantInt, Int: 2},
		},
	}
	got := Resolve(expr, nil)
	assert.Equal(t, "Literal[1] | Literal[2]", got.String())
}

func TestResolveTypeAliasChain(t *testing.T) {
	aliases := func(name string) (Alias, bool) {
		if name == "IntAlias" {
			return Alias{Kind: TypeAliasKind, Expr: id("int")}, true
		}
		return Alias{}, false
	}
	got := Resolve(id("IntAlias"), aliases)
	assert.Equal(t, "int", got.String())
}

func TestResolveVariableAlias(t *testing.T) {
	aliases := func(name string) (Alias, bool) {
		if name == "T" {
			return Alias{Kind: VariableAliasKind, Variable: "T"}, true
		}
		return Alias{}, false
	}
	got := Resolve(id("T"), aliases)
	assert.Equal(t, "T", got.String())
}

func TestResolveCyclicAliasRecoversToAny(t *testing.T) {
	aliases := func(name string) (Alias, bool) {
		switch name {
		case "X":
			return Alias{Kind: TypeAliasKind, Expr: id("Y")}, true
		case "Y":
			return Alias{Kind: TypeAliasKind, Expr: id("X")}, true
		}
		return Alias{}, false
	}
	got := Resolve(id("X"), aliases)
	assert.True(t, types.IsAny(got))
}

func TestResolveUnannotatedIsAny(t *testing.T) {
	got := Resolve(nil, nil)
	assert.True(t, types.IsAny(got))
}
