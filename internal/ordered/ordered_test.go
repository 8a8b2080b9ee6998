package ordered

import (
	"testing"

	"github.com/glyphlang/typecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLenReportsConcreteLength(t *testing.T) {
	n, ok := Len(types.Concrete(types.NewPrimitive("int"), types.NewPrimitive("str")))
	require.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestLenFailsOnConcatenation(t *testing.T) {
	_, ok := Len(types.Concatenation(nil, types.ListVariadicMiddle{Variable: "Ts"}, nil))
	assert.False(t, ok)
}

func TestSplitAroundBoundDividesHeadMiddleTail(t *testing.T) {
	c := types.Concatenation(
		[]types.Type{types.NewPrimitive("int")},
		types.ListVariadicMiddle{Variable: "Ts"},
		[]types.Type{types.NewPrimitive("bool")},
	)
	bound := []types.Type{types.NewPrimitive("int"), types.NewPrimitive("str"), types.NewPrimitive("bool")}

	split, ok := SplitAroundBound(c, bound)
	require.True(t, ok)
	require.Len(t, split.HeadBound, 1)
	require.Len(t, split.TailBound, 1)
	require.Len(t, split.MiddleBound, 1)
	assert.Equal(t, "int", split.HeadBound[0].String())
	assert.Equal(t, "str", split.MiddleBound[0].String())
	assert.Equal(t, "bool", split.TailBound[0].String())
}

func TestSplitAroundBoundFailsWhenBoundTooShort(t *testing.T) {
	c := types.Concatenation(
		[]types.Type{types.NewPrimitive("int"), types.NewPrimitive("str")},
		types.ListVariadicMiddle{Variable: "Ts"},
		nil,
	)
	_, ok := SplitAroundBound(c, []types.Type{types.NewPrimitive("int")})
	assert.False(t, ok)
}

func TestZipUnaryPairsPositionally(t *testing.T) {
	declared := []DeclaredSlot{
		{Kind: ZipUnary, Name: "T", Variance: types.Covariant},
		{Kind: ZipUnary, Name: "U", Variance: types.Contravariant},
	}
	actual := []types.Parameter{
		{Single: types.NewPrimitive("int")},
		{Single: types.NewPrimitive("str")},
	}

	pairs, ok := Zip(declared, actual)
	require.True(t, ok)
	require.Len(t, pairs, 2)
	assert.Equal(t, "int", pairs[0].Actual.String())
	assert.Equal(t, "str", pairs[1].Actual.String())
}

func TestZipListVariadicCarriesOrderedTypes(t *testing.T) {
	declared := []DeclaredSlot{{Kind: ZipListVariadic, Name: "Ts"}}
	group := types.Concrete(types.NewPrimitive("int"), types.NewPrimitive("str"))
	actual := []types.Parameter{{Group: &group}}

	pairs, ok := Zip(declared, actual)
	require.True(t, ok)
	require.Len(t, pairs, 1)
	require.NotNil(t, pairs[0].Ordered)
	assert.Equal(t, "int, str", pairs[0].Ordered.String())
}

func TestZipParameterVariadicCarriesCallableParameters(t *testing.T) {
	declared := []DeclaredSlot{{Kind: ZipParameterVariadic, Name: "P"}}
	cp := types.CallableParameters{Variable: "P"}
	actual := []types.Parameter{{CallableParameters: &cp}}

	pairs, ok := Zip(declared, actual)
	require.True(t, ok)
	require.Len(t, pairs, 1)
	require.NotNil(t, pairs[0].ParamsOf)
	assert.Equal(t, "P", pairs[0].ParamsOf.Variable)
}

// TestZipFailsAtomicallyOnShapeMismatch pins down the §9 "fail atomically"
// requirement: a declared unary slot paired against an actual that only
// offers a Group (no Single) must fail the whole zip, not silently
// produce a partial result.
func TestZipFailsAtomicallyOnShapeMismatch(t *testing.T) {
	declared := []DeclaredSlot{
		{Kind: ZipUnary, Name: "T"},
		{Kind: ZipUnary, Name: "U"},
	}
	group := types.Concrete(types.NewPrimitive("int"))
	actual := []types.Parameter{
		{Single: types.NewPrimitive("int")},
		{Group: &group},
	}

	pairs, ok := Zip(declared, actual)
	assert.False(t, ok)
	assert.Nil(t, pairs)
}

func TestZipFailsOnLengthMismatch(t *testing.T) {
	declared := []DeclaredSlot{{Kind: ZipUnary, Name: "T"}}
	_, ok := Zip(declared, nil)
	assert.False(t, ok)
}
