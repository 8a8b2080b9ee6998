package constraints

import (
	"testing"

	"github.com/glyphlang/typecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBoundsReturnsNewSet(t *testing.T) {
	s0 := New()
	s1 := s0.AddUnaryLowerBound("T$1@1", types.NewPrimitive("int"))

	assert.Empty(t, s0.UnaryBoundsFor("T$1@1").Lower, "original set must be untouched")
	require.Len(t, s1.UnaryBoundsFor("T$1@1").Lower, 1)
	assert.Equal(t, "int", s1.UnaryBoundsFor("T$1@1").Lower[0].String())
}

func TestFallbackToAnyIsTracked(t *testing.T) {
	s := New().FallbackToAny("T$2@1")
	assert.True(t, s.IsFallbackToAny("T$2@1"))
	assert.Contains(t, s.TrackedUnary(), "T$2@1")
}

func TestMergeConcatenatesBounds(t *testing.T) {
	a := New().AddUnaryLowerBound("T", types.NewPrimitive("int"))
	b := New().AddUnaryLowerBound("T", types.NewPrimitive("str"))

	merged := Merge(a, b)
	require.Len(t, merged.UnaryBoundsFor("T").Lower, 2)
}

func TestInstantiateAppliesSolution(t *testing.T) {
	sol := NewSolution()
	sol.Unary["T$1@1"] = types.NewPrimitive("int")

	v := types.Variable{Name: "T$1@1"}
	got := Instantiate(sol, v)
	assert.Equal(t, "int", got.String())
}
