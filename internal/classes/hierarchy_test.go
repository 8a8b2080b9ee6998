package classes

import (
	"testing"

	"github.com/glyphlang/typecore/internal/ordered"
	"github.com/glyphlang/typecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDiamond wires up the classic diamond DAG: D inherits B then C (in
// that declaration order), both of which inherit A.
//
//	    A
//	   / \
//	  B   C
//	   \ /
//	    D
func buildDiamond(t *testing.T) (h *Hierarchy, a, b, c, d ClassIndex) {
	t.Helper()
	h = NewHierarchy()
	a = h.Intern("A")
	b = h.Intern("B")
	c = h.Intern("C")
	d = h.Intern("D")
	h.SetBases(a, nil)
	h.SetBases(b, []Edge{{Target: a}})
	h.SetBases(c, []Edge{{Target: a}})
	h.SetBases(d, []Edge{{Target: b}, {Target: c}})
	return h, a, b, c, d
}

// TestLinearizeDiamondAgreesWithC3 exercises spec §8 property 8 on a
// diamond DAG: the MRO must start with the class itself and respect
// declared base order — D's canonical MRO is D, B, C, A.
func TestLinearizeDiamondAgreesWithC3(t *testing.T) {
	h, _, _, _, d := buildDiamond(t)

	mro, err := h.Linearize(d)
	require.Nil(t, err)

	names := make([]string, len(mro))
	for i, idx := range mro {
		info, _ := h.Info(idx)
		names[i] = info.Name
	}
	assert.Equal(t, []string{"D", "B", "C", "A"}, names)
}

func TestLinearizeStartsWithClassItself(t *testing.T) {
	h, a, b, c, d := buildDiamond(t)
	for _, idx := range []ClassIndex{a, b, c, d} {
		mro, err := h.Linearize(idx)
		require.Nil(t, err)
		require.NotEmpty(t, mro)
		assert.Equal(t, idx, mro[0])
	}
}

// TestLinearizeInconsistentOrderFails builds the classic C3 counterexample
// — two classes that disagree about the relative order of their shared
// bases — and checks that merge reports an inconsistency rather than
// silently picking one.
func TestLinearizeInconsistentOrderFails(t *testing.T) {
	h := NewHierarchy()
	o := h.Intern("object")
	x := h.Intern("X")
	y := h.Intern("Y")
	// A declares bases [X, Y], B declares [Y, X]; a class inheriting both
	// A and B (in that order) cannot linearize consistently.
	a := h.Intern("A")
	b := h.Intern("B")
	z := h.Intern("Z")

	h.SetBases(o, nil)
	h.SetBases(x, []Edge{{Target: o}})
	h.SetBases(y, []Edge{{Target: o}})
	h.SetBases(a, []Edge{{Target: x}, {Target: y}})
	h.SetBases(b, []Edge{{Target: y}, {Target: x}})
	h.SetBases(z, []Edge{{Target: a}, {Target: b}})

	_, err := h.Linearize(z)
	require.NotNil(t, err)
}

func TestSuccessorsIsNameBasedMRO(t *testing.T) {
	h, _, _, _, _ := buildDiamond(t)
	names, err := h.Successors("D")
	require.Nil(t, err)
	assert.Equal(t, []string{"D", "B", "C", "A"}, names)
}

func TestSuccessorsUntrackedNameErrors(t *testing.T) {
	h := NewHierarchy()
	_, err := h.Successors("Nope")
	require.NotNil(t, err)
}

func TestIsTransitiveSuccessorAcrossDiamond(t *testing.T) {
	h, a, _, _, d := buildDiamond(t)
	assert.True(t, h.IsTransitiveSuccessor(d, a))
	assert.True(t, h.IsTransitiveSuccessor(d, d))
	assert.False(t, h.IsTransitiveSuccessor(a, d))
}

func TestLeastUpperBoundOfDiamondSiblingsIsShallowestCommonAncestor(t *testing.T) {
	h, a, b, c, _ := buildDiamond(t)
	lub, ok := h.LeastUpperBound(b, c)
	require.True(t, ok)
	assert.Equal(t, a, lub)
}

func TestLeastUpperBoundUnrelatedClassesFails(t *testing.T) {
	h := NewHierarchy()
	x := h.Intern("X")
	y := h.Intern("Y")
	h.SetBases(x, nil)
	h.SetBases(y, nil)

	_, ok := h.LeastUpperBound(x, y)
	assert.False(t, ok)
}

func TestCheckIntegrityDetectsCycle(t *testing.T) {
	h := NewHierarchy()
	a := h.Intern("A")
	b := h.Intern("B")
	h.SetBases(a, []Edge{{Target: b}})
	h.SetBases(b, []Edge{{Target: a}})

	errs := h.CheckIntegrity()
	require.NotEmpty(t, errs)
}

func TestCheckIntegrityCleanDiamondHasNoErrors(t *testing.T) {
	h, _, _, _, _ := buildDiamond(t)
	assert.Empty(t, h.CheckIntegrity())
}

// TestInstantiateSuccessorsParametersBindsThroughGenericEdge exercises
// bindVariables (and, through it, ordered.Zip) by walking a one-hop
// generic edge: Box[T] -> Container[T], instantiated as Box[int] should
// report Container's type argument as int.
func TestInstantiateSuccessorsParametersBindsThroughGenericEdge(t *testing.T) {
	h := NewHierarchy()
	container := h.Intern("Container")
	box := h.Intern("Box")

	h.SetVariables(box, []ordered.DeclaredSlot{{Kind: ordered.ZipUnary, Name: "T", Variance: types.Invariant}})
	h.SetBases(box, []Edge{{Target: container, Parameters: []types.Type{types.Variable{Name: "T"}}}})
	h.SetBases(container, nil)

	params, ok := h.InstantiateSuccessorsParameters([]types.Type{types.NewPrimitive("int")}, box, "Container")
	require.True(t, ok)
	require.Len(t, params, 1)
	assert.Equal(t, "int", params[0].String())
}

func TestInstantiateSuccessorsParametersSameClassReturnsSourceParams(t *testing.T) {
	h := NewHierarchy()
	box := h.Intern("Box")
	h.SetBases(box, nil)

	params, ok := h.InstantiateSuccessorsParameters([]types.Type{types.NewPrimitive("int")}, box, "Box")
	require.True(t, ok)
	assert.Equal(t, "int", params[0].String())
}

func TestInstantiateSuccessorsParametersUnreachableTargetFails(t *testing.T) {
	h := NewHierarchy()
	box := h.Intern("Box")
	h.SetBases(box, nil)

	_, ok := h.InstantiateSuccessorsParameters(nil, box, "Nowhere")
	assert.False(t, ok)
}

// TestBindVariablesSkipsNonUnarySlots pins down bindVariables' documented
// simplification: a list-variadic declared slot zips against its wrapped
// singleton actual parameter as a Group-shaped mismatch, so ordered.Zip
// rejects it and bindVariables leaves it unbound rather than binding it
// to the wrong shape.
func TestBindVariablesSkipsNonUnarySlots(t *testing.T) {
	vars := []ordered.DeclaredSlot{
		{Kind: ordered.ZipUnary, Name: "T"},
		{Kind: ordered.ZipListVariadic, Name: "Ts"},
	}
	params := []types.Type{types.NewPrimitive("int"), types.NewPrimitive("str")}

	subst := bindVariables(vars, params)
	assert.Equal(t, "int", subst.Unary["T"].String())
	_, bound := subst.Unary["Ts"]
	assert.False(t, bound)
}
