package attributes

import (
	"testing"

	"github.com/glyphlang/typecore/internal/classes"
	"github.com/glyphlang/typecore/internal/order"
	"github.com/glyphlang/typecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPointHierarchy() (*classes.Hierarchy, classes.ClassIndex, classes.ClassIndex) {
	h := classes.NewHierarchy()
	object := h.Intern("object")
	point := h.Intern("Point")
	h.SetBases(object, nil)
	h.SetBases(point, []classes.Edge{{Target: object}})
	return h, object, point
}

func TestBuildUninstantiatedTableSynthesizesStubMembers(t *testing.T) {
	table := BuildUninstantiatedTable(nil, ClassFlags{IsStub: true})
	_, hasInit := table["__init__"]
	_, hasGetattr := table["__getattr__"]
	assert.True(t, hasInit)
	assert.True(t, hasGetattr)
}

func TestDataclassSynthesizesInitAndEq(t *testing.T) {
	fields := []DataclassField{
		{Name: "x", Annotation: types.NewPrimitive("int")},
		{Name: "y", Annotation: types.NewPrimitive("int"), HasDefault: true},
	}
	table := SynthesizeDataclass(Table{}, "Point", fields, DataclassOptions{Init: true, Eq: true})

	initAttr, ok := table["__init__"]
	require.True(t, ok)
	callable := initAttr.Annotation.(types.Callable)
	require.Len(t, callable.Implementation.Defined, 2)
	assert.Equal(t, "x", callable.Implementation.Defined[0].Name)
	assert.False(t, callable.Implementation.Defined[0].HasDefault)
	assert.True(t, callable.Implementation.Defined[1].HasDefault)

	_, hasEq := table["__eq__"]
	assert.True(t, hasEq)
}

func TestMergeDataclassFieldsOverridesByName(t *testing.T) {
	parent := []DataclassField{{Name: "x", Annotation: types.NewPrimitive("int")}}
	own := []DataclassField{{Name: "x", Annotation: types.NewPrimitive("str")}, {Name: "y", Annotation: types.NewPrimitive("int")}}
	merged := MergeDataclassFields(parent, own)

	require.Len(t, merged, 2)
	assert.Equal(t, "str", merged[0].Annotation.String())
	assert.Equal(t, "y", merged[1].Name)
}

func TestInstantiateAgainstReceiverBindsSelf(t *testing.T) {
	h, _, point := buildPointHierarchy()
	r := NewResolver(h)
	r.SetTable(point, SynthesizeDataclass(Table{}, "Point", []DataclassField{{Name: "x", Annotation: types.NewPrimitive("int")}}, DataclassOptions{Init: true}))

	eng := order.New(h, r, nil)
	r.SetEngine(eng)

	attr := r.tables[point]["__init__"]
	instantiated, ok := r.InstantiateAgainstReceiver(attr, types.NewPrimitive("Point"))
	require.True(t, ok)
	callable := instantiated.(types.Callable)
	require.NotNil(t, callable.Implicit)
	assert.Equal(t, "Point", callable.Implicit.Annotation.String())
}

func TestTypedDictionaryOverloads(t *testing.T) {
	td := types.TypedDictionary{
		Name:  "Movie",
		Total: true,
		Fields: []types.TypedDictionaryField{
			{Name: "title", Type: types.NewPrimitive("str")},
			{Name: "year", Type: types.NewPrimitive("int")},
		},
	}
	table := SynthesizeTypedDictionaryOverloads(td)

	_, hasGet := table["__getitem__"]
	_, hasSet := table["__setitem__"]
	_, hasPop := table["pop"]
	assert.True(t, hasGet)
	assert.True(t, hasSet)
	assert.False(t, hasPop, "total dictionary must not get pop/__delitem__")
}

func TestTupleGetItemPerIndex(t *testing.T) {
	tup := types.NewBoundedTuple(types.Concrete(types.NewPrimitive("int"), types.NewPrimitive("str")))
	attr, ok := SynthesizeTupleGetItem(tup)
	require.True(t, ok)
	callable := attr.Annotation.(types.Callable)
	require.Len(t, callable.Overloads, 2)
	assert.Equal(t, "int", callable.Overloads[0].Annotation.String())
	assert.Equal(t, "str", callable.Overloads[1].Annotation.String())
}

func TestAllAttributesMergesMRO(t *testing.T) {
	h, object, point := buildPointHierarchy()
	r := NewResolver(h)
	r.SetTable(object, Table{"__init__": {Kind: AttrMethod, Annotation: zeroArgMethod("__init__", types.NoneType)}})
	r.SetTable(point, Table{"x": {Kind: AttrSimpleAssignment, Annotation: types.NewPrimitive("int")}})

	merged, ok := r.AllAttributes(point)
	require.True(t, ok)
	_, hasInit := merged["__init__"]
	_, hasX := merged["x"]
	assert.True(t, hasInit)
	assert.True(t, hasX)
}
