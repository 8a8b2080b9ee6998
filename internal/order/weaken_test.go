package order

import (
	"testing"

	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestWeakenMutableLiteralsListToObject(t *testing.T) {
	e := New(buildHierarchy(), nil, nil)
	resolved := types.NewParametric("list", types.SingleParam(types.NewPrimitive("Dog")))
	expected := types.NewParametric("List", types.SingleParam(types.Top))

	got := e.WeakenMutableLiterals(constraints.New(), true, resolved, expected)
	assert.Equal(t, "List[Top]", got.String())
}

func TestWeakenMutableLiteralsSkipsNonLiteral(t *testing.T) {
	e := New(buildHierarchy(), nil, nil)
	resolved := types.NewParametric("list", types.SingleParam(types.NewPrimitive("Dog")))
	expected := types.NewParametric("List", types.SingleParam(types.Top))

	got := e.WeakenMutableLiterals(constraints.New(), false, resolved, expected)
	assert.Equal(t, resolved.String(), got.String())
}

func TestWeakenMutableLiteralsOptional(t *testing.T) {
	e := New(buildHierarchy(), nil, nil)
	resolved := types.NewParametric("list", types.SingleParam(types.NewPrimitive("Dog")))
	expected := types.Optional(types.NewParametric("List", types.SingleParam(types.NewPrimitive("Animal"))))

	got := e.WeakenMutableLiterals(constraints.New(), true, resolved, expected)
	assert.Equal(t, "List[Animal]", got.String())
}

func TestWeakenTypedDictionaryDropsNonTotalMissingField(t *testing.T) {
	e := New(buildHierarchy(), nil, nil)
	resolved := types.TypedDictionary{Name: "Movie", Total: true, Fields: []types.TypedDictionaryField{
		{Name: "title", Type: types.NewPrimitive("str")},
	}}
	expected := types.TypedDictionary{Name: "Movie", Total: false, Fields: []types.TypedDictionaryField{
		{Name: "title", Type: types.NewPrimitive("str")},
		{Name: "year", Type: types.NewPrimitive("int")},
	}}

	got := e.WeakenMutableLiterals(constraints.New(), true, resolved, expected)
	td := got.(types.TypedDictionary)
	assert.Len(t, td.Fields, 1)
	assert.Equal(t, "title", td.Fields[0].Name)
}
