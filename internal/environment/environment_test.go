package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glyphlang/typecore/internal/config"
	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/coreerrors"
	"github.com/glyphlang/typecore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureModules stands in for a real parser (out of scope): a fixed map
// from module reference to the body a parse of it would have produced.
func fixtureModules() map[ModuleReference]ParsedSource {
	animalDef := coreast.Class{Name: "Animal", Bases: []coreast.Expression{coreast.Identifier{Name: "object"}}}
	dogDef := coreast.Class{Name: "Dog", Bases: []coreast.Expression{coreast.Identifier{Name: "Animal"}}}
	nameRef := coreast.Identifier{Name: "name"}
	nameRef.Location = coreast.NewLocation(10, 1, 10, 5)
	greet := coreast.Define{
		Signature: coreast.Signature{
			Name: "greet",
			Parameters: []coreast.Parameter{
				{Name: "name", Kind: coreast.ParamPositionalOnly, Annotation: coreast.Identifier{Name: "str"},
					Location: coreast.NewLocation(9, 1, 9, 5)},
			},
			ReturnAnnotation: coreast.Identifier{Name: "str"},
		},
		Body: []coreast.Statement{
			coreast.Assign{Target: "greeting", Value: nameRef},
		},
	}
	alias := coreast.Assign{Target: "IntList", Value: coreast.Subscript{
		Base: coreast.Identifier{Name: "list"}, Slice: []coreast.Expression{coreast.Identifier{Name: "int"}},
	}}

	return map[ModuleReference]ParsedSource{
		"pkg.animals": {Body: []coreast.Statement{animalDef, dogDef, greet, alias}},
	}
}

func testParse(modules map[ModuleReference]ParsedSource) ParseFunc {
	return func(ref ModuleReference) (ParsedSource, []coreerrors.Error) {
		src, ok := modules[ref]
		if !ok {
			return ParsedSource{}, nil
		}
		return src, nil
	}
}

func TestStackBuildsGlobalsFromParsedBody(t *testing.T) {
	s := NewStack(testParse(fixtureModules()), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "pkg.animals"}})

	info := s.globals.Get(NewQuery(false), "pkg.animals")
	assert.Contains(t, info.Classes, "Animal")
	assert.Contains(t, info.Classes, "Dog")
	assert.Contains(t, info.Globals, "greet")
	assert.True(t, info.Globals["greet"].IsFunction)
	assert.Contains(t, info.Globals, "IntList")
}

func TestStackAnnotatedGlobalOfUnannotatedAliasIsAny(t *testing.T) {
	s := NewStack(testParse(fixtureModules()), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "pkg.animals"}})

	got := s.annotatedGlobals.Get(NewQuery(false), Qualify("pkg.animals", "IntList"))
	assert.Equal(t, "Any", got.String())
}

func TestStackBuildsHierarchyAcrossClasses(t *testing.T) {
	s := NewStack(testParse(fixtureModules()), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "pkg.animals"}})

	resolution := s.Attributes()
	meta := s.classMetadata.Get(NewQuery(false), Qualify("pkg.animals", "Dog"))
	assert.Contains(t, meta.Successors, "Animal")
	_ = resolution
}

func TestStackResolvesUndecoratedFunctionSignature(t *testing.T) {
	s := NewStack(testParse(fixtureModules()), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "pkg.animals"}})

	fn := s.undecoratedFunctions.Get(NewQuery(false), Qualify("pkg.animals", "greet"))
	require.Len(t, fn.Overloads[0].Defined, 1)
	assert.Equal(t, "str", fn.Overloads[0].Defined[0].Annotation.String())
	assert.Equal(t, "str", fn.Overloads[0].Annotation.String())
}

func TestStackLookupTableRecordsParameterReference(t *testing.T) {
	s := NewStack(testParse(fixtureModules()), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "pkg.animals"}})

	table := s.LookupTable("pkg.animals", "greet")
	require.Len(t, table.Types, 1)
	for loc, typ := range table.Types {
		assert.Equal(t, "str", typ.String())
		require.Contains(t, table.Definitions, loc)
		assert.Equal(t, "9:1-9:5", table.Definitions[loc].String())
	}
}

func TestStackLookupTableOnUnknownFunctionIsEmpty(t *testing.T) {
	s := NewStack(testParse(fixtureModules()), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "pkg.animals"}})

	table := s.LookupTable("pkg.animals", "nonexistent")
	assert.Empty(t, table.Types)
	assert.Empty(t, table.Definitions)
}

func TestApplyUpdatesInvalidatesHierarchyOnModuleChange(t *testing.T) {
	modules := fixtureModules()
	s := NewStack(testParse(modules), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "pkg.animals"}})

	before := s.classHierarchy.Get(NewQuery(false), hierarchyKey)
	require.NotNil(t, before.hierarchy)

	result := s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleChanged, Reference: "pkg.animals"}})
	assert.Contains(t, result.Reparsed, ModuleReference("pkg.animals"))

	_, cached := s.classHierarchy.Peek(hierarchyKey)
	assert.False(t, cached, "a module change must invalidate the shared hierarchy")
}

func TestModuleTrackerReportsAddedAndRemoved(t *testing.T) {
	tracker := NewModuleTracker()
	dir := t.TempDir()
	writeSourceFile(t, dir, "a.glyph", "class A: pass")

	updates, err := tracker.Scan(dir)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, ModuleAdded, updates[0].Kind)
	assert.Equal(t, ModuleReference("a"), updates[0].Reference)

	second, err := tracker.Scan(dir)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestStackPersistsAndRestoresAnnotatedLayers(t *testing.T) {
	modules := fixtureModules()
	s := NewStack(testParse(modules), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "pkg.animals"}})

	// Force both persisted layers to populate for the one global and one
	// function the fixture declares.
	wantFn := s.UndecoratedFunction("pkg.animals", "greet")
	wantGlobal := s.AnnotatedGlobal("pkg.animals", "IntList")

	st, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, s.Persist(st))

	restored := NewStack(testParse(modules), config.Default(), nil)
	require.NoError(t, restored.Restore(st))

	gotFn, ok := restored.undecoratedFunctions.Peek(Qualify("pkg.animals", "greet"))
	require.True(t, ok)
	assert.Equal(t, wantFn.String(), gotFn.String())

	gotGlobal, ok := restored.annotatedGlobals.Peek(Qualify("pkg.animals", "IntList"))
	require.True(t, ok)
	assert.Equal(t, wantGlobal.String(), gotGlobal.String())
}

// TestScenarioS6IncrementalInvalidation exercises the named end-to-end
// scenario "Incremental invalidation": build from {m1: "x: int = 1"},
// query get_global(m1.x) = int, update m1 to "x: str = 'hi'", re-query
// and observe str — with no stale int ever produced from a read made
// after the update completed.
func TestScenarioS6IncrementalInvalidation(t *testing.T) {
	intAssign := coreast.Assign{
		Target: "x", Annotation: coreast.Identifier{Name: "int"}, Value: coreast.Constant{Kind: coreast.ConstantInt, Int: 1},
	}
	strAssign := coreast.Assign{
		Target: "x", Annotation: coreast.Identifier{Name: "str"}, Value: coreast.Constant{Kind: coreast.ConstantString, String: "hi"},
	}

	modules := map[ModuleReference]ParsedSource{"m1": {Body: []coreast.Statement{intAssign}}}
	s := NewStack(testParse(modules), config.Default(), nil)
	s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleAdded, Reference: "m1"}})

	got := s.AnnotatedGlobal("m1", "x")
	assert.Equal(t, "int", got.String())

	modules["m1"] = ParsedSource{Body: []coreast.Statement{strAssign}}
	result := s.ApplyUpdates([]IncrementalUpdate{{Kind: ModuleChanged, Reference: "m1"}})
	assert.Contains(t, result.Reparsed, ModuleReference("m1"))

	got = s.AnnotatedGlobal("m1", "x")
	assert.Equal(t, "str", got.String())
}

func writeSourceFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	path := dir + "/" + name
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}
