package lookup

import (
	"testing"

	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(line int) coreast.Location { return coreast.NewLocation(line, 1, line, 5) }

func TestBuildRecordsEachAnnotatedReference(t *testing.T) {
	paramLoc := at(1)
	firstUse := coreast.Identifier{Name: "x"}
	firstUse.Location = at(2)
	secondUse := coreast.Identifier{Name: "x"}
	secondUse.Location = at(3)

	sig := coreast.Signature{
		Name:       "greet",
		Parameters: []coreast.Parameter{{Name: "x", Location: paramLoc}},
	}
	body := []coreast.Statement{
		coreast.Assign{Target: "y", Value: firstUse},
		coreast.Assign{Target: "z", Value: secondUse},
	}
	locals := map[string]types.Type{"x": types.NewPrimitive("int")}

	table := Build(sig, body, locals)

	require.Contains(t, table.Types, firstUse.Location.String())
	require.Contains(t, table.Types, secondUse.Location.String())
	assert.Equal(t, "int", table.Types[firstUse.Location.String()].String())
	assert.Equal(t, "int", table.Types[secondUse.Location.String()].String())
	assert.Equal(t, paramLoc, table.Definitions[firstUse.Location.String()])
	assert.Equal(t, paramLoc, table.Definitions[secondUse.Location.String()])
}

func TestBuildSkipsReferencesWithNoResolvedLocal(t *testing.T) {
	unknown := coreast.Identifier{Name: "mystery"}
	unknown.Location = at(2)

	sig := coreast.Signature{Name: "f"}
	body := []coreast.Statement{coreast.Assign{Target: "out", Value: unknown}}

	table := Build(sig, body, nil)

	assert.Empty(t, table.Types)
	assert.Empty(t, table.Definitions)
}

func TestBuildSkipsAnyAndSyntheticLocations(t *testing.T) {
	anyRef := coreast.Identifier{Name: "x"}
	anyRef.Location = coreast.AnyLocation
	syntheticRef := coreast.Identifier{Name: "x"}
	syntheticRef.Location = coreast.SyntheticLocation

	sig := coreast.Signature{Name: "f"}
	body := []coreast.Statement{
		coreast.Assign{Target: "a", Value: anyRef},
		coreast.Assign{Target: "b", Value: syntheticRef},
	}
	locals := map[string]types.Type{"x": types.NewPrimitive("int")}

	table := Build(sig, body, locals)

	assert.Empty(t, table.Types)
	assert.Empty(t, table.Definitions)
}

func TestBuildWalksNestedCallAndAttributeExpressions(t *testing.T) {
	arg := coreast.Identifier{Name: "x"}
	arg.Location = at(4)
	base := coreast.Identifier{Name: "x"}
	base.Location = at(5)
	call := coreast.Call{
		Func:      coreast.Identifier{Name: "len"},
		Arguments: []coreast.Argument{{Value: arg}},
	}
	attr := coreast.Attribute{BaseExpr: base, AttrName: "upper"}

	sig := coreast.Signature{
		Name:       "f",
		Parameters: []coreast.Parameter{{Name: "x", Location: at(1)}},
	}
	body := []coreast.Statement{
		coreast.Assign{Target: "n", Value: call},
		coreast.Assign{Target: "s", Value: attr},
	}
	locals := map[string]types.Type{"x": types.NewPrimitive("str")}

	table := Build(sig, body, locals)

	assert.Contains(t, table.Types, arg.Location.String())
	assert.Contains(t, table.Types, base.Location.String())
}

func TestBuildWalksClassBasesAndDefineDecorators(t *testing.T) {
	baseRef := coreast.Identifier{Name: "Base"}
	baseRef.Location = at(6)
	decoratorRef := coreast.Identifier{Name: "deco"}
	decoratorRef.Location = at(7)

	sig := coreast.Signature{Name: "outer"}
	body := []coreast.Statement{
		coreast.Class{Name: "Sub", Bases: []coreast.Expression{baseRef}},
		coreast.Define{Signature: coreast.Signature{
			Name:       "inner",
			Decorators: []coreast.Expression{decoratorRef},
		}},
	}
	locals := map[string]types.Type{
		"Base": types.NewPrimitive("type"),
		"deco": types.NewPrimitive("type"),
	}

	table := Build(sig, body, locals)

	assert.Contains(t, table.Types, baseRef.Location.String())
	assert.Contains(t, table.Types, decoratorRef.Location.String())
}

func TestBuildTracksReassignmentAsNewestDefinition(t *testing.T) {
	use := coreast.Identifier{Name: "x"}
	use.Location = at(3)

	sig := coreast.Signature{
		Name:       "f",
		Parameters: []coreast.Parameter{{Name: "x", Location: at(1)}},
	}
	reassignLoc := at(2)
	reassign := coreast.Assign{Target: "x", Value: coreast.Constant{Kind: coreast.ConstantInt, Int: 1}}
	reassign.Location = reassignLoc

	table := Build(sig, []coreast.Statement{
		reassign,
		coreast.Assign{Target: "y", Value: use},
	}, map[string]types.Type{"x": types.NewPrimitive("int")})

	assert.Equal(t, reassignLoc, table.Definitions[use.Location.String()])
}
