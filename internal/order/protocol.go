package order

import (
	"fmt"

	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/types"
)

// InstantiateProtocolParameters implements spec §4.2.3: returns a
// parameter list for protocol such that candidate structurally satisfies
// it, or ok=false.
func (e *Engine) InstantiateProtocolParameters(candidate, protocol types.Type) ([]types.Type, bool) {
	// Step 1: a primitive/parametric of the same name trivially conforms —
	// return its own parameters.
	if cName, cParams, ok := classNameAndParams(candidate); ok {
		if pName, _, ok2 := classNameAndParams(protocol); ok2 && cName == pName {
			return cParams, true
		}
	}

	key := goalKey{candidate: candidate.String(), protocol: protocol.String()}
	if tentative, ok := e.assumptions.tentative[key]; ok {
		return tentative, true
	}

	_, protoParams, _ := classNameAndParams(protocol)
	e.assumptions.tentative[key] = protoParams
	defer delete(e.assumptions.tentative, key)

	if e.Attributes == nil {
		return nil, false
	}

	protoAttrs, ok := e.Attributes.Attributes(protocol)
	if !ok {
		return nil, false
	}

	candAttrs, ok := e.attributesOf(candidate)
	if !ok {
		return nil, false
	}

	cs := constraints.New()
	for name, protoType := range protoAttrs {
		candType, ok := candAttrs[name]
		if !ok {
			return nil, false
		}
		results := e.SolveLessOrEqual(cs, candType, protoType)
		if len(results) == 0 {
			return nil, false
		}
		cs = results[0]
	}

	return protoParams, true
}

// attributesOf fetches candidate's attribute table, synthesizing a
// `__call__` entry for Callable candidates per spec §4.2.3 step 3.
func (e *Engine) attributesOf(candidate types.Type) (map[string]types.Type, bool) {
	if c, ok := candidate.(types.Callable); ok {
		return map[string]types.Type{"__call__": c}, true
	}
	if e.Attributes == nil {
		return nil, false
	}
	return e.Attributes.Attributes(candidate)
}

func (e *Engine) solveProtocol(cs *constraints.Set, candidate, protocol types.Type) []*constraints.Set {
	e.Log.Debugf("order: checking protocol goal %s", debugGoalLabel(candidate, protocol))
	if _, ok := e.InstantiateProtocolParameters(candidate, protocol); ok {
		return []*constraints.Set{cs}
	}
	return nil
}

// debugGoalLabel formats a goal for log output (logging only, never
// inspected for control flow — the assumption bag itself keys on
// goalKey{candidate, protocol}.String() values, not on this label or the
// uuid it embeds).
func debugGoalLabel(candidate, protocol types.Type) string {
	return fmt.Sprintf("%s :> %s [%s]", protocol.String(), candidate.String(), freshGoalID())
}
