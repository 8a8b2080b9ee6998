package classes

import (
	"github.com/glyphlang/typecore/internal/coreerrors"
	"github.com/glyphlang/typecore/internal/ordered"
	"github.com/glyphlang/typecore/internal/types"
)

// Linearize computes the C3 method-resolution order for idx (spec §4.2.1,
// §3.5 "successors(name)"): merge each parent's own linearization together
// with the parent list itself, picking at each step a "good head" — the
// first candidate list's head that does not appear in the tail of any
// list being merged. Ties are broken by parent declaration order.
//
// Failing to find any good head at some step means the hierarchy is
// inconsistent (spec §3.5's InconsistentMethodResolutionOrder).
func (h *Hierarchy) Linearize(idx ClassIndex) ([]ClassIndex, *coreerrors.Error) {
	info, ok := h.Info(idx)
	if !ok {
		e := coreerrors.NewIncomplete()
		return nil, &e
	}

	parentLists := make([][]ClassIndex, 0, len(info.Bases)+1)
	parentOrder := make([]ClassIndex, 0, len(info.Bases))
	for _, e := range info.Bases {
		lin, err := h.Linearize(e.Target)
		if err != nil {
			return nil, err
		}
		parentLists = append(parentLists, lin)
		parentOrder = append(parentOrder, e.Target)
	}
	parentLists = append(parentLists, parentOrder)

	merged, ok := merge(parentLists)
	if !ok {
		e := coreerrors.NewInconsistentMRO(info.Name)
		return nil, &e
	}
	return append([]ClassIndex{idx}, merged...), nil
}

// merge implements the C3 merge step over n lists, each already
// individually monotonic (spec §8 property 8: "every returned MRO starts
// with the class itself and respects declared base order").
func merge(lists [][]ClassIndex) ([]ClassIndex, bool) {
	lists = cloneLists(lists)
	var result []ClassIndex

	for {
		lists = dropEmpty(lists)
		if len(lists) == 0 {
			return result, true
		}

		var head ClassIndex
		found := false
		for _, l := range lists {
			candidate := l[0]
			if isGoodHead(candidate, lists) {
				head = candidate
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}

		result = append(result, head)
		for i, l := range lists {
			lists[i] = removeFirstOccurrence(l, head)
		}
	}
}

func isGoodHead(candidate ClassIndex, lists [][]ClassIndex) bool {
	for _, l := range lists {
		for _, x := range l[1:] {
			if x == candidate {
				return false
			}
		}
	}
	return true
}

func removeFirstOccurrence(l []ClassIndex, v ClassIndex) []ClassIndex {
	out := make([]ClassIndex, 0, len(l))
	removed := false
	for _, x := range l {
		if !removed && x == v {
			removed = true
			continue
		}
		out = append(out, x)
	}
	return out
}

func cloneLists(lists [][]ClassIndex) [][]ClassIndex {
	out := make([][]ClassIndex, len(lists))
	for i, l := range lists {
		out[i] = append([]ClassIndex{}, l...)
	}
	return out
}

func dropEmpty(lists [][]ClassIndex) [][]ClassIndex {
	out := lists[:0]
	for _, l := range lists {
		if len(l) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// Successors is the public, name-based query matching spec §3.5:
// "successors(name) — linearized MRO".
func (h *Hierarchy) Successors(name string) ([]string, *coreerrors.Error) {
	idx, ok := h.IndexOf(name)
	if !ok {
		e := coreerrors.NewUntracked(name)
		return nil, &e
	}
	indices, err := h.Linearize(idx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(indices))
	for i, ix := range indices {
		info, _ := h.Info(ix)
		names[i] = info.Name
	}
	return names, nil
}

// InstantiateSuccessorsParameters walks idx's MRO substituting each edge's
// declared parameters through to reach targetName, returning the fully
// substituted type arguments targetName would see when instantiated from
// sourceParams (spec §3.5).
func (h *Hierarchy) InstantiateSuccessorsParameters(sourceParams []types.Type, sourceIdx ClassIndex, targetName string) ([]types.Type, bool) {
	targetIdx, ok := h.IndexOf(targetName)
	if !ok {
		return nil, false
	}
	if sourceIdx == targetIdx {
		return sourceParams, true
	}

	info, ok := h.Info(sourceIdx)
	if !ok {
		return nil, false
	}

	subst := bindVariables(info.Variables, sourceParams)

	for _, e := range info.Bases {
		edgeParams := make([]types.Type, len(e.Parameters))
		for i, p := range e.Parameters {
			edgeParams[i] = types.Apply(p, subst, false)
		}
		if result, ok := h.InstantiateSuccessorsParameters(edgeParams, e.Target, targetName); ok {
			return result, true
		}
	}
	return nil, false
}

// bindVariables binds each declared unary variable to the matching actual
// parameter, positionally, via the shared ordered.Zip primitive (run one
// declared slot at a time, since the parameters available here are a flat
// []types.Type with no Group/CallableParameters to offer a list-variadic or
// parameter-variadic slot). List-variadic and parameter-variadic class
// variables come back unmatched from Zip and are left unbound here —
// InstantiateSuccessorsParameters only needs to thread unary parameters
// through edges for the subtyping walk in package order (§4.2.2); variadic
// class parameters are rare enough in practice that the order engine falls
// back to Any for them rather than failing the whole walk.
func bindVariables(vars []ordered.DeclaredSlot, params []types.Type) types.Subst {
	s := types.NewSubst()
	for i, v := range vars {
		if i >= len(params) {
			continue
		}
		pairs, ok := ordered.Zip([]ordered.DeclaredSlot{v}, []types.Parameter{{Single: params[i]}})
		if !ok || pairs[0].Kind != ordered.ZipUnary {
			continue
		}
		s.Unary[v.Name] = pairs[0].Actual
	}
	return s
}
