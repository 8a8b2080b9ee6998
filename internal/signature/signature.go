// Package signature implements the signature selector (spec C7, §4.5):
// the three-phase arity/annotation/ranking pipeline that decides which
// overload (if any) a call site resolves to.
package signature

import (
	"github.com/glyphlang/typecore/internal/constraints"
	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/order"
	"github.com/glyphlang/typecore/internal/types"
)

// ReasonKind is the closed set of reasons a candidate overload can fail
// to match, with the importance scale from spec §4.5.
type ReasonKind int

const (
	ReasonNone ReasonKind = iota
	ReasonTooManyArguments
	ReasonMissingArgument
	ReasonMismatchWithListVariadicTypeVariable
	ReasonProtocolInstantiation
	ReasonAbstractClassInstantiation
	ReasonMutuallyRecursiveTypeVariables
	ReasonUnexpectedKeyword
	ReasonCallingParameterVariadicTypeVariable
	ReasonAnnotationMismatch
)

// Importance implements the ranking scale spec §4.5 names: the listed
// reasons are all "importance >= 1"; a plain annotation mismatch ranks
// below them.
func (r ReasonKind) Importance() int {
	switch r {
	case ReasonTooManyArguments, ReasonMissingArgument, ReasonMismatchWithListVariadicTypeVariable,
		ReasonProtocolInstantiation, ReasonAbstractClassInstantiation, ReasonMutuallyRecursiveTypeVariables,
		ReasonUnexpectedKeyword, ReasonCallingParameterVariadicTypeVariable:
		return 1
	default:
		return 0
	}
}

// Result is Found(callable)/NotFound{callable, reason} from spec §4.5.
type Result struct {
	Found       bool
	Return      types.Type
	Constraints *constraints.Set
	Reason      ReasonKind
	Position    int
}

// ResolveExprFunc evaluates an argument expression to its type — the
// expression→type surface belongs to the environment stack (C9), not to
// this package, so it is injected rather than imported.
type ResolveExprFunc func(coreast.Expression) (types.Type, bool)

// candidate is the ranked internal form of one overload's match attempt
// (spec §4.5 phase 3: arity_rank, annotation_rank, position_rank).
type candidate struct {
	result         Result
	arityRank      int
	annotationRank int
	positionRank   int
}

// Select implements spec §4.5's signature_select entry point.
func Select(eng *order.Engine, callable types.Callable, resolveExpr ResolveExprFunc, args []coreast.Argument) Result {
	var best candidate
	haveBest := false

	for _, o := range callable.AllOverloads() {
		cand := evaluateOverload(eng, o, resolveExpr, args)
		if cand.result.Found {
			return cand.result
		}
		if !haveBest || closer(cand, best) {
			best = cand
			haveBest = true
		}
	}

	if !haveBest {
		return Result{Found: false, Reason: ReasonMissingArgument}
	}
	return best.result
}

// closer implements "find closest by successive min over these three
// keys" (spec §4.5): lexicographic ascending comparison, ties kept (the
// first-seen, i.e. earliest-declared, overload wins since Select only
// replaces best on a strict improvement).
func closer(a, b candidate) bool {
	if a.arityRank != b.arityRank {
		return a.arityRank < b.arityRank
	}
	if a.annotationRank != b.annotationRank {
		return a.annotationRank < b.annotationRank
	}
	return a.positionRank < b.positionRank
}

func evaluateOverload(eng *order.Engine, o types.Overload, resolveExpr ResolveExprFunc, args []coreast.Argument) candidate {
	if o.ParametersKind != types.ParametersDefined {
		// Undefined accepts any call shape; the VariadicTypeVariable shape
		// (a head of concrete parameters followed by a parameter-variadic
		// tail) is not matched against call sites by this simplified
		// arity-matcher either: it too is accepted for any call, without
		// its arguments being checked.
		return candidate{result: Result{Found: true, Return: o.Annotation, Constraints: constraints.New()}}
	}

	params := o.Defined
	matched := make([]bool, len(params))
	argIndexForParam := make([]int, len(params))
	for i := range argIndexForParam {
		argIndexForParam[i] = -1
	}

	hasVariable := false
	hasKeywords := false
	for _, p := range params {
		if p.Kind == types.ParamVariableConcrete || p.Kind == types.ParamVariableConcatenation {
			hasVariable = true
		}
		if p.Kind == types.ParamKeywords {
			hasKeywords = true
		}
	}

	var unexpected []string
	tooMany := false
	sawDoubleStar := false
	cursor := 0

	for i, a := range args {
		switch a.Kind {
		case coreast.ArgumentDoubleStar:
			sawDoubleStar = true
		case coreast.ArgumentSingleStar:
			if hasVariable {
				for pi, p := range params {
					if p.Kind == types.ParamVariableConcrete || p.Kind == types.ParamVariableConcatenation {
						matched[pi] = true
					}
				}
			}
			// Best-effort: an unpacked sequence may also cover the
			// remaining positional parameters dynamically; this matcher
			// does not attempt to count how many elements it unpacks to
			// (spec's full solve_concrete_against_concatenation belongs to
			// package order, not the arity phase).
			for cursor < len(params) && matched[cursor] {
				cursor++
			}
		case coreast.ArgumentPlain:
			if a.Name != "" {
				found := false
				for pi, p := range params {
					if matched[pi] {
						continue
					}
					if (p.Kind == types.ParamNamed || p.Kind == types.ParamKeywordOnly) && p.Name == a.Name {
						matched[pi] = true
						argIndexForParam[pi] = i
						found = true
						break
					}
				}
				if !found && !hasKeywords {
					unexpected = append(unexpected, a.Name)
				}
				continue
			}
			for cursor < len(params) && (matched[cursor] ||
				(params[cursor].Kind != types.ParamPositionalOnly && params[cursor].Kind != types.ParamNamed && params[cursor].Kind != types.ParamVariableConcrete)) {
				if params[cursor].Kind == types.ParamVariableConcrete {
					break
				}
				cursor++
			}
			if cursor >= len(params) {
				tooMany = true
				continue
			}
			if params[cursor].Kind == types.ParamVariableConcrete {
				matched[cursor] = true
				continue
			}
			matched[cursor] = true
			argIndexForParam[cursor] = i
			cursor++
		}
	}

	var missing []string
	for pi, p := range params {
		if matched[pi] {
			continue
		}
		if p.Kind == types.ParamVariableConcrete || p.Kind == types.ParamVariableConcatenation || p.Kind == types.ParamKeywords {
			continue
		}
		if p.HasDefault {
			continue
		}
		if sawDoubleStar && (p.Kind == types.ParamNamed || p.Kind == types.ParamKeywordOnly) {
			// A **kwargs call-site argument may dynamically supply any
			// named parameter; suppress the missing-argument error for
			// named/keyword-only slots in that case (spec §4.5's
			// `dict(**kwargs)` special case, generalized).
			continue
		}
		missing = append(missing, p.Name)
	}

	if len(missing) > 0 {
		return candidate{result: Result{Found: false, Reason: ReasonMissingArgument}, arityRank: len(missing)}
	}
	if tooMany {
		return candidate{result: Result{Found: false, Reason: ReasonTooManyArguments}, arityRank: 1}
	}
	if len(unexpected) > 0 {
		return candidate{result: Result{Found: false, Reason: ReasonUnexpectedKeyword}, arityRank: len(unexpected)}
	}

	cs := constraints.New()
	mismatchCount := 0
	minMismatchIndex := -1
	for pi, p := range params {
		argIdx := argIndexForParam[pi]
		if argIdx < 0 {
			continue
		}
		argType, ok := resolveExpr(args[argIdx].Value)
		if !ok {
			continue
		}
		results := eng.SolveLessOrEqual(cs, argType, p.Annotation)
		if len(results) == 0 {
			mismatchCount++
			if minMismatchIndex == -1 {
				minMismatchIndex = pi
			}
			continue
		}
		cs = results[0]
	}

	if mismatchCount > 0 {
		return candidate{
			result:         Result{Found: false, Reason: ReasonAnnotationMismatch, Position: minMismatchIndex},
			annotationRank: mismatchCount,
			positionRank:   -minMismatchIndex,
		}
	}

	subst := eng.ResolveSubst(cs)
	ret := types.Apply(o.Annotation, subst, false)
	return candidate{result: Result{Found: true, Return: ret, Constraints: cs}}
}
