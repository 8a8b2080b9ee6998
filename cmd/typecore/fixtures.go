package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/glyphlang/typecore/internal/coreast"
	"github.com/glyphlang/typecore/internal/coreerrors"
	"github.com/glyphlang/typecore/internal/environment"
	"gopkg.in/yaml.v3"
)

// fixtureSet is the on-disk shape a `typecore check`/`typecore repl` run
// loads modules from, in place of the out-of-scope source parser: a YAML
// file naming classes, functions, and aliases per module reference
// directly, the way a golden-file test would hand-author an AST instead
// of parsing one.
type fixtureSet struct {
	Modules map[string]fixtureModule `yaml:"modules"`
}

type fixtureModule struct {
	Classes   map[string]fixtureClass    `yaml:"classes"`
	Functions map[string]fixtureFunction `yaml:"functions"`
	Aliases   map[string]string          `yaml:"aliases"`
}

type fixtureClass struct {
	Bases []string `yaml:"bases"`
}

type fixtureFunction struct {
	Params  []fixtureParam `yaml:"params"`
	Returns string         `yaml:"returns"`
}

type fixtureParam struct {
	Name       string `yaml:"name"`
	Annotation string `yaml:"annotation"`
	Kind       string `yaml:"kind"`
	Default    bool   `yaml:"default"`
}

// loadFixtures reads path and turns it into the ParsedSource-per-module
// map a fixture ParseFunc serves.
func loadFixtures(path string) (map[environment.ModuleReference]environment.ParsedSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("typecore: read %s: %w", path, err)
	}
	var set fixtureSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("typecore: parse %s: %w", path, err)
	}

	out := make(map[environment.ModuleReference]environment.ParsedSource, len(set.Modules))
	for modName, mod := range set.Modules {
		var body []coreast.Statement
		for name, cls := range mod.Classes {
			bases := make([]coreast.Expression, 0, len(cls.Bases))
			for _, b := range cls.Bases {
				bases = append(bases, parseAnnotationString(b))
			}
			body = append(body, coreast.Class{Name: name, Bases: bases})
		}
		for name, fn := range mod.Functions {
			params := make([]coreast.Parameter, 0, len(fn.Params))
			for _, p := range fn.Params {
				params = append(params, coreast.Parameter{
					Name:       p.Name,
					Annotation: annotationOrNil(p.Annotation),
					HasDefault: p.Default,
					Kind:       paramKindFromString(p.Kind),
				})
			}
			body = append(body, coreast.Define{Signature: coreast.Signature{
				Name: name, Parameters: params, ReturnAnnotation: annotationOrNil(fn.Returns),
			}})
		}
		for name, rhs := range mod.Aliases {
			body = append(body, coreast.Assign{Target: name, Value: parseAnnotationString(rhs)})
		}
		out[environment.ModuleReference(modName)] = environment.ParsedSource{Body: body}
	}
	return out, nil
}

func annotationOrNil(s string) coreast.Expression {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return parseAnnotationString(s)
}

func paramKindFromString(k string) coreast.ParameterKind {
	switch k {
	case "keyword_only":
		return coreast.ParamKeywordOnly
	case "variable":
		return coreast.ParamVariable
	case "keywords":
		return coreast.ParamKeywords
	case "named":
		return coreast.ParamNamed
	default:
		return coreast.ParamPositionalOnly
	}
}

// fixtureParseFunc adapts a pre-loaded module map into an
// environment.ParseFunc, reporting an untracked-module error for any
// reference the fixture file never named.
func fixtureParseFunc(modules map[environment.ModuleReference]environment.ParsedSource) environment.ParseFunc {
	return func(ref environment.ModuleReference) (environment.ParsedSource, []coreerrors.Error) {
		src, ok := modules[ref]
		if !ok {
			e := coreerrors.NewUntracked(string(ref))
			return environment.ParsedSource{}, []coreerrors.Error{e}
		}
		return src, nil
	}
}

// parseAnnotationString reads a small annotation grammar — dotted names,
// `Name[arg, arg...]` subscripts, `A | B` unions, and the `None`/`True`/
// `False` constants — the minimum needed to author fixture annotations by
// hand. It is not the language's real expression grammar (out of scope);
// it only has to round-trip what a fixture author would plausibly type
// for a type annotation.
func parseAnnotationString(s string) coreast.Expression {
	s = strings.TrimSpace(s)
	if parts := splitTopLevel(s, '|'); len(parts) > 1 {
		expr := parseAnnotationString(parts[0])
		for _, p := range parts[1:] {
			expr = coreast.BinaryOp{Left: expr, Op: "|", Right: parseAnnotationString(p)}
		}
		return expr
	}

	switch s {
	case "None":
		return coreast.Constant{Kind: coreast.ConstantNone}
	case "True":
		return coreast.Constant{Kind: coreast.ConstantBool, Bool: true}
	case "False":
		return coreast.Constant{Kind: coreast.ConstantBool, Bool: false}
	}

	if i := strings.IndexByte(s, '['); i >= 0 && strings.HasSuffix(s, "]") {
		base := parseAnnotationString(s[:i])
		inner := s[i+1 : len(s)-1]
		var args []coreast.Expression
		for _, a := range splitTopLevel(inner, ',') {
			args = append(args, parseAnnotationString(a))
		}
		return coreast.Subscript{Base: base, Slice: args}
	}

	return nameFromDotted(s)
}

func nameFromDotted(s string) coreast.Expression {
	segments := strings.Split(s, ".")
	var expr coreast.Expression = coreast.Identifier{Name: segments[0]}
	for _, seg := range segments[1:] {
		expr = coreast.Attribute{BaseExpr: expr, AttrName: seg}
	}
	return expr
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside `[...]`.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
