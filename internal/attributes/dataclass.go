package attributes

import "github.com/glyphlang/typecore/internal/types"

// DataclassField is one field contributing to a synthesized dataclass
// `__init__` (spec §4.4.2): declared on the class itself, or inherited
// from a parent dataclass in MRO order, with InitVar[T] already unwrapped
// to T by the caller.
type DataclassField struct {
	Name       string
	Annotation types.Type
	HasDefault bool
}

// DataclassOptions are the boolean options dataclasses.dataclass/attr.s
// accept as keyword arguments (spec §4.4.2).
type DataclassOptions struct {
	Init, Repr, Eq, Order bool
}

// SynthesizeDataclass implements spec §4.4.2: given the resolved field
// list (in the order MergeDataclassFields builds it: inherited fields
// first, then the class's own new ones, with a subclass field of the same
// name overriding a parent's in place), produces
// `__init__`/`__repr__`/`__eq__`/ordering methods and merges them into
// table (a member already present under one of these names is left
// untouched — only missing synthesized methods are added, matching the
// teacher's own "synthesize only when absent" pattern for its trait
// default-method resolution in internal/typesystem).
func SynthesizeDataclass(table Table, className string, fields []DataclassField, opts DataclassOptions) Table {
	out := make(Table, len(table)+4)
	for k, v := range table {
		out[k] = v
	}

	self := types.NewPrimitive(className)

	if opts.Init {
		if _, exists := out["__init__"]; !exists {
			params := make([]types.Parameter2, len(fields))
			for i, f := range fields {
				params[i] = types.Parameter2{
					Kind:       types.ParamNamed,
					Index:      i,
					Name:       f.Name,
					Annotation: f.Annotation,
					HasDefault: f.HasDefault,
				}
			}
			out["__init__"] = Attribute{
				Kind:       AttrMethod,
				Implicitly: true,
				Annotation: types.Callable{
					Kind:      types.CallableNamed,
					Reference: "__init__",
					Implementation: types.Overload{
						Annotation:     types.NoneType,
						ParametersKind: types.ParametersDefined,
						Defined:        params,
					},
					Implicit: &types.ImplicitReceiver{Annotation: self, ParamName: "self"},
				},
			}
		}
	}

	if opts.Repr {
		if _, exists := out["__repr__"]; !exists {
			out["__repr__"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: zeroArgMethod("__repr__", types.NewPrimitive("str"))}
		}
	}

	if opts.Eq {
		if _, exists := out["__eq__"]; !exists {
			out["__eq__"] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: oneArgMethod("__eq__", types.NewPrimitive("object"), types.NewPrimitive("bool"))}
		}
	}

	if opts.Order {
		for _, name := range []string{"__lt__", "__le__", "__gt__", "__ge__"} {
			if _, exists := out[name]; !exists {
				out[name] = Attribute{Kind: AttrMethod, Implicitly: true, Annotation: oneArgMethod(name, self, types.NewPrimitive("bool"))}
			}
		}
	}

	return out
}

// MergeDataclassFields combines a subclass's own fields with its parents'
// (already-resolved; parentFields are kept in the order given and come
// first in the result, followed by the subclass's new fields), with a
// subclass field of an
// existing name overriding the parent's entry in place rather than
// appending a duplicate (spec §4.4.2 "parameters with identical names in
// subclass override those from parents").
func MergeDataclassFields(parentFields []DataclassField, ownFields []DataclassField) []DataclassField {
	byName := map[string]int{}
	out := make([]DataclassField, 0, len(parentFields)+len(ownFields))
	for _, f := range parentFields {
		byName[f.Name] = len(out)
		out = append(out, f)
	}
	for _, f := range ownFields {
		if i, exists := byName[f.Name]; exists {
			out[i] = f
			continue
		}
		byName[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}
