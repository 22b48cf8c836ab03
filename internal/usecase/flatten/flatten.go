// Package flatten implements the Flattener (§4.3): walking a tree-shaped
// document against a collection's Schema Registry to produce the flat leaf
// list an Indexer Facade posts to the postings engine.
package flatten

import (
	"strings"

	"github.com/kailas-cloud/nestidx/internal/domain"
	"github.com/kailas-cloud/nestidx/internal/domain/path"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
)

// DefaultMaxDepth bounds recursion against pathological documents (§9).
const DefaultMaxDepth = 32

// Leaf is one flattened (path, value) pair produced by Flatten (§3.2).
// Values is a scalar for an ordinary leaf, or an array of scalars once
// array-of-object ancestors or a declared array type fan it out.
type Leaf struct {
	Path        string
	Values      value.Value
	LeafType    schema.Type
	NestedArray bool
}

// Result is the output of a single Flatten call.
type Result struct {
	// Leaves holds every flattened leaf, in first-encountered order.
	Leaves []Leaf
	// Flat is the `.flat` manifest: the set of paths in Leaves, same order.
	Flat []string
	// Synthesized holds fields newly discovered under a wildcard schema;
	// the caller is expected to feed them to Registry.DeclareSynthesized.
	Synthesized []schema.Field
}

// Flattener implements the tree-walk-and-bind step of ingest, bound to one
// collection's Schema Registry.
type Flattener struct {
	registry *schema.Registry
	maxDepth int
}

// New creates a Flattener bound to registry.
func New(registry *schema.Registry) *Flattener {
	return &Flattener{registry: registry, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth overrides the default recursion bound.
func (fl *Flattener) WithMaxDepth(d int) *Flattener {
	if d > 0 {
		fl.maxDepth = d
	}
	return fl
}

// Flatten walks doc against the bound registry's field declarations,
// applying dotted-key precedence, array-of-object leaf aggregation, and (if
// a wildcard entry is registered) auto-schema synthesis for undeclared
// paths.
func (fl *Flattener) Flatten(doc value.Value) (Result, error) {
	root, ok := doc.AsObject()
	if !ok {
		return Result{}, domain.NewInvalidRequest("document root must be an object")
	}

	literal := literalTopKeys(root)
	acc := newAccumulator()

	for _, f := range fl.registry.Fields() {
		if err := fl.flattenField(f, doc, literal, acc); err != nil {
			return Result{}, err
		}
	}

	var synthesized []schema.Field
	if fl.registry.HasWildcard() {
		synthesized = fl.synthesize(doc, literal, acc)
	}

	leaves := acc.finalizeLeaves()
	flat := make([]string, len(leaves))
	for i, l := range leaves {
		flat[i] = l.Path
	}

	return Result{Leaves: leaves, Flat: flat, Synthesized: synthesized}, nil
}

// literalTopKeys returns the document's own root-level keys, used to
// implement dotted-key precedence: a literal top-level key shadows a
// nested-object leaf that would otherwise produce the same dotted path
// (SPEC_FULL.md §4.2/§4.3).
func literalTopKeys(root *value.Object) map[string]bool {
	m := make(map[string]bool, root.Len())
	for _, k := range root.Keys() {
		m[k] = true
	}
	return m
}

// rootCtx is a node resolved partway down a field's declared dotted path,
// carrying the array depth already traversed to reach it.
type rootCtx struct {
	v          value.Value
	arrayDepth int
}

func (fl *Flattener) flattenField(f schema.Field, doc value.Value, literal map[string]bool, acc *accumulator) error {
	roots, found := resolveFieldRoots(doc, f.Name(), literal)
	if !found {
		if f.Optional() {
			return nil
		}
		return domain.NewMissingRequiredField(f.Name())
	}

	switch f.Type() {
	case schema.Object:
		return fl.flattenObjectField(f, roots, literal, acc)
	case schema.ObjectArray:
		return fl.flattenObjectArrayField(f, roots, literal, acc)
	default:
		return fl.flattenPrimitiveField(f, roots, acc)
	}
}

// resolveFieldRoots walks doc through f's dotted segments, expanding any
// intermediate array-of-objects ancestor into one context per element
// (needed for a field declared at a path like "locations.address" where
// "locations" is itself an array). Dotted-key precedence is applied once,
// at the root: if the full dotted path is itself a literal top-level key,
// that value is used directly instead of descending.
func resolveFieldRoots(doc value.Value, dotted string, literal map[string]bool) ([]rootCtx, bool) {
	segments := path.Keys(dotted)
	if len(segments) > 1 && literal[dotted] {
		if root, ok := doc.AsObject(); ok {
			if v, ok := root.Get(dotted); ok {
				return []rootCtx{{v: v}}, true
			}
		}
	}

	cur := []rootCtx{{v: doc}}
	for i, seg := range segments {
		var next []rootCtx
		for _, c := range cur {
			obj, ok := c.v.AsObject()
			if !ok {
				return nil, false
			}
			v, ok := obj.Get(seg)
			if !ok {
				return nil, false
			}
			if i < len(segments)-1 {
				if arr, ok := v.AsArray(); ok && path.IsObjectArray(arr) {
					for _, e := range arr {
						next = append(next, rootCtx{v: e, arrayDepth: c.arrayDepth + 1})
					}
					continue
				}
			}
			next = append(next, rootCtx{v: v, arrayDepth: c.arrayDepth})
		}
		if len(next) == 0 {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// flattenObjectField handles a field declared as a plain "object": it must
// resolve to exactly one mapping. Resolving to more than one (an
// intermediate array ancestor was traversed) is the object-vs-array
// confusion case and surfaces as a type mismatch.
func (fl *Flattener) flattenObjectField(f schema.Field, roots []rootCtx, literal map[string]bool, acc *accumulator) error {
	if len(roots) != 1 {
		return domain.NewTypeMismatch(f.Name(), string(schema.Object), string(schema.ObjectArray))
	}
	root := roots[0]
	if root.v.Kind() != value.KindObject {
		return domain.NewTypeMismatch(f.Name(), string(schema.Object), kindName(root.v))
	}
	path.ForEachLeafFrom(root.v, root.arrayDepth, func(keys []string, _ int, nestedArray bool, v value.Value) {
		full := f.Name() + "." + strings.Join(keys, ".")
		if literal[full] {
			return
		}
		acc.add(full, v, nestedArray)
	})
	return nil
}

// flattenObjectArrayField handles a field declared as "object[]". It
// accepts two document shapes: a single array-of-objects value at the
// field's own path, or (for a field name like "locations.address") a set
// of per-element roots already produced by an intermediate array ancestor.
// Every leaf produced is nested_array by construction.
func (fl *Flattener) flattenObjectArrayField(f schema.Field, roots []rootCtx, literal map[string]bool, acc *accumulator) error {
	var elements []rootCtx
	if len(roots) == 1 {
		arr, ok := roots[0].v.AsArray()
		if !ok {
			return domain.NewTypeMismatch(f.Name(), string(schema.ObjectArray), kindName(roots[0].v))
		}
		if len(arr) > 0 && !path.IsObjectArray(arr) {
			return domain.NewTypeMismatch(f.Name(), string(schema.ObjectArray), "array")
		}
		for _, e := range arr {
			elements = append(elements, rootCtx{v: e, arrayDepth: roots[0].arrayDepth + 1})
		}
	} else {
		elements = roots
	}

	for _, el := range elements {
		if el.v.Kind() != value.KindObject {
			return domain.NewTypeMismatch(f.Name(), string(schema.ObjectArray), kindName(el.v))
		}
		path.ForEachLeafFrom(el.v, el.arrayDepth, func(keys []string, _ int, _ bool, v value.Value) {
			full := f.Name() + "." + strings.Join(keys, ".")
			if literal[full] {
				return
			}
			acc.add(full, v, true)
		})
	}
	return nil
}

// flattenPrimitiveField handles a scalar or scalar-array declared field.
// Multiple roots mean an array-of-objects ancestor was traversed on the way
// to a same-named leaf under each element; those occurrences accumulate
// into one nested_array leaf (§4.3 "array-of-object leaf aggregation").
func (fl *Flattener) flattenPrimitiveField(f schema.Field, roots []rootCtx, acc *accumulator) error {
	for _, r := range roots {
		v := r.v
		nestedArray := r.arrayDepth > 0
		if v.Kind() == value.KindObject {
			return domain.NewTypeMismatch(f.Name(), string(f.Type()), kindName(v))
		}
		acc.add(f.Name(), v, nestedArray)
	}
	return nil
}

// synthesize walks the whole document for a wildcard-schema collection,
// binding any leaf whose path was not already produced by an explicit
// field declaration to a newly inferred Field.
func (fl *Flattener) synthesize(doc value.Value, literal map[string]bool, acc *accumulator) []schema.Field {
	var newFields []schema.Field
	declared := map[string]bool{}

	path.ForEachLeaf(doc, func(keys []string, _ int, nestedArray bool, v value.Value) {
		full := strings.Join(keys, ".")
		if len(keys) > 1 && literal[full] {
			return
		}
		if acc.has(full) {
			return
		}
		acc.add(full, v, nestedArray)
		if declared[full] {
			return
		}
		declared[full] = true
		if _, exists := fl.registry.Resolve(full); exists {
			return
		}
		kind := inferKind(v)
		if arr, ok := v.AsArray(); ok {
			if len(arr) > 0 {
				kind = inferKind(arr[0])
			} else {
				kind = schema.Auto
			}
			kind = kind.AsArray()
		}
		newFields = append(newFields, schema.Reconstruct(full, kind, true, false, true, false, path.IsNested(full), nestedArray))
	})
	return newFields
}

func inferKind(v value.Value) schema.Type {
	switch v.Kind() {
	case value.KindString:
		return schema.String
	case value.KindInt:
		return schema.Int64
	case value.KindFloat:
		return schema.Float
	case value.KindBool:
		return schema.Bool
	default:
		return schema.Auto
	}
}

func kindName(v value.Value) string { return v.Kind().String() }
