package schema

import (
	"fmt"

	"github.com/kailas-cloud/nestidx/internal/domain/path"
)

var reservedFieldNames = map[string]bool{
	"id": true,
}

// Field is an entry in the Schema Registry (§3.1). It is an immutable value
// object; use New for a validated declaration and Reconstruct/declareSynthesized
// paths for registry-internal hydration.
type Field struct {
	name        string
	typ         Type
	optional    bool
	facet       bool
	index       bool
	sort        bool
	nested      bool
	nestedArray bool
}

// Option configures optional Field attributes at construction time.
type Option func(*Field)

// Facet marks the field as facetable.
func Facet() Option { return func(f *Field) { f.facet = true } }

// Indexed marks the field as indexed (default true unless explicitly disabled).
func Indexed(v bool) Option { return func(f *Field) { f.index = v } }

// Sortable marks the field as sortable.
func Sortable() Option { return func(f *Field) { f.sort = true } }

// New validates and creates a top-level Field declaration.
// nested/nestedArray are left false; only Reconstruct and WithInference set
// them.
func New(name string, t Type, optional bool, opts ...Option) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if !path.IsWildcard(name) && reservedFieldNames[name] {
		return Field{}, fmt.Errorf("field name %q is reserved", name)
	}
	if !t.IsValid() {
		return Field{}, fmt.Errorf("invalid field type %q for %q", t, name)
	}
	f := Field{name: name, typ: t, optional: optional, index: true}
	for _, o := range opts {
		o(&f)
	}
	return f, nil
}

// Reconstruct creates a Field without validation, with nested/nestedArray
// already computed (registry hydration, or synthesis by the Flattener).
func Reconstruct(name string, t Type, optional, facet, index, sort, nested, nestedArray bool) Field {
	return Field{
		name: name, typ: t, optional: optional,
		facet: facet, index: index, sort: sort,
		nested: nested, nestedArray: nestedArray,
	}
}

// Name returns the field's dotted path (or ".*" for the wildcard entry).
func (f Field) Name() string { return f.name }

// Type returns the declared or inferred type.
func (f Field) Type() Type { return f.typ }

// Optional reports whether the field may be absent on ingest.
func (f Field) Optional() bool { return f.optional }

// Facet reports whether the field is facetable.
func (f Field) Facet() bool { return f.facet }

// Index reports whether the field is indexed for search/filter.
func (f Field) Index() bool { return f.index }

// Sort reports whether the field is sortable.
func (f Field) Sort() bool { return f.sort }

// Nested reports whether the field was recorded as nested, i.e. its path has
// more than one segment (the Flattener sets it that way for synthesized
// fields). Fields built by New always report false.
func (f Field) Nested() bool { return f.nested }

// NestedArray reports whether any ancestor on the path is an array (object
// array or scalar array inside an object array).
func (f Field) NestedArray() bool { return f.nestedArray }

// IsWildcard reports whether this is the ".*" auto-schema entry.
func (f Field) IsWildcard() bool { return path.IsWildcard(f.name) }

// WithInference returns a copy with nested/nestedArray set, used when the
// Flattener discovers the true shape of a wildcard-declared or auto field.
func (f Field) WithInference(t Type, nested, nestedArray bool) Field {
	f.typ = t
	f.nested = nested
	f.nestedArray = nestedArray
	return f
}
