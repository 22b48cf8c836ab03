// Package schema implements the Schema Registry (§4.2): explicit field
// declarations plus wildcard auto-schema, precedence between them, and the
// concurrency policy of §5 (mutated under a write lock during ingest, read
// under a shared lock during query).
package schema

import (
	"sync"

	"github.com/kailas-cloud/nestidx/internal/domain"
	"github.com/kailas-cloud/nestidx/internal/domain/path"
)

// Registry holds one collection's field declarations plus any fields
// synthesized by the Flattener under an active wildcard schema.
type Registry struct {
	mu           sync.RWMutex
	enableNested bool
	fields       map[string]Field
	wildcard     bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fields: make(map[string]Field)}
}

// Create validates and installs a collection's field declarations.
// Nested fields (dotted names) are only accepted when enableNested is set;
// the ".*" wildcard entry is accepted either way.
func (r *Registry) Create(fields []Field, enableNested bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range fields {
		if !f.IsWildcard() && path.IsNested(f.Name()) && !enableNested {
			return domain.NewNestedNotEnabled(f.Name())
		}
	}

	r.enableNested = enableNested
	r.fields = make(map[string]Field, len(fields))
	for _, f := range fields {
		if f.IsWildcard() {
			r.wildcard = true
		}
		r.fields[f.Name()] = f
	}
	return nil
}

// EnableNested reports whether this collection accepts dotted paths.
func (r *Registry) EnableNested() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enableNested
}

// HasWildcard reports whether a ".*" auto-schema entry is registered.
func (r *Registry) HasWildcard() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.wildcard
}

// Resolve looks up a field by its exact dotted path. It never consults the
// wildcard directly — auto-schema paths only become resolvable once
// DeclareSynthesized has installed a concrete entry for them (§4.2), which
// keeps second-document lookups O(1).
func (r *Registry) Resolve(dotted string) (Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[dotted]
	return f, ok
}

// WildcardField returns the ".*" entry itself, if declared.
func (r *Registry) WildcardField() (Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fields[".*"]
	return f, ok
}

// DeclareSynthesized registers a field discovered by the Flattener while
// walking a document under the wildcard schema. Explicit declarations
// always take precedence: a synthesized field is a no-op if a concrete
// entry with the same path already exists.
func (r *Registry) DeclareSynthesized(f Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.fields[f.Name()]; exists {
		return
	}
	r.fields[f.Name()] = f
}

// Fields returns a snapshot of all concrete (non-wildcard) field declarations,
// in no particular order.
func (r *Registry) Fields() []Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Field, 0, len(r.fields))
	for _, f := range r.fields {
		if f.IsWildcard() {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ExpandObjectPath returns the dotted paths of every concrete scalar leaf
// field currently known to live under the given object/object[] path,
// used by the Query Binder to expand a query_by on an object field (§4.7).
func (r *Registry) ExpandObjectPath(dotted string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name, f := range r.fields {
		if f.IsWildcard() || f.Type().IsObjectLike() {
			continue
		}
		if path.StartsWithPath(name, dotted) && name != dotted {
			out = append(out, name)
		}
	}
	return out
}
