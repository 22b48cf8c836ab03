// Package querybind implements the Query Binder (§4.7): resolving the
// dotted paths named in a search request against a collection's Schema
// Registry before the request reaches the postings engine.
package querybind

import (
	"github.com/kailas-cloud/nestidx/internal/domain"
	"github.com/kailas-cloud/nestidx/internal/domain/path"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
)

// Binder resolves query-time field references against one collection's registry.
type Binder struct {
	registry *schema.Registry
}

// New creates a Binder bound to registry.
func New(registry *schema.Registry) *Binder {
	return &Binder{registry: registry}
}

// ResolveSearchFields expands query_by into concrete, indexed leaf paths.
// Naming an object/object[] field expands to every indexed leaf beneath it
// (§4.7 "object path expansion"); naming a leaf directly requires it be
// indexed for search.
func (b *Binder) ResolveSearchFields(queryBy []string) ([]string, error) {
	var out []string
	for _, name := range queryBy {
		f, ok := b.registry.Resolve(name)
		if !ok || f.Type().IsObjectLike() {
			expanded := b.registry.ExpandObjectPath(name)
			if len(expanded) == 0 {
				return nil, domain.NewUnknownField(name)
			}
			for _, e := range expanded {
				ef, _ := b.registry.Resolve(e)
				if ef.Index() {
					out = append(out, e)
				}
			}
			continue
		}
		if !f.Index() {
			return nil, domain.NewInvalidRequest("field `%s` is not indexed for search", name)
		}
		out = append(out, name)
	}
	return out, nil
}

// ResolveSortField validates a sort_by field reference.
func (b *Binder) ResolveSortField(name string) (schema.Field, error) {
	f, ok := b.registry.Resolve(name)
	if !ok {
		return schema.Field{}, domain.NewUnknownField(name)
	}
	if !f.Sort() {
		return schema.Field{}, domain.NewInvalidRequest("field `%s` is not sortable", name)
	}
	return f, nil
}

// ResolveFacetField validates a facet_by/group_by field reference.
func (b *Binder) ResolveFacetField(name string) (schema.Field, error) {
	f, ok := b.registry.Resolve(name)
	if !ok {
		return schema.Field{}, domain.NewUnknownField(name)
	}
	if !f.Facet() {
		return schema.Field{}, domain.NewInvalidRequest("field `%s` is not a facet field", name)
	}
	return f, nil
}

// ResolveFilterField validates a filter_by field reference. Object paths
// expand to their indexed leaves, matching the search-field expansion rule.
func (b *Binder) ResolveFilterField(name string) ([]string, error) {
	f, ok := b.registry.Resolve(name)
	if !ok || f.Type().IsObjectLike() {
		expanded := b.registry.ExpandObjectPath(name)
		if len(expanded) == 0 {
			return nil, domain.NewUnknownField(name)
		}
		var out []string
		for _, e := range expanded {
			if ef, _ := b.registry.Resolve(e); ef.Index() {
				out = append(out, e)
			}
		}
		return out, nil
	}
	if !f.Index() {
		return nil, domain.NewInvalidRequest("field `%s` is not indexed for filtering", name)
	}
	return []string{name}, nil
}

// ResolveProjectionPath validates an include_fields/exclude_fields/highlight
// entry. "*" and any known leaf or object prefix are accepted; anything
// else is an unknown field.
func (b *Binder) ResolveProjectionPath(dotted string) error {
	if dotted == "*" {
		return nil
	}
	if _, ok := b.registry.Resolve(dotted); ok {
		return nil
	}
	for _, f := range b.registry.Fields() {
		if path.StartsWithPath(f.Name(), dotted) {
			return nil
		}
	}
	return domain.NewUnknownField(dotted)
}
