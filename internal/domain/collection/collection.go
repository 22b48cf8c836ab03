// Package collection implements the collection aggregate: a name, its
// Schema Registry, and the enable_nested_fields flag that gates dotted
// field declarations (§4.2).
package collection

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/nestidx/internal/domain/schema"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Collection is the document collection aggregate (immutable value object;
// its Schema Registry is the one internally-mutable collaborator, guarded
// by its own lock per §5).
type Collection struct {
	name             string
	enableNested     bool
	registry         *schema.Registry
	createdAt        int64
	revision         int
	defaultSortField string
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	return nil
}

func validateFields(fields []schema.Field) error {
	if len(fields) > 512 {
		return fmt.Errorf("too many fields (max 512)")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name()] {
			return fmt.Errorf("duplicate field name: %s", f.Name())
		}
		seen[f.Name()] = true
	}
	return nil
}

// New validates and creates a Collection, installing its Schema Registry.
func New(name string, fields []schema.Field, enableNested bool, defaultSortField string) (Collection, error) {
	if err := validateName(name); err != nil {
		return Collection{}, err
	}
	if err := validateFields(fields); err != nil {
		return Collection{}, err
	}

	r := schema.NewRegistry()
	if err := r.Create(fields, enableNested); err != nil {
		return Collection{}, err
	}
	if defaultSortField != "" {
		if f, ok := r.Resolve(defaultSortField); !ok || !f.Sort() {
			return Collection{}, fmt.Errorf("default_sorting_field %q must reference a sortable field", defaultSortField)
		}
	}

	return Collection{
		name:             name,
		enableNested:     enableNested,
		registry:         r,
		createdAt:        time.Now().UnixMilli(),
		revision:         1,
		defaultSortField: defaultSortField,
	}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(
	name string, fields []schema.Field, enableNested bool,
	defaultSortField string, createdAt int64, revision int,
) Collection {
	r := schema.NewRegistry()
	_ = r.Create(fields, enableNested)
	return Collection{
		name: name, enableNested: enableNested, registry: r,
		defaultSortField: defaultSortField, createdAt: createdAt, revision: revision,
	}
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// EnableNested reports whether dotted field paths are accepted.
func (c Collection) EnableNested() bool { return c.enableNested }

// Registry returns the collection's Schema Registry.
func (c Collection) Registry() *schema.Registry { return c.registry }

// DefaultSortField returns the field used to break search-score ties, if set.
func (c Collection) DefaultSortField() string { return c.defaultSortField }

// CreatedAt returns the creation timestamp (unix millis).
func (c Collection) CreatedAt() int64 { return c.createdAt }

// Revision returns the optimistic concurrency version.
func (c Collection) Revision() int { return c.revision }

// Fields returns the collection's concrete (non-wildcard) field declarations.
func (c Collection) Fields() []schema.Field { return c.registry.Fields() }

// HasWildcard reports whether this collection carries a ".*" auto-schema entry.
func (c Collection) HasWildcard() bool { return c.registry.HasWildcard() }
