package schema

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/nestidx/internal/domain"
)

func TestCreateRejectsNestedWithoutFlag(t *testing.T) {
	r := NewRegistry()
	f, err := New_(t, "company.name", String, false)
	if err != nil {
		t.Fatalf("field: %v", err)
	}
	err = r.Create([]Field{f}, false)
	if !errors.Is(err, domain.ErrNestedNotEnabled) {
		t.Fatalf("expected ErrNestedNotEnabled, got %v", err)
	}
}

func TestCreateAcceptsNestedWithFlag(t *testing.T) {
	r := NewRegistry()
	f, _ := New_(t, "company.name", String, false)
	if err := r.Create([]Field{f}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := r.Resolve("company.name")
	if !ok || got.Type() != String {
		t.Fatalf("resolve failed: %+v ok=%v", got, ok)
	}
}

func TestDeclareSynthesizedDoesNotOverrideExplicit(t *testing.T) {
	r := NewRegistry()
	explicit, _ := New_(t, "company.name", String, false)
	r.Create([]Field{explicit}, true)

	synth := Reconstruct("company.name", Int32, true, false, true, false, true, false)
	r.DeclareSynthesized(synth)

	got, _ := r.Resolve("company.name")
	if got.Type() != String {
		t.Fatalf("synthesized field overrode explicit declaration: %+v", got)
	}
}

func TestDeclareSynthesizedIsIdempotentAcrossDocuments(t *testing.T) {
	r := NewRegistry()
	wildcard, _ := New_(t, ".*", Auto, true)
	r.Create([]Field{wildcard}, true)

	first := Reconstruct("company.founded", Int64, true, false, true, false, true, false)
	r.DeclareSynthesized(first)

	if _, ok := r.Resolve("company.founded"); !ok {
		t.Fatalf("expected synthesized field to resolve after first document")
	}

	// A second document's differently-shaped synthesis attempt must not replace it.
	second := Reconstruct("company.founded", String, true, false, true, false, true, false)
	r.DeclareSynthesized(second)

	got, _ := r.Resolve("company.founded")
	if got.Type() != Int64 {
		t.Fatalf("re-synthesis on second document replaced the field: %+v", got)
	}
}

func TestResolveUnknownField(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Resolve("nope"); ok {
		t.Fatalf("expected unknown field to miss")
	}
}

// New_ is a small helper to keep test call sites terse.
func New_(t *testing.T, name string, typ Type, optional bool) (Field, error) {
	t.Helper()
	return New(name, typ, optional)
}
