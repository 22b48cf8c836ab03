package nestidx

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
)

// FieldType is the wire-facing alias of the internal schema type tag.
type FieldType = schema.Type

// Field type constants, re-exported for callers declaring a schema.
const (
	TypeString      = schema.String
	TypeInt32       = schema.Int32
	TypeInt64       = schema.Int64
	TypeFloat       = schema.Float
	TypeBool        = schema.Bool
	TypeStringArray = schema.StringArray
	TypeInt32Array  = schema.Int32Array
	TypeInt64Array  = schema.Int64Array
	TypeFloatArray  = schema.FloatArray
	TypeBoolArray   = schema.BoolArray
	TypeObject      = schema.Object
	TypeObjectArray = schema.ObjectArray
	TypeAuto        = schema.Auto
)

// FieldOption configures a Field beyond its name, type, and optionality.
type FieldOption = schema.Option

// Facet marks a field as facetable.
func Facet() FieldOption { return schema.Facet() }

// Indexed controls whether a field participates in FT.SEARCH indexing.
func Indexed(v bool) FieldOption { return schema.Indexed(v) }

// Sortable marks a field as usable in sort_by.
func Sortable() FieldOption { return schema.Sortable() }

// FieldSpec is one field declaration in a NewSchema call.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Optional bool
	Opts     []FieldOption
}

// F is shorthand for a required field declaration.
func F(name string, t FieldType, opts ...FieldOption) FieldSpec {
	return FieldSpec{Name: name, Type: t, Opts: opts}
}

// OptionalF is shorthand for an optional field declaration.
func OptionalF(name string, t FieldType, opts ...FieldOption) FieldSpec {
	return FieldSpec{Name: name, Type: t, Optional: true, Opts: opts}
}

// buildFields validates a list of FieldSpec into schema.Field values, the
// shape Collections().Create expects (§4.2's explicit schema declaration).
func buildFields(specs []FieldSpec) ([]schema.Field, error) {
	fields := make([]schema.Field, 0, len(specs))
	for _, spec := range specs {
		f, err := schema.New(spec.Name, spec.Type, spec.Optional, spec.Opts...)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", spec.Name, err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// toValue converts an arbitrary Go value (typically a JSON-tagged struct or
// a map[string]any) into the internal dotted-field value tree by round
// tripping it through JSON, the same wire format the HTTP transport decodes.
func toValue(item any) (value.Value, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return value.Value{}, fmt.Errorf("marshal document: %w", err)
	}
	v, err := value.Decode(raw)
	if err != nil {
		return value.Value{}, fmt.Errorf("decode document: %w", err)
	}
	return v, nil
}

// fromValue decodes a value tree into a typed Go value via JSON, the
// inverse of toValue.
func fromValue[T any](v value.Value) (T, error) {
	var out T
	raw, err := value.Encode(v)
	if err != nil {
		return out, fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal document: %w", err)
	}
	return out, nil
}
