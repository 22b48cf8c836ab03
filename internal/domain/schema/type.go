package schema

import "strings"

// Type is a schema field's declared or inferred value shape (§3.1).
type Type string

// Field type constants.
const (
	String      Type = "string"
	Int32       Type = "int32"
	Int64       Type = "int64"
	Float       Type = "float"
	Bool        Type = "bool"
	StringArray Type = "string[]"
	Int32Array  Type = "int32[]"
	Int64Array  Type = "int64[]"
	FloatArray  Type = "float[]"
	BoolArray   Type = "bool[]"
	Object      Type = "object"
	ObjectArray Type = "object[]"
	Auto        Type = "auto"
)

var validTypes = map[Type]bool{
	String: true, Int32: true, Int64: true, Float: true, Bool: true,
	StringArray: true, Int32Array: true, Int64Array: true, FloatArray: true, BoolArray: true,
	Object: true, ObjectArray: true, Auto: true,
}

// IsValid reports whether t is a recognized type tag.
func (t Type) IsValid() bool { return validTypes[t] }

// IsArray reports whether t is an array-of-scalars type (not object[]).
func (t Type) IsArray() bool {
	return strings.HasSuffix(string(t), "[]") && t != ObjectArray
}

// IsObjectLike reports whether t is object or object[].
func (t Type) IsObjectLike() bool { return t == Object || t == ObjectArray }

// AsArray promotes a scalar primitive type to its array variant. Object/object[]
// and already-array types are returned unchanged.
func (t Type) AsArray() Type {
	switch t {
	case String:
		return StringArray
	case Int32:
		return Int32Array
	case Int64:
		return Int64Array
	case Float:
		return FloatArray
	case Bool:
		return BoolArray
	default:
		return t
	}
}

// Scalar returns the scalar element type of an array type, or t unchanged
// if it is already scalar.
func (t Type) Scalar() Type {
	switch t {
	case StringArray:
		return String
	case Int32Array:
		return Int32
	case Int64Array:
		return Int64
	case FloatArray:
		return Float
	case BoolArray:
		return Bool
	default:
		return t
	}
}

// InferScalar returns the primitive Type of a JSON scalar leaf, used by
// wildcard/auto-schema synthesis (§4.3 "Type inference for auto").
func InferScalar(kindStr string) Type {
	switch kindStr {
	case "string":
		return String
	case "int":
		return Int64
	case "float":
		return Float
	case "bool":
		return Bool
	default:
		return Auto
	}
}
