// Package value implements the tagged-variant document value type used
// throughout the nested-field engine: String | Int | Float | Bool | Array |
// Object | Null. Shape checks are explicit switches on Kind rather than
// runtime reflection, per the design notes in SPEC_FULL.md.
package value

import "fmt"

// Kind tags the dynamic shape of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindArray
	KindObject
)

// String returns a human-readable name for the kind, used in TypeMismatch messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable, JSON-shaped tree node.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	arr  []Value
	obj  *Object
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Str wraps a string leaf.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Int wraps an integer leaf.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a floating point leaf.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool wraps a boolean leaf.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Arr wraps an array of values.
func Arr(vs []Value) Value { return Value{kind: KindArray, arr: vs} }

// Obj wraps an object node.
func Obj(o *Object) Value { return Value{kind: KindObject, obj: o} }

// Kind returns the value's dynamic shape.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsScalar reports whether the value is a leaf (not array/object/null).
func (v Value) IsScalar() bool {
	switch v.kind {
	case KindString, KindInt, KindFloat, KindBool:
		return true
	default:
		return false
	}
}

// AsString returns the string leaf and whether the kind matched.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsInt returns the int leaf and whether the kind matched.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the float leaf, widening ints, and whether the kind matched.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsBool returns the bool leaf and whether the kind matched.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsArray returns the array elements and whether the kind matched.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject returns the object node and whether the kind matched.
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Raw returns the value's payload as an `any`: string, int64, float64, bool,
// []Value for an array, *Object for an object, or nil.
func (v Value) Raw() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindArray:
		return v.arr
	case KindObject:
		return v.obj
	default:
		return nil
	}
}

// Clone deep-copies the value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		cp := make([]Value, len(v.arr))
		for i, e := range v.arr {
			cp[i] = e.Clone()
		}
		return Arr(cp)
	case KindObject:
		return Obj(v.obj.Clone())
	default:
		return v
	}
}

// String renders the leaf as a display string (used for tokenizing/highlighting).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.s
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	default:
		return ""
	}
}

// Object is an insertion-ordered string-keyed map, preserving JSON document
// key order the way the Path Model's for_each_leaf walk requires (§4.1).
type Object struct {
	keys []string
	vals map[string]Value
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{vals: make(map[string]Value)}
}

// Set inserts or updates a key, preserving first-insertion order.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.vals[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// Get looks up a key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether the key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Delete removes a key, if present.
func (o *Object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Clone deep-copies the object.
func (o *Object) Clone() *Object {
	if o == nil {
		return NewObject()
	}
	cp := &Object{
		keys: append([]string(nil), o.keys...),
		vals: make(map[string]Value, len(o.vals)),
	}
	for k, v := range o.vals {
		cp.vals[k] = v.Clone()
	}
	return cp
}
