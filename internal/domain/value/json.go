package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode parses JSON bytes into a Value tree, preserving object key order
// via json.Decoder tokens (encoding/json's map decoding does not, and no
// library in the dependency set offers order-preserving JSON decoding).
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("value: unexpected delimiter %q", t)
		}
	case string:
		return Str(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid number %q: %w", t.String(), err)
		}
		return Float(f), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("value: unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("value: object key is not a string")
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return Value{}, err
	}
	return Obj(obj), nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	var elems []Value
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil { // consume closing ']'
		return Value{}, err
	}
	return Arr(elems), nil
}

// Encode serializes a Value tree to JSON, preserving object key order.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(w io.Writer, v Value) error {
	switch v.kind {
	case KindNull:
		_, err := w.Write([]byte("null"))
		return err
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case KindInt:
		_, err := fmt.Fprintf(w, "%d", v.i)
		return err
	case KindFloat:
		b, err := json.Marshal(v.f)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case KindBool:
		_, err := fmt.Fprintf(w, "%t", v.b)
		return err
	case KindArray:
		return encodeArray(w, v.arr)
	case KindObject:
		return encodeObject(w, v.obj)
	default:
		return fmt.Errorf("value: cannot encode kind %v", v.kind)
	}
}

func encodeArray(w io.Writer, arr []Value) error {
	if _, err := w.Write([]byte{'['}); err != nil {
		return err
	}
	for i, e := range arr {
		if i > 0 {
			if _, err := w.Write([]byte{','}); err != nil {
				return err
			}
		}
		if err := encodeValue(w, e); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{']'})
	return err
}

func encodeObject(w io.Writer, obj *Object) error {
	if _, err := w.Write([]byte{'{'}); err != nil {
		return err
	}
	for i, k := range obj.Keys() {
		if i > 0 {
			if _, err := w.Write([]byte{','}); err != nil {
				return err
			}
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		if _, err := w.Write(kb); err != nil {
			return err
		}
		if _, err := w.Write([]byte{':'}); err != nil {
			return err
		}
		v, _ := obj.Get(k)
		if err := encodeValue(w, v); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte{'}'})
	return err
}
