// Package patch implements a partial-document update: a tree-shaped body
// merged into an existing document (component D's UPDATE/EMPLACE
// semantics, §4.4).
package patch

import (
	"fmt"

	"github.com/kailas-cloud/nestidx/internal/domain/value"
)

// Patch wraps a partial JSON object to be deep-merged into an existing
// document. A key mapped to an explicit JSON null deletes that key from the
// target instead of setting it to null.
type Patch struct {
	body *value.Object
}

// New validates and creates a Patch from a decoded partial body.
func New(body value.Value) (Patch, error) {
	obj, ok := body.AsObject()
	if !ok {
		return Patch{}, fmt.Errorf("patch body must be a JSON object")
	}
	if obj.Len() == 0 {
		return Patch{}, fmt.Errorf("patch body must set at least one field")
	}
	return Patch{body: obj}, nil
}

// IsEmpty reports whether the patch carries no changes.
func (p Patch) IsEmpty() bool { return p.body == nil || p.body.Len() == 0 }

// Apply deep-merges the patch onto root and returns the merged document
// body. Nested objects are merged key by key; arrays and scalars are
// replaced wholesale; a null leaf in the patch deletes the corresponding
// key from the target object.
func Apply(root value.Value, p Patch) value.Value {
	if p.body == nil {
		return root
	}
	return mergeObject(root, p.body)
}

func mergeObject(target value.Value, patch *value.Object) value.Value {
	dst, ok := target.AsObject()
	if !ok {
		dst = value.NewObject()
	} else {
		dst = dst.Clone()
	}
	for _, k := range patch.Keys() {
		pv, _ := patch.Get(k)
		if pv.IsNull() {
			dst.Delete(k)
			continue
		}
		if pobj, ok := pv.AsObject(); ok {
			if existing, has := dst.Get(k); has && existing.Kind() == value.KindObject {
				dst.Set(k, mergeObject(existing, pobj))
				continue
			}
		}
		dst.Set(k, pv.Clone())
	}
	return value.Obj(dst)
}
