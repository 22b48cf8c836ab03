package document

import (
	"fmt"

	domdoc "github.com/kailas-cloud/nestidx/internal/domain/document"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	"github.com/kailas-cloud/nestidx/internal/usecase/flatten"
)

// encodeDoc serializes a Document to the JSON envelope stored at path "$":
// the source tree under "root", the flattened leaf manifest under "leaves"
// (so a restart never has to re-run the Flattener just to answer a GET),
// and the revision counter.
func encodeDoc(doc domdoc.Document) ([]byte, error) {
	env := value.NewObject()
	env.Set("root", doc.Root())
	env.Set("revision", value.Int(int64(doc.Revision())))

	leaves := doc.Leaves()
	leafVals := make([]value.Value, len(leaves))
	for i, lf := range leaves {
		lo := value.NewObject()
		lo.Set("path", value.Str(lf.Path))
		lo.Set("values", lf.Values)
		lo.Set("leaf_type", value.Str(string(lf.LeafType)))
		lo.Set("nested_array", value.Bool(lf.NestedArray))
		leafVals[i] = value.Obj(lo)
	}
	env.Set("leaves", value.Arr(leafVals))

	return value.Encode(value.Obj(env))
}

// decodeDoc parses the JSON envelope written by encodeDoc back into a Document.
func decodeDoc(id string, raw []byte) (domdoc.Document, error) {
	v, err := value.Decode(raw)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("decode envelope: %w", err)
	}
	obj, ok := v.AsObject()
	if !ok {
		return domdoc.Document{}, fmt.Errorf("document envelope is not an object")
	}

	root, ok := obj.Get("root")
	if !ok {
		return domdoc.Document{}, fmt.Errorf("document envelope missing root")
	}

	revision := 1
	if rv, ok := obj.Get("revision"); ok {
		if n, ok := rv.AsInt(); ok {
			revision = int(n)
		}
	}

	var leaves []flatten.Leaf
	if lv, ok := obj.Get("leaves"); ok {
		arr, _ := lv.AsArray()
		leaves = make([]flatten.Leaf, 0, len(arr))
		for _, e := range arr {
			lo, ok := e.AsObject()
			if !ok {
				continue
			}
			pathV, _ := lo.Get("path")
			pathStr, _ := pathV.AsString()
			valuesV, _ := lo.Get("values")
			typeV, _ := lo.Get("leaf_type")
			typeStr, _ := typeV.AsString()
			naV, _ := lo.Get("nested_array")
			na, _ := naV.AsBool()
			leaves = append(leaves, flatten.Leaf{
				Path:        pathStr,
				Values:      valuesV,
				LeafType:    schema.Type(typeStr),
				NestedArray: na,
			})
		}
	}

	return domdoc.Reconstruct(id, root, leaves, revision), nil
}
