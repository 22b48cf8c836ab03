package path

import "github.com/kailas-cloud/nestidx/internal/domain/value"

// LeafFunc is invoked once per leaf encountered by ForEachLeaf.
//
//   - keys: the dotted path with array indices erased (schema path)
//   - arrayDepth: number of array-of-object ancestors traversed to reach the leaf
//   - nestedArray: true iff the path traverses at least one array-of-objects
//     ancestor (arrayDepth > 0) — the array-depth monotonicity invariant in
//     SPEC_FULL.md §8.1. A scalar array leaf with no array-of-objects
//     ancestor is still array-shaped but nestedArray is false.
//   - v: the leaf value (a scalar, or a whole scalar array when the array
//     itself is the leaf — see the array-depth note in SPEC_FULL.md §4.1)
type LeafFunc func(keys []string, arrayDepth int, nestedArray bool, v value.Value)

// ForEachLeaf walks a document tree in document order (object keys by
// insertion, arrays by index), invoking fn once per leaf. A scalar array is
// itself a single leaf: it does not deepen array_depth or get walked
// element-by-element, matching the "nested_array flag rather than
// deepening" rule in SPEC_FULL.md §4.1.
func ForEachLeaf(root value.Value, fn LeafFunc) {
	walk(nil, 0, root, fn)
}

// ForEachLeafFrom walks root the same way as ForEachLeaf but seeds the
// initial array depth, for callers that already resolved root through one
// or more array-of-objects ancestors before handing it to the walker (the
// Flattener's object/object[] field handling).
func ForEachLeafFrom(root value.Value, startDepth int, fn LeafFunc) {
	walk(nil, startDepth, root, fn)
}

// IsObjectArray reports whether arr contains at least one object element.
func IsObjectArray(arr []value.Value) bool { return isObjectArray(arr) }

func walk(prefix []string, arrayDepth int, v value.Value, fn LeafFunc) {
	switch v.Kind() {
	case value.KindObject:
		obj, _ := v.AsObject()
		for _, k := range obj.Keys() {
			cv, _ := obj.Get(k)
			walk(append(append([]string{}, prefix...), k), arrayDepth, cv, fn)
		}
	case value.KindArray:
		arr, _ := v.AsArray()
		if isObjectArray(arr) {
			for _, e := range arr {
				walk(prefix, arrayDepth+1, e, fn)
			}
			return
		}
		// Scalar array (including empty arrays): a single leaf. nested_array
		// still depends only on any array-of-objects ancestor above it.
		fn(prefix, arrayDepth, arrayDepth > 0, v)
	default:
		fn(prefix, arrayDepth, arrayDepth > 0, v)
	}
}

func isObjectArray(arr []value.Value) bool {
	for _, e := range arr {
		if e.Kind() == value.KindObject {
			return true
		}
	}
	return false
}
