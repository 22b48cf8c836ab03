package flatten

import (
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
)

// leafBuilder accumulates every raw occurrence produced for one dotted path
// while a document is walked, so that leaves reached through an
// array-of-objects ancestor can be folded into a single ordered array leaf
// once the walk finishes.
type leafBuilder struct {
	path        string
	values      []value.Value
	nestedArray bool
}

func (lb *leafBuilder) build() Leaf {
	if lb.nestedArray {
		var out []value.Value
		var kind schema.Type
		for _, v := range lb.values {
			if arr, ok := v.AsArray(); ok {
				out = append(out, arr...)
				if kind == "" && len(arr) > 0 {
					kind = inferKind(arr[0])
				}
			} else {
				out = append(out, v)
				if kind == "" {
					kind = inferKind(v)
				}
			}
		}
		if kind == "" {
			kind = schema.Auto
		}
		return Leaf{Path: lb.path, Values: value.Arr(out), LeafType: kind.AsArray(), NestedArray: true}
	}

	v := lb.values[0]
	if arr, ok := v.AsArray(); ok {
		kind := schema.Auto
		if len(arr) > 0 {
			kind = inferKind(arr[0])
		}
		return Leaf{Path: lb.path, Values: v, LeafType: kind.AsArray(), NestedArray: false}
	}
	return Leaf{Path: lb.path, Values: v, LeafType: inferKind(v), NestedArray: false}
}

// accumulator collects leaf occurrences in first-encountered path order.
type accumulator struct {
	order  []string
	byPath map[string]*leafBuilder
}

func newAccumulator() *accumulator {
	return &accumulator{byPath: make(map[string]*leafBuilder)}
}

func (a *accumulator) has(p string) bool {
	_, ok := a.byPath[p]
	return ok
}

func (a *accumulator) add(p string, v value.Value, nestedArray bool) {
	lb, ok := a.byPath[p]
	if !ok {
		lb = &leafBuilder{path: p}
		a.byPath[p] = lb
		a.order = append(a.order, p)
	}
	lb.nestedArray = lb.nestedArray || nestedArray
	lb.values = append(lb.values, v)
}

func (a *accumulator) finalizeLeaves() []Leaf {
	leaves := make([]Leaf, 0, len(a.order))
	for _, p := range a.order {
		leaves = append(leaves, a.byPath[p].build())
	}
	return leaves
}
