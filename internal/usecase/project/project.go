// Package project implements the Projector (§4.5): include/exclude pruning
// of a response document, honoring dotted-path prefix matching so that
// naming an object field includes or excludes its whole subtree.
package project

import (
	"github.com/kailas-cloud/nestidx/internal/domain/path"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
)

// alwaysIncluded lists leaf paths that survive pruning regardless of the
// caller's include/exclude lists.
var alwaysIncluded = map[string]bool{"id": true}

// Rules holds a request's include_fields/exclude_fields lists, in the
// dotted-path form accepted by the wire API. "*" matches every path.
type Rules struct {
	Include []string
	Exclude []string
}

// IsNoop reports whether pruning would be a pass-through (no include or
// exclude fields given).
func (r Rules) IsNoop() bool { return len(r.Include) == 0 && len(r.Exclude) == 0 }

// Prune applies the projection rules to a document body and returns the
// pruned copy. The five ordered rules, applied at every path:
//  1. "id" is always kept.
//  2. With no include list, every path starts included.
//  3. An include entry matching a path or one of its ancestors includes it
//     (naming an object field includes its whole subtree).
//  4. Exclude is evaluated after include and always wins on conflict.
//  5. An object (or array-of-objects) node survives only if at least one
//     descendant leaf survived; otherwise the whole branch is dropped.
func Prune(root value.Value, rules Rules) value.Value {
	if rules.IsNoop() {
		return root
	}
	pruned, _ := pruneNode(root, "", rules)
	return pruned
}

func pruneNode(v value.Value, dotted string, rules Rules) (value.Value, bool) {
	switch v.Kind() {
	case value.KindObject:
		obj, _ := v.AsObject()
		out := value.NewObject()
		kept := false
		for _, k := range obj.Keys() {
			cv, _ := obj.Get(k)
			childPath := k
			if dotted != "" {
				childPath = dotted + "." + k
			}
			pv, keep := pruneNode(cv, childPath, rules)
			if keep {
				out.Set(k, pv)
				kept = true
			}
		}
		return value.Obj(out), kept
	case value.KindArray:
		arr, _ := v.AsArray()
		if path.IsObjectArray(arr) {
			var outArr []value.Value
			kept := false
			for _, e := range arr {
				pv, keep := pruneNode(e, dotted, rules)
				if keep {
					outArr = append(outArr, pv)
					kept = true
				}
			}
			return value.Arr(outArr), kept
		}
		return v, decide(dotted, rules)
	default:
		return v, decide(dotted, rules)
	}
}

func decide(dotted string, rules Rules) bool {
	if alwaysIncluded[dotted] {
		return true
	}
	included := len(rules.Include) == 0
	for _, inc := range rules.Include {
		if inc == "*" || path.StartsWithPath(dotted, inc) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, exc := range rules.Exclude {
		if exc == "*" || path.StartsWithPath(dotted, exc) {
			return false
		}
	}
	return true
}
