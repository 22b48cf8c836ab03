// Package path implements the dotted-path field model: segment splitting,
// joining, and prefix comparisons (§4.1 of SPEC_FULL.md). Array indices are
// erased for schema lookup but preserved on Segment for highlight/projection
// locality.
package path

import "strings"

// Segment is either a Key(name) or an Index(i).
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySeg builds a key segment.
func KeySeg(k string) Segment { return Segment{Key: k} }

// IndexSeg builds an array-index segment.
func IndexSeg(i int) Segment { return Segment{Index: i, IsIndex: true} }

// Path is an ordered list of segments.
type Path []Segment

// Split parses a dotted string into key-only segments.
// The wildcard entry ".*" splits into a single segment "*".
func Split(dotted string) Path {
	if dotted == "" {
		return nil
	}
	parts := strings.Split(dotted, ".")
	p := make(Path, len(parts))
	for i, s := range parts {
		p[i] = KeySeg(s)
	}
	return p
}

// Join renders the key segments back into a dotted string, skipping any
// index segments (array indices are not part of the schema path).
func (p Path) Join() string {
	var b strings.Builder
	first := true
	for _, s := range p {
		if s.IsIndex {
			continue
		}
		if !first {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
		first = false
	}
	return b.String()
}

// WithIndex returns a copy of p with an index segment appended.
func (p Path) WithIndex(i int) Path {
	cp := make(Path, len(p)+1)
	copy(cp, p)
	cp[len(p)] = IndexSeg(i)
	return cp
}

// WithKey returns a copy of p with a key segment appended.
func (p Path) WithKey(k string) Path {
	cp := make(Path, len(p)+1)
	copy(cp, p)
	cp[len(p)] = KeySeg(k)
	return cp
}

// StartsWith reports whether p begins with the given prefix, segment for segment.
func (p Path) StartsWith(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if prefix[i].IsIndex != p[i].IsIndex {
			return false
		}
		if prefix[i].IsIndex {
			if prefix[i].Index != p[i].Index {
				return false
			}
		} else if prefix[i].Key != p[i].Key {
			return false
		}
	}
	return true
}

// IsWildcard reports whether the dotted path is the ".*" wildcard entry.
func IsWildcard(dotted string) bool { return dotted == ".*" }

// StartsWithPath reports whether the dotted path lies at or below prefixDotted
// on a key-segment boundary (e.g. "a.b.c" is below "a.b" but not "a.bc").
func StartsWithPath(dotted, prefixDotted string) bool {
	if prefixDotted == "" {
		return true
	}
	if dotted == prefixDotted {
		return true
	}
	return strings.HasPrefix(dotted, prefixDotted+".")
}

// Keys splits a dotted path into its raw key strings.
func Keys(dotted string) []string {
	if dotted == "" {
		return nil
	}
	return strings.Split(dotted, ".")
}

// Parent returns the dotted path with its last segment removed, and true if
// one existed. Returns ("", false) for a top-level (single-segment) path.
func Parent(dotted string) (string, bool) {
	i := strings.LastIndexByte(dotted, '.')
	if i < 0 {
		return "", false
	}
	return dotted[:i], true
}

// IsNested reports whether a dotted path has more than one segment.
func IsNested(dotted string) bool {
	return strings.ContainsRune(dotted, '.')
}
