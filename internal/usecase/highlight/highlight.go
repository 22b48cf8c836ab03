// Package highlight implements the Highlight Builder (§4.6): reconstructing
// a mirror tree of a document's body with matched leaves replaced by
// snippet/value/matched_tokens nodes, preserving array shape so that a
// highlighted array-of-objects field aligns index-for-index with the
// source document (the array alignment invariant).
package highlight

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/nestidx/internal/domain/path"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
)

// DefaultAffixTokens is the number of words of context kept on each side of
// a match in a snippet, absent an explicit override.
const DefaultAffixTokens = 4

// Options configures which fields are highlighted and how.
type Options struct {
	// Fields lists dotted paths to highlight with a truncated snippet plus
	// the full value (highlight_fields). When Fields and FullFields are
	// both empty, highlighting scopes to SearchFields instead (the paths
	// actually searched), and only leaves that matched a query token are
	// kept — never the whole document.
	Fields []string
	// FullFields lists dotted paths highlighted in full, with no
	// truncation (highlight_full_fields, alternately spelled
	// highlightFullFields on the wire).
	FullFields []string
	// SearchFields lists the resolved query_by paths, used as the default
	// highlight scope when Fields and FullFields are both empty.
	SearchFields []string
	// AffixTokens overrides DefaultAffixTokens.
	AffixTokens int
}

// explicitlyScoped reports whether the caller named highlight fields
// directly, as opposed to falling back to the searched-fields default.
func explicitlyScoped(opts Options) bool {
	return len(opts.Fields) > 0 || len(opts.FullFields) > 0
}

// FlatHighlight is one leaf's highlight result, alongside the mirror tree,
// for callers that want a flat list rather than walking the tree (§6.4).
type FlatHighlight struct {
	Field         string
	Snippet       string
	Value         string
	MatchedTokens []string
}

// Builder reconstructs highlight mirror trees against a fixed token set.
type Builder struct{}

// New creates a Builder.
func New() *Builder { return &Builder{} }

// Build walks doc and returns the highlight mirror tree plus a flattened
// list of the same results, in document order.
func (b *Builder) Build(doc value.Value, tokens []string, opts Options) (value.Value, []FlatHighlight) {
	affix := opts.AffixTokens
	if affix <= 0 {
		affix = DefaultAffixTokens
	}
	var flat []FlatHighlight
	mirror, _ := walk(doc, "", tokens, opts, affix, &flat)
	return mirror, flat
}

func walk(v value.Value, dotted string, tokens []string, opts Options, affix int, flat *[]FlatHighlight) (value.Value, bool) {
	switch v.Kind() {
	case value.KindObject:
		obj, _ := v.AsObject()
		out := value.NewObject()
		any := false
		for _, k := range obj.Keys() {
			cv, _ := obj.Get(k)
			childPath := k
			if dotted != "" {
				childPath = dotted + "." + k
			}
			pv, keep := walk(cv, childPath, tokens, opts, affix, flat)
			if keep {
				out.Set(k, pv)
				any = true
			}
		}
		return value.Obj(out), any
	case value.KindArray:
		arr, _ := v.AsArray()
		if path.IsObjectArray(arr) {
			var outArr []value.Value
			any := false
			for _, e := range arr {
				pv, keep := walk(e, dotted, tokens, opts, affix, flat)
				outArr = append(outArr, pv) // keep index alignment even on a miss
				any = any || keep
			}
			return value.Arr(outArr), any
		}
		if !isTarget(dotted, opts) {
			return value.Null(), false
		}
		var outArr []value.Value
		matchedAny := false
		for _, e := range arr {
			node, matched := leafNode(e.String(), tokens, dotted, opts, affix, flat)
			outArr = append(outArr, node)
			matchedAny = matchedAny || matched
		}
		return value.Arr(outArr), explicitlyScoped(opts) || matchedAny
	default:
		if !isTarget(dotted, opts) {
			return value.Null(), false
		}
		node, matched := leafNode(v.String(), tokens, dotted, opts, affix, flat)
		return node, explicitlyScoped(opts) || matched
	}
}

func leafNode(text string, tokens []string, dotted string, opts Options, affix int, flat *[]FlatHighlight) (value.Value, bool) {
	full, matched := markAll(text, tokens)
	snippet := full
	if !matchesAny(opts.FullFields, dotted) {
		snippet, _ = markAll(snippetWindow(text, tokens, affix), tokens)
	}

	node := value.NewObject()
	node.Set("snippet", value.Str(snippet))
	node.Set("value", value.Str(full))
	tokArr := make([]value.Value, len(matched))
	for i, m := range matched {
		tokArr[i] = value.Str(m)
	}
	node.Set("matched_tokens", value.Arr(tokArr))

	*flat = append(*flat, FlatHighlight{Field: dotted, Snippet: snippet, Value: full, MatchedTokens: matched})
	return value.Obj(node), len(matched) > 0
}

// isTarget reports whether dotted should be considered for highlighting.
// The synthetic id field is never a target (§4.6).
func isTarget(dotted string, opts Options) bool {
	if dotted == "id" {
		return false
	}
	if !explicitlyScoped(opts) {
		return matchesAny(opts.SearchFields, dotted)
	}
	return matchesAny(opts.Fields, dotted) || matchesAny(opts.FullFields, dotted)
}

func matchesAny(list []string, dotted string) bool {
	for _, p := range list {
		if p == "*" || path.StartsWithPath(dotted, p) {
			return true
		}
	}
	return false
}

type occurrence struct{ start, end int }

// markAll wraps every case-insensitive occurrence of any token in <mark>
// tags and returns the marked text plus the distinct tokens actually found.
func markAll(text string, tokens []string) (string, []string) {
	lower := strings.ToLower(text)
	var occs []occurrence
	matchedSet := map[string]bool{}
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		tl := strings.ToLower(tok)
		from := 0
		for {
			i := strings.Index(lower[from:], tl)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(tl)
			occs = append(occs, occurrence{start, end})
			matchedSet[tok] = true
			from = end
		}
	}
	if len(occs) == 0 {
		return text, nil
	}
	sort.Slice(occs, func(i, j int) bool { return occs[i].start < occs[j].start })
	merged := occs[:1]
	for _, o := range occs[1:] {
		last := &merged[len(merged)-1]
		if o.start <= last.end {
			if o.end > last.end {
				last.end = o.end
			}
			continue
		}
		merged = append(merged, o)
	}

	var b strings.Builder
	last := 0
	for _, o := range merged {
		b.WriteString(text[last:o.start])
		b.WriteString("<mark>")
		b.WriteString(text[o.start:o.end])
		b.WriteString("</mark>")
		last = o.end
	}
	b.WriteString(text[last:])

	matched := make([]string, 0, len(matchedSet))
	for m := range matchedSet {
		matched = append(matched, m)
	}
	sort.Strings(matched)
	return b.String(), matched
}

// snippetWindow returns a window of affixTokens words on each side of the
// first token match, with ellipses marking truncation.
func snippetWindow(text string, tokens []string, affixTokens int) string {
	lower := strings.ToLower(text)
	firstStart := -1
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if i := strings.Index(lower, strings.ToLower(tok)); i >= 0 && (firstStart == -1 || i < firstStart) {
			firstStart = i
		}
	}
	if firstStart == -1 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	pos := 0
	matchWordIdx := 0
	for i, w := range words {
		wStart := pos
		wEnd := wStart + len(w)
		if firstStart >= wStart && firstStart <= wEnd {
			matchWordIdx = i
			break
		}
		pos = wEnd + 1
	}

	start := matchWordIdx - affixTokens
	if start < 0 {
		start = 0
	}
	end := matchWordIdx + affixTokens + 1
	if end > len(words) {
		end = len(words)
	}
	snippet := strings.Join(words[start:end], " ")
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(words) {
		snippet += "…"
	}
	return snippet
}
