// Package search orchestrates a search request end to end: the Query
// Binder resolves the field references named on the wire, the repository
// runs the BM25 query, each hit's document is hydrated from the document
// store, and the Projector and Highlight Builder shape the response body
// (§6.3, §6.4).
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/nestidx/internal/domain"
	"github.com/kailas-cloud/nestidx/internal/domain/search/request"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	"github.com/kailas-cloud/nestidx/internal/tokenize"
	"github.com/kailas-cloud/nestidx/internal/usecase/highlight"
	"github.com/kailas-cloud/nestidx/internal/usecase/project"
	"github.com/kailas-cloud/nestidx/internal/usecase/querybind"
)

// MatchMeta reports which query tokens matched within one highlighted leaf.
type MatchMeta struct {
	MatchedTokens []string
}

// Hit is one search result: the projected document body alongside its
// snippet/full highlight mirrors and per-path match metadata (§6.4).
type Hit struct {
	ID       string
	Score    float64
	Document value.Value
	Snippet  value.Value
	Full     value.Value
	Meta     map[string]MatchMeta
}

// Response is a search outcome: the total match count plus the requested
// page of hits. `highlights` (§6.4's legacy flat list) is intentionally
// absent — the mirror trees on each Hit are authoritative for nested fields.
type Response struct {
	Found int
	Hits  []Hit
}

// Service is the search entry point bound to one collection's storage and
// document collaborators.
type Service struct {
	repo  Repository
	colls CollectionReader
	docs  DocumentGetter
	hi    *highlight.Builder
}

// New creates a search Service.
func New(repo Repository, colls CollectionReader, docs DocumentGetter) *Service {
	return &Service{repo: repo, colls: colls, docs: docs, hi: highlight.New()}
}

// Search resolves req's field references against collectionName's schema,
// runs the query, and returns the projected, highlighted hits.
func (s *Service) Search(ctx context.Context, collectionName string, req *request.Request) (Response, error) {
	col, err := s.colls.Get(ctx, collectionName)
	if err != nil {
		return Response{}, fmt.Errorf("get collection: %w", err)
	}
	binder := querybind.New(col.Registry())

	fields, err := binder.ResolveSearchFields(req.QueryBy())
	if err != nil {
		return Response{}, err
	}

	if sortBy := req.SortBy(); sortBy != "" {
		if _, err := binder.ResolveSortField(sortBy); err != nil {
			return Response{}, err
		}
	}

	for _, cond := range req.Filters().Must() {
		if _, err := binder.ResolveFilterField(cond.Key()); err != nil {
			return Response{}, err
		}
	}
	for _, cond := range req.Filters().Should() {
		if _, err := binder.ResolveFilterField(cond.Key()); err != nil {
			return Response{}, err
		}
	}
	for _, cond := range req.Filters().MustNot() {
		if _, err := binder.ResolveFilterField(cond.Key()); err != nil {
			return Response{}, err
		}
	}

	for _, group := range [][]string{req.IncludeFields(), req.ExcludeFields()} {
		for _, p := range group {
			if err := binder.ResolveProjectionPath(p); err != nil {
				return Response{}, err
			}
		}
	}

	// Unlike include/exclude_fields, an unknown highlight field is not a
	// request error (§4.6): it simply yields an empty snippet/full for that
	// path, so ResolveProjectionPath's error is dropped rather than returned.
	highlightFields := filterKnownProjectionPaths(binder, req.HighlightFields())
	highlightFullFields := filterKnownProjectionPaths(binder, req.HighlightFullFields())

	if !s.repo.SupportsTextSearch(ctx) && req.Query() != "" {
		return Response{}, domain.NewInvalidRequest("keyword search is not supported by this backend")
	}

	hits, total, err := s.repo.Search(
		ctx, collectionName, req.Query(), fields, req.Filters(),
		req.SortBy(), req.SortDesc(), req.Offset(), req.Limit(),
	)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}

	tokens := tokenize.Words(req.Query())
	rules := project.Rules{Include: req.IncludeFields(), Exclude: req.ExcludeFields()}
	opts := highlight.Options{
		Fields:       highlightFields,
		FullFields:   highlightFullFields,
		SearchFields: fields,
		AffixTokens:  req.AffixTokens(),
	}

	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		doc, err := s.docs.Get(ctx, collectionName, h.ID())
		if err != nil {
			if errors.Is(err, domain.ErrDocumentNotFound) {
				continue // stale posting; document was removed after indexing
			}
			return Response{}, fmt.Errorf("get document %q: %w", h.ID(), err)
		}

		pruned := project.Prune(doc.Root(), rules)
		mirror, flat := s.hi.Build(pruned, tokens, opts)

		meta := make(map[string]MatchMeta, len(flat))
		for _, fh := range flat {
			if len(fh.MatchedTokens) > 0 {
				meta[fh.Field] = MatchMeta{MatchedTokens: fh.MatchedTokens}
			}
		}

		out = append(out, Hit{
			ID:       h.ID(),
			Score:    h.Score(),
			Document: pruned,
			Snippet:  extractMirrorField(mirror, "snippet"),
			Full:     extractMirrorField(mirror, "value"),
			Meta:     meta,
		})
	}

	return Response{Found: total, Hits: out}, nil
}

// extractMirrorField collapses a highlight mirror tree down to one of its
// two leaf views (snippet or full value), dropping the sibling key and the
// matched_tokens list at each leaf node.
func extractMirrorField(v value.Value, key string) value.Value {
	switch v.Kind() {
	case value.KindObject:
		obj, _ := v.AsObject()
		if isHighlightLeaf(obj) {
			leaf, _ := obj.Get(key)
			return leaf
		}
		out := value.NewObject()
		for _, k := range obj.Keys() {
			cv, _ := obj.Get(k)
			out.Set(k, extractMirrorField(cv, key))
		}
		return value.Obj(out)
	case value.KindArray:
		arr, _ := v.AsArray()
		outArr := make([]value.Value, len(arr))
		for i, e := range arr {
			outArr[i] = extractMirrorField(e, key)
		}
		return value.Arr(outArr)
	default:
		return v
	}
}

func isHighlightLeaf(obj *value.Object) bool {
	return obj.Has("snippet") && obj.Has("value") && obj.Has("matched_tokens")
}

// filterKnownProjectionPaths drops any dotted path the registry doesn't
// recognize instead of failing the request; an unresolvable highlight field
// just never becomes a highlight target (§4.6).
func filterKnownProjectionPaths(binder *querybind.Binder, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := binder.ResolveProjectionPath(p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}
