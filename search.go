package nestidx

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/nestidx/internal/domain/search/filter"
	"github.com/kailas-cloud/nestidx/internal/domain/search/request"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	searchuc "github.com/kailas-cloud/nestidx/internal/usecase/search"
)

// SearchHandle executes search queries against a single collection.
type SearchHandle struct {
	collection string
	svc        *searchuc.Service
}

// RangeFilter defines numeric range boundaries; nil bounds are unset.
type RangeFilter struct {
	GT, GTE, LT, LTE *float64
}

// FilterCondition is a single filter clause: either Match (exact/tag
// match) or Range (numeric bounds), never both.
type FilterCondition struct {
	Key   string
	Match string
	Range *RangeFilter
}

// FilterExpression is a set of must/should/must_not filter conditions
// (§6.3's pre-filter clause).
type FilterExpression struct {
	Must    []FilterCondition
	Should  []FilterCondition
	MustNot []FilterCondition
}

// SearchOptions configures a search query beyond the query text.
type SearchOptions struct {
	QueryBy                 []string
	Filters                 FilterExpression
	SortBy                  string
	SortDesc                bool
	Offset                  int
	Limit                   int
	IncludeFields           []string
	ExcludeFields           []string
	HighlightFields         []string
	HighlightFullFields     []string
	HighlightAffixNumTokens int
}

// Hit is one search result: the projected document plus its highlight
// mirrors and per-path match metadata (§6.4).
type Hit struct {
	ID       string
	Score    float64
	Document value.Value
	Snippet  value.Value
	Full     value.Value
	Meta     map[string]MatchMeta
}

// MatchMeta reports which query tokens matched within one highlighted leaf.
type MatchMeta struct {
	MatchedTokens []string
}

// SearchResponse is a search outcome: the total match count plus the
// requested page of hits.
type SearchResponse struct {
	Found int
	Hits  []Hit
}

// Query executes a search against the bound collection.
func (h *SearchHandle) Query(ctx context.Context, q string, opts *SearchOptions) (SearchResponse, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	filters, err := toInternalFilters(opts.Filters)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("query: %w", err)
	}

	req, err := request.New(
		q, opts.QueryBy, filters, opts.SortBy, opts.SortDesc, opts.Offset, opts.Limit,
		opts.IncludeFields, opts.ExcludeFields, opts.HighlightFields, opts.HighlightFullFields,
		opts.HighlightAffixNumTokens,
	)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("query: %w", err)
	}

	resp, err := h.svc.Search(ctx, h.collection, &req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("query: %w", err)
	}
	return fromSearchResponse(resp), nil
}

func toInternalFilters(fe FilterExpression) (filter.Expression, error) {
	must, err := toConditions(fe.Must)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter must: %w", err)
	}
	should, err := toConditions(fe.Should)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter should: %w", err)
	}
	mustNot, err := toConditions(fe.MustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter must_not: %w", err)
	}
	expr, err := filter.NewExpression(must, should, mustNot)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("filter expression: %w", err)
	}
	return expr, nil
}

func toConditions(conds []FilterCondition) ([]filter.Condition, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, len(conds))
	for i, c := range conds {
		var err error
		if c.Range != nil {
			r, rerr := filter.NewRangeFilter(c.Range.GT, c.Range.GTE, c.Range.LT, c.Range.LTE)
			if rerr != nil {
				return nil, fmt.Errorf("filter %q: %w", c.Key, rerr)
			}
			out[i], err = filter.NewRange(c.Key, r)
		} else {
			out[i], err = filter.NewMatch(c.Key, c.Match)
		}
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", c.Key, err)
		}
	}
	return out, nil
}

func fromSearchResponse(resp searchuc.Response) SearchResponse {
	hits := make([]Hit, len(resp.Hits))
	for i, h := range resp.Hits {
		meta := make(map[string]MatchMeta, len(h.Meta))
		for path, m := range h.Meta {
			meta[path] = MatchMeta{MatchedTokens: m.MatchedTokens}
		}
		hits[i] = Hit{
			ID:       h.ID,
			Score:    h.Score,
			Document: h.Document,
			Snippet:  h.Snippet,
			Full:     h.Full,
			Meta:     meta,
		}
	}
	return SearchResponse{Found: resp.Found, Hits: hits}
}
