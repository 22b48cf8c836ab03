package nestidx

import (
	"context"
	"fmt"
)

// TypedHit is a typed search result: the decoded document alongside its
// score.
type TypedHit[T any] struct {
	Item  T
	Score float64
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	handle *SearchHandle

	query   string
	queryBy []string
	filters []FilterCondition
	sortBy  string
	desc    bool
	offset  int
	limit   int
}

// Query sets the query text.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	b.query = q
	return b
}

// By sets the fields (dotted leaf paths or object paths) to search across.
func (b *SearchBuilder[T]) By(fields ...string) *SearchBuilder[T] {
	b.queryBy = fields
	return b
}

// Where adds an exact-match filter condition.
func (b *SearchBuilder[T]) Where(key, match string) *SearchBuilder[T] {
	b.filters = append(b.filters, FilterCondition{Key: key, Match: match})
	return b
}

// WhereRange adds a numeric range filter condition.
func (b *SearchBuilder[T]) WhereRange(key string, r RangeFilter) *SearchBuilder[T] {
	b.filters = append(b.filters, FilterCondition{Key: key, Range: &r})
	return b
}

// SortBy sets the sort field and direction.
func (b *SearchBuilder[T]) SortBy(field string, desc bool) *SearchBuilder[T] {
	b.sortBy = field
	b.desc = desc
	return b
}

// Page sets the pagination offset and page size.
func (b *SearchBuilder[T]) Page(offset, limit int) *SearchBuilder[T] {
	b.offset = offset
	b.limit = limit
	return b
}

// Do executes the search and decodes each hit's document into T.
func (b *SearchBuilder[T]) Do(ctx context.Context) ([]TypedHit[T], int, error) {
	opts := &SearchOptions{
		QueryBy:  b.queryBy,
		SortBy:   b.sortBy,
		SortDesc: b.desc,
		Offset:   b.offset,
		Limit:    b.limit,
	}
	if len(b.filters) > 0 {
		opts.Filters = FilterExpression{Must: b.filters}
	}

	resp, err := b.handle.Query(ctx, b.query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("search: %w", err)
	}

	hits := make([]TypedHit[T], 0, len(resp.Hits))
	for _, h := range resp.Hits {
		item, err := fromValue[T](h.Document)
		if err != nil {
			return nil, 0, fmt.Errorf("decode hit %q: %w", h.ID, err)
		}
		hits = append(hits, TypedHit[T]{Item: item, Score: h.Score})
	}
	return hits, resp.Found, nil
}
