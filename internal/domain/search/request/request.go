// Package request implements the validated search request (§6.3): the
// query text plus the field references, filters, sort/pagination, and
// projection/highlight options the Query Binder resolves before the
// request reaches the postings engine.
package request

import (
	"fmt"

	"github.com/kailas-cloud/nestidx/internal/domain/search/filter"
)

// Search parameter limits.
const (
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 250
)

// Request is a validated search query bound to one collection.
type Request struct {
	query               string
	queryBy             []string
	filters             filter.Expression
	sortBy              string
	sortDesc            bool
	offset              int
	limit               int
	includeFields       []string
	excludeFields       []string
	highlightFields     []string
	highlightFullFields []string
	affixTokens         int
}

// New validates and normalizes search parameters. An empty query means
// "match all documents matching the filters" (§6.3's `query="*"` idiom);
// queryBy is the caller-resolved (via querybind.Binder) set of concrete
// leaf paths to search across.
func New(
	query string,
	queryBy []string,
	filters filter.Expression,
	sortBy string, sortDesc bool,
	offset, limit int,
	includeFields, excludeFields, highlightFields, highlightFullFields []string,
	affixTokens int,
) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("offset must not be negative")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		query: query, queryBy: queryBy, filters: filters,
		sortBy: sortBy, sortDesc: sortDesc,
		offset: offset, limit: limit,
		includeFields: includeFields, excludeFields: excludeFields,
		highlightFields: highlightFields, highlightFullFields: highlightFullFields,
		affixTokens: affixTokens,
	}, nil
}

// Query returns the raw search query text.
func (r *Request) Query() string { return r.query }

// QueryBy returns the resolved leaf field paths to search across.
func (r *Request) QueryBy() []string { return r.queryBy }

// Filters returns the pre-filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// SortBy returns the resolved sort field, empty for relevance order.
func (r *Request) SortBy() string { return r.sortBy }

// SortDesc reports whether the sort order is descending.
func (r *Request) SortDesc() bool { return r.sortDesc }

// Offset returns the pagination offset.
func (r *Request) Offset() int { return r.offset }

// Limit returns the maximum number of hits to return.
func (r *Request) Limit() int { return r.limit }

// IncludeFields returns the projection include list.
func (r *Request) IncludeFields() []string { return r.includeFields }

// ExcludeFields returns the projection exclude list.
func (r *Request) ExcludeFields() []string { return r.excludeFields }

// HighlightFields returns the snippet highlight list.
func (r *Request) HighlightFields() []string { return r.highlightFields }

// HighlightFullFields returns the full (untruncated) highlight list.
func (r *Request) HighlightFullFields() []string { return r.highlightFullFields }

// AffixTokens returns the snippet context window override, 0 meaning
// "use the highlight builder's default".
func (r *Request) AffixTokens() int { return r.affixTokens }
