package db

import "github.com/kailas-cloud/nestidx/internal/domain/search/filter"

// TextQuery is the input for BM25 text search over one or more TEXT fields.
type TextQuery struct {
	IndexName    string
	Query        string
	Fields       []string // dotted leaf paths to search; empty means every TEXT field in the index
	Filters      filter.Expression
	SortBy       string
	SortDesc     bool
	Offset       int
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
