// Package search adapts usecase/search.Repository to the postings-engine
// store (§6.5): field-scoped BM25 queries over the per-leaf-path postings
// hashes internal/repository/postings writes.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/nestidx/internal/db"
	"github.com/kailas-cloud/nestidx/internal/domain/search/filter"
	"github.com/kailas-cloud/nestidx/internal/domain/search/result"
	"github.com/kailas-cloud/nestidx/internal/repository/keys"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SupportsTextSearch(ctx context.Context) bool
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SupportsTextSearch proxies the capability check from the store.
func (r *Repo) SupportsTextSearch(ctx context.Context) bool {
	return r.store.SupportsTextSearch(ctx)
}

// Search runs a BM25 query across the resolved leaf field names, applying
// filters, sort, and pagination. An empty query matches every document
// satisfying the filters (§6.3's implicit match-all).
func (r *Repo) Search(
	ctx context.Context, collection string,
	query string, fields []string, filters filter.Expression,
	sortBy string, sortDesc bool, offset, limit int,
) ([]result.Hit, int, error) {
	q := &db.TextQuery{
		IndexName: keys.IndexName(collection),
		Query:     query,
		Fields:    fields,
		Filters:   filters,
		SortBy:    sortBy,
		SortDesc:  sortDesc,
		Offset:    offset,
		TopK:      limit,
	}

	sr, err := r.store.SearchBM25(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("search %s: %w", collection, err)
	}
	if sr == nil {
		return nil, 0, nil
	}

	prefix := keys.PostingsPrefix(collection)
	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		docID := strings.TrimPrefix(entry.Key, prefix)
		hits = append(hits, result.New(docID, entry.Score))
	}
	return hits, sr.Total, nil
}
