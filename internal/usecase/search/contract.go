package search

import (
	"context"

	domcol "github.com/kailas-cloud/nestidx/internal/domain/collection"
	domdoc "github.com/kailas-cloud/nestidx/internal/domain/document"
	"github.com/kailas-cloud/nestidx/internal/domain/search/filter"
	"github.com/kailas-cloud/nestidx/internal/domain/search/result"
)

// Repository runs the field-scoped BM25 query against the postings engine.
type Repository interface {
	Search(
		ctx context.Context, collection, query string, fields []string,
		filters filter.Expression, sortBy string, sortDesc bool, offset, limit int,
	) ([]result.Hit, int, error)

	SupportsTextSearch(ctx context.Context) bool
}

// CollectionReader resolves a collection and its Schema Registry.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}

// DocumentGetter fetches a stored document body by ID, hydrating a hit
// before it is projected and highlighted.
type DocumentGetter interface {
	Get(ctx context.Context, collectionName, id string) (domdoc.Document, error)
}
