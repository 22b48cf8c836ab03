package indexer

import (
	"context"

	domcol "github.com/kailas-cloud/nestidx/internal/domain/collection"
	domdoc "github.com/kailas-cloud/nestidx/internal/domain/document"
	"github.com/kailas-cloud/nestidx/internal/usecase/flatten"
)

// PostingsEngine is the collaborator that owns the actual search index:
// per-leaf posting lists keyed by dotted path (§6.5). The Indexer Facade
// binds flattened leaves to it; it never sees document trees.
type PostingsEngine interface {
	IndexLeaves(ctx context.Context, collection, docID string, revision int, leaves []flatten.Leaf) error
	RemoveDocument(ctx context.Context, collection, docID string) error
}

// DocumentStore persists the tree-shaped source document, keyed by ID, so
// GET/highlighting/re-flattening can recover the original body.
type DocumentStore interface {
	Put(ctx context.Context, collection string, doc domdoc.Document) error
	Get(ctx context.Context, collection, id string) (domdoc.Document, error)
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection, cursor string, limit int) ([]domdoc.Document, string, error)
	Count(ctx context.Context, collection string) (int, error)
}

// CollectionReader resolves a collection's schema for validation. The
// returned Collection carries a live, mutex-guarded Schema Registry, so
// fields the Flattener synthesizes under a wildcard schema are visible to
// every subsequent caller without a separate write-back step.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domcol.Collection, error)
}
