// Package indexer implements the Indexer Facade (§4.4): the single entry
// point for ingest, binding a Flattener's output to the postings engine and
// the document store under CREATE/UPSERT/UPDATE/EMPLACE semantics.
package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/nestidx/internal/domain"
	domdoc "github.com/kailas-cloud/nestidx/internal/domain/document"
	"github.com/kailas-cloud/nestidx/internal/domain/document/patch"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	"github.com/kailas-cloud/nestidx/internal/usecase/flatten"
)

// Action distinguishes the write semantics of an ingest call.
type Action int

const (
	// Create fails if a document with the same ID already exists.
	Create Action = iota
	// Upsert replaces an existing document or creates a new one.
	Upsert
	// Update fails if no document with the same ID exists, and merges the
	// body into the existing document (unlike Emplace, it never creates).
	Update
	// Emplace merges a partial body into an existing document, or creates
	// one from the partial body if none exists.
	Emplace
)

// Facade is the Indexer Facade, bound to one collection's collaborators.
type Facade struct {
	engine PostingsEngine
	docs   DocumentStore
	colls  CollectionReader
}

// New creates a Facade.
func New(engine PostingsEngine, docs DocumentStore, colls CollectionReader) *Facade {
	return &Facade{engine: engine, docs: docs, colls: colls}
}

// Write ingests a document body under the given Action semantics (§4.4).
// It returns the flattened, stored document and whether a new document was
// created (as opposed to replacing/merging an existing one).
func (f *Facade) Write(ctx context.Context, collectionName, id string, body value.Value, action Action) (domdoc.Document, bool, error) {
	col, err := f.colls.Get(ctx, collectionName)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("get collection: %w", err)
	}

	if id == "" {
		if action != Create && action != Upsert {
			return domdoc.Document{}, false, domain.NewInvalidRequest("document id is required for this action")
		}
		id = uuid.NewString()
	}

	existing, getErr := f.docs.Get(ctx, collectionName, id)
	exists := getErr == nil
	if getErr != nil && !errors.Is(getErr, domain.ErrDocumentNotFound) {
		return domdoc.Document{}, false, fmt.Errorf("get existing document: %w", getErr)
	}

	var target domdoc.Document
	created := false

	switch action {
	case Create:
		if exists {
			return domdoc.Document{}, false, domain.ErrAlreadyExists
		}
		doc, err := domdoc.New(id, body)
		if err != nil {
			return domdoc.Document{}, false, fmt.Errorf("build document: %w", err)
		}
		target, created = doc, true

	case Upsert:
		doc, err := domdoc.New(id, body)
		if err != nil {
			return domdoc.Document{}, false, fmt.Errorf("build document: %w", err)
		}
		if exists {
			doc = doc.WithRevision(existing.Revision() + 1)
		}
		target, created = doc, !exists

	case Update:
		if !exists {
			return domdoc.Document{}, false, domain.ErrDocumentNotFound
		}
		p, err := patch.New(body)
		if err != nil {
			return domdoc.Document{}, false, fmt.Errorf("build patch: %w", err)
		}
		merged := patch.Apply(existing.Root(), p)
		doc, err := domdoc.New(id, merged)
		if err != nil {
			return domdoc.Document{}, false, fmt.Errorf("build merged document: %w", err)
		}
		target = doc.WithRevision(existing.Revision() + 1)

	case Emplace:
		p, err := patch.New(body)
		if err != nil {
			return domdoc.Document{}, false, fmt.Errorf("build patch: %w", err)
		}
		if !exists {
			doc, err := domdoc.New(id, body)
			if err != nil {
				return domdoc.Document{}, false, fmt.Errorf("build document: %w", err)
			}
			target, created = doc, true
		} else {
			merged := patch.Apply(existing.Root(), p)
			doc, err := domdoc.New(id, merged)
			if err != nil {
				return domdoc.Document{}, false, fmt.Errorf("build merged document: %w", err)
			}
			target = doc.WithRevision(existing.Revision() + 1)
		}

	default:
		return domdoc.Document{}, false, fmt.Errorf("unknown ingest action %d", action)
	}

	flattened, synthesized, err := target.Flatten(flatten.New(col.Registry()))
	if err != nil {
		return domdoc.Document{}, false, err
	}
	for _, sf := range synthesized {
		col.Registry().DeclareSynthesized(sf)
	}

	if err := f.docs.Put(ctx, collectionName, flattened); err != nil {
		return domdoc.Document{}, false, fmt.Errorf("store document: %w", err)
	}
	if err := f.engine.IndexLeaves(ctx, collectionName, id, flattened.Revision(), flattened.Leaves()); err != nil {
		return domdoc.Document{}, false, fmt.Errorf("index document: %w", err)
	}

	return flattened, created, nil
}

// Get retrieves a stored document by ID.
func (f *Facade) Get(ctx context.Context, collectionName, id string) (domdoc.Document, error) {
	if _, err := f.colls.Get(ctx, collectionName); err != nil {
		return domdoc.Document{}, fmt.Errorf("get collection: %w", err)
	}
	doc, err := f.docs.Get(ctx, collectionName, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a page of documents.
func (f *Facade) List(ctx context.Context, collectionName, cursor string, limit int) ([]domdoc.Document, string, error) {
	if _, err := f.colls.Get(ctx, collectionName); err != nil {
		return nil, "", fmt.Errorf("get collection: %w", err)
	}
	docs, next, err := f.docs.List(ctx, collectionName, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	return docs, next, nil
}

// Delete removes a document from both the document store and the postings engine.
func (f *Facade) Delete(ctx context.Context, collectionName, id string) error {
	if _, err := f.colls.Get(ctx, collectionName); err != nil {
		return fmt.Errorf("get collection: %w", err)
	}
	if err := f.engine.RemoveDocument(ctx, collectionName, id); err != nil {
		return fmt.Errorf("remove from index: %w", err)
	}
	if err := f.docs.Delete(ctx, collectionName, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Count returns the number of documents in a collection.
func (f *Facade) Count(ctx context.Context, collectionName string) (int, error) {
	if _, err := f.colls.Get(ctx, collectionName); err != nil {
		return 0, fmt.Errorf("get collection: %w", err)
	}
	count, err := f.docs.Count(ctx, collectionName)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}
