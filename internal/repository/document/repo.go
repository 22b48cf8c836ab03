// Package document persists the tree-shaped Augmented Document aggregate
// (root body plus flattened leaves) behind the Indexer Facade's DocumentStore
// port, via RedisJSON on top of the shared db.Store.
package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/nestidx/internal/db"
	"github.com/kailas-cloud/nestidx/internal/domain"
	domdoc "github.com/kailas-cloud/nestidx/internal/domain/document"
	"github.com/kailas-cloud/nestidx/internal/repository/keys"
)

// store is the consumer interface for documents (ISP): JSON.SET/JSON.GET for
// the envelope, SCAN for cursor-paginated listing.
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/indexer.DocumentStore.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put stores a document, creating or overwriting the envelope at its key.
func (r *Repo) Put(ctx context.Context, collection string, doc domdoc.Document) error {
	key := keys.Doc(collection, doc.ID())
	data, err := encodeDoc(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get retrieves a document by ID.
func (r *Repo) Get(ctx context.Context, collection, id string) (domdoc.Document, error) {
	key := keys.Doc(collection, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return decodeDoc(id, raw)
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, collection, id string) error {
	key := keys.Doc(collection, id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// List returns a page of documents ordered by ID, with cursor as a numeric
// offset into the sorted key set (SCAN + a stable sort rather than relying on
// server-side cursors).
func (r *Repo) List(ctx context.Context, collection, cursor string, limit int) ([]domdoc.Document, string, error) {
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidRequest)
		}
		offset = parsed
	}

	docKeys, err := r.store.Scan(ctx, keys.DocPrefix(collection)+"*")
	if err != nil {
		return nil, "", fmt.Errorf("scan documents: %w", err)
	}
	sort.Strings(docKeys)

	if offset >= len(docKeys) {
		return nil, "", nil
	}
	end := offset + limit
	if end > len(docKeys) {
		end = len(docKeys)
	}
	page := docKeys[offset:end]

	docs := make([]domdoc.Document, 0, len(page))
	for _, key := range page {
		id := extractDocID(key, collection)
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			return nil, "", fmt.Errorf("json.get %s: %w", key, err)
		}
		doc, err := decodeDoc(id, raw)
		if err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", key, err)
		}
		docs = append(docs, doc)
	}

	var next string
	if end < len(docKeys) {
		next = strconv.Itoa(end)
	}
	return docs, next, nil
}

// Count returns the number of documents in a collection.
func (r *Repo) Count(ctx context.Context, collection string) (int, error) {
	docKeys, err := r.store.Scan(ctx, keys.DocPrefix(collection)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}
	return len(docKeys), nil
}

func extractDocID(key, collection string) string {
	prefix := keys.DocPrefix(collection)
	if len(key) > len(prefix) {
		return key[len(prefix):]
	}
	return key
}
