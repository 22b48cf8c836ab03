package nestidx

import (
	"context"
	"fmt"

	domcol "github.com/kailas-cloud/nestidx/internal/domain/collection"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	collectionuc "github.com/kailas-cloud/nestidx/internal/usecase/collection"
	"github.com/kailas-cloud/nestidx/internal/usecase/indexer"
)

// CollectionInfo is the wire-facing summary of a collection.
type CollectionInfo struct {
	Name                string
	Fields              []FieldSpec
	EnableNestedFields  bool
	DefaultSortingField string
	CreatedAt           int64
	NumDocuments        int
}

func infoFromCollection(c domcol.Collection, numDocs int) CollectionInfo {
	fields := c.Fields()
	specs := make([]FieldSpec, 0, len(fields))
	for _, f := range fields {
		specs = append(specs, FieldSpec{Name: f.Name(), Type: f.Type(), Optional: f.Optional()})
	}
	return CollectionInfo{
		Name:                c.Name(),
		Fields:              specs,
		EnableNestedFields:  c.EnableNested(),
		DefaultSortingField: c.DefaultSortField(),
		CreatedAt:           c.CreatedAt(),
		NumDocuments:        numDocs,
	}
}

// CollectionHandle manages collection lifecycle.
type CollectionHandle struct {
	svc *collectionuc.Service
	idx *indexer.Facade
}

// Create declares a new collection with an explicit schema (§4.2).
func (h *CollectionHandle) Create(
	ctx context.Context, name string, fields []FieldSpec, enableNestedFields bool, defaultSortingField string,
) (CollectionInfo, error) {
	built, err := buildFields(fields)
	if err != nil {
		return CollectionInfo{}, err
	}
	col, err := h.svc.Create(ctx, name, built, enableNestedFields, defaultSortingField)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("create collection %q: %w", name, err)
	}
	return infoFromCollection(col, 0), nil
}

// Ensure creates the collection if it does not already exist.
func (h *CollectionHandle) Ensure(
	ctx context.Context, name string, fields []FieldSpec, enableNestedFields bool, defaultSortingField string,
) (CollectionInfo, error) {
	if info, err := h.Get(ctx, name); err == nil {
		return info, nil
	}
	return h.Create(ctx, name, fields, enableNestedFields, defaultSortingField)
}

// Get retrieves a collection by name.
func (h *CollectionHandle) Get(ctx context.Context, name string) (CollectionInfo, error) {
	col, err := h.svc.Get(ctx, name)
	if err != nil {
		return CollectionInfo{}, fmt.Errorf("get collection %q: %w", name, err)
	}
	n, err := h.idx.Count(ctx, name)
	if err != nil {
		n = 0
	}
	return infoFromCollection(col, n), nil
}

// List returns every collection.
func (h *CollectionHandle) List(ctx context.Context) ([]CollectionInfo, error) {
	cols, err := h.svc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make([]CollectionInfo, 0, len(cols))
	for _, c := range cols {
		n, err := h.idx.Count(ctx, c.Name())
		if err != nil {
			n = 0
		}
		out = append(out, infoFromCollection(c, n))
	}
	return out, nil
}

// Delete removes a collection.
func (h *CollectionHandle) Delete(ctx context.Context, name string) error {
	if err := h.svc.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete collection %q: %w", name, err)
	}
	return nil
}

// DocumentHandle is the document CRUD surface for one collection, bound to
// the Indexer Facade's CREATE/UPSERT/UPDATE/EMPLACE semantics (§4.4).
type DocumentHandle struct {
	collection string
	idx        *indexer.Facade
}

// Create ingests a new document, failing if id already exists. An empty id
// asks the facade to synthesize one.
func (h *DocumentHandle) Create(ctx context.Context, id string, body any) (string, error) {
	return h.write(ctx, id, body, indexer.Create)
}

// Upsert creates or replaces a document wholesale.
func (h *DocumentHandle) Upsert(ctx context.Context, id string, body any) (string, error) {
	return h.write(ctx, id, body, indexer.Upsert)
}

// Update merges body's top-level keys into an existing document, failing if
// no document with this id exists. A key mapped to JSON null deletes that
// key from the stored document; keys the body omits are left untouched.
func (h *DocumentHandle) Update(ctx context.Context, id string, body any) (string, error) {
	return h.write(ctx, id, body, indexer.Update)
}

// Emplace merges a partial body into an existing document, or creates one
// from the partial body if none exists.
func (h *DocumentHandle) Emplace(ctx context.Context, id string, body any) (string, error) {
	return h.write(ctx, id, body, indexer.Emplace)
}

func (h *DocumentHandle) write(ctx context.Context, id string, body any, action indexer.Action) (string, error) {
	v, err := toValue(body)
	if err != nil {
		return "", err
	}
	doc, _, err := h.idx.Write(ctx, h.collection, id, v, action)
	if err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return doc.ID(), nil
}

// Get retrieves a document by ID and decodes it into T.
func Get[T any](ctx context.Context, h *DocumentHandle, id string) (T, error) {
	var zero T
	doc, err := h.idx.Get(ctx, h.collection, id)
	if err != nil {
		return zero, fmt.Errorf("get document %q: %w", id, err)
	}
	return fromValue[T](doc.Root())
}

// GetValue retrieves a document by ID as a raw value tree.
func (h *DocumentHandle) GetValue(ctx context.Context, id string) (value.Value, error) {
	doc, err := h.idx.Get(ctx, h.collection, id)
	if err != nil {
		return value.Value{}, fmt.Errorf("get document %q: %w", id, err)
	}
	return doc.Root(), nil
}

// List pages through the collection's documents.
func (h *DocumentHandle) List(ctx context.Context, cursor string, limit int) ([]value.Value, string, error) {
	docs, next, err := h.idx.List(ctx, h.collection, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	out := make([]value.Value, len(docs))
	for i, d := range docs {
		out[i] = d.Root()
	}
	return out, next, nil
}

// Delete removes a document.
func (h *DocumentHandle) Delete(ctx context.Context, id string) error {
	if err := h.idx.Delete(ctx, h.collection, id); err != nil {
		return fmt.Errorf("delete document %q: %w", id, err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (h *DocumentHandle) Count(ctx context.Context) (int, error) {
	n, err := h.idx.Count(ctx, h.collection)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// TypedIndex is a generic convenience wrapper over CollectionHandle,
// DocumentHandle, and SearchHandle for one collection and one Go type T,
// so callers work with T directly instead of value.Value trees.
type TypedIndex[T any] struct {
	name   string
	client *Client
}

// NewIndex creates a typed index handle for the given collection name.
// The collection must already exist; use Ensure to declare it first.
func NewIndex[T any](client *Client, name string) *TypedIndex[T] {
	return &TypedIndex[T]{name: name, client: client}
}

// Ensure creates the collection if it does not exist.
func (idx *TypedIndex[T]) Ensure(
	ctx context.Context, fields []FieldSpec, enableNestedFields bool, defaultSortingField string,
) error {
	_, err := idx.client.Collections().Ensure(ctx, idx.name, fields, enableNestedFields, defaultSortingField)
	if err != nil {
		return fmt.Errorf("ensure %q: %w", idx.name, err)
	}
	return nil
}

// Upsert creates or replaces a typed item.
func (idx *TypedIndex[T]) Upsert(ctx context.Context, id string, item T) (string, error) {
	return idx.client.Documents(idx.name).Upsert(ctx, id, item)
}

// Get retrieves a typed item by ID.
func (idx *TypedIndex[T]) Get(ctx context.Context, id string) (T, error) {
	return Get[T](ctx, idx.client.Documents(idx.name), id)
}

// Delete removes an item by ID.
func (idx *TypedIndex[T]) Delete(ctx context.Context, id string) error {
	return idx.client.Documents(idx.name).Delete(ctx, id)
}

// Count returns the number of items in the collection.
func (idx *TypedIndex[T]) Count(ctx context.Context) (int, error) {
	return idx.client.Documents(idx.name).Count(ctx)
}

// Search returns a fluent search builder for this index.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{handle: idx.client.Search(idx.name)}
}
