package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/nestidx/internal/domain"
	domcol "github.com/kailas-cloud/nestidx/internal/domain/collection"
	domdoc "github.com/kailas-cloud/nestidx/internal/domain/document"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/search/filter"
	"github.com/kailas-cloud/nestidx/internal/domain/search/request"
	"github.com/kailas-cloud/nestidx/internal/domain/search/result"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
)

// --- Mocks ---

type mockRepo struct {
	hits         []result.Hit
	total        int
	err          error
	textSearchOK bool
	lastFields   []string
	lastSortBy   string
}

func (m *mockRepo) Search(
	_ context.Context, _, _ string, fields []string,
	_ filter.Expression, sortBy string, _ bool, _, _ int,
) ([]result.Hit, int, error) {
	m.lastFields = fields
	m.lastSortBy = sortBy
	return m.hits, m.total, m.err
}

func (m *mockRepo) SupportsTextSearch(_ context.Context) bool { return m.textSearchOK }

type mockColls struct {
	col domcol.Collection
	err error
}

func (m *mockColls) Get(_ context.Context, _ string) (domcol.Collection, error) {
	return m.col, m.err
}

func collectionWithFields(t *testing.T) domcol.Collection {
	t.Helper()
	title, err := schema.New("title", schema.String, false, schema.Indexed(true))
	if err != nil {
		t.Fatalf("title field: %v", err)
	}
	category, err := schema.New("category", schema.String, false, schema.Facet(), schema.Indexed(false))
	if err != nil {
		t.Fatalf("category field: %v", err)
	}
	priority, err := schema.New("priority", schema.Int32, false, schema.Sortable())
	if err != nil {
		t.Fatalf("priority field: %v", err)
	}
	col, err := domcol.New("notes", []schema.Field{title, category, priority}, false, "")
	if err != nil {
		t.Fatalf("collection: %v", err)
	}
	return col
}

type mockDocs struct {
	docs map[string]domdoc.Document
	err  error
}

func (m *mockDocs) Get(_ context.Context, _, id string) (domdoc.Document, error) {
	if m.err != nil {
		return domdoc.Document{}, m.err
	}
	d, ok := m.docs[id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

func mustDoc(t *testing.T, id, body string) domdoc.Document {
	t.Helper()
	v, err := value.Decode([]byte(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	d, err := domdoc.New(id, v)
	if err != nil {
		t.Fatalf("doc: %v", err)
	}
	return d
}

func mustRequest(t *testing.T, query string, queryBy []string) *request.Request {
	t.Helper()
	r, err := request.New(query, queryBy, filter.Expression{}, "", false, 0, 10, nil, nil, nil, nil, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

// --- Tests ---

func TestSearch_HappyPath(t *testing.T) {
	repo := &mockRepo{
		hits:         []result.Hit{result.New("doc-1", 1.5)},
		total:        1,
		textSearchOK: true,
	}
	docs := &mockDocs{docs: map[string]domdoc.Document{
		"doc-1": mustDoc(t, "doc-1", `{"title":"drive to the lake","category":"trip"}`),
	}}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, docs)

	req := mustRequest(t, "drive", []string{"title"})
	resp, err := svc.Search(context.Background(), "notes", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Found != 1 || len(resp.Hits) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Hits[0].ID != "doc-1" {
		t.Errorf("expected doc-1, got %s", resp.Hits[0].ID)
	}
	if repo.lastFields[0] != "title" {
		t.Errorf("expected resolved search field 'title', got %+v", repo.lastFields)
	}
	if len(resp.Hits[0].Meta) == 0 {
		t.Error("expected a matched token for 'drive'")
	}
}

func TestSearch_UnknownQueryByField(t *testing.T) {
	repo := &mockRepo{textSearchOK: true}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, &mockDocs{})

	req := mustRequest(t, "drive", []string{"nonexistent"})
	_, err := svc.Search(context.Background(), "notes", req)
	if !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestSearch_UnindexedQueryByField(t *testing.T) {
	repo := &mockRepo{textSearchOK: true}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, &mockDocs{})

	req := mustRequest(t, "trip", []string{"category"})
	_, err := svc.Search(context.Background(), "notes", req)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSearch_UnsortableSortField(t *testing.T) {
	repo := &mockRepo{textSearchOK: true}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, &mockDocs{})

	r, err := request.New("", nil, filter.Expression{}, "category", false, 0, 10, nil, nil, nil, nil, 0)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	_, err = svc.Search(context.Background(), "notes", &r)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSearch_KeywordUnsupportedByBackend(t *testing.T) {
	repo := &mockRepo{textSearchOK: false}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, &mockDocs{})

	req := mustRequest(t, "drive", nil)
	_, err := svc.Search(context.Background(), "notes", req)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSearch_EmptyQueryMatchAllAllowedOnUnsupportedBackend(t *testing.T) {
	repo := &mockRepo{
		hits:         []result.Hit{result.New("doc-1", 0)},
		total:        1,
		textSearchOK: false,
	}
	docs := &mockDocs{docs: map[string]domdoc.Document{
		"doc-1": mustDoc(t, "doc-1", `{"title":"a","category":"trip"}`),
	}}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, docs)

	req := mustRequest(t, "", nil)
	resp, err := svc.Search(context.Background(), "notes", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Found != 1 {
		t.Fatalf("expected 1 hit, got %d", resp.Found)
	}
}

func TestSearch_CollectionNotFound(t *testing.T) {
	repo := &mockRepo{textSearchOK: true}
	svc := New(repo, &mockColls{err: domain.ErrNotFound}, &mockDocs{})

	req := mustRequest(t, "drive", nil)
	_, err := svc.Search(context.Background(), "missing", req)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch_StaleDocumentSkipped(t *testing.T) {
	repo := &mockRepo{
		hits:         []result.Hit{result.New("gone", 1), result.New("doc-1", 1)},
		total:        2,
		textSearchOK: true,
	}
	docs := &mockDocs{docs: map[string]domdoc.Document{
		"doc-1": mustDoc(t, "doc-1", `{"title":"drive","category":"trip"}`),
	}}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, docs)

	req := mustRequest(t, "drive", []string{"title"})
	resp, err := svc.Search(context.Background(), "notes", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("expected stale posting skipped, got %d hits", len(resp.Hits))
	}
}

func TestSearch_ProjectionAppliedToDocument(t *testing.T) {
	repo := &mockRepo{
		hits:         []result.Hit{result.New("doc-1", 1)},
		total:        1,
		textSearchOK: true,
	}
	docs := &mockDocs{docs: map[string]domdoc.Document{
		"doc-1": mustDoc(t, "doc-1", `{"title":"drive","category":"trip"}`),
	}}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, docs)

	r, err := request.New(
		"drive", []string{"title"}, filter.Expression{}, "", false, 0, 10,
		[]string{"title"}, nil, nil, nil, 0,
	)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	resp, err := svc.Search(context.Background(), "notes", &r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := resp.Hits[0].Document.AsObject()
	if !ok {
		t.Fatal("expected pruned document to be an object")
	}
	if obj.Has("category") {
		t.Error("expected category excluded by projection")
	}
	if !obj.Has("title") {
		t.Error("expected title kept by projection")
	}
}

func TestSearch_UnknownHighlightFieldYieldsNoError(t *testing.T) {
	repo := &mockRepo{
		hits:         []result.Hit{result.New("doc-1", 1)},
		total:        1,
		textSearchOK: true,
	}
	docs := &mockDocs{docs: map[string]domdoc.Document{
		"doc-1": mustDoc(t, "doc-1", `{"title":"drive","category":"trip"}`),
	}}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, docs)

	r, err := request.New(
		"drive", []string{"title"}, filter.Expression{}, "", false, 0, 10,
		nil, nil, []string{"nonexistent"}, nil, 0,
	)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	resp, err := svc.Search(context.Background(), "notes", &r)
	if err != nil {
		t.Fatalf("expected an unknown highlight field to be tolerated, got error: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("expected 1 hit, got %+v", resp)
	}
}

func TestSearch_DefaultHighlightScopesToSearchedFields(t *testing.T) {
	repo := &mockRepo{
		hits:         []result.Hit{result.New("doc-1", 1)},
		total:        1,
		textSearchOK: true,
	}
	docs := &mockDocs{docs: map[string]domdoc.Document{
		"doc-1": mustDoc(t, "doc-1", `{"title":"drive to the lake","category":"trip"}`),
	}}
	svc := New(repo, &mockColls{col: collectionWithFields(t)}, docs)

	req := mustRequest(t, "drive", []string{"title"})
	resp, err := svc.Search(context.Background(), "notes", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fullObj, ok := resp.Hits[0].Full.AsObject()
	if !ok {
		t.Fatal("expected full mirror to be an object")
	}
	if !fullObj.Has("title") {
		t.Error("expected title present in the default highlight scope")
	}
	if fullObj.Has("category") {
		t.Error("expected category absent from the default highlight scope, since it wasn't searched")
	}
}

func TestExtractMirrorField_SnippetAndFull(t *testing.T) {
	leaf := value.NewObject()
	leaf.Set("snippet", value.Str("short"))
	leaf.Set("value", value.Str("the full value"))
	leaf.Set("matched_tokens", value.Arr(nil))

	root := value.NewObject()
	root.Set("title", value.Obj(leaf))
	mirror := value.Obj(root)

	snippet := extractMirrorField(mirror, "snippet")
	full := extractMirrorField(mirror, "value")

	sObj, _ := snippet.AsObject()
	sTitle, _ := sObj.Get("title")
	if s, _ := sTitle.AsString(); s != "short" {
		t.Errorf("expected snippet 'short', got %q", s)
	}

	fObj, _ := full.AsObject()
	fTitle, _ := fObj.Get("title")
	if s, _ := fTitle.AsString(); s != "the full value" {
		t.Errorf("expected full 'the full value', got %q", s)
	}
}
