package collection

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/nestidx/internal/db"
	"github.com/kailas-cloud/nestidx/internal/domain"
)

// --- Create ---

func TestCreate_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	col := testCollection(t)

	var hsetFields map[string]string
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "nestidx:collection:test-collection" {
			t.Errorf("unexpected key: %s", key)
		}
		hsetFields = fields
		return nil
	}
	var createdDef *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		if def.Name != "nestidx:test-collection:idx" {
			t.Errorf("unexpected index name: %s", def.Name)
		}
		createdDef = def
		return nil
	}

	err := repo.Create(ctx, col)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(hsetFields["fields_json"], `"name":"language"`) {
		t.Fatalf("fields_json missing language field: %s", hsetFields["fields_json"])
	}
	if !strings.Contains(hsetFields["fields_json"], `"name":"language","type":"string","optional":false,"facet":true`) {
		t.Fatalf("fields_json missing string type and facet flag for facet field: %s", hsetFields["fields_json"])
	}
	if createdDef == nil {
		t.Fatal("expected CreateIndex to be called")
	}
	if len(createdDef.Prefixes) != 1 || createdDef.Prefixes[0] != "nestidx:postings:test-collection:" {
		t.Fatalf("unexpected prefixes: %v", createdDef.Prefixes)
	}
	if len(createdDef.Fields) != 2 {
		t.Fatalf("expected 2 indexable fields, got %d", len(createdDef.Fields))
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	col := testCollection(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	err := repo.Create(ctx, col)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_HSetError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	col := testCollection(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error {
		return errors.New("connection lost")
	}

	err := repo.Create(ctx, col)
	if err == nil {
		t.Fatal("expected error on HSET failure")
	}
}

func TestCreate_FTCreateError_RollbackOK(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	col := testCollection(t)

	var delCalled bool
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error { return nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return errors.New("index limit reached")
	}
	ms.delFn = func(_ context.Context, key string) error {
		delCalled = true
		if key != "nestidx:collection:test-collection" {
			t.Errorf("unexpected DEL key: %s", key)
		}
		return nil
	}

	err := repo.Create(ctx, col)
	if err == nil {
		t.Fatal("expected error on FT.CREATE failure")
	}
	if !delCalled {
		t.Error("expected DEL to be called for rollback")
	}
}

func TestCreate_WildcardOnlySkipsIndexCreation(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	col := testWildcardCollection(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
	ms.hsetFn = func(_ context.Context, _ string, _ map[string]string) error { return nil }
	createIndexCalled := false
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		createIndexCalled = true
		return nil
	}

	err := repo.Create(ctx, col)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createIndexCalled {
		t.Fatal("expected CreateIndex to be skipped for a wildcard-only schema")
	}
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	col := testCollection(t)
	hashData, err := collectionToHash(col)
	if err != nil {
		t.Fatalf("collectionToHash: %v", err)
	}

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "nestidx:collection:test-collection" {
			t.Errorf("unexpected key: %s", key)
		}
		return hashData, nil
	}

	got, err := repo.Get(ctx, "test-collection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name() != "test-collection" {
		t.Fatalf("expected name test-collection, got %s", got.Name())
	}
	if len(got.Fields()) != 2 {
		t.Fatalf("unexpected fields: %+v", got.Fields())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(ctx, "nonexistent")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- List ---

func TestList_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "nestidx:collection:*" {
			t.Errorf("unexpected scan pattern: %s", pattern)
		}
		return []string{"nestidx:collection:alpha", "nestidx:collection:beta"}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		return []map[string]string{
			{
				"name": "alpha", "fields_json": "[]", "enable_nested": "0",
				"default_sort_field": "", "created_at": "1700000000002", "revision": "1",
			},
			{
				"name": "beta", "fields_json": "[]", "enable_nested": "0",
				"default_sort_field": "", "created_at": "1700000000001", "revision": "1",
			},
		}, nil
	}

	cols, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(cols))
	}
	if cols[0].Name() != "beta" {
		t.Fatalf("expected first collection to be beta (earlier), got %s", cols[0].Name())
	}
	if cols[1].Name() != "alpha" {
		t.Fatalf("expected second collection to be alpha (later), got %s", cols[1].Name())
	}
}

func TestList_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		return nil, nil
	}

	cols, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cols) != 0 {
		t.Fatalf("expected empty list, got %d", len(cols))
	}
}

// --- Delete ---

func TestDelete_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	col := testCollection(t)
	hashData, err := collectionToHash(col)
	if err != nil {
		t.Fatalf("collectionToHash: %v", err)
	}

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return hashData, nil
	}
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	var deletedKey, droppedIdx string
	ms.delFn = func(_ context.Context, key string) error { deletedKey = key; return nil }
	ms.dropIndexFn = func(_ context.Context, name string) error { droppedIdx = name; return nil }

	err = repo.Delete(ctx, "test-collection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deletedKey != "nestidx:collection:test-collection" {
		t.Fatalf("unexpected deleted key: %s", deletedKey)
	}
	if droppedIdx != "nestidx:test-collection:idx" {
		t.Fatalf("unexpected dropped index: %s", droppedIdx)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	err := repo.Delete(ctx, "nonexistent")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_NoIndexSkipsDropIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	col := testCollection(t)
	hashData, err := collectionToHash(col)
	if err != nil {
		t.Fatalf("collectionToHash: %v", err)
	}

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return hashData, nil
	}
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }

	dropCalled := false
	ms.dropIndexFn = func(_ context.Context, _ string) error { dropCalled = true; return nil }

	err = repo.Delete(ctx, "test-collection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropCalled {
		t.Fatal("expected DropIndex to be skipped when no index exists")
	}
}
