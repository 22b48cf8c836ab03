// Package collection persists the collection aggregate (name, schema
// declarations, enable_nested_fields) behind the Indexer Facade's
// CollectionReader port, and manages the matching FT search index.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/nestidx/internal/db"
	"github.com/kailas-cloud/nestidx/internal/domain"
	domcol "github.com/kailas-cloud/nestidx/internal/domain/collection"
	"github.com/kailas-cloud/nestidx/internal/repository/keys"
)

// store is the consumer interface for collections (ISP): a metadata hash
// plus FT index lifecycle management.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/indexer.CollectionReader plus the collection CRUD
// surface the transport layer needs.
type Repo struct {
	store store
}

// New creates a collection repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a collection: HSET metadata then FT.CREATE the search index.
// On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, col domcol.Collection) error {
	name := col.Name()
	key := keys.CollectionMeta(name)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	hashData, err := collectionToHash(col)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, key, hashData); err != nil {
		return fmt.Errorf("hset collection %s: %w", name, err)
	}

	indexDef := buildIndex(name, col.Fields())
	if len(indexDef.Fields) == 0 {
		// A wildcard-only schema has no concrete leaf yet, so no FT index is
		// created; fields the Flattener synthesizes later are not added to
		// any FT index.
		return nil
	}
	if err := r.store.CreateIndex(ctx, indexDef); err != nil {
		cleanupErr := r.store.Del(ctx, key)
		return errors.Join(fmt.Errorf("create index: %w", err), cleanupErr)
	}
	return nil
}

// Get retrieves a collection by name, satisfying usecase/indexer.CollectionReader.
func (r *Repo) Get(ctx context.Context, name string) (domcol.Collection, error) {
	m, err := r.store.HGetAll(ctx, keys.CollectionMeta(name))
	if err != nil {
		return domcol.Collection{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domcol.Collection{}, domain.ErrNotFound
	}
	return collectionFromHash(m)
}

// List returns all collections sorted by creation time.
func (r *Repo) List(ctx context.Context) ([]domcol.Collection, error) {
	metaKeys, err := r.store.Scan(ctx, keys.CollectionScanPattern())
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}
	if len(metaKeys) == 0 {
		return []domcol.Collection{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, metaKeys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi collections: %w", err)
	}

	collections := make([]domcol.Collection, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		col, err := collectionFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse collection %s: %w", metaKeys[i], err)
		}
		collections = append(collections, col)
	}

	sort.Slice(collections, func(i, j int) bool {
		return collections[i].CreatedAt() < collections[j].CreatedAt()
	})
	return collections, nil
}

// Delete removes a collection: DEL metadata, FT.DROPINDEX if one exists.
func (r *Repo) Delete(ctx context.Context, name string) error {
	key := keys.CollectionMeta(name)

	metaBackup, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(metaBackup) == 0 {
		return domain.ErrNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del collection %s: %w", name, err)
	}

	idxName := keys.IndexName(name)
	idxExists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		cleanupErr := r.store.HSet(ctx, key, metaBackup)
		return errors.Join(fmt.Errorf("check index exists: %w", err), cleanupErr)
	}
	if !idxExists {
		return nil
	}
	if err := r.store.DropIndex(ctx, idxName); err != nil {
		cleanupErr := r.store.HSet(ctx, key, metaBackup)
		return errors.Join(err, cleanupErr)
	}
	return nil
}
