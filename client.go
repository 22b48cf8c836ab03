// Package nestidx is the embeddable public API: an in-process client wired
// directly to the collection, indexer, and search use cases, for callers
// that want the nested-field indexing core without running the HTTP server.
package nestidx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/nestidx/internal/db"
	dbRedis "github.com/kailas-cloud/nestidx/internal/db/redis"
	dbValkey "github.com/kailas-cloud/nestidx/internal/db/valkey"
	collectionrepo "github.com/kailas-cloud/nestidx/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/nestidx/internal/repository/document"
	postingsrepo "github.com/kailas-cloud/nestidx/internal/repository/postings"
	searchrepo "github.com/kailas-cloud/nestidx/internal/repository/search"
	collectionuc "github.com/kailas-cloud/nestidx/internal/usecase/collection"
	healthuc "github.com/kailas-cloud/nestidx/internal/usecase/health"
	"github.com/kailas-cloud/nestidx/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/nestidx/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the nestidx SDK entry point.
type Client struct {
	store     db.Store
	collSvc   *collectionuc.Service
	idx       *indexer.Facade
	searchSvc *searchuc.Service
	healthSvc *healthuc.Service
}

// clientConfig accumulates Option settings before New dials the backend.
type clientConfig struct {
	driver           string
	addrs            []string
	username         string
	password         string
	readinessTimeout time.Duration
}

// Option configures a Client at construction time.
type Option func(*clientConfig)

// WithValkey selects the Valkey backend (see internal/db/valkey: no native
// FT.SEARCH scoring, listing falls back to SCAN).
func WithValkey(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = addrs
		c.password = password
	}
}

// WithRedis selects the Redis (RediSearch) backend.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = addrs
		c.password = password
	}
}

// WithReadinessTimeout overrides how long New waits for the backend to
// answer PING before giving up.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.readinessTimeout = d }
}

// New creates a nestidx Client and connects to the configured backend.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("nestidx: database address required (use WithValkey or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("nestidx: database not ready: %w", err)
	}

	return wireClient(store), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey":
		s, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("nestidx: create valkey store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("nestidx: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("nestidx: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store) *Client {
	collRepo := collectionrepo.New(store)
	docRepo := documentrepo.New(store)
	postingsRepo := postingsrepo.New(store)
	searchRepo := searchrepo.New(store)

	return &Client{
		store:     store,
		collSvc:   collectionuc.New(collRepo),
		idx:       indexer.New(postingsRepo, docRepo, collRepo),
		searchSvc: searchuc.New(searchRepo, collRepo, docRepo),
		healthSvc: healthuc.New(store),
	}
}

// Close releases the underlying database connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("nestidx: ping: %w", err)
	}
	return nil
}

// Healthy reports whether the backend is reachable, mirroring the HTTP
// server's /health check.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.healthSvc.Check(ctx).Status == healthuc.Healthy
}

// Collections returns the collection management handle.
func (c *Client) Collections() *CollectionHandle {
	return &CollectionHandle{svc: c.collSvc, idx: c.idx}
}

// Documents returns the document handle for a given collection.
func (c *Client) Documents(collection string) *DocumentHandle {
	return &DocumentHandle{collection: collection, idx: c.idx}
}

// Search returns the search handle for a given collection.
func (c *Client) Search(collection string) *SearchHandle {
	return &SearchHandle{collection: collection, svc: c.searchSvc}
}
