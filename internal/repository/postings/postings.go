// Package postings implements the PostingsEngine port (§4.4/§6.5): one Redis
// hash per document, field names equal to each leaf's dotted path, feeding
// the FT index the collection repository creates over the same key prefix
// (internal/repository/keys.PostingsPrefix).
package postings

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/nestidx/internal/domain/value"
	"github.com/kailas-cloud/nestidx/internal/repository/keys"
	"github.com/kailas-cloud/nestidx/internal/usecase/flatten"
)

// revisionField stores the document revision alongside its leaves so a
// caller can detect a stale write without a separate round trip.
const revisionField = "_rev"

// store is the consumer interface for postings (ISP): the hash operations
// needed to replace one document's leaf set.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/indexer.PostingsEngine.
type Repo struct {
	store store
}

// New creates a postings repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// IndexLeaves replaces a document's postings hash wholesale: the previous
// hash is deleted before the new leaf set is written, so a leaf that
// disappeared between revisions (a field removed by UPDATE, or narrowed by
// EMPLACE) does not linger as a stale posting.
func (r *Repo) IndexLeaves(ctx context.Context, collection, docID string, revision int, leaves []flatten.Leaf) error {
	key := keys.Postings(collection, docID)

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del postings %s: %w", key, err)
	}
	if len(leaves) == 0 {
		return nil
	}

	fields := make(map[string]string, len(leaves)+1)
	for _, l := range leaves {
		fields[l.Path] = renderLeaf(l.Values)
	}
	fields[revisionField] = strconv.Itoa(revision)

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("hset postings %s: %w", key, err)
	}
	return nil
}

// RemoveDocument drops a document's entire postings hash.
func (r *Repo) RemoveDocument(ctx context.Context, collection, docID string) error {
	key := keys.Postings(collection, docID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del postings %s: %w", key, err)
	}
	return nil
}

// renderLeaf converts a leaf value to the string a TAG/TEXT/NUMERIC hash
// field expects. Multi-valued leaves (array-of-object aggregation, or a
// declared array type) join elements with a comma, matching the default TAG
// separator so untagged array fields still filter correctly.
func renderLeaf(v value.Value) string {
	if arr, ok := v.AsArray(); ok {
		parts := make([]string, len(arr))
		for i, e := range arr {
			parts[i] = e.String()
		}
		return strings.Join(parts, ",")
	}
	return v.String()
}
