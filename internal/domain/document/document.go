// Package document implements the Augmented Document aggregate (§3.2):
// the tree-shaped source document plus the `.flat` manifest and leaf
// bindings produced by the Flattener.
package document

import (
	"fmt"
	"regexp"

	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	"github.com/kailas-cloud/nestidx/internal/usecase/flatten"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxDocumentSize bounds a raw document body, mirroring the collaborator's
// own ingest size cap.
const MaxDocumentSize = 16 << 20 // 16MiB

// Document is the ingest-time aggregate: an id, the original tree-shaped
// body, and (once flattened) the leaf list an Indexer Facade posts to the
// postings engine.
type Document struct {
	id       string
	root     value.Value
	leaves   []flatten.Leaf
	revision int
}

// New validates and creates a Document from a decoded JSON body. An empty
// id is rejected; the caller fills it in or generates one before calling
// New (CREATE semantics, §4.4).
func New(id string, root value.Value) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if root.Kind() != value.KindObject {
		return Document{}, fmt.Errorf("document body must be a JSON object")
	}
	return Document{id: id, root: root, revision: 1}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id string, root value.Value, leaves []flatten.Leaf, revision int) Document {
	return Document{id: id, root: root, leaves: leaves, revision: revision}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.id }

// Root returns the original tree-shaped body.
func (d Document) Root() value.Value { return d.root }

// Leaves returns the flattened leaf bindings produced against a schema.
func (d Document) Leaves() []flatten.Leaf { return d.leaves }

// Revision returns the document's optimistic-concurrency version.
func (d Document) Revision() int { return d.revision }

// Flatten runs fl against the document's body and returns a copy carrying
// the resulting leaves, along with any newly synthesized fields the caller
// should register on the schema before indexing.
func (d Document) Flatten(fl *flatten.Flattener) (Document, []schema.Field, error) {
	res, err := fl.Flatten(d.root)
	if err != nil {
		return Document{}, nil, err
	}
	return Document{id: d.id, root: d.root, leaves: res.Leaves, revision: d.revision}, res.Synthesized, nil
}

// WithRevision returns a copy bumped to a new revision (UPSERT/UPDATE, §4.4).
func (d Document) WithRevision(rev int) Document {
	return Document{id: d.id, root: d.root, leaves: d.leaves, revision: rev}
}

// LeafByPath finds a flattened leaf by its dotted path.
func (d Document) LeafByPath(path string) (flatten.Leaf, bool) {
	for _, l := range d.leaves {
		if l.Path == path {
			return l, true
		}
	}
	return flatten.Leaf{}, false
}
