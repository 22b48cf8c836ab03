package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	"github.com/kailas-cloud/nestidx/internal/usecase/flatten"
)

// PostingsEngine is the subset of usecase/indexer.PostingsEngine that a
// backfill replay needs.
type PostingsEngine interface {
	IndexLeaves(ctx context.Context, collection, docID string, revision int, leaves []flatten.Leaf) error
}

// rowColumns holds the leaf-level column indices for Row, resolved by name
// the way the teacher's resolvePlaceColumns does for its FSQ places schema.
type rowColumns struct {
	collection  int
	docID       int
	revision    int
	path        int
	leafType    int
	value       int
	nestedArray int
}

func resolveRowColumns(schema *parquet.Schema) rowColumns {
	cols := rowColumns{-1, -1, -1, -1, -1, -1, -1}
	for i, p := range schema.Columns() {
		if len(p) == 0 {
			continue
		}
		switch p[0] {
		case "collection":
			cols.collection = i
		case "doc_id":
			cols.docID = i
		case "revision":
			cols.revision = i
		case "path":
			cols.path = i
		case "leaf_type":
			cols.leafType = i
		case "value":
			cols.value = i
		case "nested_array":
			cols.nestedArray = i
		}
	}
	return cols
}

type docKey struct {
	collection string
	docID      string
}

// Import reads a snapshot written by Export and replays every document's
// leaves against engine, rebuilding the postings index without touching the
// document store — for restoring a search index after an FT.CREATE schema
// change or a postings-engine migration.
func Import(ctx context.Context, ra io.ReaderAt, size int64, engine PostingsEngine) (int, error) {
	pf, err := parquet.OpenFile(ra, size)
	if err != nil {
		return 0, fmt.Errorf("open parquet: %w", err)
	}

	cols := resolveRowColumns(pf.Schema())

	byDoc := make(map[docKey][]flatten.Leaf)
	revisions := make(map[docKey]int)
	order := make([]docKey, 0)

	for _, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, cols, byDoc, revisions, &order); err != nil {
			return 0, err
		}
	}

	replayed := 0
	for _, key := range order {
		leaves := byDoc[key]
		if err := engine.IndexLeaves(ctx, key.collection, key.docID, revisions[key], leaves); err != nil {
			return replayed, fmt.Errorf("replay %s/%s: %w", key.collection, key.docID, err)
		}
		replayed++
	}

	return replayed, nil
}

func readRowGroup(
	rg parquet.RowGroup, cols rowColumns,
	byDoc map[docKey][]flatten.Leaf, revisions map[docKey]int, order *[]docKey,
) error {
	rows := parquet.NewRowGroupReader(rg)
	buf := make([]parquet.Row, 1000)

	for {
		n, readErr := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			row := rowFromColumns(buf[i], cols)
			key := docKey{collection: row.Collection, docID: row.DocID}
			if _, seen := byDoc[key]; !seen {
				*order = append(*order, key)
			}
			leafVal, err := value.Decode([]byte(row.Value))
			if err != nil {
				return fmt.Errorf("decode leaf value for %s/%s: %w", row.DocID, row.Path, err)
			}
			byDoc[key] = append(byDoc[key], flatten.Leaf{
				Path:        row.Path,
				Values:      leafVal,
				LeafType:    schema.Type(row.LeafType),
				NestedArray: row.NestedArray,
			})
			revisions[key] = int(row.Revision)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return fmt.Errorf("read rows: %w", readErr)
		}
	}
	return nil
}

func rowFromColumns(row parquet.Row, cols rowColumns) Row {
	var r Row
	for _, v := range row {
		switch v.Column() {
		case cols.collection:
			r.Collection = v.String()
		case cols.docID:
			r.DocID = v.String()
		case cols.revision:
			r.Revision = v.Int64()
		case cols.path:
			r.Path = v.String()
		case cols.leafType:
			r.LeafType = v.String()
		case cols.value:
			r.Value = v.String()
		case cols.nestedArray:
			r.NestedArray = v.Boolean()
		}
	}
	return r
}
