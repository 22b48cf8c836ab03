package snapshot

import (
	"context"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	domdoc "github.com/kailas-cloud/nestidx/internal/domain/document"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	"github.com/kailas-cloud/nestidx/internal/usecase/flatten"
)

// DocumentLister pages through every document in a collection.
type DocumentLister interface {
	List(ctx context.Context, collection, cursor string, limit int) ([]domdoc.Document, string, error)
}

const pageSize = 500

// Export writes every document in collectionName as flattened-leaf parquet
// rows, one row per leaf, so the file can rebuild the postings index without
// re-flattening document bodies. registry drives the fallback flatten path
// for documents whose leaf cache wasn't populated at read time.
func Export(ctx context.Context, w io.Writer, collectionName string, registry *schema.Registry, docs DocumentLister) error {
	fl := flatten.New(registry)

	pw := parquet.NewGenericWriter[Row](w, parquet.Compression(&parquet.Zstd))

	cursor := ""
	for {
		batch, next, err := docs.List(ctx, collectionName, cursor, pageSize)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}

		rows := make([]Row, 0, len(batch))
		for _, doc := range batch {
			leaves := doc.Leaves()
			if len(leaves) == 0 {
				res, err := fl.Flatten(doc.Root())
				if err != nil {
					return fmt.Errorf("flatten document %s: %w", doc.ID(), err)
				}
				leaves = res.Leaves
			}
			for _, leaf := range leaves {
				raw, err := value.Encode(leaf.Values)
				if err != nil {
					return fmt.Errorf("encode leaf %s/%s: %w", doc.ID(), leaf.Path, err)
				}
				rows = append(rows, Row{
					Collection:  collectionName,
					DocID:       doc.ID(),
					Revision:    int64(doc.Revision()),
					Path:        leaf.Path,
					LeafType:    string(leaf.LeafType),
					Value:       string(raw),
					NestedArray: leaf.NestedArray,
				})
			}
		}

		if len(rows) > 0 {
			if _, err := pw.Write(rows); err != nil {
				return fmt.Errorf("write parquet rows: %w", err)
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}

	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
