// Package snapshot implements bulk export/import of a collection's postings
// as parquet — offline reindexing/backfill without re-flattening every
// document body, grounded on the teacher's parquet row-group reader
// (examples/fsqr/loader/reader.go).
package snapshot

// Row is one flattened leaf, augmented with the document and collection it
// belongs to so a snapshot file can be replayed against the postings engine
// without touching the document store.
type Row struct {
	Collection  string `parquet:"collection"`
	DocID       string `parquet:"doc_id"`
	Revision    int64  `parquet:"revision"`
	Path        string `parquet:"path"`
	LeafType    string `parquet:"leaf_type"`
	Value       string `parquet:"value"`
	NestedArray bool   `parquet:"nested_array"`
}
