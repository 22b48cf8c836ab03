package collection

import (
	"github.com/kailas-cloud/nestidx/internal/db"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/repository/keys"
)

// buildIndex creates an FT index definition from a collection's leaf field
// declarations, translating each schema.Type into the closest FT field type:
// facetable fields become TAG (exact-value aggregation), indexed strings
// become TEXT (BM25 keyword search), bool/bool[] become TAG, and the
// remaining numeric types become NUMERIC.
// Object/object[]/wildcard entries name a subtree rather than a leaf and are
// skipped — their concrete leaves get their own Field entries once the
// Flattener resolves them, and are added to the schema at that point.
func buildIndex(name string, fields []schema.Field) *db.IndexDefinition {
	def := &db.IndexDefinition{
		Name:        keys.IndexName(name),
		StorageType: db.StorageHash,
		Prefixes:    []string{keys.PostingsPrefix(name)},
		Fields:      make([]db.IndexField, 0, len(fields)),
	}

	for _, f := range fields {
		if f.IsWildcard() || f.Type().IsObjectLike() || !f.Index() {
			continue
		}
		def.Fields = append(def.Fields, indexFieldFor(f))
	}

	return def
}

func indexFieldFor(f schema.Field) db.IndexField {
	if f.Facet() {
		return db.IndexField{Name: f.Name(), Type: db.IndexFieldTag, Sortable: f.Sort()}
	}

	switch f.Type() {
	case schema.String, schema.StringArray, schema.Auto:
		return db.IndexField{Name: f.Name(), Type: db.IndexFieldText}
	case schema.Bool, schema.BoolArray:
		return db.IndexField{Name: f.Name(), Type: db.IndexFieldTag, Sortable: f.Sort()}
	default:
		return db.IndexField{Name: f.Name(), Type: db.IndexFieldNumeric, Sortable: f.Sort()}
	}
}
