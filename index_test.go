package nestidx

import (
	"testing"

	domcol "github.com/kailas-cloud/nestidx/internal/domain/collection"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
)

func TestInfoFromCollection(t *testing.T) {
	title, _ := schema.New("title", schema.String, false)
	views, _ := schema.New("views", schema.Int64, true, schema.Sortable())

	col := domcol.Reconstruct("articles", []schema.Field{title, views}, true, "views", 1000, 1)

	info := infoFromCollection(col, 42)
	if info.Name != "articles" {
		t.Errorf("Name = %q, want articles", info.Name)
	}
	if !info.EnableNestedFields {
		t.Error("expected EnableNestedFields = true")
	}
	if info.DefaultSortingField != "views" {
		t.Errorf("DefaultSortingField = %q, want views", info.DefaultSortingField)
	}
	if info.CreatedAt != 1000 {
		t.Errorf("CreatedAt = %d, want 1000", info.CreatedAt)
	}
	if info.NumDocuments != 42 {
		t.Errorf("NumDocuments = %d, want 42", info.NumDocuments)
	}
	if len(info.Fields) != 2 || info.Fields[0].Name != "title" {
		t.Fatalf("Fields = %+v", info.Fields)
	}
	if !info.Fields[1].Optional {
		t.Error("expected views field to be optional")
	}
}
