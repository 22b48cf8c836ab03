package collection

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/nestidx/internal/domain/collection"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
)

// fieldRow is the JSON-serializable representation of a schema.Field for HSET.
type fieldRow struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Optional    bool   `json:"optional"`
	Facet       bool   `json:"facet"`
	Index       bool   `json:"index"`
	Sort        bool   `json:"sort"`
	Nested      bool   `json:"nested"`
	NestedArray bool   `json:"nested_array"`
}

// collectionToHash converts a domain Collection to a map for HSET. The
// wildcard entry (if any) is serialized alongside the concrete fields so
// HasWildcard survives a repository round trip; fields synthesized by the
// Flattener under that wildcard are not persisted here — they live only in
// the in-memory Registry for the process lifetime (see DESIGN.md).
func collectionToHash(col collection.Collection) (map[string]string, error) {
	fields := col.Fields()
	if wc, ok := col.Registry().WildcardField(); ok {
		fields = append(fields, wc)
	}

	rows := make([]fieldRow, len(fields))
	for i, f := range fields {
		rows[i] = fieldRow{
			Name: f.Name(), Type: string(f.Type()), Optional: f.Optional(),
			Facet: f.Facet(), Index: f.Index(), Sort: f.Sort(),
			Nested: f.Nested(), NestedArray: f.NestedArray(),
		}
	}
	fieldsJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	enableNested := "0"
	if col.EnableNested() {
		enableNested = "1"
	}

	return map[string]string{
		"name":               col.Name(),
		"fields_json":        string(fieldsJSON),
		"enable_nested":      enableNested,
		"default_sort_field": col.DefaultSortField(),
		"created_at":         strconv.FormatInt(col.CreatedAt(), 10),
		"revision":           strconv.Itoa(col.Revision()),
	}, nil
}

// collectionFromHash hydrates a domain Collection from an HGETALL result map.
func collectionFromHash(m map[string]string) (collection.Collection, error) {
	name := m["name"]
	fieldsJSON := m["fields_json"]

	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return collection.Collection{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var rows []fieldRow
	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &rows); err != nil {
			return collection.Collection{}, fmt.Errorf("unmarshal fields: %w", err)
		}
	}

	fields := make([]schema.Field, len(rows))
	for i, r := range rows {
		fields[i] = schema.Reconstruct(
			r.Name, schema.Type(r.Type), r.Optional, r.Facet, r.Index, r.Sort, r.Nested, r.NestedArray,
		)
	}

	revision := 1
	if v, ok := m["revision"]; ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			revision = parsed
		}
	}

	return collection.Reconstruct(
		name, fields, m["enable_nested"] == "1", m["default_sort_field"], createdAt, revision,
	), nil
}
