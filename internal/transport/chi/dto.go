package chi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	domcol "github.com/kailas-cloud/nestidx/internal/domain/collection"
	domdoc "github.com/kailas-cloud/nestidx/internal/domain/document"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	"github.com/kailas-cloud/nestidx/internal/domain/search/filter"
	"github.com/kailas-cloud/nestidx/internal/domain/value"
	usecasesearch "github.com/kailas-cloud/nestidx/internal/usecase/search"
)

const maxBodyBytes = domdoc.MaxDocumentSize

// maxSnapshotBytes bounds an uploaded backfill snapshot file.
const maxSnapshotBytes = 256 << 20

// fieldDTO is the wire representation of a schema.Field declaration.
type fieldDTO struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
	Facet    bool   `json:"facet,omitempty"`
	Index    *bool  `json:"index,omitempty"`
	Sort     bool   `json:"sort,omitempty"`
}

func fieldFromDTO(d fieldDTO) (schema.Field, error) {
	opts := make([]schema.Option, 0, 3)
	if d.Facet {
		opts = append(opts, schema.Facet())
	}
	if d.Sort {
		opts = append(opts, schema.Sortable())
	}
	if d.Index != nil {
		opts = append(opts, schema.Indexed(*d.Index))
	}
	return schema.New(d.Name, schema.Type(d.Type), d.Optional, opts...)
}

func fieldToDTO(f schema.Field) fieldDTO {
	index := f.Index()
	return fieldDTO{
		Name:     f.Name(),
		Type:     string(f.Type()),
		Optional: f.Optional(),
		Facet:    f.Facet(),
		Index:    &index,
		Sort:     f.Sort(),
	}
}

// createCollectionRequest is the wire body of POST /collections.
type createCollectionRequest struct {
	Name                string     `json:"name"`
	Fields              []fieldDTO `json:"fields"`
	EnableNestedFields  bool       `json:"enable_nested_fields,omitempty"`
	DefaultSortingField string     `json:"default_sorting_field,omitempty"`
}

// collectionResponse is the wire representation of a collection.
type collectionResponse struct {
	Name                string     `json:"name"`
	Fields              []fieldDTO `json:"fields"`
	EnableNestedFields  bool       `json:"enable_nested_fields"`
	DefaultSortingField string     `json:"default_sorting_field,omitempty"`
	CreatedAt           int64      `json:"created_at"`
	NumDocuments        int        `json:"num_documents"`
}

func collectionToDTO(c domcol.Collection, numDocs int) collectionResponse {
	fields := c.Fields()
	dtos := make([]fieldDTO, 0, len(fields))
	for _, f := range fields {
		dtos = append(dtos, fieldToDTO(f))
	}
	return collectionResponse{
		Name:                c.Name(),
		Fields:              dtos,
		EnableNestedFields:  c.EnableNested(),
		DefaultSortingField: c.DefaultSortField(),
		CreatedAt:           c.CreatedAt(),
		NumDocuments:        numDocs,
	}
}

// decodeJSON decodes a request body into a fixed-shape wire struct.
func decodeJSON(r *http.Request, v any) error {
	limited := io.LimitReader(r.Body, maxBodyBytes+1)
	if err := json.NewDecoder(limited).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// decodeBody reads and parses a request body as a value.Value tree, bounded
// by the same document size cap the ingest aggregate enforces (§3.2).
func decodeBody(r *http.Request) (value.Value, error) {
	limited := io.LimitReader(r.Body, maxBodyBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return value.Value{}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > maxBodyBytes {
		return value.Value{}, fmt.Errorf("document body exceeds %d bytes", maxBodyBytes)
	}
	v, err := value.Decode(data)
	if err != nil {
		return value.Value{}, fmt.Errorf("decode body: %w", err)
	}
	return v, nil
}

func writeValue(w http.ResponseWriter, status int, v value.Value) {
	data, err := value.Encode(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// documentListResponse is the wire representation of a page of documents.
type documentListResponse struct {
	Documents  []json.RawMessage `json:"documents"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func documentsToDTO(docs []domdoc.Document) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		raw, err := value.Encode(d.Root())
		if err != nil {
			return nil, fmt.Errorf("encode document %s: %w", d.ID(), err)
		}
		out = append(out, raw)
	}
	return out, nil
}

// --- search request/response DTOs ---

type filterConditionDTO struct {
	Key   string   `json:"key"`
	Match string   `json:"match,omitempty"`
	GT    *float64 `json:"gt,omitempty"`
	GTE   *float64 `json:"gte,omitempty"`
	LT    *float64 `json:"lt,omitempty"`
	LTE   *float64 `json:"lte,omitempty"`
}

type filterExpressionDTO struct {
	Must    []filterConditionDTO `json:"must,omitempty"`
	Should  []filterConditionDTO `json:"should,omitempty"`
	MustNot []filterConditionDTO `json:"must_not,omitempty"`
}

func conditionFromDTO(d filterConditionDTO) (filter.Condition, error) {
	if d.Match != "" {
		return filter.NewMatch(d.Key, d.Match)
	}
	r, err := filter.NewRangeFilter(d.GT, d.GTE, d.LT, d.LTE)
	if err != nil {
		return filter.Condition{}, fmt.Errorf("filter %q: %w", d.Key, err)
	}
	return filter.NewRange(d.Key, r)
}

func conditionsFromDTO(ds []filterConditionDTO) ([]filter.Condition, error) {
	if len(ds) == 0 {
		return nil, nil
	}
	out := make([]filter.Condition, 0, len(ds))
	for _, d := range ds {
		c, err := conditionFromDTO(d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func filterExpressionFromDTO(d filterExpressionDTO) (filter.Expression, error) {
	must, err := conditionsFromDTO(d.Must)
	if err != nil {
		return filter.Expression{}, err
	}
	should, err := conditionsFromDTO(d.Should)
	if err != nil {
		return filter.Expression{}, err
	}
	mustNot, err := conditionsFromDTO(d.MustNot)
	if err != nil {
		return filter.Expression{}, err
	}
	return filter.NewExpression(must, should, mustNot)
}

// searchRequestDTO is the wire body of POST /collections/{collection}/documents/search.
type searchRequestDTO struct {
	Q                       string              `json:"q"`
	QueryBy                 []string            `json:"query_by,omitempty"`
	FilterBy                filterExpressionDTO `json:"filter_by,omitempty"`
	SortBy                  string              `json:"sort_by,omitempty"`
	SortDesc                bool                `json:"sort_desc,omitempty"`
	Offset                  int                 `json:"offset,omitempty"`
	PerPage                 int                 `json:"per_page,omitempty"`
	IncludeFields           []string            `json:"include_fields,omitempty"`
	ExcludeFields           []string            `json:"exclude_fields,omitempty"`
	HighlightFields         []string            `json:"highlight_fields,omitempty"`
	HighlightFullFields     []string            `json:"highlight_full_fields,omitempty"`
	HighlightAffixNumTokens int                 `json:"highlight_affix_num_tokens,omitempty"`
}

type matchMetaDTO struct {
	MatchedTokens []string `json:"matched_tokens"`
}

type highlightDTO struct {
	Snippet json.RawMessage         `json:"snippet,omitempty"`
	Full    json.RawMessage         `json:"full,omitempty"`
	Meta    map[string]matchMetaDTO `json:"meta,omitempty"`
}

type hitDTO struct {
	Document   json.RawMessage `json:"document"`
	Highlight  highlightDTO    `json:"highlight"`
	Highlights []any           `json:"highlights"`
}

type searchResponseDTO struct {
	Found int      `json:"found"`
	Hits  []hitDTO `json:"hits"`
}

func hitToDTO(h usecasesearch.Hit) (hitDTO, error) {
	docRaw, err := value.Encode(h.Document)
	if err != nil {
		return hitDTO{}, fmt.Errorf("encode document %s: %w", h.ID, err)
	}
	snippetRaw, err := value.Encode(h.Snippet)
	if err != nil {
		return hitDTO{}, fmt.Errorf("encode snippet %s: %w", h.ID, err)
	}
	fullRaw, err := value.Encode(h.Full)
	if err != nil {
		return hitDTO{}, fmt.Errorf("encode full %s: %w", h.ID, err)
	}

	meta := make(map[string]matchMetaDTO, len(h.Meta))
	for path, m := range h.Meta {
		meta[path] = matchMetaDTO{MatchedTokens: m.MatchedTokens}
	}

	return hitDTO{
		Document: docRaw,
		Highlight: highlightDTO{
			Snippet: snippetRaw,
			Full:    fullRaw,
			Meta:    meta,
		},
		Highlights: []any{},
	}, nil
}

func searchResponseToDTO(resp usecasesearch.Response) (searchResponseDTO, error) {
	hits := make([]hitDTO, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		dto, err := hitToDTO(h)
		if err != nil {
			return searchResponseDTO{}, err
		}
		hits = append(hits, dto)
	}
	return searchResponseDTO{Found: resp.Found, Hits: hits}, nil
}
