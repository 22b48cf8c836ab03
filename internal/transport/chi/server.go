// Package chi wires the collection, indexer, search, and health use cases
// onto HTTP handlers registered on a chi router.
package chi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domcol "github.com/kailas-cloud/nestidx/internal/domain/collection"
	"github.com/kailas-cloud/nestidx/internal/domain/schema"
	domreq "github.com/kailas-cloud/nestidx/internal/domain/search/request"
	"github.com/kailas-cloud/nestidx/internal/metrics"
	"github.com/kailas-cloud/nestidx/internal/snapshot"
	"github.com/kailas-cloud/nestidx/internal/usecase/health"
	"github.com/kailas-cloud/nestidx/internal/usecase/indexer"
	"github.com/kailas-cloud/nestidx/internal/usecase/search"
)

// CollectionService is the collection CRUD collaborator.
type CollectionService interface {
	Create(ctx context.Context, name string, fields []schema.Field, enableNested bool, defaultSortField string) (domcol.Collection, error)
	Get(ctx context.Context, name string) (domcol.Collection, error)
	List(ctx context.Context) ([]domcol.Collection, error)
	Delete(ctx context.Context, name string) error
}

// Server holds the use-case collaborators and serves the HTTP API.
type Server struct {
	collections    CollectionService
	indexer        *indexer.Facade
	search         *search.Service
	health         *health.Service
	snapshotDocs   snapshot.DocumentLister
	snapshotEngine snapshot.PostingsEngine
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer builds a Server wired to its use-case collaborators.
func NewServer(
	collections CollectionService, idx *indexer.Facade, srch *search.Service, hlth *health.Service,
	snapshotDocs snapshot.DocumentLister, snapshotEngine snapshot.PostingsEngine,
	logger *zap.Logger,
) *Server {
	return &Server{
		collections:    collections,
		indexer:        idx,
		search:         srch,
		health:         hlth,
		snapshotDocs:   snapshotDocs,
		snapshotEngine: snapshotEngine,
		logger:         logger,
		errorHandlers:  domainErrorHandlers(),
	}
}

// Routes registers every handler on a fresh chi router, applying middlewares
// (in order) before any route is matched.
func (s *Server) Routes(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/collections", func(r chi.Router) {
		r.Post("/", s.handleCreateCollection)
		r.Get("/", s.handleListCollections)

		r.Route("/{collection}", func(r chi.Router) {
			r.Get("/", s.handleGetCollection)
			r.Delete("/", s.handleDeleteCollection)
			r.Get("/snapshot", s.handleExportSnapshot)
			r.Post("/snapshot", s.handleImportSnapshot)

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", s.handleListDocuments)
				r.Post("/", s.handleCreateDocument)
				r.Post("/search", s.handleSearch)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDocument)
					r.Put("/", s.handleUpsertDocument)
					r.Patch("/", s.handleUpdateDocument)
					r.Post("/emplace", s.handleEmplaceDocument)
					r.Delete("/", s.handleDeleteDocument)
				})
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	fields := make([]schema.Field, 0, len(req.Fields))
	for _, fd := range req.Fields {
		f, err := fieldFromDTO(fd)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fields = append(fields, f)
	}

	col, err := s.collections.Create(r.Context(), req.Name, fields, req.EnableNestedFields, req.DefaultSortingField)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collectionToDTO(col, 0))
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	cols, err := s.collections.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out := make([]collectionResponse, 0, len(cols))
	for _, c := range cols {
		n, err := s.indexer.Count(r.Context(), c.Name())
		if err != nil {
			n = 0
		}
		out = append(out, collectionToDTO(c, n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	col, err := s.collections.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	n, err := s.indexer.Count(r.Context(), name)
	if err != nil {
		n = 0
	}
	writeJSON(w, http.StatusOK, collectionToDTO(col, n))
}

func (s *Server) handleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	if err := s.collections.Delete(r.Context(), name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	cursor := r.URL.Query().Get("cursor")
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	docs, next, err := s.indexer.List(r.Context(), name, cursor, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	raws, err := documentsToDTO(docs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "encode documents")
		return
	}
	writeJSON(w, http.StatusOK, documentListResponse{Documents: raws, NextCursor: next})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	doc, err := s.indexer.Get(r.Context(), name, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeValue(w, http.StatusOK, doc.Root())
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, indexer.Create, "")
}

func (s *Server) handleUpsertDocument(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, indexer.Upsert, chi.URLParam(r, "id"))
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, indexer.Update, chi.URLParam(r, "id"))
}

func (s *Server) handleEmplaceDocument(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, indexer.Emplace, chi.URLParam(r, "id"))
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, action indexer.Action, id string) {
	name := chi.URLParam(r, "collection")

	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	start := time.Now()
	doc, created, err := s.indexer.Write(r.Context(), name, id, body, action)
	status := "ok"
	if err != nil {
		status = "error"
	}
	label := actionLabel(action)
	metrics.IndexWriteDuration.WithLabelValues(name, label).Observe(time.Since(start).Seconds())
	metrics.IndexWritesTotal.WithLabelValues(name, label, status).Inc()

	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	httpStatus := http.StatusOK
	if created {
		httpStatus = http.StatusCreated
	}
	writeValue(w, httpStatus, doc.Root())
}

func actionLabel(a indexer.Action) string {
	switch a {
	case indexer.Create:
		return "create"
	case indexer.Upsert:
		return "upsert"
	case indexer.Update:
		return "update"
	case indexer.Emplace:
		return "emplace"
	default:
		return "unknown"
	}
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	if err := s.indexer.Delete(r.Context(), name, id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")

	var dto searchRequestDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	filters, err := filterExpressionFromDTO(dto.FilterBy)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	req, err := domreq.New(
		dto.Q, dto.QueryBy, filters, dto.SortBy, dto.SortDesc, dto.Offset, dto.PerPage,
		dto.IncludeFields, dto.ExcludeFields, dto.HighlightFields, dto.HighlightFullFields,
		dto.HighlightAffixNumTokens,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	start := time.Now()
	resp, err := s.search.Search(r.Context(), name, &req)
	if err != nil {
		metrics.SearchQueriesTotal.WithLabelValues(name, "error").Inc()
		s.handleDomainError(w, err)
		return
	}
	metrics.SearchQueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.SearchQueriesTotal.WithLabelValues(name, "ok").Inc()
	metrics.SearchHitsReturned.WithLabelValues(name).Observe(float64(len(resp.Hits)))

	out, err := searchResponseToDTO(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "encode response")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExportSnapshot streams a collection's postings as parquet for
// offline backfill/reindex (§ bulk backfill).
func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")

	col, err := s.collections.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.snapshot.parquet"`, name))
	if err := snapshot.Export(r.Context(), w, name, col.Registry(), s.snapshotDocs); err != nil {
		s.logger.Error("export snapshot", zap.String("collection", name), zap.Error(err))
	}
}

// handleImportSnapshot replays a snapshot file's leaves into the postings
// engine, rebuilding a collection's search index without touching the
// document store.
func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")

	if _, err := s.collections.Get(r.Context(), name); err != nil {
		s.handleDomainError(w, err)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "read snapshot body")
		return
	}
	if int64(len(data)) > maxSnapshotBytes {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "snapshot exceeds maximum size")
		return
	}

	replayed, err := snapshot.Import(r.Context(), bytes.NewReader(data), int64(len(data)), s.snapshotEngine)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("import snapshot: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"documents_replayed": replayed})
}
