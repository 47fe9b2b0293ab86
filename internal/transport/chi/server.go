// Package chi exposes the HTTP API. Handlers are thin glue over the
// usecase services; request semantics live in the usecases.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/muheun/moaspace-sub000/internal/domain"
	healthuc "github.com/muheun/moaspace-sub000/internal/usecase/health"
	indexinguc "github.com/muheun/moaspace-sub000/internal/usecase/indexing"
)

const (
	codeBadRequest             = "bad_request"
	codeUnauthorized           = "unauthorized"
	codeValidationFailed       = "validation_failed"
	codeNotFound               = "not_found"
	codeAlreadyExists          = "already_exists"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeInternalError          = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the indexing and search API.
type Server struct {
	configs       ConfigService
	indexer       Indexer
	search        Searcher
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	configs ConfigService,
	indexer Indexer,
	search Searcher,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		configs: configs,
		indexer: indexer,
		search:  search,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrConflict, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrCompute, http.StatusBadGateway, codeEmbeddingProviderError),
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/records:index", s.IndexRecord)
		r.Post("/records:reindex", s.ReindexRecord)
		r.Delete("/records/{namespace}/{entity}/{key}", s.DeleteRecord)

		r.Post("/search", s.Search)

		r.Post("/configs", s.CreateConfig)
		r.Get("/configs/{namespace}/{entityType}", s.ListConfigs)
		r.Get("/configs/{namespace}/{entityType}/{field}", s.GetConfig)
		r.Put("/configs/{namespace}/{entityType}/{field}", s.UpdateConfig)
		r.Delete("/configs/{namespace}/{entityType}/{field}", s.DeleteConfig)
	})
}

// IndexRecord handles POST /api/v1/records:index.
func (s *Server) IndexRecord(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, s.indexer.Index)
}

// ReindexRecord handles POST /api/v1/records:reindex. The record's existing
// chunks are purged synchronously before the rebuild is queued.
func (s *Server) ReindexRecord(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, s.indexer.Reindex)
}

func (s *Server) submit(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, req domain.IndexRequest) (*indexinguc.Handle, error),
) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	h, err := op(r.Context(), indexRequestToDomain(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if !req.Wait {
		writeJSON(w, http.StatusAccepted, indexResponse{Status: "queued"})
		return
	}

	if err := h.Wait(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, indexResponse{Status: "indexed"})
}

// DeleteRecord handles DELETE /api/v1/records/{namespace}/{entity}/{key}.
// Deleting an unknown record is a no-op that reports zero chunks.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	entity := chi.URLParam(r, "entity")
	key := chi.URLParam(r, "key")

	deleted, err := s.indexer.Delete(r.Context(), namespace, entity, key)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteRecordResponse{Deleted: deleted})
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.search.Search(r.Context(), searchRequestToDomain(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToDTO(&results[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

// CreateConfig handles POST /api/v1/configs.
func (s *Server) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var req createConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	cfg, err := s.configs.Create(r.Context(),
		req.Namespace, req.EntityType, req.FieldName,
		req.Weight, req.Threshold, enabled)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, configToDTO(cfg))
}

// ListConfigs handles GET /api/v1/configs/{namespace}/{entityType}.
func (s *Server) ListConfigs(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	entityType := chi.URLParam(r, "entityType")

	cfgs, err := s.configs.List(r.Context(), namespace, entityType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]configResponse, len(cfgs))
	for i, c := range cfgs {
		items[i] = configToDTO(c)
	}

	writeJSON(w, http.StatusOK, configListResponse{Items: items})
}

// GetConfig handles GET /api/v1/configs/{namespace}/{entityType}/{field}.
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	entityType := chi.URLParam(r, "entityType")
	field := chi.URLParam(r, "field")

	cfg, err := s.configs.Get(r.Context(), namespace, entityType, field)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, configToDTO(cfg))
}

// UpdateConfig handles PUT /api/v1/configs/{namespace}/{entityType}/{field}.
// The key triple comes from the path and is immutable.
func (s *Server) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	entityType := chi.URLParam(r, "entityType")
	field := chi.URLParam(r, "field")

	var req updateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	cfg, err := s.configs.Update(r.Context(), namespace, entityType, field,
		req.Weight, req.Threshold, enabled)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, configToDTO(cfg))
}

// DeleteConfig handles DELETE /api/v1/configs/{namespace}/{entityType}/{field}.
func (s *Server) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	entityType := chi.URLParam(r, "entityType")
	field := chi.URLParam(r, "field")

	if err := s.configs.Delete(r.Context(), namespace, entityType, field); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrCompute,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
