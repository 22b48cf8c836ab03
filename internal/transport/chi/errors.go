package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nestidx/internal/domain"
)

// ErrorCode is a stable, machine-readable error identifier returned on the wire.
type ErrorCode string

// Error codes returned to API clients.
const (
	ErrCodeBadRequest    ErrorCode = "bad_request"
	ErrCodeUnauthorized  ErrorCode = "unauthorized"
	ErrCodeNotFound      ErrorCode = "not_found"
	ErrCodeAlreadyExists ErrorCode = "already_exists"
	ErrCodeInternalError ErrorCode = "internal_error"
)

// ErrorResponse is the wire shape of an API error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler matches a specific error condition and writes its response,
// reporting whether it handled err.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error's message for the client without
// leaking internal wrapping detail, or a generic message otherwise.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownField,
		domain.ErrTypeMismatch,
		domain.ErrNestedNotEnabled,
		domain.ErrMissingRequiredField,
		domain.ErrInvalidRequest,
		domain.ErrInvalidSchema,
		domain.ErrAlreadyExists,
		domain.ErrNotFound,
		domain.ErrDocumentNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			if err.Error() != "" {
				return err.Error()
			}
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// domainErrorHandlers is the chain of responsibility consulted by handleDomainError,
// tried in order so more specific sentinels (e.g. ErrDocumentNotFound) are matched
// before broader ones (e.g. ErrNotFound).
func domainErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrCodeNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrCodeAlreadyExists),
		sentinelHandler(domain.ErrUnknownField, http.StatusBadRequest, ErrCodeBadRequest),
		sentinelHandler(domain.ErrTypeMismatch, http.StatusBadRequest, ErrCodeBadRequest),
		sentinelHandler(domain.ErrNestedNotEnabled, http.StatusBadRequest, ErrCodeBadRequest),
		sentinelHandler(domain.ErrMissingRequiredField, http.StatusBadRequest, ErrCodeBadRequest),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, ErrCodeBadRequest),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrCodeBadRequest),
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
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
}
