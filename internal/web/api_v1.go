package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/gate"
	"github.com/roasbeef/resumo/internal/model"
)

// APIResponse wraps API responses.
type APIResponse struct {
	Data any `json:"data"`
}

// APIError represents an API error response.
type APIError struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail contains error details.
type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// registerRoutes registers every route.
func (s *Server) registerRoutes() {
	corsMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type, Authorization")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next(w, r)
		}
	}

	jsonMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			next(w, r)
		}
	}

	timeoutMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.cfg.RequestTimeout <= 0 {
				next(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(
				r.Context(), s.cfg.RequestTimeout,
			)
			defer cancel()

			next(w, r.WithContext(ctx))
		}
	}

	api := func(handler http.HandlerFunc) http.HandlerFunc {
		return corsMiddleware(jsonMiddleware(timeoutMiddleware(handler)))
	}

	s.mux.HandleFunc("/health", api(s.handleHealth))

	s.mux.HandleFunc("/api/v1/summarize", api(s.handleSummarize))

	s.mux.HandleFunc("/api/v1/cache", api(s.handleCache))
	s.mux.HandleFunc("/api/v1/cache/stats", api(s.handleCacheStats))

	s.mux.HandleFunc("/api/v1/model/status", api(s.handleModelStatus))
	s.mux.HandleFunc("/api/v1/model/unload", api(s.handleModelUnload))

	s.mux.HandleFunc("/api/v1/history", api(s.handleHistory))
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("Error encoding JSON response",
			"error", err)
	}
}

// writeData writes a successful enveloped response.
func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, APIResponse{Data: data})
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIError{
		Error: APIErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed",
		"Method not allowed")
}

// writeEngineError maps an engine or gate error to its HTTP status.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request,
	err error) {

	switch {
	case errors.Is(err, gate.ErrInvalidInput),
		errors.Is(err, engine.ErrEmptyText),
		errors.Is(err, engine.ErrUnknownMethod):

		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout",
			"Request timed out")

	case errors.Is(err, model.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "model_unavailable",
			err.Error())

	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "canceled",
			"Request canceled")

	default:
		s.log.ErrorContext(r.Context(), "Request failed",
			"path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"Internal server error")
	}
}
