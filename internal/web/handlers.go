package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/gate"
)

// SummarizeResponse is the body of a successful summarize call.
type SummarizeResponse struct {
	engine.Response

	ProcessingTime float64 `json:"processing_time_seconds"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string  `json:"status"`
	Version     string  `json:"version,omitempty"`
	ModelLoaded bool    `json:"model_loaded"`
	CacheSize   int     `json:"cache_size"`
	Uptime      float64 `json:"uptime_seconds"`
	Time        string  `json:"time"`
}

// ClearCacheResponse reports what a cache clear removed.
type ClearCacheResponse struct {
	Removed int    `json:"removed"`
	Pattern string `json:"pattern,omitempty"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Version:     s.cfg.Version,
		ModelLoaded: s.engine.ModelStatus().Loaded,
		CacheSize:   s.engine.CacheStats().Size,
		Uptime:      time.Since(s.started).Seconds(),
		Time:        time.Now().UTC().Format(time.RFC3339),
	})
}

// handleSummarize handles POST /api/v1/summarize.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	// Leave room for JSON escaping of multi-byte text.
	limit := int64(s.cfg.MaxTextLength)*8 + 4096
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var body gate.Request
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				"too_large", "Request body too large")
			return
		}

		writeError(w, http.StatusBadRequest, "invalid_json",
			fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	req, err := s.gate.Check(body)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	ctx := r.Context()
	if err := s.slots.Acquire(ctx, 1); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	defer s.slots.Release(1)

	start := time.Now()
	res, err := s.engine.Summarize(ctx, req)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	s.log.InfoContext(ctx, "Summary served",
		"method", res.Method, "cached", res.Cached,
		"duration", time.Since(start),
	)

	writeData(w, SummarizeResponse{
		Response:       res.Response(),
		ProcessingTime: time.Since(start).Seconds(),
	})
}

// handleCacheStats handles GET /api/v1/cache/stats.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeData(w, s.engine.CacheStats())
}

// handleCache handles DELETE /api/v1/cache, optionally limited by
// ?pattern=.
func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	pattern := r.URL.Query().Get("pattern")
	if pattern != "" {
		writeData(w, ClearCacheResponse{
			Removed: s.engine.InvalidateCache(pattern),
			Pattern: pattern,
		})
		return
	}

	removed := s.engine.CacheStats().Size
	s.engine.CacheClear()

	writeData(w, ClearCacheResponse{Removed: removed})
}

// handleModelStatus handles GET /api/v1/model/status.
func (s *Server) handleModelStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeData(w, s.engine.ModelStatus())
}

// handleModelUnload handles POST /api/v1/model/unload.
func (s *Server) handleModelUnload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	if err := s.engine.UnloadModel(); err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	writeData(w, s.engine.ModelStatus())
}

// handleHistory handles GET /api/v1/history?limit=.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	if s.history == nil {
		writeError(w, http.StatusNotFound, "history_disabled",
			"Summary history is disabled")
		return
	}

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_input",
				"limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := s.history.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	writeData(w, recs)
}
