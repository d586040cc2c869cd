// Package web serves the summarization engine over a JSON HTTP API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/gate"
	"github.com/roasbeef/resumo/internal/history"
	"github.com/roasbeef/resumo/internal/model"
)

// Engine is the part of the summarization engine the API exposes.
type Engine interface {
	Summarize(ctx context.Context, req engine.Request) (engine.SummaryResult, error)
	CacheStats() cache.Stats
	CacheClear()
	InvalidateCache(pattern string) int
	ModelStatus() model.Status
	UnloadModel() error
}

// History lists served summaries.
type History interface {
	ListRecent(ctx context.Context, limit int) ([]history.Record, error)
}

// Config holds configuration for the web server.
type Config struct {
	Addr string

	// RequestTimeout bounds every API request.
	RequestTimeout time.Duration

	// MaxConcurrentRequests bounds summarize requests in flight; others
	// wait for a slot until their timeout.
	MaxConcurrentRequests int

	// MaxTextLength sizes the request body limit.
	MaxTextLength int

	Version string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:                  "localhost:8080",
		RequestTimeout:        300 * time.Second,
		MaxConcurrentRequests: 10,
		MaxTextLength:         gate.DefaultMaxTextLength,
	}
}

// Server is the HTTP server.
type Server struct {
	cfg     *Config
	engine  Engine
	gate    *gate.Gate
	history History
	slots   *semaphore.Weighted
	started time.Time

	mux *http.ServeMux
	srv *http.Server
	log *slog.Logger
}

// NewServer creates a server. hist may be nil when history is disabled.
func NewServer(cfg *Config, eng Engine, g *gate.Gate, hist History,
	log *slog.Logger) *Server {

	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxConcurrentRequests < 1 {
		cfg.MaxConcurrentRequests = 1
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = gate.DefaultMaxTextLength
	}

	s := &Server{
		cfg:     cfg,
		engine:  eng,
		gate:    g,
		history: hist,
		slots: semaphore.NewWeighted(
			int64(cfg.MaxConcurrentRequests),
		),
		started: time.Now(),
		mux:     http.NewServeMux(),
		log:     log.With("component", "web"),
	}
	s.registerRoutes()

	s.srv = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.mux,
		ReadTimeout: 15 * time.Second,

		// Summaries may take up to the request timeout to compute.
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	s.log.Info("Starting web server", "addr", s.cfg.Addr)

	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
