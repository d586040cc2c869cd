// Package mcp exposes the summarization engine as Model Context Protocol
// tools.
package mcp

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/gate"
	"github.com/roasbeef/resumo/internal/model"
)

// Summarizer is the part of the engine the tools use.
type Summarizer interface {
	Summarize(ctx context.Context, req engine.Request) (engine.SummaryResult, error)
	CacheStats() cache.Stats
	CacheClear()
	InvalidateCache(pattern string) int
	ModelStatus() model.Status
}

// Config holds configuration for the MCP server.
type Config struct {
	// Engine answers the tool calls.
	Engine Summarizer

	// Gate validates summarize_text arguments.
	Gate *gate.Gate

	// Version is reported to clients.
	Version string

	Log *slog.Logger
}

// Server wraps the MCP server with the engine.
type Server struct {
	server *mcp.Server
	engine Summarizer
	gate   *gate.Gate
	log    *slog.Logger
}

// NewServer creates an MCP server with every tool registered.
func NewServer(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	if cfg.Gate == nil {
		cfg.Gate = gate.New(gate.DefaultConfig())
	}

	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "resumo",
			Version: cfg.Version,
		}, nil),
		engine: cfg.Engine,
		gate:   cfg.Gate,
		log:    log.With("component", "mcp"),
	}
	s.registerTools()

	return s
}

// Run serves the given transport until ctx is done or the client leaves.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.log.Info("MCP server starting")
	return s.server.Run(ctx, transport)
}

// RunStdio serves over stdin and stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "summarize_text",
		Description: "Summarize a text extractively, with the " +
			"generative model, or automatically picking the better " +
			"strategy",
	}, s.handleSummarize)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Report the size and keys of the summary cache",
	}, s.handleCacheStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "clear_cache",
		Description: "Clear the summary cache, or only the entries " +
			"whose text contains a pattern",
	}, s.handleClearCache)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "model_status",
		Description: "Report which generative model is configured and loaded",
	}, s.handleModelStatus)
}
