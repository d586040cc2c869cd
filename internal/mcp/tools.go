package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/gate"
	"github.com/roasbeef/resumo/internal/model"
)

// SummarizeArgs are the arguments for the summarize_text tool.
type SummarizeArgs struct {
	Text      string `json:"text" jsonschema:"Text to summarize"`
	Method    string `json:"method,omitempty" jsonschema:"extractive, abstractive or auto (default)"`
	Format    string `json:"format,omitempty" jsonschema:"text (default) or markdown"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"Maximum summary length, at most 1000"`
	MinLength int    `json:"min_length,omitempty" jsonschema:"Minimum summary length, at least 10"`
}

func (s *Server) handleSummarize(ctx context.Context,
	_ *mcp.CallToolRequest, args SummarizeArgs) (*mcp.CallToolResult,
	engine.Response, error) {

	req, err := s.gate.Check(gate.Request{
		Text:      args.Text,
		Method:    args.Method,
		Format:    args.Format,
		MaxLength: args.MaxLength,
		MinLength: args.MinLength,
	})
	if err != nil {
		return nil, engine.Response{}, err
	}

	res, err := s.engine.Summarize(ctx, req)
	if err != nil {
		s.log.WarnContext(ctx, "Summarize tool failed", "error", err)
		return nil, engine.Response{}, err
	}

	return nil, res.Response(), nil
}

// EmptyArgs is the argument type of tools that take none.
type EmptyArgs struct{}

func (s *Server) handleCacheStats(_ context.Context,
	_ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult,
	cache.Stats, error) {

	return nil, s.engine.CacheStats(), nil
}

// ClearCacheArgs are the arguments for the clear_cache tool.
type ClearCacheArgs struct {
	Pattern string `json:"pattern,omitempty" jsonschema:"Only drop entries whose text contains this pattern"`
}

// ClearCacheResult reports what clear_cache removed.
type ClearCacheResult struct {
	Cleared bool `json:"cleared"`
	Removed int  `json:"removed"`
}

func (s *Server) handleClearCache(_ context.Context,
	_ *mcp.CallToolRequest, args ClearCacheArgs) (*mcp.CallToolResult,
	ClearCacheResult, error) {

	if args.Pattern != "" {
		n := s.engine.InvalidateCache(args.Pattern)
		return nil, ClearCacheResult{Cleared: true, Removed: n}, nil
	}

	n := s.engine.CacheStats().Size
	s.engine.CacheClear()

	return nil, ClearCacheResult{Cleared: true, Removed: n}, nil
}

func (s *Server) handleModelStatus(_ context.Context,
	_ *mcp.CallToolRequest, _ EmptyArgs) (*mcp.CallToolResult,
	model.Status, error) {

	return nil, s.engine.ModelStatus(), nil
}
