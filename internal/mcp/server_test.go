package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/engine"
	"github.com/roasbeef/resumo/internal/linguistic"
	"github.com/roasbeef/resumo/internal/model"
)

const article = "O banco central elevou a taxa de juros pela terceira vez " +
	"neste ano. A decisão busca conter a inflação, que segue acima da " +
	"meta. Economistas avaliam que novos aumentos podem ocorrer. O " +
	"mercado financeiro reagiu com cautela ao anúncio. O governo " +
	"prometeu cortar gastos no segundo semestre."

// connect starts a server over in-memory transports and returns a client
// session for it.
func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()

	analyzer, err := linguistic.NewAnalyzer(linguistic.Portuguese)
	require.NoError(t, err)

	handle := model.NewHandle(
		model.DefaultConfig(),
		model.MockLoader(&model.MockGenerator{}), nil,
	)
	eng := engine.New(
		engine.DefaultConfig(), cache.New(cache.DefaultConfig()),
		handle, analyzer, nil, nil,
	)
	srv := NewServer(Config{Engine: eng, Version: "test"})

	ctx := context.Background()
	serverT, clientT := mcp.NewInMemoryTransports()

	ss, err := srv.server.Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return cs
}

func call[T any](t *testing.T, cs *mcp.ClientSession, name string,
	args any) (T, *mcp.CallToolResult) {

	t.Helper()

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	var out T
	if !res.IsError {
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	}

	return out, res
}

func TestListTools(t *testing.T) {
	t.Parallel()

	cs := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"summarize_text", "cache_stats", "clear_cache", "model_status",
	}, names)
}

func TestSummarizeTool(t *testing.T) {
	t.Parallel()

	cs := connect(t)

	out, res := call[engine.Response](t, cs, "summarize_text", map[string]any{
		"text":   article,
		"method": "extractive",
	})
	require.False(t, res.IsError)
	require.Equal(t, engine.MethodExtractive, out.Method)
	require.NotEmpty(t, out.Summary)
	require.False(t, out.Cached)

	out, _ = call[engine.Response](t, cs, "summarize_text", map[string]any{
		"text":   article,
		"method": "extractive",
	})
	require.True(t, out.Cached)

	stats, _ := call[cache.Stats](t, cs, "cache_stats", map[string]any{})
	require.Positive(t, stats.Size)

	cleared, _ := call[ClearCacheResult](t, cs, "clear_cache", map[string]any{})
	require.True(t, cleared.Cleared)
	require.Equal(t, stats.Size, cleared.Removed)

	stats, _ = call[cache.Stats](t, cs, "cache_stats", map[string]any{})
	require.Zero(t, stats.Size)
}

func TestSummarizeToolRejects(t *testing.T) {
	t.Parallel()

	cs := connect(t)

	_, res := call[engine.Response](t, cs, "summarize_text", map[string]any{
		"text":       article,
		"max_length": 5000,
	})
	require.True(t, res.IsError)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	require.Contains(t, text.Text, "max_length")
}

func TestModelStatusTool(t *testing.T) {
	t.Parallel()

	cs := connect(t)

	status, res := call[model.Status](t, cs, "model_status", map[string]any{})
	require.False(t, res.IsError)
	require.Equal(t, model.DefaultModelIdentifier, status.ModelIdentifier)
	require.False(t, status.Loaded)
}
