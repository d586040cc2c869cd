package model

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// DefaultOllamaHost is where a local ollama server listens.
const DefaultOllamaHost = "http://localhost:11434"

// OllamaGenerator generates summaries with a model served by ollama.
type OllamaGenerator struct {
	client *ollama.Client
	model  string
}

// NewOllamaGenerator creates a generator for model on the ollama server at
// host.
func NewOllamaGenerator(host, model string) (*OllamaGenerator, error) {
	if host == "" {
		host = DefaultOllamaHost
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 5 * time.Minute,
	}

	return &OllamaGenerator{
		client: ollama.NewClient(u, httpClient),
		model:  model,
	}, nil
}

// Check verifies the server is reachable and has the model pulled.
func (g *OllamaGenerator) Check(ctx context.Context) error {
	if err := g.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}

	_, err := g.client.Show(ctx, &ollama.ShowRequest{Model: g.model})
	if err != nil {
		return fmt.Errorf("ollama show %s: %w", g.model, err)
	}

	return nil
}

// Generate runs a non-streaming completion. Beam search is not exposed by
// ollama, so the constraints map onto greedy decoding with a repeat
// penalty.
func (g *OllamaGenerator) Generate(
	ctx context.Context, prompt string, c Constraints,
) (string, error) {
	stream := false
	req := &ollama.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		System: summarySystemPrompt,
		Stream: &stream,
		Options: map[string]any{
			"num_predict":    c.MaxNewTokens,
			"repeat_penalty": c.RepetitionPenalty,
			"repeat_last_n":  c.NoRepeatNgramSize * 32,
			"temperature":    temperature(c),
			"top_k":          1,
		},
	}

	var text strings.Builder
	err := g.client.Generate(ctx, req, func(r ollama.GenerateResponse) error {
		text.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text.String()), nil
}

// summarySystemPrompt steers chat-tuned models toward the behavior of a
// dedicated summarization model.
const summarySystemPrompt = "You condense text. Reply with a summary " +
	"written in the same language as the input and nothing else."

func temperature(c Constraints) float64 {
	if c.DoSample {
		return 0.7
	}

	return 0
}
