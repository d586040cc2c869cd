package model

import (
	"context"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGenerator generates summaries with the Anthropic Messages API.
type AnthropicGenerator struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicGenerator creates a generator for model.
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	cl := anthropic.NewClient(anthropicopt.WithAPIKey(apiKey))

	return &AnthropicGenerator{
		client: &cl,
		model:  model,
	}
}

// Generate runs a single-turn message and concatenates its text blocks.
func (g *AnthropicGenerator) Generate(
	ctx context.Context, prompt string, c Constraints,
) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(c.MaxNewTokens),
		System: []anthropic.TextBlockParam{
			{Text: summarySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(temperature(c)),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}

	return strings.TrimSpace(b.String()), nil
}
