package model

import (
	"context"
	"errors"
	"fmt"
)

// Supported backend names.
const (
	BackendOllama    = "ollama"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendMock      = "mock"
)

// ErrUnknownBackend is returned for a backend name NewLoader does not know.
var ErrUnknownBackend = errors.New("unknown model backend")

// BackendConfig selects and configures a model backend.
type BackendConfig struct {
	// Backend is one of ollama, openai, anthropic or mock.
	Backend string

	// Name is the model name as the backend knows it.
	Name string

	// BaseURL overrides the backend endpoint.
	BaseURL string

	// APIKey authenticates against hosted backends.
	APIKey string

	// TokenizerFile is an optional HuggingFace tokenizer.json. Without
	// it token counts are approximated.
	TokenizerFile string
}

// NewLoader returns a Loader for the configured backend. Nothing touches
// the network until the loader runs.
func NewLoader(cfg BackendConfig) (Loader, error) {
	switch cfg.Backend {
	case BackendOllama, BackendOpenAI, BackendAnthropic, BackendMock:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	return func(ctx context.Context) (*Backend, error) {
		tok, err := newTokenizer(cfg.TokenizerFile)
		if err != nil {
			return nil, err
		}

		gen, err := newGenerator(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return &Backend{Tokenizer: tok, Generator: gen}, nil
	}, nil
}

func newTokenizer(path string) (Tokenizer, error) {
	if path == "" {
		return NewApproxTokenizer(), nil
	}

	return NewHFTokenizer(path)
}

func newGenerator(ctx context.Context, cfg BackendConfig) (Generator, error) {
	switch cfg.Backend {
	case BackendOllama:
		gen, err := NewOllamaGenerator(cfg.BaseURL, cfg.Name)
		if err != nil {
			return nil, err
		}
		if err := gen.Check(ctx); err != nil {
			return nil, err
		}

		return gen, nil

	case BackendOpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("openai backend needs an api key")
		}

		return NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Name), nil

	case BackendAnthropic:
		if cfg.APIKey == "" {
			return nil, errors.New("anthropic backend needs an api key")
		}

		return NewAnthropicGenerator(cfg.APIKey, cfg.Name), nil

	default:
		return &MockGenerator{}, nil
	}
}
