package model

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Config describes the model a Handle serves.
type Config struct {
	// ModelIdentifier names the model in status reports and logs.
	ModelIdentifier string

	// MaxInputLength is the model context size in tokens.
	MaxInputLength int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ModelIdentifier: DefaultModelIdentifier,
		MaxInputLength:  DefaultMaxInputLength,
	}
}

// Status is a snapshot of a Handle.
type Status struct {
	ModelIdentifier       string `json:"model_name"`
	Loaded                bool   `json:"is_loaded"`
	MaxInputLength        int    `json:"max_input_length"`
	DefaultSentencesCount int    `json:"default_sentences_count"`
}

// Handle owns the lifecycle of one model backend. The backend is loaded on
// first use; concurrent first uses wait for a single load. A failed load
// leaves the handle unloaded so the next call retries.
type Handle struct {
	cfg  Config
	load Loader
	log  *slog.Logger

	// loadMu serializes loads and unloads. Readers of backend never
	// take it.
	loadMu  sync.Mutex
	backend atomic.Pointer[Backend]
}

// NewHandle creates an unloaded Handle.
func NewHandle(cfg Config, load Loader, log *slog.Logger) *Handle {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = DefaultMaxInputLength
	}
	if cfg.ModelIdentifier == "" {
		cfg.ModelIdentifier = DefaultModelIdentifier
	}

	return &Handle{
		cfg:  cfg,
		load: load,
		log:  log.With("component", "model"),
	}
}

// Load returns the backend, loading it first if needed.
func (h *Handle) Load(ctx context.Context) (*Backend, error) {
	if backend := h.backend.Load(); backend != nil {
		return backend, nil
	}

	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	if backend := h.backend.Load(); backend != nil {
		return backend, nil
	}

	start := time.Now()
	h.log.Info("Loading model", "model", h.cfg.ModelIdentifier)

	backend, err := h.load(ctx)
	if err != nil {
		h.log.Error("Model load failed",
			"model", h.cfg.ModelIdentifier, "error", err,
		)

		return nil, fmt.Errorf("%w: load %s: %w", ErrModelUnavailable,
			h.cfg.ModelIdentifier, err)
	}

	h.backend.Store(backend)
	h.log.Info("Model loaded",
		"model", h.cfg.ModelIdentifier,
		"duration", time.Since(start),
	)

	return backend, nil
}

// Unload drops the backend. The next call loads it again.
func (h *Handle) Unload() error {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	backend := h.backend.Swap(nil)
	if backend == nil {
		return nil
	}

	var err error
	if backend.Close != nil {
		err = backend.Close()
	}

	h.log.Info("Model unloaded", "model", h.cfg.ModelIdentifier)

	return err
}

// IsLoaded reports whether the backend is currently loaded. It never
// waits on a load in progress.
func (h *Handle) IsLoaded() bool {
	return h.backend.Load() != nil
}

// MaxInputLength is the model context size in tokens.
func (h *Handle) MaxInputLength() int {
	return h.cfg.MaxInputLength
}

// Status returns a snapshot of the handle.
func (h *Handle) Status() Status {
	return Status{
		ModelIdentifier:       h.cfg.ModelIdentifier,
		Loaded:                h.IsLoaded(),
		MaxInputLength:        h.cfg.MaxInputLength,
		DefaultSentencesCount: DefaultSentencesCount,
	}
}

// CountTokens returns how many tokens text encodes to.
func (h *Handle) CountTokens(ctx context.Context, text string) (int, error) {
	backend, err := h.Load(ctx)
	if err != nil {
		return 0, err
	}

	ids, err := backend.Tokenizer.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("%w: tokenize: %w", ErrModelUnavailable, err)
	}

	return len(ids), nil
}

// Generate runs one generation call, loading the backend first if needed.
func (h *Handle) Generate(
	ctx context.Context, prompt string, c Constraints,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	backend, err := h.Load(ctx)
	if err != nil {
		return "", err
	}

	out, err := backend.Generator.Generate(ctx, prompt, c)
	if err != nil {
		// Cancellation is the caller's doing, not the model's.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		return "", fmt.Errorf("%w: generate: %w", ErrModelUnavailable,
			err)
	}
	if out == "" {
		return "", fmt.Errorf("%w: %w", ErrModelUnavailable,
			ErrEmptyGeneration)
	}

	return out, nil
}
