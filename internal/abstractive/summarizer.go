// Package abstractive produces summaries with a generative model, chunking
// documents that do not fit the model's input window.
package abstractive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/errgroup"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/chunker"
	"github.com/roasbeef/resumo/internal/lexical"
	"github.com/roasbeef/resumo/internal/model"
	"github.com/roasbeef/resumo/internal/outcome"
)

// Method is the cache namespace of generative summaries.
const Method = "abstractive"

const (
	// DefaultMaxConcurrent bounds in-flight chunk generations.
	DefaultMaxConcurrent = 4

	// DefaultPromptReserve is how many tokens of the input window are
	// kept free for the task prefix and special tokens when sizing
	// chunks.
	DefaultPromptReserve = 50

	// minChunkMaxTokens and minChunkMinTokens floor the per-chunk
	// generation bounds.
	minChunkMaxTokens = 50
	minChunkMinTokens = 10

	// maxRechunks bounds how often the chunk budget is shrunk before
	// oversized chunks are split by words.
	maxRechunks = 4
)

// ErrChunkFailed marks an outcome in which at least one chunk was replaced
// by its raw text.
var ErrChunkFailed = errors.New("chunk generation failed")

// Model is the part of a model.Handle the summarizer needs.
type Model interface {
	MaxInputLength() int
	CountTokens(ctx context.Context, text string) (int, error)
	Generate(
		ctx context.Context, prompt string, c model.Constraints,
	) (string, error)
}

// Config holds configuration for the generative summarizer.
type Config struct {
	// MaxConcurrent bounds in-flight chunk generations.
	MaxConcurrent int

	// PromptReserve is subtracted from the model window when sizing
	// chunks.
	PromptReserve int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: DefaultMaxConcurrent,
		PromptReserve: DefaultPromptReserve,
	}
}

// Summarizer turns text into a generated summary.
type Summarizer struct {
	cfg   Config
	model Model
	cache *cache.Store
	log   *slog.Logger
}

// NewSummarizer creates a generative summarizer. The cache is optional.
func NewSummarizer(
	cfg Config, m Model, store *cache.Store, log *slog.Logger,
) *Summarizer {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.PromptReserve < 0 {
		cfg.PromptReserve = DefaultPromptReserve
	}

	return &Summarizer{
		cfg:   cfg,
		model: m,
		cache: store,
		log:   log.With("component", "abstractive"),
	}
}

// Summarize generates a summary of text bounded by maxLen and minLen
// tokens. Text longer than the model window is chunked and summarized
// chunk by chunk; a chunk whose generation fails is replaced by its own
// truncated text and the outcome is marked degraded. Failures to tokenize
// or to generate unchunked text are returned as model.ErrModelUnavailable.
// Cancellation returns the context error and leaves the cache untouched.
func (s *Summarizer) Summarize(
	ctx context.Context, text string, maxLen, minLen int,
) (outcome.Outcome[string], error) {
	key := cache.SummaryKey(text, Method, maxLen, minLen)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if summary, ok := v.(string); ok {
				return outcome.Cached(summary), nil
			}
		}
	}

	tokens, err := s.model.CountTokens(ctx, text)
	if err != nil {
		return outcome.Outcome[string]{}, err
	}

	var (
		summary  string
		degraded = fn.None[error]()
	)
	if tokens <= s.model.MaxInputLength() {
		summary, err = s.model.Generate(
			ctx, model.SummarizePrefix+text,
			model.DefaultConstraints(maxLen, minLen),
		)
		if err != nil {
			return outcome.Outcome[string]{}, err
		}
	} else {
		summary, degraded, err = s.summarizeChunked(
			ctx, text, maxLen, minLen,
		)
		if err != nil {
			return outcome.Outcome[string]{}, err
		}
	}

	summary = s.enforceBounds(summary, maxLen, minLen)

	if degraded.IsSome() {
		reason := degraded.UnwrapOr(ErrChunkFailed)
		return outcome.Degraded(summary, reason), nil
	}

	if s.cache != nil {
		s.cache.Set(key, summary)
	}

	return outcome.Clean(summary), nil
}

// summarizeChunked fans the chunks out to the model and joins the results
// in chunk order. If the combined text is still over maxLen tokens it is
// summarized once more.
func (s *Summarizer) summarizeChunked(
	ctx context.Context, text string, maxLen, minLen int,
) (string, fn.Option[error], error) {
	chunks, err := s.planChunks(ctx, text)
	if err != nil {
		return "", fn.None[error](), err
	}
	if len(chunks) == 0 {
		return "", fn.None[error](), fmt.Errorf(
			"%w: nothing to summarize", model.ErrModelUnavailable,
		)
	}

	n := len(chunks)
	chunkMax := max(minChunkMaxTokens, maxLen/n)
	chunkMin := max(minChunkMinTokens, minLen/n)

	s.log.Info("Summarizing in chunks",
		"chunks", n, "chunk_max_tokens", chunkMax,
		"chunk_min_tokens", chunkMin,
	)

	results := make([]fn.Result[string], n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for i, chunk := range chunks {
		g.Go(func() error {
			out, err := s.model.Generate(
				gctx, model.SummarizePrefix+chunk,
				model.DefaultConstraints(chunkMax, chunkMin),
			)
			if err != nil {
				// Only cancellation aborts the group; model
				// failures are handled per chunk.
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i] = fn.Err[string](err)

				return nil
			}
			results[i] = fn.Ok(out)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fn.None[error](), err
	}
	if err := ctx.Err(); err != nil {
		return "", fn.None[error](), err
	}

	var (
		parts  = make([]string, n)
		failed []error
	)
	for i, res := range results {
		out, err := res.Unpack()
		if err != nil {
			s.log.Warn("Chunk generation failed, keeping raw text",
				"chunk", i, "error", err,
			)
			failed = append(failed, fmt.Errorf("chunk %d: %w", i, err))
			out = lexical.TruncateWords(
				chunks[i], chunkMax*model.CharsPerToken,
			)
		}
		parts[i] = out
	}
	combined := strings.Join(parts, " ")

	degraded := fn.None[error]()
	if len(failed) > 0 {
		degraded = fn.Some(fmt.Errorf("%w: %w", ErrChunkFailed,
			errors.Join(failed...)))
	}

	combinedTokens, err := s.model.CountTokens(ctx, combined)
	if err != nil {
		return "", fn.None[error](), err
	}
	if combinedTokens <= maxLen {
		return combined, degraded, nil
	}

	final, err := s.model.Generate(
		ctx, model.SummarizePrefix+combined,
		model.DefaultConstraints(maxLen, minLen),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fn.None[error](), ctxErr
		}

		s.log.Warn("Final pass failed, keeping combined chunks",
			"error", err,
		)
		if degraded.IsNone() {
			degraded = fn.Some(err)
		}

		return combined, degraded, nil
	}

	return final, degraded, nil
}

// planChunks splits text into chunks that each encode to at most the model
// window less the prompt reserve. The first character budget assumes
// model.CharsPerToken; whenever a chunk comes out over the token limit the
// budget shrinks in proportion and the text is chunked again.
func (s *Summarizer) planChunks(
	ctx context.Context, text string,
) ([]string, error) {
	limit := max(1, s.model.MaxInputLength()-s.cfg.PromptReserve)
	budget := limit * model.CharsPerToken

	var chunks []string
	for range maxRechunks {
		chunks = chunker.Create(text, budget)

		worst, err := s.maxChunkTokens(ctx, chunks)
		if err != nil {
			return nil, err
		}
		if worst <= limit {
			return chunks, nil
		}

		next := min(budget*limit/worst, budget-1)
		s.log.Debug("Chunk over token limit, shrinking budget",
			"tokens", worst, "limit", limit, "chars", budget,
			"next_chars", next,
		)
		if next < 1 {
			break
		}
		budget = next
	}

	// Sentences longer than the budget survive any re-chunking.
	var fitted []string
	for _, chunk := range chunks {
		pieces, err := s.splitChunk(ctx, chunk, limit)
		if err != nil {
			return nil, err
		}
		fitted = append(fitted, pieces...)
	}

	return fitted, nil
}

// maxChunkTokens returns the token count of the largest chunk.
func (s *Summarizer) maxChunkTokens(
	ctx context.Context, chunks []string,
) (int, error) {
	var worst int
	for _, chunk := range chunks {
		n, err := s.model.CountTokens(ctx, chunk)
		if err != nil {
			return 0, err
		}
		worst = max(worst, n)
	}

	return worst, nil
}

// splitChunk cuts chunk at word boundaries into pieces of at most limit
// tokens. A single word over the limit is cut into limit-rune pieces.
func (s *Summarizer) splitChunk(
	ctx context.Context, chunk string, limit int,
) ([]string, error) {
	n, err := s.model.CountTokens(ctx, chunk)
	if err != nil {
		return nil, err
	}
	if n <= limit {
		return []string{chunk}, nil
	}

	var (
		pieces  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			pieces = append(pieces, strings.Join(current, " "))
			current = nil
		}
	}

	for _, word := range strings.Fields(chunk) {
		candidate := strings.Join(append(current, word), " ")
		n, err := s.model.CountTokens(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if n <= limit {
			current = append(current, word)
			continue
		}

		flush()

		n, err = s.model.CountTokens(ctx, word)
		if err != nil {
			return nil, err
		}
		if n <= limit {
			current = []string{word}
			continue
		}

		runes := []rune(word)
		for start := 0; start < len(runes); start += limit {
			end := min(start+limit, len(runes))
			pieces = append(pieces, string(runes[start:end]))
		}
	}
	flush()

	return pieces, nil
}

// enforceBounds applies the character safety net: results over twice
// maxLen characters are cut, short results are accepted with a log line.
func (s *Summarizer) enforceBounds(summary string, maxLen, minLen int) string {
	length := lexical.RuneLen(summary)

	switch {
	case length > 2*maxLen:
		s.log.Debug("Truncating long generation",
			"chars", length, "limit", 2*maxLen,
		)
		return lexical.TruncateWords(summary, 2*maxLen)

	case length < minLen:
		s.log.Info("Generated summary shorter than requested",
			"chars", length, "min_length", minLen,
		)
	}

	return summary
}
