package extractive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/lexical"
	"github.com/roasbeef/resumo/internal/outcome"
)

// Method is the cache namespace of extractive summaries.
const Method = "extractive"

const (
	// DefaultTopKeywords is how many keywords drive sentence scoring.
	DefaultTopKeywords = 15

	// DefaultFallbackSentences is how many leading sentences are
	// returned when scoring fails.
	DefaultFallbackSentences = 3

	// DefaultMaxExtraSentences caps how many sentences are appended to
	// reach the minimum length.
	DefaultMaxExtraSentences = 2
)

// ErrScoringFailed wraps a recovered failure inside sentence scoring.
var ErrScoringFailed = errors.New("extractive scoring failed")

// Ranker is an external sentence ranker. When configured it replaces the
// built-in score order for selection.
type Ranker interface {
	RankSentences(document string) []string
}

// Config holds configuration for the extractive summarizer.
type Config struct {
	// TopKeywords is how many keywords drive sentence scoring.
	TopKeywords int

	// FallbackSentences is how many leading sentences a failed run
	// returns.
	FallbackSentences int

	// MaxExtraSentences caps the sentences appended to reach the
	// minimum length.
	MaxExtraSentences int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TopKeywords:       DefaultTopKeywords,
		FallbackSentences: DefaultFallbackSentences,
		MaxExtraSentences: DefaultMaxExtraSentences,
	}
}

// Summarizer selects the most salient sentences of a text.
type Summarizer struct {
	cfg    Config
	cache  *cache.Store
	ranker Ranker
	log    *slog.Logger
}

// NewSummarizer creates an extractive summarizer. The cache and ranker are
// optional.
func NewSummarizer(
	cfg Config, store *cache.Store, ranker Ranker, log *slog.Logger,
) *Summarizer {
	if log == nil {
		log = slog.Default()
	}

	defaults := DefaultConfig()
	if cfg.TopKeywords <= 0 {
		cfg.TopKeywords = defaults.TopKeywords
	}
	if cfg.FallbackSentences <= 0 {
		cfg.FallbackSentences = defaults.FallbackSentences
	}
	if cfg.MaxExtraSentences <= 0 {
		cfg.MaxExtraSentences = defaults.MaxExtraSentences
	}

	return &Summarizer{
		cfg:    cfg,
		cache:  store,
		ranker: ranker,
		log:    log.With("component", "extractive"),
	}
}

// Summarize condenses text to at most maxLen characters (plus an ellipsis
// when cut) by selecting its highest scoring sentences. A failure inside
// scoring yields a degraded outcome holding the first sentences of the
// text; degraded outcomes are not cached.
func (s *Summarizer) Summarize(
	ctx context.Context, text string, maxLen, minLen int,
) (outcome.Outcome[string], error) {
	if err := ctx.Err(); err != nil {
		return outcome.Outcome[string]{}, err
	}

	key := cache.SummaryKey(text, Method, maxLen, minLen)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			if summary, ok := v.(string); ok {
				return outcome.Cached(summary), nil
			}
		}
	}

	summary, err := s.summarize(text, maxLen, minLen)
	if err != nil {
		s.log.Warn("Extractive scoring failed, using leading sentences",
			"error", err,
		)

		return outcome.Degraded(s.leadingSentences(text), err), nil
	}

	if s.cache != nil {
		s.cache.Set(key, summary)
	}

	return outcome.Clean(summary), nil
}

// summarize runs the scoring pipeline, converting a panic anywhere inside
// it into ErrScoringFailed.
func (s *Summarizer) summarize(
	text string, maxLen, minLen int,
) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrScoringFailed, r)
		}
	}()

	processed := lexical.Preprocess(text)
	sentences := lexical.SplitSentences(processed)
	if len(sentences) < 2 {
		return lexical.TruncateRunes(processed, maxLen), nil
	}

	keywords := lexical.KeywordSet(
		lexical.ExtractKeywords(processed, s.cfg.TopKeywords),
	)
	scored := scoreSentences(sentences, keywords)

	var order []ScoredSentence
	if s.ranker != nil {
		order = byRanking(scored, s.ranker.RankSentences(processed))
	} else {
		order = byScore(scored)
	}

	target := targetCount(maxLen, len(sentences))
	selected := append([]ScoredSentence(nil), order[:target]...)
	summary = assemble(selected)

	switch {
	case lexical.RuneLen(summary) > maxLen:
		summary = lexical.TruncateWords(summary, maxLen)

	case lexical.RuneLen(summary) < minLen:
		summary = s.extend(selected, order[target:], maxLen, minLen)
	}

	s.log.Debug("Extractive summary built",
		"sentences", len(sentences), "selected", target,
		"chars", lexical.RuneLen(summary),
	)

	return summary, nil
}

// extend greedily adds the best remaining sentences until the summary
// reaches minLen, never letting it grow past maxLen.
func (s *Summarizer) extend(
	selected, remaining []ScoredSentence, maxLen, minLen int,
) string {
	summary := assemble(selected)

	var added int
	for _, cand := range remaining {
		if added == s.cfg.MaxExtraSentences ||
			lexical.RuneLen(summary) >= minLen {

			break
		}

		grown := append(selected[:len(selected):len(selected)], cand)
		candidate := assemble(grown)
		if lexical.RuneLen(candidate) > maxLen {
			continue
		}

		selected = grown
		summary = candidate
		added++
	}

	return summary
}

// leadingSentences is the fallback summary: the first few sentences of the
// raw text.
func (s *Summarizer) leadingSentences(text string) string {
	sentences := lexical.SplitSentences(text)
	if len(sentences) > s.cfg.FallbackSentences {
		sentences = sentences[:s.cfg.FallbackSentences]
	}

	return lexical.JoinSentences(sentences)
}
