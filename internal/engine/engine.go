// Package engine is the summarization entry point. It owns the strategy
// choice for auto requests, quality arbitration between strategies, the
// shared result cache and the model lifecycle.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/roasbeef/resumo/internal/abstractive"
	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/extractive"
	"github.com/roasbeef/resumo/internal/history"
	"github.com/roasbeef/resumo/internal/lexical"
	"github.com/roasbeef/resumo/internal/linguistic"
	"github.com/roasbeef/resumo/internal/model"
	"github.com/roasbeef/resumo/internal/outcome"
	"github.com/roasbeef/resumo/internal/quality"
)

const (
	// DefaultAbstractiveThreshold is the largest word count auto mode
	// sends straight to the model.
	DefaultAbstractiveThreshold = 500

	// DefaultExtractiveThreshold is the word count from which auto mode
	// always extracts.
	DefaultExtractiveThreshold = 1000
)

// Config holds configuration for the Engine.
type Config struct {
	// AbstractiveThreshold is the largest word count that auto mode
	// generates for when the text is complex.
	AbstractiveThreshold int

	// ExtractiveThreshold is the word count from which auto mode always
	// extracts.
	ExtractiveThreshold int

	// TieBreak wins when both strategies score the same in auto mode.
	TieBreak Method

	// RankWithStems replaces the built-in extractive score order with
	// stem-frequency ranking.
	RankWithStems bool

	// Extractive configures the extractive summarizer.
	Extractive extractive.Config

	// Abstractive configures the generative summarizer.
	Abstractive abstractive.Config
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AbstractiveThreshold: DefaultAbstractiveThreshold,
		ExtractiveThreshold:  DefaultExtractiveThreshold,
		TieBreak:             MethodExtractive,
		Extractive:           extractive.DefaultConfig(),
		Abstractive:          abstractive.DefaultConfig(),
	}
}

// Recorder persists a line of summary history.
type Recorder interface {
	Record(ctx context.Context, rec history.Record) error
}

// Engine summarizes text. It is safe for concurrent use; the cache and the
// model handle are the only shared state.
type Engine struct {
	cfg Config

	cache       *cache.Store
	model       *model.Handle
	extractive  *extractive.Summarizer
	abstractive *abstractive.Summarizer
	evaluator   *quality.Evaluator
	recorder    Recorder

	log *slog.Logger
}

// New creates an Engine. The recorder may be nil.
func New(
	cfg Config, store *cache.Store, handle *model.Handle,
	analyzer *linguistic.Analyzer, recorder Recorder, log *slog.Logger,
) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cfg.TieBreak == "" {
		cfg.TieBreak = MethodExtractive
	}

	var ranker extractive.Ranker
	if cfg.RankWithStems {
		ranker = analyzer
	}

	return &Engine{
		cfg:   cfg,
		cache: store,
		model: handle,
		extractive: extractive.NewSummarizer(
			cfg.Extractive, store, ranker, log,
		),
		abstractive: abstractive.NewSummarizer(
			cfg.Abstractive, handle, store, log,
		),
		evaluator: quality.NewEvaluator(analyzer, store, log),
		recorder:  recorder,
		log:       log.With("component", "engine"),
	}
}

// Summarize dispatches req to the strategy it names.
func (e *Engine) Summarize(
	ctx context.Context, req Request,
) (SummaryResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return SummaryResult{}, ErrEmptyText
	}

	switch req.Method {
	case MethodAuto, "":
		return e.SummarizeAuto(
			ctx, req.Text, req.MaxLength, req.MinLength,
		)

	case MethodExtractive:
		return e.SummarizeExtractive(
			ctx, req.Text, req.MaxLength, req.MinLength,
		)

	case MethodAbstractive:
		return e.SummarizeAbstractive(
			ctx, req.Text, req.MaxLength, req.MinLength,
		)

	default:
		return SummaryResult{}, fmt.Errorf("%w: %q", ErrUnknownMethod,
			req.Method)
	}
}

// SummarizeExtractive summarizes text by sentence selection.
func (e *Engine) SummarizeExtractive(
	ctx context.Context, text string, maxLen, minLen int,
) (SummaryResult, error) {
	out, err := e.extractive.Summarize(ctx, text, maxLen, minLen)
	if err != nil {
		return SummaryResult{}, err
	}

	return e.finish(
		ctx, text, MethodExtractive, MethodExtractive, out,
		fn.None[lexical.Analysis](), fn.None[quality.Report](),
	), nil
}

// SummarizeAbstractive summarizes text with the model. Model failures are
// returned; there is no fallback.
func (e *Engine) SummarizeAbstractive(
	ctx context.Context, text string, maxLen, minLen int,
) (SummaryResult, error) {
	out, err := e.abstractive.Summarize(ctx, text, maxLen, minLen)
	if err != nil {
		return SummaryResult{}, err
	}

	return e.finish(
		ctx, text, MethodAbstractive, MethodAbstractive, out,
		fn.None[lexical.Analysis](), fn.None[quality.Report](),
	), nil
}

// SummarizeAuto picks a strategy from the text's size and complexity,
// running both and keeping the better one when the rules are
// inconclusive. Model failures never abort an auto request: the
// extractive summary is used instead and the result is marked degraded.
func (e *Engine) SummarizeAuto(
	ctx context.Context, text string, maxLen, minLen int,
) (SummaryResult, error) {
	key := cache.SummaryKey(text, string(MethodAuto), maxLen, minLen)
	if v, ok := e.cache.Get(key); ok {
		if entry, ok := v.(autoEntry); ok {
			return SummaryResult{
				Summary: entry.Summary,
				Method:  entry.Method,
				Cached:  true,
			}, nil
		}
	}

	analysis := e.analyze(text)
	complexity := Complexity(analysis)
	d := e.decide(analysis, complexity)

	e.log.Info("Auto strategy selected",
		"words", analysis.WordCount, "complexity", complexity,
		"strategy", d,
	)

	var (
		method Method
		out    outcome.Outcome[string]
		report = fn.None[quality.Report]()
		err    error
	)
	switch d {
	case decideExtractive:
		method = MethodExtractive
		out, err = e.extractive.Summarize(ctx, text, maxLen, minLen)

	case decideAbstractive:
		method, out, err = e.generateOrExtract(ctx, text, maxLen, minLen)

	case decideBoth:
		method, out, report, err = e.compete(ctx, text, maxLen, minLen)
	}
	if err != nil {
		return SummaryResult{}, err
	}

	res := e.finish(
		ctx, text, MethodAuto, method, fresh(out),
		fn.Some(analysis), report,
	)

	if res.Degraded.IsNone() {
		e.cache.Set(key, autoEntry{Summary: res.Summary, Method: method})
	}

	return res, nil
}

// generateOrExtract runs the model and falls back to extraction when it
// fails for any reason other than cancellation.
func (e *Engine) generateOrExtract(
	ctx context.Context, text string, maxLen, minLen int,
) (Method, outcome.Outcome[string], error) {
	out, err := e.abstractive.Summarize(ctx, text, maxLen, minLen)
	if err == nil {
		return MethodAbstractive, out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", out, ctxErr
	}

	e.log.Warn("Generation failed, falling back to extractive",
		"error", err,
	)

	ext, extErr := e.extractive.Summarize(ctx, text, maxLen, minLen)
	if extErr != nil {
		return "", ext, extErr
	}

	return MethodExtractive, outcome.Degraded(ext.Value(), err), nil
}

// compete runs both strategies and keeps the higher scoring summary. The
// configured tie-break wins equal scores.
func (e *Engine) compete(
	ctx context.Context, text string, maxLen, minLen int,
) (Method, outcome.Outcome[string], fn.Option[quality.Report], error) {
	none := fn.None[quality.Report]()

	ext, err := e.extractive.Summarize(ctx, text, maxLen, minLen)
	if err != nil {
		return "", ext, none, err
	}

	abs, err := e.abstractive.Summarize(ctx, text, maxLen, minLen)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", abs, none, ctxErr
		}

		e.log.Warn("Generation failed, keeping extractive summary",
			"error", err,
		)

		return MethodExtractive, outcome.Degraded(ext.Value(), err),
			none, nil
	}

	extReport := e.evaluator.Evaluate(text, ext.Value())
	absReport := e.evaluator.Evaluate(text, abs.Value())

	e.log.Debug("Strategies compared",
		"extractive_score", extReport.OverallScore,
		"abstractive_score", absReport.OverallScore,
	)

	absWins := absReport.OverallScore > extReport.OverallScore ||
		(absReport.OverallScore == extReport.OverallScore &&
			e.cfg.TieBreak == MethodAbstractive)
	if absWins {
		return MethodAbstractive, abs, fn.Some(absReport), nil
	}

	return MethodExtractive, ext, fn.Some(extReport), nil
}

// finish builds the result for a computed outcome, scoring and recording
// it unless it came from the cache.
func (e *Engine) finish(
	ctx context.Context, text string, requested, method Method,
	out outcome.Outcome[string], analysis fn.Option[lexical.Analysis],
	report fn.Option[quality.Report],
) SummaryResult {
	res := SummaryResult{
		Summary:  out.Value(),
		Method:   method,
		Cached:   out.FromCache(),
		Quality:  fn.None[quality.Report](),
		Analysis: analysis,
		Degraded: out.ReasonText(),
	}
	if res.Cached {
		return res
	}

	if report.IsNone() {
		report = fn.Some(e.evaluator.Evaluate(text, res.Summary))
	}
	res.Quality = report

	res.Degraded.WhenSome(func(reason string) {
		e.log.Warn("Returning degraded summary",
			"method", method, "reason", reason,
		)
	})

	e.record(ctx, text, requested, res)

	return res
}

// record appends the result to the history. Failures are logged only.
func (e *Engine) record(
	ctx context.Context, text string, requested Method, res SummaryResult,
) {
	if e.recorder == nil {
		return
	}

	rec := history.Record{
		Requested:    string(requested),
		Method:       string(res.Method),
		TextDigest:   cache.TextDigest(text),
		InputChars:   lexical.RuneLen(text),
		SummaryChars: lexical.RuneLen(res.Summary),
		CreatedAt:    time.Now(),
	}
	res.Quality.WhenSome(func(r quality.Report) {
		rec.OverallScore = r.OverallScore
	})
	res.Degraded.WhenSome(func(reason string) {
		rec.Degraded = true
		rec.DegradedReason = reason
	})

	err := e.recorder.Record(context.WithoutCancel(ctx), rec)
	if err != nil {
		e.log.Warn("Failed to record summary history", "error", err)
	}
}

// analyze returns the memoized lexical analysis of text.
func (e *Engine) analyze(text string) lexical.Analysis {
	a, _, _ := cache.WithCache(
		e.cache, cache.AnalysisKey(text),
		func() (lexical.Analysis, error) {
			return lexical.Analyze(text), nil
		},
	)

	return a
}

// fresh drops the cache provenance of an inner result; the inner
// summarizers cache under their own keys, which says nothing about the
// request being answered.
func fresh(o outcome.Outcome[string]) outcome.Outcome[string] {
	if o.IsDegraded() {
		return outcome.Degraded(o.Value(), o.Reason().UnwrapOr(nil))
	}

	return outcome.Clean(o.Value())
}

// CacheStats returns a snapshot of the shared cache.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// CacheClear drops every cached entry.
func (e *Engine) CacheClear() {
	e.cache.Clear()
	e.log.Info("Cache cleared")
}

// InvalidateCache drops entries whose cached text contains pattern and
// returns how many were removed.
func (e *Engine) InvalidateCache(pattern string) int {
	n := e.cache.InvalidateMatching(pattern)
	e.log.Info("Cache entries invalidated", "pattern", pattern, "removed", n)

	return n
}

// ModelStatus reports the model handle state.
func (e *Engine) ModelStatus() model.Status {
	return e.model.Status()
}

// UnloadModel releases the model. The next generative request loads it
// again.
func (e *Engine) UnloadModel() error {
	return e.model.Unload()
}
