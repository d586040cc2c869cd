package abstractive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/chunker"
	"github.com/roasbeef/resumo/internal/lexical"
	"github.com/roasbeef/resumo/internal/model"
	"github.com/stretchr/testify/require"
)

// longDocument builds n unique sentences. With a 100 token window the
// chunker packs them three to a chunk with one sentence of overlap.
func longDocument(n int) string {
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = fmt.Sprintf(
			"Frase %d fala sobre economia governo e mercado "+
				"financeiro", i,
		)
	}

	return strings.Join(sentences, ". ") + "."
}

// firstSentence answers every prompt with the first sentence of its text,
// which identifies the chunk.
func firstSentence(prompt string, _ model.Constraints) string {
	text := strings.TrimPrefix(prompt, model.SummarizePrefix)
	return lexical.SplitSentences(text)[0] + "."
}

// sentenceIndex parses the number of the first sentence of a prompt.
func sentenceIndex(prompt string) int {
	var idx int
	_, _ = fmt.Sscanf(
		strings.TrimPrefix(prompt, model.SummarizePrefix), "Frase %d", &idx,
	)
	return idx
}

type harness struct {
	gen        *model.MockGenerator
	store      *cache.Store
	summarizer *Summarizer
}

func newHarness(gen *model.MockGenerator, maxInput int) *harness {
	handle := model.NewHandle(
		model.Config{ModelIdentifier: "mock", MaxInputLength: maxInput},
		model.MockLoader(gen), nil,
	)
	store := cache.New(cache.DefaultConfig())

	return &harness{
		gen:   gen,
		store: store,
		summarizer: NewSummarizer(
			DefaultConfig(), handle, store, nil,
		),
	}
}

// TestSummarizeShortText verifies a single generation for text that fits
// the window, and that the result is cached.
func TestSummarizeShortText(t *testing.T) {
	t.Parallel()

	h := newHarness(&model.MockGenerator{}, 512)
	text := "O governo anunciou medidas. O mercado reagiu bem. " +
		"Analistas seguem cautelosos."

	got, err := h.summarizer.Summarize(context.Background(), text, 150, 30)
	require.NoError(t, err)
	require.False(t, got.IsDegraded())
	require.Equal(t,
		"O governo anunciou medidas. O mercado reagiu bem.", got.Value(),
	)
	require.Equal(t, 1, h.gen.Calls())

	again, err := h.summarizer.Summarize(
		context.Background(), text, 150, 30,
	)
	require.NoError(t, err)
	require.True(t, again.FromCache())
	require.Equal(t, 1, h.gen.Calls())
}

// TestSummarizeChunkOrder injects latency that makes later chunks finish
// first and checks the output is still assembled in chunk order.
func TestSummarizeChunkOrder(t *testing.T) {
	t.Parallel()

	gen := &model.MockGenerator{
		Respond: firstSentence,
		Delay: func(prompt string) time.Duration {
			return time.Duration(40-sentenceIndex(prompt)) *
				time.Millisecond
		},
	}
	h := newHarness(gen, 100)

	got, err := h.summarizer.Summarize(
		context.Background(), longDocument(20), 1000, 30,
	)
	require.NoError(t, err)
	require.False(t, got.IsDegraded())

	// Chunk 0 opens with sentence 0, every later chunk k with 2k.
	var want []string
	for k := 0; k < 10; k++ {
		want = append(want, fmt.Sprintf(
			"Frase %d fala sobre economia governo e mercado "+
				"financeiro.", 2*k,
		))
	}
	require.Equal(t, strings.Join(want, " "), got.Value())
	require.Equal(t, 10, gen.Calls())
	require.LessOrEqual(t, gen.PeakConcurrency(), DefaultMaxConcurrent)
}

// TestSummarizeFinalPass verifies a second pass runs when the combined
// chunk summaries exceed the token budget.
func TestSummarizeFinalPass(t *testing.T) {
	t.Parallel()

	gen := &model.MockGenerator{Respond: firstSentence}
	h := newHarness(gen, 100)

	got, err := h.summarizer.Summarize(
		context.Background(), longDocument(20), 100, 30,
	)
	require.NoError(t, err)
	require.Equal(t, 11, gen.Calls())
	require.Equal(t,
		"Frase 0 fala sobre economia governo e mercado financeiro.",
		got.Value(),
	)
}

// TestSummarizeChunkFailure verifies a failing chunk is replaced by its raw
// text, the outcome is degraded, and nothing is cached.
func TestSummarizeChunkFailure(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("broken chunk")
	gen := &model.MockGenerator{
		Respond: firstSentence,
		Fail: func(prompt string) error {
			if strings.HasPrefix(
				prompt, model.SummarizePrefix+"Frase 6 ",
			) {
				return errBroken
			}
			return nil
		},
	}
	h := newHarness(gen, 100)

	got, err := h.summarizer.Summarize(
		context.Background(), longDocument(20), 1000, 30,
	)
	require.NoError(t, err)
	require.True(t, got.IsDegraded())
	require.ErrorIs(t, got.Reason().UnwrapOr(nil), ErrChunkFailed)
	require.ErrorIs(t, got.Reason().UnwrapOr(nil), errBroken)

	// Chunk 3 holds sentences 6 through 8 verbatim.
	require.Contains(t, got.Value(), "Frase 8 fala sobre")
	require.Zero(t, h.store.Stats().Size)
}

// TestSummarizeDirectFailure verifies unchunked generation errors surface as
// model unavailability.
func TestSummarizeDirectFailure(t *testing.T) {
	t.Parallel()

	gen := &model.MockGenerator{
		Fail: func(string) error { return errors.New("oom") },
	}
	h := newHarness(gen, 512)

	_, err := h.summarizer.Summarize(
		context.Background(), "Texto curto. Outra frase.", 150, 30,
	)
	require.ErrorIs(t, err, model.ErrModelUnavailable)
}

// TestSummarizeCancelled verifies cancellation aborts in-flight chunks and
// leaves the cache untouched.
func TestSummarizeCancelled(t *testing.T) {
	t.Parallel()

	gen := &model.MockGenerator{
		Delay: func(string) time.Duration { return time.Minute },
	}
	h := newHarness(gen, 100)

	ctx, cancel := context.WithTimeout(
		context.Background(), 20*time.Millisecond,
	)
	defer cancel()

	_, err := h.summarizer.Summarize(ctx, longDocument(20), 1000, 30)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Zero(t, h.store.Stats().Size)
}

// TestSummarizeSafetyNet verifies over-long generations are cut to twice
// the requested length.
func TestSummarizeSafetyNet(t *testing.T) {
	t.Parallel()

	gen := &model.MockGenerator{
		Respond: func(string, model.Constraints) string {
			return strings.Repeat("palavra ", 100)
		},
	}
	h := newHarness(gen, 512)

	got, err := h.summarizer.Summarize(
		context.Background(), "Texto curto. Outra frase.", 50, 10,
	)
	require.NoError(t, err)
	require.LessOrEqual(t,
		lexical.RuneLen(got.Value()), 100+len(lexical.Ellipsis),
	)
	require.True(t, strings.HasSuffix(got.Value(), lexical.Ellipsis))
}

// shortWordDocument builds n sentences of short words, which encode to
// fewer than model.CharsPerToken characters per token.
func shortWordDocument(n int) string {
	sentences := make([]string, n)
	for i := range sentences {
		sentences[i] = fmt.Sprintf("Eu vi o mar e a luz do sol no dia %d", i)
	}

	return strings.Join(sentences, ". ") + "."
}

func tokenCount(t *testing.T, text string) int {
	t.Helper()

	ids, err := model.NewApproxTokenizer().Encode(text)
	require.NoError(t, err)

	return len(ids)
}

// TestChunksFitTokenLimit verifies every chunk sent to the model stays
// within the window less the prompt reserve, even when the text has fewer
// characters per token than the initial estimate.
func TestChunksFitTokenLimit(t *testing.T) {
	t.Parallel()

	const (
		window = 100
		limit  = window - DefaultPromptReserve
	)
	doc := shortWordDocument(40)

	// Sized on characters alone, some chunk overshoots the limit.
	var overshoot bool
	for _, chunk := range chunker.Create(doc, limit*model.CharsPerToken) {
		overshoot = overshoot || tokenCount(t, chunk) > limit
	}
	require.True(t, overshoot)

	var (
		mu      sync.Mutex
		prompts []string
	)
	gen := &model.MockGenerator{
		Respond: func(prompt string, _ model.Constraints) string {
			mu.Lock()
			prompts = append(prompts, prompt)
			mu.Unlock()

			return "Resumo."
		},
	}
	h := newHarness(gen, window)

	_, err := h.summarizer.Summarize(context.Background(), doc, 1000, 30)
	require.NoError(t, err)
	require.NotEmpty(t, prompts)

	all := strings.Join(prompts, " ")
	for _, prompt := range prompts {
		chunk := strings.TrimPrefix(prompt, model.SummarizePrefix)
		require.LessOrEqual(t, tokenCount(t, chunk), limit, chunk)
	}
	for i := 0; i < 40; i++ {
		require.Contains(t, all, fmt.Sprintf("dia %d.", i))
	}
}

// TestSplitChunkOversizedSentence verifies a sentence longer than the limit
// is split at word boundaries.
func TestSplitChunkOversizedSentence(t *testing.T) {
	t.Parallel()

	h := newHarness(&model.MockGenerator{}, 100)
	sentence := strings.Repeat("sol e mar ", 30) + "fim."

	pieces, err := h.summarizer.splitChunk(
		context.Background(), sentence, 20,
	)
	require.NoError(t, err)
	require.Greater(t, len(pieces), 1)
	for _, piece := range pieces {
		require.LessOrEqual(t, tokenCount(t, piece), 20)
	}
	require.Equal(t, strings.Fields(sentence),
		strings.Fields(strings.Join(pieces, " ")))
}
