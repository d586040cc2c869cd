package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/extractive"
	"github.com/roasbeef/resumo/internal/history"
	"github.com/roasbeef/resumo/internal/lexical"
	"github.com/roasbeef/resumo/internal/linguistic"
	"github.com/roasbeef/resumo/internal/model"
)

type memRecorder struct {
	mu   sync.Mutex
	recs []history.Record
}

func (m *memRecorder) Record(_ context.Context, rec history.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recs = append(m.recs, rec)
	return nil
}

func (m *memRecorder) all() []history.Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]history.Record(nil), m.recs...)
}

type testEngine struct {
	*Engine

	gen      *model.MockGenerator
	store    *cache.Store
	recorder *memRecorder
}

func newTestEngine(t *testing.T, gen *model.MockGenerator, cfg Config) *testEngine {
	t.Helper()

	analyzer, err := linguistic.NewAnalyzer(linguistic.Portuguese)
	require.NoError(t, err)

	store := cache.New(cache.DefaultConfig())
	handle := model.NewHandle(model.DefaultConfig(), model.MockLoader(gen), nil)
	rec := &memRecorder{}

	return &testEngine{
		Engine:   New(cfg, store, handle, analyzer, rec, nil),
		gen:      gen,
		store:    store,
		recorder: rec,
	}
}

// complexText has unique long words and long sentences.
func complexText(words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		fmt.Fprintf(&b, "extraordinaria%04d", i)
		if (i+1)%20 == 0 {
			b.WriteString(". ")
		} else {
			b.WriteString(" ")
		}
	}

	return lexical.EnsureTerminal(strings.TrimSpace(b.String()))
}

// simpleText repeats one short sentence.
func simpleText() string {
	return strings.Repeat("A casa é boa. ", 10)
}

// middlingText lands between the complexity thresholds: every sentence
// appears twice, with ten six letter words each.
func middlingText() string {
	sentences := make([]string, 4)
	for i := range sentences {
		words := make([]string, 10)
		for j := range words {
			words[j] = fmt.Sprintf("pal%03d", i*10+j)
		}
		sentences[i] = strings.Join(words, " ") + "."
	}

	all := append(sentences, sentences...)
	return strings.Join(all, " ")
}

// article is a long Portuguese news text of about 1200 words.
func article() string {
	topics := []string{
		"economia", "saúde", "educação", "transporte", "energia",
		"agricultura", "tecnologia", "cultura",
	}

	var sentences []string
	for i := 0; len(strings.Fields(strings.Join(sentences, " "))) < 1200; i++ {
		topic := topics[i%len(topics)]
		sentences = append(sentences, fmt.Sprintf(
			"O relatório número %d sobre %s mostra que o governo "+
				"ampliou os investimentos regionais e que os "+
				"resultados ainda dependem da execução dos "+
				"programas municipais.", i, topic,
		))
	}

	return strings.Join(sentences, " ")
}

func TestComplexity(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1.0, Complexity(lexical.Analysis{
		LexicalDensity:      1,
		AvgWordsPerSentence: 20,
		AvgWordLength:       8,
	}), 1e-9)
	require.Zero(t, Complexity(lexical.Analysis{}))

	require.Greater(t, Complexity(lexical.Analyze(complexText(40))), 0.6)
	require.Less(t, Complexity(lexical.Analyze(simpleText())), 0.4)

	c := Complexity(lexical.Analyze(middlingText()))
	require.Greater(t, c, 0.4)
	require.Less(t, c, 0.6)
}

func TestDecide(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())

	tests := []struct {
		name       string
		words      int
		complexity float64
		want       decision
	}{
		{"short complex", 100, 0.7, decideAbstractive},
		{"threshold complex", 500, 0.61, decideAbstractive},
		{"medium complex", 700, 0.7, decideBoth},
		{"long complex", 1000, 0.9, decideExtractive},
		{"short simple", 100, 0.3, decideExtractive},
		{"short middling", 100, 0.5, decideBoth},
		{"exactly high", 100, 0.6, decideBoth},
		{"exactly low", 100, 0.4, decideBoth},
	}
	for _, tc := range tests {
		a := lexical.Analysis{WordCount: tc.words}
		require.Equal(t, tc.want, e.decide(a, tc.complexity), tc.name)
	}
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Method{
		"":            MethodAuto,
		"auto":        MethodAuto,
		" Extractive": MethodExtractive,
		"ABSTRACTIVE": MethodAbstractive,
	} {
		got, err := ParseMethod(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseMethod("hybrid")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestSummarizeRejects(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())
	ctx := context.Background()

	_, err := e.Summarize(ctx, Request{Text: "  ", Method: MethodAuto})
	require.ErrorIs(t, err, ErrEmptyText)

	_, err = e.Summarize(ctx, Request{Text: simpleText(), Method: "x"})
	require.ErrorIs(t, err, ErrUnknownMethod)
}

// TestAutoShortComplexGenerates verifies short complex text goes to the
// model and that the answer is cached under the auto key.
func TestAutoShortComplexGenerates(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())
	ctx := context.Background()
	text := complexText(40)

	res, err := e.SummarizeAuto(ctx, text, 150, 30)
	require.NoError(t, err)
	require.Equal(t, MethodAbstractive, res.Method)
	require.False(t, res.Cached)
	require.True(t, res.Quality.IsSome())
	require.True(t, res.Analysis.IsSome())
	require.True(t, res.Degraded.IsNone())
	require.Equal(t, 1, e.gen.Calls())

	again, err := e.SummarizeAuto(ctx, text, 150, 30)
	require.NoError(t, err)
	require.True(t, again.Cached)
	require.Equal(t, res.Summary, again.Summary)
	require.Equal(t, MethodAbstractive, again.Method)
	require.True(t, again.Quality.IsNone())
	require.Equal(t, 1, e.gen.Calls())

	// Only the fresh result is recorded.
	recs := e.recorder.all()
	require.Len(t, recs, 1)
	require.Equal(t, "auto", recs[0].Requested)
	require.Equal(t, "abstractive", recs[0].Method)
	require.Equal(t, cache.TextDigest(text), recs[0].TextDigest)
}

func TestAutoLongTextExtracts(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())

	res, err := e.SummarizeAuto(
		context.Background(), complexText(1000), 150, 30,
	)
	require.NoError(t, err)
	require.Equal(t, MethodExtractive, res.Method)
	require.Zero(t, e.gen.Calls())
}

func TestAutoSimpleTextExtracts(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())

	res, err := e.SummarizeAuto(context.Background(), simpleText(), 150, 30)
	require.NoError(t, err)
	require.Equal(t, MethodExtractive, res.Method)
	require.NotEmpty(t, res.Summary)
	require.Zero(t, e.gen.Calls())
}

// TestAutoCompeteTieBreak runs both strategies on text where the model
// echoes the extractive summary, so the tie-break decides.
func TestAutoCompeteTieBreak(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	text := middlingText()

	ref := extractive.NewSummarizer(extractive.DefaultConfig(), nil, nil, nil)
	want, err := ref.Summarize(ctx, text, 150, 30)
	require.NoError(t, err)

	echo := func(string, model.Constraints) string {
		return want.Value()
	}

	for _, tieBreak := range []Method{MethodExtractive, MethodAbstractive} {
		cfg := DefaultConfig()
		cfg.TieBreak = tieBreak

		e := newTestEngine(t, &model.MockGenerator{Respond: echo}, cfg)

		res, err := e.SummarizeAuto(ctx, text, 150, 30)
		require.NoError(t, err)
		require.Equal(t, tieBreak, res.Method)
		require.Equal(t, want.Value(), res.Summary)
		require.True(t, res.Quality.IsSome())
		require.Equal(t, 1, e.gen.Calls())
	}
}

// TestAutoFallsBackWhenModelFails verifies every model dependent branch
// degrades to the extractive summary and that degraded results are
// neither cached nor hidden from history.
func TestAutoFallsBackWhenModelFails(t *testing.T) {
	t.Parallel()

	boom := errors.New("backend down")
	fail := func(string) error { return boom }

	for name, text := range map[string]string{
		"abstractive": complexText(40),
		"both":        middlingText(),
	} {
		e := newTestEngine(t, &model.MockGenerator{Fail: fail}, DefaultConfig())
		ctx := context.Background()

		res, err := e.SummarizeAuto(ctx, text, 150, 30)
		require.NoError(t, err, name)
		require.Equal(t, MethodExtractive, res.Method, name)
		require.NotEmpty(t, res.Summary, name)
		require.True(t, res.Degraded.IsSome(), name)

		again, err := e.SummarizeAuto(ctx, text, 150, 30)
		require.NoError(t, err, name)
		require.False(t, again.Cached, name)
		require.Equal(t, 2, e.gen.Calls(), name)

		recs := e.recorder.all()
		require.Len(t, recs, 2, name)
		require.True(t, recs[0].Degraded, name)
		require.NotEmpty(t, recs[0].DegradedReason, name)
	}
}

func TestAbstractiveFailureIsReturned(t *testing.T) {
	t.Parallel()

	fail := func(string) error { return errors.New("backend down") }
	e := newTestEngine(t, &model.MockGenerator{Fail: fail}, DefaultConfig())

	_, err := e.Summarize(context.Background(), Request{
		Text:      complexText(40),
		Method:    MethodAbstractive,
		MaxLength: 150,
		MinLength: 30,
	})
	require.ErrorIs(t, err, model.ErrModelUnavailable)
}

func TestAutoCancelled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.SummarizeAuto(ctx, complexText(40), 150, 30)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, e.recorder.all())
}

// TestArticleEndToEnd summarizes a long article twice; the second answer
// comes from the cache unchanged.
func TestArticleEndToEnd(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())
	ctx := context.Background()
	text := article()

	first, err := e.Summarize(ctx, Request{
		Text: text, Method: MethodAuto, MaxLength: 200, MinLength: 50,
	})
	require.NoError(t, err)
	require.Contains(t,
		[]Method{MethodExtractive, MethodAbstractive}, first.Method,
	)
	require.False(t, first.Cached)
	require.NotEmpty(t, first.Summary)
	require.LessOrEqual(t,
		lexical.RuneLen(first.Summary), 200+len(lexical.Ellipsis),
	)

	second, err := e.Summarize(ctx, Request{
		Text: text, Method: MethodAuto, MaxLength: 200, MinLength: 50,
	})
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Summary, second.Summary)
	require.Equal(t, first.Method, second.Method)
}

func TestInvalidateCache(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())
	ctx := context.Background()
	text := simpleText()

	res, err := e.SummarizeAuto(ctx, text, 150, 30)
	require.NoError(t, err)

	require.Zero(t, e.InvalidateCache("texto que não existe"))
	require.Positive(t, e.InvalidateCache("casa"))

	again, err := e.SummarizeAuto(ctx, text, 150, 30)
	require.NoError(t, err)
	require.False(t, again.Cached)
	require.Equal(t, res.Summary, again.Summary)

	e.CacheClear()
	require.Zero(t, e.CacheStats().Size)
}

func TestModelLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())
	require.False(t, e.ModelStatus().Loaded)

	_, err := e.SummarizeAbstractive(
		context.Background(), complexText(40), 150, 30,
	)
	require.NoError(t, err)
	require.True(t, e.ModelStatus().Loaded)

	require.NoError(t, e.UnloadModel())
	require.False(t, e.ModelStatus().Loaded)
}

func TestResponse(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &model.MockGenerator{}, DefaultConfig())
	res, err := e.SummarizeAuto(context.Background(), simpleText(), 150, 30)
	require.NoError(t, err)

	resp := res.Response()
	require.Equal(t, res.Summary, resp.Summary)
	require.NotNil(t, resp.Quality)
	require.NotNil(t, resp.Analysis)
	require.False(t, resp.Degraded)

	cached, err := e.SummarizeAuto(context.Background(), simpleText(), 150, 30)
	require.NoError(t, err)

	resp = cached.Response()
	require.True(t, resp.Cached)
	require.Nil(t, resp.Quality)
	require.Nil(t, resp.Analysis)
}
