package quality

import (
	"testing"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/linguistic"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const article = "O banco central elevou a taxa de juros pela terceira vez " +
	"neste ano. A decisão busca conter a inflação, que segue acima da " +
	"meta. Economistas avaliam que novos aumentos podem ocorrer. O " +
	"mercado financeiro reagiu com cautela ao anúncio."

func newTestEvaluator(t *testing.T) *Evaluator {
	analyzer, err := linguistic.NewAnalyzer(linguistic.Portuguese)
	require.NoError(t, err)

	return NewEvaluator(analyzer, cache.New(cache.DefaultConfig()), nil)
}

func TestWeightsSumToOne(t *testing.T) {
	t.Parallel()

	sum := KeywordWeight + ContentWeight + InformativenessWeight +
		FluencyWeight + PunctuationWeight
	require.InDelta(t, 1.0, sum, 1e-9)
}

// TestEvaluateIdentity verifies a summary equal to its source has full
// coverage and a compression ratio of one.
func TestEvaluateIdentity(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator(t)
	r := e.Evaluate(article, article)

	require.InDelta(t, 1.0, r.ContentCoverage, 1e-9)
	require.InDelta(t, 1.0, r.KeywordCoverage, 1e-9)
	require.InDelta(t, 1.0, r.CompressionRatio, 1e-9)
	require.InDelta(t, 1.0, r.Informativeness, 1e-9)
	require.InDelta(t, 1.0, r.PunctuationScore, 1e-9)
}

// TestEvaluateEmpty verifies an empty summary scores zero everywhere.
func TestEvaluateEmpty(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator(t)
	r := e.Evaluate(article, "")

	require.Equal(t, Report{}, r)
}

func TestEvaluatePartial(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator(t)
	summary := "O banco central elevou a taxa de juros para conter a " +
		"inflação."
	r := e.Evaluate(article, summary)

	require.Greater(t, r.ContentCoverage, 0.1)
	require.Less(t, r.ContentCoverage, 1.0)
	require.Less(t, r.CompressionRatio, 0.5)
	require.InDelta(t, 2*r.CompressionRatio, r.Informativeness, 1e-9)
	require.Greater(t, r.OverallScore, 0.0)

	// The second evaluation is served from the cache.
	require.Equal(t, r, e.Evaluate(article, summary))
	require.Equal(t, 1, e.cache.Stats().Size)
}

// TestCompressionIgnoresNoise verifies the compression ratio is measured on
// preprocessed text, so symbols and layout in the source do not count.
func TestCompressionIgnoresNoise(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator(t)
	noisy := "A casa é boa.\n\n  ###### ****** ~~~~~~"
	r := e.Evaluate(noisy, "A casa é boa.")

	require.InDelta(t, 1.0, r.CompressionRatio, 1e-9)
	require.InDelta(t, 1.0, r.Informativeness, 1e-9)
}

func TestPunctuation(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1.0, punctuation("Uma frase. Outra frase."))
	require.Equal(t, 0.5, punctuation("Uma frase. Outra frase"))
	require.Equal(t, 0.75, punctuation("Uma frase. outra frase."))
	require.Equal(t, 0.0, punctuation(""))
}

// TestEvaluateBounds checks every component stays in [0, 1] for arbitrary
// summaries.
func TestEvaluateBounds(t *testing.T) {
	t.Parallel()

	e := newTestEvaluator(t)
	rapid.Check(t, func(t *rapid.T) {
		summary := rapid.StringMatching(
			`[A-Za-zçãé .,!?]{0,200}`,
		).Draw(t, "summary")

		r := e.Evaluate(article, summary)
		for _, v := range []float64{
			r.KeywordCoverage, r.ContentCoverage, r.Informativeness,
			r.Fluency, r.PunctuationScore, r.OverallScore,
		} {
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 1.0+1e-9)
		}
	})
}
