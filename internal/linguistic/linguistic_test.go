package linguistic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewStemmer(t *testing.T) {
	t.Parallel()

	s, err := NewStemmer("")
	require.NoError(t, err)
	require.Equal(t, Portuguese, s.Language())

	s, err = NewStemmer(" English ")
	require.NoError(t, err)
	require.Equal(t, English, s.Language())

	_, err = NewStemmer("klingon")
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
}

// TestStemPortuguese checks that inflected forms share a stem.
func TestStemPortuguese(t *testing.T) {
	t.Parallel()

	s, err := NewStemmer(Portuguese)
	require.NoError(t, err)

	groups := [][]string{
		{"economia", "economias"},
		{"governo", "governos"},
		{"casa", "casas"},
		{"banco", "bancos"},
	}
	for _, g := range groups {
		first := s.Stem(g[0])
		for _, w := range g[1:] {
			require.Equal(t, first, s.Stem(w), "%s vs %s", g[0], w)
		}
	}

	// Short words are left alone.
	require.Equal(t, "sol", s.Stem("sol"))

	// Snowball strips the verb and residual suffixes.
	require.Equal(t, "govern", s.Stem("governo"))
	require.Equal(t, "banc", s.Stem("bancos"))
}

func TestStemEnglish(t *testing.T) {
	t.Parallel()

	s, err := NewStemmer(English)
	require.NoError(t, err)
	require.Equal(t, s.Stem("running"), s.Stem("runs"))
}

// TestContentStemsDropsStopWords verifies stop words never reach the stem
// list.
func TestContentStemsDropsStopWords(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer(Portuguese)
	require.NoError(t, err)

	stems := a.ContentStems("O governo e a economia do país")
	require.Equal(t, []string{
		a.stemmer.Stem("governo"), a.stemmer.Stem("economia"),
		a.stemmer.Stem("país"),
	}, stems)
}

// TestRankSentences verifies that the sentence sharing the dominant topic
// ranks first and that every sentence is returned once.
func TestRankSentences(t *testing.T) {
	t.Parallel()

	a, err := NewAnalyzer(Portuguese)
	require.NoError(t, err)

	doc := "O tempo estava bom. A inflação subiu e a inflação " +
		"preocupa o banco. O banco discute a inflação hoje."
	ranked := a.RankSentences(doc)

	require.Len(t, ranked, 3)
	require.Equal(t,
		"A inflação subiu e a inflação preocupa o banco", ranked[0],
	)
	require.ElementsMatch(t, []string{
		"O tempo estava bom",
		"A inflação subiu e a inflação preocupa o banco",
		"O banco discute a inflação hoje",
	}, ranked)

	require.Empty(t, a.RankSentences("   "))
}
