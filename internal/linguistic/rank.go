package linguistic

import (
	"math"
	"sort"

	"github.com/roasbeef/resumo/internal/lexical"
)

// Analyzer bundles the stemmer and stop words of one language.
type Analyzer struct {
	stemmer   *Stemmer
	stopWords map[string]struct{}
}

// NewAnalyzer returns an Analyzer for language.
func NewAnalyzer(language string) (*Analyzer, error) {
	stemmer, err := NewStemmer(language)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		stemmer:   stemmer,
		stopWords: StopWords(stemmer.Language()),
	}, nil
}

// Language returns the analyzer's language.
func (a *Analyzer) Language() string {
	return a.stemmer.Language()
}

// ContentStems returns the stems of every token of text that is not a stop
// word, in order of appearance and with repetitions.
func (a *Analyzer) ContentStems(text string) []string {
	tokens := lexical.Tokens(text)

	stems := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := a.stopWords[tok]; stop {
			continue
		}
		if lexical.RuneLen(tok) < 2 {
			continue
		}
		stems = append(stems, a.stemmer.Stem(tok))
	}

	return stems
}

// ContentStemSet is ContentStems deduplicated.
func (a *Analyzer) ContentStemSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, s := range a.ContentStems(text) {
		set[s] = struct{}{}
	}

	return set
}

// RankSentences orders the sentences of document by salience: the summed,
// max-normalized frequency of their content stems divided by the square
// root of their length. Ties keep document order.
func (a *Analyzer) RankSentences(document string) []string {
	sentences := lexical.SplitSentences(document)
	if len(sentences) == 0 {
		return nil
	}

	perSentence := make([][]string, len(sentences))
	freq := make(map[string]float64)
	for i, sent := range sentences {
		perSentence[i] = a.ContentStems(sent)
		for _, stem := range perSentence[i] {
			freq[stem]++
		}
	}

	var maxFreq float64
	for _, f := range freq {
		maxFreq = math.Max(maxFreq, f)
	}

	type ranked struct {
		text  string
		score float64
	}
	ranking := make([]ranked, len(sentences))
	for i, sent := range sentences {
		var score float64
		for _, stem := range perSentence[i] {
			score += freq[stem] / maxFreq
		}
		if n := len(lexical.Tokens(sent)); n > 0 {
			score /= math.Sqrt(float64(n))
		}
		ranking[i] = ranked{text: sent, score: score}
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].score > ranking[j].score
	})

	out := make([]string, len(ranking))
	for i, r := range ranking {
		out[i] = r.text
	}

	return out
}
