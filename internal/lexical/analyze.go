package lexical

import (
	"strings"
)

// Analysis holds the lexical statistics of a text.
type Analysis struct {
	// WordCount is the number of whitespace-separated words.
	WordCount int `json:"word_count"`

	// SentenceCount is the number of non-empty fragments between
	// periods.
	SentenceCount int `json:"sentence_count"`

	// AvgWordsPerSentence is WordCount / SentenceCount.
	AvgWordsPerSentence float64 `json:"avg_words_per_sentence"`

	// LexicalDensity is the share of distinct (lower-cased) words.
	LexicalDensity float64 `json:"lexical_density"`

	// AvgWordLength is the mean word length in characters.
	AvgWordLength float64 `json:"avg_word_length"`
}

// Analyze computes the lexical statistics of text. Sentences are counted by
// splitting on '.' only, so abbreviations and decimals over-count; every
// ratio is zero when its denominator is.
func Analyze(text string) Analysis {
	words := strings.Fields(text)

	var sentences int
	for _, frag := range strings.Split(text, ".") {
		if strings.TrimSpace(frag) != "" {
			sentences++
		}
	}

	a := Analysis{
		WordCount:     len(words),
		SentenceCount: sentences,
	}
	if len(words) == 0 {
		return a
	}

	unique := make(map[string]struct{}, len(words))
	var totalLen int
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
		totalLen += RuneLen(w)
	}

	a.LexicalDensity = float64(len(unique)) / float64(len(words))
	a.AvgWordLength = float64(totalLen) / float64(len(words))
	if sentences > 0 {
		a.AvgWordsPerSentence = float64(len(words)) / float64(sentences)
	}

	return a
}
