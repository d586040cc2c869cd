package engine

import "github.com/roasbeef/resumo/internal/lexical"

// Complexity scores how hard a text is to summarize by sentence selection,
// blending lexical variety, sentence length and word length. Typical prose
// lands between 0.3 and 0.8.
func Complexity(a lexical.Analysis) float64 {
	return 0.4*a.LexicalDensity +
		0.3*(a.AvgWordsPerSentence/20) +
		0.3*(a.AvgWordLength/8)
}

// decision is the strategy picked for one auto request.
type decision int

const (
	decideExtractive decision = iota
	decideAbstractive
	decideBoth
)

func (d decision) String() string {
	switch d {
	case decideExtractive:
		return "extractive"
	case decideAbstractive:
		return "abstractive"
	default:
		return "both"
	}
}

const (
	// highComplexity is the complexity above which short texts go to
	// the model.
	highComplexity = 0.6

	// lowComplexity is the complexity below which texts are always
	// summarized extractively.
	lowComplexity = 0.4
)

// decide applies the threshold rules in order: short and complex texts are
// generated, long or simple texts are extracted, the rest are run both
// ways.
func (e *Engine) decide(a lexical.Analysis, complexity float64) decision {
	switch {
	case a.WordCount <= e.cfg.AbstractiveThreshold &&
		complexity > highComplexity:

		return decideAbstractive

	case a.WordCount >= e.cfg.ExtractiveThreshold ||
		complexity < lowComplexity:

		return decideExtractive

	default:
		return decideBoth
	}
}
