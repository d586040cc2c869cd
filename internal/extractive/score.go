package extractive

import (
	"math"
	"sort"
	"strings"

	"github.com/roasbeef/resumo/internal/lexical"
)

const (
	// keywordWeight scales the share of keyword tokens in a sentence.
	keywordWeight = 0.4

	// edgeBonus rewards sentences in the first or last tenth.
	edgeBonus = 0.2

	// nearEdgeBonus rewards sentences in the second or second-to-last
	// tenth.
	nearEdgeBonus = 0.1

	// idealLengthBonus rewards sentences of 10-25 words.
	idealLengthBonus = 0.2

	// acceptableLengthBonus rewards sentences of 5-35 words.
	acceptableLengthBonus = 0.1

	// markerBonus is added per discourse marker occurrence.
	markerBonus = 0.05

	// sentenceCharsPerSlot is how many summary characters one selected
	// sentence is budgeted.
	sentenceCharsPerSlot = 120
)

// discourseMarkers signal summary-worthy sentences. Portuguese comes first
// with a few English equivalents for mixed-language input.
var discourseMarkers = []string{
	"importante", "principal", "principais", "fundamental",
	"essencial", "conclusão", "portanto", "resultado", "resultados",
	"objetivo", "destaca", "destacou", "significativo", "em suma",
	"em resumo", "finalmente", "além disso", "por fim",
	"important", "conclusion", "therefore", "in summary", "result",
	"significant", "finally",
}

// ScoredSentence is a sentence with its salience score and its index in the
// source text.
type ScoredSentence struct {
	Text     string
	Score    float64
	Position int
}

// scoreSentences scores every sentence against the keyword set. The result
// is in document order.
func scoreSentences(
	sentences []string, keywords map[string]struct{},
) []ScoredSentence {
	scored := make([]ScoredSentence, len(sentences))
	for i, sent := range sentences {
		tokens := lexical.Tokens(sent)

		score := keywordWeight * keywordDensity(tokens, keywords)
		score += positionBonus(i, len(sentences))
		score += lengthBonus(len(strings.Fields(sent)))
		score += markerBonus * float64(countMarkers(tokens))

		scored[i] = ScoredSentence{
			Text:     sent,
			Score:    math.Min(score, 1.0),
			Position: i,
		}
	}

	return scored
}

func keywordDensity(tokens []string, keywords map[string]struct{}) float64 {
	if len(tokens) == 0 {
		return 0
	}

	var hits int
	for _, tok := range tokens {
		if _, ok := keywords[tok]; ok {
			hits++
		}
	}

	return float64(hits) / float64(len(tokens))
}

// positionBonus favors sentences near either end of the document, where
// news and reports put their lead and their conclusion.
func positionBonus(idx, total int) float64 {
	if total < 2 {
		return edgeBonus
	}

	rel := float64(idx) / float64(total-1)
	switch {
	case rel <= 0.1 || rel >= 0.9:
		return edgeBonus
	case rel <= 0.2 || rel >= 0.8:
		return nearEdgeBonus
	default:
		return 0
	}
}

func lengthBonus(words int) float64 {
	switch {
	case words >= 10 && words <= 25:
		return idealLengthBonus
	case words >= 5 && words <= 35:
		return acceptableLengthBonus
	default:
		return 0
	}
}

// countMarkers counts whole-token occurrences of every discourse marker.
func countMarkers(tokens []string) int {
	joined := " " + strings.Join(tokens, " ") + " "

	var n int
	for _, m := range discourseMarkers {
		n += strings.Count(joined, " "+m+" ")
	}

	return n
}

// targetCount is how many sentences a summary of maxLen characters should
// hold: maxLen/120 clamped to [1, total], but never fewer than two.
func targetCount(maxLen, total int) int {
	n := maxLen / sentenceCharsPerSlot
	n = min(max(n, 1), total)

	return max(2, n)
}

// byScore returns the sentences sorted by descending score. Equal scores
// keep document order.
func byScore(scored []ScoredSentence) []ScoredSentence {
	sorted := make([]ScoredSentence, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	return sorted
}

// byRanking orders the sentences following an external ranking. Sentences
// the ranking does not mention follow in score order.
func byRanking(scored []ScoredSentence, ranking []string) []ScoredSentence {
	rank := make(map[string]int, len(ranking))
	for i, text := range ranking {
		if _, seen := rank[text]; !seen {
			rank[text] = i
		}
	}

	sorted := byScore(scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, iok := rank[sorted[i].Text]
		rj, jok := rank[sorted[j].Text]
		switch {
		case iok && jok:
			return ri < rj
		default:
			return iok && !jok
		}
	})

	return sorted
}

// assemble joins the selection back into prose in document order.
func assemble(selected []ScoredSentence) string {
	ordered := make([]ScoredSentence, len(selected))
	copy(ordered, selected)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	texts := make([]string, len(ordered))
	for i, s := range ordered {
		texts[i] = s.Text
	}

	return lexical.JoinSentences(texts)
}
