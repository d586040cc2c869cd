// Package chunker splits long documents into overlapping, sentence-aligned
// chunks that each fit a model's input window.
package chunker

import (
	"strings"

	"github.com/roasbeef/resumo/internal/lexical"
)

const (
	// MinSentenceRunes drops fragments too short to carry content,
	// typically list markers and stray abbreviations.
	MinSentenceRunes = 10

	// MinChunkRunes is the smallest chunk kept on its own. Shorter
	// chunks are folded into their predecessor.
	MinChunkRunes = 50
)

// Create splits text into chunks of at most maxChunkChars characters.
// Consecutive chunks share one sentence: each chunk after the first starts
// with the last sentence of the previous one. A single sentence longer than
// the budget still forms a chunk of its own. Text with no usable sentences
// comes back as one chunk holding the raw text cut to the budget.
func Create(text string, maxChunkChars int) []string {
	var sentences []string
	for _, s := range lexical.SplitSentences(lexical.Preprocess(text)) {
		if lexical.RuneLen(s) >= MinSentenceRunes {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		raw := strings.TrimSpace(text)
		if raw == "" {
			return nil
		}

		return []string{lexical.TruncateRunes(raw, maxChunkChars)}
	}

	groups := merge(group(sentences, maxChunkChars))

	chunks := make([]string, len(groups))
	for i, g := range groups {
		chunks[i] = lexical.JoinSentences(g)
	}

	return chunks
}

// group packs sentences greedily into budget-sized groups with a one
// sentence overlap.
func group(sentences []string, maxChars int) [][]string {
	var (
		groups  [][]string
		current []string
	)
	for _, sent := range sentences {
		candidate := append(current[:len(current):len(current)], sent)
		if len(current) > 0 &&
			lexical.RuneLen(lexical.JoinSentences(candidate)) > maxChars {

			groups = append(groups, current)
			current = []string{current[len(current)-1], sent}

			continue
		}

		current = candidate
	}

	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}

// merge folds groups whose text is under MinChunkRunes into the previous
// group, skipping the shared overlap sentence.
func merge(groups [][]string) [][]string {
	merged := make([][]string, 0, len(groups))
	for _, g := range groups {
		if len(merged) == 0 ||
			lexical.RuneLen(lexical.JoinSentences(g)) >= MinChunkRunes {

			merged = append(merged, g)
			continue
		}

		prev := merged[len(merged)-1]
		tail := g
		if len(tail) > 0 && tail[0] == prev[len(prev)-1] {
			tail = tail[1:]
		}
		merged[len(merged)-1] = append(prev, tail...)
	}

	return merged
}
