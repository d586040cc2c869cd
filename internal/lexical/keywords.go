package lexical

import (
	"sort"
	"strings"
	"unicode"
)

// MinKeywordRunes is the shortest word considered a keyword candidate.
// Shorter words are mostly articles and prepositions.
const MinKeywordRunes = 4

// Tokens splits text into lower-cased word tokens made of letters, digits
// and underscores.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
}

// ExtractKeywords returns up to topK of the most frequent words of text
// that are at least MinKeywordRunes long. Ties keep the order of first
// occurrence, so the result is deterministic.
func ExtractKeywords(text string, topK int) []string {
	if topK <= 0 {
		return nil
	}

	type candidate struct {
		word  string
		count int
	}

	byWord := make(map[string]*candidate)
	var order []*candidate
	for _, tok := range Tokens(text) {
		if RuneLen(tok) < MinKeywordRunes {
			continue
		}

		c, ok := byWord[tok]
		if !ok {
			c = &candidate{word: tok}
			byWord[tok] = c
			order = append(order, c)
		}
		c.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count > order[j].count
	})

	if len(order) > topK {
		order = order[:topK]
	}

	keywords := make([]string, len(order))
	for i, c := range order {
		keywords[i] = c.word
	}

	return keywords
}

// KeywordSet turns a keyword list into a set for membership tests.
func KeywordSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[k] = struct{}{}
	}

	return set
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' ||
		unicode.Is(unicode.Mn, r)
}
