package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Ellipsis is appended to text cut short on a word boundary.
const Ellipsis = "..."

// keptPunctuation lists the punctuation Preprocess leaves in place.
const keptPunctuation = `.,;:!?()"'-`

// Preprocess normalizes raw text for sentence work. Accented characters are
// composed (NFC), anything that is not a letter, digit, whitespace or basic
// punctuation becomes a space, whitespace runs collapse to a single space
// and the result always ends in terminal punctuation. Empty input stays
// empty.
func Preprocess(text string) string {
	text = norm.NFC.String(text)

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r),
			unicode.IsSpace(r):

			return r

		case strings.ContainsRune(keptPunctuation, r):
			return r

		// Combining marks that survived composition stay attached
		// to their base letter.
		case unicode.Is(unicode.Mn, r):
			return r

		default:
			return ' '
		}
	}, text)

	return EnsureTerminal(CollapseSpace(cleaned))
}

// CollapseSpace trims text and replaces every whitespace run, newlines
// included, with a single space.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// EnsureTerminal appends a period unless text already ends in '.', '!' or
// '?'. Empty text is returned unchanged.
func EnsureTerminal(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}

	last, _ := utf8.DecodeLastRuneInString(text)
	if isTerminal(last) {
		return text
	}

	return text + "."
}

// SplitSentences splits text on runs of '.', '!' and '?', trimming each
// fragment and dropping the empty ones. The terminators are not kept.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, isTerminal)

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}

	return sentences
}

// JoinSentences joins sentences stripped of their terminators back into
// prose, separating them with ". " and ending with a period.
func JoinSentences(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}

	return EnsureTerminal(strings.Join(sentences, ". "))
}

// RuneLen is the length of text in characters.
func RuneLen(text string) int {
	return utf8.RuneCountInString(text)
}

// TruncateRunes cuts text to at most n characters without regard for word
// boundaries.
func TruncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	var count int
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}

	return text
}

// TruncateWords shortens text to at most max characters, backing off to
// the last word boundary, and appends Ellipsis. Text that already fits is
// returned unchanged, so the result never exceeds max+len(Ellipsis).
func TruncateWords(text string, max int) string {
	if RuneLen(text) <= max {
		return text
	}

	cut := TruncateRunes(text, max)
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	cut = strings.TrimRightFunc(cut, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})

	return cut + Ellipsis
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
