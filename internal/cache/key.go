package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	// summaryNamespace prefixes every summary key.
	summaryNamespace = "summary"

	// qualityNamespace prefixes quality report keys.
	qualityNamespace = "quality"

	// analysisNamespace prefixes text analysis keys.
	analysisNamespace = "analysis"

	// keyPrefixRunes is how much of the raw text is folded into the key
	// verbatim. The full text is covered by its own digest.
	keyPrefixRunes = 100
)

// SummaryKey derives the cache key for a summary request. Identical
// inputs always produce the same key, and texts sharing their first
// characters still map to distinct keys.
func SummaryKey(text, method string, maxLen, minLen int) string {
	return digestKey(
		summaryNamespace,
		prefix(text, keyPrefixRunes),
		textDigest(text),
		method,
		strconv.Itoa(maxLen),
		strconv.Itoa(minLen),
	)
}

// QualityKey derives the cache key for a quality report of summary
// against original.
func QualityKey(original, summary string) string {
	return digestKey(
		qualityNamespace, textDigest(original), textDigest(summary),
	)
}

// AnalysisKey derives the cache key for the lexical analysis of text.
func AnalysisKey(text string) string {
	return digestKey(analysisNamespace, textDigest(text))
}

// TextDigest returns the hex sha256 of text. The history store uses it to
// identify inputs without persisting them.
func TextDigest(text string) string {
	return textDigest(text)
}

// digestKey hashes the length-prefixed parts so that no two distinct part
// lists share an encoding.
func digestKey(namespace string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{':'})
		h.Write([]byte(p))
	}

	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

func textDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	var count int
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}

	return s
}
