// Package quality scores a summary against its source text with cheap
// lexical heuristics.
package quality

import (
	"log/slog"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/roasbeef/resumo/internal/cache"
	"github.com/roasbeef/resumo/internal/lexical"
	"github.com/roasbeef/resumo/internal/linguistic"
)

// Component weights of the overall score. They sum to one.
const (
	KeywordWeight         = 0.30
	ContentWeight         = 0.25
	InformativenessWeight = 0.20
	FluencyWeight         = 0.15
	PunctuationWeight     = 0.10
)

const (
	// keywordsCompared is how many of the source's keywords are looked
	// for in the summary.
	keywordsCompared = 10

	// idealSentenceWords is the sentence length fluency peaks at.
	idealSentenceWords = 15.0
)

// Report holds the component scores of one evaluation. Every score lies in
// [0, 1].
type Report struct {
	KeywordCoverage  float64 `json:"keyword_coverage"`
	ContentCoverage  float64 `json:"content_coverage"`
	Informativeness  float64 `json:"informativeness"`
	Fluency          float64 `json:"fluency"`
	PunctuationScore float64 `json:"punctuation_score"`
	OverallScore     float64 `json:"overall_score"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// Evaluator scores summaries. Reports are memoized in the optional cache.
type Evaluator struct {
	analyzer *linguistic.Analyzer
	cache    *cache.Store
	log      *slog.Logger
}

// NewEvaluator creates an Evaluator that compares content words through
// analyzer.
func NewEvaluator(
	analyzer *linguistic.Analyzer, store *cache.Store, log *slog.Logger,
) *Evaluator {
	if log == nil {
		log = slog.Default()
	}

	return &Evaluator{
		analyzer: analyzer,
		cache:    store,
		log:      log.With("component", "quality"),
	}
}

// Evaluate scores summary against original.
func (e *Evaluator) Evaluate(original, summary string) Report {
	report, _, _ := cache.WithCache(
		e.cache, cache.QualityKey(original, summary),
		func() (Report, error) {
			return e.evaluate(original, summary), nil
		},
	)

	return report
}

func (e *Evaluator) evaluate(original, summary string) Report {
	normSummary := lexical.CollapseSpace(summary)

	var ratio float64
	if n := lexical.RuneLen(lexical.Preprocess(original)); n > 0 {
		ratio = float64(lexical.RuneLen(lexical.Preprocess(summary))) /
			float64(n)
	}

	r := Report{
		CompressionRatio: ratio,
		Informativeness:  math.Min(1, 2*ratio),
		KeywordCoverage:  keywordCoverage(original, summary),
		ContentCoverage:  e.contentCoverage(original, summary),
		Fluency:          fluency(normSummary),
		PunctuationScore: punctuation(normSummary),
	}
	if normSummary == "" {
		r.Informativeness = 0
	}

	r.OverallScore = KeywordWeight*r.KeywordCoverage +
		ContentWeight*r.ContentCoverage +
		InformativenessWeight*r.Informativeness +
		FluencyWeight*r.Fluency +
		PunctuationWeight*r.PunctuationScore

	e.log.Debug("Summary evaluated",
		"overall", r.OverallScore, "compression", r.CompressionRatio,
	)

	return r
}

// keywordCoverage is the share of the source's top keywords found among the
// summary's words.
func keywordCoverage(original, summary string) float64 {
	keywords := lexical.ExtractKeywords(original, keywordsCompared)
	if len(keywords) == 0 {
		return 0
	}

	words := lexical.KeywordSet(lexical.Tokens(summary))

	var found int
	for _, k := range keywords {
		if _, ok := words[k]; ok {
			found++
		}
	}

	return float64(found) / float64(len(keywords))
}

// contentCoverage is the share of the source's distinct content stems that
// also occur in the summary.
func (e *Evaluator) contentCoverage(original, summary string) float64 {
	source := e.analyzer.ContentStemSet(original)
	if len(source) == 0 {
		return 0
	}

	target := e.analyzer.ContentStemSet(summary)

	var found int
	for stem := range source {
		if _, ok := target[stem]; ok {
			found++
		}
	}

	return float64(found) / float64(len(source))
}

// fluency blends lexical variety with how close sentences are to an ideal
// length.
func fluency(summary string) float64 {
	a := lexical.Analyze(summary)
	if a.WordCount == 0 {
		return 0
	}

	closeness := math.Max(
		0, 1-math.Abs(a.AvgWordsPerSentence-idealSentenceWords)/
			idealSentenceWords,
	)

	return 0.7*a.LexicalDensity + 0.3*closeness
}

// punctuation rewards a proper ending and capitalized sentence starts.
func punctuation(summary string) float64 {
	sentences := lexical.SplitSentences(summary)
	if len(sentences) == 0 {
		return 0
	}

	var score float64
	last, _ := utf8.DecodeLastRuneInString(summary)
	if last == '.' || last == '!' || last == '?' || last == '…' {
		score += 0.5
	}

	var capitalized int
	for _, s := range sentences {
		first, _ := utf8.DecodeRuneInString(s)
		if unicode.IsUpper(first) || unicode.IsDigit(first) {
			capitalized++
		}
	}

	return score + 0.5*float64(capitalized)/float64(len(sentences))
}
