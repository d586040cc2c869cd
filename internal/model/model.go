// Package model wraps the generative summarization model behind a lazily
// loaded handle. Backends plug in a tokenizer and a generator; the rest of
// the system only sees the Handle.
package model

import (
	"context"
	"errors"
)

const (
	// DefaultMaxInputLength is the model context size in tokens.
	DefaultMaxInputLength = 512

	// DefaultSentencesCount is reported in the model status for clients
	// that ask for a sentence-count summary.
	DefaultSentencesCount = 3

	// DefaultModelIdentifier names the multilingual summarization model
	// served by default.
	DefaultModelIdentifier = "csebuetnlp/mT5_multilingual_XLSum"

	// CharsPerToken approximates how many characters one token covers
	// for Latin-script prose.
	CharsPerToken = 4

	// SummarizePrefix is the task prefix of every generation prompt.
	SummarizePrefix = "summarize: "
)

var (
	// ErrModelUnavailable is returned when the model cannot be loaded
	// or a generation call fails outright.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrEmptyGeneration is returned when a backend answers with no
	// text at all.
	ErrEmptyGeneration = errors.New("empty generation")
)

// Tokenizer maps text to model token ids and back.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// Generator produces a summary for a prompt under decoding constraints.
type Generator interface {
	Generate(
		ctx context.Context, prompt string, c Constraints,
	) (string, error)
}

// Constraints are the decoding parameters of one generation call. Backends
// honor the subset their API exposes.
type Constraints struct {
	// MaxNewTokens bounds the generated length.
	MaxNewTokens int

	// MinNewTokens is a lower bound on the generated length.
	MinNewTokens int

	// NumBeams is the beam search width.
	NumBeams int

	// NoRepeatNgramSize forbids repeating n-grams of this size.
	NoRepeatNgramSize int

	// LengthPenalty > 1 favors longer beams.
	LengthPenalty float64

	// RepetitionPenalty > 1 discourages repeated tokens.
	RepetitionPenalty float64

	// EarlyStopping ends beam search once all beams are done.
	EarlyStopping bool

	// DoSample enables sampling instead of deterministic decoding.
	DoSample bool
}

// DefaultConstraints returns the deterministic beam search settings used
// for every summary, bounded by maxLen and minLen tokens.
func DefaultConstraints(maxLen, minLen int) Constraints {
	return Constraints{
		MaxNewTokens:      maxLen,
		MinNewTokens:      minLen,
		NumBeams:          6,
		NoRepeatNgramSize: 2,
		LengthPenalty:     1.2,
		RepetitionPenalty: 1.3,
		EarlyStopping:     true,
		DoSample:          false,
	}
}

// Backend is a loaded model: a tokenizer, a generator and an optional
// release hook.
type Backend struct {
	Tokenizer Tokenizer
	Generator Generator

	// Close releases backend resources on unload. May be nil.
	Close func() error
}

// Loader builds a Backend. It runs at most once per load cycle of a Handle.
type Loader func(ctx context.Context) (*Backend, error)
