package model

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roasbeef/resumo/internal/lexical"
)

// MockGenerator is a deterministic offline Generator. By default it
// answers with the leading sentences of the prompt text, cut to the token
// budget. Tests use the hooks to inject latency and failures.
type MockGenerator struct {
	// Delay, if set, returns how long to wait before answering prompt.
	Delay func(prompt string) time.Duration

	// Fail, if set, returns an error to answer prompt with.
	Fail func(prompt string) error

	// Respond, if set, replaces the default answer.
	Respond func(prompt string, c Constraints) string

	calls    atomic.Int64
	inFlight atomic.Int64

	mu   sync.Mutex
	peak int64
}

// Generate implements Generator.
func (m *MockGenerator) Generate(
	ctx context.Context, prompt string, c Constraints,
) (string, error) {
	m.calls.Add(1)

	current := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)

	m.mu.Lock()
	m.peak = max(m.peak, current)
	m.mu.Unlock()

	if m.Delay != nil {
		select {
		case <-time.After(m.Delay(prompt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.Fail != nil {
		if err := m.Fail(prompt); err != nil {
			return "", err
		}
	}

	if m.Respond != nil {
		return m.Respond(prompt, c), nil
	}

	return leadSummary(prompt, c), nil
}

// Calls returns how many generations were requested.
func (m *MockGenerator) Calls() int {
	return int(m.calls.Load())
}

// PeakConcurrency returns the highest number of overlapping calls seen.
func (m *MockGenerator) PeakConcurrency() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int(m.peak)
}

// leadSummary keeps the first two sentences of the prompt text within the
// token budget.
func leadSummary(prompt string, c Constraints) string {
	text := strings.TrimPrefix(prompt, SummarizePrefix)

	sentences := lexical.SplitSentences(text)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}

	summary := lexical.JoinSentences(sentences)
	if c.MaxNewTokens > 0 {
		summary = lexical.TruncateWords(
			summary, c.MaxNewTokens*CharsPerToken,
		)
	}

	return summary
}

// MockLoader returns a Loader that serves gen with an ApproxTokenizer.
func MockLoader(gen Generator) Loader {
	return func(context.Context) (*Backend, error) {
		return &Backend{
			Tokenizer: NewApproxTokenizer(),
			Generator: gen,
		}, nil
	}
}
