package engine

import (
	"fmt"
	"strings"

	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/roasbeef/resumo/internal/lexical"
	"github.com/roasbeef/resumo/internal/quality"
)

// Method selects a summarization strategy.
type Method string

const (
	// MethodExtractive selects salient sentences of the source.
	MethodExtractive Method = "extractive"

	// MethodAbstractive generates new text with the model.
	MethodAbstractive Method = "abstractive"

	// MethodAuto lets the engine pick per document.
	MethodAuto Method = "auto"
)

// Methods lists every accepted method.
var Methods = []Method{MethodExtractive, MethodAbstractive, MethodAuto}

// ParseMethod converts a user supplied method name. The empty string means
// auto.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodAuto, nil

	case MethodExtractive, MethodAbstractive, MethodAuto:
		return m, nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Request is one summarization request.
type Request struct {
	Text      string
	Method    Method
	MaxLength int
	MinLength int
}

// SummaryResult is the answer to a Request. Quality and Analysis are only
// present for freshly computed results; Degraded carries the reason when a
// fallback produced the summary.
type SummaryResult struct {
	Summary  string
	Method   Method
	Cached   bool
	Quality  fn.Option[quality.Report]
	Analysis fn.Option[lexical.Analysis]
	Degraded fn.Option[string]
}

// autoEntry is what an auto request caches: the summary and the method
// that produced it.
type autoEntry struct {
	Summary string
	Method  Method
}

// SearchText lets cache invalidation match on the summary text.
func (a autoEntry) SearchText() string {
	return a.Summary
}
