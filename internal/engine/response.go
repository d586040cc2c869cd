package engine

import (
	"github.com/roasbeef/resumo/internal/lexical"
	"github.com/roasbeef/resumo/internal/quality"
)

// Response is the wire form of a SummaryResult.
type Response struct {
	Summary        string            `json:"summary"`
	Method         Method            `json:"method"`
	Cached         bool              `json:"cached"`
	Quality        *quality.Report   `json:"quality_metrics,omitempty"`
	Analysis       *lexical.Analysis `json:"text_analysis,omitempty"`
	Degraded       bool              `json:"degraded"`
	DegradedReason string            `json:"degraded_reason,omitempty"`
}

// Response converts r for JSON encoding.
func (r SummaryResult) Response() Response {
	resp := Response{
		Summary: r.Summary,
		Method:  r.Method,
		Cached:  r.Cached,
	}
	r.Quality.WhenSome(func(q quality.Report) {
		resp.Quality = &q
	})
	r.Analysis.WhenSome(func(a lexical.Analysis) {
		resp.Analysis = &a
	})
	r.Degraded.WhenSome(func(reason string) {
		resp.Degraded = true
		resp.DegradedReason = reason
	})

	return resp
}
