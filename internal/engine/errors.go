package engine

import "errors"

var (
	// ErrUnknownMethod is returned for a method name the engine does not
	// implement.
	ErrUnknownMethod = errors.New("unknown summarization method")

	// ErrEmptyText is returned when there is nothing to summarize.
	ErrEmptyText = errors.New("empty text")
)
