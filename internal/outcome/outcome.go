// Package outcome models summarization results that may have been produced
// by a fallback path. A degraded outcome still carries a usable value, but
// it also carries the reason the clean path failed so callers can log it,
// surface it, or refuse to cache it.
package outcome

import (
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Outcome is a value together with how it was obtained.
type Outcome[T any] struct {
	value    T
	cached   bool
	degraded fn.Option[error]
}

// Clean wraps a value produced by the primary path.
func Clean[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, degraded: fn.None[error]()}
}

// Cached wraps a value served from the cache.
func Cached[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, cached: true, degraded: fn.None[error]()}
}

// Degraded wraps a fallback value and the error that forced the fallback.
func Degraded[T any](v T, reason error) Outcome[T] {
	return Outcome[T]{value: v, degraded: fn.Some(reason)}
}

// Value returns the wrapped value, degraded or not.
func (o Outcome[T]) Value() T {
	return o.value
}

// FromCache reports whether the value was served from the cache.
func (o Outcome[T]) FromCache() bool {
	return o.cached
}

// IsDegraded reports whether the value came from a fallback path.
func (o Outcome[T]) IsDegraded() bool {
	return o.degraded.IsSome()
}

// Reason returns the degradation reason, if any.
func (o Outcome[T]) Reason() fn.Option[error] {
	return o.degraded
}

// ReasonText returns the degradation reason as text, if any.
func (o Outcome[T]) ReasonText() fn.Option[string] {
	text := fn.None[string]()
	o.degraded.WhenSome(func(err error) {
		text = fn.Some(err.Error())
	})

	return text
}
