package build

import (
	"context"
	"log/slog"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// HandlerSet fans log records out to several btclog handlers, so one
// logger can feed both the console and the rotating log file.
type HandlerSet struct {
	level btclog.Level
	set   []btclogv2.Handler
}

// NewHandlerSet constructs a HandlerSet at the Info level.
func NewHandlerSet(handlers ...btclogv2.Handler) *HandlerSet {
	h := &HandlerSet{set: handlers}
	h.SetLevel(btclog.LevelInfo)

	return h
}

// Enabled reports whether every handler accepts level.
//
// NOTE: this is part of the slog.Handler interface.
func (h *HandlerSet) Enabled(ctx context.Context, level slog.Level) bool {
	return enabledAll(ctx, level, slogHandlers(h.set))
}

// Handle dispatches record to every handler, stopping at the first error.
//
// NOTE: this is part of the slog.Handler interface.
func (h *HandlerSet) Handle(ctx context.Context, record slog.Record) error {
	return handleAll(ctx, record, slogHandlers(h.set))
}

// WithAttrs returns a handler whose records carry attrs.
//
// NOTE: this is part of the slog.Handler interface.
func (h *HandlerSet) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fanOut(slogHandlers(h.set), func(s slog.Handler) slog.Handler {
		return s.WithAttrs(attrs)
	})
}

// WithGroup returns a handler that nests attributes under name.
//
// NOTE: this is part of the slog.Handler interface.
func (h *HandlerSet) WithGroup(name string) slog.Handler {
	return fanOut(slogHandlers(h.set), func(s slog.Handler) slog.Handler {
		return s.WithGroup(name)
	})
}

// SubSystem returns a copy tagged with the given sub-system.
//
// NOTE: this is part of the btclog.Handler interface.
func (h *HandlerSet) SubSystem(tag string) btclogv2.Handler {
	return h.derive(func(b btclogv2.Handler) btclogv2.Handler {
		return b.SubSystem(tag)
	})
}

// WithPrefix returns a copy that prefixes every message.
//
// NOTE: this is part of the btclog.Handler interface.
func (h *HandlerSet) WithPrefix(prefix string) btclogv2.Handler {
	return h.derive(func(b btclogv2.Handler) btclogv2.Handler {
		return b.WithPrefix(prefix)
	})
}

// SetLevel changes the level of every handler.
//
// NOTE: this is part of the btclog.Handler interface.
func (h *HandlerSet) SetLevel(level btclog.Level) {
	for _, handler := range h.set {
		handler.SetLevel(level)
	}
	h.level = level
}

// Level returns the current level.
//
// NOTE: this is part of the btclog.Handler interface.
func (h *HandlerSet) Level() btclog.Level {
	return h.level
}

func (h *HandlerSet) derive(
	f func(btclogv2.Handler) btclogv2.Handler) *HandlerSet {

	derived := &HandlerSet{
		level: h.level,
		set:   make([]btclogv2.Handler, len(h.set)),
	}
	for i, handler := range h.set {
		derived.set[i] = f(handler)
	}

	return derived
}

var _ btclogv2.Handler = (*HandlerSet)(nil)

// reducedSet is what WithAttrs and WithGroup return: the derived handlers
// are plain slog handlers.
type reducedSet struct {
	set []slog.Handler
}

func (r *reducedSet) Enabled(ctx context.Context, level slog.Level) bool {
	return enabledAll(ctx, level, r.set)
}

func (r *reducedSet) Handle(ctx context.Context, record slog.Record) error {
	return handleAll(ctx, record, r.set)
}

func (r *reducedSet) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fanOut(r.set, func(s slog.Handler) slog.Handler {
		return s.WithAttrs(attrs)
	})
}

func (r *reducedSet) WithGroup(name string) slog.Handler {
	return fanOut(r.set, func(s slog.Handler) slog.Handler {
		return s.WithGroup(name)
	})
}

var _ slog.Handler = (*reducedSet)(nil)

func slogHandlers(set []btclogv2.Handler) []slog.Handler {
	out := make([]slog.Handler, len(set))
	for i, h := range set {
		out[i] = h
	}

	return out
}

func fanOut(set []slog.Handler,
	f func(slog.Handler) slog.Handler) *reducedSet {

	derived := &reducedSet{set: make([]slog.Handler, len(set))}
	for i, handler := range set {
		derived.set[i] = f(handler)
	}

	return derived
}

func enabledAll(ctx context.Context, level slog.Level,
	set []slog.Handler) bool {

	for _, handler := range set {
		if !handler.Enabled(ctx, level) {
			return false
		}
	}

	return true
}

func handleAll(ctx context.Context, record slog.Record,
	set []slog.Handler) error {

	for _, handler := range set {
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}

	return nil
}
