package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// swapHandler forwards records to the current handler chain of a module.
// Initialize replaces the chain in place, so loggers handed out earlier,
// including those derived with With or WithGroup, follow a reload.
type swapHandler struct {
	current *atomic.Pointer[slog.Handler]
	derive  func(slog.Handler) slog.Handler
}

func newSwapHandler(h slog.Handler) *swapHandler {
	s := &swapHandler{current: &atomic.Pointer[slog.Handler]{}}
	s.store(h)
	return s
}

// store replaces the chain for every handler sharing s's root.
func (s *swapHandler) store(h slog.Handler) {
	s.current.Store(&h)
}

func (s *swapHandler) handler() slog.Handler {
	h := *s.current.Load()
	if s.derive != nil {
		h = s.derive(h)
	}
	return h
}

func (s *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return s.handler().Enabled(ctx, level)
}

func (s *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.handler().Handle(ctx, r)
}

func (s *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	return s.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (s *swapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return s.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (s *swapHandler) with(step func(slog.Handler) slog.Handler) *swapHandler {
	prev := s.derive
	return &swapHandler{
		current: s.current,
		derive: func(h slog.Handler) slog.Handler {
			if prev != nil {
				h = prev(h)
			}
			return step(h)
		},
	}
}
