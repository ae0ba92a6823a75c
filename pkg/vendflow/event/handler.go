package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Handler processes one event during a drain pass. Handlers may read and
// mutate inventory state and may push derived events onto pending; pushed
// events are delivered later in the same pass, after anything already
// queued.
//
// A non-nil error is a handler fault: the bus does not isolate handlers,
// so the fault aborts delivery to the remaining subscribers and fails the
// batch.
type Handler interface {
	Handle(ctx context.Context, evt Event, pending *Queue) error

	// Kinds returns the event kinds this handler is meant for. It is
	// advisory; the bus delivers by subscription, not by this list.
	Kinds() []Kind
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt Event, pending *Queue) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, evt Event, pending *Queue) error {
	return f(ctx, evt, pending)
}

// Kinds returns nil.
func (f HandlerFunc) Kinds() []Kind { return nil }

// HandlerName extracts a name for a handler (for logging).
func HandlerName(h Handler) string {
	return fmt.Sprintf("%T", h)
}

// MiddlewareFunc wraps handlers to add cross-cutting concerns.
type MiddlewareFunc func(next Handler) Handler

// ChainMiddleware applies middleware in order, with first middleware outermost.
func ChainMiddleware(handler Handler, middleware ...MiddlewareFunc) Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

type wrappedHandler struct {
	inner Handler
	fn    HandlerFunc
}

func (w *wrappedHandler) Handle(ctx context.Context, evt Event, pending *Queue) error {
	return w.fn(ctx, evt, pending)
}

func (w *wrappedHandler) Kinds() []Kind { return w.inner.Kinds() }

// LoggingMiddleware logs every handled event with its duration and outcome.
func LoggingMiddleware(logger *slog.Logger) MiddlewareFunc {
	return func(next Handler) Handler {
		return &wrappedHandler{
			inner: next,
			fn: func(ctx context.Context, evt Event, pending *Queue) error {
				start := time.Now()
				err := next.Handle(ctx, evt, pending)
				if logger != nil {
					logger.Debug("event handled",
						slog.String("event_id", evt.ID()),
						slog.String("kind", string(evt.Kind())),
						slog.String("handler", HandlerName(next)),
						slog.Duration("duration", time.Since(start)),
						slog.Any("error", err),
					)
				}
				return err
			},
		}
	}
}
