package vendflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/vendflow/pkg/vendflow/event"
	"github.com/randalmurphal/vendflow/pkg/vendflow/observability"
)

// BusConfig configures bus behavior.
type BusConfig struct {
	// Logger receives the side-channel diagnostics ("no subscriber",
	// "unsubscribe target not found"). Nil disables logging.
	Logger *slog.Logger

	// Metrics records publish activity. Nil disables metrics.
	Metrics observability.MetricsRecorder
}

// Bus is the subscription registry: it maps event kinds to ordered handler
// lists and fans events out to them synchronously.
//
// A Bus is constructed explicitly and owned by the bootstrap caller; there
// is no process-wide instance. Registration order is delivery order, and
// the same handler may be registered more than once under a kind, in which
// case it is delivered to once per registration.
type Bus struct {
	config BusConfig

	mu   sync.RWMutex
	subs map[event.Kind][]*Subscription
}

// NewBus creates an empty bus.
func NewBus(config BusConfig) *Bus {
	if config.Metrics == nil {
		config.Metrics = observability.NoopMetrics{}
	}
	return &Bus{
		config: config,
		subs:   make(map[event.Kind][]*Subscription),
	}
}

// Subscription is the registration token returned by Subscribe. Tokens
// carry identity: two registrations of the same handler yield distinct
// tokens that are independently removable.
type Subscription struct {
	bus     *Bus
	kind    event.Kind
	handler event.Handler
}

// Unsubscribe removes this registration from the bus.
func (s *Subscription) Unsubscribe() {
	s.bus.Unsubscribe(s)
}

// Subscribe appends handler to the delivery list for kind. There is no
// uniqueness check; repeat calls register repeat deliveries.
func (b *Bus) Subscribe(kind event.Kind, handler event.Handler) *Subscription {
	sub := &Subscription{bus: b, kind: kind, handler: handler}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], sub)
	return sub
}

// Unsubscribe removes the registration identified by sub. Removing a token
// whose kind has no registrants, or a token already removed, is a logged
// no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.kind]
	if len(list) == 0 {
		observability.LogUnsubscribeMiss(b.config.Logger, string(sub.kind))
		return
	}

	kept := list[:0]
	for _, s := range list {
		if s != sub {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(list) {
		observability.LogUnsubscribeMiss(b.config.Logger, string(sub.kind))
		return
	}
	b.subs[sub.kind] = kept
}

// Publish delivers evt to every handler registered for its kind, in
// registration order, passing the shared pending queue so handlers can
// append derived events for the current drain pass.
//
// Zero registrants is a configuration gap, not a fault: it is logged and
// Publish returns nil with the queue untouched. Handler faults are not
// isolated; the first error aborts delivery to the remaining handlers and
// is returned wrapped in *event.EventError.
func (b *Bus) Publish(ctx context.Context, evt event.Event, pending *event.Queue) error {
	b.mu.RLock()
	list := b.subs[evt.Kind()]
	handlers := make([]event.Handler, len(list))
	for i, s := range list {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	start := time.Now()

	if len(handlers) == 0 {
		observability.LogNoSubscriber(b.config.Logger, string(evt.Kind()), evt.ID())
		b.config.Metrics.RecordPublish(ctx, string(evt.Kind()), 0, time.Since(start), nil)
		return nil
	}

	for _, h := range handlers {
		if err := h.Handle(ctx, evt, pending); err != nil {
			fault := &event.EventError{
				Event:     evt,
				Handler:   event.HandlerName(h),
				Message:   "handler fault",
				Err:       err,
				Timestamp: time.Now(),
			}
			b.config.Metrics.RecordPublish(ctx, string(evt.Kind()), len(handlers), time.Since(start), fault)
			return fault
		}
	}

	b.config.Metrics.RecordPublish(ctx, string(evt.Kind()), len(handlers), time.Since(start), nil)
	return nil
}
