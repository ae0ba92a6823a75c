package vendflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/vendflow/pkg/vendflow/event"
	"github.com/randalmurphal/vendflow/pkg/vendflow/observability"
)

// DriverConfig configures the dispatch driver.
type DriverConfig struct {
	// Logger receives per-batch progress lines. Nil disables logging.
	Logger *slog.Logger

	// Metrics records drain activity. Nil disables metrics.
	Metrics observability.MetricsRecorder

	// MaxEvents aborts a drain pass after this many deliveries. It is a
	// guard against runaway cascades from handlers that emit derived
	// events unconditionally; edge-triggered handlers never need it.
	// Default: 0 (unlimited).
	MaxEvents int
}

// ErrTooManyEvents is returned when a drain pass trips MaxEvents.
var ErrTooManyEvents = errors.New("drain pass exceeded event limit")

// Driver owns the pending-event queue and drains batches through the bus.
type Driver struct {
	bus    *Bus
	config DriverConfig
}

// NewDriver creates a dispatch driver for bus.
func NewDriver(bus *Bus, config DriverConfig) *Driver {
	if config.Metrics == nil {
		config.Metrics = observability.NoopMetrics{}
	}
	return &Driver{bus: bus, config: config}
}

// RunBatch drains the given events to exhaustion.
//
// The batch seeds a fresh queue. Each iteration pops the head event and
// publishes it with the remaining queue as the pending-event target, so
// anything a handler pushes is delivered in the same pass, after the
// events already queued ahead of it. Given [E1, E2] where handling E1
// derives E3, delivery order is E1, E2, E3.
//
// The first handler fault aborts the pass and is returned; events still
// queued are dropped. The batch fails, the process does not.
func (d *Driver) RunBatch(ctx context.Context, events []event.Event) error {
	queue := event.NewQueue(events...)
	observability.LogBatchStart(d.config.Logger, queue.Len())

	start := time.Now()
	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			d.config.Metrics.RecordBatch(ctx, processed, time.Since(start), err)
			observability.LogBatchError(d.config.Logger, processed, err)
			return err
		}

		evt, ok := queue.Pop()
		if !ok {
			break
		}

		if d.config.MaxEvents > 0 && processed >= d.config.MaxEvents {
			err := fmt.Errorf("%w (%d)", ErrTooManyEvents, d.config.MaxEvents)
			d.config.Metrics.RecordBatch(ctx, processed, time.Since(start), err)
			observability.LogBatchError(d.config.Logger, processed, err)
			return err
		}

		if err := d.bus.Publish(ctx, evt, queue); err != nil {
			d.config.Metrics.RecordBatch(ctx, processed, time.Since(start), err)
			observability.LogBatchError(d.config.Logger, processed, err)
			return err
		}
		processed++
	}

	elapsed := time.Since(start)
	d.config.Metrics.RecordBatch(ctx, processed, elapsed, nil)
	observability.LogBatchComplete(d.config.Logger, processed, float64(elapsed.Milliseconds()))
	return nil
}
