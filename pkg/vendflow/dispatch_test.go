package vendflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/vendflow/pkg/vendflow"
	"github.com/randalmurphal/vendflow/pkg/vendflow/event"
)

// Derived events are delivered after events already batched, not
// immediately after the event that produced them: [E1, E2] where E1
// derives E3 delivers E1, E2, E3.
func TestRunBatchCascadeOrdering(t *testing.T) {
	bus := vendflow.NewBus(vendflow.BusConfig{})
	var order []string

	e1 := event.NewSale("001", 1, event.WithEventID("e1"))
	e2 := event.NewSale("002", 1, event.WithEventID("e2"))
	e3 := event.NewRefill("001", 1, event.WithEventID("e3"))

	bus.Subscribe(event.KindSale, event.HandlerFunc(func(ctx context.Context, evt event.Event, pending *event.Queue) error {
		order = append(order, evt.ID())
		if evt.ID() == "e1" {
			pending.Push(e3)
		}
		return nil
	}))
	bus.Subscribe(event.KindRefill, event.HandlerFunc(func(ctx context.Context, evt event.Event, pending *event.Queue) error {
		order = append(order, evt.ID())
		return nil
	}))

	driver := vendflow.NewDriver(bus, vendflow.DriverConfig{})
	err := driver.RunBatch(context.Background(), []event.Event{e1, e2})

	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, order)
}

func TestRunBatchEmpty(t *testing.T) {
	bus := vendflow.NewBus(vendflow.BusConfig{})
	driver := vendflow.NewDriver(bus, vendflow.DriverConfig{})

	require.NoError(t, driver.RunBatch(context.Background(), nil))
}

func TestRunBatchFaultAbortsBatch(t *testing.T) {
	bus := vendflow.NewBus(vendflow.BusConfig{})
	boom := errors.New("boom")
	var delivered []string

	bus.Subscribe(event.KindSale, event.HandlerFunc(func(ctx context.Context, evt event.Event, pending *event.Queue) error {
		delivered = append(delivered, evt.ID())
		if evt.ID() == "bad" {
			return boom
		}
		return nil
	}))

	driver := vendflow.NewDriver(bus, vendflow.DriverConfig{})
	err := driver.RunBatch(context.Background(), []event.Event{
		event.NewSale("001", 1, event.WithEventID("ok")),
		event.NewSale("002", 1, event.WithEventID("bad")),
		event.NewSale("003", 1, event.WithEventID("never")),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"ok", "bad"}, delivered, "events after the fault must be dropped")
}

// A handler that derives unconditionally would drain forever; MaxEvents
// turns that into a typed error.
func TestRunBatchMaxEvents(t *testing.T) {
	bus := vendflow.NewBus(vendflow.BusConfig{})

	bus.Subscribe(event.KindSale, event.HandlerFunc(func(ctx context.Context, evt event.Event, pending *event.Queue) error {
		pending.Push(event.NewSale("001", 1))
		return nil
	}))

	driver := vendflow.NewDriver(bus, vendflow.DriverConfig{MaxEvents: 50})
	err := driver.RunBatch(context.Background(), []event.Event{event.NewSale("001", 1)})

	require.Error(t, err)
	assert.ErrorIs(t, err, vendflow.ErrTooManyEvents)
}

func TestRunBatchContextCancelled(t *testing.T) {
	bus := vendflow.NewBus(vendflow.BusConfig{})
	bus.Subscribe(event.KindSale, event.HandlerFunc(func(ctx context.Context, evt event.Event, pending *event.Queue) error {
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := vendflow.NewDriver(bus, vendflow.DriverConfig{})
	err := driver.RunBatch(ctx, []event.Event{event.NewSale("001", 1)})

	assert.ErrorIs(t, err, context.Canceled)
}
