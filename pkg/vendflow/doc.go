/*
Package vendflow provides an in-process publish/subscribe event bus driving
a vending machine inventory state machine.

# Overview

vendflow dispatches inventory events (sales, refills) to registered
handlers that mutate per-machine stock levels and may derive follow-up
events (low-stock warnings, stock-ok notices) into the same dispatch pass.
Delivery is synchronous and ordered: handlers run in registration order,
and a drain pass processes its batch plus anything derived during it,
FIFO, until the queue is empty.

The core pieces:
  - Bus: the subscription registry (Subscribe, Unsubscribe, Publish)
  - Driver: the work-list drain loop (RunBatch)
  - the stock reactors: SaleHandler, RefillHandler, LowStockHandler,
    StockOKHandler
  - inventory.Store: per-machine stock state (in-memory or SQLite)

# Basic Usage

Construct a store, register the reactors, and drain a batch:

	store := inventory.NewMemoryStore()
	store.Add(inventory.Machine{ID: "001", Stock: vendflow.DefaultInitialStock})

	bus := vendflow.NewBus(vendflow.BusConfig{Logger: logger})
	vendflow.RegisterStockHandlers(bus, store, vendflow.DefaultLowStockThreshold, logger)

	driver := vendflow.NewDriver(bus, vendflow.DriverConfig{Logger: logger})
	err := driver.RunBatch(ctx, []event.Event{
	    event.NewSale("001", 8),
	    event.NewRefill("001", 5),
	})

A sale that drops a machine from at or above the threshold to below it
pushes a LowStockWarning onto the pending queue; the warning is delivered
later in the same pass, after the events already batched. The crossing is
edge-triggered, so a machine that stays below the threshold does not warn
again.

# Faults

Bad input degrades gracefully: events for unknown machines, publishes with
no subscribers, and unsubscribes of unregistered handlers are logged and
skipped. A genuine handler fault is not caught; it aborts the current
batch and surfaces from RunBatch as *event.EventError.
*/
package vendflow
