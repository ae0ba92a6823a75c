package vendflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/vendflow/pkg/vendflow/event"
	"github.com/randalmurphal/vendflow/pkg/vendflow/inventory"
	"github.com/randalmurphal/vendflow/pkg/vendflow/observability"
)

// DefaultLowStockThreshold is the fleet-wide stock level below which a
// sale emits a low-stock warning. It is process-wide configuration, not
// per-machine state.
const DefaultLowStockThreshold = 3

// DefaultInitialStock is the stock level machines start with.
const DefaultInitialStock = 10

// SaleHandler reduces stock for sale events and emits a low-stock warning
// when a sale crosses the threshold from above.
type SaleHandler struct {
	store     inventory.Store
	threshold int
	logger    *slog.Logger
}

// NewSaleHandler creates a sale reactor. A threshold <= 0 falls back to
// DefaultLowStockThreshold.
func NewSaleHandler(store inventory.Store, threshold int, logger *slog.Logger) *SaleHandler {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &SaleHandler{store: store, threshold: threshold, logger: logger}
}

// Kinds implements event.Handler.
func (h *SaleHandler) Kinds() []event.Kind { return []event.Kind{event.KindSale} }

// Handle implements event.Handler.
//
// The warning is edge-triggered: only the sale that crosses from at or
// above the threshold to below it emits one. Further sales already below
// the threshold stay silent, so a machine warns exactly once per dip.
func (h *SaleHandler) Handle(ctx context.Context, evt event.Event, pending *event.Queue) error {
	sale, ok := evt.Payload.(event.Sale)
	if !ok {
		return fmt.Errorf("sale handler received %s payload", evt.Kind())
	}

	machineID := evt.MachineID()
	pre, err := h.store.Stock(machineID)
	if errors.Is(err, inventory.ErrUnknownMachine) {
		// A sale for a machine we do not track is bad input, not a
		// fault. Skip the mutation and keep the pass alive.
		observability.LogUnknownMachine(h.logger, machineID, string(evt.Kind()), evt.ID())
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.store.Reduce(machineID, sale.Quantity); err != nil {
		return err
	}

	post, err := h.store.Stock(machineID)
	if err != nil {
		return err
	}

	if pre >= h.threshold && post < h.threshold {
		pending.Push(event.NewLowStockWarning(evt, machineID, post))
	}
	return nil
}

// RefillHandler raises stock for refill events and emits a stock-ok notice
// when a refill crosses the threshold from below.
type RefillHandler struct {
	store     inventory.Store
	threshold int
	logger    *slog.Logger
}

// NewRefillHandler creates a refill reactor. A threshold <= 0 falls back
// to DefaultLowStockThreshold.
func NewRefillHandler(store inventory.Store, threshold int, logger *slog.Logger) *RefillHandler {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &RefillHandler{store: store, threshold: threshold, logger: logger}
}

// Kinds implements event.Handler.
func (h *RefillHandler) Kinds() []event.Kind { return []event.Kind{event.KindRefill} }

// Handle implements event.Handler. Edge-triggered symmetrically to
// SaleHandler: only the refill that crosses from below the threshold to at
// or above it emits a stock-ok notice.
func (h *RefillHandler) Handle(ctx context.Context, evt event.Event, pending *event.Queue) error {
	refill, ok := evt.Payload.(event.Refill)
	if !ok {
		return fmt.Errorf("refill handler received %s payload", evt.Kind())
	}

	machineID := evt.MachineID()
	pre, err := h.store.Stock(machineID)
	if errors.Is(err, inventory.ErrUnknownMachine) {
		observability.LogUnknownMachine(h.logger, machineID, string(evt.Kind()), evt.ID())
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.store.Refill(machineID, refill.Amount); err != nil {
		return err
	}

	post, err := h.store.Stock(machineID)
	if err != nil {
		return err
	}

	if pre < h.threshold && post >= h.threshold {
		pending.Push(event.NewStockOk(evt, machineID, post))
	}
	return nil
}

// LowStockHandler is the terminal reactor for low-stock warnings. It only
// observes; it is the extension point for real alerting or reordering.
type LowStockHandler struct {
	logger *slog.Logger
}

// NewLowStockHandler creates a low-stock observer.
func NewLowStockHandler(logger *slog.Logger) *LowStockHandler {
	return &LowStockHandler{logger: logger}
}

// Kinds implements event.Handler.
func (h *LowStockHandler) Kinds() []event.Kind { return []event.Kind{event.KindLowStock} }

// Handle implements event.Handler.
func (h *LowStockHandler) Handle(ctx context.Context, evt event.Event, pending *event.Queue) error {
	warning, ok := evt.Payload.(event.LowStockWarning)
	if !ok {
		return fmt.Errorf("low-stock handler received %s payload", evt.Kind())
	}
	if h.logger != nil {
		h.logger.Warn("machine stock low",
			slog.String("machine_id", evt.MachineID()),
			slog.Int("remaining", warning.Remaining),
			slog.String("caused_by", evt.CausationID()),
		)
	}
	return nil
}

// StockOKHandler is the terminal reactor for stock-ok notices.
type StockOKHandler struct {
	logger *slog.Logger
}

// NewStockOKHandler creates a stock-ok observer.
func NewStockOKHandler(logger *slog.Logger) *StockOKHandler {
	return &StockOKHandler{logger: logger}
}

// Kinds implements event.Handler.
func (h *StockOKHandler) Kinds() []event.Kind { return []event.Kind{event.KindStockOK} }

// Handle implements event.Handler.
func (h *StockOKHandler) Handle(ctx context.Context, evt event.Event, pending *event.Queue) error {
	notice, ok := evt.Payload.(event.StockOk)
	if !ok {
		return fmt.Errorf("stock-ok handler received %s payload", evt.Kind())
	}
	if h.logger != nil {
		h.logger.Info("machine stock recovered",
			slog.String("machine_id", evt.MachineID()),
			slog.Int("remaining", notice.Remaining),
			slog.String("caused_by", evt.CausationID()),
		)
	}
	return nil
}

// RegisterStockHandlers wires the four stock reactors onto a bus with one
// shared store and threshold. It returns the subscriptions in registration
// order (sale, refill, low-stock, stock-ok).
func RegisterStockHandlers(bus *Bus, store inventory.Store, threshold int, logger *slog.Logger) []*Subscription {
	return []*Subscription{
		bus.Subscribe(event.KindSale, NewSaleHandler(store, threshold, logger)),
		bus.Subscribe(event.KindRefill, NewRefillHandler(store, threshold, logger)),
		bus.Subscribe(event.KindLowStock, NewLowStockHandler(logger)),
		bus.Subscribe(event.KindStockOK, NewStockOKHandler(logger)),
	}
}
