package vendflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/vendflow/pkg/vendflow"
	"github.com/randalmurphal/vendflow/pkg/vendflow/event"
	"github.com/randalmurphal/vendflow/pkg/vendflow/inventory"
)

func seededStore(t *testing.T, stock int) *inventory.MemoryStore {
	t.Helper()
	store := inventory.NewMemoryStore()
	require.NoError(t, store.Add(inventory.Machine{ID: "001", Stock: stock}))
	return store
}

func TestSaleHandlerReducesStock(t *testing.T) {
	store := seededStore(t, 10)
	h := vendflow.NewSaleHandler(store, 3, nil)
	pending := event.NewQueue()

	err := h.Handle(context.Background(), event.NewSale("001", 4), pending)
	require.NoError(t, err)

	stock, err := store.Stock("001")
	require.NoError(t, err)
	assert.Equal(t, 6, stock)
	assert.Equal(t, 0, pending.Len(), "no warning above threshold")
}

func TestSaleHandlerEdgeTrigger(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		quantity    uint
		wantStock   int
		wantWarning bool
	}{
		{"crosses threshold", 10, 8, 2, true},
		{"lands exactly on threshold", 10, 7, 3, false},
		{"crosses from exactly threshold", 3, 1, 2, true},
		{"already below threshold", 2, 1, 1, false},
		{"drops negative from below", 1, 5, -4, false},
		{"drops negative from above", 5, 9, -4, true},
		{"zero quantity stays put", 5, 0, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore(t, tt.start)
			h := vendflow.NewSaleHandler(store, 3, nil)
			pending := event.NewQueue()

			sale := event.NewSale("001", tt.quantity)
			require.NoError(t, h.Handle(context.Background(), sale, pending))

			stock, err := store.Stock("001")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, stock)

			if !tt.wantWarning {
				assert.Equal(t, 0, pending.Len())
				return
			}

			require.Equal(t, 1, pending.Len(), "exactly one warning per crossing")
			derived, _ := pending.Pop()
			assert.Equal(t, event.KindLowStock, derived.Kind())
			assert.Equal(t, "001", derived.MachineID())
			assert.Equal(t, sale.ID(), derived.CausationID())

			warning, ok := derived.Payload.(event.LowStockWarning)
			require.True(t, ok)
			assert.Equal(t, tt.wantStock, warning.Remaining)
		})
	}
}

// Repeated sales on the same side of the threshold must not re-warn.
func TestSaleHandlerWarnsOncePerDip(t *testing.T) {
	store := seededStore(t, 10)
	h := vendflow.NewSaleHandler(store, 3, nil)
	pending := event.NewQueue()

	require.NoError(t, h.Handle(context.Background(), event.NewSale("001", 8), pending))
	assert.Equal(t, 1, pending.Len())

	require.NoError(t, h.Handle(context.Background(), event.NewSale("001", 1), pending))
	assert.Equal(t, 1, pending.Len(), "second sale below threshold is silent")
}

func TestRefillHandlerEdgeTrigger(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		amount    uint
		wantStock int
		wantOK    bool
	}{
		{"crosses threshold", 2, 5, 7, true},
		{"lands exactly on threshold", 2, 1, 3, true},
		{"stays below threshold", 1, 1, 2, false},
		{"already at threshold", 3, 2, 5, false},
		{"already above threshold", 7, 2, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore(t, tt.start)
			h := vendflow.NewRefillHandler(store, 3, nil)
			pending := event.NewQueue()

			refill := event.NewRefill("001", tt.amount)
			require.NoError(t, h.Handle(context.Background(), refill, pending))

			stock, err := store.Stock("001")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, stock)

			if !tt.wantOK {
				assert.Equal(t, 0, pending.Len())
				return
			}

			require.Equal(t, 1, pending.Len())
			derived, _ := pending.Pop()
			assert.Equal(t, event.KindStockOK, derived.Kind())
			assert.Equal(t, refill.ID(), derived.CausationID())

			notice, ok := derived.Payload.(event.StockOk)
			require.True(t, ok)
			assert.Equal(t, tt.wantStock, notice.Remaining)
		})
	}
}

// An event for a machine the store does not track is logged and skipped;
// it neither mutates anything nor fails the pass.
func TestHandlersUnknownMachine(t *testing.T) {
	store := seededStore(t, 10)
	pending := event.NewQueue()

	sale := vendflow.NewSaleHandler(store, 3, nil)
	require.NoError(t, sale.Handle(context.Background(), event.NewSale("404", 8), pending))

	refill := vendflow.NewRefillHandler(store, 3, nil)
	require.NoError(t, refill.Handle(context.Background(), event.NewRefill("404", 8), pending))

	assert.Equal(t, 0, pending.Len())
	stock, err := store.Stock("001")
	require.NoError(t, err)
	assert.Equal(t, 10, stock, "known machine untouched")
}

func TestHandlersRejectWrongPayload(t *testing.T) {
	store := seededStore(t, 10)
	pending := event.NewQueue()

	sale := vendflow.NewSaleHandler(store, 3, nil)
	err := sale.Handle(context.Background(), event.NewRefill("001", 1), pending)
	assert.Error(t, err)

	refill := vendflow.NewRefillHandler(store, 3, nil)
	err = refill.Handle(context.Background(), event.NewSale("001", 1), pending)
	assert.Error(t, err)
}

func TestTerminalHandlersObserveOnly(t *testing.T) {
	pending := event.NewQueue()
	parent := event.NewSale("001", 8)

	low := vendflow.NewLowStockHandler(nil)
	require.NoError(t, low.Handle(context.Background(), event.NewLowStockWarning(parent, "001", 2), pending))

	ok := vendflow.NewStockOKHandler(nil)
	require.NoError(t, ok.Handle(context.Background(), event.NewStockOk(parent, "001", 7), pending))

	assert.Equal(t, 0, pending.Len(), "terminal reactors derive nothing")
}

func TestHandlerKinds(t *testing.T) {
	store := seededStore(t, 10)

	assert.Equal(t, []event.Kind{event.KindSale}, vendflow.NewSaleHandler(store, 0, nil).Kinds())
	assert.Equal(t, []event.Kind{event.KindRefill}, vendflow.NewRefillHandler(store, 0, nil).Kinds())
	assert.Equal(t, []event.Kind{event.KindLowStock}, vendflow.NewLowStockHandler(nil).Kinds())
	assert.Equal(t, []event.Kind{event.KindStockOK}, vendflow.NewStockOKHandler(nil).Kinds())
}
