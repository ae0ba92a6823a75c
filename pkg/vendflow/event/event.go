package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind identifies an event category.
type Kind string

// The closed set of vendflow event kinds.
const (
	// KindSale is emitted when a machine dispenses product.
	KindSale Kind = "inventory.sale"

	// KindRefill is emitted when a machine is restocked.
	KindRefill Kind = "inventory.refill"

	// KindLowStock is derived when a sale drops stock below the threshold.
	KindLowStock Kind = "stock.low"

	// KindStockOK is derived when a refill brings stock back to the threshold.
	KindStockOK Kind = "stock.ok"
)

// Metadata contains the common event fields.
type Metadata struct {
	EventID       string    `json:"id"`
	EventKind     Kind      `json:"kind"`
	MachineID     string    `json:"machine_id"`
	CorrelationID string    `json:"correlation_id"`
	CausationID   string    `json:"causation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Payload is the kind-specific portion of an event.
type Payload interface {
	// Kind returns the event kind this payload belongs to.
	Kind() Kind
}

// Sale records quantity dispensed from a machine.
type Sale struct {
	Quantity uint `json:"quantity"`
}

// Kind implements Payload.
func (Sale) Kind() Kind { return KindSale }

// Refill records quantity added to a machine.
type Refill struct {
	Amount uint `json:"amount"`
}

// Kind implements Payload.
func (Refill) Kind() Kind { return KindRefill }

// LowStockWarning reports stock falling below the warning threshold.
type LowStockWarning struct {
	Remaining int `json:"remaining"`
}

// Kind implements Payload.
func (LowStockWarning) Kind() Kind { return KindLowStock }

// StockOk reports stock recovering to the warning threshold.
type StockOk struct {
	Remaining int `json:"remaining"`
}

// Kind implements Payload.
func (StockOk) Kind() Kind { return KindStockOK }

// Event is an immutable record of something that happened to a machine.
// Construct events through the New* functions; the zero value is not valid.
type Event struct {
	Meta    Metadata
	Payload Payload
}

// ID returns the unique event identifier.
func (e Event) ID() string { return e.Meta.EventID }

// Kind returns the event kind.
func (e Event) Kind() Kind { return e.Meta.EventKind }

// MachineID returns the machine the event refers to. The ID is not
// validated against a known-machine list; handlers deal with unknowns.
func (e Event) MachineID() string { return e.Meta.MachineID }

// CorrelationID groups an event with everything derived from the same root.
func (e Event) CorrelationID() string { return e.Meta.CorrelationID }

// CausationID is the ID of the event that directly caused this one, or
// empty for root events.
func (e Event) CausationID() string { return e.Meta.CausationID }

// Timestamp returns when the event occurred.
func (e Event) Timestamp() time.Time { return e.Meta.Timestamp }

// MarshalJSON emits the metadata with the kind-tagged payload inlined.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Metadata
		Payload Payload `json:"payload"`
	}{e.Meta, e.Payload})
}

// Option configures event creation.
type Option func(*Metadata)

// WithEventID sets a specific event ID (default: auto-generated UUID).
func WithEventID(id string) Option {
	return func(m *Metadata) { m.EventID = id }
}

// WithCorrelationID sets the correlation ID (default: the event's own ID).
func WithCorrelationID(id string) Option {
	return func(m *Metadata) { m.CorrelationID = id }
}

// WithCausationID sets the ID of the causing event.
func WithCausationID(id string) Option {
	return func(m *Metadata) { m.CausationID = id }
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) Option {
	return func(m *Metadata) { m.Timestamp = t }
}

// New creates an event for the given machine and payload.
func New(machineID string, payload Payload, opts ...Option) Event {
	meta := Metadata{
		EventID:   uuid.New().String(),
		EventKind: payload.Kind(),
		MachineID: machineID,
		Timestamp: time.Now(),
	}

	for _, opt := range opts {
		opt(&meta)
	}

	// Root events correlate to themselves.
	if meta.CorrelationID == "" {
		meta.CorrelationID = meta.EventID
	}

	return Event{Meta: meta, Payload: payload}
}

// NewDerived creates an event caused by parent. It inherits the parent's
// correlation ID and records the parent as causation.
func NewDerived(parent Event, machineID string, payload Payload, opts ...Option) Event {
	derived := []Option{
		WithCorrelationID(parent.CorrelationID()),
		WithCausationID(parent.ID()),
	}
	return New(machineID, payload, append(derived, opts...)...)
}

// NewSale creates a sale event.
func NewSale(machineID string, quantity uint, opts ...Option) Event {
	return New(machineID, Sale{Quantity: quantity}, opts...)
}

// NewRefill creates a refill event.
func NewRefill(machineID string, amount uint, opts ...Option) Event {
	return New(machineID, Refill{Amount: amount}, opts...)
}

// NewLowStockWarning creates a low-stock warning derived from parent.
func NewLowStockWarning(parent Event, machineID string, remaining int, opts ...Option) Event {
	return NewDerived(parent, machineID, LowStockWarning{Remaining: remaining}, opts...)
}

// NewStockOk creates a stock-ok notice derived from parent.
func NewStockOk(parent Event, machineID string, remaining int, opts ...Option) Event {
	return NewDerived(parent, machineID, StockOk{Remaining: remaining}, opts...)
}
