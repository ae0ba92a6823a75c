// Package event defines the vendflow event model and the primitives the
// dispatch layer is built from.
//
// The event set is closed: sales and refills flow in from the outside
// world, low-stock warnings and stock-ok notices are derived by the stock
// reactors. Events are immutable once constructed; derived events inherit
// the correlation ID of the event that caused them so a warning can always
// be traced back to the sale that triggered it.
//
// The package also provides:
//   - Queue, the FIFO pending-event work list shared between the dispatch
//     driver and handlers during a drain pass
//   - Handler/HandlerFunc, the subscriber contract
//   - middleware chaining for cross-cutting concerns
package event
