// Package inventory holds per-machine stock state, the unit of truth the
// stock reactors mutate.
package inventory

import (
	"errors"
	"fmt"
)

// Machine is one vending machine's inventory record. The ID is assigned
// at creation and never changes. Stock is a signed level: reductions and
// refills apply unconditionally, so stock may go negative and has no
// upper bound.
type Machine struct {
	ID    string
	Stock int
}

// Store tracks stock levels for a fleet of machines.
// Implementations must be safe for concurrent use.
type Store interface {
	// Add registers a machine at its initial stock level. Machines are
	// added once at startup; there is no removal path.
	// Returns ErrDuplicateMachine if the ID is already registered.
	Add(m Machine) error

	// Exists reports whether the machine is known.
	Exists(id string) bool

	// Stock returns the current stock level.
	// Returns ErrUnknownMachine if the machine is absent.
	Stock(id string) (int, error)

	// Reduce lowers stock by qty. No floor is enforced.
	// Returns ErrUnknownMachine if the machine is absent.
	Reduce(id string, qty uint) error

	// Refill raises stock by qty. No cap is enforced.
	// Returns ErrUnknownMachine if the machine is absent.
	Refill(id string, qty uint) error

	// Machines returns a snapshot of all machines.
	Machines() ([]Machine, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for inventory operations.
var (
	// ErrUnknownMachine indicates an ID absent from the store.
	ErrUnknownMachine = errors.New("unknown machine")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("inventory store closed")

	// ErrDuplicateMachine indicates a machine ID registered twice.
	ErrDuplicateMachine = errors.New("duplicate machine")
)

func unknownMachine(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownMachine, id)
}
