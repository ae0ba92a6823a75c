// Package config loads vending fleet configuration from YAML or JSON.
package config

import (
	"fmt"

	"github.com/randalmurphal/vendflow/pkg/vendflow/inventory"
)

// MachineConfig describes one machine in the fleet.
type MachineConfig struct {
	ID string `yaml:"id" json:"id"`

	// Stock is the initial stock level. Nil means the default (10).
	Stock *int `yaml:"stock,omitempty" json:"stock,omitempty"`
}

// Config is the vending fleet configuration.
type Config struct {
	// Machines lists the fleet. IDs must be unique and non-empty.
	Machines []MachineConfig `yaml:"machines" json:"machines"`

	// LowStockThreshold is the fleet-wide warning threshold.
	// Zero means the default (3).
	LowStockThreshold int `yaml:"low_stock_threshold" json:"low_stock_threshold"`

	// MaxEvents bounds a single drain pass. Zero means unlimited.
	MaxEvents int `yaml:"max_events" json:"max_events"`
}

const (
	defaultThreshold    = 3
	defaultInitialStock = 10
)

// Default returns the reference configuration: threshold 3, no machines.
func Default() Config {
	return Config{LowStockThreshold: defaultThreshold}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("low_stock_threshold must not be negative")
	}
	if c.MaxEvents < 0 {
		return fmt.Errorf("max_events must not be negative")
	}

	seen := make(map[string]struct{}, len(c.Machines))
	for i, m := range c.Machines {
		if m.ID == "" {
			return fmt.Errorf("machine %d: id is required", i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("machine %d: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return nil
}

// Threshold returns the configured threshold, or the default when unset.
func (c Config) Threshold() int {
	if c.LowStockThreshold <= 0 {
		return defaultThreshold
	}
	return c.LowStockThreshold
}

// Seed registers every configured machine in store, applying the default
// initial stock where none is configured.
func (c Config) Seed(store inventory.Store) error {
	for _, m := range c.Machines {
		stock := defaultInitialStock
		if m.Stock != nil {
			stock = *m.Stock
		}
		if err := store.Add(inventory.Machine{ID: m.ID, Stock: stock}); err != nil {
			return fmt.Errorf("seed machine %q: %w", m.ID, err)
		}
	}
	return nil
}
