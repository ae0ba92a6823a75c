package inventory

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory inventory store. Data is lost when the
// process exits; suitable for tests and single-run simulations.
type MemoryStore struct {
	mu       sync.RWMutex
	machines map[string]int // id -> stock
	closed   bool
}

// NewMemoryStore creates an empty in-memory inventory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{machines: make(map[string]int)}
}

// Add implements Store.
func (s *MemoryStore) Add(m Machine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, ok := s.machines[m.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateMachine, m.ID)
	}

	s.machines[m.ID] = m.Stock
	return nil
}

// Exists implements Store.
func (s *MemoryStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.machines[id]
	return ok
}

// Stock implements Store.
func (s *MemoryStore) Stock(id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	stock, ok := s.machines[id]
	if !ok {
		return 0, unknownMachine(id)
	}
	return stock, nil
}

// Reduce implements Store.
func (s *MemoryStore) Reduce(id string, qty uint) error {
	return s.adjust(id, -int(qty))
}

// Refill implements Store.
func (s *MemoryStore) Refill(id string, qty uint) error {
	return s.adjust(id, int(qty))
}

func (s *MemoryStore) adjust(id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	stock, ok := s.machines[id]
	if !ok {
		return unknownMachine(id)
	}

	s.machines[id] = stock + delta
	return nil
}

// Machines implements Store. The snapshot is ordered by machine ID.
func (s *MemoryStore) Machines() ([]Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	out := make([]Machine, 0, len(s.machines))
	for id, stock := range s.machines {
		out = append(out, Machine{ID: id, Stock: stock})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
