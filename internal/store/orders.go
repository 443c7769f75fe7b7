package store

import (
	"errors"
	"sync"

	. "github.com/ajinkya-tambe/FixedIncome/internal/common"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderExists   = errors.New("order already exists")
	ErrTerminalOrder = errors.New("order is terminal")
)

type orderEntry struct {
	mu    sync.Mutex
	order Order
}

// Orders is the system of record for orders and the append-only trade log.
// Mutation goes through Mutate, which applies the closure under a per-order
// lock: read-modify-write on one order id is atomic, and distinct orders
// never contend. The map itself is only locked to look entries up or add
// a new one.
type Orders struct {
	mu      sync.RWMutex
	entries map[string]*orderEntry
	created []string // Order ids in insertion order

	tradeMu sync.Mutex
	trades  []Trade
}

func NewOrders() *Orders {
	return &Orders{
		entries: make(map[string]*orderEntry),
	}
}

// Insert adds a freshly submitted order.
func (s *Orders) Insert(order Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[order.ID]; ok {
		return ErrOrderExists
	}
	s.entries[order.ID] = &orderEntry{order: order}
	s.created = append(s.created, order.ID)
	return nil
}

// Get returns a copy of the order.
func (s *Orders) Get(id string) (Order, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return Order{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.order, nil
}

// Mutate applies fn to the stored order under its lock. If fn returns an
// error the order is left exactly as it was. The updated (or untouched)
// order is returned either way, so callers can surface current state.
func (s *Orders) Mutate(id string, fn func(*Order) error) (Order, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return Order{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	prev := entry.order
	if err := fn(&entry.order); err != nil {
		entry.order = prev
		return prev, err
	}
	return entry.order, nil
}

// List returns a snapshot of all orders in creation order.
func (s *Orders) List() []Order {
	s.mu.RLock()
	ids := make([]string, len(s.created))
	copy(ids, s.created)
	s.mu.RUnlock()

	orders := make([]Order, 0, len(ids))
	for _, id := range ids {
		if order, err := s.Get(id); err == nil {
			orders = append(orders, order)
		}
	}
	return orders
}

// AppendTrade records one immutable trade.
func (s *Orders) AppendTrade(trade Trade) {
	s.tradeMu.Lock()
	defer s.tradeMu.Unlock()
	s.trades = append(s.trades, trade)
}

// Trades returns a snapshot of the trade log in append order.
func (s *Orders) Trades() []Trade {
	s.tradeMu.Lock()
	defer s.tradeMu.Unlock()

	out := make([]Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

func (s *Orders) lookup(id string) (*orderEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return entry, nil
}
