package cart

import (
	"sync"

	"github.com/Pelestrom/vin-gros-boutique-ci/internal/pricing"
)

// Line is one entry in the cart, keyed by product id.
type Line struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	UnitPrice pricing.Money `json:"unitPrice"`
	ImageRef  string        `json:"imageRef"`
	Quantity  int           `json:"quantity"`
}

// Subtotal returns the line's unit price multiplied by its quantity.
func (l Line) Subtotal() pricing.Money {
	return pricing.LineTotal(l.UnitPrice, l.Quantity)
}

// Snapshot is a consistent read of the cart lines and their derived totals.
type Snapshot struct {
	Lines      []Line        `json:"lines"`
	TotalCount int           `json:"totalCount"`
	TotalPrice pricing.Money `json:"totalPrice"`
}

// Store holds the lines a shopper selected. Lines keep first-added order and
// there is at most one line per product id. All methods are safe for
// concurrent use; mutations are serialised.
type Store struct {
	mu    sync.RWMutex
	lines []Line
	index map[int64]int
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{index: make(map[int64]int)}
}

// AddToCart appends item as a new line, or increases the quantity of the
// existing line with the same id. Items with a quantity below 1 are ignored.
func (s *Store) AddToCart(item Line) {
	if item.Quantity < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[item.ID]; ok {
		s.lines[i].Quantity += item.Quantity
		return
	}
	s.index[item.ID] = len(s.lines)
	s.lines = append(s.lines, item)
}

// RemoveFromCart deletes the line with id. Absent ids are a no-op.
func (s *Store) RemoveFromCart(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.lines); j++ {
		s.index[s.lines[j].ID] = j
	}
}

// UpdateQuantity replaces the quantity of the line with id. Quantities below 1
// and unknown ids leave the cart unchanged; use RemoveFromCart to delete a line.
func (s *Store) UpdateQuantity(id int64, quantity int) {
	if quantity < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[id]; ok {
		s.lines[i].Quantity = quantity
	}
}

// ClearCart empties the cart.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.index = make(map[int64]int)
}

// Lines returns an ordered copy of the cart lines.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLines()
}

// Line returns the line with id, if present.
func (s *Store) Line(id int64) (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Line{}, false
	}
	return s.lines[i], true
}

// TotalCount is the sum of all line quantities.
func (s *Store) TotalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary().Count
}

// TotalPrice is the sum of unit price times quantity over all lines.
func (s *Store) TotalPrice() pricing.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary().Total
}

// Snapshot returns lines and totals taken under a single read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := s.summary()
	return Snapshot{Lines: s.copyLines(), TotalCount: sum.Count, TotalPrice: sum.Total}
}

// Take returns the current snapshot and empties the cart in one step, so no
// concurrent addition can slip between the read and the clear.
func (s *Store) Take() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := s.summary()
	snap := Snapshot{Lines: s.copyLines(), TotalCount: sum.Count, TotalPrice: sum.Total}
	s.lines = nil
	s.index = make(map[int64]int)
	return snap
}

func (s *Store) copyLines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) summary() pricing.Summary {
	items := make([]pricing.Item, 0, len(s.lines))
	for _, l := range s.lines {
		items = append(items, pricing.Item{Qty: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return pricing.Compute(items)
}
