// Package cart holds the client-side shopping cart: line items for a single
// restaurant, derived totals, persistence through a Storage port and
// synchronous change notification.
package cart

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JustYuvaraj/fooddelivery/internal/models"
	"github.com/shopspring/decimal"
)

// Subscriber receives a copy of the cart after every mutation
type Subscriber func(State)

type subscription struct {
	id int
	fn Subscriber
}

// notification is one post-mutation snapshot and the subscribers registered
// at the time of the mutation
type notification struct {
	state State
	subs  []Subscriber
}

// Store is the only mutation surface of the cart. Every mutation is
// persisted immediately and then published to subscribers. Persistence
// failures are logged and never returned; the in-memory state stays
// authoritative for the session.
//
// Notifications are delivered one at a time in mutation order, even when
// several goroutines mutate the store. A mutation made while another
// caller is delivering notifications returns before its own snapshot is
// delivered; that caller delivers it next.
type Store struct {
	mu          sync.Mutex
	state       State
	storage     Storage
	log         *slog.Logger
	subscribers []subscription
	nextID      int

	// pending holds snapshots not yet delivered, in mutation order.
	// notifying is set while some caller is draining it.
	pending   []notification
	notifying bool
}

// NewStore creates a store rehydrated from storage. Absent, unreadable or
// corrupt data starts an empty cart.
func NewStore(storage Storage, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	st, err := Load(storage)
	if err != nil {
		if errors.Is(err, ErrCorruptState) {
			log.Warn("discarding persisted cart", "error", err)
		} else {
			log.Warn("failed to read persisted cart", "error", err)
		}
		st = State{}
	}

	return &Store{
		state:   st,
		storage: storage,
		log:     log,
	}
}

// AddItem adds quantity of product to the cart.
//
// If the cart belongs to another restaurant it is replaced by a single line
// for product. If the product is already in the cart its quantity grows by
// quantity and a non-empty specialRequests replaces the previous note; the
// stored product snapshot, and so its price, is kept.
func (s *Store) AddItem(product models.Product, quantity int, specialRequests string) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, quantity)
	}

	s.mutate(func(st *State) {
		if st.RestaurantID != nil && *st.RestaurantID != product.RestaurantID {
			s.log.Info("cart switched restaurant",
				"from_restaurant_id", *st.RestaurantID,
				"to_restaurant_id", product.RestaurantID,
				"discarded_items", len(st.Items),
			)
			st.Items = []LineItem{{Product: product, Quantity: quantity, SpecialRequests: specialRequests}}
			st.RestaurantID = restaurantPtr(product.RestaurantID)
			return
		}

		if st.RestaurantID == nil {
			st.RestaurantID = restaurantPtr(product.RestaurantID)
		}

		if i := st.indexOf(product.ID); i >= 0 {
			st.Items[i].Quantity += quantity
			if specialRequests != "" {
				st.Items[i].SpecialRequests = specialRequests
			}
			return
		}

		st.Items = append(st.Items, LineItem{Product: product, Quantity: quantity, SpecialRequests: specialRequests})
	})
	return nil
}

// RemoveItem deletes the line for productID if present
func (s *Store) RemoveItem(productID int64) {
	s.mutate(func(st *State) {
		st.removeLine(productID)
	})
}

// UpdateQuantity sets the quantity of productID to exactly quantity.
// A quantity of zero or less removes the line. Unknown products are ignored.
func (s *Store) UpdateQuantity(productID int64, quantity int) {
	s.mutate(func(st *State) {
		if quantity <= 0 {
			st.removeLine(productID)
			return
		}
		if i := st.indexOf(productID); i >= 0 {
			st.Items[i].Quantity = quantity
		}
	})
}

// Clear empties the cart and releases the restaurant
func (s *Store) Clear() {
	s.mutate(func(st *State) {
		st.Items = nil
		st.RestaurantID = nil
	})
}

// Total is the sum of unit price times quantity, unrounded
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Total()
}

// ItemCount is the sum of quantities
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ItemCount()
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []LineItem {
	return s.Snapshot().Items
}

// RestaurantID returns the active restaurant, if any
func (s *Store) RestaurantID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.RestaurantID == nil {
		return 0, false
	}
	return *s.state.RestaurantID, true
}

// Snapshot returns a copy of the whole state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to be called after every mutation. The returned
// function unregisters it; calling it more than once is harmless. A nil fn
// is ignored.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// mutate applies fn, restores the empty-cart shape, persists and publishes.
// Subscribers run after the lock is released so they may read the store.
func (s *Store) mutate(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	if len(s.state.Items) == 0 {
		s.state.Items = nil
		s.state.RestaurantID = nil
	}

	if err := Save(s.storage, s.state); err != nil {
		s.log.Warn("failed to persist cart", "error", err)
	}

	n := notification{state: s.state.clone(), subs: make([]Subscriber, len(s.subscribers))}
	for i, sub := range s.subscribers {
		n.subs[i] = sub.fn
	}
	s.pending = append(s.pending, n)
	if s.notifying {
		// The caller already draining delivers this snapshot after the
		// earlier ones.
		s.mu.Unlock()
		return
	}
	s.notifying = true
	s.mu.Unlock()

	s.drain()
}

// drain delivers pending notifications one at a time, oldest first, so
// subscribers never see an older snapshot after a newer one.
func (s *Store) drain() {
	finished := false
	defer func() {
		if !finished {
			// A subscriber panicked; let the next mutation drain again.
			s.mu.Lock()
			s.notifying = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.pending = nil
			s.notifying = false
			s.mu.Unlock()
			finished = true
			return
		}
		n := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		for _, fn := range n.subs {
			fn(n.state.clone())
		}
	}
}

func (st *State) removeLine(productID int64) {
	if i := st.indexOf(productID); i >= 0 {
		st.Items = append(st.Items[:i], st.Items[i+1:]...)
	}
}
