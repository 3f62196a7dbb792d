// Package store holds the process-wide cart state. Totals only ever change
// by replacing the whole snapshot with a server payload.
package store

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
)

// Snapshot is a consistent copy of the cart state.
type Snapshot struct {
	Cart        domain.Cart `json:"cart"`
	Count       int         `json:"count"`
	Loading     bool        `json:"loading"`
	Error       string      `json:"error,omitempty"`
	LastUpdated time.Time   `json:"last_updated"`
}

// CanCheckout reports whether the snapshot allows proceeding to checkout.
func (s Snapshot) CanCheckout() bool {
	return !s.Cart.IsEmpty() && s.Cart.AllAvailable()
}

// Reader is the read-only view handed to views.
type Reader interface {
	Snapshot() Snapshot
	Items() []domain.CartItem
	Subtotal() decimal.Decimal
	Shipping() decimal.Decimal
	Tax() decimal.Decimal
	Discount() decimal.Decimal
	Total() decimal.Decimal
	PromoCode() string
	Count() int
	Loading() bool
	Error() string
	LastUpdated() time.Time
	CanCheckout() bool
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}

// Writer is the command surface reserved for the action layer and the
// checkout orchestrator.
type Writer interface {
	Reader
	SetCart(cart domain.Cart)
	SetCount(n int)
	SetLoading(loading bool)
	SetError(msg string)
	FailFetch(msg string)
	ClearCart()
}

// Store is the cart state container.
type Store struct {
	mu          sync.RWMutex
	state       Snapshot
	subscribers map[int]func(Snapshot)
	nextSubID   int
	now         func() time.Time

	// version counts mutations; delivered is the version subscribers last
	// saw. delivering marks the one goroutine allowed to fan out.
	version    uint64
	delivered  uint64
	delivering bool
}

var _ Writer = (*Store)(nil)

// New creates a store holding the empty cart.
func New() *Store {
	return &Store{
		state:       Snapshot{Cart: domain.EmptyCart()},
		subscribers: make(map[int]func(Snapshot)),
		now:         time.Now,
	}
}

// SetCart replaces items and every aggregate with the server payload,
// clears the error and stamps LastUpdated.
func (s *Store) SetCart(cart domain.Cart) {
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	s.update(func(st *Snapshot) {
		st.Cart = cart.Clone()
		st.Error = ""
		st.LastUpdated = s.now().UTC()
	})
}

// SetCount sets the navbar badge count.
func (s *Store) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	s.update(func(st *Snapshot) { st.Count = n })
}

// SetLoading toggles the in-flight flag.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *Snapshot) { st.Loading = loading })
}

// SetError records the last failure. An empty msg clears it. The cart
// itself is left untouched.
func (s *Store) SetError(msg string) {
	s.update(func(st *Snapshot) { st.Error = msg })
}

// FailFetch resets to the empty cart and records msg in one mutation, so
// subscribers never observe the empty cart without its error.
func (s *Store) FailFetch(msg string) {
	s.update(func(st *Snapshot) {
		st.Cart = domain.EmptyCart()
		st.Error = msg
		st.LastUpdated = s.now().UTC()
	})
}

// ClearCart resets to the empty cart locally, without a server round trip.
func (s *Store) ClearCart() {
	s.update(func(st *Snapshot) {
		st.Cart = domain.EmptyCart()
		st.Count = 0
		st.Error = ""
		st.LastUpdated = s.now().UTC()
	})
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) Items() []domain.CartItem { return s.Snapshot().Cart.Items }

func (s *Store) Subtotal() decimal.Decimal {
	return s.read(func(st *Snapshot) decimal.Decimal { return st.Cart.Subtotal })
}

func (s *Store) Shipping() decimal.Decimal {
	return s.read(func(st *Snapshot) decimal.Decimal { return st.Cart.ShippingCost })
}

func (s *Store) Tax() decimal.Decimal {
	return s.read(func(st *Snapshot) decimal.Decimal { return st.Cart.TaxAmount })
}

func (s *Store) Discount() decimal.Decimal {
	return s.read(func(st *Snapshot) decimal.Decimal { return st.Cart.DiscountAmount })
}

func (s *Store) Total() decimal.Decimal {
	return s.read(func(st *Snapshot) decimal.Decimal { return st.Cart.TotalAmount })
}

func (s *Store) PromoCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Cart.PromoCode
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Count
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Error
}

func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LastUpdated
}

// CanCheckout is false when the cart is empty or any line is unavailable.
func (s *Store) CanCheckout() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CanCheckout()
}

// Subscribe registers fn to receive a snapshot after mutations.
//
// Delivery is serialized: snapshots arrive in mutation order and the last
// one delivered is always the current state. A mutation made while another
// goroutine is delivering is handed to that goroutine, which may coalesce
// it with later ones. Callbacks run outside the state lock and may read or
// mutate the store.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) update(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.state)
	s.version++
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	s.mu.Unlock()

	s.deliver()
}

// deliver fans out the latest snapshot until no newer mutation is pending.
func (s *Store) deliver() {
	finished := false
	defer func() {
		if !finished {
			s.mu.Lock()
			s.delivering = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if s.delivered == s.version {
			s.delivering = false
			finished = true
			s.mu.Unlock()
			return
		}
		version := s.version
		snap := s.copyLocked()
		subs := make([]func(Snapshot), 0, len(s.subscribers))
		for _, fn := range s.subscribers {
			subs = append(subs, fn)
		}
		s.mu.Unlock()

		for _, fn := range subs {
			fn(snap)
		}

		s.mu.Lock()
		s.delivered = version
		s.mu.Unlock()
	}
}

func (s *Store) read(field func(*Snapshot) decimal.Decimal) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return field(&s.state)
}

func (s *Store) copyLocked() Snapshot {
	snap := s.state
	snap.Cart = s.state.Cart.Clone()
	return snap
}
