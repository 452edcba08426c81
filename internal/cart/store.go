package cart

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"storefront/internal/catalog"
)

const (
	DefaultMaxUsers = 1000
	DefaultTTL      = 300 * time.Second
)

// Store maps user ID to cart, bounded to maxUsers entries with LRU
// eviction and a per-entry TTL measured from the last write. Absent,
// expired and evicted entries are indistinguishable: Get returns an empty
// cart for all three.
//
// The expirable LRU is internally synchronized, but read-modify-write of
// a user's cart is not atomic at that level, so the store serializes
// mutations under its own lock. Readers share the lock and receive
// copies, never live map state.
type Store struct {
	mu    sync.RWMutex
	carts *expirable.LRU[string, Cart]
}

func NewStore(maxUsers int, ttl time.Duration) *Store {
	if maxUsers <= 0 {
		maxUsers = DefaultMaxUsers
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{carts: expirable.NewLRU[string, Cart](maxUsers, nil, ttl)}
}

// Get returns a copy of the user's cart, or an empty cart if none exists.
// Absence is not an error.
func (s *Store) Get(userID string) Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts.Get(userID)
	if !ok {
		return Cart{}
	}
	return c.clone()
}

// AddItem adds one unit of product to the user's cart, creating the cart
// and the line as needed. A repeated add keeps the originally stored
// product snapshot and only bumps the quantity. The write refreshes the
// entry's TTL and recency.
func (s *Store) AddItem(userID string, product catalog.Product) (Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	if product.ID == "" {
		return nil, fmt.Errorf("%w: empty product id", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts.Get(userID)
	if !ok {
		c = Cart{}
	}

	if ln, ok := c[product.ID]; ok {
		ln.Quantity++
		c[product.ID] = ln
	} else {
		c[product.ID] = Line{Product: product, Quantity: 1}
	}

	s.carts.Add(userID, c)
	return c.clone(), nil
}

// RemoveOne removes one unit of productID from the user's cart, deleting
// the line when its quantity hits one. A missing cart or line is
// ErrNotFound and leaves state unchanged. An emptied cart is retained.
func (s *Store) RemoveOne(userID, productID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts.Get(userID)
	if !ok {
		return nil, fmt.Errorf("%w: no cart for user %q", ErrNotFound, userID)
	}

	ln, ok := c[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product %q not in cart", ErrNotFound, productID)
	}

	if ln.Quantity <= 1 {
		delete(c, productID)
	} else {
		ln.Quantity--
		c[productID] = ln
	}

	s.carts.Add(userID, c)
	return c.clone(), nil
}

// Len reports how many carts are currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts.Len()
}
