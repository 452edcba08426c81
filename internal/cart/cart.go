// Package cart holds per-user shopping carts in a bounded, TTL-expiring
// in-memory cache. It is the only mutable domain state in the service.
package cart

import (
	"errors"

	"storefront/internal/catalog"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// Line is one product's entry within a cart. Quantity is always >= 1; a
// line whose quantity reaches zero is removed, never stored at zero.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart maps product ID to line, one line per product. It marshals to the
// wire shape {"<productID>": {"product": ..., "quantity": n}}.
type Cart map[string]Line

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	for id, ln := range c {
		out[id] = ln
	}
	return out
}
