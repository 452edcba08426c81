package catalog

import "context"

// Product is an immutable catalog record. The catalog is loaded once at
// startup and never mutated.
type Product struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	PriceCents    int64  `json:"price_cents"`
	Category      string `json:"category"`
	CategoryGroup string `json:"category_group"`
}

type Store interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
}
