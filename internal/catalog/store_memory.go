package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed fixtures/products.json
var fixtureJSON []byte

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Product
}

// NewMemStore seeds the store from the embedded fixture.
func NewMemStore() (*MemStore, error) {
	var products []Product
	if err := json.Unmarshal(fixtureJSON, &products); err != nil {
		return nil, fmt.Errorf("parse product fixture: %w", err)
	}
	return NewMemStoreWith(products), nil
}

func NewMemStoreWith(products []Product) *MemStore {
	s := &MemStore{m: make(map[string]Product, len(products))}
	for _, p := range products {
		s.m[p.ID] = p
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}
