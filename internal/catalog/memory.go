package catalog

import (
	"context"
	"sync"
)

// MemoryStore implements Store with process-local state
type MemoryStore struct {
	mu       sync.Mutex
	products []Product
}

// NewMemoryStore creates an empty in-memory catalog
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	return nil
}

func (s *MemoryStore) ListBySeller(_ context.Context, sellerID int64) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Product
	for _, p := range s.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
