package catalog

import (
	"context"
	"time"
)

// Product is a committed, immutable catalog entry. Price is kept as the
// seller typed it (decimal text, FCFA). Photos is the exact ordered
// sequence of blob handles accumulated before the commit.
type Product struct {
	ID          string
	SellerID    int64
	Name        string
	Description string
	Category    string
	Price       string
	WhatsApp    string
	Photos      []string
	CreatedAt   time.Time
}

// Store defines the interface for the product catalog. The catalog is
// append-only: listings are never modified or deleted once committed.
type Store interface {
	// Add appends a committed listing
	Add(ctx context.Context, p Product) error

	// ListBySeller returns a seller's listings in commit order
	ListBySeller(ctx context.Context, sellerID int64) ([]Product, error)

	// Close releases resources
	Close() error
}
