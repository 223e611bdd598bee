package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id string, sellerID int64, photos ...string) Product {
	return Product{
		ID:          id,
		SellerID:    sellerID,
		Name:        "Chaussures",
		Description: "Baskets rouges",
		Category:    "Mode",
		Price:       "15000",
		WhatsApp:    "+22890123456",
		Photos:      photos,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestMemoryStore_ListBySeller(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Add(ctx, testProduct("p1", 1, "a.jpg")))
	require.NoError(t, store.Add(ctx, testProduct("p2", 2)))
	require.NoError(t, store.Add(ctx, testProduct("p3", 1, "b.jpg", "c.jpg")))

	mine, err := store.ListBySeller(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "p1", mine[0].ID)
	assert.Equal(t, "p3", mine[1].ID)
	assert.Equal(t, []string{"b.jpg", "c.jpg"}, mine[1].Photos)

	none, err := store.ListBySeller(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	p := testProduct("p1", 7, "photos/a.jpg", "photos/b.jpg")
	require.NoError(t, store.Add(ctx, p))

	mine, err := store.ListBySeller(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	got := mine[0]
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Price, got.Price)
	assert.Equal(t, p.WhatsApp, got.WhatsApp)
	assert.Equal(t, []string{"photos/a.jpg", "photos/b.jpg"}, got.Photos)
}

func TestSQLiteStore_PhotolessListing(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Add(ctx, testProduct("p1", 3)))

	mine, err := store.ListBySeller(ctx, 3)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Empty(t, mine[0].Photos)
}
