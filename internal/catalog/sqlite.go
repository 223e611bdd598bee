package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite for persistence
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed catalog
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			seller_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			price TEXT NOT NULL,
			whatsapp TEXT NOT NULL,
			photos TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create products table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_products_seller ON products (seller_id)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create seller index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Add appends a committed listing
func (s *SQLiteStore) Add(ctx context.Context, p Product) error {
	photos, err := json.Marshal(p.Photos)
	if err != nil {
		return fmt.Errorf("encode photos: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, seller_id, name, description, category, price, whatsapp, photos, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.SellerID, p.Name, p.Description, p.Category, p.Price, p.WhatsApp, string(photos), p.CreatedAt)

	if err != nil {
		return fmt.Errorf("add product: %w", err)
	}
	return nil
}

// ListBySeller returns a seller's listings in commit order
func (s *SQLiteStore) ListBySeller(ctx context.Context, sellerID int64) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seller_id, name, description, category, price, whatsapp, photos, created_at
		FROM products WHERE seller_id = ? ORDER BY created_at, id
	`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var photos string
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Category,
			&p.Price, &p.WhatsApp, &photos, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if err := json.Unmarshal([]byte(photos), &p.Photos); err != nil {
			return nil, fmt.Errorf("decode photos: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

// Close releases database resources
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
