package registry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite for persistence
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed approval registry
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
		CREATE TABLE IF NOT EXISTS approved_sellers (
			user_id INTEGER PRIMARY KEY,
			username TEXT,
			approved_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create approved_sellers table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS pending_requests (
			user_id INTEGER PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			chat_id INTEGER NOT NULL,
			requested_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create pending_requests table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// IsApproved checks if a user has selling rights
func (s *SQLiteStore) IsApproved(ctx context.Context, userID int64) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM approved_sellers WHERE user_id = ?",
		userID,
	).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check approved status: %w", err)
	}
	return true, nil
}

// AddPending inserts a pending application, overwriting any existing one
func (s *SQLiteStore) AddPending(ctx context.Context, req PendingRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_requests (user_id, username, first_name, chat_id, requested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			chat_id = excluded.chat_id,
			requested_at = excluded.requested_at
	`, req.UserID, req.Username, req.FirstName, req.ChatID, req.RequestedAt)

	if err != nil {
		return fmt.Errorf("add pending request: %w", err)
	}
	return nil
}

// GetPending retrieves the pending application for a user
func (s *SQLiteStore) GetPending(ctx context.Context, userID int64) (*PendingRequest, error) {
	req, err := getPending(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return req, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPending(ctx context.Context, q querier, userID int64) (*PendingRequest, error) {
	var req PendingRequest
	err := q.QueryRowContext(ctx, `
		SELECT user_id, username, first_name, chat_id, requested_at
		FROM pending_requests WHERE user_id = ?
	`, userID).Scan(
		&req.UserID,
		&req.Username,
		&req.FirstName,
		&req.ChatID,
		&req.RequestedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending request: %w", err)
	}
	return &req, nil
}

// Approve moves a pending user into the approved set inside one transaction
func (s *SQLiteStore) Approve(ctx context.Context, userID int64) (PendingRequest, bool, error) {
	return s.decide(ctx, userID, true)
}

// Reject removes a pending application inside one transaction
func (s *SQLiteStore) Reject(ctx context.Context, userID int64) (PendingRequest, bool, error) {
	return s.decide(ctx, userID, false)
}

func (s *SQLiteStore) decide(ctx context.Context, userID int64, approve bool) (PendingRequest, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PendingRequest{}, false, fmt.Errorf("begin decide: %w", err)
	}
	defer tx.Rollback()

	req, err := getPending(ctx, tx, userID)
	if err != nil {
		return PendingRequest{}, false, err
	}
	if req == nil {
		// Already decided by another administrator
		return PendingRequest{}, false, nil
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM pending_requests WHERE user_id = ?", userID,
	); err != nil {
		return PendingRequest{}, false, fmt.Errorf("remove pending request: %w", err)
	}

	if approve {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO approved_sellers (user_id, username, approved_at)
			VALUES (?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				username = excluded.username,
				approved_at = excluded.approved_at
		`, req.UserID, req.Username, time.Now())
		if err != nil {
			return PendingRequest{}, false, fmt.Errorf("add approved seller: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return PendingRequest{}, false, fmt.Errorf("commit decide: %w", err)
	}
	return *req, true, nil
}

// Close releases database resources
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
