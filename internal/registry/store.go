package registry

import (
	"context"
	"time"
)

// PendingRequest tracks a seller application awaiting an administrator decision
type PendingRequest struct {
	UserID      int64
	Username    string
	FirstName   string
	ChatID      int64
	RequestedAt time.Time
}

// Store defines the interface for the approval registry.
//
// Approve and Reject are atomic: the presence check and the state change
// happen in one critical section, so two administrators racing on the same
// request resolve to exactly one acted=true and a silent no-op for the other.
type Store interface {
	// IsApproved checks if a user has selling rights
	IsApproved(ctx context.Context, userID int64) (bool, error)

	// AddPending inserts a pending application, overwriting any existing
	// application for the same user
	AddPending(ctx context.Context, req PendingRequest) error

	// GetPending retrieves the pending application for a user, nil if none
	GetPending(ctx context.Context, userID int64) (*PendingRequest, error)

	// Approve moves a pending user into the approved set; acted is false
	// when no application was pending
	Approve(ctx context.Context, userID int64) (PendingRequest, bool, error)

	// Reject removes a pending application without granting rights; acted
	// is false when no application was pending
	Reject(ctx context.Context, userID int64) (PendingRequest, bool, error)

	// Close releases resources
	Close() error
}
