package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tmarket-bot/internal/registry"
)

// User-facing texts for onboarding outcomes
const (
	MsgRequestReceived = "Merci ! Votre demande a été envoyée. Elle sera examinée par un administrateur."
	MsgApproved        = "Félicitations ! Vous êtes maintenant vendeur. Vous pouvez publier vos produits."
	MsgRejected        = "Votre demande a été rejetée. Vous pouvez réessayer plus tard."
)

// Notifier delivers onboarding notifications over the messaging transport
type Notifier interface {
	// NotifyUser sends a plain text message to a chat
	NotifyUser(ctx context.Context, chatID int64, text string) error

	// SendDecisionPrompt sends an administrator the approve/reject prompt
	// for a pending application
	SendDecisionPrompt(ctx context.Context, adminID int64, req registry.PendingRequest) error
}

// Service drives a user's path from visitor to approved or rejected seller
type Service struct {
	store    registry.Store
	notifier Notifier
	adminIDs []int64
	logger   *slog.Logger
}

// NewService creates the onboarding workflow
func NewService(store registry.Store, notifier Notifier, adminIDs []int64, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		adminIDs: adminIDs,
		logger:   logger,
	}
}

// AcknowledgeConditions records a pending application (overwriting any
// earlier one for the same user), confirms receipt to the applicant and
// fans the decision prompt out to every administrator. A failed send to
// one administrator does not stop the fan-out and never rolls the
// application back.
func (s *Service) AcknowledgeConditions(ctx context.Context, req registry.PendingRequest) error {
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now()
	}

	if err := s.store.AddPending(ctx, req); err != nil {
		return fmt.Errorf("register application: %w", err)
	}

	if err := s.notifier.NotifyUser(ctx, req.ChatID, MsgRequestReceived); err != nil {
		s.logger.Error("failed to confirm application", "error", err, "user_id", req.UserID)
	}

	for _, adminID := range s.adminIDs {
		if err := s.notifier.SendDecisionPrompt(ctx, adminID, req); err != nil {
			s.logger.Error("failed to notify admin", "error", err, "admin_id", adminID, "user_id", req.UserID)
		}
	}

	return nil
}

// Approve grants selling rights to a pending applicant. When no
// application is pending (already decided by another administrator) the
// call is a silent no-op and acted is false.
func (s *Service) Approve(ctx context.Context, targetID int64) (registry.PendingRequest, bool, error) {
	req, acted, err := s.store.Approve(ctx, targetID)
	if err != nil {
		return registry.PendingRequest{}, false, fmt.Errorf("approve seller: %w", err)
	}
	if !acted {
		return registry.PendingRequest{}, false, nil
	}

	// State is already committed; notification failure is logged only
	if err := s.notifier.NotifyUser(ctx, req.ChatID, MsgApproved); err != nil {
		s.logger.Error("failed to notify approved seller", "error", err, "user_id", targetID)
	}
	return req, true, nil
}

// Reject dismisses a pending application. Symmetric to Approve: no
// pending application means a silent no-op.
func (s *Service) Reject(ctx context.Context, targetID int64) (registry.PendingRequest, bool, error) {
	req, acted, err := s.store.Reject(ctx, targetID)
	if err != nil {
		return registry.PendingRequest{}, false, fmt.Errorf("reject seller: %w", err)
	}
	if !acted {
		return registry.PendingRequest{}, false, nil
	}

	if err := s.notifier.NotifyUser(ctx, req.ChatID, MsgRejected); err != nil {
		s.logger.Error("failed to notify rejected applicant", "error", err, "user_id", targetID)
	}
	return req, true, nil
}
