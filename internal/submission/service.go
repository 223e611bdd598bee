package submission

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"tmarket-bot/internal/catalog"
	"tmarket-bot/internal/draft"
	apperrors "tmarket-bot/internal/errors"
	"tmarket-bot/internal/registry"
)

const fieldCount = 5

// Sellers reach buyers over WhatsApp; Togolese numbers only
var whatsappRe = regexp.MustCompile(`^\+228\d{8}$`)

// Publisher announces committed listings on the marketplace channel
type Publisher interface {
	PublishListing(ctx context.Context, p catalog.Product) error
}

// Service accumulates a seller's draft across messages and commits it as
// a catalog listing. Every operation is gated on approved-seller status.
type Service struct {
	registry  registry.Store
	drafts    *draft.Sessions
	catalog   catalog.Store
	publisher Publisher
	logger    *slog.Logger
}

// NewService creates the submission workflow
func NewService(
	reg registry.Store,
	drafts *draft.Sessions,
	cat catalog.Store,
	publisher Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		registry:  reg,
		drafts:    drafts,
		catalog:   cat,
		publisher: publisher,
		logger:    logger,
	}
}

// IsApproved reports whether a user may use seller features
func (s *Service) IsApproved(ctx context.Context, userID int64) (bool, error) {
	return s.registry.IsApproved(ctx, userID)
}

func (s *Service) gate(ctx context.Context, userID int64) error {
	approved, err := s.registry.IsApproved(ctx, userID)
	if err != nil {
		return fmt.Errorf("check seller status: %w", err)
	}
	if !approved {
		return apperrors.ErrNotApprovedSeller
	}
	return nil
}

// BeginEntry puts the seller's draft into field-entry mode. Photos sent
// before this point stay attached to the draft.
func (s *Service) BeginEntry(ctx context.Context, userID int64) error {
	if err := s.gate(ctx, userID); err != nil {
		return err
	}
	s.drafts.SetAction(userID, draft.ActionAwaitingFields)
	return nil
}

// AttachPhoto appends a stored photo handle to the seller's draft,
// whatever step the draft is on
func (s *Service) AttachPhoto(ctx context.Context, userID int64, handle string) error {
	if err := s.gate(ctx, userID); err != nil {
		return err
	}
	s.drafts.AppendPhoto(userID, handle)
	return nil
}

// SubmitFields parses a five-field submission, commits the listing with
// the draft's photo sequence and resets the draft. On any validation
// failure nothing is mutated and the draft keeps waiting for a corrected
// submission.
func (s *Service) SubmitFields(ctx context.Context, userID int64, raw string) (catalog.Product, error) {
	if err := s.gate(ctx, userID); err != nil {
		return catalog.Product{}, err
	}

	if s.drafts.Action(userID) != draft.ActionAwaitingFields {
		return catalog.Product{}, apperrors.ErrNoDraftInProgress
	}

	name, description, category, price, whatsapp, err := parseFields(raw)
	if err != nil {
		return catalog.Product{}, err
	}

	product := catalog.Product{
		ID:          uuid.NewString(),
		SellerID:    userID,
		Name:        name,
		Description: description,
		Category:    category,
		Price:       price,
		WhatsApp:    whatsapp,
		Photos:      s.drafts.Photos(userID),
		CreatedAt:   time.Now(),
	}

	if err := s.catalog.Add(ctx, product); err != nil {
		return catalog.Product{}, fmt.Errorf("commit listing: %w", err)
	}
	s.drafts.Reset(userID)

	// The listing is committed; channel publishing is best effort
	if s.publisher != nil {
		if err := s.publisher.PublishListing(ctx, product); err != nil {
			s.logger.Error("failed to publish listing", "error", err, "product_id", product.ID)
		}
	}

	return product, nil
}

// ListMine returns the seller's committed listings
func (s *Service) ListMine(ctx context.Context, userID int64) ([]catalog.Product, error) {
	if err := s.gate(ctx, userID); err != nil {
		return nil, err
	}
	return s.catalog.ListBySeller(ctx, userID)
}

func parseFields(raw string) (name, description, category, price, whatsapp string, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != fieldCount {
		return "", "", "", "", "", apperrors.ErrMalformedSubmission
	}

	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return "", "", "", "", "", apperrors.ErrMalformedSubmission
		}
	}

	if !whatsappRe.MatchString(parts[4]) {
		return "", "", "", "", "", apperrors.ErrInvalidContactFormat
	}

	return parts[0], parts[1], parts[2], parts[3], parts[4], nil
}
