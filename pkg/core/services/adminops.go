package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/db"
)

var validate = validator.New()

// OpportunityDraft carries the admin form fields for a new opportunity.
// Numeric fields arrive as strings, the way the form submits them, and are
// coerced here; an empty price means free and is stored as 0.
type OpportunityDraft struct {
	Title         string `validate:"required"`
	Description   string `validate:"required"`
	Requirements  string
	Location      string `validate:"required"`
	Date          string `validate:"required"`
	Category      string `validate:"required"`
	MaxVolunteers string `validate:"required"`
	Price         string
}

// CreateOpportunity validates a draft and inserts the opportunity: zero
// volunteers so far, active immediately.
func CreateOpportunity(ctx context.Context, store db.AdminStore, logger *zap.Logger, draft OpportunityDraft) (*db.Opportunity, error) {
	if err := validate.Struct(draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	category := db.Category(draft.Category)
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, draft.Category)
	}

	maxVolunteers, err := strconv.Atoi(draft.MaxVolunteers)
	if err != nil {
		return nil, fmt.Errorf("%w: max volunteers must be a number", ErrInvalidInput)
	}

	price := 0.0
	if draft.Price != "" {
		price, err = strconv.ParseFloat(draft.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: price must be a number", ErrInvalidInput)
		}
	}

	opportunity := &db.Opportunity{
		ID:                uuid.New().String(),
		Title:             draft.Title,
		Description:       draft.Description,
		Requirements:      draft.Requirements,
		Location:          draft.Location,
		Date:              draft.Date,
		MaxVolunteers:     maxVolunteers,
		CurrentVolunteers: 0,
		Category:          category,
		CreatedAt:         time.Now().UTC(),
		IsActive:          true,
		Price:             &price,
	}

	logger.Info("Creating opportunity",
		zap.String("id", opportunity.ID),
		zap.String("title", opportunity.Title),
		zap.String("category", string(opportunity.Category)),
		zap.Int("max_volunteers", opportunity.MaxVolunteers))

	if err := store.InsertOpportunity(ctx, opportunity); err != nil {
		return nil, fmt.Errorf("failed to insert opportunity: %w", err)
	}

	return opportunity, nil
}

// ListAllOpportunities returns every opportunity including inactive ones,
// newest first. Admin counterpart of the public catalog listing.
func ListAllOpportunities(ctx context.Context, store db.AdminStore, logger *zap.Logger) ([]db.Opportunity, error) {
	opportunities, err := store.ListOpportunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}

	logger.Debug("Fetched opportunities", zap.Int("count", len(opportunities)))
	return opportunities, nil
}

// ToggleOpportunityActive flips an opportunity's active flag and returns the
// new state.
func ToggleOpportunityActive(ctx context.Context, store db.AdminStore, logger *zap.Logger, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: opportunity id is required", ErrInvalidInput)
	}

	opportunity, err := store.GetOpportunity(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch opportunity: %w", err)
	}

	next := !opportunity.IsActive
	if err := store.SetOpportunityActive(ctx, id, next); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle opportunity: %w", err)
	}

	logger.Info("Opportunity active flag toggled",
		zap.String("id", id),
		zap.Bool("is_active", next))
	return next, nil
}

// DeleteResult reports what a cascade delete removed.
type DeleteResult struct {
	ApplicationsRemoved int
}

// DeleteOpportunity removes an opportunity and its applications. The store
// performs both deletes in one transaction, so a failure leaves everything
// in place.
func DeleteOpportunity(ctx context.Context, store db.AdminStore, logger *zap.Logger, id string) (*DeleteResult, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: opportunity id is required", ErrInvalidInput)
	}

	removed, err := store.DeleteOpportunity(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete opportunity: %w", err)
	}

	logger.Info("Opportunity deleted",
		zap.String("id", id),
		zap.Int("applications_removed", removed))
	return &DeleteResult{ApplicationsRemoved: removed}, nil
}
