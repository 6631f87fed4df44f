package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/core/model"
	"github.com/omnarkhede/volunteerhub/pkg/db"
)

// Apply creates a pending application for the signed-in user on the given
// opportunity and increments the opportunity's volunteer counter. The insert
// and the increment are one store transaction.
//
// A volunteer may hold at most one application per opportunity. The check
// here is advisory; the store's unique constraint is authoritative, so a
// concurrent duplicate still comes back as ErrAlreadyApplied.
//
// Capacity is intentionally not enforced: applying to an opportunity whose
// counter already reached max_volunteers succeeds and pushes the counter
// past the cap.
func Apply(ctx context.Context, store db.ApplyStore, logger *zap.Logger, opportunityID string, user model.User, req model.ApplicationRequest) (*db.Application, error) {
	if user.IsZero() {
		return nil, ErrUnauthenticated
	}
	if opportunityID == "" {
		return nil, fmt.Errorf("%w: opportunity id is required", ErrInvalidInput)
	}
	if req.Phone == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	}

	logger.Info("Applying for opportunity",
		zap.String("opportunity_id", opportunityID),
		zap.String("volunteer_id", user.ID))

	opportunity, err := store.GetOpportunity(ctx, opportunityID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunity: %w", err)
	}

	existing, err := store.FindApplication(ctx, opportunity.ID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil {
		logger.Info("Duplicate application rejected",
			zap.String("opportunity_id", opportunity.ID),
			zap.String("volunteer_id", user.ID))
		return nil, ErrAlreadyApplied
	}

	application := &db.Application{
		ID:             uuid.New().String(),
		OpportunityID:  opportunity.ID,
		VolunteerID:    user.ID,
		VolunteerName:  user.DisplayName(),
		VolunteerEmail: user.Email,
		Phone:          req.Phone,
		Message:        req.Message,
		Status:         db.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if user.ImageURL != "" {
		application.VolunteerImageURL = &user.ImageURL
	}

	if err := store.CreateApplication(ctx, application); err != nil {
		if errors.Is(err, db.ErrDuplicateApplication) {
			return nil, ErrAlreadyApplied
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	logger.Info("Application created",
		zap.String("application_id", application.ID),
		zap.String("opportunity_id", opportunity.ID),
		zap.String("volunteer_id", user.ID))

	return application, nil
}
