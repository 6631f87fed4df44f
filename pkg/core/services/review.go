package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/db"
)

// ListApplicants returns the applications for an opportunity, newest first.
func ListApplicants(ctx context.Context, store db.ReviewStore, logger *zap.Logger, opportunityID string) ([]db.Application, error) {
	if opportunityID == "" {
		return nil, fmt.Errorf("%w: opportunity id is required", ErrInvalidInput)
	}

	applications, err := store.ListApplicationsByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applicants: %w", err)
	}

	logger.Debug("Fetched applicants",
		zap.String("opportunity_id", opportunityID),
		zap.Int("count", len(applications)))
	return applications, nil
}

// SetApplicationStatus records an admin decision on an application. Only
// approved and rejected may be written; a later decision overwrites an
// earlier one (last writer wins, no history).
func SetApplicationStatus(ctx context.Context, store db.ReviewStore, logger *zap.Logger, applicationID string, status db.Status) error {
	if applicationID == "" {
		return fmt.Errorf("%w: application id is required", ErrInvalidInput)
	}
	if !status.IsDecision() {
		return fmt.Errorf("%w: status must be %q or %q", ErrInvalidInput, db.StatusApproved, db.StatusRejected)
	}

	if err := store.UpdateApplicationStatus(ctx, applicationID, status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update application status: %w", err)
	}

	logger.Info("Application status updated",
		zap.String("application_id", applicationID),
		zap.String("status", string(status)))
	return nil
}

// SetApplicationRating records a 1-5 rating, overwriting any existing one.
// Ratings are independent of the status decision.
func SetApplicationRating(ctx context.Context, store db.ReviewStore, logger *zap.Logger, applicationID string, rating int) error {
	if applicationID == "" {
		return fmt.Errorf("%w: application id is required", ErrInvalidInput)
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidInput, rating)
	}

	if err := store.UpdateApplicationRating(ctx, applicationID, rating); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update application rating: %w", err)
	}

	logger.Info("Application rating updated",
		zap.String("application_id", applicationID),
		zap.Int("rating", rating))
	return nil
}

// SetApplicationNotes records free-text admin notes on an application.
func SetApplicationNotes(ctx context.Context, store db.ReviewStore, logger *zap.Logger, applicationID string, notes string) error {
	if applicationID == "" {
		return fmt.Errorf("%w: application id is required", ErrInvalidInput)
	}

	if err := store.UpdateApplicationNotes(ctx, applicationID, notes); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update application notes: %w", err)
	}

	logger.Info("Application notes updated", zap.String("application_id", applicationID))
	return nil
}

// AverageRating computes the arithmetic mean of a volunteer's ratings across
// every application they ever made, not just a single opportunity. Returns
// nil when the volunteer has no ratings.
func AverageRating(ctx context.Context, store db.ReviewStore, logger *zap.Logger, volunteerID string) (*float64, error) {
	if volunteerID == "" {
		return nil, fmt.Errorf("%w: volunteer id is required", ErrInvalidInput)
	}

	ratings, err := store.ListRatingsByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteer ratings: %w", err)
	}

	avg := meanRating(ratings)
	if avg == nil {
		logger.Debug("Volunteer has no ratings", zap.String("volunteer_id", volunteerID))
	}
	return avg, nil
}

// meanRating returns the arithmetic mean of ratings, or nil for an empty set.
func meanRating(ratings []int) *float64 {
	if len(ratings) == 0 {
		return nil
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return &avg
}
