package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/core/model"
	"github.com/omnarkhede/volunteerhub/pkg/db"
)

// ApplicationWithOpportunity pairs an application with the opportunity it
// targets. Opportunity is nil when the posting has since been deleted.
type ApplicationWithOpportunity struct {
	Application db.Application  `json:"application"`
	Opportunity *db.Opportunity `json:"opportunity,omitempty"`
}

// ProfileSummary is the volunteer's dashboard header: application totals and
// their own average rating. AverageRating is nil when nothing has been rated.
type ProfileSummary struct {
	TotalApplications int      `json:"total_applications"`
	Approved          int      `json:"approved"`
	AverageRating     *float64 `json:"average_rating,omitempty"`
}

// MyApplications returns the signed-in volunteer's applications, newest
// first, each joined to its opportunity for display.
func MyApplications(ctx context.Context, store db.ProfileStore, logger *zap.Logger, user model.User) ([]ApplicationWithOpportunity, error) {
	if user.IsZero() {
		return nil, ErrUnauthenticated
	}

	applications, err := store.ListApplicationsByVolunteer(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}

	// Distinct opportunities, fetched once each.
	opportunities := make(map[string]*db.Opportunity)
	for _, a := range applications {
		if _, seen := opportunities[a.OpportunityID]; seen {
			continue
		}
		opportunity, err := store.GetOpportunity(ctx, a.OpportunityID)
		if errors.Is(err, db.ErrNotFound) {
			// Posting deleted after the application cascade missed it,
			// or data predating the cascade; show the application anyway.
			opportunities[a.OpportunityID] = nil
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch opportunity: %w", err)
		}
		opportunities[a.OpportunityID] = opportunity
	}

	joined := make([]ApplicationWithOpportunity, len(applications))
	for i, a := range applications {
		joined[i] = ApplicationWithOpportunity{
			Application: a,
			Opportunity: opportunities[a.OpportunityID],
		}
	}

	logger.Debug("Fetched volunteer applications",
		zap.String("volunteer_id", user.ID),
		zap.Int("count", len(joined)))
	return joined, nil
}

// Summarize computes the dashboard totals from a volunteer's applications.
func Summarize(applications []db.Application) ProfileSummary {
	summary := ProfileSummary{TotalApplications: len(applications)}

	var ratings []int
	for _, a := range applications {
		if a.Status == db.StatusApproved {
			summary.Approved++
		}
		if a.Rating != nil {
			ratings = append(ratings, *a.Rating)
		}
	}
	summary.AverageRating = meanRating(ratings)
	return summary
}

// MyProfileSummary fetches and summarizes the signed-in volunteer's
// applications.
func MyProfileSummary(ctx context.Context, store db.ProfileStore, logger *zap.Logger, user model.User) (*ProfileSummary, error) {
	if user.IsZero() {
		return nil, ErrUnauthenticated
	}

	applications, err := store.ListApplicationsByVolunteer(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications: %w", err)
	}

	summary := Summarize(applications)
	return &summary, nil
}
