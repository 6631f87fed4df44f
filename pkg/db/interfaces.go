package db

import "context"

// CatalogStore defines the store operations the opportunity catalog needs.
type CatalogStore interface {
	ListActiveOpportunities(ctx context.Context) ([]Opportunity, error)
}

// ApplyStore defines the store operations the application lifecycle needs.
type ApplyStore interface {
	GetOpportunity(ctx context.Context, id string) (*Opportunity, error)
	FindApplication(ctx context.Context, opportunityID, volunteerID string) (*Application, error)
	CreateApplication(ctx context.Context, a *Application) error
}

// ReviewStore defines the store operations the admin review workflow needs.
type ReviewStore interface {
	ListApplicationsByOpportunity(ctx context.Context, opportunityID string) ([]Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status Status) error
	UpdateApplicationRating(ctx context.Context, id string, rating int) error
	UpdateApplicationNotes(ctx context.Context, id string, notes string) error
	ListRatingsByVolunteer(ctx context.Context, volunteerID string) ([]int, error)
}

// AdminStore defines the store operations opportunity administration needs.
type AdminStore interface {
	ListOpportunities(ctx context.Context) ([]Opportunity, error)
	GetOpportunity(ctx context.Context, id string) (*Opportunity, error)
	InsertOpportunity(ctx context.Context, o *Opportunity) error
	SetOpportunityActive(ctx context.Context, id string, active bool) error
	DeleteOpportunity(ctx context.Context, id string) (int, error)
}

// ProfileStore defines the store operations the volunteer profile needs.
type ProfileStore interface {
	ListApplicationsByVolunteer(ctx context.Context, volunteerID string) ([]Application, error)
	GetOpportunity(ctx context.Context, id string) (*Opportunity, error)
}
