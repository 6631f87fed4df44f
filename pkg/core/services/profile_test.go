package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/core/model"
	"github.com/omnarkhede/volunteerhub/pkg/db"
)

// mockProfileStore implements db.ProfileStore for testing
type mockProfileStore struct {
	applications  []db.Application
	opportunities map[string]*db.Opportunity
	getCalls      int
}

func (m *mockProfileStore) ListApplicationsByVolunteer(ctx context.Context, volunteerID string) ([]db.Application, error) {
	var result []db.Application
	for _, a := range m.applications {
		if a.VolunteerID == volunteerID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockProfileStore) GetOpportunity(ctx context.Context, id string) (*db.Opportunity, error) {
	m.getCalls++
	o, ok := m.opportunities[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func TestMyApplications(t *testing.T) {
	mock := &mockProfileStore{
		applications: []db.Application{
			{ID: "app-1", OpportunityID: "opp-1", VolunteerID: "user-1"},
			{ID: "app-2", OpportunityID: "opp-2", VolunteerID: "user-1"},
			{ID: "app-3", OpportunityID: "opp-1", VolunteerID: "user-2"},
		},
		opportunities: map[string]*db.Opportunity{
			"opp-1": {ID: "opp-1", Title: "Beach Cleanup"},
			"opp-2": {ID: "opp-2", Title: "Tutoring"},
		},
	}

	joined, err := MyApplications(context.Background(), mock, zap.NewNop(), testUser)
	require.NoError(t, err)
	require.Len(t, joined, 2)

	require.NotNil(t, joined[0].Opportunity)
	assert.Equal(t, "Beach Cleanup", joined[0].Opportunity.Title)
	require.NotNil(t, joined[1].Opportunity)
	assert.Equal(t, "Tutoring", joined[1].Opportunity.Title)
}

func TestMyApplications_DeletedOpportunity(t *testing.T) {
	// The posting is gone; the application still shows, without its
	// opportunity.
	mock := &mockProfileStore{
		applications: []db.Application{
			{ID: "app-1", OpportunityID: "opp-gone", VolunteerID: "user-1"},
		},
		opportunities: map[string]*db.Opportunity{},
	}

	joined, err := MyApplications(context.Background(), mock, zap.NewNop(), testUser)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Nil(t, joined[0].Opportunity)
}

func TestMyApplications_FetchesDistinctOpportunitiesOnce(t *testing.T) {
	mock := &mockProfileStore{
		applications: []db.Application{
			{ID: "app-1", OpportunityID: "opp-1", VolunteerID: "user-1"},
			{ID: "app-2", OpportunityID: "opp-1", VolunteerID: "user-1"},
		},
		opportunities: map[string]*db.Opportunity{
			"opp-1": {ID: "opp-1"},
		},
	}

	_, err := MyApplications(context.Background(), mock, zap.NewNop(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.getCalls)
}

func TestMyApplications_Unauthenticated(t *testing.T) {
	mock := &mockProfileStore{}

	_, err := MyApplications(context.Background(), mock, zap.NewNop(), model.User{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSummarize(t *testing.T) {
	four := 4
	two := 2
	applications := []db.Application{
		{ID: "app-1", Status: db.StatusApproved, Rating: &four},
		{ID: "app-2", Status: db.StatusApproved},
		{ID: "app-3", Status: db.StatusPending},
		{ID: "app-4", Status: db.StatusRejected, Rating: &two},
	}

	summary := Summarize(applications)
	assert.Equal(t, 4, summary.TotalApplications)
	assert.Equal(t, 2, summary.Approved)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 3.0, *summary.AverageRating, 0.0001)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)
	assert.Zero(t, summary.TotalApplications)
	assert.Zero(t, summary.Approved)
	assert.Nil(t, summary.AverageRating)
}

func TestMyProfileSummary(t *testing.T) {
	five := 5
	mock := &mockProfileStore{
		applications: []db.Application{
			{ID: "app-1", VolunteerID: "user-1", Status: db.StatusApproved, Rating: &five},
			{ID: "app-2", VolunteerID: "user-1", Status: db.StatusPending},
		},
	}

	summary, err := MyProfileSummary(context.Background(), mock, zap.NewNop(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalApplications)
	assert.Equal(t, 1, summary.Approved)
	require.NotNil(t, summary.AverageRating)
	assert.InDelta(t, 5.0, *summary.AverageRating, 0.0001)
}

func TestMyProfileSummary_Unauthenticated(t *testing.T) {
	mock := &mockProfileStore{}

	_, err := MyProfileSummary(context.Background(), mock, zap.NewNop(), model.User{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
