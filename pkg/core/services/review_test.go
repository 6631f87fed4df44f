package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/db"
)

// mockReviewStore implements db.ReviewStore over an in-memory application
// set, counting list calls so the session cache tests can observe fetches.
type mockReviewStore struct {
	applications map[string]*db.Application
	listCalls    int
	ratingCalls  int
}

func newReviewStore(applications ...db.Application) *mockReviewStore {
	m := &mockReviewStore{applications: make(map[string]*db.Application)}
	for i := range applications {
		a := applications[i]
		m.applications[a.ID] = &a
	}
	return m
}

func (m *mockReviewStore) ListApplicationsByOpportunity(ctx context.Context, opportunityID string) ([]db.Application, error) {
	m.listCalls++
	var result []db.Application
	for _, a := range m.applications {
		if a.OpportunityID == opportunityID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockReviewStore) UpdateApplicationStatus(ctx context.Context, id string, status db.Status) error {
	a, ok := m.applications[id]
	if !ok {
		return db.ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockReviewStore) UpdateApplicationRating(ctx context.Context, id string, rating int) error {
	a, ok := m.applications[id]
	if !ok {
		return db.ErrNotFound
	}
	a.Rating = &rating
	return nil
}

func (m *mockReviewStore) UpdateApplicationNotes(ctx context.Context, id string, notes string) error {
	a, ok := m.applications[id]
	if !ok {
		return db.ErrNotFound
	}
	a.AdminNotes = &notes
	return nil
}

func (m *mockReviewStore) ListRatingsByVolunteer(ctx context.Context, volunteerID string) ([]int, error) {
	m.ratingCalls++
	var ratings []int
	for _, a := range m.applications {
		if a.VolunteerID == volunteerID && a.Rating != nil {
			ratings = append(ratings, *a.Rating)
		}
	}
	return ratings, nil
}

func rated(id, oppID, volunteerID string, rating int) db.Application {
	return db.Application{
		ID:            id,
		OpportunityID: oppID,
		VolunteerID:   volunteerID,
		Status:        db.StatusPending,
		Rating:        &rating,
	}
}

func TestSetApplicationStatus_LastWriterWins(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1", OpportunityID: "opp-1", Status: db.StatusPending})
	logger := zap.NewNop()
	ctx := context.Background()

	require.NoError(t, SetApplicationStatus(ctx, mock, logger, "app-1", db.StatusApproved))
	assert.Equal(t, db.StatusApproved, mock.applications["app-1"].Status)

	// A later decision overwrites the earlier one; no history is kept.
	require.NoError(t, SetApplicationStatus(ctx, mock, logger, "app-1", db.StatusRejected))
	assert.Equal(t, db.StatusRejected, mock.applications["app-1"].Status)
}

func TestSetApplicationStatus_InvalidStatus(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1", Status: db.StatusPending})
	logger := zap.NewNop()
	ctx := context.Background()

	tests := []struct {
		name   string
		status db.Status
	}{
		{"pending is not a decision", db.StatusPending},
		{"unknown status", db.Status("maybe")},
		{"empty status", db.Status("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SetApplicationStatus(ctx, mock, logger, "app-1", tt.status)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	assert.Equal(t, db.StatusPending, mock.applications["app-1"].Status)
}

func TestSetApplicationStatus_NotFound(t *testing.T) {
	mock := newReviewStore()

	err := SetApplicationStatus(context.Background(), mock, zap.NewNop(), "missing", db.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetApplicationRating_OverwritesExisting(t *testing.T) {
	mock := newReviewStore(rated("app-1", "opp-1", "vol-1", 2))
	logger := zap.NewNop()
	ctx := context.Background()

	require.NoError(t, SetApplicationRating(ctx, mock, logger, "app-1", 5))
	require.NotNil(t, mock.applications["app-1"].Rating)
	assert.Equal(t, 5, *mock.applications["app-1"].Rating)
}

func TestSetApplicationRating_Bounds(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1"})
	logger := zap.NewNop()
	ctx := context.Background()

	for _, rating := range []int{0, -1, 6, 100} {
		err := SetApplicationRating(ctx, mock, logger, "app-1", rating)
		assert.ErrorIs(t, err, ErrInvalidInput, "rating %d should be rejected", rating)
	}

	assert.Nil(t, mock.applications["app-1"].Rating)
}

func TestSetApplicationNotes(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1"})

	require.NoError(t, SetApplicationNotes(context.Background(), mock, zap.NewNop(), "app-1", "great attitude"))
	require.NotNil(t, mock.applications["app-1"].AdminNotes)
	assert.Equal(t, "great attitude", *mock.applications["app-1"].AdminNotes)
}

func TestAverageRating_AcrossOpportunities(t *testing.T) {
	// Ratings span three different opportunities; the aggregate covers
	// them all.
	mock := newReviewStore(
		rated("app-1", "opp-1", "vol-1", 4),
		rated("app-2", "opp-2", "vol-1", 5),
		rated("app-3", "opp-3", "vol-1", 3),
		rated("app-4", "opp-1", "vol-2", 1),
	)

	avg, err := AverageRating(context.Background(), mock, zap.NewNop(), "vol-1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 0.0001)
}

func TestAverageRating_NoRatings(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1", VolunteerID: "vol-1"})

	avg, err := AverageRating(context.Background(), mock, zap.NewNop(), "vol-1")
	require.NoError(t, err)
	assert.Nil(t, avg)
}

func TestListApplicants(t *testing.T) {
	mock := newReviewStore(
		db.Application{ID: "app-1", OpportunityID: "opp-1"},
		db.Application{ID: "app-2", OpportunityID: "opp-1"},
		db.Application{ID: "app-3", OpportunityID: "opp-2"},
	)

	applications, err := ListApplicants(context.Background(), mock, zap.NewNop(), "opp-1")
	require.NoError(t, err)
	assert.Len(t, applications, 2)
}
