package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/core/model"
	"github.com/omnarkhede/volunteerhub/pkg/db"
)

// mockApplyStore implements db.ApplyStore for testing. CreateApplication
// mimics the real store: the unique constraint rejects duplicates and the
// volunteer counter is incremented in the same transaction.
type mockApplyStore struct {
	opportunities map[string]*db.Opportunity
	applications  []db.Application
	findErr       error
	createErr     error
	// skipFind makes FindApplication report no existing application even
	// when one exists, to simulate the race where two applicants pass the
	// advisory check concurrently.
	skipFind bool
}

func (m *mockApplyStore) GetOpportunity(ctx context.Context, id string) (*db.Opportunity, error) {
	o, ok := m.opportunities[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockApplyStore) FindApplication(ctx context.Context, opportunityID, volunteerID string) (*db.Application, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.skipFind {
		return nil, nil
	}
	for i := range m.applications {
		a := m.applications[i]
		if a.OpportunityID == opportunityID && a.VolunteerID == volunteerID {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *mockApplyStore) CreateApplication(ctx context.Context, a *db.Application) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.applications {
		if existing.OpportunityID == a.OpportunityID && existing.VolunteerID == a.VolunteerID {
			return db.ErrDuplicateApplication
		}
	}
	m.applications = append(m.applications, *a)
	m.opportunities[a.OpportunityID].CurrentVolunteers++
	return nil
}

func newApplyStore(current, max int) *mockApplyStore {
	return &mockApplyStore{
		opportunities: map[string]*db.Opportunity{
			"opp-1": {
				ID:                "opp-1",
				Title:             "Beach Cleanup",
				MaxVolunteers:     max,
				CurrentVolunteers: current,
				IsActive:          true,
			},
		},
	}
}

var testUser = model.User{
	ID:    "user-1",
	Name:  "Asha Patil",
	Email: "asha@example.com",
}

func TestApply_Success(t *testing.T) {
	mock := newApplyStore(0, 10)

	application, err := Apply(context.Background(), mock, zap.NewNop(), "opp-1", testUser,
		model.ApplicationRequest{Phone: "9876543210", Message: "I love the ocean"})
	require.NoError(t, err)
	require.NotNil(t, application)

	assert.NotEmpty(t, application.ID)
	assert.Equal(t, "opp-1", application.OpportunityID)
	assert.Equal(t, "user-1", application.VolunteerID)
	assert.Equal(t, "Asha Patil", application.VolunteerName)
	assert.Equal(t, "asha@example.com", application.VolunteerEmail)
	assert.Equal(t, db.StatusPending, application.Status)
	assert.Nil(t, application.Rating)
	assert.Nil(t, application.AdminNotes)

	// Counter incremented, one row stored
	assert.Equal(t, 1, mock.opportunities["opp-1"].CurrentVolunteers)
	assert.Len(t, mock.applications, 1)
}

func TestApply_TwiceYieldsOneApplication(t *testing.T) {
	mock := newApplyStore(0, 10)
	logger := zap.NewNop()
	ctx := context.Background()
	req := model.ApplicationRequest{Phone: "9876543210"}

	_, err := Apply(ctx, mock, logger, "opp-1", testUser, req)
	require.NoError(t, err)

	_, err = Apply(ctx, mock, logger, "opp-1", testUser, req)
	require.ErrorIs(t, err, ErrAlreadyApplied)

	assert.Len(t, mock.applications, 1)
	assert.Equal(t, 1, mock.opportunities["opp-1"].CurrentVolunteers)
}

func TestApply_NoCapacityEnforcement(t *testing.T) {
	// A full opportunity still accepts applications; the counter goes
	// past the cap.
	mock := newApplyStore(5, 5)

	_, err := Apply(context.Background(), mock, zap.NewNop(), "opp-1", testUser,
		model.ApplicationRequest{Phone: "9876543210"})
	require.NoError(t, err)

	assert.Equal(t, 6, mock.opportunities["opp-1"].CurrentVolunteers)
}

func TestApply_Unauthenticated(t *testing.T) {
	mock := newApplyStore(0, 10)

	_, err := Apply(context.Background(), mock, zap.NewNop(), "opp-1", model.User{},
		model.ApplicationRequest{Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, mock.applications)
}

func TestApply_InvalidInput(t *testing.T) {
	mock := newApplyStore(0, 10)
	logger := zap.NewNop()
	ctx := context.Background()

	_, err := Apply(ctx, mock, logger, "", testUser, model.ApplicationRequest{Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Apply(ctx, mock, logger, "opp-1", testUser, model.ApplicationRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApply_OpportunityNotFound(t *testing.T) {
	mock := newApplyStore(0, 10)

	_, err := Apply(context.Background(), mock, zap.NewNop(), "missing", testUser,
		model.ApplicationRequest{Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApply_ConstraintCatchesRace(t *testing.T) {
	// The advisory check misses the concurrent duplicate; the store's
	// unique constraint still maps to ErrAlreadyApplied.
	mock := newApplyStore(0, 10)
	mock.applications = append(mock.applications, db.Application{
		ID:            "app-existing",
		OpportunityID: "opp-1",
		VolunteerID:   "user-1",
	})
	mock.skipFind = true

	_, err := Apply(context.Background(), mock, zap.NewNop(), "opp-1", testUser,
		model.ApplicationRequest{Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Len(t, mock.applications, 1)
}

func TestApply_StoreError(t *testing.T) {
	mock := newApplyStore(0, 10)
	mock.createErr = errors.New("connection reset")

	_, err := Apply(context.Background(), mock, zap.NewNop(), "opp-1", testUser,
		model.ApplicationRequest{Phone: "9876543210"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 0, mock.opportunities["opp-1"].CurrentVolunteers)
}
