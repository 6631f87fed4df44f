package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/db"
)

func newSession(store *mockReviewStore) *ReviewSession {
	return NewReviewSession(store, zap.NewNop())
}

func TestReviewSession_ApplicantsCached(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1", OpportunityID: "opp-1"})
	session := newSession(mock)
	ctx := context.Background()

	_, err := session.Applicants(ctx, "opp-1")
	require.NoError(t, err)
	_, err = session.Applicants(ctx, "opp-1")
	require.NoError(t, err)

	assert.Equal(t, 1, mock.listCalls, "second access should hit the cache")
}

func TestReviewSession_NewApplicationsNeedRefresh(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1", OpportunityID: "opp-1"})
	session := newSession(mock)
	ctx := context.Background()

	first, err := session.Applicants(ctx, "opp-1")
	require.NoError(t, err)
	assert.Len(t, first, 1)

	// An application arrives from another session; the cached list does
	// not see it until a manual refresh.
	mock.applications["app-2"] = &db.Application{ID: "app-2", OpportunityID: "opp-1"}

	stale, err := session.Applicants(ctx, "opp-1")
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	session.Refresh("opp-1")
	fresh, err := session.Applicants(ctx, "opp-1")
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestReviewSession_SetStatusInvalidatesList(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1", OpportunityID: "opp-1", Status: db.StatusPending})
	session := newSession(mock)
	ctx := context.Background()

	_, err := session.Applicants(ctx, "opp-1")
	require.NoError(t, err)

	require.NoError(t, session.SetStatus(ctx, "app-1", db.StatusApproved))

	applications, err := session.Applicants(ctx, "opp-1")
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, db.StatusApproved, applications[0].Status)
	assert.Equal(t, 2, mock.listCalls, "mutation should force a re-fetch")
}

func TestReviewSession_VolunteerRatingCached(t *testing.T) {
	mock := newReviewStore(rated("app-1", "opp-1", "vol-1", 4))
	session := newSession(mock)
	ctx := context.Background()

	avg, err := session.VolunteerRating(ctx, "vol-1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 0.0001)

	_, err = session.VolunteerRating(ctx, "vol-1")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.ratingCalls)

	// Unrated volunteers are cached too; N/A does not re-fetch.
	none, err := session.VolunteerRating(ctx, "vol-2")
	require.NoError(t, err)
	assert.Nil(t, none)
	_, err = session.VolunteerRating(ctx, "vol-2")
	require.NoError(t, err)
	assert.Equal(t, 2, mock.ratingCalls)
}

func TestReviewSession_SetRatingInvalidatesAverage(t *testing.T) {
	mock := newReviewStore(rated("app-1", "opp-1", "vol-1", 2))
	session := newSession(mock)
	ctx := context.Background()

	// Prime both caches.
	_, err := session.Applicants(ctx, "opp-1")
	require.NoError(t, err)
	avg, err := session.VolunteerRating(ctx, "vol-1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 2.0, *avg, 0.0001)

	require.NoError(t, session.SetRating(ctx, "app-1", 5))

	avg, err = session.VolunteerRating(ctx, "vol-1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 5.0, *avg, 0.0001)
}

func TestReviewSession_RatingUncachedApplicationClearsAverages(t *testing.T) {
	mock := newReviewStore(
		rated("app-1", "opp-1", "vol-1", 2),
	)
	session := newSession(mock)
	ctx := context.Background()

	// Cache vol-1's average without ever caching opp-1's applicant list.
	_, err := session.VolunteerRating(ctx, "vol-1")
	require.NoError(t, err)

	// The session cannot tell which volunteer app-1 belongs to, so every
	// cached average goes.
	require.NoError(t, session.SetRating(ctx, "app-1", 4))

	avg, err := session.VolunteerRating(ctx, "vol-1")
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 0.0001)
}

func TestReviewSession_Reset(t *testing.T) {
	mock := newReviewStore(db.Application{ID: "app-1", OpportunityID: "opp-1"})
	session := newSession(mock)
	ctx := context.Background()

	_, err := session.Applicants(ctx, "opp-1")
	require.NoError(t, err)

	session.Reset()

	_, err = session.Applicants(ctx, "opp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, mock.listCalls)
}
