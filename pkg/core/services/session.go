package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/db"
)

// ReviewSession is a session-scoped view over the review workflow. Applicant
// lists and per-volunteer rating averages are fetched lazily on first use and
// cached for the life of the session; every mutation invalidates the cache
// entries it may have stale copies of. New applications arriving from other
// sessions are only seen after Refresh or a mutation on that opportunity.
type ReviewSession struct {
	store  db.ReviewStore
	logger *zap.Logger

	applicants       map[string][]db.Application // keyed by opportunity id
	volunteerRatings map[string]*float64         // keyed by volunteer id
}

// NewReviewSession creates an empty session over the given store.
func NewReviewSession(store db.ReviewStore, logger *zap.Logger) *ReviewSession {
	return &ReviewSession{
		store:            store,
		logger:           logger,
		applicants:       make(map[string][]db.Application),
		volunteerRatings: make(map[string]*float64),
	}
}

// Applicants returns the applications for an opportunity, fetching on first
// access and serving the cached list thereafter.
func (s *ReviewSession) Applicants(ctx context.Context, opportunityID string) ([]db.Application, error) {
	if cached, ok := s.applicants[opportunityID]; ok {
		return cached, nil
	}

	applications, err := ListApplicants(ctx, s.store, s.logger, opportunityID)
	if err != nil {
		return nil, err
	}
	s.applicants[opportunityID] = applications
	return applications, nil
}

// VolunteerRating returns the volunteer's average rating across all their
// applications, nil when unrated. Cached per volunteer for the session.
func (s *ReviewSession) VolunteerRating(ctx context.Context, volunteerID string) (*float64, error) {
	if cached, ok := s.volunteerRatings[volunteerID]; ok {
		return cached, nil
	}

	avg, err := AverageRating(ctx, s.store, s.logger, volunteerID)
	if err != nil {
		return nil, err
	}
	s.volunteerRatings[volunteerID] = avg
	return avg, nil
}

// SetStatus records a status decision and drops every cached applicant list
// that holds the application.
func (s *ReviewSession) SetStatus(ctx context.Context, applicationID string, status db.Status) error {
	if err := SetApplicationStatus(ctx, s.store, s.logger, applicationID, status); err != nil {
		return err
	}
	s.invalidateApplication(applicationID, false)
	return nil
}

// SetRating records a rating and additionally drops the volunteer's cached
// average, which the write just changed.
func (s *ReviewSession) SetRating(ctx context.Context, applicationID string, rating int) error {
	if err := SetApplicationRating(ctx, s.store, s.logger, applicationID, rating); err != nil {
		return err
	}
	s.invalidateApplication(applicationID, true)
	return nil
}

// SetNotes records admin notes and drops the affected applicant lists.
func (s *ReviewSession) SetNotes(ctx context.Context, applicationID string, notes string) error {
	if err := SetApplicationNotes(ctx, s.store, s.logger, applicationID, notes); err != nil {
		return err
	}
	s.invalidateApplication(applicationID, false)
	return nil
}

// Refresh drops the cached applicant list for one opportunity so the next
// access re-fetches.
func (s *ReviewSession) Refresh(opportunityID string) {
	delete(s.applicants, opportunityID)
}

// Reset drops every cached list and rating.
func (s *ReviewSession) Reset() {
	s.applicants = make(map[string][]db.Application)
	s.volunteerRatings = make(map[string]*float64)
}

// invalidateApplication scans the cached groupings for the application and
// drops each list holding it, plus the owning volunteer's cached average
// when the rating changed.
func (s *ReviewSession) invalidateApplication(applicationID string, ratingChanged bool) {
	cached, known := s.findCached(applicationID)

	for opportunityID, applications := range s.applicants {
		for _, a := range applications {
			if a.ID == applicationID {
				delete(s.applicants, opportunityID)
				break
			}
		}
	}

	if !ratingChanged {
		return
	}
	if known {
		delete(s.volunteerRatings, cached.VolunteerID)
		return
	}
	// The application was never cached, so the owning volunteer is
	// unknown; clear every cached average rather than serve a stale one.
	s.volunteerRatings = make(map[string]*float64)
}

func (s *ReviewSession) findCached(applicationID string) (db.Application, bool) {
	for _, applications := range s.applicants {
		for _, a := range applications {
			if a.ID == applicationID {
				return a, true
			}
		}
	}
	return db.Application{}, false
}
