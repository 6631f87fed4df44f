package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// applicationColumns is the SELECT column list for application queries.
const applicationColumns = `id, opportunity_id, volunteer_id, volunteer_name,
	volunteer_email, phone, message, status, rating, volunteer_image_url,
	admin_notes, created_at`

func scanApplication(row pgx.Row) (*Application, error) {
	a := &Application{}
	err := row.Scan(
		&a.ID, &a.OpportunityID, &a.VolunteerID, &a.VolunteerName,
		&a.VolunteerEmail, &a.Phone, &a.Message, &a.Status, &a.Rating,
		&a.VolunteerImageURL, &a.AdminNotes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (db *DB) queryApplications(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applications []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, *a)
	}
	return applications, rows.Err()
}

// FindApplication returns the application for an (opportunity, volunteer)
// pair, or nil when none exists.
func (db *DB) FindApplication(ctx context.Context, opportunityID, volunteerID string) (*Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications
		WHERE opportunity_id = $1 AND volunteer_id = $2`
	a, err := scanApplication(db.pool.QueryRow(ctx, q, opportunityID, volunteerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return a, nil
}

// CreateApplication inserts an application and increments the opportunity's
// volunteer counter in a single transaction. The increment happens in SQL so
// concurrent applicants cannot lose updates, and a unique violation on
// (opportunity_id, volunteer_id) surfaces as ErrDuplicateApplication.
func (db *DB) CreateApplication(ctx context.Context, a *Application) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `INSERT INTO applications
		(id, opportunity_id, volunteer_id, volunteer_name, volunteer_email,
		 phone, message, status, rating, volunteer_image_url, admin_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.Exec(ctx, insert,
		a.ID, a.OpportunityID, a.VolunteerID, a.VolunteerName, a.VolunteerEmail,
		a.Phone, a.Message, a.Status, a.Rating, a.VolunteerImageURL,
		a.AdminNotes, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateApplication
	}
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE opportunities SET current_volunteers = current_volunteers + 1 WHERE id = $1`,
		a.OpportunityID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment volunteer count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit application: %w", err)
	}
	return nil
}

// ListApplicationsByOpportunity returns an opportunity's applications,
// newest first.
func (db *DB) ListApplicationsByOpportunity(ctx context.Context, opportunityID string) ([]Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications
		WHERE opportunity_id = $1 ORDER BY created_at DESC`
	applications, err := db.queryApplications(ctx, q, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for opportunity: %w", err)
	}
	return applications, nil
}

// ListApplicationsByVolunteer returns a volunteer's applications across all
// opportunities, newest first.
func (db *DB) ListApplicationsByVolunteer(ctx context.Context, volunteerID string) ([]Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications
		WHERE volunteer_id = $1 ORDER BY created_at DESC`
	applications, err := db.queryApplications(ctx, q, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for volunteer: %w", err)
	}
	return applications, nil
}

// UpdateApplicationStatus sets the review status of an application.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id string, status Status) error {
	tag, err := db.pool.Exec(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateApplicationRating sets (or overwrites) the rating of an application.
func (db *DB) UpdateApplicationRating(ctx context.Context, id string, rating int) error {
	tag, err := db.pool.Exec(ctx, `UPDATE applications SET rating = $1 WHERE id = $2`, rating, id)
	if err != nil {
		return fmt.Errorf("failed to update application rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateApplicationNotes sets the admin notes of an application.
func (db *DB) UpdateApplicationNotes(ctx context.Context, id string, notes string) error {
	tag, err := db.pool.Exec(ctx, `UPDATE applications SET admin_notes = $1 WHERE id = $2`, notes, id)
	if err != nil {
		return fmt.Errorf("failed to update application notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRatingsByVolunteer returns the non-null ratings across all of a
// volunteer's applications.
func (db *DB) ListRatingsByVolunteer(ctx context.Context, volunteerID string) ([]int, error) {
	const q = `SELECT rating FROM applications
		WHERE volunteer_id = $1 AND rating IS NOT NULL`
	rows, err := db.pool.Query(ctx, q, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings for volunteer: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}
