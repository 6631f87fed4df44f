package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// opportunityColumns is the SELECT column list for opportunity queries.
const opportunityColumns = `id, title, description, requirements, location, date,
	max_volunteers, current_volunteers, category, created_at, is_active, price`

func scanOpportunity(row pgx.Row) (*Opportunity, error) {
	o := &Opportunity{}
	err := row.Scan(
		&o.ID, &o.Title, &o.Description, &o.Requirements, &o.Location, &o.Date,
		&o.MaxVolunteers, &o.CurrentVolunteers, &o.Category, &o.CreatedAt,
		&o.IsActive, &o.Price,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (db *DB) queryOpportunities(ctx context.Context, query string, args ...any) ([]Opportunity, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opportunities []Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		opportunities = append(opportunities, *o)
	}
	return opportunities, rows.Err()
}

// ListOpportunities returns every opportunity, newest first.
func (db *DB) ListOpportunities(ctx context.Context) ([]Opportunity, error) {
	q := `SELECT ` + opportunityColumns + ` FROM opportunities ORDER BY created_at DESC`
	opportunities, err := db.queryOpportunities(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	return opportunities, nil
}

// ListActiveOpportunities returns opportunities with the active flag set,
// newest first.
func (db *DB) ListActiveOpportunities(ctx context.Context) ([]Opportunity, error) {
	q := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE is_active ORDER BY created_at DESC`
	opportunities, err := db.queryOpportunities(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list active opportunities: %w", err)
	}
	return opportunities, nil
}

// GetOpportunity looks up an opportunity by id.
func (db *DB) GetOpportunity(ctx context.Context, id string) (*Opportunity, error) {
	q := `SELECT ` + opportunityColumns + ` FROM opportunities WHERE id = $1`
	o, err := scanOpportunity(db.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return o, nil
}

// InsertOpportunity inserts a new opportunity row.
func (db *DB) InsertOpportunity(ctx context.Context, o *Opportunity) error {
	const q = `INSERT INTO opportunities
		(id, title, description, requirements, location, date,
		 max_volunteers, current_volunteers, category, created_at, is_active, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := db.pool.Exec(ctx, q,
		o.ID, o.Title, o.Description, o.Requirements, o.Location, o.Date,
		o.MaxVolunteers, o.CurrentVolunteers, o.Category, o.CreatedAt,
		o.IsActive, o.Price,
	)
	if err != nil {
		return fmt.Errorf("failed to insert opportunity: %w", err)
	}
	return nil
}

// SetOpportunityActive sets the active flag on an opportunity.
func (db *DB) SetOpportunityActive(ctx context.Context, id string, active bool) error {
	tag, err := db.pool.Exec(ctx, `UPDATE opportunities SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update opportunity active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOpportunity removes an opportunity and all of its applications in a
// single transaction, returning the number of applications removed.
func (db *DB) DeleteOpportunity(ctx context.Context, id string) (int, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	appsTag, err := tx.Exec(ctx, `DELETE FROM applications WHERE opportunity_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete applications: %w", err)
	}

	oppTag, err := tx.Exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete opportunity: %w", err)
	}
	if oppTag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return int(appsTag.RowsAffected()), nil
}
