package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store errors returned alongside the usual wrapped driver errors.
var (
	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateApplication is returned when the unique constraint on
	// (opportunity_id, volunteer_id) rejects an insert.
	ErrDuplicateApplication = errors.New("application already exists for this opportunity and volunteer")
)

// DB provides record store operations over a Postgres connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB connects to the record store and ensures the schema exists.
func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close releases the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// ensureSchema creates tables and indexes if they do not exist.
// The unique index on (opportunity_id, volunteer_id) is the authoritative
// one-application-per-volunteer-per-opportunity guard; service-level checks
// are only a courtesy. There is deliberately no constraint tying
// current_volunteers to max_volunteers: applying to a full opportunity is
// allowed.
func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS opportunities (
		id                 UUID PRIMARY KEY,
		title              TEXT NOT NULL,
		description        TEXT NOT NULL,
		requirements       TEXT NOT NULL DEFAULT '',
		location           TEXT NOT NULL,
		date               TEXT NOT NULL,
		max_volunteers     INTEGER NOT NULL,
		current_volunteers INTEGER NOT NULL DEFAULT 0,
		category           TEXT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		is_active          BOOLEAN NOT NULL DEFAULT TRUE,
		price              DOUBLE PRECISION
	);

	CREATE TABLE IF NOT EXISTS applications (
		id                  UUID PRIMARY KEY,
		opportunity_id      UUID NOT NULL REFERENCES opportunities(id),
		volunteer_id        TEXT NOT NULL,
		volunteer_name      TEXT NOT NULL,
		volunteer_email     TEXT NOT NULL,
		phone               TEXT NOT NULL,
		message             TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL DEFAULT 'pending',
		rating              INTEGER,
		volunteer_image_url TEXT,
		admin_notes         TEXT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_opportunity_volunteer
		ON applications(opportunity_id, volunteer_id);
	CREATE INDEX IF NOT EXISTS idx_applications_volunteer
		ON applications(volunteer_id);
	CREATE INDEX IF NOT EXISTS idx_opportunities_active_created
		ON opportunities(is_active, created_at DESC);
	`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return err
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
