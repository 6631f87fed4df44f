package services

import "errors"

// Sentinel errors for the application lifecycle and review workflow.
// Anything else returned from a service wraps a record store failure.
var (
	// ErrUnauthenticated is returned when a user-scoped operation runs
	// without a signed-in user.
	ErrUnauthenticated = errors.New("sign in required")
	// ErrInvalidInput is returned for missing or malformed fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyApplied is returned when a volunteer already holds an
	// application for the opportunity.
	ErrAlreadyApplied = errors.New("already applied for this opportunity")
	// ErrNotFound is returned when the referenced opportunity or
	// application does not exist.
	ErrNotFound = errors.New("not found")
)
