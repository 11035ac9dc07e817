package repository

import "errors"

// Store sentinel errors. Implementations return these (possibly
// wrapped) so the service layer can translate with errors.Is instead
// of inspecting driver-specific types.
var (
	// ErrNotFound means the referenced row does not exist. Stores
	// return this rather than (nil, nil) so absence composes with
	// wrapping and errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate means an insert or update hit a unique constraint
	// (username, channel name, or the single-accepted-comment index).
	// The constraint, not the application pre-check, is what holds the
	// invariant under concurrent writers.
	ErrDuplicate = errors.New("duplicate")
)
