package service

import "errors"

// The failure taxonomy every domain operation draws from. Operations
// return the first violated precondition and leave no partial state
// behind. The API layer owns the mapping to HTTP statuses; nothing in
// this package knows about status codes.
var (
	// ErrNotFound: a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden: role or ownership check failed. Ownership failures
	// are reported as Forbidden, not NotFound; existence of posts and
	// comments is already public through the read endpoints.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict: a uniqueness invariant would be violated (username,
	// channel name, second accepted comment on a post).
	ErrConflict = errors.New("conflict")

	// ErrUpstream: the AI collaborator was unreachable or erroring.
	// Surfaced to the caller, never retried server-side.
	ErrUpstream = errors.New("upstream failure")

	// ErrValidation: a required argument is missing or malformed.
	ErrValidation = errors.New("validation failure")

	// ErrInvalidCredentials: login failed. Deliberately one error for
	// both unknown username and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
