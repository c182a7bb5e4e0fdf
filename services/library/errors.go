// Package library owns persistence of users and their favorite movies and
// enforces the one real consistency rule in the system: a movie title may
// appear at most once within a single user's list.
package library

import "errors"

// Sentinel errors returned by the service. Handlers translate these into
// HTTP statuses; callers match them with errors.Is.
var (
	// ErrNotFound is returned when a referenced user or movie does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert or update would give a user two
	// movies with the same title.
	ErrConflict = errors.New("conflict")

	// ErrInvalid is returned when a required field is missing or empty.
	ErrInvalid = errors.New("invalid input")
)
