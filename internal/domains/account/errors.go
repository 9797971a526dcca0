package account

import "errors"

// Repository-level errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrQuestionNotFound is returned when a new bookmark targets a
	// question that no longer exists. Removal never re-checks.
	ErrQuestionNotFound = errors.New("question not found")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrStaleSession means the presented session token was superseded by
	// a newer login on another device. Callers must clear cached session
	// markers.
	ErrStaleSession = errors.New("stale session")

	ErrUnauthenticated = errors.New("unauthenticated")
)
