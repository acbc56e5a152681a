package domain

import "errors"

// Domain error taxonomy. Handlers map these to HTTP status codes; internal
// detail is wrapped with %w and never reaches the response body.
var (
	// ErrDuplicateEmail is returned when registering with an email that already exists
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrWeakPassword is returned when a password is shorter than 8 characters
	ErrWeakPassword = errors.New("password must be at least 8 characters long")

	// ErrInvalidCredentials is returned on any login or password verification failure
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned for malformed, expired, or superseded tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingEmail is returned when an OAuth profile carries no email address
	ErrMissingEmail = errors.New("email is required from oauth profile")

	// ErrNotFound is returned when a user record does not exist
	ErrNotFound = errors.New("user not found")

	// ErrUnauthenticated is returned when a request carries no credential
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInsufficientPermissions is returned when a role check fails
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
