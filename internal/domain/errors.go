package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common failures reported by the upstream API or by validation.
var (
	// ErrUnauthorized means there is no usable session: the access token is
	// missing, or it was rejected and could not be refreshed.
	ErrUnauthorized = errors.New("authentication required")

	// ErrInvalidCredentials indicates a sign-in attempt failed due to an incorrect
	// email or password combination.
	ErrInvalidCredentials = errors.New("invalid credentials provided")

	// ErrUserAlreadyExists indicates a sign-up attempt failed because the user's
	// email address is already registered.
	ErrUserAlreadyExists = errors.New("user with this email already exists")

	// ErrInvalidResetToken indicates that a password reset request used a token
	// that is either expired, already used, or was never valid.
	ErrInvalidResetToken = errors.New("invalid or expired password reset token")

	ErrNotFound = errors.New("requested resource not found")

	// ErrValidation wraps input that failed local or upstream validation.
	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable is returned when the upstream API cannot be reached
	// or answers with a server error.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrCategoryPlaceholder marks a category that is shown in navigation but
	// has no products yet.
	ErrCategoryPlaceholder = errors.New("category not available yet")
)
