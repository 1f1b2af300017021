package services

import (
	"errors"
	"fmt"
)

// Standard service errors, checked with errors.Is by the transport layer
var (
	// Access errors
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("access forbidden")

	// Data errors
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input provided")
	ErrInvalidFormat = errors.New("invalid format")
	ErrDataCorrupted = errors.New("data corrupted")

	// Availability errors
	ErrTimeout            = errors.New("operation timed out")
	ErrServiceUnavailable = errors.New("service unavailable")

	// Form specific errors
	ErrUnknownSiteKey    = fmt.Errorf("%w: unknown site key", ErrNotFound)
	ErrMissingFieldValue = fmt.Errorf("%w: required field missing", ErrInvalidInput)
)

// IsRetryableError determines if an error should be retried
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServiceUnavailable)
}

// IsPermanentError determines if an error is permanent and should not be retried
func IsPermanentError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrUnknownSiteKey) ||
		errors.Is(err, ErrMissingFieldValue)
}
