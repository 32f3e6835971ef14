package app

import "errors"

var (
	// ErrValidationFailure marks a location name that could not be verified. The wrapped message is
	// meant for the user.
	ErrValidationFailure = errors.New("location validation failed")
	ErrUploadTimeout     = errors.New("media upload timed out")
	// ErrServiceUnavailable is reported by the validator when the geocoder could not be reached.
	// It never escapes as an accepted location.
	ErrServiceUnavailable = errors.New("validation service unavailable")
	ErrNoBlobStore        = errors.New("no blob store configured for media uploads")
)
