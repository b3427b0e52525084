// Package common defines shared sentinel errors and small helpers used across
// osmnotes layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation and workflow errors.
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Encryption boundary errors.
	ErrContentUnavailable = errors.New("content unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
