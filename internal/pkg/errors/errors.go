package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input, including
	// malformed review identifiers. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrValidation marks a structured document that violates the document
	// model invariants. Never retried, never coerced.
	ErrValidation = errors.New("validation failed")
)
