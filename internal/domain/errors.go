package domain

import "errors"

// Sentinel errors for the failure taxonomy. Services wrap these with %w and a
// detail message; the handler layer maps each kind to an HTTP status.
var (
	ErrValidation = errors.New("invalid input")
	ErrAuth       = errors.New("authentication failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrPolicy     = errors.New("policy violation")
)
