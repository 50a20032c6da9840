package services

import "errors"

var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	// ErrConflict is returned when an enforcement push is already in
	// flight; callers retry rather than queue against a slow router.
	ErrConflict = errors.New("enforcement already in progress")
)
