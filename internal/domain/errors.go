package domain

import "errors"

var (
	// ErrValidation signals rejected input (blank text, missing field, out-of-range value).
	ErrValidation = errors.New("validation failed")
	// ErrCompute signals a deterministic embedding failure (degenerate vector, model error).
	// Compute failures are never retried.
	ErrCompute = errors.New("embedding compute failed")
	// ErrConflict signals a duplicate vector config key.
	ErrConflict = errors.New("config already exists")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
