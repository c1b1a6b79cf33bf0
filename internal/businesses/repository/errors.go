package repository

import "errors"

var (
	// ErrNotFound is returned when no business exists with the given name.
	ErrNotFound = errors.New("business not found")
)
