package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when an identity already exists for
	// the requested email.
	ErrDuplicateEmail = errors.New("email already registered")
)
