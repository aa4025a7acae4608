package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when an insert violates a unique constraint
	// (email, username or token)
	ErrDuplicateKey = errors.New("record with this key already exists")
)
