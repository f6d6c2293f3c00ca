// Package common defines sentinel errors shared by the repositories, the unit
// of work and the client data access. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Argument validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// Client-creation errors.
	ErrAlreadyExists = errors.New("already exists")
	ErrWriteFailed   = errors.New("write failed")

	// Unit-of-work errors.
	ErrIdentityConflict = errors.New("another instance with the same identity is already tracked")
)
