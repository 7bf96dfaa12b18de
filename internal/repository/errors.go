package repository

import "errors"

// Common repository errors
var (
	// ErrUserNotFound is returned when an update targets a missing user
	ErrUserNotFound = errors.New("user not found")
)
