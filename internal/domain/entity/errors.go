package entity

import "errors"

var (
	// ErrUserNotFound covers both an unknown id and a credential mismatch.
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidUser        = errors.New("invalid user")
)
