package application

import "errors"

var (
	// ErrAuthenticationFailed wraps a credential lookup that matched no user.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrJWTNotConfigured     = errors.New("JWT settings are not configured")
	ErrForbidden            = errors.New("forbidden")
	ErrSearchUnavailable    = errors.New("search is not configured")
)
