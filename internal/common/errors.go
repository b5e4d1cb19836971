// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrInvalidInput = errors.New("invalid input")

	// Login errors. Unknown user and wrong password both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Request authentication errors. Both collapse to one response.
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotAuthorized = errors.New("not authorized")

	// Password hashing faults (corrupt stored hash, entropy failure).
	ErrHashing = errors.New("hashing error")
)
