// Package common defines sentinel errors shared across userkeeper layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration errors.
	ErrEmailAlreadyExists = errors.New("user already exists with this email")

	// Login errors. Unknown email and wrong password both map here so the
	// response does not reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Token lifecycle errors produced by the token codec.
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
)
