// Package common defines the sentinel errors and small helpers shared by the
// account store, the services built on it and the interactive client.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrStorage    = errors.New("storage failure")

	// Registration conflicts.
	ErrUsernameTaken = errors.New("username taken")
	ErrEmailInUse    = errors.New("email in use")

	// Authentication and recovery. Messages do not say which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrVerificationFailed = errors.New("verification failed")

	// Input validation.
	ErrValidation       = errors.New("validation error")
	ErrPasswordMismatch = errors.New("passwords do not match")

	// Model construction without a password or a password hash.
	ErrNoSecret = errors.New("password or password hash required")

	// Reset token lifecycle.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
