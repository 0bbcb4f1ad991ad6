// Package common defines shared constants and sentinel errors used across
// client and server layers of FitLife. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token and OTP lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrOTPExpired   = errors.New("otp expired")
	ErrOTPMismatch  = errors.New("otp mismatch")
)
