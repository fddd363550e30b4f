// Package common defines shared constants and sentinel errors used across
// server and client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Startup/configuration errors. Never substituted with a default.
	ErrorConfig = errors.New("configuration error")

	// Input errors, rejected before any cryptographic work.
	ErrorValidation = errors.New("validation error")

	// Authentication tag mismatch or malformed ciphertext.
	ErrorDecryption = errors.New("decryption failed")

	// State machine errors.
	ErrorInvalidState = errors.New("invalid state transition")
	ErrorCodeExpired  = errors.New("share code expired")
	ErrorCodeRevoked  = errors.New("share code revoked")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
