package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// Verification and token lifecycle errors. Each is a distinct failure kind the
// caller must be able to tell apart; none is fatal to the process.
var (
	// ErrOtpInvalid covers an absent record and a code mismatch alike.
	ErrOtpInvalid = errors.New("otp invalid")
	// ErrOtpExpired means the record exists but its validity window has passed.
	ErrOtpExpired = errors.New("otp expired")
	// ErrOtpLocked means verification is suspended after too many failed attempts.
	ErrOtpLocked = errors.New("otp locked")
	// ErrOtpResendLimit means the resend quota for the current code is exhausted.
	ErrOtpResendLimit = errors.New("otp resend limit exceeded")
	// ErrInvalidToken covers signature, structure and expiry failures on decode.
	ErrInvalidToken = errors.New("invalid token")
	// ErrRefreshMismatch means the refresh token decoded fine but does not match
	// the value currently stored for the user (already rotated or logged out).
	ErrRefreshMismatch = errors.New("refresh token mismatch")
)
