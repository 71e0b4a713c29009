package domain

import "time"

// OtpVerification is the single active one-time passcode for an email address.
// PK: email — a fresh generation replaces any prior record, so at most one
// exists per address at any time. ExpiresAt is a Unix timestamp doubling as
// the DynamoDB TTL attribute.
type OtpVerification struct {
	Email        string    `json:"email" dynamodbav:"email"`
	Code         string    `json:"-" dynamodbav:"code"`
	ExpiresAt    int64     `json:"expires_at" dynamodbav:"expires_at"`
	AttemptCount int       `json:"attempt_count" dynamodbav:"attempt_count"`
	ResendCount  int       `json:"resend_count" dynamodbav:"resend_count"`
	LockedUntil  *int64    `json:"locked_until,omitempty" dynamodbav:"locked_until,omitempty"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Locked reports whether verification is suspended at the given instant.
func (v *OtpVerification) Locked(now time.Time) bool {
	return v.LockedUntil != nil && now.Unix() < *v.LockedUntil
}

// Expired reports whether the code's validity window has passed.
func (v *OtpVerification) Expired(now time.Time) bool {
	return now.Unix() > v.ExpiresAt
}
