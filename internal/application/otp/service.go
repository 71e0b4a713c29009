// Package otp owns the one-time passcode lifecycle: generation, single-use
// verification, attempt-based lockout and resend throttling.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/social-connect-api/internal/config"
	"github.com/social-connect-api/internal/domain"
	"github.com/social-connect-api/internal/pkg/clock"
)

// Store is the persistence the lifecycle manager needs. One record per email;
// IncrementAttempts must be atomic so concurrent wrong submissions cannot
// lose counts.
type Store interface {
	Get(ctx context.Context, email string) (*domain.OtpVerification, error)
	Put(ctx context.Context, v *domain.OtpVerification) error
	Delete(ctx context.Context, email string) error
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Lock(ctx context.Context, email string, until int64) error
}

type Service interface {
	// Generate replaces any existing record for the email with a fresh one
	// and returns the plaintext code for out-of-band delivery.
	Generate(ctx context.Context, email string) (string, error)
	// Verify checks the submitted code. Failures are reported as
	// ErrOtpInvalid, ErrOtpExpired or ErrOtpLocked; success consumes the
	// record.
	Verify(ctx context.Context, email, code string) error
	// IsLocked reports whether verification is currently suspended.
	IsLocked(ctx context.Context, email string) (bool, error)
	// Resend reissues a code on the existing record, or generates a fresh one
	// when none exists. Fails with ErrOtpResendLimit once the quota is spent.
	Resend(ctx context.Context, email string) (string, error)
	// RemainingResendAttempts returns how many resends are left.
	RemainingResendAttempts(ctx context.Context, email string) (int, error)
}

type service struct {
	store       Store
	clock       clock.Clock
	expiry      int64 // seconds
	maxAttempts int
	lockout     int64 // seconds
	maxResend   int
}

func NewService(store Store, clk clock.Clock, cfg *config.Config) Service {
	return &service{
		store:       store,
		clock:       clk,
		expiry:      int64(cfg.OtpExpiry.Seconds()),
		maxAttempts: cfg.OtpMaxAttempts,
		lockout:     int64(cfg.OtpLockout.Seconds()),
		maxResend:   cfg.OtpMaxResend,
	}
}

func (s *service) Generate(ctx context.Context, email string) (string, error) {
	// Delete is idempotent; a fresh generation unconditionally supersedes
	// whatever state the prior record was in, lockout included.
	if err := s.store.Delete(ctx, email); err != nil {
		return "", err
	}

	code, err := randomCode()
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	v := &domain.OtpVerification{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Unix() + s.expiry,
		CreatedAt: now,
	}
	if err := s.store.Put(ctx, v); err != nil {
		return "", err
	}
	return code, nil
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	v, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no code issued for this email: %w", domain.ErrOtpInvalid)
		}
		return err
	}

	now := s.clock.Now()
	// Lockout is a hard stop, not an attempt.
	if v.Locked(now) {
		return fmt.Errorf("verification locked until %d: %w", *v.LockedUntil, domain.ErrOtpLocked)
	}
	// Expired records are left in place; generate/resend replaces them.
	if v.Expired(now) {
		return fmt.Errorf("code expired: %w", domain.ErrOtpExpired)
	}

	if subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) != 1 {
		attempts, err := s.store.IncrementAttempts(ctx, email)
		if err != nil {
			return err
		}
		if attempts >= s.maxAttempts {
			until := now.Unix() + s.lockout
			if err := s.store.Lock(ctx, email, until); err != nil {
				return err
			}
			slog.Warn("otp verification locked after repeated failures", "email", maskEmail(email), "attempts", attempts)
		}
		return fmt.Errorf("code mismatch: %w", domain.ErrOtpInvalid)
	}

	// Single-use: the record must be gone before we report success, or a
	// replay of the same code would verify again.
	if err := s.store.Delete(ctx, email); err != nil {
		return err
	}
	return nil
}

func (s *service) IsLocked(ctx context.Context, email string) (bool, error) {
	v, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return v.Locked(s.clock.Now()), nil
}

func (s *service) Resend(ctx context.Context, email string) (string, error) {
	v, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No prior state to throttle against; same as a fresh generation.
			return s.Generate(ctx, email)
		}
		return "", err
	}

	if v.ResendCount >= s.maxResend {
		return "", fmt.Errorf("resend quota of %d exhausted: %w", s.maxResend, domain.ErrOtpResendLimit)
	}

	code, err := randomCode()
	if err != nil {
		return "", err
	}

	// In-place update: the resend count survives, everything else resets.
	now := s.clock.Now()
	v.Code = code
	v.ExpiresAt = now.Unix() + s.expiry
	v.AttemptCount = 0
	v.ResendCount++
	v.LockedUntil = nil
	if err := s.store.Put(ctx, v); err != nil {
		return "", err
	}
	return code, nil
}

func (s *service) RemainingResendAttempts(ctx context.Context, email string) (int, error) {
	v, err := s.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.maxResend, nil
		}
		return 0, err
	}
	remaining := s.maxResend - v.ResendCount
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// randomCode draws a uniform 6-digit code from [100000, 999999].
// crypto/rand.Int is uniform over [0, n), so there is no modulo bias.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// maskEmail hides most of the address in log output.
func maskEmail(email string) string {
	at := -1
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
