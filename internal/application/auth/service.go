// Package auth orchestrates registration, OTP-gated account activation and
// the token session lifecycle (login, refresh rotation, logout).
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/social-connect-api/internal/application/otp"
	"github.com/social-connect-api/internal/domain"
	jwtinfra "github.com/social-connect-api/internal/infrastructure/jwt"
	"github.com/social-connect-api/internal/infrastructure/smtp"
	"github.com/social-connect-api/internal/pkg/clock"
	"github.com/social-connect-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=30"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required,max=50"`
}

type VerifyOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Otp   string `json:"otp" validate:"required,len=6,numeric"`
}

type ResendOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult carries a freshly issued token pair and the authenticated user.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

// UserStore is the user persistence the orchestrator needs.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	UpdateRefreshToken(ctx context.Context, userID, token string) error
	ClearRefreshToken(ctx context.Context, userID string) error
	SetEmailVerified(ctx context.Context, userID string) error
}

// TokenIssuer mints and verifies the signed token pair.
type TokenIssuer interface {
	SignAccessToken(email string, profile domain.ProfileSnapshot) (string, error)
	SignRefreshToken(email string, profile domain.ProfileSnapshot) (string, error)
	VerifyRefreshToken(token string) (*jwtinfra.Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type Service interface {
	// Register creates an unverified account and emails a verification code.
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	// VerifyOtp activates the account once the submitted code checks out and
	// sends the welcome email. It does not issue tokens; the client logs in.
	VerifyOtp(ctx context.Context, req VerifyOtpRequest) error
	// ResendOtp reissues the verification code and returns how many resends
	// remain after this one.
	ResendOtp(ctx context.Context, req ResendOtpRequest) (remaining int, err error)
	// Login authenticates a verified account and issues a token pair. The
	// refresh token is stored on the user record, displacing any prior one.
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	// Refresh rotates the token pair. The presented token must both verify
	// and match the stored one; the rotation invalidates it for further use.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout revokes the stored refresh token. Unknown tokens are a no-op.
	Logout(ctx context.Context, refreshToken string) error
	// Account returns the user behind an authenticated request.
	Account(ctx context.Context, userID string) (*domain.User, error)
}

type ServiceDeps struct {
	UserRepo    UserStore
	Otp         otp.Service
	Mailer      smtp.Mailer
	Tokens      TokenIssuer
	Clock       clock.Clock
	AppName     string
	OtpValidity time.Duration
}

type service struct {
	users       UserStore
	otp         otp.Service
	mailer      smtp.Mailer
	tokens      TokenIssuer
	clock       clock.Clock
	appName     string
	otpValidity time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:       deps.UserRepo,
		otp:         deps.Otp,
		mailer:      deps.Mailer,
		tokens:      deps.Tokens,
		clock:       deps.Clock,
		appName:     deps.AppName,
		otpValidity: deps.OtpValidity,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         domain.RoleUser,
		AuthProvider: domain.AuthProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}

	code, err := s.otp.Generate(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	subject, body := smtp.OtpEmail(s.appName, code, s.otpValidity)
	if err := s.mailer.SendEmail(u.Email, subject, body); err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", u.UserID)
	return u, nil
}

func (s *service) VerifyOtp(ctx context.Context, req VerifyOtpRequest) error {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}

	if err := s.otp.Verify(ctx, u.Email, req.Otp); err != nil {
		return err
	}
	if err := s.users.SetEmailVerified(ctx, u.UserID); err != nil {
		return err
	}

	// The account is active at this point; a failed welcome email must not
	// roll that back.
	subject, body := smtp.WelcomeEmail(s.appName, u.DisplayName)
	if err := s.mailer.SendEmail(u.Email, subject, body); err != nil {
		slog.Warn("failed to send welcome email", "user_id", u.UserID, "err", err)
	}

	slog.Info("email verified", "user_id", u.UserID)
	return nil
}

func (s *service) ResendOtp(ctx context.Context, req ResendOtpRequest) (int, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return 0, err
	}
	if u.EmailVerified {
		return 0, fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}

	code, err := s.otp.Resend(ctx, u.Email)
	if err != nil {
		return 0, err
	}
	subject, body := smtp.OtpEmail(s.appName, code, s.otpValidity)
	if err := s.mailer.SendEmail(u.Email, subject, body); err != nil {
		return 0, err
	}
	return s.otp.RemainingResendAttempts(ctx, u.Email)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same failure as a wrong password, so the response does not
			// reveal which emails are registered.
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !u.EmailVerified {
		return nil, fmt.Errorf("email not verified: %w", domain.ErrUnauthorized)
	}
	return s.issuePair(ctx, u)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no account for token subject: %w", domain.ErrInvalidToken)
		}
		return nil, err
	}
	// A verified signature is not enough: the token must also be the one
	// currently on record. Anything older was displaced by a later login or
	// rotation and is dead.
	if u.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, fmt.Errorf("refresh token superseded or revoked: %w", domain.ErrRefreshMismatch)
	}
	return s.issuePair(ctx, u)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	u, err := s.users.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Already logged out, or the token was never valid. Either way
			// the desired state holds.
			return nil
		}
		return err
	}
	if err := s.users.ClearRefreshToken(ctx, u.UserID); err != nil {
		return err
	}
	slog.Info("user logged out", "user_id", u.UserID)
	return nil
}

func (s *service) Account(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

// issuePair mints a fresh access/refresh pair and stores the refresh token on
// the user record in a single write, which is what invalidates its
// predecessor.
func (s *service) issuePair(ctx context.Context, u *domain.User) (*AuthResult, error) {
	profile := u.Snapshot()
	access, err := s.tokens.SignAccessToken(u.Email, profile)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.SignRefreshToken(u.Email, profile)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRefreshToken(ctx, u.UserID, refresh); err != nil {
		return nil, err
	}
	u.RefreshToken = refresh
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}
