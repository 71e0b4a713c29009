package jwtinfra

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/social-connect-api/internal/config"
	"github.com/social-connect-api/internal/domain"
	"github.com/social-connect-api/internal/pkg/clock"
)

// Claims holds the JWT payload: the registered claims (sub = email, iat, exp)
// plus one structured claim carrying a versioned profile snapshot for
// stateless downstream authorization.
type Claims struct {
	User domain.ProfileSnapshot `json:"user"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a shared symmetric secret.
// The same provider mints both access and refresh tokens; only the validity
// window differs.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
}

func NewProvider(cfg *config.Config, clk clock.Clock) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret not configured")
	}
	secret, err := base64.StdEncoding.DecodeString(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("decode jwt secret: %w", err)
	}
	// Rotation must outlive the session it refreshes.
	if cfg.RefreshTokenTTL <= cfg.AccessTokenTTL {
		return nil, fmt.Errorf("refresh token validity (%s) must exceed access token validity (%s)",
			cfg.RefreshTokenTTL, cfg.AccessTokenTTL)
	}
	return &Provider{
		secret:     secret,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		clock:      clk,
	}, nil
}

// SignAccessToken mints the short-lived bearer token for the given identity.
func (p *Provider) SignAccessToken(email string, profile domain.ProfileSnapshot) (string, error) {
	return p.sign(email, profile, p.accessTTL)
}

// SignRefreshToken mints the longer-lived rotation token with the same claim
// structure as the access token.
func (p *Provider) SignRefreshToken(email string, profile domain.ProfileSnapshot) (string, error) {
	return p.sign(email, profile, p.refreshTTL)
}

func (p *Provider) sign(email string, profile domain.ProfileSnapshot, ttl time.Duration) (string, error) {
	now := p.clock.Now()
	claims := Claims{
		User: profile,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// VerifyToken decodes and verifies a signed token. Any signature mismatch,
// malformed structure or expiry failure surfaces as domain.ErrInvalidToken.
func (p *Provider) VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.clock.Now))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrInvalidToken)
	}
	return claims, nil
}

// VerifyRefreshToken decodes and verifies a refresh token. Refresh tokens
// share secret, algorithm and claim shape with access tokens, so this is the
// same check under a name that matches the rotation protocol.
func (p *Provider) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	return p.VerifyToken(tokenStr)
}

// AccessTTL returns the configured access token validity window.
func (p *Provider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh token validity window.
func (p *Provider) RefreshTTL() time.Duration { return p.refreshTTL }
