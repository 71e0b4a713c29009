package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/social-connect-api/internal/config"
	"github.com/social-connect-api/internal/domain"
	jwtinfra "github.com/social-connect-api/internal/infrastructure/jwt"
	"github.com/social-connect-api/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func newTestProvider(t *testing.T, clk clock.Clock) *jwtinfra.Provider {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:       testSecret(),
		AccessTokenTTL:  24 * time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	p, err := jwtinfra.NewProvider(cfg, clk)
	require.NoError(t, err)
	return p
}

func testProfile() domain.ProfileSnapshot {
	return domain.ProfileSnapshot{
		Version:     domain.ProfileSnapshotVersion,
		UserID:      "u1",
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Role:        domain.RoleUser,
	}
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuth_MissingHeader(t *testing.T) {
	p := newTestProvider(t, clock.System())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	Auth(p)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_BadToken(t *testing.T) {
	p := newTestProvider(t, clock.System())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rr := httptest.NewRecorder()
	Auth(p)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestAuth_ExpiredToken(t *testing.T) {
	// Sign with a clock far enough in the past that the token is already
	// expired when verified against wall time.
	past := fixedClock{now: time.Now().Add(-48 * time.Hour)}
	signer := newTestProvider(t, past)
	signed, err := signer.SignAccessToken("alice@example.com", testProfile())
	require.NoError(t, err)

	verifier := newTestProvider(t, clock.System())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(verifier)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_ValidToken_InjectsClaims(t *testing.T) {
	p := newTestProvider(t, clock.System())

	signed, err := p.SignAccessToken("alice@example.com", testProfile())
	require.NoError(t, err)

	var gotClaims *jwtinfra.Claims
	captureHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p)(captureHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "alice@example.com", gotClaims.Subject)
	assert.Equal(t, "u1", gotClaims.User.UserID)
	assert.Equal(t, domain.RoleUser, gotClaims.User.Role)
	assert.Equal(t, domain.ProfileSnapshotVersion, gotClaims.User.Version)
}
