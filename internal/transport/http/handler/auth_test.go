package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/social-connect-api/internal/application/auth"
	"github.com/social-connect-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) VerifyOtp(ctx context.Context, req auth.VerifyOtpRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthService) ResendOtp(ctx context.Context, req auth.ResendOtpRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}
func (m *mockAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*auth.AuthResult, error) {
	args := m.Called(ctx, refreshToken)
	if r, _ := args.Get(0).(*auth.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}
func (m *mockAuthService) Account(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func newHandler(svc *mockAuthService) *AuthHandler {
	return NewAuthHandler(svc, 7*24*time.Hour, false)
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// --- Register ---

func TestRegister_InvalidBody(t *testing.T) {
	h := newHandler(&mockAuthService{})
	rr := httptest.NewRecorder()
	h.Register(rr, postJSON("/v1/auth/register", "{not json"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	h := newHandler(&mockAuthService{})
	rr := httptest.NewRecorder()
	h.Register(rr, postJSON("/v1/auth/register",
		`{"username":"bob","email":"not-an-email","password":"s3cretpass","display_name":"Bob"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "email")
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.Register(rr, postJSON("/v1/auth/register",
		`{"username":"bob","email":"bob@example.com","password":"s3cretpass","display_name":"Bob"}`))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegister_Created(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Register", mock.Anything, mock.Anything).Return(&domain.User{
		UserID: "u1", Username: "bob", Email: "bob@example.com", PasswordHash: "hash",
	}, nil)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.Register(rr, postJSON("/v1/auth/register",
		`{"username":"bob","email":"bob@example.com","password":"s3cretpass","display_name":"Bob"}`))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "verification code sent")
	// The password hash must not serialize.
	assert.NotContains(t, rr.Body.String(), "hash")
}

// --- VerifyOtp ---

func TestVerifyOtp_Locked(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOtp", mock.Anything, mock.Anything).Return(domain.ErrOtpLocked)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.VerifyOtp(rr, postJSON("/v1/auth/verify-otp",
		`{"email":"bob@example.com","otp":"123456"}`))
	assert.Equal(t, http.StatusLocked, rr.Code)
}

func TestVerifyOtp_WrongCode(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOtp", mock.Anything, mock.Anything).Return(domain.ErrOtpInvalid)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.VerifyOtp(rr, postJSON("/v1/auth/verify-otp",
		`{"email":"bob@example.com","otp":"123456"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyOtp_NonNumericCode(t *testing.T) {
	h := newHandler(&mockAuthService{})
	rr := httptest.NewRecorder()
	h.VerifyOtp(rr, postJSON("/v1/auth/verify-otp",
		`{"email":"bob@example.com","otp":"abc123"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyOtp_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOtp", mock.Anything, auth.VerifyOtpRequest{
		Email: "bob@example.com", Otp: "123456",
	}).Return(nil)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.VerifyOtp(rr, postJSON("/v1/auth/verify-otp",
		`{"email":"bob@example.com","otp":"123456"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "email verified")
	svc.AssertExpectations(t)
}

// --- ResendOtp ---

func TestResendOtp_QuotaExhausted(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("ResendOtp", mock.Anything, mock.Anything).Return(0, domain.ErrOtpResendLimit)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.ResendOtp(rr, postJSON("/v1/auth/resend-otp", `{"email":"bob@example.com"}`))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestResendOtp_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("ResendOtp", mock.Anything, mock.Anything).Return(2, nil)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.ResendOtp(rr, postJSON("/v1/auth/resend-otp", `{"email":"bob@example.com"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"remaining_attempts":2`)
}

// --- Login ---

func TestLogin_BadCredentials(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthorized)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.Login(rr, postJSON("/v1/auth/login", `{"email":"bob@example.com","password":"wrong"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.Anything).Return(&auth.AuthResult{
		User:         &domain.User{UserID: "u1", Email: "bob@example.com"},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}, nil)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.Login(rr, postJSON("/v1/auth/login", `{"email":"bob@example.com","password":"s3cretpass"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "access-1")

	cookie := findCookie(t, rr, refreshCookieName)
	assert.Equal(t, "refresh-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/v1/auth", cookie.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), cookie.MaxAge)
}

// --- Refresh ---

func TestRefresh_NoToken(t *testing.T) {
	h := newHandler(&mockAuthService{})
	rr := httptest.NewRecorder()
	h.Refresh(rr, httptest.NewRequest(http.MethodGet, "/v1/auth/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefresh_FromCookie_RotatesCookie(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Refresh", mock.Anything, "refresh-1").Return(&auth.AuthResult{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
	}, nil)

	h := newHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-1"})
	rr := httptest.NewRecorder()
	h.Refresh(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "access-2")
	cookie := findCookie(t, rr, refreshCookieName)
	assert.Equal(t, "refresh-2", cookie.Value)
	svc.AssertExpectations(t)
}

func TestRefresh_FromBody(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Refresh", mock.Anything, "refresh-1").Return(&auth.AuthResult{
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
	}, nil)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.Refresh(rr, postJSON("/v1/auth/refresh", `{"refresh_token":"refresh-1"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestRefresh_SupersededToken(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Refresh", mock.Anything, "refresh-1").Return(nil, domain.ErrRefreshMismatch)

	h := newHandler(svc)
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-1"})
	rr := httptest.NewRecorder()
	h.Refresh(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- Logout ---

func TestLogout_ClearsCookie(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Logout", mock.Anything, "refresh-1").Return(nil)

	h := newHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh-1"})
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	cookie := findCookie(t, rr, refreshCookieName)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
	svc.AssertExpectations(t)
}

func TestLogout_WithoutCookie_StillOK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Logout", mock.Anything, "").Return(nil)

	h := newHandler(svc)
	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

// --- Account ---

func TestAccount_NoClaims(t *testing.T) {
	h := newHandler(&mockAuthService{})
	rr := httptest.NewRecorder()
	h.Account(rr, httptest.NewRequest(http.MethodGet, "/v1/auth/account", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie not set", "expected cookie %q", name)
	return nil
}
