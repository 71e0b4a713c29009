package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/social-connect-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login and refresh responses. The password hash and the
// stored refresh token never serialize off the user model; the refresh token
// in the envelope is the freshly minted one.
type AuthEnvelope struct {
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *domain.User `json:"user,omitempty"`
	Message      string       `json:"message,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// RegisterEnvelope wraps the registration response.
type RegisterEnvelope struct {
	User    *domain.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ResendEnvelope wraps the resend-otp response.
type ResendEnvelope struct {
	Message           string `json:"message,omitempty"`
	RemainingAttempts int    `json:"remaining_attempts"`
	Error             string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps a wrapped sentinel error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFromError(err), err.Error())
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrOtpLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrOtpResendLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrOtpInvalid),
		errors.Is(err, domain.ErrOtpExpired),
		errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrRefreshMismatch),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
