package http

import (
	"github.com/social-connect-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/social-connect-api/internal/infrastructure/jwt"
	"github.com/social-connect-api/internal/infrastructure/smtp"
	"github.com/social-connect-api/internal/pkg/clock"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	OtpRepo     *dynamo.OtpRepo
	Mailer      smtp.Mailer
	JWTProvider *jwtinfra.Provider
	Clock       clock.Clock
}
