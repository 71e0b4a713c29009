package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/social-connect-api/internal/application/auth"
	"github.com/social-connect-api/internal/application/otp"
	"github.com/social-connect-api/internal/config"
	"github.com/social-connect-api/internal/transport/http/handler"
	appmiddleware "github.com/social-connect-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, applied to the credential-bearing
	// public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(deps.OtpRepo, deps.Clock, cfg)
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		Otp:         otpSvc,
		Mailer:      deps.Mailer,
		Tokens:      deps.JWTProvider,
		Clock:       deps.Clock,
		AppName:     cfg.AppName,
		OtpValidity: cfg.OtpExpiry,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, deps.JWTProvider.RefreshTTL(), cfg.AppEnv == "production")

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/register", authH.Register)
			r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOtp)
			r.With(sensitiveRL.Limit).Post("/resend-otp", authH.ResendOtp)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.Get("/refresh", authH.Refresh)
			r.Post("/refresh", authH.Refresh)
			r.Post("/logout", authH.Logout)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Auth(deps.JWTProvider))
				r.Get("/account", authH.Account)
			})
		})
	})

	return r
}
