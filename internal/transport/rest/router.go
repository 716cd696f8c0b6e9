package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/admin"
	"github.com/frahmantamala/property-hub/internal/auth"
	"github.com/frahmantamala/property-hub/internal/property"
	"github.com/frahmantamala/property-hub/internal/transport/middleware"
	"github.com/frahmantamala/property-hub/internal/transport/swagger"
	"github.com/frahmantamala/property-hub/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RouterDeps collects everything the HTTP surface is built from. Nil
// handlers leave their routes unregistered.
type RouterDeps struct {
	APIPrefix      string
	RequestTimeout time.Duration
	AllowedOrigins []string
	OpenAPIPath    string

	DB       Pinger
	Verifier auth.Verifier
	Resolver access.ProfileResolver
	Gate     *access.Gate

	AuthHandler     *auth.Handler
	UserHandler     *user.Handler
	PropertyHandler *property.Handler
	AdminHandler    *admin.Handler

	Logger *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)

	// Apply global middleware
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))

	openAPIPath := deps.OpenAPIPath
	if openAPIPath == "" {
		openAPIPath = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route(deps.APIPrefix, func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.AuthHandler != nil {
			r.Post("/auth/login", deps.AuthHandler.Login)
		}

		// Everything below needs a resolved profile. The gate decides per
		// resource category; unscoped paths pass straight through.
		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(deps.Verifier, deps.Resolver, deps.RequestTimeout, deps.Logger))
			pr.Use(middleware.RequireWorkstream(deps.Gate, deps.APIPrefix))

			if deps.UserHandler != nil {
				pr.Get("/users/me", deps.UserHandler.GetCurrentUser)
				pr.Get("/users/me/access", deps.UserHandler.GetMyAccess)
			}

			if deps.PropertyHandler != nil {
				pr.Route("/properties", deps.PropertyHandler.Routes)
			}

			if deps.AdminHandler != nil {
				pr.Route("/admin", func(ar chi.Router) {
					ar.Use(middleware.RequireGlobalAdmin(deps.Logger))
					deps.AdminHandler.Routes(ar)
				})
			}
		})
	})
}
