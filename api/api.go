// Package api exposes the vault service as a REST API under /api/v1.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/salapa/vaultd/vault"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	svc         *vault.Service
	logger      *slog.Logger
	rateLimiter *loginRateLimiter
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger. If not set, a default JSON logger
// writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) { a.logger = logger }
}

// New creates a new API instance.
func New(svc *vault.Service, opts ...Option) *API {
	a := &API{
		svc:         svc,
		rateLimiter: newLoginRateLimiter(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Post("/auth/register", a.RegisterAdmin)
	r.Post("/auth/login", a.Login)
	r.Post("/auth/logout", a.Logout)
	r.Post("/auth/activate", a.Activate)
	r.Post("/auth/forgot-admin-password", a.ForgotAdminPassword)
	r.With(a.AuthMiddleware).Post("/auth/change-credentials", a.ChangeCredentials)

	r.Post("/resets/password", a.RequestPasswordReset)
	r.Put("/resets/password", a.ConsumePasswordReset)
	r.Post("/resets/pin", a.RequestPinReset)
	r.Put("/resets/pin", a.ConsumePinReset)

	r.Route("/credentials", func(r chi.Router) {
		r.Use(a.AuthMiddleware)
		r.Post("/", a.CreateCredential)
		r.Get("/", a.ListCredentials)
		r.Get("/{credentialID}", a.GetCredential)
		r.Put("/{credentialID}", a.UpdateCredential)
		r.Delete("/{credentialID}", a.DeleteCredential)
		r.Get("/{credentialID}/shares", a.ListShares)
		r.Post("/{credentialID}/shares", a.ShareCredential)
	})
	r.With(a.AuthMiddleware).Delete("/shares/{shareID}", a.RevokeShare)

	r.Route("/categories", func(r chi.Router) {
		r.Use(a.AuthMiddleware)
		r.Get("/", a.ListCategories)
		r.Post("/", a.CreateCategory)
		r.Put("/{categoryID}", a.RenameCategory)
		r.Delete("/{categoryID}", a.DeleteCategory)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(a.AuthMiddleware, a.RequireAdmin)
		r.Get("/", a.ListUsers)
		r.Get("/counts", a.CountUsers)
		r.Get("/by-email", a.GetUserByEmail)
		r.Put("/{userID}", a.UpdateUser)
		r.Delete("/{userID}", a.DeleteUser)
		r.Get("/temporary", a.ListTemporaryUsers)
		r.Post("/temporary", a.CreateTemporaryUser)
		r.Delete("/temporary/{tempID}", a.DeleteTemporaryUser)
	})
	r.With(a.AuthMiddleware).Get("/roles", a.ListRoles)

	return r
}
