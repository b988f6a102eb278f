// Package router sets up all HTTP routes and middleware chains for the
// ProPage server. It organizes routes into public, authenticated, and
// admin groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"propage/internal/auth"
	"propage/internal/handlers"
	"propage/internal/middleware"
	"propage/internal/session"
)

// loginRateLimit allows this many login attempts per IP per window.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(
	sessionStore *session.Store,
	authz *auth.Service,
	authHandlers *handlers.Auth,
	admin *handlers.Admin,
	profile *handlers.Profile,
	upload *handlers.Upload,
	public *handlers.Public,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	loginLimiter := middleware.NewRateLimiter(loginRateLimit, loginRateWindow)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Authentication.
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", authHandlers.Login)
			r.With(loginLimiter.Middleware).Post("/signup", authHandlers.Signup)
			r.Post("/logout", authHandlers.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", authHandlers.Me)
				r.Post("/2fa/setup", authHandlers.TwoFASetup)
				r.Post("/2fa/verify", authHandlers.TwoFAVerify)
			})
		})

		// Profile editing — owner or admin, enforced in the handlers.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/{id}", profile.Get)
				r.Patch("/{id}", profile.Update)
				r.Patch("/by-username/{username}", profile.UpdateByUsername)
			})

			// Uploads are available to any authenticated user.
			r.Route("/uploads", func(r chi.Router) {
				r.Get("/", upload.List)
				r.Post("/", upload.Files)
				r.Delete("/", upload.DeleteByURL)
			})
		})

		// Admin area. The session flag rejects obvious non-admins cheaply;
		// authz.RequireAdmin then re-reads the live role so a demotion takes
		// effect immediately.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin)
			r.Use(authz.RequireAdmin)

			r.Route("/templates", func(r chi.Router) {
				r.Get("/", admin.ListTemplates)
				r.Post("/", admin.CreateTemplate)
				r.Get("/check-slug", admin.CheckSlug)
				r.Get("/{id}", admin.GetTemplate)
				r.Patch("/{id}", admin.UpdateTemplate)
				r.Delete("/{id}", admin.DeleteTemplate)
				r.Post("/{id}/sections", admin.CreateSection)
				r.Post("/{id}/footer-items", admin.CreateFooterItem)
			})

			r.Route("/sections", func(r chi.Router) {
				r.Patch("/{id}", admin.UpdateSection)
				r.Delete("/{id}", admin.DeleteSection)
				r.Post("/{id}/items", admin.CreateSectionItem)
			})

			r.Route("/section-items", func(r chi.Router) {
				r.Patch("/{id}", admin.UpdateSectionItem)
				r.Delete("/{id}", admin.DeleteSectionItem)
			})

			r.Route("/footer-items", func(r chi.Router) {
				r.Patch("/{id}", admin.UpdateFooterItem)
				r.Delete("/{id}", admin.DeleteFooterItem)
				r.Post("/{id}/images/move", admin.MoveFooterImage)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", admin.ListUsers)
				r.Post("/", admin.CreateUser)
				r.Post("/import", admin.BulkImportUsers)
				r.Patch("/{id}/role", admin.SetUserRole)
				r.Delete("/{id}", admin.DeleteUser)
			})
		})
	})

	// Public pages, cached in Valkey.
	r.Get("/pages/{slug}", public.TemplateBySlug)
	r.Get("/u/{username}", public.ProfileByUsername)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
