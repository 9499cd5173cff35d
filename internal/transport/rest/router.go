package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/The-synnapse-Project/front-end-sub000/internal/auth"
	"github.com/The-synnapse-Project/front-end-sub000/internal/core/datamodel/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/entry"
	"github.com/The-synnapse-Project/front-end-sub000/internal/guard"
	"github.com/The-synnapse-Project/front-end-sub000/internal/notify"
	"github.com/The-synnapse-Project/front-end-sub000/internal/permission"
	personhandler "github.com/The-synnapse-Project/front-end-sub000/internal/person"
	"github.com/The-synnapse-Project/front-end-sub000/internal/transport/middleware"
	"github.com/The-synnapse-Project/front-end-sub000/internal/transport/swagger"
)

// Handlers bundles every HTTP surface the router mounts.
type Handlers struct {
	Health     *HealthHandler
	Auth       *auth.Handler
	Persons    *personhandler.Handler
	Permission *permission.Handler
	Entries    *entry.Handler
	Notify     *notify.Handler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, g *guard.Guard, allowedOrigins string, logger *slog.Logger) {
	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check routes
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/google", h.Auth.GoogleLogin)
			sr.Post("/register", h.Auth.Register)
			sr.Post("/refresh", h.Auth.Refresh)
			sr.Post("/logout", h.Auth.Logout)
			sr.Get("/session", h.Auth.Session)
		})

		// Protected routes that require an authenticated session
		r.Group(func(pr chi.Router) {
			pr.Use(g.Require())

			pr.Post("/auth/change-password", h.Auth.ChangePassword)

			pr.Get("/persons/me", h.Persons.Me)

			// Change notifications for live dashboards
			pr.Get("/events", h.Notify.Stream)

			// Entry routes: per-person visibility is decided in the handler
			// from the viewer's own history flags.
			pr.Route("/entries", func(er chi.Router) {
				er.Post("/", h.Entries.Mark)
				er.Get("/by-person/{personId}", h.Entries.ByPerson)
				er.Get("/by-date/{date}", h.Entries.ByDate)
				er.Get("/by-date/{date}/{personId}", h.Entries.ByDateAndPerson)

				er.Group(func(ar chi.Router) {
					ar.Use(g.Require(person.RoleAdmin))
					ar.Patch("/{id}", h.Entries.Update)
					ar.Delete("/{id}", h.Entries.Delete)
				})
			})

			// Staff surfaces
			pr.Group(func(sr chi.Router) {
				sr.Use(g.Require(person.RoleAdmin, person.RoleProfesor))
				sr.Get("/persons", h.Persons.List)
				sr.Get("/persons/{id}", h.Persons.Get)
				sr.Get("/reports/daily/{date}", h.Entries.DailyReport)
			})

			// Administration surfaces
			pr.Group(func(ar chi.Router) {
				ar.Use(g.Require(person.RoleAdmin))
				ar.Patch("/persons/{id}", h.Persons.Update)
				ar.Delete("/persons/{id}", h.Persons.Delete)
			})

			// Permission management is gated on capability flags, not role
			// strings, so a delegated manager without the Admin role works.
			pr.Group(func(mr chi.Router) {
				mr.Use(g.RequireAdminPanel())
				mr.Get("/permissions", h.Permission.List)
				mr.Get("/permissions/by-person/{personId}", h.Permission.GetByPerson)
			})

			pr.Group(func(mr chi.Router) {
				mr.Use(g.RequireEditPermissions())
				mr.Patch("/permissions/{id}", h.Permission.Update)
			})
		})
	})
}
