package rest

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/danekja/ymanager/internal/approval"
	"github.com/danekja/ymanager/internal/auth"
	"github.com/danekja/ymanager/internal/calendar"
	"github.com/danekja/ymanager/internal/fileio"
	"github.com/danekja/ymanager/internal/policy"
	"github.com/danekja/ymanager/internal/transport/middleware"
	"github.com/danekja/ymanager/internal/user"
	"github.com/go-chi/chi"
)

// Handlers groups the feature handlers wired by the composition root.
type Handlers struct {
	User     *user.Handler
	Calendar *calendar.Handler
	Approval *approval.Handler
	Policy   *policy.Handler
	FileIO   *fileio.Handler
}

// RegisterAllRoutes mounts the whole REST surface. Everything except the
// health probes sits behind bearer authentication.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authMiddleware *auth.Middleware, h Handlers, allowedOrigins string, requestTimeout time.Duration, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.Timeout(requestTimeout))

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	router.Group(func(pr chi.Router) {
		pr.Use(authMiddleware.Authenticate)

		pr.Get("/users", h.User.ListUsers)
		pr.Get("/users/requests/vacation", h.Approval.ListTimeOffRequests)
		pr.Get("/users/requests/authorization", h.Approval.ListAuthorizationRequests)

		pr.Route("/user", func(ur chi.Router) {
			ur.Get("/{id}/profile", h.User.GetProfile)
			ur.Get("/{id}/calendar", h.Calendar.ListEntries)
			ur.Post("/calendar/create", h.Calendar.CreateEntry)
			ur.Put("/calendar/edit", h.Calendar.UpdateEntry)
			ur.Put("/settings", h.Policy.SetUserPolicy)
			ur.Put("/requests", h.Approval.Decide)
		})

		pr.Get("/settings", h.Policy.GetDefaults)
		pr.Post("/settings", h.Policy.SetDefaults)

		pr.Delete("/calendar/{id}/delete", h.Calendar.DeleteEntry)

		pr.Post("/import/xls", h.FileIO.ImportXLS)
		pr.Get("/export/pdf", h.FileIO.ExportPDF)
	})
}
