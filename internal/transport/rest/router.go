package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/stagiaire-management/internal/activity"
	"github.com/frahmantamala/stagiaire-management/internal/auth"
	"github.com/frahmantamala/stagiaire-management/internal/dashboard"
	"github.com/frahmantamala/stagiaire-management/internal/evaluation"
	"github.com/frahmantamala/stagiaire-management/internal/mission"
	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
	"github.com/frahmantamala/stagiaire-management/internal/transport/middleware"
	"github.com/frahmantamala/stagiaire-management/internal/transport/swagger"
	"github.com/frahmantamala/stagiaire-management/internal/user"
	"github.com/go-chi/chi"
)

type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Stagiaire  *stagiaire.Handler
	Evaluation *evaluation.Handler
	Mission    *mission.Handler
	Dashboard  *dashboard.Handler
	Activity   *activity.Handler
}

type Options struct {
	AllowedOrigins []string
	OpenAPIPath    string
	// Metrics and MetricsHandler are nil when metrics are disabled.
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, health *HealthHandler, h Handlers, opts Options, logger *slog.Logger) {
	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}

	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		router.Method(http.MethodGet, opts.MetricsPath, opts.MetricsHandler)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	if opts.OpenAPIPath != "" {
		router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, opts.OpenAPIPath)
		})
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		if health != nil {
			r.Get("/health", health.healthCheckHandler)
			r.Get("/ping", health.pingHandler)
		}

		if h.Auth == nil {
			return
		}

		// Public auth routes
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			pr.Post("/auth/logout", h.Auth.Logout)

			if h.User != nil {
				pr.Get("/auth/me", h.User.GetCurrentUser)
				pr.Get("/auth/profile", h.User.GetCurrentUser)
				pr.Put("/auth/profile", h.User.UpdateProfile)
				pr.Get("/auth/preferences", h.User.GetPreferences)
				pr.Put("/auth/preferences", h.User.UpdatePreferences)
				pr.Put("/auth/password", h.User.ChangePassword)

				pr.Route("/users", func(ur chi.Router) {
					ur.Use(middleware.RequireAdmin())
					ur.Get("/", h.User.ListUsers)
					ur.Patch("/{id}/role", h.User.ChangeRole)
					ur.Delete("/{id}", h.User.DeleteUser)
				})
			}

			if h.Stagiaire != nil {
				pr.Route("/stagiaires", func(sr chi.Router) {
					sr.Get("/", h.Stagiaire.ListStagiaires)
					sr.Post("/", h.Stagiaire.CreateStagiaire)
					sr.Get("/{id}", h.Stagiaire.GetStagiaire)
					sr.Put("/{id}", h.Stagiaire.UpdateStagiaire)
					sr.Delete("/{id}", h.Stagiaire.DeleteStagiaire)
					sr.Post("/{id}/avatar", h.Stagiaire.UploadAvatar)
					if h.Evaluation != nil {
						sr.Get("/{id}/evaluations", h.Evaluation.ListStagiaireEvaluations)
					}
				})
			}

			if h.Evaluation != nil {
				pr.Route("/evaluations", func(er chi.Router) {
					er.Get("/", h.Evaluation.ListEvaluations)
					er.Post("/", h.Evaluation.CreateEvaluation)
					er.Get("/{id}", h.Evaluation.GetEvaluation)
					er.Put("/{id}", h.Evaluation.UpdateEvaluation)
					er.Delete("/{id}", h.Evaluation.DeleteEvaluation)
					er.Get("/{id}/pdf", h.Evaluation.ExportPDF)

					// Reviewer routes with role protection
					er.Group(func(rr chi.Router) {
						rr.Use(middleware.RequireReviewer())
						rr.Patch("/{id}/review", h.Evaluation.ReviewEvaluation)
					})
				})
			}

			if h.Mission != nil {
				pr.Route("/missions", func(mr chi.Router) {
					mr.Get("/", h.Mission.ListMissions)
					mr.Post("/", h.Mission.CreateMission)
					mr.Get("/{id}", h.Mission.GetMission)
					mr.Put("/{id}", h.Mission.UpdateMission)
					mr.Delete("/{id}", h.Mission.DeleteMission)
					mr.Patch("/{id}/progress", h.Mission.UpdateProgress)
				})
			}

			if h.Dashboard != nil {
				pr.Get("/dashboard/stats", h.Dashboard.GetStats)
			}

			if h.Activity != nil {
				pr.Get("/activities", h.Activity.ListActivities)
			}
		})
	})
}
