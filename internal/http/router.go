package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medsched/medsched/internal/auth"
	"github.com/medsched/medsched/internal/config"
	"github.com/medsched/medsched/internal/http/features/appointments"
	"github.com/medsched/medsched/internal/http/features/authn"
	"github.com/medsched/medsched/internal/http/features/dashboard"
	"github.com/medsched/medsched/internal/http/features/directory"
	"github.com/medsched/medsched/internal/http/features/export"
	"github.com/medsched/medsched/internal/http/features/records"
	"github.com/medsched/medsched/internal/http/middleware"
	"github.com/medsched/medsched/internal/httputil"
	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

const maxRequestBody = 1 << 20 // 1 MB

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	PasswordService *auth.PasswordService
	SessionService  *auth.SessionService
	Store           *repository.Store
	RateLimit       config.RateLimitConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.RequestSizeLimit(maxRequestBody))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authLimiter := middleware.RateLimit(cfg.RateLimit, cfg.Logger)
	requireAuth := middleware.Auth(cfg.SessionService)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)
	staffOnly := middleware.RequireRoles(domain.RoleAdmin, domain.RoleDoctor)

	authnHandler := authn.NewHandler(cfg.Logger, cfg.PasswordService, cfg.SessionService, cfg.Store.Users)
	r.Group(func(r chi.Router) {
		r.Use(authLimiter)
		r.Post("/auth/login", authnHandler.Login)
		r.Post("/auth/refresh", authnHandler.Refresh)
	})
	r.Post("/auth/logout", authnHandler.Logout)
	r.With(requireAuth).Get("/auth/me", authnHandler.Me)

	apptHandler := appointments.NewHandler(cfg.Logger, cfg.Store)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/appointments", apptHandler.List)
		r.Post("/appointments", apptHandler.Create)
		r.Get("/appointments/availability", apptHandler.Availability)
		r.Put("/appointments/{id}", apptHandler.Reschedule)
		r.Post("/appointments/{id}/cancel", apptHandler.Cancel)
		r.With(staffOnly).Post("/appointments/{id}/confirm", apptHandler.Confirm)
		r.With(staffOnly).Post("/appointments/{id}/complete", apptHandler.Complete)
	})

	dirHandler := directory.NewHandler(cfg.Logger, cfg.Store)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/specialties", dirHandler.Specialties)
		r.With(staffOnly).Get("/patients", dirHandler.Patients)
		r.Get("/doctors", dirHandler.Doctors)
		r.With(staffOnly).Get("/schedules", dirHandler.Schedules)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/users", dirHandler.Users)
			r.Post("/patients", dirHandler.CreatePatient)
			r.Post("/doctors", dirHandler.CreateDoctor)
			r.Post("/users/{id}/activate", dirHandler.SetUserActive(true))
			r.Post("/users/{id}/deactivate", dirHandler.SetUserActive(false))
			r.Post("/doctors/{id}/activate", dirHandler.SetUserActive(true))
			r.Post("/doctors/{id}/deactivate", dirHandler.SetUserActive(false))
		})
		r.Group(func(r chi.Router) {
			r.Use(staffOnly)
			r.Post("/schedules", dirHandler.CreateSchedule)
			r.Put("/schedules/{id}", dirHandler.UpdateSchedule)
		})
	})

	recordsHandler := records.NewHandler(cfg.Logger, cfg.Store)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/records", recordsHandler.List)
		r.Get("/records/appointment/{id}", recordsHandler.ByAppointment)
		r.With(staffOnly).Post("/records", recordsHandler.Create)
		r.With(staffOnly).Put("/records/{id}", recordsHandler.Update)
	})

	dashHandler := dashboard.NewHandler(cfg.Logger, cfg.Store)
	r.With(requireAuth).Get("/dashboard/metrics", dashHandler.Metrics)

	exportHandler := export.NewHandler(cfg.Logger, cfg.Store)
	r.With(requireAuth, adminOnly).Get("/export/appointments.csv", exportHandler.Appointments)

	return r
}
