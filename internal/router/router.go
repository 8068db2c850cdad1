package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"entrepreneurhub/internal/cache"
	"entrepreneurhub/internal/config"
	"entrepreneurhub/internal/handler"
	"entrepreneurhub/internal/middleware"
	"entrepreneurhub/internal/model"
)

type Handlers struct {
	System     *handler.SystemHandler
	Docs       *handler.DocsHandler
	Auth       *handler.AuthHandler
	Course     *handler.CourseHandler
	Enrollment *handler.EnrollmentHandler
	Review     *handler.ReviewHandler
	Calendar   *handler.CalendarHandler
	Audit      *handler.AuditHandler
}

func New(
	cfg *config.Config,
	log *slog.Logger,
	sessions *middleware.SessionResolver,
	courseCache *cache.TTL,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimit.GeneralRPM, cfg.RateLimit.AuthRPM)
	requireAdmin := middleware.RequireRole(model.RoleAdmin)
	cached := courseCache.Middleware("courses")

	r.Use(middleware.Recovery)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORS.Origins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/healthz", h.System.Healthz)
	r.Get("/readyz", h.System.Readyz)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.Server.RequestTimeout))

		api.Get("/", h.System.Index)
		api.Get("/status", h.System.Status)
		api.Get("/docs", h.Docs.SwaggerUI)
		api.Get("/docs/openapi.yaml", h.Docs.OpenAPI)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.With(sessions.RequireAuth).Get("/me", h.Auth.Me)
			auth.With(sessions.OptionalAuth).Post("/logout", h.Auth.Logout)
		})

		api.Route("/courses", func(courses chi.Router) {
			courses.With(cached).Get("/", h.Course.List)
			courses.With(cached).Get("/{id}", h.Course.Get)
			courses.With(sessions.RequireAuth, requireAdmin).Post("/", h.Course.Create)
			courses.With(sessions.RequireAuth, requireAdmin).Put("/{id}", h.Course.Update)
			courses.With(sessions.RequireAuth, requireAdmin).Delete("/{id}", h.Course.Delete)
		})

		api.Route("/enrollments", func(enrollments chi.Router) {
			enrollments.Use(sessions.RequireAuth)
			enrollments.Get("/", h.Enrollment.List)
			enrollments.Post("/", h.Enrollment.Create)
			enrollments.Put("/{id}", h.Enrollment.UpdateProgress)
		})

		api.Route("/reviews", func(reviews chi.Router) {
			reviews.With(sessions.RequireAuth).Post("/", h.Review.Save)
			reviews.Get("/course/{courseId}", h.Review.ListByCourse)
		})

		api.Route("/calendar-events", func(events chi.Router) {
			events.Use(sessions.RequireAuth)
			events.Get("/", h.Calendar.List)
			events.Post("/", h.Calendar.Create)
			events.Put("/{id}", h.Calendar.Update)
			events.Delete("/{id}", h.Calendar.Delete)
		})

		api.With(sessions.RequireAuth, requireAdmin).Get("/admin/audit", h.Audit.List)
	})

	return r
}
