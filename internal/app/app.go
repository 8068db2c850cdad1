package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"entrepreneurhub/api"
	"entrepreneurhub/internal/cache"
	"entrepreneurhub/internal/config"
	"entrepreneurhub/internal/database"
	"entrepreneurhub/internal/event"
	"entrepreneurhub/internal/handler"
	"entrepreneurhub/internal/metrics"
	"entrepreneurhub/internal/middleware"
	"entrepreneurhub/internal/repository"
	"entrepreneurhub/internal/router"
	"entrepreneurhub/internal/service"
	"entrepreneurhub/internal/token"
)

const dbStatsInterval = 15 * time.Second

type App struct {
	cfg           *config.Config
	log           *slog.Logger
	server        *http.Server
	metricsServer *http.Server
	db            *database.DB
	cleanupFuncs  []func()
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if cfg.DevSecretInUse {
		log.Warn("JWT_SECRET is not set, using the development secret; never run like this in production")
	}

	log.Info("opening database", "driver", cfg.Database.Driver)
	db, err := database.Open(ctx, database.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("database ready")

	appHandler, unsubscribe, err := newHandler(cfg, db, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	statsCtx, stopStats := context.WithCancel(context.Background())
	go recordDBStats(statsCtx, db)

	a := &App{
		cfg: cfg,
		log: log,
		server: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           appHandler,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
		db: db,
		cleanupFuncs: []func(){
			stopStats,
			unsubscribe,
			db.Close,
		},
	}

	if port := strings.TrimSpace(cfg.Server.MetricsPort); port != "" && port != "0" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		a.metricsServer = &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		}
	}

	return a, nil
}

// newHandler wires repositories, services and handlers into the HTTP router.
// The returned func detaches the cache invalidation subscriber.
func newHandler(cfg *config.Config, db *database.DB, log *slog.Logger, authOpts ...service.AuthOption) (http.Handler, func(), error) {
	issuer, err := token.NewIssuer(cfg.JWT.Secret, token.WithTTL(cfg.JWT.TTL))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	userRepo := repository.NewUserRepository(db.DB)
	courseRepo := repository.NewCourseRepository(db.DB)
	enrollmentRepo := repository.NewEnrollmentRepository(db.DB)
	reviewRepo := repository.NewReviewRepository(db.DB)
	calendarRepo := repository.NewCalendarRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)

	bus := event.NewBus(log)
	courseCache := cache.New(cfg.Cache.TTL)
	unsubscribe := bus.Subscribe(invalidateCourses(courseCache, log))

	auditService := service.NewAuditService(auditRepo)
	authService, err := service.NewAuthService(userRepo, issuer, auditService, bus, authOpts...)
	if err != nil {
		unsubscribe()
		return nil, nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	courseService := service.NewCourseService(courseRepo, auditService, bus)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, bus)
	reviewService := service.NewReviewService(reviewRepo, courseRepo, enrollmentRepo, bus)
	calendarService := service.NewCalendarService(calendarRepo, courseRepo)

	sessions := middleware.NewSessionResolver(issuer, userRepo)

	appRouter := router.New(cfg, log, sessions, courseCache, router.Handlers{
		System: handler.NewSystemHandler(db),
		Docs:   handler.NewDocsHandler(api.OpenAPI),
		Auth: handler.NewAuthHandler(authService, handler.CookieSettings{
			Secure:   cfg.Cookie.SecureFlag(),
			SameSite: cfg.Cookie.SameSiteMode(),
			MaxAge:   issuer.TTL(),
		}),
		Course:     handler.NewCourseHandler(courseService),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService),
		Review:     handler.NewReviewHandler(reviewService),
		Calendar:   handler.NewCalendarHandler(calendarService),
		Audit:      handler.NewAuditHandler(auditService),
	})

	return appRouter, unsubscribe, nil
}

// invalidateCourses drops cached course responses whenever something that
// feeds a course document (counters, rating, fields) changes.
func invalidateCourses(c *cache.TTL, log *slog.Logger) event.Handler {
	return func(e event.Event) {
		switch e.Type {
		case event.TypeCourseCreated, event.TypeCourseUpdated, event.TypeCourseDeleted,
			event.TypeEnrollmentCreated, event.TypeReviewSaved:
			n := c.Invalidate("courses:")
			log.Debug("course cache invalidated", "event", e.Type, "entries", n)
		}
	}
}

func recordDBStats(ctx context.Context, db *database.DB) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()

	metrics.RecordDBStats(db)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.RecordDBStats(db)
		}
	}
}

// Run serves until SIGINT/SIGTERM or a listener failure, then shuts down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	go func() {
		a.log.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	if a.metricsServer != nil {
		go func() {
			a.log.Info("metrics server starting", "addr", a.metricsServer.Addr)
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-errCh:
		a.log.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("metrics shutdown failed: %w", err))
		}
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	a.log.Info("server stopped")
	return runErr
}
