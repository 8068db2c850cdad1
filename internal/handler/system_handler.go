package handler

import (
	"context"
	"net/http"
	"time"

	"entrepreneurhub/internal/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

type SystemHandler struct {
	db  Pinger
	now func() time.Time
}

func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db, now: time.Now}
}

type indexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database"`
}

func (h *SystemHandler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Message: "Welcome to the EntrepreneurHub API",
		Endpoints: map[string]string{
			"auth":           "/api/auth",
			"courses":        "/api/courses",
			"enrollments":    "/api/enrollments",
			"reviews":        "/api/reviews",
			"calendarEvents": "/api/calendar-events",
			"docs":           "/api/docs",
		},
	})
}

func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	database := "connected"
	if err := h.ping(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("database ping failed", "error", err)
		database = "unavailable"
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:   "Server is running",
		Time:     h.now().UTC().Format(time.RFC3339),
		Database: database,
	})
}

func (h *SystemHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *SystemHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.ping(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *SystemHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.Health(ctx)
}
