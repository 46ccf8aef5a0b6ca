package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bookwell/scheduler/internal/observability/metrics"
	redisclient "github.com/bookwell/scheduler/internal/redis"
	"github.com/bookwell/scheduler/internal/store"
)

type RouterConfig struct {
	Repo    store.Repository
	Locker  redisclient.Locker
	Metrics *metrics.SchedulingMetrics
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Logger  *zap.Logger
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	deps := handlerDeps{
		repo:    cfg.Repo,
		locker:  cfg.Locker,
		metrics: cfg.Metrics,
		logger:  logger,
	}

	// Provider schedule endpoints
	r.Get("/schedule", listWindowsHandler(deps))
	r.Post("/schedule", createWindowHandler(deps))
	r.Delete("/schedule/{id}", deleteWindowHandler(deps))

	// Appointment endpoints
	r.Get("/appointments", listAppointmentsHandler(deps))
	r.Post("/appointments", createAppointmentHandler(deps))
	r.Delete("/appointments/{id}", deleteAppointmentHandler(deps))

	return r
}
