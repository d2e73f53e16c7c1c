package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roster/internal/platform/metrics"
	"roster/internal/platform/middleware"
	"roster/pkg/platform/middleware/metadata"
	"roster/pkg/platform/middleware/requesttime"
)

// Registrar mounts a feature's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Checker is a named dependency probed by /healthz.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterConfig carries what the top-level router needs.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	Checks         []Checker
}

// NewRouter applies the shared middleware chain and mounts the operational
// routes plus every feature registrar.
func NewRouter(cfg RouterConfig, features ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Metrics))

	r.Get("/healthz", healthHandler(cfg.Checks))
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	for _, f := range features {
		f.Register(r)
	}
	return r
}
