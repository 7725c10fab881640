// Package api provides the REST API server for the ethPM registry.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v0 "github.com/ethpm/registry-server/internal/api/v0"
	"github.com/ethpm/registry-server/internal/service"
	"github.com/ethpm/registry-server/internal/telemetry"
)

// ServerOption configures the registry API server.
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration.
type serverConfig struct {
	middlewares []func(http.Handler) http.Handler
	metrics     *telemetry.Metrics
}

// WithMiddlewares adds middleware to the server.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetrics enables operation counters and the HTTP duration histogram,
// and exposes /metrics.
func WithMetrics(m *telemetry.Metrics) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metrics = m
	}
}

// NewServer creates and configures the HTTP router with the given service
// and options.
func NewServer(svc service.RegistryService, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()

	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}
	if cfg.metrics != nil {
		r.Use(cfg.metrics.HTTPMiddleware)
	}

	// Health check routes at root
	r.Mount("/", v0.HealthRouter(svc))

	r.Mount("/api/v0", v0.Router(svc, cfg.metrics))

	if cfg.metrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// LoggingMiddleware logs HTTP requests.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
