// Package httptransport assembles the HTTP surface: middleware stack, health
// and metrics endpoints, the file-exchange API, and the admin registry API.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	filehandler "sftgate/internal/files/handler"
	"sftgate/internal/platform/health"
	registryhandler "sftgate/internal/registry/handler"
	"sftgate/pkg/platform/middleware/admin"
	"sftgate/pkg/platform/middleware/auth"
	"sftgate/pkg/platform/middleware/metadata"
	"sftgate/pkg/platform/middleware/request"
)

// Config carries the router's collaborators.
type Config struct {
	Logger         *slog.Logger
	TokenValidator auth.Validator
	Files          *filehandler.Handler
	Registry       *registryhandler.Handler
	Health         *health.Handler
	Metrics        *request.Metrics
	RequestTimeout time.Duration

	// MaxBodyBytes caps request bodies; must leave headroom above the
	// upload size limit for the multipart framing.
	MaxBodyBytes int64
}

// NewRouter wires all endpoints with the middleware stack.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(metadata.NewMiddleware(nil).Handler)
	r.Use(request.Logger(logger))
	r.Use(request.Timeout(timeout))
	r.Use(request.LatencyMiddleware(cfg.Metrics))
	if cfg.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	}

	// Unauthenticated surface.
	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Authenticated API.
	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.TokenValidator, logger))

		cfg.Files.Register(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.RequireAdmin(logger))
			r.Use(request.ContentTypeJSON)
			cfg.Registry.Register(r)
			cfg.Files.RegisterAdmin(r)
		})
	})

	return r
}
