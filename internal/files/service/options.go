package service

import (
	"log/slog"

	filesmetrics "sftgate/internal/files/metrics"
)

type serviceConfig struct {
	logger  *slog.Logger
	metrics *filesmetrics.Metrics
}

// Option configures optional Service collaborators.
type Option func(*serviceConfig)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *filesmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}
