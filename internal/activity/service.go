package activity

import (
	"context"
	"log/slog"
	"time"

	dErrors "sftgate/pkg/domain-errors"
	"sftgate/pkg/requestcontext"
)

// Service sits between the file layer and the activity store.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *Metrics
}

// ServiceOption configures the activity service.
type ServiceOption func(*Service)

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates the activity service.
func NewService(store Store, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record persists an activity entry. Failures are logged and swallowed so
// the file operation that triggered the record is never rolled back by a
// feed outage.
func (s *Service) Record(ctx context.Context, rec Record) {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = requestcontext.Now(ctx)
	}
	if rec.CorrelationID == "" {
		rec.CorrelationID = requestcontext.RequestID(ctx)
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "activity record dropped",
			"error", err,
			"container", rec.Container,
			"action", rec.Action,
			"file", rec.FileName,
		)
		if s.metrics != nil {
			s.metrics.IncrementDropped()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.IncrementAppends(rec.Action)
	}
}

// List returns the newest records for a container, most recent first.
func (s *Service) List(ctx context.Context, container string, limit int) ([]Record, error) {
	recs, err := s.store.ListByContainer(ctx, container, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing container activity")
	}
	return recs, nil
}

// ListAll returns the newest records across every container, most recent
// first. The HTTP layer restricts this to admin callers.
func (s *Service) ListAll(ctx context.Context, limit int) ([]Record, error) {
	recs, err := s.store.ListAll(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing activity")
	}
	return recs, nil
}

// ListSince filters the newest records down to those at or after the cutoff.
func (s *Service) ListSince(ctx context.Context, container string, since time.Time, limit int) ([]Record, error) {
	recs, err := s.List(ctx, container, limit)
	if err != nil {
		return nil, err
	}
	filtered := recs[:0]
	for _, rec := range recs {
		if !rec.OccurredAt.Before(since) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}
