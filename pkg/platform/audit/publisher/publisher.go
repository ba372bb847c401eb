package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	audit "sftgate/pkg/platform/audit"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. Emission is
// fire-and-forget from the caller's perspective: a full buffer drops the
// event with a log line rather than blocking the request path.
type Publisher struct {
	store  audit.Store
	events chan audit.Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables async processing with the specified buffer size.
// Events are queued and persisted in a background goroutine.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan audit.Event, size)
			p.async = true
		}
	}
}

// WithLogger sets a logger for async error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

// processEvents runs in a goroutine and persists events from the channel.
func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil {
			if p.logger != nil {
				p.logger.Error("failed to persist audit event",
					"error", err,
					"action", event.Action,
					"caller_id", event.CallerID,
				)
			}
		}
	}
}

// Close shuts down the async publisher and waits for pending events to drain.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

// Emit records an event. In async mode the send never blocks: when the buffer
// is full the event is dropped and logged, keeping the audit path from ever
// failing the request it describes.
func (p *Publisher) Emit(ctx context.Context, base audit.Event) {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now().UTC()
	}
	if p.async {
		select {
		case p.events <- base:
		default:
			if p.logger != nil {
				p.logger.Warn("audit buffer full, event dropped",
					"action", base.Action,
					"caller_id", base.CallerID,
				)
			}
		}
		return
	}
	if err := p.store.Append(ctx, base); err != nil && p.logger != nil {
		p.logger.Error("failed to persist audit event",
			"error", err,
			"action", base.Action,
			"caller_id", base.CallerID,
		)
	}
}
