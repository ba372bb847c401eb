package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sftgate/internal/registry/models"
	regstore "sftgate/internal/registry/store"
	"sftgate/internal/sentinel"
	"sftgate/internal/storage"
	audit "sftgate/pkg/platform/audit"
	"sftgate/pkg/secrets"
)

// defaultPollInterval is how long the worker sleeps on an empty queue.
const defaultPollInterval = 2 * time.Second

// Emitter receives best-effort audit events for tenant lifecycle changes.
type Emitter interface {
	Emit(ctx context.Context, event audit.Event)
}

// Worker drains the provisioning queue: it creates blob containers and
// attaches external identities for new tenants, and tears identities down
// for departing ones.
type Worker struct {
	queue    Queue
	store    regstore.Store
	blobs    storage.BlobStore
	audit    Emitter
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// WorkerOption configures optional worker behavior.
type WorkerOption func(*Worker)

// WithPollInterval overrides how long the worker sleeps between empty polls.
func WithPollInterval(interval time.Duration) WorkerOption {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

// NewWorker assembles a worker. The audit emitter may be nil.
func NewWorker(queue Queue, store regstore.Store, blobs storage.BlobStore, emitter Emitter, logger *slog.Logger, opts ...WorkerOption) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{
		queue:    queue,
		store:    store,
		blobs:    blobs,
		audit:    emitter,
		logger:   logger,
		interval: defaultPollInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls the queue until the context is cancelled. A failed message is
// logged and dropped; the origin record stays in its in-between state for an
// operator to retry.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.drain(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drain processes queued messages until the queue is empty.
func (w *Worker) drain(ctx context.Context) error {
	for {
		msg, ok, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.logger.ErrorContext(ctx, "dequeue failed", "error", err)
			return nil
		}
		if !ok {
			return nil
		}
		if err := w.Process(ctx, msg); err != nil {
			w.logger.ErrorContext(ctx, "provisioning message failed",
				"error", err,
				"action", msg.Action,
				"third_party_id", msg.ThirdPartyID,
			)
		}
	}
}

// Process handles a single message.
func (w *Worker) Process(ctx context.Context, msg Message) error {
	switch msg.Action {
	case ActionProvision:
		return w.provision(ctx, msg)
	case ActionDeprovision:
		return w.deprovision(ctx, msg)
	default:
		w.logger.WarnContext(ctx, "unknown provisioning action dropped", "action", msg.Action)
		return nil
	}
}

func (w *Worker) provision(ctx context.Context, msg Message) error {
	tp, err := w.store.GetByID(ctx, msg.ThirdPartyID)
	if err != nil {
		return err
	}
	if tp.Status != models.StatusProvisioning {
		// Duplicate delivery after a completed run.
		w.logger.InfoContext(ctx, "provision message ignored",
			"third_party_id", tp.ID, "status", tp.Status)
		return nil
	}

	if err := w.blobs.EnsureContainer(ctx, msg.ContainerName); err != nil {
		return err
	}

	var identityRef, credentialRef string
	if msg.AutomationEnabled {
		identityRef = "sp-" + strings.ReplaceAll(uuid.NewString(), "-", "")
		secret, err := secrets.Generate()
		if err != nil {
			return err
		}
		credentialRef, err = secrets.Hash(secret)
		if err != nil {
			return err
		}
	}

	if err := tp.Activate(identityRef, credentialRef, w.now()); err != nil {
		return err
	}
	if err := w.store.Update(ctx, tp); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "third party provisioned",
		"third_party_id", tp.ID,
		"container", tp.ContainerName,
		"automation", msg.AutomationEnabled,
	)
	w.emit(ctx, audit.EventTenantProvisioned, tp)
	return nil
}

func (w *Worker) deprovision(ctx context.Context, msg Message) error {
	tp, err := w.store.GetByID(ctx, msg.ThirdPartyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			w.logger.WarnContext(ctx, "deprovision message for unknown third party dropped",
				"third_party_id", msg.ThirdPartyID)
			return nil
		}
		return err
	}
	if tp.Status != models.StatusDeprovisioning {
		w.logger.InfoContext(ctx, "deprovision message ignored",
			"third_party_id", tp.ID, "status", tp.Status)
		return nil
	}

	// The container and its contents are kept for the retention window;
	// only the identity is torn down here.
	if err := tp.CompleteDeprovision(w.now()); err != nil {
		return err
	}
	if err := w.store.Update(ctx, tp); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "third party deprovisioned",
		"third_party_id", tp.ID,
		"container", tp.ContainerName,
	)
	w.emit(ctx, audit.EventTenantDeprovisioned, tp)
	return nil
}

func (w *Worker) emit(ctx context.Context, action string, tp *models.ThirdParty) {
	if w.audit == nil {
		return
	}
	w.audit.Emit(ctx, audit.Event{
		Timestamp: w.now().UTC(),
		Action:    action,
		Container: tp.ContainerName,
	})
}
