// Package service orchestrates third-party onboarding and answers container
// access questions against the registry.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"sftgate/internal/provisioning"
	registrymetrics "sftgate/internal/registry/metrics"
	"sftgate/internal/registry/models"
	"sftgate/internal/registry/store"
	"sftgate/internal/sentinel"
	dErrors "sftgate/pkg/domain-errors"
	"sftgate/pkg/requestcontext"
)

// Service manages the third-party registry: onboarding, admin edits,
// deprovisioning requests, and access decisions.
type Service struct {
	store           store.Store
	queue           provisioning.Queue
	containerPrefix string
	logger          *slog.Logger
	metrics         *registrymetrics.Metrics
}

// New creates a registry service. containerPrefix is prepended to every
// derived container name (e.g. "sft-").
func New(st store.Store, queue provisioning.Queue, containerPrefix string, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:           st,
		queue:           queue,
		containerPrefix: containerPrefix,
		logger:          logger,
		metrics:         cfg.metrics,
	}
}

// CreateCommand carries the admin onboarding request.
type CreateCommand struct {
	CompanyName      string
	ContactEmail     string
	EnableAutomation bool
}

// CreateThirdParty registers a new third party in provisioning state and
// enqueues the provisioning work item. The container name is derived from the
// company name and must be unique among records that are not inactive.
func (s *Service) CreateThirdParty(ctx context.Context, cmd CreateCommand) (*models.ThirdParty, error) {
	companyName := strings.TrimSpace(cmd.CompanyName)
	contactEmail := strings.TrimSpace(cmd.ContactEmail)
	if companyName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "company name is required")
	}
	if contactEmail == "" || !strings.Contains(contactEmail, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid contact email is required")
	}

	containerName := models.DeriveContainerName(s.containerPrefix, companyName)
	if containerName == s.containerPrefix {
		return nil, dErrors.New(dErrors.CodeValidation, "company name yields an empty container name")
	}

	existing, err := s.store.FindByContainer(ctx, containerName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
	}
	for _, tp := range existing {
		if tp.Status != models.StatusInactive {
			return nil, dErrors.New(dErrors.CodeConflict, "container name already in use")
		}
	}

	now := requestcontext.Now(ctx).UTC()
	tp := &models.ThirdParty{
		ID:                "tp-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		CompanyName:       companyName,
		ContactEmail:      contactEmail,
		ContainerName:     containerName,
		AutomationEnabled: cmd.EnableAutomation,
		Status:            models.StatusProvisioning,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Insert(ctx, tp); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "third party already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create third party")
	}

	if err := s.queue.Enqueue(ctx, provisioning.Message{
		Action:            provisioning.ActionProvision,
		ThirdPartyID:      tp.ID,
		ContainerName:     tp.ContainerName,
		AutomationEnabled: tp.AutomationEnabled,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to enqueue provisioning request",
			"error", err,
			"third_party_id", tp.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue provisioning request")
	}

	s.logger.InfoContext(ctx, "provisioning requested",
		"third_party_id", tp.ID,
		"container", tp.ContainerName,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementThirdPartiesCreated()
	}
	return tp, nil
}

// GetThirdParty fetches a single record by ID.
func (s *Service) GetThirdParty(ctx context.Context, id string) (*models.ThirdParty, error) {
	tp, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "third party not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
	}
	return tp, nil
}

// ListThirdParties returns every record, including inactive ones; records are
// retained for audit after deprovisioning.
func (s *Service) ListThirdParties(ctx context.Context) ([]*models.ThirdParty, error) {
	parties, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
	}
	return parties, nil
}

// UpdateCommand carries admin-editable fields. The container name is derived
// once at creation and never changes, even when the company name does.
type UpdateCommand struct {
	CompanyName  string
	ContactEmail string
}

// UpdateThirdParty applies admin edits to the mutable contact fields.
func (s *Service) UpdateThirdParty(ctx context.Context, id string, cmd UpdateCommand) (*models.ThirdParty, error) {
	tp, err := s.GetThirdParty(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(cmd.CompanyName); name != "" {
		tp.CompanyName = name
	}
	if email := strings.TrimSpace(cmd.ContactEmail); email != "" {
		if !strings.Contains(email, "@") {
			return nil, dErrors.New(dErrors.CodeValidation, "a valid contact email is required")
		}
		tp.ContactEmail = email
	}
	tp.UpdatedAt = requestcontext.Now(ctx).UTC()

	if err := s.store.Update(ctx, tp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update third party")
	}
	return tp, nil
}

// RequestDeprovisioning moves an active third party into deprovisioning and
// enqueues the teardown work item. Requesting deprovision of a record that is
// not active is a no-op; the current record is returned unchanged.
func (s *Service) RequestDeprovisioning(ctx context.Context, id string) (*models.ThirdParty, error) {
	tp, err := s.GetThirdParty(ctx, id)
	if err != nil {
		return nil, err
	}

	if !tp.RequestDeprovision(requestcontext.Now(ctx).UTC()) {
		return tp, nil
	}

	if err := s.store.Update(ctx, tp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update third party")
	}
	if err := s.queue.Enqueue(ctx, provisioning.Message{
		Action:        provisioning.ActionDeprovision,
		ThirdPartyID:  tp.ID,
		ContainerName: tp.ContainerName,
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue deprovisioning request")
	}

	s.logger.InfoContext(ctx, "deprovisioning requested",
		"third_party_id", tp.ID,
		"container", tp.ContainerName,
		"request_id", requestcontext.RequestID(ctx),
	)
	return tp, nil
}
