// Package handler exposes the third-party registry management endpoints.
// The whole subtree runs behind the admin middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"sftgate/internal/registry/models"
	"sftgate/internal/registry/service"
	dErrors "sftgate/pkg/domain-errors"
	"sftgate/pkg/platform/httputil"
	"sftgate/pkg/platform/validation"
	"sftgate/pkg/requestcontext"
)

// RegistryService is the management surface the handler needs.
type RegistryService interface {
	CreateThirdParty(ctx context.Context, cmd service.CreateCommand) (*models.ThirdParty, error)
	GetThirdParty(ctx context.Context, id string) (*models.ThirdParty, error)
	ListThirdParties(ctx context.Context) ([]*models.ThirdParty, error)
	UpdateThirdParty(ctx context.Context, id string, cmd service.UpdateCommand) (*models.ThirdParty, error)
	RequestDeprovisioning(ctx context.Context, id string) (*models.ThirdParty, error)
}

type Handler struct {
	logger   *slog.Logger
	registry RegistryService
}

func New(registry RegistryService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, registry: registry}
}

// Register mounts the admin registry routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/third-parties", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Post("/{id}/deprovision", h.handleDeprovision)
	})
}

type createRequest struct {
	CompanyName      string `json:"company_name"`
	ContactEmail     string `json:"contact_email"`
	EnableAutomation bool   `json:"enable_automation"`
}

func (req *createRequest) Normalize() {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)
}

func (req *createRequest) Validate() error {
	if req.CompanyName == "" {
		return dErrors.New(dErrors.CodeValidation, "company_name is required")
	}
	if req.ContactEmail == "" {
		return dErrors.New(dErrors.CodeValidation, "contact_email is required")
	}
	if err := validation.CheckStringLength("company_name", req.CompanyName, validation.MaxCompanyNameLength); err != nil {
		return err
	}
	return validation.CheckStringLength("contact_email", req.ContactEmail, validation.MaxEmailLength)
}

type updateRequest struct {
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
}

type thirdPartyResponse struct {
	ID                string    `json:"id"`
	CompanyName       string    `json:"company_name"`
	ContactEmail      string    `json:"contact_email"`
	ContainerName     string    `json:"container_name"`
	AutomationEnabled bool      `json:"automation_enabled"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// toResponse deliberately omits ExternalIdentityRef and CredentialRef; they
// never leave the service boundary.
func toResponse(tp *models.ThirdParty) thirdPartyResponse {
	return thirdPartyResponse{
		ID:                tp.ID,
		CompanyName:       tp.CompanyName,
		ContactEmail:      tp.ContactEmail,
		ContainerName:     tp.ContainerName,
		AutomationEnabled: tp.AutomationEnabled,
		Status:            string(tp.Status),
		CreatedAt:         tp.CreatedAt,
		UpdatedAt:         tp.UpdatedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	tp, err := h.registry.CreateThirdParty(ctx, service.CreateCommand{
		CompanyName:      req.CompanyName,
		ContactEmail:     req.ContactEmail,
		EnableAutomation: req.EnableAutomation,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(tp))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	parties, err := h.registry.ListThirdParties(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]thirdPartyResponse, 0, len(parties))
	for _, tp := range parties {
		out = append(out, toResponse(tp))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"third_parties": out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	tp, err := h.registry.GetThirdParty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(tp))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[updateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	tp, err := h.registry.UpdateThirdParty(ctx, chi.URLParam(r, "id"), service.UpdateCommand{
		CompanyName:  req.CompanyName,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(tp))
}

func (h *Handler) handleDeprovision(w http.ResponseWriter, r *http.Request) {
	tp, err := h.registry.RequestDeprovisioning(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, toResponse(tp))
}
