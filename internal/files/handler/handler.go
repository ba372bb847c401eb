// Package handler exposes the file-exchange endpoints. It is a thin layer:
// admission and authorization decisions live in the file service, and the
// handler only translates them to the wire.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sftgate/internal/activity"
	"sftgate/internal/files/service"
	"sftgate/internal/files/validation"
	"sftgate/internal/storage"
	"sftgate/pkg/platform/httputil"
	"sftgate/pkg/requestcontext"
)

// maxUploadMemory bounds how much of a multipart upload is buffered in
// memory before spilling to a temp file.
const maxUploadMemory = 8 << 20

// FileService is the file-exchange surface the handler needs.
type FileService interface {
	Upload(ctx context.Context, cmd service.UploadCommand) (service.UploadResult, error)
	Download(ctx context.Context, container, directory, name string) (io.ReadCloser, storage.BlobInfo, error)
	Delete(ctx context.Context, container, directory, name string) error
	List(ctx context.Context, container, directory string) ([]storage.BlobInfo, error)
}

// Authorizer decides whether the request's caller may touch a container.
type Authorizer interface {
	Authorize(ctx context.Context, container string) error
}

// ActivityService lists the activity feeds.
type ActivityService interface {
	List(ctx context.Context, container string, limit int) ([]activity.Record, error)
	ListSince(ctx context.Context, container string, since time.Time, limit int) ([]activity.Record, error)
	ListAll(ctx context.Context, limit int) ([]activity.Record, error)
}

// ContainerLister resolves which containers the caller may see.
type ContainerLister interface {
	AccessibleContainers(ctx context.Context, callerID string, isAdmin, isOrgUser bool) ([]string, error)
}

type Handler struct {
	logger     *slog.Logger
	files      FileService
	guard      Authorizer
	activity   ActivityService
	containers ContainerLister
}

func New(files FileService, guard Authorizer, activitySvc ActivityService, containers ContainerLister, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		files:      files,
		guard:      guard,
		activity:   activitySvc,
		containers: containers,
	}
}

// Register mounts the file-exchange routes. The caller wires authentication
// middleware around this subtree.
func (h *Handler) Register(r chi.Router) {
	r.Get("/containers", h.handleListContainers)
	r.Route("/containers/{container}", func(r chi.Router) {
		r.Get("/activity", h.handleActivity)
		r.Route("/files/{directory}", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleUpload)
			r.Get("/{name}", h.handleDownload)
			r.Delete("/{name}", h.handleDelete)
		})
	})
}

// RegisterAdmin mounts the cross-container activity feed. The caller wires
// the admin role middleware around this subtree.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/activity", h.handleAllActivity)
}

type fileResponse struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
	Tier       string    `json:"tier,omitempty"`
}

type uploadResponse struct {
	FileName  string `json:"file_name"`
	Directory string `json:"directory"`
	Size      int64  `json:"size"`
}

type activityResponse struct {
	Action        string    `json:"action"`
	FileName      string    `json:"file_name"`
	Directory     string    `json:"directory"`
	UserID        string    `json:"user_id,omitempty"`
	SizeBytes     int64     `json:"size_bytes"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	container := chi.URLParam(r, "container")
	directory := chi.URLParam(r, "directory")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "bad_request",
			"error_description": "expected a multipart upload with a file field",
		})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "bad_request",
			"error_description": "missing file field",
		})
		return
	}
	defer file.Close()

	res, err := h.files.Upload(ctx, service.UploadCommand{
		Container: container,
		Directory: directory,
		FileName:  header.Filename,
		Size:      header.Size,
		Content:   file,
	})
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, uploadResponse{
		FileName:  res.StoredName,
		Directory: res.Directory,
		Size:      res.Size,
	})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc, info, err := h.files.Download(ctx,
		chi.URLParam(r, "container"),
		chi.URLParam(r, "directory"),
		chi.URLParam(r, "name"),
	)
	if err != nil {
		h.writeFileError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+info.Name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(ctx, "download aborted",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.files.Delete(r.Context(),
		chi.URLParam(r, "container"),
		chi.URLParam(r, "directory"),
		chi.URLParam(r, "name"),
	)
	if err != nil {
		h.writeFileError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := h.files.List(r.Context(),
		chi.URLParam(r, "container"),
		chi.URLParam(r, "directory"),
	)
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	out := make([]fileResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, fileResponse{
			Name:       info.Name,
			Size:       info.Size,
			ModifiedAt: info.ModifiedAt,
			Tier:       info.Tier,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"files": out})
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	container := chi.URLParam(r, "container")

	if err := h.guard.Authorize(ctx, container); err != nil {
		h.writeFileError(w, err)
		return
	}

	limit, ok := activityLimit(w, r)
	if !ok {
		return
	}

	var recs []activity.Record
	var err error
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, parseErr := time.Parse(time.RFC3339, raw)
		if parseErr != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "bad_request",
				"error_description": "since must be an RFC 3339 timestamp",
			})
			return
		}
		recs, err = h.activity.ListSince(ctx, container, since, limit)
	} else {
		recs, err = h.activity.List(ctx, container, limit)
	}
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"activity": toActivityResponses(recs)})
}

// handleAllActivity serves the cross-container feed on the admin subtree.
func (h *Handler) handleAllActivity(w http.ResponseWriter, r *http.Request) {
	limit, ok := activityLimit(w, r)
	if !ok {
		return
	}

	recs, err := h.activity.ListAll(r.Context(), limit)
	if err != nil {
		h.writeFileError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"activity": toActivityResponses(recs)})
}

// activityLimit parses the limit parameter, writing the rejection itself
// when the value is out of range.
func activityLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "bad_request",
				"error_description": "limit must be between 1 and 1000",
			})
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

func toActivityResponses(recs []activity.Record) []activityResponse {
	out := make([]activityResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, activityResponse{
			Action:        string(rec.Action),
			FileName:      rec.FileName,
			Directory:     rec.Directory,
			UserID:        rec.UserID,
			SizeBytes:     rec.SizeBytes,
			CorrelationID: rec.CorrelationID,
			OccurredAt:    rec.OccurredAt,
		})
	}
	return out
}

func (h *Handler) handleListContainers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := requestcontext.CallerFrom(ctx)

	names, err := h.containers.AccessibleContainers(ctx, caller.ID, caller.Admin, caller.OrgUser)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"containers": names})
}

// writeFileError maps admission rejections to their wire contract and defers
// everything else to the shared domain error translation.
func (h *Handler) writeFileError(w http.ResponseWriter, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		httputil.WriteJSON(w, rejectionStatus(vErr.Reason), map[string]string{
			"error":             string(vErr.Reason),
			"error_description": vErr.Message,
		})
		return
	}
	httputil.WriteError(w, err)
}

// rejectionStatus maps admission reason codes to HTTP status codes. The
// reason string itself is the stable contract; the status is advisory.
func rejectionStatus(reason validation.Reason) int {
	switch reason {
	case validation.ReasonFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case validation.ReasonFileExists:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
