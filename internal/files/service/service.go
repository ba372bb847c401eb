// Package service runs the gated file-exchange pipeline: every operation is
// authorized against the container registry, and every upload passes the
// full admission sequence before its bytes reach storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"sftgate/internal/activity"
	filesmetrics "sftgate/internal/files/metrics"
	"sftgate/internal/files/validation"
	"sftgate/internal/sentinel"
	"sftgate/internal/storage"
	dErrors "sftgate/pkg/domain-errors"
	"sftgate/pkg/requestcontext"
)

// Authorizer decides whether the request's caller may touch a container.
type Authorizer interface {
	Authorize(ctx context.Context, container string) error
}

// Recorder receives best-effort activity records for the tenant feed.
type Recorder interface {
	Record(ctx context.Context, rec activity.Record)
}

// Service is the file-exchange service.
type Service struct {
	store    storage.BlobStore
	guard    Authorizer
	activity Recorder
	opts     validation.Options
	logger   *slog.Logger
	metrics  *filesmetrics.Metrics
	tracer   trace.Tracer
}

// New creates the service. The admission options are fixed at construction.
func New(store storage.BlobStore, guard Authorizer, recorder Recorder, vopts validation.Options, opts ...Option) *Service {
	cfg := serviceConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service{
		store:    store,
		guard:    guard,
		activity: recorder,
		opts:     vopts,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		tracer:   otel.Tracer("sftgate/files"),
	}
}

// UploadCommand carries one upload attempt. Size is the declared content
// length; Content must support seeking so signature probing can restore the
// read position.
type UploadCommand struct {
	Container string
	Directory string
	FileName  string
	Size      int64
	Content   io.ReadSeeker
}

// UploadResult reports where an admitted file landed.
type UploadResult struct {
	StoredName string
	Directory  string
	Size       int64
}

// Upload runs the admission pipeline and stores the file. The checks run in
// a fixed order and the first failure wins: directory tag, container
// authorization, emptiness, declared size, filename sanitization, extension
// allow-list, content signature, then the duplicate-safe write.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (UploadResult, error) {
	ctx, span := s.tracer.Start(ctx, "files.Upload")
	defer span.End()

	if !validation.ValidDirectory(cmd.Directory) {
		return UploadResult{}, s.rejected(validation.Reject(validation.ReasonInvalidDirectory,
			fmt.Sprintf("directory must be %q or %q", validation.DirInbound, validation.DirOutbound)))
	}
	if err := s.guard.Authorize(ctx, cmd.Container); err != nil {
		return UploadResult{}, err
	}
	if cmd.Size == 0 {
		return UploadResult{}, s.rejected(validation.Reject(validation.ReasonEmptyFile, "file is empty"))
	}
	if cmd.Size > s.opts.MaxSizeBytes {
		return UploadResult{}, s.rejected(validation.Reject(validation.ReasonFileTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.opts.MaxSizeBytes)))
	}
	name, ok := validation.SanitizeFileName(cmd.FileName)
	if !ok {
		return UploadResult{}, s.rejected(validation.Reject(validation.ReasonInvalidFilename, "file name is not usable"))
	}
	if !validation.HasAllowedExtension(name, s.opts) {
		return UploadResult{}, s.rejected(validation.Reject(validation.ReasonInvalidFileType,
			fmt.Sprintf("extension %q is not accepted", validation.Extension(name))))
	}
	match, err := validation.CheckSignature(cmd.Content, name, s.opts)
	if err != nil {
		return UploadResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "probing file content")
	}
	if !match {
		return UploadResult{}, s.rejected(validation.Reject(validation.ReasonContentMismatch,
			"file content does not match its extension"))
	}

	info, err := s.store.Put(ctx, cmd.Container, blobPath(cmd.Directory, name), cmd.Content)
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return UploadResult{}, s.rejected(validation.Reject(validation.ReasonFileExists,
				fmt.Sprintf("a file named %q already exists", name)))
		}
		return UploadResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "storing file")
	}

	s.logger.InfoContext(ctx, "file uploaded",
		"container", cmd.Container,
		"directory", cmd.Directory,
		"file", name,
		"size", info.Size,
	)
	if s.metrics != nil {
		s.metrics.IncrementAccepted(info.Size)
	}
	s.record(ctx, activity.ActionUpload, cmd, name, info.Size)

	return UploadResult{StoredName: name, Directory: cmd.Directory, Size: info.Size}, nil
}

// Download streams a stored file. The requested name passes the same
// sanitization as uploads, so files are always addressed by their stored
// names. The caller closes the reader.
func (s *Service) Download(ctx context.Context, container, directory, name string) (io.ReadCloser, storage.BlobInfo, error) {
	ctx, span := s.tracer.Start(ctx, "files.Download")
	defer span.End()

	if !validation.ValidDirectory(directory) {
		return nil, storage.BlobInfo{}, validation.Reject(validation.ReasonInvalidDirectory, "unknown directory")
	}
	if err := s.guard.Authorize(ctx, container); err != nil {
		return nil, storage.BlobInfo{}, err
	}
	name, ok := validation.SanitizeFileName(name)
	if !ok {
		return nil, storage.BlobInfo{}, validation.Reject(validation.ReasonInvalidFilename, "file name is not usable")
	}

	rc, info, err := s.store.Get(ctx, container, blobPath(directory, name))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, storage.BlobInfo{}, dErrors.New(dErrors.CodeNotFound, "file not found")
		}
		return nil, storage.BlobInfo{}, dErrors.Wrap(err, dErrors.CodeInternal, "opening file")
	}

	if s.metrics != nil {
		s.metrics.IncrementDownloads()
	}
	s.record(ctx, activity.ActionDownload, UploadCommand{Container: container, Directory: directory}, name, info.Size)
	return rc, info, nil
}

// Delete removes a stored file.
func (s *Service) Delete(ctx context.Context, container, directory, name string) error {
	ctx, span := s.tracer.Start(ctx, "files.Delete")
	defer span.End()

	if !validation.ValidDirectory(directory) {
		return validation.Reject(validation.ReasonInvalidDirectory, "unknown directory")
	}
	if err := s.guard.Authorize(ctx, container); err != nil {
		return err
	}
	name, ok := validation.SanitizeFileName(name)
	if !ok {
		return validation.Reject(validation.ReasonInvalidFilename, "file name is not usable")
	}

	if err := s.store.Delete(ctx, container, blobPath(directory, name)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "file not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "deleting file")
	}

	s.logger.InfoContext(ctx, "file deleted", "container", container, "directory", directory, "file", name)
	s.record(ctx, activity.ActionDelete, UploadCommand{Container: container, Directory: directory}, name, 0)
	return nil
}

// List enumerates a container directory, sorted by name. Returned entries
// have the directory prefix stripped off.
func (s *Service) List(ctx context.Context, container, directory string) ([]storage.BlobInfo, error) {
	ctx, span := s.tracer.Start(ctx, "files.List")
	defer span.End()

	if !validation.ValidDirectory(directory) {
		return nil, validation.Reject(validation.ReasonInvalidDirectory, "unknown directory")
	}
	if err := s.guard.Authorize(ctx, container); err != nil {
		return nil, err
	}

	infos, err := s.store.ListBlobs(ctx, container, directory+"/")
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "container not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "listing files")
	}
	for i := range infos {
		infos[i].Name = path.Base(infos[i].Name)
	}
	return infos, nil
}

func blobPath(directory, name string) string {
	return directory + "/" + name
}

// rejected counts the rejection and returns the error unchanged.
func (s *Service) rejected(err error) error {
	var vErr *validation.Error
	if errors.As(err, &vErr) && s.metrics != nil {
		s.metrics.IncrementRejected(string(vErr.Reason))
	}
	return err
}

func (s *Service) record(ctx context.Context, action activity.Action, cmd UploadCommand, name string, size int64) {
	if s.activity == nil {
		return
	}
	caller, _ := requestcontext.CallerFrom(ctx)
	s.activity.Record(ctx, activity.Record{
		Container: cmd.Container,
		Action:    action,
		FileName:  name,
		Directory: cmd.Directory,
		UserID:    caller.ID,
		SizeBytes: size,
	})
}
