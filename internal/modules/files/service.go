package files

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"time"

	// Register the probe decoders for upload dimension sniffing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"modulith/internal/api"
	"modulith/internal/config"
	"modulith/internal/database"
	"modulith/internal/observability"
	"modulith/internal/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// UserDirectory is the port into user_management the file module needs:
// checking that a share target exists and is active.
type UserDirectory interface {
	ActiveUserExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// UploadInput carries an upload's content and metadata.
type UploadInput struct {
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	Description      string
	IsPublic         bool
	Content          io.Reader
}

// UpdateFileInput is the payload for metadata updates.
type UpdateFileInput struct {
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// Service implements the file_management business rules.
type Service struct {
	db      *gorm.DB
	repo    Repository
	backend storage.Backend
	users   UserDirectory

	maxUploadSize int64
	allowedMime   map[string]bool
}

// NewService wires the service with its dependencies.
func NewService(db *gorm.DB, repo Repository, backend storage.Backend, users UserDirectory, cfg *config.Config) *Service {
	allowed := make(map[string]bool)
	for _, m := range cfg.AllowedMimeList() {
		allowed[strings.ToLower(strings.TrimSpace(m))] = true
	}
	return &Service{
		db:            db,
		repo:          repo,
		backend:       backend,
		users:         users,
		maxUploadSize: cfg.MaxUploadSize,
		allowedMime:   allowed,
	}
}

// Upload validates and stores the blob, probes image dimensions, and persists
// the metadata row. The blob is removed again if the database write fails.
func (s *Service) Upload(ctx context.Context, ownerID uuid.UUID, in UploadInput) (*File, error) {
	span, ctx := observability.NewSpan(ctx, "files.upload")
	defer span.End()

	if in.OriginalFilename == "" {
		return nil, api.NewValidationError("Filename is required")
	}
	if in.SizeBytes <= 0 {
		return nil, api.NewValidationError("File is empty")
	}
	if in.SizeBytes > s.maxUploadSize {
		return nil, api.NewValidationError(
			fmt.Sprintf("File exceeds the maximum upload size of %d bytes", s.maxUploadSize))
	}

	mime := strings.ToLower(strings.TrimSpace(in.MimeType))
	if !s.allowedMime[mime] {
		return nil, api.NewValidationError(fmt.Sprintf("MIME type %q is not allowed", mime))
	}

	data, err := io.ReadAll(io.LimitReader(in.Content, s.maxUploadSize+1))
	if err != nil {
		return nil, api.NewInternalError(err)
	}
	if int64(len(data)) > s.maxUploadSize {
		return nil, api.NewValidationError(
			fmt.Sprintf("File exceeds the maximum upload size of %d bytes", s.maxUploadSize))
	}

	file := &File{
		ID:               uuid.New(),
		OriginalFilename: in.OriginalFilename,
		MimeType:         mime,
		SizeBytes:        int64(len(data)),
		Description:      in.Description,
		IsPublic:         in.IsPublic,
		OwnerID:          ownerID,
	}
	file.Filename = file.ID.String() + strings.ToLower(filepath.Ext(in.OriginalFilename))
	file.StoragePath = storageKey(ownerID, file.Filename)

	if strings.HasPrefix(mime, "image/") {
		if dims, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			w, h := dims.Width, dims.Height
			file.Width, file.Height = &w, &h
		}
	}

	span.AddAttributes(
		attribute.String("file.mime_type", mime),
		attribute.Int64("file.size_bytes", file.SizeBytes),
	)

	if _, err := s.backend.Save(ctx, file.StoragePath, bytes.NewReader(data)); err != nil {
		span.SetError(err)
		return nil, api.NewInternalError(err)
	}

	if err := s.repo.Create(ctx, file); err != nil {
		span.SetError(err)
		if delErr := s.backend.Delete(ctx, file.StoragePath); delErr != nil {
			observability.Logger.Warn("Failed to remove orphaned blob after metadata error",
				"path", file.StoragePath, "error", delErr)
		}
		return nil, err
	}

	observability.FileUploadBytes.Observe(float64(file.SizeBytes))
	return file, nil
}

// storageKey shards blobs per owner and upload date.
func storageKey(ownerID uuid.UUID, filename string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s", ownerID, d.Year(), d.Month(), filename)
}

// Get returns the file if the caller may read it.
func (s *Service) Get(ctx context.Context, callerID, id uuid.UUID) (*File, error) {
	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, callerID, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *Service) authorizeRead(ctx context.Context, callerID uuid.UUID, file *File) error {
	if file.IsPublic || file.OwnerID == callerID {
		return nil
	}
	if callerID == uuid.Nil {
		return api.NewForbiddenError("You do not have access to this file")
	}
	share, err := s.repo.GetShare(ctx, file.ID, callerID)
	if err != nil {
		return err
	}
	if share == nil {
		return api.NewForbiddenError("You do not have access to this file")
	}
	return nil
}

// Update changes description and visibility. Owner only.
func (s *Service) Update(ctx context.Context, callerID, id uuid.UUID, in UpdateFileInput) (*File, error) {
	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != callerID {
		return nil, api.NewForbiddenError("Only the owner can update a file")
	}

	if in.Description != nil {
		file.Description = *in.Description
	}
	if in.IsPublic != nil {
		file.IsPublic = *in.IsPublic
	}
	if err := s.repo.Update(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// Delete soft-deletes the metadata row. The blob stays behind the soft delete
// so a restore remains possible.
func (s *Service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if file.OwnerID != callerID {
		return api.NewForbiddenError("Only the owner can delete a file")
	}
	return s.repo.Delete(ctx, id)
}

// List returns one page of files visible to the caller.
func (s *Service) List(ctx context.Context, callerID uuid.UUID, ownerOnly, publicOnly bool, p api.Pagination) ([]File, int64, error) {
	if ownerOnly && callerID == uuid.Nil {
		return nil, 0, api.NewUnauthorizedError("Authentication required for owner_only listing")
	}
	filter := ListFilter{
		OwnerID:    callerID,
		OwnerOnly:  ownerOnly,
		PublicOnly: publicOnly,
	}
	return s.repo.List(ctx, filter, p.Limit(), p.Offset())
}

// Share grants another user read access. Owner only.
func (s *Service) Share(ctx context.Context, callerID, fileID, targetID uuid.UUID, canWrite bool) (*FileShare, error) {
	file, err := s.repo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != callerID {
		return nil, api.NewForbiddenError("Only the owner can share a file")
	}
	if targetID == callerID {
		return nil, api.NewValidationError("Cannot share a file with its owner")
	}

	exists, err := s.users.ActiveUserExists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, api.NewNotFoundError("User", targetID)
	}

	share := &FileShare{
		FileID:       fileID,
		SharedWithID: targetID,
		CanWrite:     canWrite,
	}
	err = database.WithinTransaction(ctx, s.db, func(tx *gorm.DB) error {
		txRepo := NewRepository(tx)
		existing, err := txRepo.GetShare(ctx, fileID, targetID)
		if err != nil {
			return err
		}
		if existing != nil {
			return api.NewConflictError("File already shared with this user")
		}
		return txRepo.CreateShare(ctx, share)
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

// Download opens the blob for a caller that may read the file and increments
// the download counter.
func (s *Service) Download(ctx context.Context, callerID, id uuid.UUID) (*File, io.ReadCloser, error) {
	span, ctx := observability.NewSpan(ctx, "files.download")
	defer span.End()
	span.AddAttributes(attribute.String("file.id", id.String()))

	file, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorizeRead(ctx, callerID, file); err != nil {
		return nil, nil, err
	}

	rc, err := s.backend.Open(ctx, file.StoragePath)
	if err != nil {
		span.SetError(err)
		return nil, nil, api.NewInternalError(err)
	}

	if err := s.repo.IncrementDownloadCount(ctx, id); err != nil {
		rc.Close()
		return nil, nil, err
	}
	file.DownloadCount++

	visibility := "private"
	if file.IsPublic {
		visibility = "public"
	}
	observability.FileDownloadsTotal.WithLabelValues(visibility).Inc()
	return file, rc, nil
}
