package files

import (
	"context"
	"errors"
	"strings"

	"modulith/internal/api"
	"modulith/internal/cache"
	"modulith/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows List results.
type ListFilter struct {
	// OwnerID scopes visibility: a zero UUID means anonymous (public only).
	OwnerID    uuid.UUID
	OwnerOnly  bool
	PublicOnly bool
}

// Repository defines persistence operations for files and shares.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*File, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]File, int64, error)
	Create(ctx context.Context, file *File) error
	Update(ctx context.Context, file *File) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) error
	GetShare(ctx context.Context, fileID, userID uuid.UUID) (*FileShare, error)
	CreateShare(ctx context.Context, share *FileShare) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns the GORM-backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*File, error) {
	var file File
	key := cache.FileKey(id)

	err := cache.Aside(ctx, key, &file, cache.FileTTL, func() error {
		done := observability.TrackQuery("select", "files")
		defer done()

		if err := r.db.WithContext(ctx).Preload("Shares").First(&file, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.NewNotFoundError("File", id)
			}
			return api.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]File, int64, error) {
	done := observability.TrackQuery("select", "files")
	defer done()

	q := r.db.WithContext(ctx).Model(&File{})

	switch {
	case filter.PublicOnly:
		q = q.Where("is_public = ?", true)
	case filter.OwnerOnly:
		q = q.Where("owner_id = ?", filter.OwnerID)
	case filter.OwnerID != uuid.Nil:
		// Everything the caller may see: own files, public files, and
		// files shared with them.
		q = q.Where(
			"owner_id = ? OR is_public = ? OR id IN (?)",
			filter.OwnerID, true,
			r.db.Model(&FileShare{}).Select("file_id").Where("shared_with_id = ?", filter.OwnerID),
		)
	default:
		q = q.Where("is_public = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, api.NewInternalError(err)
	}

	var list []File
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, api.NewInternalError(err)
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, file *File) error {
	done := observability.TrackQuery("insert", "files")
	defer done()

	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return api.NewInternalError(err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, file *File) error {
	done := observability.TrackQuery("update", "files")
	defer done()

	if err := r.db.WithContext(ctx).Save(file).Error; err != nil {
		return api.NewInternalError(err)
	}
	cache.InvalidateFile(ctx, file.ID)
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	done := observability.TrackQuery("delete", "files")
	defer done()

	res := r.db.WithContext(ctx).Delete(&File{}, "id = ?", id)
	if res.Error != nil {
		return api.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return api.NewNotFoundError("File", id)
	}
	cache.InvalidateFile(ctx, id)
	return nil
}

// IncrementDownloadCount bumps the counter atomically in the database.
func (r *repository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	done := observability.TrackQuery("update", "files")
	defer done()

	if err := r.db.WithContext(ctx).Model(&File{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error; err != nil {
		return api.NewInternalError(err)
	}
	cache.InvalidateFile(ctx, id)
	return nil
}

func (r *repository) GetShare(ctx context.Context, fileID, userID uuid.UUID) (*FileShare, error) {
	var share FileShare
	done := observability.TrackQuery("select", "file_shares")
	defer done()

	if err := r.db.WithContext(ctx).
		Where("file_id = ? AND shared_with_id = ?", fileID, userID).
		First(&share).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, api.NewInternalError(err)
	}
	return &share, nil
}

func (r *repository) CreateShare(ctx context.Context, share *FileShare) error {
	done := observability.TrackQuery("insert", "file_shares")
	defer done()

	if err := r.db.WithContext(ctx).Create(share).Error; err != nil {
		if isDuplicateShare(err) {
			return api.NewConflictError("File already shared with this user")
		}
		return api.NewInternalError(err)
	}
	cache.InvalidateFile(ctx, share.FileID)
	return nil
}

func isDuplicateShare(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
