package users

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

// Repository defines persistence operations for users.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, int64, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetDeletedByID(ctx context.Context, id uuid.UUID) (*User, error)
	Restore(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns the GORM-backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		done := observability.TrackQuery("select", "users")
		defer done()

		if err := r.db.WithContext(ctx).Preload("Profile").First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return api.NewNotFoundError("User", id)
			}
			return api.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	done := observability.TrackQuery("select", "users")
	defer done()

	if err := r.db.WithContext(ctx).Preload("Profile").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, api.NewInternalError(err)
	}
	return &user, nil
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	done := observability.TrackQuery("select", "users")
	defer done()

	if err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, api.NewInternalError(err)
	}
	return &user, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]User, int64, error) {
	done := observability.TrackQuery("select", "users")
	defer done()

	var total int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return nil, 0, api.NewInternalError(err)
	}

	var list []User
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, api.NewInternalError(err)
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, user *User) error {
	done := observability.TrackQuery("insert", "users")
	defer done()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return api.NewConflictError("A user with this email or username already exists")
		}
		return api.NewInternalError(err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	done := observability.TrackQuery("update", "users")
	defer done()

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return api.NewConflictError("A user with this email or username already exists")
		}
		return api.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	done := observability.TrackQuery("delete", "users")
	defer done()

	res := r.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if res.Error != nil {
		return api.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return api.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// GetDeletedByID looks up a soft-deleted user. Live users are not returned.
func (r *repository) GetDeletedByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	done := observability.TrackQuery("select", "users")
	defer done()

	if err := r.db.WithContext(ctx).Unscoped().
		Where("id = ? AND deleted_at IS NOT NULL", id).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, api.NewNotFoundError("User", id)
		}
		return nil, api.NewInternalError(err)
	}
	return &user, nil
}

func (r *repository) Restore(ctx context.Context, id uuid.UUID) error {
	done := observability.TrackQuery("update", "users")
	defer done()

	res := r.db.WithContext(ctx).Unscoped().
		Model(&User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return api.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return api.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
