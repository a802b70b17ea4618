package files

import (
	"context"
	"fmt"
	"strings"

	"modulith/internal/observability"
	"modulith/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const seedDescriptionMarker = "[seed]"

// Seeder generates fake files for development databases. Generated blobs are
// small text payloads written through the real storage backend.
type Seeder struct {
	db      *gorm.DB
	backend storage.Backend
}

// NewSeeder returns the file_management seeder.
func NewSeeder(db *gorm.DB, backend storage.Backend) *Seeder {
	return &Seeder{db: db, backend: backend}
}

// Name is the module key used by the seed CLI.
func (s *Seeder) Name() string { return ModuleName }

// Clean removes seeded rows, identified by the description marker.
func (s *Seeder) Clean(ctx context.Context) error {
	var seeded []File
	if err := s.db.WithContext(ctx).Unscoped().
		Where("description LIKE ?", seedDescriptionMarker+"%").
		Find(&seeded).Error; err != nil {
		return fmt.Errorf("failed to find seeded files: %w", err)
	}

	for _, f := range seeded {
		if err := s.backend.Delete(ctx, f.StoragePath); err != nil {
			observability.Logger.Warn("Failed to delete seeded blob", "path", f.StoragePath, "error", err)
		}
	}

	if err := s.db.WithContext(ctx).
		Exec("DELETE FROM file_management.file_shares WHERE file_id IN (SELECT id FROM file_management.files WHERE description LIKE ?)", seedDescriptionMarker+"%").Error; err != nil {
		return fmt.Errorf("failed to clean seeded shares: %w", err)
	}
	if err := s.db.WithContext(ctx).Unscoped().
		Where("description LIKE ?", seedDescriptionMarker+"%").
		Delete(&File{}).Error; err != nil {
		return fmt.Errorf("failed to clean seeded files: %w", err)
	}
	return nil
}

// Seed inserts count files owned by random existing users, topping up to the
// target so reruns are idempotent. Users must be seeded first.
func (s *Seeder) Seed(ctx context.Context, count int) error {
	var ownerIDs []uuid.UUID
	if err := s.db.WithContext(ctx).
		Table("user_management.users").
		Where("deleted_at IS NULL").
		Limit(100).
		Pluck("id", &ownerIDs).Error; err != nil {
		return fmt.Errorf("failed to load owners for file seed: %w", err)
	}
	if len(ownerIDs) == 0 {
		return fmt.Errorf("no users available; seed user_management first")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&File{}).
		Where("description LIKE ?", seedDescriptionMarker+"%").
		Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count seeded files: %w", err)
	}

	missing := count - int(existing)
	if missing <= 0 {
		observability.Logger.Info("File seed already satisfied", "existing", existing, "target", count)
		return nil
	}

	for i := 0; i < missing; i++ {
		owner := ownerIDs[gofakeit.Number(0, len(ownerIDs)-1)]
		content := gofakeit.Paragraph(2, 4, 8, "\n")

		file := &File{
			ID:               uuid.New(),
			OriginalFilename: gofakeit.Word() + ".txt",
			MimeType:         "text/plain",
			SizeBytes:        int64(len(content)),
			Description:      seedDescriptionMarker + " " + gofakeit.Sentence(6),
			IsPublic:         gofakeit.Bool(),
			OwnerID:          owner,
		}
		file.Filename = file.ID.String() + ".txt"
		file.StoragePath = storageKey(owner, file.Filename)

		if _, err := s.backend.Save(ctx, file.StoragePath, strings.NewReader(content)); err != nil {
			return fmt.Errorf("failed to write seed blob: %w", err)
		}
		if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
			return fmt.Errorf("failed to seed file: %w", err)
		}
		observability.SeededRecordsTotal.WithLabelValues("file_management").Inc()
	}

	observability.Logger.Info("Seeded files", "created", missing, "target", count)
	return nil
}
