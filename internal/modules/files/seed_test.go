package files

import (
	"context"
	"strings"
	"testing"

	"modulith/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeederTest(t *testing.T, owners int) (*Seeder, *gorm.DB, storage.Backend) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("ATTACH DATABASE ':memory:' AS file_management").Error)
	require.NoError(t, db.Exec("ATTACH DATABASE ':memory:' AS user_management").Error)
	for _, ddl := range []string{
		`CREATE TABLE file_management.files (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			original_filename TEXT NOT NULL,
			storage_path TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			width INTEGER,
			height INTEGER,
			description TEXT,
			is_public NUMERIC NOT NULL DEFAULT 0,
			download_count INTEGER NOT NULL DEFAULT 0,
			owner_id TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)`,
		`CREATE TABLE file_management.file_shares (
			id TEXT PRIMARY KEY,
			file_id TEXT NOT NULL,
			shared_with_id TEXT NOT NULL,
			can_write NUMERIC NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME,
			UNIQUE (file_id, shared_with_id)
		)`,
		`CREATE TABLE user_management.users (
			id TEXT PRIMARY KEY,
			deleted_at DATETIME
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	for i := 0; i < owners; i++ {
		require.NoError(t, db.Exec("INSERT INTO user_management.users (id) VALUES (?)", uuid.NewString()).Error)
	}

	backend, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return NewSeeder(db, backend), db, backend
}

func seededFileCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&File{}).
		Where("description LIKE ?", seedDescriptionMarker+"%").
		Count(&n).Error)
	return n
}

func TestFileSeeder_TopsUpToTarget(t *testing.T) {
	s, db, backend := setupSeederTest(t, 2)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, 4))
	assert.Equal(t, int64(4), seededFileCount(t, db))

	require.NoError(t, s.Seed(ctx, 4))
	assert.Equal(t, int64(4), seededFileCount(t, db))

	// Every seeded row has a readable blob behind it.
	var seeded []File
	require.NoError(t, db.Find(&seeded).Error)
	for _, f := range seeded {
		r, err := backend.Open(ctx, f.StoragePath)
		require.NoError(t, err)
		r.Close()
	}
}

func TestFileSeeder_RequiresUsers(t *testing.T) {
	s, _, _ := setupSeederTest(t, 0)

	err := s.Seed(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed user_management first")
}

func TestFileSeeder_CleanSparesRealFiles(t *testing.T) {
	s, db, backend := setupSeederTest(t, 1)
	ctx := context.Background()

	owner := uuid.New()
	real := &File{
		OriginalFilename: "report.txt",
		Filename:         "report.txt",
		StoragePath:      storageKey(owner, "report.txt"),
		MimeType:         "text/plain",
		SizeBytes:        4,
		OwnerID:          owner,
	}
	_, err := backend.Save(ctx, real.StoragePath, strings.NewReader("real"))
	require.NoError(t, err)
	require.NoError(t, db.Create(real).Error)

	require.NoError(t, s.Seed(ctx, 3))
	require.NoError(t, s.Clean(ctx))

	assert.Equal(t, int64(0), seededFileCount(t, db))

	var total int64
	require.NoError(t, db.Model(&File{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)

	r, err := backend.Open(ctx, real.StoragePath)
	require.NoError(t, err)
	r.Close()
}
