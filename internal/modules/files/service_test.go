package files

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"modulith/internal/api"
	"modulith/internal/config"
	"modulith/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubDirectory answers ActiveUserExists from a fixed set.
type stubDirectory struct {
	known map[uuid.UUID]bool
}

func (d *stubDirectory) ActiveUserExists(_ context.Context, id uuid.UUID) (bool, error) {
	return d.known[id], nil
}

func setupServiceTest(t *testing.T, known ...uuid.UUID) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec("ATTACH DATABASE ':memory:' AS file_management").Error)
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
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	backend, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	dir := &stubDirectory{known: map[uuid.UUID]bool{}}
	for _, id := range known {
		dir.known[id] = true
	}

	cfg := &config.Config{MaxUploadSize: 1024}
	return NewService(db, NewRepository(db), backend, dir, cfg), db
}

func TestUpload_Validation(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()
	owner := uuid.New()

	tests := []struct {
		name string
		in   UploadInput
	}{
		{"Missing Filename", UploadInput{MimeType: "text/plain", SizeBytes: 3, Content: strings.NewReader("abc")}},
		{"Empty File", UploadInput{OriginalFilename: "a.txt", MimeType: "text/plain", SizeBytes: 0, Content: strings.NewReader("")}},
		{"Too Large", UploadInput{OriginalFilename: "a.txt", MimeType: "text/plain", SizeBytes: 2048, Content: strings.NewReader("x")}},
		{"Disallowed MIME", UploadInput{OriginalFilename: "a.exe", MimeType: "application/x-msdownload", SizeBytes: 3, Content: strings.NewReader("abc")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, owner, tt.in)
			var appErr *api.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, api.CodeValidation, appErr.Code)
		})
	}
}

func TestUpload_StoresBlobAndMetadata(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()
	owner := uuid.New()

	file, err := svc.Upload(ctx, owner, UploadInput{
		OriginalFilename: "notes.txt",
		MimeType:         "text/plain",
		SizeBytes:        5,
		Description:      "my notes",
		Content:          strings.NewReader("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, owner, file.OwnerID)
	assert.Equal(t, int64(5), file.SizeBytes)
	assert.Nil(t, file.Width)

	// Content round-trips through the backend
	got, rc, err := svc.Download(ctx, owner, file.ID)
	require.NoError(t, err)
	defer rc.Close()
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", buf.String())
	assert.Equal(t, int64(1), got.DownloadCount)
}

func TestUpload_ProbesImageDimensions(t *testing.T) {
	svc, _ := setupServiceTest(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 2))))
	size := int64(buf.Len())

	file, err := svc.Upload(context.Background(), uuid.New(), UploadInput{
		OriginalFilename: "pixel.png",
		MimeType:         "image/png",
		SizeBytes:        size,
		Content:          &buf,
	})
	require.NoError(t, err)
	require.NotNil(t, file.Width)
	require.NotNil(t, file.Height)
	assert.Equal(t, 4, *file.Width)
	assert.Equal(t, 2, *file.Height)
}

func TestAccessControl(t *testing.T) {
	owner := uuid.New()
	friend := uuid.New()
	stranger := uuid.New()
	svc, _ := setupServiceTest(t, friend)
	ctx := context.Background()

	private, err := svc.Upload(ctx, owner, UploadInput{
		OriginalFilename: "secret.txt",
		MimeType:         "text/plain",
		SizeBytes:        6,
		Content:          strings.NewReader("secret"),
	})
	require.NoError(t, err)

	// Stranger cannot read a private file
	_, err = svc.Get(ctx, stranger, private.ID)
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeForbidden, appErr.Code)

	// Sharing grants the friend read access
	_, err = svc.Share(ctx, owner, private.ID, friend, false)
	require.NoError(t, err)
	_, err = svc.Get(ctx, friend, private.ID)
	assert.NoError(t, err)

	// Sharing twice conflicts
	_, err = svc.Share(ctx, owner, private.ID, friend, false)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeConflict, appErr.Code)

	// Only the owner can share
	_, err = svc.Share(ctx, friend, private.ID, stranger, false)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeForbidden, appErr.Code)

	// Sharing with an unknown user fails
	_, err = svc.Share(ctx, owner, private.ID, stranger, false)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeNotFound, appErr.Code)
}

func TestUpdateAndDelete_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	file, err := svc.Upload(ctx, owner, UploadInput{
		OriginalFilename: "doc.txt",
		MimeType:         "text/plain",
		SizeBytes:        3,
		Content:          strings.NewReader("abc"),
	})
	require.NoError(t, err)

	desc := "updated"
	public := true
	var appErr *api.AppError

	_, err = svc.Update(ctx, other, file.ID, UpdateFileInput{Description: &desc})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeForbidden, appErr.Code)

	updated, err := svc.Update(ctx, owner, file.ID, UpdateFileInput{Description: &desc, IsPublic: &public})
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)
	assert.True(t, updated.IsPublic)

	// Public files are readable by anyone
	_, err = svc.Get(ctx, other, file.ID)
	assert.NoError(t, err)

	err = svc.Delete(ctx, other, file.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeForbidden, appErr.Code)

	require.NoError(t, svc.Delete(ctx, owner, file.ID))
	_, err = svc.Get(ctx, owner, file.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeNotFound, appErr.Code)
}

func TestList_Filters(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	upload := func(ownerID uuid.UUID, name string, public bool) {
		_, err := svc.Upload(ctx, ownerID, UploadInput{
			OriginalFilename: name,
			MimeType:         "text/plain",
			SizeBytes:        3,
			IsPublic:         public,
			Content:          strings.NewReader("abc"),
		})
		require.NoError(t, err)
	}

	upload(owner, "mine-private.txt", false)
	upload(owner, "mine-public.txt", true)
	upload(other, "theirs-private.txt", false)
	upload(other, "theirs-public.txt", true)

	p := api.Pagination{Page: 1, PageSize: 10}

	list, total, err := svc.List(ctx, owner, true, false, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	_, total, err = svc.List(ctx, owner, false, true, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// Default visibility: own files plus public ones
	_, total, err = svc.List(ctx, owner, false, false, p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, _, err = svc.List(ctx, uuid.Nil, true, false, p)
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeUnauthorized, appErr.Code)
}
