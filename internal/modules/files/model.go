// Package files is the file_management bounded context: upload, metadata,
// sharing, and download of user-owned files.
package files

import (
	"time"

	"modulith/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is the metadata row for a stored blob.
type File struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Filename         string         `gorm:"size:255;not null" json:"filename"`
	OriginalFilename string         `gorm:"size:255;not null" json:"original_filename"`
	StoragePath      string         `gorm:"size:500;not null" json:"-"`
	MimeType         string         `gorm:"size:100;not null" json:"mime_type"`
	SizeBytes        int64          `gorm:"not null;default:0" json:"size_bytes"`
	Width            *int           `json:"width,omitempty"`
	Height           *int           `json:"height,omitempty"`
	Description      string         `gorm:"size:1000" json:"description,omitempty"`
	IsPublic         bool           `gorm:"not null;default:false;index" json:"is_public"`
	DownloadCount    int64          `gorm:"not null;default:0" json:"download_count"`
	OwnerID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Shares           []FileShare    `gorm:"foreignKey:FileID" json:"shares,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (File) TableName() string {
	return "file_management.files"
}

func (f *File) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// IsImage reports whether the file's MIME type is an image type.
func (f *File) IsImage() bool {
	return len(f.MimeType) > 6 && f.MimeType[:6] == "image/"
}

// FileShare grants another user read access to a file.
type FileShare struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FileID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"file_id"`
	SharedWithID uuid.UUID      `gorm:"type:uuid;not null;index" json:"shared_with_id"`
	CanWrite     bool           `gorm:"not null;default:false" json:"can_write"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FileShare) TableName() string {
	return "file_management.file_shares"
}

func (s *FileShare) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ModuleName is the bounded-context name used for registration and gating.
const ModuleName = "file_management"

func init() {
	database.RegisterModule(database.Module{
		Name:   ModuleName,
		Schema: ModuleName,
		Models: []interface{}{&File{}, &FileShare{}},
	})
}
