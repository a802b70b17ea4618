// Package users is the user_management bounded context: accounts, profiles,
// and their lifecycle (activation, soft deletion, restore).
package users

import (
	"time"

	"modulith/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the user_management module.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"size:255;uniqueIndex:idx_users_email;not null" json:"email"`
	Username  string         `gorm:"size:100;uniqueIndex:idx_users_username;not null" json:"username"`
	FirstName string         `gorm:"size:100;not null" json:"first_name"`
	LastName  string         `gorm:"size:100;not null" json:"last_name"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	IsActive  bool           `gorm:"not null;default:true;index" json:"is_active"`
	Profile   *UserProfile   `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName places users in the module's schema.
func (User) TableName() string {
	return "user_management.users"
}

// BeforeCreate assigns a UUID primary key if the caller did not.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns the display name for the user.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserProfile carries optional per-user profile data, one row per user.
type UserProfile struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Phone     string         `gorm:"size:20" json:"phone,omitempty"`
	AvatarURL string         `gorm:"size:500" json:"avatar_url,omitempty"`
	Bio       string         `gorm:"size:1000" json:"bio,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_management.user_profiles"
}

func (p *UserProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ModuleName is the bounded-context name used for registration and gating.
const ModuleName = "user_management"

func init() {
	database.RegisterModule(database.Module{
		Name:   ModuleName,
		Schema: ModuleName,
		Models: []interface{}{&User{}, &UserProfile{}},
	})
}
