package users

import (
	"context"
	"fmt"

	"modulith/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedPassword is the shared password for generated dev accounts.
const seedPassword = "SeedPassword12!"

// Seeder generates fake users and profiles for development databases.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder returns the user_management seeder.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Name is the module key used by the seed CLI.
func (s *Seeder) Name() string { return ModuleName }

// Clean removes seeded rows. Only rows with the seed marker email domain are
// touched so real data survives repeated runs.
func (s *Seeder) Clean(ctx context.Context) error {
	if err := s.db.WithContext(ctx).
		Exec("DELETE FROM user_management.user_profiles WHERE user_id IN (SELECT id FROM user_management.users WHERE email LIKE ?)", "%@seed.modulith.dev").Error; err != nil {
		return fmt.Errorf("failed to clean seeded profiles: %w", err)
	}
	if err := s.db.WithContext(ctx).Unscoped().
		Where("email LIKE ?", "%@seed.modulith.dev").
		Delete(&User{}).Error; err != nil {
		return fmt.Errorf("failed to clean seeded users: %w", err)
	}
	return nil
}

// Seed inserts count users, topping up to the target so reruns are idempotent.
func (s *Seeder) Seed(ctx context.Context, count int) error {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("email LIKE ?", "%@seed.modulith.dev").
		Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count seeded users: %w", err)
	}

	missing := count - int(existing)
	if missing <= 0 {
		observability.Logger.Info("User seed already satisfied", "existing", existing, "target", count)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}

	for i := 0; i < missing; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999))
		user := &User{
			Email:     fmt.Sprintf("%s@seed.modulith.dev", username),
			Username:  username,
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Password:  string(hashed),
			IsActive:  gofakeit.Number(0, 9) > 0, // roughly 10% inactive
			Profile: &UserProfile{
				Phone:     gofakeit.Phone(),
				AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
				Bio:       gofakeit.Sentence(10),
			},
		}
		if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", username, err)
		}
		observability.SeededRecordsTotal.WithLabelValues("user_management").Inc()
	}

	observability.Logger.Info("Seeded users", "created", missing, "target", count)
	return nil
}
