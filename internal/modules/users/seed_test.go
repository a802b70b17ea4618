package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededUserCount(t *testing.T, s *Seeder) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&User{}).
		Where("email LIKE ?", "%@seed.modulith.dev").
		Count(&n).Error)
	return n
}

func TestSeeder_TopsUpToTarget(t *testing.T) {
	_, db := setupTestApp(t)
	s := NewSeeder(db)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, 5))
	assert.Equal(t, int64(5), seededUserCount(t, s))

	// Rerunning against a satisfied target creates nothing.
	require.NoError(t, s.Seed(ctx, 5))
	assert.Equal(t, int64(5), seededUserCount(t, s))

	// A lower target never deletes existing rows.
	require.NoError(t, s.Seed(ctx, 3))
	assert.Equal(t, int64(5), seededUserCount(t, s))

	var profiles int64
	require.NoError(t, db.Table("user_management.user_profiles").Count(&profiles).Error)
	assert.Equal(t, int64(5), profiles)
}

func TestSeeder_CleanSparesRealUsers(t *testing.T) {
	_, db := setupTestApp(t)
	s := NewSeeder(db)
	ctx := context.Background()

	real := &User{Email: "real@example.com", Username: "real_user", Password: "x", IsActive: true}
	require.NoError(t, db.Create(real).Error)

	require.NoError(t, s.Seed(ctx, 4))
	require.NoError(t, s.Clean(ctx))

	assert.Equal(t, int64(0), seededUserCount(t, s))

	var total int64
	require.NoError(t, db.Model(&User{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)

	var profiles int64
	require.NoError(t, db.Table("user_management.user_profiles").Count(&profiles).Error)
	assert.Equal(t, int64(0), profiles)
}
