package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrations_LoadedInOrder(t *testing.T) {
	migs := GetMigrations()
	require.NotEmpty(t, migs, "embedded migrations should be registered at init")

	for i := 1; i < len(migs); i++ {
		assert.Less(t, migs[i-1].Version, migs[i].Version)
	}

	first := migs[0]
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "user_management", first.Name)
	assert.Contains(t, first.UpScript, "CREATE SCHEMA IF NOT EXISTS user_management")
	assert.Contains(t, first.DownScript, "DROP SCHEMA IF EXISTS user_management")
}

func TestGetMigrationByVersion(t *testing.T) {
	m := GetMigrationByVersion(2)
	require.NotNil(t, m)
	assert.Equal(t, "file_management", m.Name)
	assert.Equal(t, "000002_file_management", m.String())

	assert.Nil(t, GetMigrationByVersion(999999))
}
