package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPingOrClose_ClosesUnreachablePool(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-dir", "candleshop.db")
	db, err := gorm.Open(sqlite.Open("file:"+missing+"?mode=ro"), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	err = pingOrClose(sqlDB)
	assert.ErrorContains(t, err, "database: ping")
	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}

func TestPingOrClose_KeepsHealthyPool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, pingOrClose(sqlDB))
	assert.NoError(t, sqlDB.Ping())
}
