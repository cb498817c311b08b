package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"candleshop/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, config.StoreSQL, cfg.StoreDriver)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, config.BlobLocal, cfg.BlobDriver)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SEED_DATA", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.SeedData)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candleshop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT: \":9090\"\nDB_DRIVER: postgres\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsBadDrivers(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	_, err := config.Load("")
	assert.ErrorContains(t, err, "STORE_DRIVER")

	t.Setenv("STORE_DRIVER", "sql")
	t.Setenv("BLOB_DRIVER", "s3")
	_, err = config.Load("")
	assert.ErrorContains(t, err, "S3_BUCKET")
}
