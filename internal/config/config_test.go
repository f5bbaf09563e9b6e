package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 4, cfg.CartWorkers)
	assert.Equal(t, 10*time.Second, cfg.CatalogQueryTimeout)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CATALOG_QUERY_TIMEOUT", "3s")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example, https://admin.example ,")
	t.Setenv("STORAGE_BUCKET", "images")
	t.Setenv("STORAGE_ACCESS_KEY", "key")
	t.Setenv("STORAGE_SECRET_KEY", "secret")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.CatalogQueryTimeout)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.StorageEnabled())
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("DIRECTORY_CACHE_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.DirectoryCacheTTL)
}
