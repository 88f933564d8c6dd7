package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Creates a temporary YAML config file in a temporary directory.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err, "Failed to write temporary config file")

	return configPath
}

func TestMustLoad(t *testing.T) {
	validYAML := `
env: "test"
http_server:
  address: ":8081"
inventory_api:
  API_BASE_URL: "http://127.0.0.1:8000/api/v1"
  API_TIMEOUT: "5s"
session:
  SESSION_BACKEND: "redis"
  SESSION_FILE: "/tmp/session"
  redis:
    REDIS_HOST: "localhost:6379"
    REDIS_USER: "default"
    REDIS_PASSWORD: "secret"
    REDIS_DB: 1
    REDIS_TTL: "1h"
telemetry:
  OTLP_ENDPOINT: "localhost:4318"
`

	t.Run("Success - Load From CONFIG_PATH", func(t *testing.T) {
		configPath := createTempConfigFile(t, validYAML)
		t.Setenv("CONFIG_PATH", configPath)

		cfg := MustLoad()

		require.NotNil(t, cfg)
		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, ":8081", cfg.Addr)
		assert.Equal(t, "http://127.0.0.1:8000/api/v1", cfg.InventoryAPI.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.InventoryAPI.Timeout)
		assert.Equal(t, "redis", cfg.Session.Backend)
		assert.Equal(t, "localhost:6379", cfg.Session.Redis.Addr())
		assert.Equal(t, 1, cfg.Session.Redis.DB)
		assert.Equal(t, time.Hour, cfg.Session.Redis.TTL)
		assert.Equal(t, "localhost:4318", cfg.Telemetry.OTLPEndpoint)
	})

	t.Run("Success - Defaults Applied", func(t *testing.T) {
		minimalYAML := `
env: "local"
inventory_api:
  API_BASE_URL: "http://127.0.0.1:8000/api/v1"
`
		configPath := createTempConfigFile(t, minimalYAML)
		t.Setenv("CONFIG_PATH", configPath)

		cfg := MustLoad()

		require.NotNil(t, cfg)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 10*time.Second, cfg.InventoryAPI.Timeout)
		assert.Equal(t, "file", cfg.Session.Backend)
		assert.Equal(t, ".counterdesk-session", cfg.Session.FilePath)
		assert.Equal(t, 12*time.Hour, cfg.Session.Redis.TTL)
	})

	t.Run("Success - Env Overrides File", func(t *testing.T) {
		configPath := createTempConfigFile(t, validYAML)
		t.Setenv("CONFIG_PATH", configPath)
		t.Setenv("API_BASE_URL", "http://api.internal:9000/api/v1")

		cfg := MustLoad()

		require.NotNil(t, cfg)
		assert.Equal(t, "http://api.internal:9000/api/v1", cfg.InventoryAPI.BaseURL)
	})
}
