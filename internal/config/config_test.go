package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "REDIS_ADDRESS", "ALUMNIHUB_JWT_SECRET",
		"PORT", "UPLOAD_DIR", "RENEWAL_SCHEDULE",
		"LOG_LEVEL", "LOG_FORMAT", "ALUMNIHUB_CONFIG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALUMNIHUB_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "alumnihub.sqlite", cfg.Database.URL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Server.UploadDir)
	assert.Equal(t, "0 8 * * *", cfg.Worker.RenewalSchedule)
	assert.Equal(t, 30, cfg.Worker.RenewalWindowDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestLoadYAMLOverlay(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "alumnihub.yaml")
	yaml := `
database:
  url: /var/lib/alumnihub/db.sqlite
server:
  port: "9090"
worker:
  renewal_window_days: 14
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("ALUMNIHUB_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/alumnihub/db.sqlite", cfg.Database.URL)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 14, cfg.Worker.RenewalWindowDays)
	// Untouched keys keep their defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestLoadEnvBeatsYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "alumnihub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600))
	t.Setenv("ALUMNIHUB_CONFIG", path)
	t.Setenv("PORT", "7070")
	t.Setenv("ALUMNIHUB_JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "alumnihub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))
	t.Setenv("ALUMNIHUB_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}
