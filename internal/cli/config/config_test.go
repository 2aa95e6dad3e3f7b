package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointHome redirects the config directory into a temp dir
func pointHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ALUMNIHUB_API_URL", "")
	os.Unsetenv("ALUMNIHUB_API_URL")
	return home
}

func TestLoadDefault(t *testing.T) {
	pointHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
}

func TestLoadFromFile(t *testing.T) {
	home := pointHome(t)

	dir := filepath.Join(home, ".config", "alumnihub")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.json"),
		[]byte(`{"api_url":"https://alumni.example.org"}`),
		0o600,
	))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://alumni.example.org", cfg.APIURL)
}

func TestEnvOverridesFile(t *testing.T) {
	home := pointHome(t)

	dir := filepath.Join(home, ".config", "alumnihub")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.json"),
		[]byte(`{"api_url":"https://from-file.example.org"}`),
		0o600,
	))
	t.Setenv("ALUMNIHUB_API_URL", "https://from-env.example.org")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example.org", cfg.APIURL)
}

func TestSaveRoundTrip(t *testing.T) {
	pointHome(t)

	cfg := &Config{APIURL: "https://saved.example.org"}
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.org", loaded.APIURL)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := pointHome(t)

	dir := filepath.Join(home, ".config", "alumnihub")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{broken"), 0o600))

	_, err := Load()
	require.Error(t, err)
}
