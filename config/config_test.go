package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultPathPrefix, cfg.PathPrefix)
	assert.Equal(t, DefaultRefreshThreshold, cfg.RefreshThreshold)
	assert.False(t, cfg.DisableAutoRefresh)
	assert.Empty(t, cfg.TenantID)
}

func TestNormalizeFillsEmptyFields(t *testing.T) {
	cfg := Config{TenantID: "acme", RefreshThreshold: -5}
	cfg.Normalize()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultPathPrefix, cfg.PathPrefix)
	assert.Equal(t, DefaultRefreshThreshold, cfg.RefreshThreshold)
	assert.Equal(t, "acme", cfg.TenantID)
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := Config{BaseURL: "https://sso.example.com", PathPrefix: "/v2/", RefreshThreshold: 60}
	cfg.Normalize()

	assert.Equal(t, "https://sso.example.com", cfg.BaseURL)
	assert.Equal(t, "/v2/", cfg.PathPrefix)
	assert.Equal(t, 60, cfg.RefreshThreshold)
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	require.ErrorIs(t, cfg.Validate(), ErrMissingTenantID)

	cfg.TenantID = "acme"
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tower.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://sso.example.com
tenant_id: acme
client_id: client-1
refresh_threshold: 120
disable_auto_refresh: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://sso.example.com", cfg.BaseURL)
	assert.Equal(t, "acme", cfg.TenantID)
	assert.Equal(t, "client-1", cfg.ClientID)
	assert.Equal(t, 120, cfg.RefreshThreshold)
	assert.True(t, cfg.DisableAutoRefresh)
	assert.Equal(t, DefaultPathPrefix, cfg.PathPrefix)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tower.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tenant_id: acme\n"), 0o600))

	t.Setenv("TOWER_TENANT_ID", "globex")
	t.Setenv("TOWER_CLIENT_SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "globex", cfg.TenantID)
	assert.Equal(t, "s3cret", cfg.ClientSecret)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
