package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "/mcp", cfg.Server.Path)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout.Duration)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[server]
port = 9000
cors_origins = ["https://app.example"]

[upstream]
timeout = "5s"
search_max_pages = 2
`), 0o600))

	t.Setenv("PORT", "")
	t.Setenv("PREDICTIONMCP_SERVER_PORT", "")
	t.Setenv("PREDICTIONMCP_KALSHI_API_KEY", "kid")
	t.Setenv("PREDICTIONMCP_SERVER_CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout.Duration)
	assert.Equal(t, 2, cfg.Upstream.SearchMaxPages)
	assert.Equal(t, 100, cfg.Upstream.SearchPageSize)
	assert.Equal(t, "kid", cfg.Kalshi.ApiKey)
}

func TestLoadPortEnvWins(t *testing.T) {
	t.Setenv("PREDICTIONMCP_SERVER_PORT", "7000")
	t.Setenv("PORT", "3001")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "loud"
	cfg.Server.Port = 0
	cfg.Server.Path = "mcp"
	cfg.Kalshi.RsaPrivateKeyPath = "/keys/kalshi.pem"
	cfg.Upstream.SearchPageSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"log_level", "port", "path", "api_key", "search_page_size"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Kalshi.ApiKey = "secret"
	cfg.Server.CORSOrigins = []string{"https://a.example"}

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Kalshi.ApiKey)
	assert.Equal(t, "secret", cfg.Kalshi.ApiKey)

	out.Server.CORSOrigins[0] = "mutated"
	assert.Equal(t, "https://a.example", cfg.Server.CORSOrigins[0])
}
