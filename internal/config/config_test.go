package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/instagram-roaster/internal/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "GEMINI_API_KEY", "GEMINI_MODEL", "APP_ENV", "CORS_ALLOWED_ORIGINS",
		"BROWSER_DRIVER", "NAVIGATION_TIMEOUT", "LOG_LEVEL", "RATE_LIMIT_ENABLED",
		"RATE_LIMIT_LIMIT", "RATE_LIMIT_WINDOW", "RATE_LIMIT_CLEANUP_INTERVAL",
		"RATE_LIMIT_WHITELIST", "RATE_LIMIT_BLACKLIST",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Empty(t, cfg.APIKeys)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Equal(t, fetch.DriverChromedp, cfg.BrowserDriver)
	assert.Equal(t, 60*time.Second, cfg.NavigationTimeout)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 30, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("GEMINI_API_KEY", "key-a, key-b,,key-c")
	t.Setenv("APP_ENV", "development")
	t.Setenv("BROWSER_DRIVER", "ROD")
	t.Setenv("RATE_LIMIT_LIMIT", "5")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1,10.0.0.2")

	cfg := FromEnv()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"key-a", "key-b", "key-c"}, cfg.APIKeys)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, fetch.DriverRod, cfg.BrowserDriver)
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.True(t, cfg.RateLimit.Whitelist["10.0.0.2"])
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")

	content := `{
		"port": 9000,
		"browser_driver": "http",
		"navigation_timeout": "15s",
		"allowed_origins": ["example.com"]
	}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := Load(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, fetch.DriverHTTP, cfg.BrowserDriver)
	assert.Equal(t, 15*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, []string{"example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"env-key"}, cfg.APIKeys)
}

func TestLoad_InvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := Load(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoad_FileNotFound(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"navigation_timeout": "soon"}`), 0644))

	_, err := Load(tmpFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "navigation_timeout")
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{name: "bad port", mutate: func(c *Config) { c.Port = 0 }, errMsg: "port"},
		{name: "unknown driver", mutate: func(c *Config) { c.BrowserDriver = "firefox" }, errMsg: "browser driver"},
		{name: "zero timeout", mutate: func(c *Config) { c.NavigationTimeout = 0 }, errMsg: "navigation_timeout"},
		{name: "empty model", mutate: func(c *Config) { c.Model = "" }, errMsg: "model"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.Limit = 0 }, errMsg: "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.Limit = 0

	assert.NoError(t, cfg.Validate())
}
