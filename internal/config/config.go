// Package config provides configuration loading and validation for the roaster.
// Configuration is read once at startup and passed explicitly to collaborators.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/instagram-roaster/internal/fetch"
	"github.com/jonathan/instagram-roaster/internal/server/ratelimit"
)

// EnvDevelopment disables the CORS allow-list.
const EnvDevelopment = "development"

// Defaults
const (
	DefaultPort              = 3001
	DefaultModel             = "gemini-1.5-flash"
	DefaultNavigationTimeout = 60 * time.Second
	DefaultRateLimit         = 30
	DefaultRateWindow        = time.Minute
	DefaultCleanupInterval   = 5 * time.Minute
)

// DefaultAllowedOrigins is the CORS allow-list used when none is configured.
var DefaultAllowedOrigins = []string{
	"localhost:3000",
	"instagram-roaster.vercel.app",
	"instagram-roaster.netlify.app",
}

// Config is the process configuration.
type Config struct {
	Port              int
	APIKeys           []string // pool of Gemini credentials
	Model             string
	Environment       string
	AllowedOrigins    []string
	BrowserDriver     string
	NavigationTimeout time.Duration
	LogLevel          string
	RateLimit         ratelimit.Config
}

// fileConfig is the on-disk JSON shape. All fields are optional.
type fileConfig struct {
	Port              int      `json:"port,omitempty"`
	APIKeys           []string `json:"api_keys,omitempty"`
	Model             string   `json:"model,omitempty"`
	Environment       string   `json:"environment,omitempty"`
	AllowedOrigins    []string `json:"allowed_origins,omitempty"`
	BrowserDriver     string   `json:"browser_driver,omitempty"`
	NavigationTimeout string   `json:"navigation_timeout,omitempty"` // Go duration, e.g. "45s"
	LogLevel          string   `json:"log_level,omitempty"`
	RateLimit         int      `json:"rate_limit,omitempty"`
	RateWindow        string   `json:"rate_window,omitempty"`
}

// Load builds the configuration from the environment, then overlays the
// JSON file at path when path is non-empty.
func Load(path string) (*Config, error) {
	cfg := FromEnv()

	if path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		if err := fc.applyTo(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads the configuration from environment variables, applying defaults.
func FromEnv() *Config {
	return &Config{
		Port:              getEnvInt("PORT", DefaultPort),
		APIKeys:           splitList(os.Getenv("GEMINI_API_KEY")),
		Model:             getEnvString("GEMINI_MODEL", DefaultModel),
		Environment:       getEnvString("APP_ENV", "production"),
		AllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", DefaultAllowedOrigins),
		BrowserDriver:     strings.ToLower(getEnvString("BROWSER_DRIVER", fetch.DriverChromedp)),
		NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT", DefaultNavigationTimeout),
		LogLevel:          getEnvString("LOG_LEVEL", "info"),
		RateLimit: ratelimit.Config{
			Enabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
			Limit:           getEnvInt("RATE_LIMIT_LIMIT", DefaultRateLimit),
			Window:          getEnvDuration("RATE_LIMIT_WINDOW", DefaultRateWindow),
			CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", DefaultCleanupInterval),
			Whitelist:       parseSet(os.Getenv("RATE_LIMIT_WHITELIST")),
			Blacklist:       parseSet(os.Getenv("RATE_LIMIT_BLACKLIST")),
			Exempt:          ratelimit.DefaultExemptRoutes(),
		},
	}
}

// loadFile loads configuration from a JSON file.
func loadFile(path string) (*fileConfig, error) {
	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &fc, nil
}

// applyTo overwrites cfg with every field set in the file.
func (fc *fileConfig) applyTo(cfg *Config) error {
	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	if len(fc.APIKeys) > 0 {
		cfg.APIKeys = fc.APIKeys
	}
	if fc.Model != "" {
		cfg.Model = fc.Model
	}
	if fc.Environment != "" {
		cfg.Environment = fc.Environment
	}
	if len(fc.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.BrowserDriver != "" {
		cfg.BrowserDriver = strings.ToLower(fc.BrowserDriver)
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.NavigationTimeout != "" {
		d, err := time.ParseDuration(fc.NavigationTimeout)
		if err != nil {
			return fmt.Errorf("config error: invalid 'navigation_timeout': %w", err)
		}
		cfg.NavigationTimeout = d
	}
	if fc.RateLimit != 0 {
		cfg.RateLimit.Limit = fc.RateLimit
	}
	if fc.RateWindow != "" {
		d, err := time.ParseDuration(fc.RateWindow)
		if err != nil {
			return fmt.Errorf("config error: invalid 'rate_window': %w", err)
		}
		cfg.RateLimit.Window = d
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Missing API keys are not an error: callers may supply their own per request.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	switch c.BrowserDriver {
	case fetch.DriverChromedp, fetch.DriverRod, fetch.DriverHTTP:
	default:
		return fmt.Errorf("config error: unknown browser driver %q", c.BrowserDriver)
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("config error: 'navigation_timeout' must be positive")
	}
	if c.Model == "" {
		return fmt.Errorf("config error: 'model' is empty")
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Limit <= 0 {
			return fmt.Errorf("config error: 'rate_limit' must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("config error: 'rate_window' must be positive")
		}
	}
	return nil
}

// IsDevelopment reports whether the CORS allow-list is bypassed.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, EnvDevelopment)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable with a default value.
func getEnvList(key string, defaultValue []string) []string {
	if list := splitList(os.Getenv(key)); len(list) > 0 {
		return list
	}
	return append([]string(nil), defaultValue...)
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(list string) []string {
	var result []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

// parseSet parses a comma-separated list into a set.
func parseSet(list string) map[string]bool {
	result := make(map[string]bool)
	for _, item := range splitList(list) {
		result[item] = true
	}
	return result
}
