package ratelimit

import "time"

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Limit           int           // Maximum requests per client per window
	Window          time.Duration // Fixed window length
	CleanupInterval time.Duration // How often expired windows are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Exempt          []Route // Routes that are never counted
}

// Route identifies an endpoint by method and path.
type Route struct {
	Method string
	Path   string
}

// DefaultConfig returns 30 requests per minute per client.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Limit:           30,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		Exempt:          DefaultExemptRoutes(),
	}
}

// DefaultExemptRoutes returns the operational endpoints that bypass the limiter.
func DefaultExemptRoutes() []Route {
	return []Route{
		{Method: "GET", Path: "/health"},
		{Method: "GET", Path: "/metrics"},
	}
}
