package ratelimit

import (
	"strings"
)

// IsExempt reports whether a request path and method match an exempt route.
// Routes ending with "/" match by prefix (e.g., "/debug/" matches "/debug/vars").
func IsExempt(path string, method string, routes []Route) bool {
	for _, route := range routes {
		if route.Method != "" && route.Method != method {
			continue
		}
		if route.Path == path {
			return true
		}
		if strings.HasSuffix(route.Path, "/") && strings.HasPrefix(path, route.Path) {
			return true
		}
	}
	return false
}
