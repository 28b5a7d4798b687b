// Package fetch renders web pages to HTML, either through a headless browser or plain HTTP.
package fetch

import (
	"fmt"
	"time"
)

// DefaultTimeout bounds a single navigation.
const DefaultTimeout = 60 * time.Second

// DefaultUserAgent is a desktop Chrome user agent. Instagram serves a
// login wall to obvious bots, so no driver announces itself.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// Error is returned by every Renderer when a page cannot be loaded.
type Error struct {
	URL        string
	Message    string
	StatusCode int // non-zero when the server answered with a non-200 status
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
