package fetch

import (
	"context"
	"fmt"
	"time"
)

// Driver names accepted by NewRenderer.
const (
	DriverChromedp = "chromedp"
	DriverRod      = "rod"
	DriverHTTP     = "http"
)

// Renderer loads a URL and returns the resulting document markup.
// Implementations own the whole lifecycle of whatever they launch: nothing
// may outlive a single Render call.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(ctx context.Context, url string) (string, error)

// Render implements Renderer.
func (f RenderFunc) Render(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// NewRenderer returns the Renderer for a driver name.
func NewRenderer(driver string, timeout time.Duration) (Renderer, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch driver {
	case DriverChromedp, "":
		return NewChromeRenderer(timeout), nil
	case DriverRod:
		return NewRodRenderer(timeout), nil
	case DriverHTTP:
		return NewHTTPRenderer(timeout), nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", driver)
	}
}
