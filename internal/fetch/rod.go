package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodRenderer renders pages in a headless Chrome driven by rod, with the
// stealth evasions applied to the page.
type RodRenderer struct {
	timeout time.Duration
}

// NewRodRenderer creates a RodRenderer with the given navigation timeout.
func NewRodRenderer(timeout time.Duration) *RodRenderer {
	return &RodRenderer{timeout: timeout}
}

// Render implements Renderer. The launched browser is closed and its
// profile directory removed on every return path.
func (r *RodRenderer) Render(ctx context.Context, url string) (string, error) {
	slog.Debug("starting headless browser", "driver", DriverRod, "url", url)

	l := launcher.New().Context(ctx).Headless(true).NoSandbox(true)
	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return "", fmt.Errorf("connect browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	p, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("create stealth page: %w", err)
	}
	p = p.Timeout(r.timeout)

	wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate to %s: %w", url, err)
	}
	wait()

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}

	slog.Debug("rendered page", "driver", DriverRod, "url", url, "bytes", len(html))
	return html, nil
}
