package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Lifecycle event names emitted by Chrome for the main document.
const (
	lifecycleInit              = "init"
	lifecycleNetworkAlmostIdle = "networkAlmostIdle" // no more than 2 connections for 500ms
)

// ChromeRenderer renders pages in a headless Chrome driven by chromedp.
// Every Render call launches and tears down its own browser process.
type ChromeRenderer struct {
	timeout   time.Duration
	userAgent string
}

// NewChromeRenderer creates a ChromeRenderer with the given navigation timeout.
func NewChromeRenderer(timeout time.Duration) *ChromeRenderer {
	return &ChromeRenderer{
		timeout:   timeout,
		userAgent: DefaultUserAgent,
	}
}

// Render navigates to url, waits for the network to go quiet and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	slog.Debug("starting headless browser", "driver", DriverChromedp, "url", url)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(r.userAgent),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...), "driver", DriverChromedp)
	}))
	defer cancelBrowser()

	// Start the browser before watching lifecycle events so the initial
	// about:blank document cannot satisfy the idle wait.
	if err := chromedp.Run(browserCtx); err != nil {
		return "", fmt.Errorf("failed to start browser: %w", err)
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, r.timeout)
	defer cancelNav()

	idle := watchNetworkIdle(navCtx)

	var html string
	err := chromedp.Run(navCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
		waitClosed(idle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	slog.Debug("rendered page", "driver", DriverChromedp, "url", url, "bytes", len(html))
	return html, nil
}

// idleGate tracks lifecycle events of one frame. It opens on the first
// networkAlmostIdle that follows the frame's init.
type idleGate struct {
	frameID cdp.FrameID
	started bool
}

// observe records e and reports whether the frame has gone idle.
// Events from other frames (iframes) are ignored.
func (g *idleGate) observe(e *page.EventLifecycleEvent) bool {
	if e.FrameID != g.frameID {
		return false
	}
	switch e.Name {
	case lifecycleInit:
		g.started = true
	case lifecycleNetworkAlmostIdle:
		return g.started
	}
	return false
}

// watchNetworkIdle returns a channel that is closed once the main frame of
// the target in ctx reports networkAlmostIdle after navigating.
func watchNetworkIdle(ctx context.Context) <-chan struct{} {
	idle := make(chan struct{})
	var mu sync.Mutex
	var once sync.Once
	gate := &idleGate{frameID: mainFrameID(ctx)}

	chromedp.ListenTarget(ctx, func(ev any) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok {
			return
		}
		mu.Lock()
		done := gate.observe(e)
		mu.Unlock()
		if done {
			once.Do(func() { close(idle) })
		}
	})

	return idle
}

// mainFrameID returns the top-level frame of the page target in ctx. Chrome
// gives a page's main frame the same id as its target.
func mainFrameID(ctx context.Context) cdp.FrameID {
	c := chromedp.FromContext(ctx)
	if c == nil || c.Target == nil {
		return ""
	}
	return cdp.FrameID(c.Target.TargetID)
}

// waitClosed blocks until ch is closed or the action context ends.
func waitClosed(ch <-chan struct{}) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
