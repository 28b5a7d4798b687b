package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 8 << 20

// HTTPRenderer fetches the server-rendered document without executing scripts.
// Only markup present in the initial response (meta tags) is available.
type HTTPRenderer struct {
	client    *http.Client
	userAgent string
	headers   http.Header
}

// NewHTTPRenderer creates an HTTPRenderer whose requests time out after timeout.
func NewHTTPRenderer(timeout time.Duration) *HTTPRenderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPRenderer{
		client:    &http.Client{Timeout: timeout},
		userAgent: DefaultUserAgent,
		headers:   http.Header{"Accept-Language": {"en-US,en;q=0.9"}},
	}
}

// Render implements Renderer. Any status other than 200 is an *Error carrying
// the status code.
func (r *HTTPRenderer) Render(ctx context.Context, rawURL string) (string, error) {
	if u, err := url.Parse(rawURL); err != nil || u.Scheme == "" || u.Host == "" {
		return "", &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header = r.headers.Clone()
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			URL:        rawURL,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	return string(body), nil
}
