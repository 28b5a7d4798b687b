// Package scrape extracts Instagram profile data from rendered profile pages.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/instagram-roaster/internal/fetch"
	"github.com/jonathan/instagram-roaster/internal/observability"
	"github.com/jonathan/instagram-roaster/internal/types"
)

// DefaultBaseURL is the origin profile URLs are built from.
const DefaultBaseURL = "https://www.instagram.com"

// ErrProfileNotFound is returned when the profile page says the user does not exist.
var ErrProfileNotFound = errors.New("instagram profile not found")

// Error is a transient extraction failure: navigation, timeout or parse error.
// It is never retried; the caller decides whether to surface it.
type Error struct {
	Username string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to scrape @%s: %s", e.Username, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ProfileSource produces profile data for a username.
// Found profiles come back with a nil error; a missing profile yields
// ErrProfileNotFound and any other failure a *Error.
type ProfileSource interface {
	Extract(ctx context.Context, username string) (*types.ProfileData, error)
}

// LiveSource scrapes instagram.com through a Renderer.
type LiveSource struct {
	renderer  fetch.Renderer
	selectors Selectors
	baseURL   string
	now       func() time.Time
}

// Option configures a LiveSource.
type Option func(*LiveSource)

// WithSelectors overrides the DOM selectors.
func WithSelectors(sel Selectors) Option {
	return func(s *LiveSource) { s.selectors = sel }
}

// WithBaseURL points the source at a different origin.
func WithBaseURL(baseURL string) Option {
	return func(s *LiveSource) { s.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithClock overrides the time source used for LastActivity.
func WithClock(now func() time.Time) Option {
	return func(s *LiveSource) { s.now = now }
}

// NewLiveSource creates a LiveSource rendering pages with r.
func NewLiveSource(r fetch.Renderer, opts ...Option) *LiveSource {
	s := &LiveSource{
		renderer:  r,
		selectors: DefaultSelectors(),
		baseURL:   DefaultBaseURL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProfileURL returns the profile page URL for username.
func (s *LiveSource) ProfileURL(username string) string {
	return fmt.Sprintf("%s/%s/", s.baseURL, url.PathEscape(username))
}

// Extract implements ProfileSource.
func (s *LiveSource) Extract(ctx context.Context, username string) (*types.ProfileData, error) {
	start := time.Now()
	profile, err := s.extract(ctx, username)
	observability.ScrapeDuration.Observe(time.Since(start).Seconds())
	recordOutcome(err)
	return profile, err
}

func (s *LiveSource) extract(ctx context.Context, username string) (*types.ProfileData, error) {
	html, err := s.renderer.Render(ctx, s.ProfileURL(username))
	if err != nil {
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusNotFound {
			return nil, ErrProfileNotFound
		}
		slog.Error("error scraping instagram profile", "username", username, "error", err)
		return nil, &Error{Username: username, Message: err.Error(), Cause: err}
	}

	slog.Debug("rendered profile document", "username", username, "html", html)

	return parseProfile(html, username, s.selectors, s.now())
}

// parseProfile runs Parse and classifies its failures.
func parseProfile(html, username string, sel Selectors, now time.Time) (*types.ProfileData, error) {
	profile, err := Parse(html, sel, now)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, &Error{Username: username, Message: err.Error(), Cause: err}
	}

	if profile.Username == "" {
		profile.Username = username
	}

	slog.Debug("scraped data", "username", username, "profile", profile)
	return profile, nil
}

// recordOutcome counts an extraction result.
func recordOutcome(err error) {
	outcome := observability.OutcomeFound
	switch {
	case errors.Is(err, ErrProfileNotFound):
		outcome = observability.OutcomeNotFound
	case err != nil:
		outcome = observability.OutcomeFailed
	}
	observability.ScrapesTotal.WithLabelValues(outcome).Inc()
}
