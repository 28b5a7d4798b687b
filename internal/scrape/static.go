package scrape

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/instagram-roaster/internal/types"
)

// StaticSource serves fixed profile documents keyed by username.
// It runs the same parser as LiveSource without launching a browser.
type StaticSource struct {
	mu        sync.RWMutex
	pages     map[string]string
	selectors Selectors
	now       func() time.Time
	calls     atomic.Int64
}

// NewStaticSource creates a StaticSource from username -> HTML pairs.
func NewStaticSource(pages map[string]string) *StaticSource {
	copied := make(map[string]string, len(pages))
	for k, v := range pages {
		copied[k] = v
	}
	return &StaticSource{
		pages:     copied,
		selectors: DefaultSelectors(),
		now:       time.Now,
	}
}

// LoadStaticSource reads every <username>.html file in dir.
func LoadStaticSource(dir string) (*StaticSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture directory %s: %w", dir, err)
	}

	pages := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".html" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", entry.Name(), err)
		}
		pages[strings.TrimSuffix(entry.Name(), ".html")] = string(data)
	}

	return NewStaticSource(pages), nil
}

// Set adds or replaces the document for username.
func (s *StaticSource) Set(username, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[username] = html
}

// Calls returns how many times Extract has been invoked.
func (s *StaticSource) Calls() int {
	return int(s.calls.Load())
}

// Extract implements ProfileSource. Unknown usernames are reported as not found.
func (s *StaticSource) Extract(ctx context.Context, username string) (*types.ProfileData, error) {
	s.calls.Add(1)

	if err := ctx.Err(); err != nil {
		return nil, &Error{Username: username, Message: err.Error(), Cause: err}
	}

	s.mu.RLock()
	html, ok := s.pages[username]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrProfileNotFound
	}

	return parseProfile(html, username, s.selectors, s.now())
}
