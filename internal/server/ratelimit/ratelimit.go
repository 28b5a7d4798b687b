// Package ratelimit provides per-client fixed-window rate limiting.
package ratelimit

import (
	"sync"
	"time"
)

// window counts the requests of one client within one fixed window.
type window struct {
	start time.Time
	count int
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Window     time.Duration
	ResetTime  time.Time
	ResetAfter time.Duration // time left in the current window
	RetryAfter time.Duration // set only when the request was denied
}

// Limiter counts requests per client in fixed windows.
type Limiter struct {
	windows     map[string]*window // Client ID -> current window
	mu          sync.Mutex
	config      *Config
	now         func() time.Time
	cleanupStop chan struct{}
	stopOnce    sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
// A nil config uses DefaultConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &Limiter{
		windows: make(map[string]*window),
		config:  config,
		now:     time.Now,
	}

	// Start cleanup goroutine if enabled
	if config.Enabled && config.CleanupInterval > 0 && config.Window > 0 {
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup(time.NewTicker(config.CleanupInterval))
	}

	return limiter
}

// Allow records a request from clientID and reports whether it is within the limit.
func (l *Limiter) Allow(clientID string, path string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] || IsExempt(path, method, l.config.Exempt) {
		return true, Info{Allowed: true}
	}

	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	now := l.now()

	l.mu.Lock()
	w, ok := l.windows[clientID]
	if !ok || now.Sub(w.start) >= l.config.Window {
		w = &window{start: now}
		l.windows[clientID] = w
	}
	w.count++
	count := w.count
	resetTime := w.start.Add(l.config.Window)
	l.mu.Unlock()

	allowed := count <= l.config.Limit
	info := Info{
		Allowed:    allowed,
		Limit:      l.config.Limit,
		Remaining:  max(l.config.Limit-count, 0),
		Window:     l.config.Window,
		ResetTime:  resetTime,
		ResetAfter: max(resetTime.Sub(now), 0),
	}
	if !allowed {
		info.RetryAfter = info.ResetAfter
	}

	return allowed, info
}

// cleanup periodically drops expired windows.
func (l *Limiter) cleanup(ticker *time.Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupWindows()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupWindows removes windows that have already ended.
func (l *Limiter) cleanupWindows() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if now.Sub(w.start) >= l.config.Window {
			delete(l.windows, key)
		}
	}
}

// size returns the number of tracked clients.
func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
