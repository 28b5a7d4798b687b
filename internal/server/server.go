package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/instagram-roaster/internal/config"
	"github.com/jonathan/instagram-roaster/internal/pipeline"
	"github.com/jonathan/instagram-roaster/internal/server/middleware"
	"github.com/jonathan/instagram-roaster/internal/server/ratelimit"
	"github.com/jonathan/instagram-roaster/internal/types"
)

// shutdownTimeout bounds how long in-flight requests may drain on shutdown.
const shutdownTimeout = 30 * time.Second

// msgTooManyRequests is the 429 response message.
const msgTooManyRequests = "Too many requests, please try again later."

// Roaster is the pipeline the HTTP handlers drive.
type Roaster interface {
	Roast(ctx context.Context, opts pipeline.RoastOptions) (string, error)
	Scrape(ctx context.Context, username string) (*types.ProfileData, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	roaster        Roaster
	rateLimiter    *ratelimit.Limiter
	allowedOrigins map[string]bool
	devMode        bool
}

// New creates a new server instance
func New(cfg *config.Config, roaster Roaster) *Server {
	rateLimit := cfg.RateLimit
	s := &Server{
		roaster:        roaster,
		rateLimiter:    ratelimit.NewLimiter(&rateLimit),
		allowedOrigins: make(map[string]bool, len(cfg.AllowedOrigins)),
		devMode:        cfg.IsDevelopment(),
	}
	for _, origin := range cfg.AllowedOrigins {
		s.allowedOrigins[strings.ToLower(origin)] = true
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("POST /roast", s.handleRoast)
	mux.HandleFunc("POST /roast/stream", s.handleRoastStream)
	mux.HandleFunc("GET /scrape", s.handleScrape)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Handler(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // scraping plus generation can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler wraps h in the middleware chain. CORS sits outside the limiter so
// throttled responses stay readable by the browser.
func (s *Server) Handler(h http.Handler) http.Handler {
	return middleware.RequestID(middleware.Metrics(s.withLogging(s.withCORS(s.withRateLimit(h)))))
}

// Close releases the limiter's background cleanup. Run and Serve call it on return.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	defer s.Close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Instagram Roast API listening", "addr", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		slog.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// withCORS reflects allowed origins. Disallowed origins get no CORS headers
// but the request still proceeds.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && s.originAllowed(origin)

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				headers := r.Header.Get("Access-Control-Request-Headers")
				if headers == "" {
					headers = "Content-Type"
				}
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Add("Vary", "Access-Control-Request-Headers")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// originAllowed matches the host of an Origin header against the allow-list.
func (s *Server) originAllowed(origin string) bool {
	if s.devMode {
		return true
	}
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	return s.allowedOrigins[strings.ToLower(host)]
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)

		if !allowed {
			s.rateLimitResponse(w, r, clientID, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := middleware.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		slog.Info("request completed",
			"request_id", middleware.GetRequestID(r),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.Status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("error encoding JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, types.ErrorResponse{Error: message})
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarding headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	// Get IP from RemoteAddr (format: "IP:port")
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If parsing fails, use the whole RemoteAddr
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets the IETF draft-7 RateLimit and RateLimit-Policy headers.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	window := int(info.Window.Seconds())
	reset := retryAfterSeconds(info.ResetAfter)

	w.Header().Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", info.Limit, window))
	w.Header().Set("RateLimit", fmt.Sprintf("limit=%d, remaining=%d, reset=%d", info.Limit, info.Remaining, reset))
}

// retryAfterSeconds rounds a wait up to whole seconds.
func retryAfterSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, clientID string, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSeconds(info.RetryAfter)))
	}

	slog.Warn("rate limit exceeded",
		"request_id", middleware.GetRequestID(r),
		"client", clientID,
		"limit", info.Limit,
		"reset_at", info.ResetTime.Format(time.RFC3339),
	)

	s.errorResponse(w, http.StatusTooManyRequests, msgTooManyRequests)
}
