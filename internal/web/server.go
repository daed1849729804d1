// Package web provides the HTTP server and handlers for the population
// dashboard.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/JonMunkholm/popdash/internal/config"
	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/JonMunkholm/popdash/internal/render"
	popmw "github.com/JonMunkholm/popdash/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the dashboard. The dataset is shared
// read-only by every request; selection state lives in sessions.
type Server struct {
	ds       *core.Dataset
	cfg      *config.Config
	builder  render.Builder
	sessions *SessionStore
	router   *chi.Mux

	mu     sync.Mutex
	server *http.Server

	limiter       *rateLimiter
	exportLimiter *rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(ds *core.Dataset, cfg *config.Config) *Server {
	s := &Server{
		ds:       ds,
		cfg:      cfg,
		builder:  render.Builder{MigrationThreshold: cfg.Dataset.MigrationThreshold},
		sessions: NewSessionStore(cfg.Session.TTL),
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = newRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.exportLimiter = newRateLimiter(cfg.Rate.ExportLimit, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(popmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(popmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(s.securityHeaders)

	if s.limiter != nil {
		s.router.Use(s.rateLimit(s.limiter))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)

	// Session-scoped pages and charts
	s.router.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleDashboard)
		r.Post("/selection", s.handleSelection)
		r.Get("/chart/choropleth.svg", s.handleChoroplethSVG)
		r.Get("/chart/heatmap.svg", s.handleHeatmapSVG)
		r.Get("/chart/trend/{file}", s.handleTrendSVG)
	})

	// Stateless JSON API
	s.router.Route("/api", func(r chi.Router) {
		r.Use(popmw.APIKeyAuth(&s.cfg.Security))

		r.Get("/meta", s.handleMeta)
		r.Get("/dashboard", s.handleDashboardJSON)

		r.Group(func(r chi.Router) {
			if s.exportLimiter != nil {
				r.Use(s.rateLimit(s.exportLimiter))
			}
			r.Get("/export/{file}", s.handleExport)
		})
	})
}

// Start runs background cleanup bound to ctx and listens for HTTP requests.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener. Cancelling ctx stops background
// cleanup only; in-flight requests keep running until Shutdown drains them.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.sessions.Run(ctx, s.cfg.Session.CleanupInterval)
	if s.limiter != nil {
		go s.limiter.run(ctx)
		go s.exportLimiter.run(ctx)
	}

	s.mu.Lock()
	s.server = &http.Server{
		Addr:         ln.Addr().String(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	srv := s.server
	s.mu.Unlock()

	slog.Info("server listening", "addr", srv.Addr)
	return srv.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Sessions exposes the session store for testing.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Inline handlers submit the sidebar form; inline styles size the bars.
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy",
				"default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}

		next.ServeHTTP(w, r)
	})
}

// errRateLimited is matched by core.MapError's "rate limit" pattern.
var errRateLimited = errors.New("rate limit exceeded")

// rateLimiter implements a fixed-window limiter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

// run removes stale visitor entries every window until ctx is cancelled.
func (rl *rateLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return true
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// rateLimit returns middleware that limits requests per client IP.
func (s *Server) rateLimit(rl *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}

			if !rl.allow(ip) {
				w.Header().Set("Retry-After", "60")
				s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "path", r.URL.Path, "error", err)
	}
}
