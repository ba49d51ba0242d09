// Package web serves the combined life expectancy and healthcare expenditure
// table over HTTP.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/healthjoin/internal/config"
	"github.com/JonMunkholm/healthjoin/internal/core"
	mw "github.com/JonMunkholm/healthjoin/internal/web/middleware"
)

// Runner builds a join result on demand. *core.Service satisfies it.
type Runner interface {
	Build(ctx context.Context) (*core.Result, error)
	Options() core.Options
}

// Server is the HTTP server for the combined table.
type Server struct {
	runner  Runner
	cfg     config.ServerConfig
	limiter *core.RunLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(runner Runner, cfg config.ServerConfig) *Server {
	s := &Server{
		runner:  runner,
		cfg:     cfg,
		limiter: core.NewRunLimiter(cfg.MaxConcurrentRuns, cfg.RunWait),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/combined", s.handleCombinedJSON)
		r.Get("/combined.csv", s.handleCombinedCSV)
		r.Get("/summary", s.handleSummary)
		r.Get("/sources", s.handleListSources)
		r.Get("/sources/{sourceKey}", s.handleGetSource)
	})
}

// Start begins listening for HTTP requests. After Shutdown it returns
// http.ErrServerClosed.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr, "year", s.runner.Options().Year)
	return s.server.ListenAndServe()
}

// Shutdown waits for in-flight runs, then gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if active := s.limiter.ActiveCount(); active > 0 {
		slog.Info("waiting for runs to complete", "active", active)
		if err := s.limiter.WaitForDrain(ctx); err != nil {
			slog.Warn("runs did not complete in time", "error", err)
		}
	}

	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// build runs one join on behalf of a request, gated by the run limiter.
func (s *Server) build(r *http.Request) (*core.Result, error) {
	if err := s.limiter.Acquire(r.Context()); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	return s.runner.Build(r.Context())
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// The page is self-contained: inline styles only, no scripts
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
}
