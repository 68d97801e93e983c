// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It connects handlers, middleware and
// routes, and owns the lifecycle of the background pieces (keep-alive
// pinger, rate limiter sweep).
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go: config.Load → sqldb.Open → server.New(cfg, store, logger)
//	server.New: store → services → handlers → routes
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes) rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/config"
	"github.com/sakif/second-brain/internal/handler"
	"github.com/sakif/second-brain/internal/keepalive"
	"github.com/sakif/second-brain/internal/metrics"
	"github.com/sakif/second-brain/internal/middleware"
	"github.com/sakif/second-brain/internal/ratelimit"
	"github.com/sakif/second-brain/internal/repository"
	"github.com/sakif/second-brain/internal/service"
	"github.com/sakif/second-brain/internal/validation"
)

// APIPrefix is where every JSON endpoint is mounted.
const APIPrefix = "/api/v1"

// shutdownTimeout is how long in-flight requests get after a stop signal.
const shutdownTimeout = 30 * time.Second

// limiterIdleTTL is how long an IP's bucket survives without requests.
const limiterIdleTTL = 10 * time.Minute

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The store is opened by the caller and passed in, so the caller closes it.
// The Server owns the limiter and the keep-alive pinger and stops both when
// Run returns.
type Server struct {
	router    *chi.Mux
	config    *config.Config
	logger    *slog.Logger
	store     repository.Store
	metrics   *metrics.Metrics
	limiter   *ratelimit.KeyedRateLimiter // nil when rate limiting is off
	keepAlive *keepalive.Pinger           // nil when SERVER_URL is empty
	started   time.Time
}

// New wires services, handlers and routes on top of store.
//
// Each layer only receives what it needs:
//   - Services get repository interfaces (not the concrete sqldb.DB)
//   - Handlers get services behind small interfaces
func New(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordService(cfg.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("creating password service: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		store:   store,
		metrics: metrics.New(),
		started: time.Now(),
	}

	if cfg.RateLimitRPS > 0 {
		s.limiter = ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, limiterIdleTTL)
	}
	s.keepAlive = keepalive.New(cfg.ServerURL, cfg.KeepAliveInterval, logger, s.metrics)

	s.setupRoutes(tokens, passwords)
	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /health                          → liveness + store check
//	GET    /metrics                         → Prometheus (METRICS_ENABLED)
//	POST   /api/v1/signup                   → create account        [rate limited]
//	POST   /api/v1/signin                   → issue token           [rate limited]
//	POST   /api/v1/brain/{shareHash}        → public shared brain   [rate limited]
//	GET    /api/v1/brain/{shareHash}        → same, for browsers    [rate limited]
//	GET    /api/v1/profile                  → caller's profile      [auth]
//	POST   /api/v1/content                  → add content           [auth]
//	GET    /api/v1/content                  → list own content      [auth]
//	DELETE /api/v1/content                  → delete, id in body    [auth]
//	DELETE /api/v1/content/{contentId}      → delete, id in path    [auth]
//	POST   /api/v1/brain/share              → enable/disable share  [auth]
//
// chi matches the static /brain/share before the {shareHash} pattern, so
// the two never collide.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique ID to each request (for tracing)
//  2. RealIP: extracts the client IP from proxy headers (rate limit key)
//  3. Logger and Metrics: observe every request, including panics below
//  4. Recoverer: catches panics and returns 500 instead of crashing
//  5. CORS: answers preflights before auth runs
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService) {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// === Dependency chain ===
	validate := validation.New()
	respond := handler.NewResponder(s.config.StatusCodes, s.logger)

	accountService := service.NewAccountService(s.store, tokens, passwords, validate, s.logger)
	contentService := service.NewContentService(s.store, s.store, s.store, validate, s.logger)
	shareService := service.NewShareService(s.store, s.store, s.store, s.logger)

	accountHandler := handler.NewAccountHandler(accountService, respond)
	contentHandler := handler.NewContentHandler(contentService, respond)
	shareHandler := handler.NewShareHandler(shareService, respond)
	healthHandler := handler.NewHealthHandler(s.store, s.started, s.logger)

	// === Operational routes ===
	s.router.Get("/health", healthHandler.HandleHealth)
	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// === API routes ===
	s.router.Route(APIPrefix, func(r chi.Router) {
		// Public: rate limited per client IP.
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(middleware.RateLimit(s.limiter, s.metrics, s.logger))
			}
			r.Post("/signup", accountHandler.HandleSignup)
			r.Post("/signin", accountHandler.HandleSignin)
			r.Post("/brain/{shareHash}", shareHandler.HandleResolve)
			r.Get("/brain/{shareHash}", shareHandler.HandleResolve)
		})

		// Authenticated: bearer token required.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/profile", accountHandler.HandleProfile)
			r.Post("/content", contentHandler.HandleAdd)
			r.Get("/content", contentHandler.HandleList)
			r.Delete("/content", contentHandler.HandleDelete)
			r.Delete("/content/{contentId}", contentHandler.HandleDelete)
			r.Post("/brain/share", shareHandler.HandleToggle)
		})
	})
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP on the configured port until ctx is cancelled, then shuts
// down gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Stop the keep-alive pinger and the limiter sweep
func (s *Server) Run(ctx context.Context) error {
	defer s.stopBackground()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Env),
			slog.String("statusCodes", string(s.config.StatusCodes)),
			slog.Bool("rateLimit", s.limiter != nil),
			slog.Bool("keepAlive", s.keepAlive != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	s.keepAlive.Start(ctx)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}

func (s *Server) stopBackground() {
	s.keepAlive.Stop()
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
