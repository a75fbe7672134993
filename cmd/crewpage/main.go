// Copyright (c) 2026 Crewpage Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/crewpage/crewpage-go/internal/cache"
	"github.com/crewpage/crewpage-go/internal/config"
	"github.com/crewpage/crewpage-go/internal/handler/api"
	"github.com/crewpage/crewpage-go/internal/logging"
	"github.com/crewpage/crewpage-go/internal/middleware"
	"github.com/crewpage/crewpage-go/internal/scheduler"
	"github.com/crewpage/crewpage-go/internal/service"
	"github.com/crewpage/crewpage-go/internal/store"
	"github.com/crewpage/crewpage-go/internal/version"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Crewpage - careers page builder API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CREWPAGE_DB_PATH           SQLite database path (default: ./data/crewpage.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CREWPAGE_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CREWPAGE_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CREWPAGE_REDIS_URL         Redis URL for the public page cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CREWPAGE_BOOTSTRAP_TOKEN   Service token key created on first run (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("crewpage %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the audit event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Create the bootstrap service token on first run so the API is reachable
	if cfg.BootstrapToken != "" {
		if err := store.EnsureBootstrapToken(ctx, db, cfg.BootstrapToken); err != nil {
			return fmt.Errorf("ensuring bootstrap token: %w", err)
		}
	}

	if err := store.SeedDemo(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}

	// Initialize the public page cache backend
	cacheConfig := cache.Config{
		Type:             "memory",
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	}
	if cfg.UseRedisCache() {
		cacheConfig.Type = "redis"
	}
	cacheBackend, err := cache.New(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := cacheBackend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	pageCache := cache.NewPageCache(cacheBackend, cacheConfig.DefaultTTL)

	// Wire services
	events := service.NewEventService(db)
	engine := service.NewVersioningService(db)
	engine.SetPageCache(pageCache)
	engine.SetEventService(events)
	companies := service.NewCompanyService(db)
	companies.SetEventService(events)

	// Start the background scheduler (scheduled publishes, event pruning)
	sched := scheduler.New(engine, events, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Handlers
	apiHandler := api.NewHandler(db, engine, companies)
	publicHandler := api.NewPublicHandler(engine, pageCache)
	healthHandler := api.NewHealthHandler(db)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	// Health endpoints (unauthenticated)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Public careers pages, rate limited per client IP
	publicLimiter := middleware.NewGlobalRateLimiter(float64(cfg.PublicRateLimit), cfg.PublicRateBurst)
	r.Group(func(r chi.Router) {
		r.Use(publicLimiter.Middleware())
		r.Get("/careers/{slug}", publicHandler.CareersPage)
	})

	// Authenticated management API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TokenAuth(db))
		r.Use(middleware.TokenRateLimit(10, 20))

		r.Get("/status", apiHandler.Status)

		// Draft page and sections, company-scoped
		r.Get("/page", apiHandler.GetPage)
		r.Get("/sections", apiHandler.ListSections)
		r.Get("/sections/{id}", apiHandler.GetSection)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireEditor)
			r.Patch("/page", apiHandler.UpdatePage)
			r.Post("/page/discard", apiHandler.DiscardPage)
			r.Post("/sections", apiHandler.CreateSection)
			r.Patch("/sections/{id}", apiHandler.UpdateSection)
			r.Delete("/sections/{id}", apiHandler.DeleteSection)
			r.Post("/sections/reorder", apiHandler.ReorderSections)
		})

		// Provisioning, service tokens only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Use(middleware.RequireServiceToken)
			r.Post("/companies", apiHandler.CreateCompany)
			r.Post("/companies/{id}/tokens", apiHandler.CreateToken)
		})
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
