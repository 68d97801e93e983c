// Package main is the entry point for the second-brain server.
//
// The main package is kept minimal. Its job is to:
//  1. Read configuration (environment, optionally a .env file)
//  2. Create dependencies (logger, database connection)
//  3. Start the server and stop it on SIGINT/SIGTERM
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, ...).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sakif/second-brain/internal/config"
	"github.com/sakif/second-brain/internal/logger"
	"github.com/sakif/second-brain/internal/repository/sqldb"
	"github.com/sakif/second-brain/internal/server"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file to load before reading the environment")
	flag.Parse()

	os.Exit(run(*envFile))
}

// run returns the process exit code so deferred cleanup runs before exit.
func run(envFile string) int {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load(envFile)
	if err != nil {
		// No logger config yet; log with the default handler.
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return 1
	}

	// === 2. SET UP LOGGING ===
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("invalid LOG_LEVEL", slog.String("error", err.Error()))
		return 1
	}
	log := logger.New(level, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	// === 3. SIGNAL HANDLING ===
	// ctx is cancelled on Ctrl+C or SIGTERM, which starts graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === 4. DATABASE ===
	// Connectivity is checked here; the server does not start without a store.
	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := sqldb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		return 1
	}
	defer store.Close()
	log.Info("database ready", slog.String("dialect", store.Dialect()))

	// === 5. CREATE AND RUN THE SERVER ===
	srv, err := server.New(cfg, store, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		return 1
	}

	// Run blocks until ctx is cancelled or the listener fails.
	if err := srv.Run(ctx); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
