// Package main is the entry point for the study-buddy server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
//  1. Read configuration (from env vars via internal/config)
//  2. Create the logger
//  3. Hand off to internal/server
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
//
// COMMANDS:
//
//	study-buddy           same as "serve"
//	study-buddy serve     run the HTTP API until SIGINT/SIGTERM
//	study-buddy migrate   apply database migrations and exit
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sakif/study-buddy/internal/config"
	"github.com/sakif/study-buddy/internal/server"
)

func main() {
	app := &cli.App{
		Name:   "study-buddy",
		Usage:  "Study assistant API: accounts, notes, AI tutoring and PDF export",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations and exit",
				Action: migrate,
			},
		},
	}

	// NotifyContext cancels ctx on the first signal; server.Start then drains.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("application failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setup loads the configuration and builds the process logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(os.Stdout, cfg), nil
}

// newLogger builds a text or JSON slog logger at the configured level.
//
// Log levels (from least to most severe): Debug → Info → Warn → Error
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With(slog.String("service", "study-buddy"))
}

func serve(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	srv, err := server.New(c.Context, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until the context is cancelled (Ctrl+C or SIGTERM)
	return srv.Start(c.Context)
}

func migrate(c *cli.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	// OpenStore runs migrations as part of opening the backend.
	store, err := server.OpenStore(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("database is up to date", slog.Bool("postgres", cfg.Database.IsPostgres()))
	return nil
}
