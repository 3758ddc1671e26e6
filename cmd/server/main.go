// Package main implements the entry point for the TaskRaft API server,
// a multi-tenant task-management backend with group-scoped authorization,
// email invitations and LLM-assisted task drafting.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/taskraft/taskraft-api/internal/config"
	"github.com/taskraft/taskraft-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires the application together and serves until
// shutdown.
func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("Application exited with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Application stopped")
	return nil
}
