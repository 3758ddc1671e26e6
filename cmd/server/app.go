package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskraft/taskraft-api/internal/config"
	"github.com/taskraft/taskraft-api/internal/generation"
	"github.com/taskraft/taskraft-api/internal/platform/gemini"
	"github.com/taskraft/taskraft-api/internal/platform/mailer"
	"github.com/taskraft/taskraft-api/internal/platform/postgres"
	"github.com/taskraft/taskraft-api/internal/service"
	"github.com/taskraft/taskraft-api/internal/service/auth"
	"github.com/taskraft/taskraft-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore       store.UserStore
	groupStore      store.GroupStore
	membershipStore store.MembershipStore
	taskStore       store.TaskStore
	commentStore    store.CommentStore
	invitationStore store.InvitationStore
	loginStateStore store.LoginStateStore

	// Platform collaborators
	jwtService       auth.JWTService
	identityProvider auth.IdentityProvider
	generator        generation.Generator
	mail             mailer.Mailer

	// Services
	identityService   *service.IdentityService
	groupService      *service.GroupService
	invitationService *service.InvitationService
	taskService       *service.TaskService
	commentService    *service.CommentService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.identityProvider, err = auth.NewGoogleIdentityProvider(cfg.OAuth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.groupStore = postgres.NewPostgresGroupStore(db, logger)
	app.membershipStore = postgres.NewPostgresMembershipStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.commentStore = postgres.NewPostgresCommentStore(db, logger)
	app.invitationStore = postgres.NewPostgresInvitationStore(db, logger)
	app.loginStateStore = postgres.NewPostgresLoginStateStore(db, logger)

	// Create the LLM draft generator
	app.generator, err = gemini.NewGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize draft generator: %w", err)
	}
	logger.Info("Draft generator initialized", "model", cfg.LLM.ModelName)

	// Without an SMTP host, invitation emails are logged instead of sent.
	if cfg.Mail.Host != "" {
		app.mail, err = mailer.NewSMTPMailer(cfg.Mail, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mailer: %w", err)
		}
	} else {
		app.mail = mailer.NewLogMailer(logger)
		logger.Warn("No SMTP host configured; invitation emails will be logged only")
	}

	authorizer, err := service.NewAuthorizer(app.membershipStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer: %w", err)
	}

	app.identityService, err = service.NewIdentityService(
		app.userStore,
		app.loginStateStore,
		app.identityProvider,
		app.jwtService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity service: %w", err)
	}

	app.groupService, err = service.NewGroupService(
		db,
		app.groupStore,
		app.membershipStore,
		app.taskStore,
		app.commentStore,
		authorizer,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group service: %w", err)
	}

	app.invitationService, err = service.NewInvitationService(
		db,
		app.invitationStore,
		app.membershipStore,
		app.groupStore,
		authorizer,
		app.mail,
		cfg.Mail.SiteName,
		cfg.Server.BaseURL,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation service: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		db,
		app.taskStore,
		app.commentStore,
		authorizer,
		app.generator,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.commentService, err = service.NewCommentService(
		app.commentStore,
		app.taskStore,
		authorizer,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
