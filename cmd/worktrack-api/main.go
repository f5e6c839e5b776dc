package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/worktrack-api/internal/config"
	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/handlers"
	"github.com/dimitrije/worktrack-api/internal/jobs"
	"github.com/dimitrije/worktrack-api/internal/logger"
	authmw "github.com/dimitrije/worktrack-api/internal/middleware"
	"github.com/dimitrije/worktrack-api/internal/notify"
	"github.com/dimitrije/worktrack-api/internal/oauth"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	hub := sse.NewHub()
	go hub.Run(ctx)

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	emailService := services.NewEmailService(cfg.SMTP)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)

	if !emailService.IsConfigured() {
		log.Warn().Msg("SMTP is not configured; notification emails are skipped")
	}
	notifier, err := notify.New(cfg.NotifyWorkers, emailService, hub, userService, cfg.FrontendURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := notifier.Close(shutdownTimeout); err != nil {
			log.Warn().Err(err).Msg("notifications still running at shutdown")
		}
	}()

	authService := services.NewAuthService(userService, tokenService, notifier, cfg.ResetCodeTTL, log)
	projectService := services.NewProjectService(db)
	teamService := services.NewTeamService(db, userService)
	taskService := services.NewTaskService(db, userService)
	timesheetService := services.NewTimesheetService(db, userService, teamService, projectService, notifier, log)

	pending := oauth.NewStore()
	var google oauth.Provider
	if cfg.Google.ClientID != "" {
		google = oauth.NewGoogleProvider(cfg.Google)
	}

	scheduler, err := jobs.NewScheduler(log)
	if err != nil {
		return err
	}
	maintenance := append(jobs.CleanupJobs(tokenService), jobs.Job{Name: "oauth-state-cleanup", Run: pending.Purge})
	if err := scheduler.Register(cfg.CleanupInterval, maintenance...); err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop scheduler")
		}
	}()

	routes := handlers.Handlers{
		Auth:      handlers.NewAuthHandler(cfg.FrontendURL, google, pending, userService, authService, tokenService, jwtService),
		User:      handlers.NewUserHandler(userService),
		Project:   handlers.NewProjectHandler(projectService),
		Team:      handlers.NewTeamHandler(teamService, userService),
		Task:      handlers.NewTaskHandler(taskService),
		Timesheet: handlers.NewTimesheetHandler(timesheetService),
		Message:   handlers.NewMessageHandler(userService, notifier),
		SSE:       handlers.NewSSEHandler(hub),
	}

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	handlers.RegisterRoutes(app, routes, jwtService)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           authmw.RequestLog(log, app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
