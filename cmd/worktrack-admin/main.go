package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dimitrije/worktrack-api/internal/config"
	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/logger"
	"github.com/dimitrije/worktrack-api/internal/services"
)

var CLI struct {
	CreateUser CreateUserCmd `cmd:"" help:"Create an account without going through the API."`
	SetRole    SetRoleCmd    `cmd:"" help:"Change the role of an existing account."`
	Cleanup    CleanupCmd    `cmd:"" help:"Remove expired refresh tokens and reset codes now."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("worktrack-admin"),
		kong.Description("Operator tasks for the worktrack API database"),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	app := &Context{
		Ctx:    ctx,
		Users:  services.NewUserService(db),
		Tokens: services.NewTokenService(db),
		Log:    log,
		Out:    os.Stdout,
	}
	if err := kctx.Run(app); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		db.Close()
		os.Exit(1)
	}
}
