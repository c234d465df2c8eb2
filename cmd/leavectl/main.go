// Package main provides leavectl, the operator CLI for the leave engine's
// batch jobs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/hris-leave-engine/internal/app"
	"github.com/cmlabs-hris/hris-leave-engine/internal/config"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-engine/internal/repository/postgresql"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(openPostgres, os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// environment is everything a subcommand may need. Close releases the
// underlying connections.
type environment struct {
	Services *app.Services
	Repos    app.Repositories
	Settings app.Settings
	JWT      jwt.Service
	Close    func()
}

type opener func(ctx context.Context) (*environment, error)

func openPostgres(ctx context.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.PoolSize())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	settings := app.SettingsFromConfig(cfg)
	repos := app.PostgresRepositories(db)
	services, err := app.NewServices(ctx, repos, settings)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &environment{
		Services: services,
		Repos:    repos,
		Settings: settings,
		JWT:      jwt.NewJWTService(cfg.JWT.Secret, cfg.AccessTTL()),
		Close:    db.Close,
	}, nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
