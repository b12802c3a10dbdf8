package main

import (
	"context"
	"fmt"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/app"
	"github.com/heartmarshall/kindergarten-backend/internal/config"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

// withRunner loads config, ensures the bookkeeping schema exists and hands
// a migration runner to fn. The pool is closed afterwards.
func withRunner(ctx context.Context, fn func(*migrate.Runner) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg.Log)

	if err := postgres.ApplySchema(ctx, cfg.Database.DSN); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(app.NewServices(logger, pool, cfg).Migrations)
}
