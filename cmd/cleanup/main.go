// Command cleanup applies the retention policy of the changelog and the
// transaction log. It is intended to be invoked by an external cron job,
// not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/app"
	"github.com/heartmarshall/kindergarten-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	svc := app.NewServices(logger, pool, cfg)
	failed := false

	if _, err := svc.Changelog.Cleanup(ctx, cfg.Changelog.RetentionDays); err != nil {
		logger.Error("changelog cleanup failed", slog.String("error", err.Error()))
		failed = true
	}

	if _, err := svc.Audit.AbandonStale(ctx, 0); err != nil {
		logger.Error("stale pending reconcile failed", slog.String("error", err.Error()))
		failed = true
	}

	if _, err := svc.Audit.CleanupOldTransactions(ctx, cfg.Audit.RetentionDays); err != nil {
		logger.Error("transaction log cleanup failed", slog.String("error", err.Error()))
		failed = true
	}

	if failed {
		pool.Close()
		os.Exit(1)
	}
	logger.Info("cleanup completed")
}
