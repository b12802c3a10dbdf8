package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	changelogrepo "github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres/changelog"
	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres/migration"
	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres/transaction"
	"github.com/heartmarshall/kindergarten-backend/internal/audit"
	"github.com/heartmarshall/kindergarten-backend/internal/changelog"
	"github.com/heartmarshall/kindergarten-backend/internal/config"
	"github.com/heartmarshall/kindergarten-backend/internal/imaging"
	"github.com/heartmarshall/kindergarten-backend/internal/migrate"
)

// Services holds the application services built on one connection pool.
// The server and the CLIs share this wiring.
type Services struct {
	Audit      *audit.Service
	Changelog  *changelog.Service
	Images     *imaging.Processor
	Migrations *migrate.Runner
}

// NewServices wires repositories and services. Migrations use the global
// registry; callers that run them must import the migrations package.
func NewServices(logger *slog.Logger, pool *pgxpool.Pool, cfg *config.Config) *Services {
	txm := postgres.NewTxManager(pool)

	return &Services{
		Audit:      audit.NewService(logger, transaction.New(pool), txm, cfg.Audit),
		Changelog:  changelog.NewService(logger, changelogrepo.New(pool), cfg.Changelog),
		Images:     imaging.NewProcessor(logger, cfg.Images),
		Migrations: migrate.NewRunner(logger, pool, migration.New(pool), txm, migrate.Registered()),
	}
}
