package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/kindergarten-backend/migrations"
)

// ApplySchema brings the bookkeeping schema (migrations, transactions,
// changelog tables) up to date using the embedded goose files.
// goose requires *sql.DB, so a short-lived database/sql handle is opened
// on the same DSN.
func ApplySchema(ctx context.Context, dsn string) error {
	return applySchemaFS(ctx, dsn, migrations.FS)
}

func applySchemaFS(ctx context.Context, dsn string, fsys fs.FS) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
