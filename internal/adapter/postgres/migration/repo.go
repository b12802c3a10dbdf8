// Package migration persists the applied-migration ledger.
package migration

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

const table = "migrations"

// Repo provides access to the migrations table.
type Repo struct {
	db postgres.Querier
}

// New creates a new migration ledger repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// All returns every applied migration ordered by batch then name.
func (r *Repo) All(ctx context.Context) ([]domain.MigrationRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var records []domain.MigrationRecord
	b := postgres.Builder().
		Select("id", "migration", "batch", "executed_at").
		From(table).
		OrderBy("batch ASC", "migration ASC")
	if err := postgres.Select(ctx, q, &records, b); err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	return records, nil
}

// MaxBatch returns the highest batch number, or 0 when the ledger is empty.
func (r *Repo) MaxBatch(ctx context.Context) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var batch int
	b := postgres.Builder().Select("COALESCE(MAX(batch), 0)").From(table)
	if err := postgres.Get(ctx, q, &batch, b); err != nil {
		return 0, fmt.Errorf("max batch: %w", err)
	}
	return batch, nil
}

// ByBatch returns the migrations of one batch, most recently applied first.
func (r *Repo) ByBatch(ctx context.Context, batch int) ([]domain.MigrationRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var records []domain.MigrationRecord
	b := postgres.Builder().
		Select("id", "migration", "batch", "executed_at").
		From(table).
		Where(sq.Eq{"batch": batch}).
		OrderBy("executed_at DESC", "id DESC")
	if err := postgres.Select(ctx, q, &records, b); err != nil {
		return nil, fmt.Errorf("list batch %d: %w", batch, err)
	}
	return records, nil
}

// Insert records a migration as applied in batch.
func (r *Repo) Insert(ctx context.Context, name string, batch int) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Insert(table).
		Columns("migration", "batch").
		Values(name, batch)
	if _, err := postgres.Exec(ctx, q, b); err != nil {
		return postgres.MapError(err, "migration", name)
	}
	return nil
}

// Delete removes the ledger row of name.
func (r *Repo) Delete(ctx context.Context, name string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().Delete(table).Where(sq.Eq{"migration": name})
	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return postgres.MapError(err, "migration", name)
	}
	if n == 0 {
		return fmt.Errorf("migration %s: %w", name, domain.ErrNotFound)
	}
	return nil
}
