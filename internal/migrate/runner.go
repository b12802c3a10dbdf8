package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type ledger interface {
	All(ctx context.Context) ([]domain.MigrationRecord, error)
	MaxBatch(ctx context.Context) (int, error)
	ByBatch(ctx context.Context, batch int) ([]domain.MigrationRecord, error)
	Insert(ctx context.Context, name string, batch int) error
	Delete(ctx context.Context, name string) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Runner applies migrations from a registry against one database.
type Runner struct {
	log      *slog.Logger
	db       postgres.Querier
	ledger   ledger
	tx       txManager
	registry *Registry
}

// NewRunner creates a migration runner.
func NewRunner(logger *slog.Logger, db postgres.Querier, l ledger, tx txManager, registry *Registry) *Runner {
	return &Runner{
		log:      logger.With("service", "migrate"),
		db:       db,
		ledger:   l,
		tx:       tx,
		registry: registry,
	}
}

// Migrate applies every pending migration in name order under a single new
// batch number. A failing migration is reported in the results and does not
// stop the rest of the queue. The error is reserved for failures to read
// the ledger.
func (r *Runner) Migrate(ctx context.Context) ([]domain.MigrationResult, error) {
	executed, err := r.executedNames(ctx)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, m := range r.registry.Sorted() {
		if !executed[m.Name] {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	maxBatch, err := r.ledger.MaxBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	batch := maxBatch + 1

	results := make([]domain.MigrationResult, 0, len(pending))
	for _, m := range pending {
		err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
			if err := m.Up(ctx, postgres.QuerierFromCtx(ctx, r.db)); err != nil {
				return err
			}
			return r.ledger.Insert(ctx, m.Name, batch)
		})
		if err != nil {
			r.log.ErrorContext(ctx, "migration failed",
				slog.String("migration", m.Name),
				slog.String("error", err.Error()),
			)
			results = append(results, failed(m.Name, err))
			continue
		}

		r.log.InfoContext(ctx, "migrated", slog.String("migration", m.Name), slog.Int("batch", batch))
		results = append(results, domain.MigrationResult{
			Name:    m.Name,
			Status:  domain.MigrationStatusSuccess,
			Message: "Migrated",
		})
	}

	return results, nil
}

// Rollback reverts the last batch, newest migration first. Ledger rows whose
// migration is no longer registered are reported as errors and left in place.
func (r *Runner) Rollback(ctx context.Context) ([]domain.MigrationResult, error) {
	batch, err := r.ledger.MaxBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("rollback: %w", err)
	}
	if batch == 0 {
		return nil, nil
	}

	records, err := r.ledger.ByBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("rollback: %w", err)
	}

	results := make([]domain.MigrationResult, 0, len(records))
	for _, rec := range records {
		m, ok := r.registry.Get(rec.Name)
		if !ok {
			r.log.WarnContext(ctx, "migration not registered", slog.String("migration", rec.Name))
			results = append(results, domain.MigrationResult{
				Name:    rec.Name,
				Status:  domain.MigrationStatusError,
				Message: "migration not found",
			})
			continue
		}

		err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
			if err := m.Down(ctx, postgres.QuerierFromCtx(ctx, r.db)); err != nil {
				return err
			}
			return r.ledger.Delete(ctx, m.Name)
		})
		if err != nil {
			r.log.ErrorContext(ctx, "rollback failed",
				slog.String("migration", m.Name),
				slog.String("error", err.Error()),
			)
			results = append(results, failed(m.Name, err))
			continue
		}

		r.log.InfoContext(ctx, "rolled back", slog.String("migration", m.Name), slog.Int("batch", batch))
		results = append(results, domain.MigrationResult{
			Name:    m.Name,
			Status:  domain.MigrationStatusSuccess,
			Message: "Rolled back",
		})
	}

	return results, nil
}

// Status reports every registered migration as executed or pending, in name order.
func (r *Runner) Status(ctx context.Context) ([]domain.MigrationInfo, error) {
	records, err := r.ledger.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	byName := make(map[string]domain.MigrationRecord, len(records))
	for _, rec := range records {
		byName[rec.Name] = rec
	}

	sorted := r.registry.Sorted()
	infos := make([]domain.MigrationInfo, 0, len(sorted))
	for _, m := range sorted {
		info := domain.MigrationInfo{Name: m.Name, State: domain.MigrationStatePending}
		if rec, ok := byName[m.Name]; ok {
			executedAt := rec.ExecutedAt
			info.State = domain.MigrationStateExecuted
			info.Batch = rec.Batch
			info.ExecutedAt = &executedAt
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (r *Runner) executedNames(ctx context.Context) (map[string]bool, error) {
	records, err := r.ledger.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make(map[string]bool, len(records))
	for _, rec := range records {
		names[rec.Name] = true
	}
	return names, nil
}

func failed(name string, err error) domain.MigrationResult {
	return domain.MigrationResult{
		Name:    name,
		Status:  domain.MigrationStatusError,
		Message: err.Error(),
	}
}
