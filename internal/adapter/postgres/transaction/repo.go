// Package transaction persists audit records of the transaction log.
//
// Like every repository it joins a transaction carried by the context.
// Callers that need a row to outlive the business transaction pass a
// context stripped with postgres.WithoutTx.
package transaction

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

const table = "transactions"

var columns = []string{
	"id", "transaction_id", "user_id", "entity_type", "entity_id", "operation",
	"data_before", "data_after", "checksum", "status", "created_at", "verified_at",
}

// Repo provides audit record persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new transaction log repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Insert stores rec and returns its generated id.
func (r *Repo) Insert(ctx context.Context, rec domain.AuditRecord) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Insert(table).
		Columns("transaction_id", "user_id", "entity_type", "entity_id", "operation",
			"data_before", "data_after", "checksum", "status", "created_at").
		Values(rec.TransactionID, rec.UserID, rec.EntityType, rec.EntityID, string(rec.Operation),
			jsonArg(rec.DataBefore), jsonArg(rec.DataAfter), rec.Checksum, string(rec.Status), rec.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	if err := postgres.Get(ctx, q, &id, b); err != nil {
		return 0, postgres.MapError(err, "transaction", rec.TransactionID)
	}
	return id, nil
}

// TransitionStatus moves every record of txID currently in from to to.
// Returns the number of records changed. Transitions the audit state
// machine does not allow are rejected with domain.ErrValidation.
func (r *Repo) TransitionStatus(ctx context.Context, txID string, from, to domain.AuditStatus) (int64, error) {
	if !from.CanTransitionTo(to) {
		return 0, domain.NewValidationError("status", fmt.Sprintf("cannot move from %s to %s", from, to))
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Update(table).
		Set("status", string(to)).
		Where(sq.Eq{"transaction_id": txID, "status": string(from)})

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return 0, postgres.MapError(err, "transaction", txID)
	}
	return n, nil
}

// MarkVerified moves a committed record to verified. Returns false when the
// record was not in the committed state.
func (r *Repo) MarkVerified(ctx context.Context, id int64, at time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Update(table).
		Set("status", string(domain.AuditStatusVerified)).
		Set("verified_at", at).
		Where(sq.Eq{"id": id, "status": string(domain.AuditStatusCommitted)})

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return false, postgres.MapError(err, "transaction", id)
	}
	return n == 1, nil
}

// DeleteVerifiedBefore removes verified records created before cutoff.
func (r *Repo) DeleteVerifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Delete(table).
		Where(sq.Eq{"status": string(domain.AuditStatusVerified)}).
		Where(sq.Lt{"created_at": cutoff})

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return 0, fmt.Errorf("delete verified transactions: %w", err)
	}
	return n, nil
}

// AbandonPendingBefore marks pending records created before cutoff as rolled_back.
func (r *Repo) AbandonPendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Update(table).
		Set("status", string(domain.AuditStatusRolledBack)).
		Where(sq.Eq{"status": string(domain.AuditStatusPending)}).
		Where(sq.Lt{"created_at": cutoff})

	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return 0, fmt.Errorf("abandon pending transactions: %w", err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns one record.
func (r *Repo) GetByID(ctx context.Context, id int64) (domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var rec domain.AuditRecord
	b := postgres.Builder().Select(columns...).From(table).Where(sq.Eq{"id": id})
	if err := postgres.Get(ctx, q, &rec, b); err != nil {
		return domain.AuditRecord{}, postgres.MapError(err, "transaction", id)
	}
	return rec, nil
}

// ByTransactionID returns the records grouped under txID in insertion order.
func (r *Repo) ByTransactionID(ctx context.Context, txID string) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var recs []domain.AuditRecord
	b := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"transaction_id": txID}).
		OrderBy("id ASC")
	if err := postgres.Select(ctx, q, &recs, b); err != nil {
		return nil, fmt.Errorf("list transaction %s: %w", txID, err)
	}
	return recs, nil
}

// OldestCommitted returns up to limit committed records, oldest first.
func (r *Repo) OldestCommitted(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var recs []domain.AuditRecord
	b := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"status": string(domain.AuditStatusCommitted)}).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit))
	if err := postgres.Select(ctx, q, &recs, b); err != nil {
		return nil, fmt.Errorf("list committed transactions: %w", err)
	}
	return recs, nil
}

// EntityHistory returns the records of one entity, newest first.
func (r *Repo) EntityHistory(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var recs []domain.AuditRecord
	b := postgres.Builder().
		Select(columns...).
		From(table).
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
	if err := postgres.Select(ctx, q, &recs, b); err != nil {
		return nil, fmt.Errorf("entity history %s/%d: %w", entityType, entityID, err)
	}
	return recs, nil
}

// Recent returns the latest records across all entities.
func (r *Repo) Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var recs []domain.AuditRecord
	b := postgres.Builder().
		Select(columns...).
		From(table).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
	if err := postgres.Select(ctx, q, &recs, b); err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return recs, nil
}

type groupCount struct {
	Key   string `db:"key"`
	Count int64  `db:"count"`
}

// Statistics aggregates the log. since is the start of "today".
func (r *Repo) Statistics(ctx context.Context, since time.Time) (domain.AuditStatistics, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	stats := domain.AuditStatistics{
		ByStatus:    make(map[domain.AuditStatus]int64),
		ByOperation: make(map[domain.AuditOperation]int64),
	}

	var byStatus []groupCount
	b := postgres.Builder().
		Select("status AS key", "COUNT(*) AS count").
		From(table).
		GroupBy("status")
	if err := postgres.Select(ctx, q, &byStatus, b); err != nil {
		return stats, fmt.Errorf("statistics by status: %w", err)
	}
	for _, g := range byStatus {
		stats.ByStatus[domain.AuditStatus(g.Key)] = g.Count
		stats.Total += g.Count
	}

	var byOperation []groupCount
	b = postgres.Builder().
		Select("operation AS key", "COUNT(*) AS count").
		From(table).
		GroupBy("operation")
	if err := postgres.Select(ctx, q, &byOperation, b); err != nil {
		return stats, fmt.Errorf("statistics by operation: %w", err)
	}
	for _, g := range byOperation {
		stats.ByOperation[domain.AuditOperation(g.Key)] = g.Count
	}

	b = postgres.Builder().
		Select("COUNT(*)").
		From(table).
		Where(sq.GtOrEq{"created_at": since})
	if err := postgres.Get(ctx, q, &stats.Today, b); err != nil {
		return stats, fmt.Errorf("statistics today: %w", err)
	}

	return stats, nil
}

// jsonArg turns an optional JSON document into a query argument: SQL NULL
// when absent, text otherwise so the server parses it as jsonb.
func jsonArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
