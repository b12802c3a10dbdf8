// Package changelog implements the changelog repository using PostgreSQL.
// Entries are append-only; only retention cleanup removes them.
package changelog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

const table = "changelog"

var columns = []string{
	"id", "user_id", "entity_type", "entity_id", "entity_name", "action", "changes", "created_at",
}

// Repo provides changelog persistence.
type Repo struct {
	db postgres.Querier
}

// New creates a new changelog repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Insert stores entry and returns its id. Inside a transaction the insert
// runs in a savepoint: a failed write leaves the caller's transaction intact.
func (r *Repo) Insert(ctx context.Context, entry domain.ChangelogEntry) (int64, error) {
	var changes any
	if len(entry.Changes) > 0 {
		raw, err := json.Marshal(entry.Changes)
		if err != nil {
			return 0, fmt.Errorf("changelog marshal changes: %w", err)
		}
		changes = string(raw)
	}

	b := postgres.Builder().
		Insert(table).
		Columns("user_id", "entity_type", "entity_id", "entity_name", "action", "changes", "created_at").
		Values(entry.UserID, entry.EntityType, entry.EntityID, entry.EntityName, string(entry.Action), changes, entry.CreatedAt).
		Suffix("RETURNING id")

	var id int64
	err := postgres.Savepoint(ctx, r.db, func(q postgres.Querier) error {
		return postgres.Get(ctx, q, &id, b)
	})
	if err != nil {
		return 0, postgres.MapError(err, "changelog", entry.EntityID)
	}
	return id, nil
}

// Recent returns entries newest first.
func (r *Repo) Recent(ctx context.Context, limit, offset int) ([]domain.ChangelogEntry, error) {
	return r.list(ctx, nil, limit, offset)
}

// ForEntity returns the history of one entity, newest first.
func (r *Repo) ForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.ChangelogEntry, error) {
	return r.list(ctx, sq.Eq{"entity_type": entityType, "entity_id": entityID}, limit, 0)
}

// ByUser returns entries written by userID, newest first.
func (r *Repo) ByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ChangelogEntry, error) {
	return r.list(ctx, sq.Eq{"user_id": userID}, limit, offset)
}

// ByAction returns entries of one action, newest first.
func (r *Repo) ByAction(ctx context.Context, action domain.ChangelogAction, limit, offset int) ([]domain.ChangelogEntry, error) {
	return r.list(ctx, sq.Eq{"action": string(action)}, limit, offset)
}

// Count returns the number of entries matching f.
func (r *Repo) Count(ctx context.Context, f domain.ChangelogFilter) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var n int64
	b := postgres.Builder().Select("COUNT(*)").From(table)
	if eq := filterToSql(f); len(eq) > 0 {
		b = b.Where(eq)
	}
	if err := postgres.Get(ctx, q, &n, b); err != nil {
		return 0, fmt.Errorf("count changelog: %w", err)
	}
	return n, nil
}

// DeleteBefore removes entries created before cutoff.
func (r *Repo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().Delete(table).Where(sq.Lt{"created_at": cutoff})
	n, err := postgres.Exec(ctx, q, b)
	if err != nil {
		return 0, fmt.Errorf("delete changelog: %w", err)
	}
	return n, nil
}

func (r *Repo) list(ctx context.Context, where sq.Eq, limit, offset int) ([]domain.ChangelogEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	b := postgres.Builder().
		Select(columns...).
		From(table).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
	if len(where) > 0 {
		b = b.Where(where)
	}
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}

	var entries []domain.ChangelogEntry
	if err := postgres.Select(ctx, q, &entries, b); err != nil {
		return nil, fmt.Errorf("list changelog: %w", err)
	}
	return entries, nil
}

func filterToSql(f domain.ChangelogFilter) sq.Eq {
	eq := sq.Eq{}
	if f.EntityType != "" {
		eq["entity_type"] = f.EntityType
	}
	if f.EntityID > 0 {
		eq["entity_id"] = f.EntityID
	}
	if f.UserID > 0 {
		eq["user_id"] = f.UserID
	}
	if f.Action != "" {
		eq["action"] = string(f.Action)
	}
	return eq
}
