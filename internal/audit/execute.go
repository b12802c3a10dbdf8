package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
	"github.com/heartmarshall/kindergarten-backend/pkg/ctxutil"
)

// Operation is the mutation wrapped by Execute. ctx carries the database
// transaction; repositories called with it join the transaction.
type Operation func(ctx context.Context) (any, error)

// EntityIdentifier is implemented by operation results that know the id of
// the entity they describe.
type EntityIdentifier interface {
	EntityID() int64
}

// Execute runs fn inside an audit transaction and records one audit entry
// for it.
//
// When ctx carries a transaction opened by Begin, fn joins it and the
// caller stays responsible for Commit or Rollback. Otherwise Execute opens
// its own transaction, commits it when fn succeeds and rolls it back when
// fn fails or panics.
//
// Errors returned by fn are passed back unchanged. The entity id is taken
// from an integer result of a create, the "id" key of a map result, an
// EntityIdentifier result, or else from dataBefore.
func (s *Service) Execute(
	ctx context.Context,
	entityType string,
	op domain.AuditOperation,
	fn Operation,
	dataBefore any,
) (any, error) {
	if !op.IsValid() {
		return nil, domain.NewValidationError("operation", "unknown audit operation "+strconv.Quote(string(op)))
	}

	if tx, ok := FromContext(ctx); ok {
		if tx.finished() {
			return nil, ErrNoTransaction
		}
		return s.run(ctx, tx, entityType, op, fn, dataBefore)
	}

	tx, err := s.Begin(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			s.Rollback(ctx, tx)
			panic(r)
		}
	}()

	result, err := s.run(tx.Context(), tx, entityType, op, fn, dataBefore)
	if err != nil {
		s.Rollback(ctx, tx)
		return nil, err
	}

	if err := s.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) run(
	ctx context.Context,
	tx *Tx,
	entityType string,
	op domain.AuditOperation,
	fn Operation,
	dataBefore any,
) (any, error) {
	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.buildRecord(ctx, tx.id, entityType, op, result, dataBefore)
	if err != nil {
		return nil, err
	}

	id, err := s.records.Insert(postgres.WithoutTx(ctx), rec)
	if err != nil {
		s.log.ErrorContext(ctx, "audit record insert failed",
			slog.String("transaction_id", tx.id),
			slog.String("entity_type", entityType),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("audit: record %s: %w", tx.id, err)
	}

	s.log.DebugContext(ctx, "audit record written",
		slog.String("transaction_id", tx.id),
		slog.Int64("record_id", id),
		slog.String("entity_type", entityType),
		slog.String("operation", string(op)),
	)
	return result, nil
}

func (s *Service) buildRecord(
	ctx context.Context,
	txID, entityType string,
	op domain.AuditOperation,
	result, dataBefore any,
) (domain.AuditRecord, error) {
	before, err := snapshot(dataBefore)
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("audit: encode data_before: %w", err)
	}

	entityID := entityIDOf(op, result)
	if entityID == nil {
		entityID = entityIDOf(domain.AuditOperationOther, dataBefore)
	}

	after, err := afterSnapshot(op, result, entityID)
	if err != nil {
		return domain.AuditRecord{}, fmt.Errorf("audit: encode data_after: %w", err)
	}

	createdAt := normalizeTime(s.now())
	checksum, err := CalculateChecksum(entityType, entityID, op, before, after, createdAt)
	if err != nil {
		return domain.AuditRecord{}, err
	}

	return domain.AuditRecord{
		TransactionID: txID,
		UserID:        ctxutil.UserIDPtrFromCtx(ctx),
		EntityType:    entityType,
		EntityID:      entityID,
		Operation:     op,
		DataBefore:    before,
		DataAfter:     after,
		Checksum:      checksum,
		Status:        domain.AuditStatusPending,
		CreatedAt:     createdAt,
	}, nil
}

// afterSnapshot picks the data_after payload. Deletes have none; a bare
// integer result only carries meaning as the id of a created entity.
func afterSnapshot(op domain.AuditOperation, result any, entityID *int64) (json.RawMessage, error) {
	if op == domain.AuditOperationDelete || result == nil {
		return nil, nil
	}
	if _, ok := asInt64(result); ok {
		if op == domain.AuditOperationCreate && entityID != nil {
			return snapshot(map[string]int64{"id": *entityID})
		}
		return nil, nil
	}
	if _, ok := result.(bool); ok {
		return nil, nil
	}
	return snapshot(result)
}

func entityIDOf(op domain.AuditOperation, v any) *int64 {
	switch r := v.(type) {
	case nil:
		return nil
	case EntityIdentifier:
		id := r.EntityID()
		return positive(id)
	case map[string]any:
		if id, ok := asInt64(r["id"]); ok {
			return positive(id)
		}
		if s, ok := r["id"].(string); ok {
			if id, err := strconv.ParseInt(s, 10, 64); err == nil {
				return positive(id)
			}
		}
		return nil
	}
	if op == domain.AuditOperationCreate {
		if id, ok := asInt64(v); ok {
			return positive(id)
		}
	}
	return nil
}

func positive(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}
