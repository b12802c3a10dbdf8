package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

// Tx is an open audit transaction. It wraps one database transaction and
// groups every audit record written while it is open.
type Tx struct {
	id  string
	ctx context.Context
	db  pgx.Tx

	mu   sync.Mutex
	done bool
}

// ID returns the transaction identifier shared by its audit records.
func (t *Tx) ID() string { return t.id }

// Context returns a context carrying both the audit transaction and the
// database transaction. Repositories called with it join the transaction.
func (t *Tx) Context() context.Context { return t.ctx }

// finish marks the handle as used. Returns false if it already was.
func (t *Tx) finish() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// finished reports whether Commit or Rollback already ran.
func (t *Tx) finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

type txCtxKey struct{}

// FromContext returns the audit transaction carried by ctx, if any.
func FromContext(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txCtxKey{}).(*Tx)
	return tx, ok
}

// Begin opens a new audit transaction. Only one may be open per context.
func (s *Service) Begin(ctx context.Context) (*Tx, error) {
	if _, ok := FromContext(ctx); ok {
		return nil, ErrTxAlreadyOpen
	}

	id, err := newTransactionID(s.now())
	if err != nil {
		return nil, err
	}

	dbTx, txCtx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: begin: %w", err)
	}

	tx := &Tx{id: id, db: dbTx}
	tx.ctx = context.WithValue(txCtx, txCtxKey{}, tx)

	s.log.DebugContext(ctx, "transaction started", slog.String("transaction_id", id))
	return tx, nil
}

// Commit marks the pending records of tx as committed and commits the
// database transaction. The status change runs inside the database
// transaction, so records are committed exactly when the data is. On any
// failure the rollback path runs and the error is returned.
func (s *Service) Commit(ctx context.Context, tx *Tx) error {
	if tx == nil || !tx.finish() {
		return ErrNoTransaction
	}

	if _, err := s.records.TransitionStatus(tx.ctx, tx.id, domain.AuditStatusPending, domain.AuditStatusCommitted); err != nil {
		s.abort(ctx, tx)
		return fmt.Errorf("audit: commit %s: %w", tx.id, err)
	}

	if err := tx.db.Commit(ctx); err != nil {
		s.abort(ctx, tx)
		return fmt.Errorf("audit: commit %s: %w", tx.id, err)
	}

	s.log.DebugContext(ctx, "transaction committed", slog.String("transaction_id", tx.id))
	return nil
}

// Rollback rolls back the database transaction and marks the pending
// records of tx as rolled_back. Returns false for a nil or finished handle.
// Bookkeeping failures are logged, never returned.
func (s *Service) Rollback(ctx context.Context, tx *Tx) bool {
	if tx == nil || !tx.finish() {
		return false
	}
	s.abort(ctx, tx)
	return true
}

// abort releases the database transaction first: a failed commit may still
// hold row locks on the records updated below.
func (s *Service) abort(ctx context.Context, tx *Tx) {
	if err := tx.db.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.log.ErrorContext(ctx, "database rollback failed",
			slog.String("transaction_id", tx.id),
			slog.String("error", err.Error()),
		)
	}

	detached := postgres.WithoutTx(ctx)
	if _, err := s.records.TransitionStatus(detached, tx.id, domain.AuditStatusPending, domain.AuditStatusRolledBack); err != nil {
		s.log.ErrorContext(ctx, "mark rolled back failed",
			slog.String("transaction_id", tx.id),
			slog.String("error", err.Error()),
		)
		return
	}

	s.log.DebugContext(ctx, "transaction rolled back", slog.String("transaction_id", tx.id))
}
