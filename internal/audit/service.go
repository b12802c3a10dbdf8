// Package audit implements the transaction log: a begin/commit/rollback
// envelope around data mutations that records checksum-protected
// before/after snapshots and verifies them later.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/heartmarshall/kindergarten-backend/internal/config"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

var (
	// ErrTxAlreadyOpen is returned by Begin when the context already carries an audit transaction.
	ErrTxAlreadyOpen = errors.New("audit: transaction already open")
	// ErrNoTransaction is returned by Commit for a nil or finished handle, and
	// by Execute when ctx carries a finished handle.
	ErrNoTransaction = errors.New("audit: no open transaction")
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type recordRepo interface {
	Insert(ctx context.Context, rec domain.AuditRecord) (int64, error)
	TransitionStatus(ctx context.Context, txID string, from, to domain.AuditStatus) (int64, error)
	MarkVerified(ctx context.Context, id int64, at time.Time) (bool, error)
	GetByID(ctx context.Context, id int64) (domain.AuditRecord, error)
	OldestCommitted(ctx context.Context, limit int) ([]domain.AuditRecord, error)
	EntityHistory(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.AuditRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.AuditRecord, error)
	Statistics(ctx context.Context, since time.Time) (domain.AuditStatistics, error)
	DeleteVerifiedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	AbandonPendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, context.Context, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the transaction log.
type Service struct {
	log     *slog.Logger
	records recordRepo
	db      txBeginner
	cfg     config.AuditConfig
	now     func() time.Time
}

// NewService creates a new audit Service.
func NewService(logger *slog.Logger, records recordRepo, db txBeginner, cfg config.AuditConfig) *Service {
	return &Service{
		log:     logger.With("service", "audit"),
		records: records,
		db:      db,
		cfg:     cfg,
		now:     time.Now,
	}
}
