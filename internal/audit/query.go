package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

// EntityHistory returns the audit records of one entity, newest first.
// A non-positive limit uses the configured default.
func (s *Service) EntityHistory(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.AuditRecord, error) {
	return s.records.EntityHistory(ctx, entityType, entityID, s.limit(limit))
}

// RecentTransactions returns the latest audit records across all entities.
func (s *Service) RecentTransactions(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	return s.records.Recent(ctx, s.limit(limit))
}

// Statistics summarises the log. "Today" starts at local midnight.
func (s *Service) Statistics(ctx context.Context) (domain.AuditStatistics, error) {
	now := s.now()
	y, m, d := now.Date()
	return s.records.Statistics(ctx, time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
}

// CleanupOldTransactions deletes verified records older than daysToKeep days.
func (s *Service) CleanupOldTransactions(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		return 0, domain.NewValidationError("days_to_keep", "must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -daysToKeep)
	n, err := s.records.DeleteVerifiedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit: cleanup: %w", err)
	}

	s.log.InfoContext(ctx, "old transactions removed",
		slog.Int64("deleted", n),
		slog.Int("days_to_keep", daysToKeep),
	)
	return n, nil
}

// AbandonStale marks pending records older than olderThan as rolled_back.
// Such records belong to transactions whose process died before commit or
// rollback. A non-positive olderThan uses the configured threshold.
func (s *Service) AbandonStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		olderThan = s.cfg.StalePendingAfter
	}

	n, err := s.records.AbandonPendingBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("audit: abandon stale: %w", err)
	}

	if n > 0 {
		s.log.WarnContext(ctx, "stale pending transactions rolled back",
			slog.Int64("count", n),
			slog.Duration("older_than", olderThan),
		)
	}
	return n, nil
}

func (s *Service) limit(n int) int {
	if n > 0 {
		return n
	}
	if s.cfg.HistoryLimit > 0 {
		return s.cfg.HistoryLimit
	}
	return 50
}
