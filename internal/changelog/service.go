// Package changelog records a human-readable create/update/delete history of
// entities. Write failures are logged and reported as false; they never
// abort the caller's operation.
package changelog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/kindergarten-backend/internal/config"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
	"github.com/heartmarshall/kindergarten-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type entryRepo interface {
	Insert(ctx context.Context, entry domain.ChangelogEntry) (int64, error)
	Recent(ctx context.Context, limit, offset int) ([]domain.ChangelogEntry, error)
	ForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.ChangelogEntry, error)
	ByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ChangelogEntry, error)
	ByAction(ctx context.Context, action domain.ChangelogAction, limit, offset int) ([]domain.ChangelogEntry, error)
	Count(ctx context.Context, f domain.ChangelogFilter) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the changelog.
type Service struct {
	log     *slog.Logger
	entries entryRepo
	cfg     config.ChangelogConfig
	now     func() time.Time
}

// NewService creates a new changelog Service.
func NewService(logger *slog.Logger, entries entryRepo, cfg config.ChangelogConfig) *Service {
	return &Service{
		log:     logger.With("service", "changelog"),
		entries: entries,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Log writes one entry stamped with the user from ctx. Returns false when
// the entry could not be stored.
func (s *Service) Log(
	ctx context.Context,
	entityType string,
	entityID int64,
	entityName string,
	action domain.ChangelogAction,
	data map[string]any,
) bool {
	if !action.IsValid() {
		s.log.WarnContext(ctx, "changelog: unknown action",
			slog.String("action", string(action)),
			slog.String("entity_type", entityType),
		)
		return false
	}

	_, err := s.entries.Insert(ctx, domain.ChangelogEntry{
		UserID:     ctxutil.UserIDPtrFromCtx(ctx),
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Action:     action,
		Changes:    data,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.log.ErrorContext(ctx, "changelog write failed",
			slog.String("entity_type", entityType),
			slog.Int64("entity_id", entityID),
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// LogCreate records the creation of an entity with its initial data.
func (s *Service) LogCreate(ctx context.Context, entityType string, entityID int64, entityName string, data map[string]any) bool {
	return s.Log(ctx, entityType, entityID, entityName, domain.ChangelogActionCreate, data)
}

// LogUpdate records a field diff. An empty diff writes nothing and succeeds.
func (s *Service) LogUpdate(ctx context.Context, entityType string, entityID int64, entityName string, changes map[string]domain.FieldChange) bool {
	if len(changes) == 0 {
		return true
	}

	data := make(map[string]any, len(changes))
	for field, c := range changes {
		data[field] = c
	}
	return s.Log(ctx, entityType, entityID, entityName, domain.ChangelogActionUpdate, data)
}

// LogDelete records the deletion of an entity with its last known data.
func (s *Service) LogDelete(ctx context.Context, entityType string, entityID int64, entityName string, data map[string]any) bool {
	return s.Log(ctx, entityType, entityID, entityName, domain.ChangelogActionDelete, data)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Recent returns the latest entries.
func (s *Service) Recent(ctx context.Context, limit, offset int) ([]domain.ChangelogEntry, error) {
	return s.entries.Recent(ctx, s.pageSize(limit), max(offset, 0))
}

// ForEntity returns the history of one entity.
func (s *Service) ForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.ChangelogEntry, error) {
	return s.entries.ForEntity(ctx, entityType, entityID, s.pageSize(limit))
}

// ByUser returns entries written by one user.
func (s *Service) ByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ChangelogEntry, error) {
	return s.entries.ByUser(ctx, userID, s.pageSize(limit), max(offset, 0))
}

// ByAction returns entries of one action.
func (s *Service) ByAction(ctx context.Context, action domain.ChangelogAction, limit, offset int) ([]domain.ChangelogEntry, error) {
	if !action.IsValid() {
		return nil, domain.NewValidationError("action", "unknown changelog action")
	}
	return s.entries.ByAction(ctx, action, s.pageSize(limit), max(offset, 0))
}

// Count returns the number of entries matching f.
func (s *Service) Count(ctx context.Context, f domain.ChangelogFilter) (int64, error) {
	return s.entries.Count(ctx, f)
}

// Cleanup deletes entries older than keepDays days.
func (s *Service) Cleanup(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, domain.NewValidationError("keep_days", "must be positive")
	}

	n, err := s.entries.DeleteBefore(ctx, s.now().AddDate(0, 0, -keepDays))
	if err != nil {
		return 0, fmt.Errorf("changelog: cleanup: %w", err)
	}

	s.log.InfoContext(ctx, "old changelog entries removed",
		slog.Int64("deleted", n),
		slog.Int("keep_days", keepDays),
	)
	return n, nil
}

func (s *Service) pageSize(limit int) int {
	if limit > 0 {
		return limit
	}
	if s.cfg.PageSize > 0 {
		return s.cfg.PageSize
	}
	return 50
}
