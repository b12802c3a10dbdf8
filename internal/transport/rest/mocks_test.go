package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
	"github.com/heartmarshall/kindergarten-backend/internal/imaging"
)

type imageServiceMock struct {
	ProcessFunc       func(ctx context.Context, u imaging.Upload, entityType string, crop *imaging.CropRegion) (imaging.Asset, error)
	ProcessBase64Func func(ctx context.Context, dataURI, entityType string) (imaging.Asset, error)
	DeleteFunc        func(ctx context.Context, path string) error
}

func (m *imageServiceMock) Process(ctx context.Context, u imaging.Upload, entityType string, crop *imaging.CropRegion) (imaging.Asset, error) {
	return m.ProcessFunc(ctx, u, entityType, crop)
}

func (m *imageServiceMock) ProcessBase64(ctx context.Context, dataURI, entityType string) (imaging.Asset, error) {
	return m.ProcessBase64Func(ctx, dataURI, entityType)
}

func (m *imageServiceMock) Delete(ctx context.Context, path string) error {
	return m.DeleteFunc(ctx, path)
}

func (m *imageServiceMock) URL(path string, thumb bool) string {
	if thumb {
		return "/uploads/thumb/" + path
	}
	return "/uploads/" + path
}

type changelogServiceMock struct {
	RecentFunc    func(ctx context.Context, limit, offset int) ([]domain.ChangelogEntry, error)
	ForEntityFunc func(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.ChangelogEntry, error)
	ByUserFunc    func(ctx context.Context, userID int64, limit, offset int) ([]domain.ChangelogEntry, error)
	ByActionFunc  func(ctx context.Context, action domain.ChangelogAction, limit, offset int) ([]domain.ChangelogEntry, error)
	CountFunc     func(ctx context.Context, f domain.ChangelogFilter) (int64, error)
}

func (m *changelogServiceMock) Recent(ctx context.Context, limit, offset int) ([]domain.ChangelogEntry, error) {
	return m.RecentFunc(ctx, limit, offset)
}

func (m *changelogServiceMock) ForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.ChangelogEntry, error) {
	return m.ForEntityFunc(ctx, entityType, entityID, limit)
}

func (m *changelogServiceMock) ByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ChangelogEntry, error) {
	return m.ByUserFunc(ctx, userID, limit, offset)
}

func (m *changelogServiceMock) ByAction(ctx context.Context, action domain.ChangelogAction, limit, offset int) ([]domain.ChangelogEntry, error) {
	return m.ByActionFunc(ctx, action, limit, offset)
}

func (m *changelogServiceMock) Count(ctx context.Context, f domain.ChangelogFilter) (int64, error) {
	if m.CountFunc == nil {
		return 0, nil
	}
	return m.CountFunc(ctx, f)
}

type auditServiceMock struct {
	EntityHistoryFunc      func(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.AuditRecord, error)
	RecentTransactionsFunc func(ctx context.Context, limit int) ([]domain.AuditRecord, error)
	StatisticsFunc         func(ctx context.Context) (domain.AuditStatistics, error)
}

func (m *auditServiceMock) EntityHistory(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.AuditRecord, error) {
	return m.EntityHistoryFunc(ctx, entityType, entityID, limit)
}

func (m *auditServiceMock) RecentTransactions(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	return m.RecentTransactionsFunc(ctx, limit)
}

func (m *auditServiceMock) Statistics(ctx context.Context) (domain.AuditStatistics, error) {
	return m.StatisticsFunc(ctx)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(images *imageServiceMock, cl *changelogServiceMock, audit *auditServiceMock) http.Handler {
	log := discardLogger()
	if images == nil {
		images = &imageServiceMock{}
	}
	if cl == nil {
		cl = &changelogServiceMock{}
	}
	if audit == nil {
		audit = &auditServiceMock{}
	}
	return NewRouter(Handlers{
		Health:       NewHealthHandler(&dbPingerMock{}, "", "test"),
		Images:       NewImageHandler(images, 1<<20, log),
		Changelog:    NewChangelogHandler(cl, log),
		Transactions: NewTransactionHandler(audit, log),
	}, nil)
}
