package audit

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kindergarten-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kindergarten-backend/internal/config"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

// ===========================================================================
// In-memory record repository
// ===========================================================================

// memRecords mimics the conditional UPDATEs of the SQL repository.
type memRecords struct {
	mu     sync.Mutex
	rows   []domain.AuditRecord
	nextID int64

	// insertedInTx and committedInTx record whether the call carried a database transaction.
	insertedInTx  []bool
	committedInTx []bool

	InsertErr     error
	TransitionErr map[domain.AuditStatus]error
	lastCutoff    time.Time
}

func (m *memRecords) Insert(ctx context.Context, rec domain.AuditRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, inTx := postgres.TxFromCtx(ctx)
	m.insertedInTx = append(m.insertedInTx, inTx)
	if m.InsertErr != nil {
		return 0, m.InsertErr
	}
	m.nextID++
	rec.ID = m.nextID
	m.rows = append(m.rows, rec)
	return rec.ID, nil
}

func (m *memRecords) TransitionStatus(ctx context.Context, txID string, from, to domain.AuditStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if to == domain.AuditStatusCommitted {
		_, inTx := postgres.TxFromCtx(ctx)
		m.committedInTx = append(m.committedInTx, inTx)
	}
	if err := m.TransitionErr[to]; err != nil {
		return 0, err
	}
	var n int64
	for i := range m.rows {
		if m.rows[i].TransactionID == txID && m.rows[i].Status == from {
			m.rows[i].Status = to
			n++
		}
	}
	return n, nil
}

func (m *memRecords) MarkVerified(_ context.Context, id int64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].Status == domain.AuditStatusCommitted {
			m.rows[i].Status = domain.AuditStatusVerified
			m.rows[i].VerifiedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (m *memRecords) GetByID(_ context.Context, id int64) (domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.AuditRecord{}, domain.ErrNotFound
}

func (m *memRecords) OldestCommitted(_ context.Context, limit int) ([]domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditRecord
	for _, r := range m.rows {
		if r.Status == domain.AuditStatusCommitted && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecords) EntityHistory(_ context.Context, entityType string, entityID int64, limit int) ([]domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditRecord
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		r := m.rows[i]
		if r.EntityType == entityType && r.EntityID != nil && *r.EntityID == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecords) Recent(_ context.Context, limit int) ([]domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.AuditRecord(nil), m.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRecords) Statistics(_ context.Context, since time.Time) (domain.AuditStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCutoff = since
	stats := domain.AuditStatistics{
		ByStatus:    map[domain.AuditStatus]int64{},
		ByOperation: map[domain.AuditOperation]int64{},
	}
	for _, r := range m.rows {
		stats.Total++
		stats.ByStatus[r.Status]++
		stats.ByOperation[r.Operation]++
		if !r.CreatedAt.Before(since) {
			stats.Today++
		}
	}
	return stats, nil
}

func (m *memRecords) DeleteVerifiedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCutoff = cutoff
	var kept []domain.AuditRecord
	var n int64
	for _, r := range m.rows {
		if r.Status == domain.AuditStatusVerified && r.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *memRecords) AbandonPendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCutoff = cutoff
	var n int64
	for i := range m.rows {
		if m.rows[i].Status == domain.AuditStatusPending && m.rows[i].CreatedAt.Before(cutoff) {
			m.rows[i].Status = domain.AuditStatusRolledBack
			n++
		}
	}
	return n, nil
}

func (m *memRecords) statuses() []domain.AuditStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditStatus, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Status
	}
	return out
}

// ===========================================================================
// Helpers
// ===========================================================================

type testDeps struct {
	records *memRecords
	mock    pgxmock.PgxPoolIface
}

var fixedNow = time.Date(2024, 3, 10, 14, 30, 0, 123456789, time.UTC)

func newTestService(t *testing.T) (*Service, testDeps) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	deps := testDeps{records: &memRecords{}, mock: mock}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, deps.records, postgres.NewTxManager(mock), config.AuditConfig{
		RetentionDays:     90,
		VerifyBatchSize:   1000,
		StalePendingAfter: time.Hour,
		HistoryLimit:      50,
	})
	svc.now = func() time.Time { return fixedNow }
	return svc, deps
}

type boxResult struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (b boxResult) EntityID() int64 { return b.ID }
