package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

type auditService interface {
	EntityHistory(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.AuditRecord, error)
	RecentTransactions(ctx context.Context, limit int) ([]domain.AuditRecord, error)
	Statistics(ctx context.Context) (domain.AuditStatistics, error)
}

// TransactionHandler serves read-only transaction log endpoints.
type TransactionHandler struct {
	audit auditService
	log   *slog.Logger
}

// NewTransactionHandler creates a TransactionHandler.
func NewTransactionHandler(svc auditService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		audit: svc,
		log:   logger.With("handler", "transactions"),
	}
}

type auditRecordResponse struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	UserID        *int64          `json:"user_id"`
	EntityType    string          `json:"entity_type"`
	EntityID      *int64          `json:"entity_id"`
	Operation     string          `json:"operation"`
	DataBefore    json.RawMessage `json:"data_before"`
	DataAfter     json.RawMessage `json:"data_after"`
	Checksum      string          `json:"checksum"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	VerifiedAt    *time.Time      `json:"verified_at"`
}

type statisticsResponse struct {
	Total       int64            `json:"total"`
	Today       int64            `json:"today"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByOperation map[string]int64 `json:"by_operation"`
}

// Stats handles GET /api/transactions/stats.
func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.audit.Statistics(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := statisticsResponse{
		Total:       stats.Total,
		Today:       stats.Today,
		ByStatus:    make(map[string]int64, len(stats.ByStatus)),
		ByOperation: make(map[string]int64, len(stats.ByOperation)),
	}
	for k, v := range stats.ByStatus {
		resp.ByStatus[string(k)] = v
	}
	for k, v := range stats.ByOperation {
		resp.ByOperation[string(k)] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

// Recent handles GET /api/transactions?limit=.
func (h *TransactionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	records, err := h.audit.RecentTransactions(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponses(records))
}

// History handles GET /api/transactions/{type}/{id}?limit=.
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	records, err := h.audit.EntityHistory(r.Context(), r.PathValue("type"), id, limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditResponses(records))
}

func toAuditResponses(records []domain.AuditRecord) []auditRecordResponse {
	out := make([]auditRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, auditRecordResponse{
			ID:            rec.ID,
			TransactionID: rec.TransactionID,
			UserID:        rec.UserID,
			EntityType:    rec.EntityType,
			EntityID:      rec.EntityID,
			Operation:     string(rec.Operation),
			DataBefore:    nullJSON(rec.DataBefore),
			DataAfter:     nullJSON(rec.DataAfter),
			Checksum:      rec.Checksum,
			Status:        string(rec.Status),
			CreatedAt:     rec.CreatedAt,
			VerifiedAt:    rec.VerifiedAt,
		})
	}
	return out
}

// nullJSON keeps empty snapshots valid JSON.
func nullJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
