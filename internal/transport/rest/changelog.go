package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/kindergarten-backend/internal/changelog"
	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

type changelogService interface {
	Recent(ctx context.Context, limit, offset int) ([]domain.ChangelogEntry, error)
	ForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]domain.ChangelogEntry, error)
	ByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.ChangelogEntry, error)
	ByAction(ctx context.Context, action domain.ChangelogAction, limit, offset int) ([]domain.ChangelogEntry, error)
	Count(ctx context.Context, f domain.ChangelogFilter) (int64, error)
}

// ChangelogHandler serves read-only changelog endpoints.
type ChangelogHandler struct {
	changelog changelogService
	log       *slog.Logger
}

// NewChangelogHandler creates a ChangelogHandler.
func NewChangelogHandler(svc changelogService, logger *slog.Logger) *ChangelogHandler {
	return &ChangelogHandler{
		changelog: svc,
		log:       logger.With("handler", "changelog"),
	}
}

type changelogEntryResponse struct {
	ID              int64          `json:"id"`
	UserID          *int64         `json:"user_id"`
	EntityType      string         `json:"entity_type"`
	EntityTypeLabel string         `json:"entity_type_label"`
	EntityID        int64          `json:"entity_id"`
	EntityName      string         `json:"entity_name"`
	Action          string         `json:"action"`
	ActionLabel     string         `json:"action_label"`
	Changes         map[string]any `json:"changes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

type changelogListResponse struct {
	Items []changelogEntryResponse `json:"items"`
	Total int64                    `json:"total"`
}

// List handles GET /api/changelog?limit=&offset=&user_id=&action=.
// user_id and action are mutually exclusive; user_id wins.
func (h *ChangelogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	var (
		entries []domain.ChangelogEntry
		filter  domain.ChangelogFilter
	)
	q := r.URL.Query()
	switch {
	case q.Get("user_id") != "":
		userID, perr := strconv.ParseInt(q.Get("user_id"), 10, 64)
		if perr != nil || userID <= 0 {
			writeError(w, http.StatusBadRequest, "user_id must be a positive integer")
			return
		}
		filter.UserID = userID
		entries, err = h.changelog.ByUser(r.Context(), userID, limit, offset)
	case q.Get("action") != "":
		filter.Action = domain.ChangelogAction(q.Get("action"))
		entries, err = h.changelog.ByAction(r.Context(), filter.Action, limit, offset)
	default:
		entries, err = h.changelog.Recent(r.Context(), limit, offset)
	}
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	total, err := h.changelog.Count(r.Context(), filter)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, changelogListResponse{Items: toChangelogResponses(entries), Total: total})
}

// ForEntity handles GET /api/changelog/{type}/{id}?limit=.
func (h *ChangelogHandler) ForEntity(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.changelog.ForEntity(r.Context(), r.PathValue("type"), id, limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChangelogResponses(entries))
}

func toChangelogResponses(entries []domain.ChangelogEntry) []changelogEntryResponse {
	out := make([]changelogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, changelogEntryResponse{
			ID:              e.ID,
			UserID:          e.UserID,
			EntityType:      e.EntityType,
			EntityTypeLabel: changelog.EntityTypeLabel(e.EntityType),
			EntityID:        e.EntityID,
			EntityName:      e.EntityName,
			Action:          string(e.Action),
			ActionLabel:     changelog.ActionLabel(e.Action),
			Changes:         e.Changes,
			CreatedAt:       e.CreatedAt,
		})
	}
	return out
}
