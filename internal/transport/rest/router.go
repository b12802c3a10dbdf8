package rest

import (
	"net/http"

	"github.com/heartmarshall/kindergarten-backend/internal/transport/middleware"
)

// Handlers groups the REST handlers mounted by NewRouter.
type Handlers struct {
	Health       *HealthHandler
	Images       *ImageHandler
	Changelog    *ChangelogHandler
	Transactions *TransactionHandler
}

// NewRouter registers every endpoint. uploads wraps the write endpoints of
// the image API (rate limiting).
func NewRouter(h Handlers, uploads middleware.Middleware) *http.ServeMux {
	if uploads == nil {
		uploads = middleware.Chain()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	mux.Handle("POST /api/images/{type}", middleware.Handle(h.Images.Upload, uploads))
	mux.Handle("POST /api/images/{type}/base64", middleware.Handle(h.Images.UploadBase64, uploads))
	mux.HandleFunc("DELETE /api/images", h.Images.Delete)

	mux.HandleFunc("GET /api/changelog", h.Changelog.List)
	mux.HandleFunc("GET /api/changelog/{type}/{id}", h.Changelog.ForEntity)

	mux.HandleFunc("GET /api/transactions", h.Transactions.Recent)
	mux.HandleFunc("GET /api/transactions/stats", h.Transactions.Stats)
	mux.HandleFunc("GET /api/transactions/{type}/{id}", h.Transactions.History)

	return mux
}
