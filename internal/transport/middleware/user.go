package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/heartmarshall/kindergarten-backend/pkg/ctxutil"
)

// UserIDHeader is set by the session layer in front of this service.
const UserIDHeader = "X-User-Id"

// UserID copies the acting user from UserIDHeader into the context so audit
// and changelog rows are attributed. A missing header means anonymous; a
// malformed one is rejected with 400.
func UserID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "invalid "+UserIDHeader+" header", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithUserID(r.Context(), id)))
		})
	}
}
