package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/httputil"
)

// AdminTokenHeader authenticates bank-dashboard operations (card
// deactivation, debug surface).
const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken guards admin-only routes with a static token.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AdminTokenHeader)
			// Constant-time comparison to prevent timing attacks.
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(r.Context(), "admin token mismatch",
					"request_id", GetRequestID(r.Context()),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
