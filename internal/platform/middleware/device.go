package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/httputil"
	"tapbank/pkg/secrets"
)

// DeviceKeyHeader carries the pre-shared device credential on every IoT call.
const DeviceKeyHeader = "X-Device-API-Key"

// DeviceAuthConfig holds the expected device credential. Exactly one of Key or
// KeyHash is normally set; when both are present the hash wins so a leaked
// plaintext env var cannot silently widen access.
type DeviceAuthConfig struct {
	Key     string
	KeyHash string
}

// RequireDeviceKey authenticates IoT devices by exact match on a pre-shared
// key. Mismatch is terminal for the request: 401, no retries, no backoff.
func RequireDeviceKey(cfg DeviceAuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(DeviceKeyHeader)
			if !deviceKeyValid(cfg, presented) {
				logger.WarnContext(r.Context(), "device key mismatch",
					"request_id", GetRequestID(r.Context()),
					"remote_addr", r.RemoteAddr,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "unauthorized device"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deviceKeyValid(cfg DeviceAuthConfig, presented string) bool {
	if presented == "" {
		return false
	}
	if cfg.KeyHash != "" {
		return secrets.Verify(presented, cfg.KeyHash) == nil
	}
	if cfg.Key == "" {
		// No credential configured: reject everything rather than run open.
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(cfg.Key)) == 1
}
