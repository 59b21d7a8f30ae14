package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapbank/pkg/secrets"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireDeviceKey_Match(t *testing.T) {
	mw := RequireDeviceKey(DeviceAuthConfig{Key: "sekrit"}, discardLogger())

	r := httptest.NewRequest(http.MethodPost, "/transaction", nil)
	r.Header.Set(DeviceKeyHeader, "sekrit")
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireDeviceKey_Mismatch(t *testing.T) {
	mw := RequireDeviceKey(DeviceAuthConfig{Key: "sekrit"}, discardLogger())

	r := httptest.NewRequest(http.MethodPost, "/transaction", nil)
	r.Header.Set(DeviceKeyHeader, "wrong")
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestRequireDeviceKey_MissingHeader(t *testing.T) {
	mw := RequireDeviceKey(DeviceAuthConfig{Key: "sekrit"}, discardLogger())

	r := httptest.NewRequest(http.MethodPost, "/transaction", nil)
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireDeviceKey_NoKeyConfiguredRejects(t *testing.T) {
	mw := RequireDeviceKey(DeviceAuthConfig{}, discardLogger())

	r := httptest.NewRequest(http.MethodPost, "/transaction", nil)
	r.Header.Set(DeviceKeyHeader, "anything")
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireDeviceKey_BcryptHash(t *testing.T) {
	hash, err := secrets.Hash("sekrit")
	require.NoError(t, err)

	mw := RequireDeviceKey(DeviceAuthConfig{KeyHash: hash}, discardLogger())

	r := httptest.NewRequest(http.MethodPost, "/transaction", nil)
	r.Header.Set(DeviceKeyHeader, "sekrit")
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/transaction", nil)
	r.Header.Set(DeviceKeyHeader, "wrong")
	w = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminToken(t *testing.T) {
	mw := RequireAdminToken("admin-token", discardLogger())

	r := httptest.NewRequest(http.MethodDelete, "/card/CRD1", nil)
	r.Header.Set(AdminTokenHeader, "admin-token")
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	r = httptest.NewRequest(http.MethodDelete, "/card/CRD1", nil)
	w = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
