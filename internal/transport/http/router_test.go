package httptransport

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	cardhandler "tapbank/internal/card/handler"
	cardservice "tapbank/internal/card/service"
	cardstore "tapbank/internal/card/store"
	dispatchhandler "tapbank/internal/dispatch/handler"
	dispatchservice "tapbank/internal/dispatch/service"
	"tapbank/internal/ledger/mocks"
	pinhandler "tapbank/internal/pin/handler"
	"tapbank/internal/pin/pinata"
	"tapbank/internal/platform/health"
	"tapbank/internal/platform/middleware"
	poshandler "tapbank/internal/pos/handler"
	posservice "tapbank/internal/pos/service"
	posstore "tapbank/internal/pos/store"
)

const (
	deviceKey  = "device-secret"
	adminToken = "admin-secret"
)

// RouterSuite exercises the assembled surface: middleware ordering, auth
// boundaries, and that every module is reachable where it should be.
type RouterSuite struct {
	suite.Suite
	router http.Handler
	ledger *mocks.MockClient
}

func (s *RouterSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ledger = mocks.NewMockClient(ctrl)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	cards := cardstore.NewInMemory()
	pending := posstore.NewInMemory()

	cardSvc := cardservice.New(cards, s.ledger, cardservice.WithLogger(logger))
	posSvc := posservice.New(pending, 60*time.Second, posservice.WithLogger(logger))
	dispatchSvc := dispatchservice.New(cards, posSvc, s.ledger, dispatchservice.WithLogger(logger))
	pinner := pinata.New("http://127.0.0.1:1", "", "http://127.0.0.1:1")

	s.router = NewRouter(
		Config{
			DeviceAuth: middleware.DeviceAuthConfig{Key: deviceKey},
			AdminToken: adminToken,
		},
		Handlers{
			Card:     cardhandler.New(cardSvc, logger),
			POS:      poshandler.New(posSvc, logger),
			Dispatch: dispatchhandler.New(dispatchSvc, logger),
			Pin:      pinhandler.New(pinner, logger),
			Health:   health.New("test"),
		},
		logger,
	)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestMetricsExposed() {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestDeviceSurfaceRequiresKey() {
	req := httptest.NewRequest(http.MethodPost, "/api/iot/transaction",
		bytes.NewBufferString(`{"cardIdentifier":"CRD1","operation":"VERIFY"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestRegisterCardThroughFullStack() {
	s.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/iot/register-card",
		bytes.NewBufferString(`{"cardIdentifier":"CRD1","walletAddress":"0xAbC","credentialId":7}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusCreated, rec.Code)
}

func (s *RouterSuite) TestTerminalRoutesNeedNoDeviceKey() {
	req := httptest.NewRequest(http.MethodPost, "/api/iot/pending-transaction",
		bytes.NewBufferString(`{"requestId":"TX-1","amount":5,"merchantAddress":"0xShop"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/iot/transaction-status/TX-1", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestWalletPollRequiresDeviceKey() {
	req := httptest.NewRequest(http.MethodGet, "/api/iot/pending-transaction/0xAbC", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	req.Header.Set(middleware.DeviceKeyHeader, deviceKey)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestDebugSurfaceRequiresAdminToken() {
	req := httptest.NewRequest(http.MethodGet, "/api/iot/debug/pending-transactions", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	req.Header.Set(middleware.AdminTokenHeader, adminToken)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestContentTypeEnforcedOnJSONRoutes() {
	req := httptest.NewRequest(http.MethodPost, "/api/iot/register-card",
		bytes.NewBufferString(`{"cardIdentifier":"CRD1"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnsupportedMediaType, rec.Code)
}
