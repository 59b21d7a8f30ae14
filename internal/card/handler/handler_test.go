package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tapbank/internal/card/service"
	"tapbank/internal/card/store"
	"tapbank/internal/ledger/mocks"
	"tapbank/internal/platform/middleware"
)

const adminToken = "secret-token"

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	ledger *mocks.MockClient
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.ledger = mocks.NewMockClient(ctrl)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	svc := service.New(store.NewInMemory(), s.ledger, service.WithLogger(logger))

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdminToken(adminToken, logger))
		h.RegisterAdmin(admin)
	})
	h.RegisterDebug(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) register(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/register-card", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestRegisterCard() {
	s.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)

	rec := s.register(`{"cardIdentifier":"CRD103492","walletAddress":"0xAbC","credentialId":7,"deviceId":"esp32-lobby"}`)

	s.Equal(http.StatusCreated, rec.Code)
	var res RegisterCardResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	s.Equal("registered", res.Status)
	s.Equal("CRD103492", res.Card.CardID)
	s.True(res.Card.Active)
}

func (s *HandlerSuite) TestRegisterCard_LegacyUIDField() {
	s.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)

	rec := s.register(`{"cardUID":"04A1B2C3","walletAddress":"0xAbC","credentialId":7}`)

	s.Equal(http.StatusCreated, rec.Code)
	var res RegisterCardResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	s.Equal("04A1B2C3", res.Card.CardID)
}

func (s *HandlerSuite) TestRegisterCard_MissingWallet() {
	rec := s.register(`{"cardIdentifier":"CRD1","credentialId":7}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestRegisterCard_RevokedCredential() {
	s.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(9)).Return(false, nil)

	rec := s.register(`{"cardIdentifier":"CRD1","walletAddress":"0xAbC","credentialId":9}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestRegisterCard_Duplicate() {
	s.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)

	rec := s.register(`{"cardIdentifier":"CRD1","walletAddress":"0xAbC","credentialId":7}`)
	s.Equal(http.StatusCreated, rec.Code)

	rec = s.register(`{"cardIdentifier":"CRD1","walletAddress":"0xDeF","credentialId":7}`)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestGetCard_NotFound() {
	req := httptest.NewRequest(http.MethodGet, "/card/missing", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestDeactivate_RequiresAdminToken() {
	req := httptest.NewRequest(http.MethodDelete, "/card/CRD1", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestDeactivate() {
	s.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	rec := s.register(`{"cardIdentifier":"CRD1","walletAddress":"0xAbC","credentialId":7}`)
	s.Require().Equal(http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/card/CRD1", nil)
	req.Header.Set(middleware.AdminTokenHeader, adminToken)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlerSuite) TestListByWallet() {
	s.ledger.EXPECT().IsCredentialValid(gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	s.register(`{"cardIdentifier":"CRD1","walletAddress":"0xAbC","credentialId":1}`)
	s.register(`{"cardIdentifier":"CRD2","walletAddress":"0xABC","credentialId":2}`)

	req := httptest.NewRequest(http.MethodGet, "/cards/wallet/0xabc", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	var res CardListResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	s.Equal(2, res.Count)
}
