package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tapbank/internal/card/models"
	"tapbank/internal/card/service"
	"tapbank/internal/platform/middleware"
	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/httputil"
)

// Service defines the card operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Register(ctx context.Context, params service.RegisterParams) (*models.Card, error)
	Get(ctx context.Context, cardID string) (*models.CardDetails, error)
	Deactivate(ctx context.Context, cardID string) error
	ListByWallet(ctx context.Context, walletAddress string) ([]*models.Card, error)
	All(ctx context.Context) ([]*models.Card, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the device-facing card routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register-card", h.HandleRegisterCard)
	r.Get("/card/{cardID}", h.HandleGetCard)
	r.Get("/cards/wallet/{address}", h.HandleListByWallet)
}

// RegisterAdmin mounts routes that require the admin token.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/card/{cardID}", h.HandleDeactivateCard)
}

// RegisterDebug mounts inspection routes for lab use.
func (h *Handler) RegisterDebug(r chi.Router) {
	r.Get("/debug/cards", h.HandleListAll)
}

// HandleRegisterCard binds a card identifier to a wallet and credential.
func (h *Handler) HandleRegisterCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterCardRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	card, err := h.service.Register(ctx, service.RegisterParams{
		CardID:        req.CardIdentifier,
		WalletAddress: req.WalletAddress,
		CredentialID:  req.CredentialID,
		DeviceID:      req.DeviceID,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "register card failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &RegisterCardResponse{
		Status: "registered",
		Card:   toCardResponse(card),
	})
}

// HandleGetCard returns the card with live ledger enrichment.
func (h *Handler) HandleGetCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cardID := chi.URLParam(r, "cardID")

	details, err := h.service.Get(ctx, cardID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCardDetailsResponse(details))
}

// HandleDeactivateCard flips the card inactive. The record stays for audit.
func (h *Handler) HandleDeactivateCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	cardID := chi.URLParam(r, "cardID")

	if err := h.service.Deactivate(ctx, cardID); err != nil {
		h.logger.ErrorContext(ctx, "deactivate card failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":         "deactivated",
		"cardIdentifier": cardID,
	})
}

// HandleListByWallet returns every card bound to the wallet address.
func (h *Handler) HandleListByWallet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")
	if address == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "wallet address required"))
		return
	}

	cards, err := h.service.ListByWallet(ctx, address)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toCardListResponse(cards))
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	cards, err := h.service.All(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCardListResponse(cards))
}
