package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tapbank/internal/platform/middleware"
	"tapbank/internal/pos/models"
	"tapbank/internal/pos/service"
	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/httputil"
	"tapbank/pkg/platform/middleware/requesttime"
)

// Service defines the pending-request operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, params service.CreateParams) (*models.PendingRequest, error)
	Status(ctx context.Context, requestID string) (*models.PendingRequest, error)
	PendingByWallet(ctx context.Context, walletAddress string) ([]*models.PendingRequest, error)
	DebugList(ctx context.Context) ([]*models.PendingRequest, error)
	DebugClear(ctx context.Context) (int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the terminal-facing routes: creating intents and polling
// their status. These are called by the point-of-sale frontend, not by card
// reader devices.
func (h *Handler) Register(r chi.Router) {
	r.Post("/pending-transaction", h.HandleCreatePending)
	r.Get("/transaction-status/{requestID}", h.HandleStatus)
}

// RegisterDevice mounts the wallet poll used by card readers between taps.
func (h *Handler) RegisterDevice(r chi.Router) {
	r.Get("/pending-transaction/{address}", h.HandlePendingByWallet)
}

// RegisterDebug mounts inspection routes for lab use.
func (h *Handler) RegisterDebug(r chi.Router) {
	r.Get("/debug/pending-transactions", h.HandleDebugList)
	r.Delete("/debug/clear-pending", h.HandleDebugClear)
}

// HandleCreatePending parks a payment intent waiting for a card tap.
func (h *Handler) HandleCreatePending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreatePendingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.Create(ctx, service.CreateParams{
		RequestID:       req.RequestID,
		Amount:          req.Amount,
		MerchantAddress: req.MerchantAddress,
		CustomerAddress: req.CustomerAddress,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "create pending request failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	now := requesttime.Now(ctx)
	httputil.WriteJSON(w, http.StatusCreated, &CreatePendingResponse{
		Status:           "created",
		RequestID:        created.RequestID,
		ExpiresAt:        created.ExpiresAt,
		ExpiresInSeconds: int64(created.ExpiresAt.Sub(now).Seconds()),
	})
}

// HandleStatus is the terminal's poll loop. Expired requests read as 404.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := chi.URLParam(r, "requestID")

	req, err := h.service.Status(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toPendingResponse(req))
}

// HandlePendingByWallet lists live intents addressed to the wallet.
func (h *Handler) HandlePendingByWallet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")
	if address == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "wallet address required"))
		return
	}

	reqs, err := h.service.PendingByWallet(ctx, address)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toPendingListResponse(reqs))
}

func (h *Handler) HandleDebugList(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.DebugList(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPendingListResponse(reqs))
}

func (h *Handler) HandleDebugClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := h.service.DebugClear(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ClearPendingResponse{
		Status:  "cleared",
		Removed: n,
	})
}
