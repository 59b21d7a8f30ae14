package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tapbank/internal/dispatch/models"
	"tapbank/internal/platform/middleware"
	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/httputil"
)

// Service runs a card-tap through the full dispatch flow.
type Service interface {
	Dispatch(ctx context.Context, cmd models.Command) (*models.Outcome, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/transaction", h.HandleTransaction)
}

// HandleTransaction is the device tap endpoint.
func (h *Handler) HandleTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TransactionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	operation, err := models.ParseOperation(req.Operation)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnsupportedOperation,
			"operation must be one of DEPOSIT, WITHDRAW, TRANSFER, VERIFY"))
		return
	}

	outcome, err := h.service.Dispatch(ctx, models.Command{
		CardID:      req.CardIdentifier,
		DeviceID:    req.DeviceID,
		Operation:   operation,
		Amount:      req.Amount,
		Destination: req.Destination,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "dispatch failed",
			"error", err,
			"card_id", req.CardIdentifier,
			"operation", req.Operation,
			"request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTransactionResponse(outcome))
}
