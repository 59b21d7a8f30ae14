package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tapbank/internal/pin"
	"tapbank/internal/platform/middleware"
	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/httputil"
)

// maxUploadBytes bounds file uploads before they reach the provider.
const maxUploadBytes = 10 << 20

type Handler struct {
	pinner pin.Pinner
	logger *slog.Logger
}

func New(pinner pin.Pinner, logger *slog.Logger) *Handler {
	return &Handler{pinner: pinner, logger: logger}
}

// Register mounts the relay routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/upload/json", h.HandleUploadJSON)
	r.Post("/upload/file", h.HandleUploadFile)
	r.Post("/upload/kyc", h.HandleUploadKYC)
	r.Get("/fetch/{cid}", h.HandleFetch)
	r.Get("/pinned", h.HandlePinnedList)
	r.Get("/test", h.HandleTestAuth)
}

// RegisterAdmin mounts routes that require the admin token.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/unpin/{cid}", h.HandleUnpin)
}

func (h *Handler) HandleUploadJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UploadJSONRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var content any
	if err := json.Unmarshal(req.Data, &content); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "data must be valid JSON"))
		return
	}

	receipt, err := h.pinner.PinJSON(ctx, content, req.Name)
	if err != nil {
		h.writePinError(w, r, "pin json failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toPinResponse(receipt))
}

func (h *Handler) HandleUploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart form with a file field is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file is required"))
		return
	}
	defer file.Close()

	receipt, err := h.pinner.PinFile(ctx, file, header.Filename, r.FormValue("name"))
	if err != nil {
		h.writePinError(w, r, "pin file failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toPinResponse(receipt))
}

func (h *Handler) HandleUploadKYC(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UploadKYCRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	receipt, err := h.pinner.PinKYC(ctx, req.KYCData, req.UserAddress)
	if err != nil {
		h.writePinError(w, r, "pin kyc failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toPinResponse(receipt))
}

// HandleFetch streams the pinned content back with the gateway's content
// type, not a JSON envelope.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid := chi.URLParam(r, "cid")
	if cid == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cid is required"))
		return
	}

	content, err := h.pinner.Fetch(ctx, cid)
	if err != nil {
		if errors.Is(err, pin.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "content not found on any gateway"))
			return
		}
		h.writePinError(w, r, "fetch failed", err)
		return
	}

	contentType := content.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content.Data)
}

func (h *Handler) HandleUnpin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cid := chi.URLParam(r, "cid")
	if cid == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cid is required"))
		return
	}

	if err := h.pinner.Unpin(ctx, cid); err != nil {
		h.writePinError(w, r, "unpin failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "unpinned",
		"cid":    cid,
	})
}

func (h *Handler) HandlePinnedList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filters := pin.ListFilters{Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("pageLimit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.PageLimit = n
		}
	}
	if v := r.URL.Query().Get("pageOffset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filters.PageOffset = n
		}
	}

	list, err := h.pinner.PinnedList(ctx, filters)
	if err != nil {
		h.writePinError(w, r, "pin list failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toPinnedListResponse(list))
}

func (h *Handler) HandleTestAuth(w http.ResponseWriter, r *http.Request) {
	if err := h.pinner.TestAuth(r.Context()); err != nil {
		h.writePinError(w, r, "authentication test failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"authenticated": true,
	})
}

func (h *Handler) writePinError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	h.logger.ErrorContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodePinningFailure, msg))
}
