package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	posmetrics "tapbank/internal/pos/metrics"
	"tapbank/internal/pos/models"
	"tapbank/internal/pos/store"
	"tapbank/internal/sentinel"
	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/middleware/requesttime"
)

// CreateParams carries the validated inputs for parking a payment intent.
type CreateParams struct {
	RequestID       string
	Amount          decimal.Decimal
	MerchantAddress string
	CustomerAddress string
}

// Service manages the pending-request lifecycle: terminals park intents,
// card taps claim them, the dispatcher settles them, and a background sweep
// keeps the store bounded.
type Service struct {
	pending store.Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics *posmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *posmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(pending store.Store, ttl time.Duration, opts ...Option) *Service {
	s := &Service{pending: pending, ttl: ttl, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create parks a payment intent. The terminal may supply its own request
// identifier; a blank one gets a generated UUID. The intent expires a fixed
// window after creation whether or not anyone taps.
func (s *Service) Create(ctx context.Context, params CreateParams) (*models.PendingRequest, error) {
	params.RequestID = strings.TrimSpace(params.RequestID)
	if params.RequestID == "" {
		params.RequestID = uuid.New().String()
	}
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	if params.MerchantAddress == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "merchantAddress is required")
	}

	now := requesttime.Now(ctx)
	req := &models.PendingRequest{
		RequestID:       params.RequestID,
		Amount:          params.Amount,
		MerchantAddress: params.MerchantAddress,
		CustomerAddress: params.CustomerAddress,
		Status:          models.StatusPending,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.ttl),
	}

	if err := s.pending.Put(ctx, req, now); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			return nil, dErrors.New(dErrors.CodeConflict, "request identifier already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to park pending request")
	}

	s.logger.InfoContext(ctx, "pending request created",
		"request_id", req.RequestID,
		"merchant", req.MerchantAddress,
		"amount", req.Amount.String(),
		"expires_at", req.ExpiresAt)
	s.metrics.IncrementCreated()

	return req, nil
}

// Status returns the request by identifier. Expired requests are
// indistinguishable from ones that never existed.
func (s *Service) Status(ctx context.Context, requestID string) (*models.PendingRequest, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request identifier required")
	}
	req, err := s.pending.Status(ctx, requestID, requesttime.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no pending request with that identifier")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read pending request")
	}
	return req, nil
}

// PendingByWallet lists live intents addressed to the wallet, for device
// polling.
func (s *Service) PendingByWallet(ctx context.Context, walletAddress string) ([]*models.PendingRequest, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallet address required")
	}
	reqs, err := s.pending.PendingByWallet(ctx, walletAddress, requesttime.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending requests")
	}
	return reqs, nil
}

// Claim hands the oldest live intent for the wallet to a dispatch, or
// (nil, nil) when no intent is waiting. The claim keeps the entry away from
// concurrent taps until Complete, Fail, or Release.
func (s *Service) Claim(ctx context.Context, walletAddress string) (*models.PendingRequest, error) {
	req, err := s.pending.ClaimByWallet(ctx, walletAddress, requesttime.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim pending request")
	}
	s.metrics.IncrementClaimed()
	return req, nil
}

// Complete settles a claimed intent with the ledger transaction reference.
func (s *Service) Complete(ctx context.Context, requestID, txReference string) error {
	if err := s.pending.Complete(ctx, requestID, txReference); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete pending request")
	}
	s.metrics.IncrementFinished("completed")
	return nil
}

// Fail settles a claimed intent with the failure reason.
func (s *Service) Fail(ctx context.Context, requestID, reason string) error {
	if err := s.pending.Fail(ctx, requestID, reason); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to fail pending request")
	}
	s.metrics.IncrementFinished("failed")
	return nil
}

// Release puts a claimed intent back up for grabs.
func (s *Service) Release(ctx context.Context, requestID string) error {
	if err := s.pending.Release(ctx, requestID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to release pending request")
	}
	return nil
}

// DebugList returns every entry regardless of state.
func (s *Service) DebugList(ctx context.Context) ([]*models.PendingRequest, error) {
	reqs, err := s.pending.All(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list entries")
	}
	return reqs, nil
}

// DebugClear drops every entry and reports the count.
func (s *Service) DebugClear(ctx context.Context) (int, error) {
	n, err := s.pending.Clear(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear entries")
	}
	s.logger.InfoContext(ctx, "pending store cleared", "removed", n)
	return n, nil
}

// RunSweeper periodically removes expired and stale terminal entries until
// the context is canceled. Lazy expiry on reads stays authoritative; this
// only bounds memory.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			removed, err := s.pending.Sweep(ctx, now)
			if err != nil {
				s.logger.ErrorContext(ctx, "pending sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.DebugContext(ctx, "pending sweep", "removed", removed)
				s.metrics.AddSwept(removed)
			}
		}
	}
}
