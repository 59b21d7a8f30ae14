package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	cardmetrics "tapbank/internal/card/metrics"
	"tapbank/internal/card/models"
	"tapbank/internal/card/store"
	"tapbank/internal/ledger"
	"tapbank/internal/sentinel"
	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/middleware/requesttime"
)

// RegisterParams carries the validated inputs for a card registration.
type RegisterParams struct {
	CardID        string
	WalletAddress string
	CredentialID  int64
	DeviceID      string
}

// Service orchestrates the card registry: registrations are gated on a live
// credential check, reads are enriched with ledger state on a best-effort
// basis.
type Service struct {
	cards   store.Store
	ledger  ledger.Client
	logger  *slog.Logger
	metrics *cardmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *cardmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(cards store.Store, ledgerClient ledger.Client, opts ...Option) *Service {
	s := &Service{cards: cards, ledger: ledgerClient, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register binds a card identifier to a wallet and credential. The credential
// must be currently valid; a revoked or never-issued credential rejects the
// registration outright rather than parking a dead card in the registry.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.Card, error) {
	params.CardID = strings.TrimSpace(params.CardID)
	params.WalletAddress = strings.TrimSpace(params.WalletAddress)

	// Duplicate check first, so a taken identifier reads as a conflict even
	// when the credential is revoked or the ledger is unreachable.
	if _, err := s.cards.Find(ctx, params.CardID); err == nil {
		s.metrics.IncrementRejected("duplicate")
		return nil, dErrors.New(dErrors.CodeConflict, "card is already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check card registry")
	}

	valid, err := s.ledger.IsCredentialValid(ctx, params.CredentialID)
	if err != nil {
		s.metrics.IncrementRejected("ledger_unreachable")
		return nil, dErrors.Wrap(err, dErrors.CodeLedgerFailure, "failed to check credential validity")
	}
	if !valid {
		s.metrics.IncrementRejected("credential_invalid")
		return nil, dErrors.New(dErrors.CodeValidation, "credential is not valid or has been revoked")
	}

	card := &models.Card{
		CardID:        params.CardID,
		WalletAddress: params.WalletAddress,
		CredentialID:  params.CredentialID,
		DeviceID:      params.DeviceID,
		RegisteredAt:  requesttime.Now(ctx),
		Active:        true,
	}

	if err := s.cards.Register(ctx, card); err != nil {
		if errors.Is(err, sentinel.ErrDuplicate) {
			s.metrics.IncrementRejected("duplicate")
			return nil, dErrors.New(dErrors.CodeConflict, "card is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register card")
	}

	s.logger.InfoContext(ctx, "card registered",
		"card_id", card.CardID,
		"wallet", card.WalletAddress,
		"credential_id", card.CredentialID)
	s.metrics.IncrementRegistered()

	return card, nil
}

// Get returns the card enriched with its current balance and credential
// validity. Ledger failures degrade the enrichment to nil instead of failing
// the lookup; the registry record is the authoritative part of the answer.
func (s *Service) Get(ctx context.Context, cardID string) (*models.CardDetails, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "card identifier required")
	}

	card, err := s.cards.Find(ctx, cardID)
	if err != nil {
		return nil, wrapCardErr(err, "failed to load card")
	}

	details := &models.CardDetails{Card: card}

	if balance, err := s.ledger.Balance(ctx, card.WalletAddress); err != nil {
		s.logger.WarnContext(ctx, "balance read failed during card lookup",
			"card_id", cardID, "error", err)
	} else {
		details.Balance = &balance
	}

	if valid, err := s.ledger.IsCredentialValid(ctx, card.CredentialID); err != nil {
		s.logger.WarnContext(ctx, "credential check failed during card lookup",
			"card_id", cardID, "error", err)
	} else {
		details.CredentialValid = &valid
	}

	return details, nil
}

// Deactivate flips the card inactive. Safe to repeat.
func (s *Service) Deactivate(ctx context.Context, cardID string) error {
	if strings.TrimSpace(cardID) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "card identifier required")
	}
	if err := s.cards.Deactivate(ctx, cardID); err != nil {
		return wrapCardErr(err, "failed to deactivate card")
	}
	s.logger.InfoContext(ctx, "card deactivated", "card_id", cardID)
	s.metrics.IncrementDeactivated()
	return nil
}

// ListByWallet returns every card bound to the wallet address.
func (s *Service) ListByWallet(ctx context.Context, walletAddress string) ([]*models.Card, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "wallet address required")
	}
	cards, err := s.cards.FindByWallet(ctx, walletAddress)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cards")
	}
	return cards, nil
}

// All returns the full registry contents.
func (s *Service) All(ctx context.Context) ([]*models.Card, error) {
	cards, err := s.cards.All(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cards")
	}
	return cards, nil
}

func wrapCardErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "card not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
