package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cardmodels "tapbank/internal/card/models"
	dispatchmetrics "tapbank/internal/dispatch/metrics"
	"tapbank/internal/dispatch/models"
	"tapbank/internal/ledger"
	posmodels "tapbank/internal/pos/models"
	"tapbank/internal/sentinel"
	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/middleware/requesttime"
)

// CardRegistry is the slice of the card store a dispatch needs.
type CardRegistry interface {
	Find(ctx context.Context, cardID string) (*cardmodels.Card, error)
	RecordUse(ctx context.Context, cardID string, now time.Time) error
}

// PendingRequests is the slice of the point-of-sale lifecycle a dispatch
// needs. Claim returns (nil, nil) when no intent is waiting.
type PendingRequests interface {
	Claim(ctx context.Context, walletAddress string) (*posmodels.PendingRequest, error)
	Complete(ctx context.Context, requestID, result string) error
	Fail(ctx context.Context, requestID, reason string) error
	Release(ctx context.Context, requestID string) error
}

// Service turns a card-tap event into exactly one ledger operation. An
// outstanding point-of-sale intent for the tapping wallet always wins over
// whatever the device asked for.
type Service struct {
	cards   CardRegistry
	pending PendingRequests
	ledger  ledger.Client
	logger  *slog.Logger
	metrics *dispatchmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *dispatchmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(cards CardRegistry, pending PendingRequests, ledgerClient ledger.Client, opts ...Option) *Service {
	s := &Service{
		cards:   cards,
		pending: pending,
		ledger:  ledgerClient,
		logger:  slog.Default(),
		tracer:  otel.Tracer("tapbank/internal/dispatch"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// completionPayload is what a settled point-of-sale entry carries back to the
// polling terminal.
type completionPayload struct {
	TxReference string    `json:"txReference"`
	Amount      string    `json:"amount"`
	Balance     *string   `json:"balance"`
	Timestamp   time.Time `json:"timestamp"`
}

// Dispatch runs the full tap-to-ledger flow. Every failure is terminal for
// this invocation; the caller never retries.
func (s *Service) Dispatch(ctx context.Context, cmd models.Command) (outcome *models.Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "dispatch",
		trace.WithAttributes(
			attribute.String("card.id", cmd.CardID),
			attribute.String("device.id", cmd.DeviceID),
			attribute.String("operation.requested", string(cmd.Operation)),
		))
	defer func() {
		if err != nil {
			span.SetStatus(otelcodes.Error, err.Error())
		}
		span.End()
	}()

	card, err := s.cards.Find(ctx, cmd.CardID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementDispatch(string(cmd.Operation), "card_not_registered")
			return nil, dErrors.New(dErrors.CodeNotFound, "card is not registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve card")
	}
	if !card.Active {
		s.metrics.IncrementDispatch(string(cmd.Operation), "card_deactivated")
		return nil, dErrors.New(dErrors.CodeCardDeactivated, "card has been deactivated")
	}

	valid, err := s.timedCredentialCheck(ctx, card.CredentialID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeLedgerFailure, "failed to check credential validity")
	}
	if !valid {
		s.metrics.IncrementDispatch(string(cmd.Operation), "credential_invalid")
		return nil, dErrors.New(dErrors.CodeCredentialInvalid, "credential is not valid or has been revoked")
	}

	operation := cmd.Operation
	amount := cmd.Amount
	destination := cmd.Destination

	claimed, err := s.pending.Claim(ctx, card.WalletAddress)
	if err != nil {
		return nil, err
	}
	settled := false
	if claimed != nil {
		// A parked intent exists for this wallet: the tap pays the
		// merchant, whatever the device asked for.
		operation = models.OpTransfer
		amount = claimed.Amount
		destination = claimed.MerchantAddress
		span.SetAttributes(
			attribute.Bool("overlay", true),
			attribute.String("pending.request_id", claimed.RequestID),
		)
		s.metrics.IncrementOverlay()
		s.logger.InfoContext(ctx, "pending intent overrides device operation",
			"card_id", card.CardID,
			"request_id", claimed.RequestID,
			"requested_operation", string(cmd.Operation),
			"amount", amount.String())
		defer func() {
			if !settled {
				if relErr := s.pending.Release(ctx, claimed.RequestID); relErr != nil {
					s.logger.ErrorContext(ctx, "failed to release claimed intent",
						"request_id", claimed.RequestID, "error", relErr)
				}
			}
		}()
	}
	span.SetAttributes(attribute.String("operation.effective", string(operation)))

	receipt, err := s.execute(ctx, operation, card, amount, destination)
	if err != nil {
		if claimed != nil {
			settled = true
			if failErr := s.pending.Fail(ctx, claimed.RequestID, err.Error()); failErr != nil {
				s.logger.ErrorContext(ctx, "failed to settle intent as failed",
					"request_id", claimed.RequestID, "error", failErr)
			}
		}
		s.metrics.IncrementDispatch(string(operation), "failed")
		return nil, err
	}

	if recErr := s.cards.RecordUse(ctx, card.CardID, requesttime.Now(ctx)); recErr != nil {
		s.logger.WarnContext(ctx, "failed to record card use", "card_id", card.CardID, "error", recErr)
	}

	outcome = &models.Outcome{
		Operation:   operation,
		Amount:      amount,
		Destination: destination,
		WasOverlaid: claimed != nil,
	}
	if receipt != "" {
		outcome.TxReference = receipt
	}

	if balance, balErr := s.timedBalance(ctx, card.WalletAddress); balErr != nil {
		s.logger.WarnContext(ctx, "balance read failed after dispatch",
			"card_id", card.CardID, "error", balErr)
	} else {
		outcome.Balance = &balance
	}

	if claimed != nil {
		settled = true
		outcome.PendingRequestID = claimed.RequestID
		payload := completionPayload{
			TxReference: outcome.TxReference,
			Amount:      amount.String(),
			Timestamp:   requesttime.Now(ctx),
		}
		if outcome.Balance != nil {
			b := outcome.Balance.String()
			payload.Balance = &b
		}
		raw, _ := json.Marshal(payload)
		if compErr := s.pending.Complete(ctx, claimed.RequestID, string(raw)); compErr != nil {
			s.logger.ErrorContext(ctx, "failed to settle intent as completed",
				"request_id", claimed.RequestID, "error", compErr)
		}
	}

	s.metrics.IncrementDispatch(string(operation), "success")
	s.logger.InfoContext(ctx, "dispatch succeeded",
		"card_id", card.CardID,
		"operation", string(operation),
		"tx_reference", outcome.TxReference,
		"overlaid", outcome.WasOverlaid)

	return outcome, nil
}

// execute performs the single ledger call for the effective operation and
// returns the transaction reference, if the operation produces one.
func (s *Service) execute(ctx context.Context, operation models.Operation, card *cardmodels.Card, amount decimal.Decimal, destination string) (string, error) {
	switch operation {
	case models.OpDeposit:
		if amount.LessThanOrEqual(decimal.Zero) {
			return "", dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
		}
		start := time.Now()
		_, err := s.ledger.Deposit(ctx, card.WalletAddress, amount)
		s.metrics.ObserveLedgerCall("deposit", time.Since(start))
		if err != nil {
			return "", s.mapLedgerError(err, "deposits must be signed directly by the account holder")
		}
		return "", nil

	case models.OpWithdraw:
		if amount.LessThanOrEqual(decimal.Zero) {
			return "", dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
		}
		start := time.Now()
		_, err := s.ledger.Withdraw(ctx, card.WalletAddress, amount)
		s.metrics.ObserveLedgerCall("withdraw", time.Since(start))
		if err != nil {
			return "", s.mapLedgerError(err, "withdrawals must be signed directly by the account holder")
		}
		return "", nil

	case models.OpTransfer:
		if amount.LessThanOrEqual(decimal.Zero) {
			return "", dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
		}
		if destination == "" {
			return "", dErrors.New(dErrors.CodeValidation, "destination address is required")
		}
		start := time.Now()
		receipt, err := s.ledger.AuthorizedTransfer(ctx, card.WalletAddress, destination, amount)
		s.metrics.ObserveLedgerCall("transfer", time.Since(start))
		if err != nil {
			return "", s.mapLedgerError(err, "transfer failed")
		}
		return receipt.TxReference, nil

	case models.OpVerify:
		start := time.Now()
		owner, err := s.ledger.CredentialOwner(ctx, card.CredentialID)
		s.metrics.ObserveLedgerCall("credential_owner", time.Since(start))
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeLedgerFailure, "failed to read credential owner")
		}
		if !strings.EqualFold(owner, card.WalletAddress) {
			return "", dErrors.New(dErrors.CodeCredentialInvalid, "credential owner does not match the card wallet")
		}
		return "", nil
	}

	return "", dErrors.New(dErrors.CodeUnsupportedOperation, "unsupported operation")
}

// mapLedgerError keeps the direct-signature policy failure distinct from a
// real ledger outage.
func (s *Service) mapLedgerError(err error, policyMsg string) error {
	if errors.Is(err, ledger.ErrDirectSignatureRequired) {
		return dErrors.New(dErrors.CodeUnsupportedOperation, policyMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeLedgerFailure, "ledger execution failed")
}

func (s *Service) timedCredentialCheck(ctx context.Context, credentialID int64) (bool, error) {
	start := time.Now()
	valid, err := s.ledger.IsCredentialValid(ctx, credentialID)
	s.metrics.ObserveLedgerCall("credential_valid", time.Since(start))
	return valid, err
}

func (s *Service) timedBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	start := time.Now()
	balance, err := s.ledger.Balance(ctx, address)
	s.metrics.ObserveLedgerCall("balance", time.Since(start))
	return balance, err
}
