package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	contract "tapbank/contracts/ledger"
	cardmodels "tapbank/internal/card/models"
	cardstore "tapbank/internal/card/store"
	"tapbank/internal/dispatch/models"
	"tapbank/internal/ledger"
	"tapbank/internal/ledger/mocks"
	posmodels "tapbank/internal/pos/models"
	posservice "tapbank/internal/pos/service"
	posstore "tapbank/internal/pos/store"
	dErrors "tapbank/pkg/domain-errors"
	"tapbank/pkg/platform/middleware/requesttime"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	ledger *mocks.MockClient
	cards  *cardstore.InMemory
	pos    *posservice.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	ledgerClient := mocks.NewMockClient(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cards := cardstore.NewInMemory()
	pos := posservice.New(posstore.NewInMemory(), 60*time.Second, posservice.WithLogger(logger))

	svc := New(cards, pos, ledgerClient, WithLogger(logger))
	return &fixture{svc: svc, ledger: ledgerClient, cards: cards, pos: pos}
}

func (f *fixture) registerCard(t *testing.T, cardID, wallet string, active bool) {
	t.Helper()
	require.NoError(t, f.cards.Register(context.Background(), &cardmodels.Card{
		CardID:        cardID,
		WalletAddress: wallet,
		CredentialID:  7,
		RegisteredAt:  base,
		Active:        active,
	}))
}

func ctxAt(at time.Time) context.Context {
	return requesttime.WithTime(context.Background(), at)
}

func TestDispatch_Transfer(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	f.ledger.EXPECT().AuthorizedTransfer(gomock.Any(), "0xCardHolder", "0xShop", decimalEq(25)).
		Return(&contract.TransferReceipt{TxReference: "0xdeadbeef", BlockNumber: 42}, nil)
	f.ledger.EXPECT().Balance(gomock.Any(), "0xCardHolder").Return(decimal.NewFromInt(75), nil)

	outcome, err := f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:      "CRD1",
		DeviceID:    "esp32-lobby",
		Operation:   models.OpTransfer,
		Amount:      decimal.NewFromInt(25),
		Destination: "0xShop",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OpTransfer, outcome.Operation)
	assert.Equal(t, "0xdeadbeef", outcome.TxReference)
	assert.False(t, outcome.WasOverlaid)
	require.NotNil(t, outcome.Balance)
	assert.True(t, outcome.Balance.Equal(decimal.NewFromInt(75)))

	card, err := f.cards.Find(context.Background(), "CRD1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), card.UseCount)
}

func TestDispatch_UnregisteredCard(t *testing.T) {
	f := newFixture(t)

	_, err := f.pos.Create(ctxAt(base), posservice.CreateParams{
		RequestID:       "TX-1",
		Amount:          decimal.NewFromInt(5),
		MerchantAddress: "0xShop",
	})
	require.NoError(t, err)

	_, err = f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:    "nope",
		Operation: models.OpVerify,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	req, err := f.pos.Status(ctxAt(base), "TX-1")
	require.NoError(t, err)
	assert.Equal(t, posmodels.StatusPending, req.Status)
}

func TestDispatch_DeactivatedCard(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", false)

	_, err := f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:    "CRD1",
		Operation: models.OpVerify,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCardDeactivated))
}

func TestDispatch_RevokedCredentialDoesNotCountUse(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(false, nil)

	_, err := f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:    "CRD1",
		Operation: models.OpVerify,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCredentialInvalid))

	card, findErr := f.cards.Find(context.Background(), "CRD1")
	require.NoError(t, findErr)
	assert.Zero(t, card.UseCount)
}

func TestDispatch_OverlayOverridesVerify(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	_, err := f.pos.Create(ctxAt(base), posservice.CreateParams{
		RequestID:       "pos-1",
		Amount:          decimal.NewFromFloat(12.50),
		MerchantAddress: "0xShop",
		CustomerAddress: "0xcardholder",
	})
	require.NoError(t, err)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	f.ledger.EXPECT().AuthorizedTransfer(gomock.Any(), "0xCardHolder", "0xShop", decimalEqf(12.50)).
		Return(&contract.TransferReceipt{TxReference: "0xfeed"}, nil)
	f.ledger.EXPECT().Balance(gomock.Any(), "0xCardHolder").Return(decimal.NewFromInt(50), nil)

	// The device asked for VERIFY; the parked intent wins.
	outcome, err := f.svc.Dispatch(ctxAt(base.Add(5*time.Second)), models.Command{
		CardID:    "CRD1",
		Operation: models.OpVerify,
	})
	require.NoError(t, err)
	assert.True(t, outcome.WasOverlaid)
	assert.Equal(t, models.OpTransfer, outcome.Operation)
	assert.Equal(t, "pos-1", outcome.PendingRequestID)
	assert.True(t, outcome.Amount.Equal(decimal.NewFromFloat(12.50)))

	settled, err := f.pos.Status(ctxAt(base.Add(6*time.Second)), "pos-1")
	require.NoError(t, err)
	assert.Equal(t, posmodels.StatusCompleted, settled.Status)

	var payload struct {
		TxReference string  `json:"txReference"`
		Amount      string  `json:"amount"`
		Balance     *string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal([]byte(settled.Result), &payload))
	assert.Equal(t, "0xfeed", payload.TxReference)
	assert.Equal(t, "12.5", payload.Amount)
}

func TestDispatch_DepositPolicyFailure(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	f.ledger.EXPECT().Deposit(gomock.Any(), "0xCardHolder", decimalEq(10)).
		Return(nil, ledger.ErrDirectSignatureRequired)

	_, err := f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:    "CRD1",
		Operation: models.OpDeposit,
		Amount:    decimal.NewFromInt(10),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedOperation))
}

func TestDispatch_LedgerFailureSettlesIntentAsFailed(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	_, err := f.pos.Create(ctxAt(base), posservice.CreateParams{
		RequestID:       "pos-1",
		Amount:          decimal.NewFromInt(30),
		MerchantAddress: "0xShop",
		CustomerAddress: "0xCardHolder",
	})
	require.NoError(t, err)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	f.ledger.EXPECT().AuthorizedTransfer(gomock.Any(), "0xCardHolder", "0xShop", decimalEq(30)).
		Return(nil, ledger.ErrExecutionFailed)

	_, err = f.svc.Dispatch(ctxAt(base.Add(time.Second)), models.Command{
		CardID:    "CRD1",
		Operation: models.OpTransfer,
		Amount:    decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLedgerFailure))

	settled, err := f.pos.Status(ctxAt(base.Add(2*time.Second)), "pos-1")
	require.NoError(t, err)
	assert.Equal(t, posmodels.StatusFailed, settled.Status)
	assert.NotEmpty(t, settled.Result)
}

func TestDispatch_CustomerlessIntentNotOverlaid(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	_, err := f.pos.Create(ctxAt(base), posservice.CreateParams{
		RequestID:       "pos-1",
		Amount:          decimal.NewFromInt(500),
		MerchantAddress: "0xShop",
	})
	require.NoError(t, err)

	// No customer on the intent, so the tap runs the requested VERIFY and
	// no transfer is attempted on the tapping wallet's behalf.
	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	f.ledger.EXPECT().CredentialOwner(gomock.Any(), int64(7)).Return("0xCardHolder", nil)
	f.ledger.EXPECT().Balance(gomock.Any(), "0xCardHolder").Return(decimal.NewFromInt(100), nil)

	outcome, err := f.svc.Dispatch(ctxAt(base.Add(5*time.Second)), models.Command{
		CardID:    "CRD1",
		Operation: models.OpVerify,
	})
	require.NoError(t, err)
	assert.False(t, outcome.WasOverlaid)
	assert.Equal(t, models.OpVerify, outcome.Operation)

	parked, err := f.pos.Status(ctxAt(base.Add(6*time.Second)), "pos-1")
	require.NoError(t, err)
	assert.Equal(t, posmodels.StatusPending, parked.Status)
}

func TestDispatch_VerifyOwnerMismatch(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	f.ledger.EXPECT().CredentialOwner(gomock.Any(), int64(7)).Return("0xSomeoneElse", nil)

	_, err := f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:    "CRD1",
		Operation: models.OpVerify,
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCredentialInvalid))
}

func TestDispatch_Verify(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	f.ledger.EXPECT().CredentialOwner(gomock.Any(), int64(7)).Return("0xcardholder", nil)
	f.ledger.EXPECT().Balance(gomock.Any(), "0xCardHolder").Return(decimal.NewFromInt(100), nil)

	outcome, err := f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:    "CRD1",
		Operation: models.OpVerify,
	})
	require.NoError(t, err)
	assert.Empty(t, outcome.TxReference)
	require.NotNil(t, outcome.Balance)
	assert.True(t, outcome.Balance.Equal(decimal.NewFromInt(100)))
}

func TestDispatch_TransferWithoutDestination(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)

	_, err := f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:    "CRD1",
		Operation: models.OpTransfer,
		Amount:    decimal.NewFromInt(5),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestDispatch_BalanceReadFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.registerCard(t, "CRD1", "0xCardHolder", true)

	f.ledger.EXPECT().IsCredentialValid(gomock.Any(), int64(7)).Return(true, nil)
	f.ledger.EXPECT().AuthorizedTransfer(gomock.Any(), "0xCardHolder", "0xShop", decimalEq(5)).
		Return(&contract.TransferReceipt{TxReference: "0xfeed"}, nil)
	f.ledger.EXPECT().Balance(gomock.Any(), "0xCardHolder").
		Return(decimal.Zero, errors.New("gateway timeout"))

	outcome, err := f.svc.Dispatch(ctxAt(base), models.Command{
		CardID:      "CRD1",
		Operation:   models.OpTransfer,
		Amount:      decimal.NewFromInt(5),
		Destination: "0xShop",
	})
	require.NoError(t, err)
	assert.Nil(t, outcome.Balance)
	assert.Equal(t, "0xfeed", outcome.TxReference)
}

// decimalEq matches a decimal argument by numeric value rather than internal
// representation.
func decimalEq(n int64) gomock.Matcher {
	return decimalMatcher{want: decimal.NewFromInt(n)}
}

func decimalEqf(f float64) gomock.Matcher {
	return decimalMatcher{want: decimal.NewFromFloat(f)}
}

type decimalMatcher struct {
	want decimal.Decimal
}

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "decimal equal to " + m.want.String()
}
