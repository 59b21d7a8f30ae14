// Package ledger defines the capability set the gateway consumes from the
// external ledger: credential validity and ownership checks, balance reads,
// and the bank-authorized transfer path. The smart contract itself is an
// external collaborator; only this interface is ours.
package ledger

//go:generate mockgen -source=ledger.go -destination=mocks/mocks.go -package=mocks Client

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	contract "tapbank/contracts/ledger"
)

// ErrDirectSignatureRequired is the structured policy failure for deposits and
// withdrawals: the contract requires the end user to sign those directly, so a
// gateway-initiated attempt always fails. This is intentional policy, not an
// outage.
var ErrDirectSignatureRequired = errors.New("operation must be signed directly by the account holder")

// ErrExecutionFailed wraps any failure reported by the chain gateway while
// executing a transfer. Callers surface it as a ledger execution failure and
// never retry.
var ErrExecutionFailed = errors.New("ledger execution failed")

// Client is the consumed ledger capability set.
type Client interface {
	// IsCredentialValid reports whether the identity credential is currently
	// valid (issued and not revoked).
	IsCredentialValid(ctx context.Context, credentialID int64) (bool, error)

	// CredentialOwner returns the wallet address owning the credential.
	CredentialOwner(ctx context.Context, credentialID int64) (string, error)

	// Balance returns the internal-ledger balance for the address.
	Balance(ctx context.Context, address string) (decimal.Decimal, error)

	// Deposit always returns ErrDirectSignatureRequired; the bank cannot
	// deposit on a user's behalf.
	Deposit(ctx context.Context, address string, amount decimal.Decimal) (*contract.TransferReceipt, error)

	// Withdraw always returns ErrDirectSignatureRequired; the bank cannot
	// withdraw on a user's behalf.
	Withdraw(ctx context.Context, address string, amount decimal.Decimal) (*contract.TransferReceipt, error)

	// AuthorizedTransfer moves funds from a verified cardholder to a merchant
	// using the bank's service account. The one operation the gateway can
	// execute end to end.
	AuthorizedTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (*contract.TransferReceipt, error)

	// Health reports whether the chain gateway is reachable.
	Health(ctx context.Context) error
}
