package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Operation is what a tap asks the ledger to do. The set is closed; anything
// else is rejected before touching the ledger.
type Operation string

const (
	OpDeposit  Operation = "DEPOSIT"
	OpWithdraw Operation = "WITHDRAW"
	OpTransfer Operation = "TRANSFER"
	OpVerify   Operation = "VERIFY"
)

// ParseOperation normalizes and checks a device-supplied operation string.
func ParseOperation(raw string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(raw)))
	switch op {
	case OpDeposit, OpWithdraw, OpTransfer, OpVerify:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", raw)
}

// Command is a card-tap event as received from a device, after parsing.
type Command struct {
	CardID      string
	DeviceID    string
	Operation   Operation
	Amount      decimal.Decimal
	Destination string
}

// Outcome is the settled result of one dispatch. Balance is nil when the
// post-operation read could not be served; the operation itself still
// succeeded.
type Outcome struct {
	Operation        Operation
	TxReference      string
	Balance          *decimal.Decimal
	Amount           decimal.Decimal
	Destination      string
	WasOverlaid      bool
	PendingRequestID string
}
