package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	dErrors "tapbank/pkg/domain-errors"
)

// TransactionRequest is a card-tap event from a device. Amount and
// destination are only meaningful for some operations; operation-specific
// checks happen after the overlay decision, not here.
type TransactionRequest struct {
	CardIdentifier string          `json:"cardIdentifier"`
	CardUID        string          `json:"cardUID"`
	DeviceID       string          `json:"deviceId"`
	Operation      string          `json:"operation"`
	Amount         decimal.Decimal `json:"amount"`
	Destination    string          `json:"destination"`
}

func (r *TransactionRequest) Normalize() {
	if r == nil {
		return
	}
	r.CardIdentifier = strings.TrimSpace(r.CardIdentifier)
	r.CardUID = strings.TrimSpace(r.CardUID)
	r.DeviceID = strings.TrimSpace(r.DeviceID)
	r.Operation = strings.ToUpper(strings.TrimSpace(r.Operation))
	r.Destination = strings.TrimSpace(r.Destination)
	if r.CardIdentifier == "" {
		r.CardIdentifier = r.CardUID
	}
}

func (r *TransactionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.CardIdentifier == "" {
		return dErrors.New(dErrors.CodeValidation, "cardIdentifier is required")
	}
	if r.Operation == "" {
		return dErrors.New(dErrors.CodeValidation, "operation is required")
	}
	return nil
}
