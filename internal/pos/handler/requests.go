package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	dErrors "tapbank/pkg/domain-errors"
)

// CreatePendingRequest is the wire shape the point-of-sale terminals send.
// Amount accepts a JSON number or string; terminals disagree on which.
type CreatePendingRequest struct {
	RequestID       string          `json:"requestId"`
	Amount          decimal.Decimal `json:"amount"`
	MerchantAddress string          `json:"merchantAddress"`
	CustomerAddress string          `json:"customerAddress"`
}

func (r *CreatePendingRequest) Normalize() {
	if r == nil {
		return
	}
	r.RequestID = strings.TrimSpace(r.RequestID)
	r.MerchantAddress = strings.TrimSpace(r.MerchantAddress)
	r.CustomerAddress = strings.TrimSpace(r.CustomerAddress)
}

func (r *CreatePendingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	if r.MerchantAddress == "" {
		return dErrors.New(dErrors.CodeValidation, "merchantAddress is required")
	}
	return nil
}
