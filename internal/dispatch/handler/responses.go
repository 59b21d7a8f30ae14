package handler

import (
	"tapbank/internal/dispatch/models"
)

type TransactionResponse struct {
	Status           string  `json:"status"`
	Operation        string  `json:"operation"`
	TxReference      string  `json:"txReference,omitempty"`
	Balance          *string `json:"balance"`
	Amount           string  `json:"amount"`
	Destination      string  `json:"destination,omitempty"`
	WasOverlaid      bool    `json:"wasOverlaid"`
	PendingRequestID string  `json:"pendingRequestId,omitempty"`
}

func toTransactionResponse(o *models.Outcome) *TransactionResponse {
	res := &TransactionResponse{
		Status:           "success",
		Operation:        string(o.Operation),
		TxReference:      o.TxReference,
		Amount:           o.Amount.String(),
		Destination:      o.Destination,
		WasOverlaid:      o.WasOverlaid,
		PendingRequestID: o.PendingRequestID,
	}
	if o.Balance != nil {
		b := o.Balance.String()
		res.Balance = &b
	}
	return res
}
