package handler

import (
	"time"

	"tapbank/internal/pos/models"
)

type PendingRequestResponse struct {
	RequestID       string    `json:"requestId"`
	Amount          string    `json:"amount"`
	MerchantAddress string    `json:"merchantAddress"`
	CustomerAddress string    `json:"customerAddress,omitempty"`
	Status          string    `json:"status"`
	Result          string    `json:"result,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

type CreatePendingResponse struct {
	Status           string    `json:"status"`
	RequestID        string    `json:"requestId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	ExpiresInSeconds int64     `json:"expiresInSeconds"`
}

type PendingListResponse struct {
	Count    int                       `json:"count"`
	Requests []*PendingRequestResponse `json:"requests"`
}

type ClearPendingResponse struct {
	Status  string `json:"status"`
	Removed int    `json:"removed"`
}

func toPendingResponse(p *models.PendingRequest) *PendingRequestResponse {
	return &PendingRequestResponse{
		RequestID:       p.RequestID,
		Amount:          p.Amount.String(),
		MerchantAddress: p.MerchantAddress,
		CustomerAddress: p.CustomerAddress,
		Status:          string(p.Status),
		Result:          p.Result,
		CreatedAt:       p.CreatedAt,
		ExpiresAt:       p.ExpiresAt,
	}
}

func toPendingListResponse(reqs []*models.PendingRequest) *PendingListResponse {
	out := make([]*PendingRequestResponse, 0, len(reqs))
	for _, p := range reqs {
		out = append(out, toPendingResponse(p))
	}
	return &PendingListResponse{Count: len(out), Requests: out}
}
