package handler

import (
	"time"

	"tapbank/internal/card/models"
)

type CardResponse struct {
	CardID        string     `json:"cardIdentifier"`
	WalletAddress string     `json:"walletAddress"`
	CredentialID  int64      `json:"credentialId"`
	DeviceID      string     `json:"deviceId,omitempty"`
	RegisteredAt  time.Time  `json:"registeredAt"`
	Active        bool       `json:"active"`
	LastUsedAt    *time.Time `json:"lastUsedAt,omitempty"`
	UseCount      int64      `json:"useCount"`
}

type RegisterCardResponse struct {
	Status string        `json:"status"`
	Card   *CardResponse `json:"card"`
}

type CardDetailsResponse struct {
	Card            *CardResponse `json:"card"`
	Balance         *string       `json:"balance"`
	CredentialValid *bool         `json:"credentialValid"`
}

type CardListResponse struct {
	Count int             `json:"count"`
	Cards []*CardResponse `json:"cards"`
}

func toCardResponse(c *models.Card) *CardResponse {
	return &CardResponse{
		CardID:        c.CardID,
		WalletAddress: c.WalletAddress,
		CredentialID:  c.CredentialID,
		DeviceID:      c.DeviceID,
		RegisteredAt:  c.RegisteredAt,
		Active:        c.Active,
		LastUsedAt:    c.LastUsedAt,
		UseCount:      c.UseCount,
	}
}

func toCardDetailsResponse(d *models.CardDetails) *CardDetailsResponse {
	res := &CardDetailsResponse{
		Card:            toCardResponse(d.Card),
		CredentialValid: d.CredentialValid,
	}
	if d.Balance != nil {
		s := d.Balance.String()
		res.Balance = &s
	}
	return res
}

func toCardListResponse(cards []*models.Card) *CardListResponse {
	out := make([]*CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	return &CardListResponse{Count: len(out), Cards: out}
}
