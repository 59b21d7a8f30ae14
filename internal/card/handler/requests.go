package handler

import (
	"strings"

	dErrors "tapbank/pkg/domain-errors"
)

// HTTP request DTOs. Field names track the wire format the point-of-sale
// firmware already sends; cardUID is accepted as a legacy alias for the
// card identifier.

type RegisterCardRequest struct {
	CardIdentifier string `json:"cardIdentifier"`
	CardUID        string `json:"cardUID"`
	WalletAddress  string `json:"walletAddress"`
	CredentialID   int64  `json:"credentialId"`
	DeviceID       string `json:"deviceId"`
}

func (r *RegisterCardRequest) Normalize() {
	if r == nil {
		return
	}
	r.CardIdentifier = strings.TrimSpace(r.CardIdentifier)
	r.CardUID = strings.TrimSpace(r.CardUID)
	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
	r.DeviceID = strings.TrimSpace(r.DeviceID)
	if r.CardIdentifier == "" {
		r.CardIdentifier = r.CardUID
	}
}

func (r *RegisterCardRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.CardIdentifier == "" {
		return dErrors.New(dErrors.CodeValidation, "cardIdentifier is required")
	}
	if r.WalletAddress == "" {
		return dErrors.New(dErrors.CodeValidation, "walletAddress is required")
	}
	if r.CredentialID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "credentialId must be a positive integer")
	}
	return nil
}
