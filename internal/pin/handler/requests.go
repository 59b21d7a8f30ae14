package handler

import (
	"encoding/json"
	"strings"

	dErrors "tapbank/pkg/domain-errors"
)

type UploadJSONRequest struct {
	Data json.RawMessage `json:"data"`
	Name string          `json:"name"`
}

func (r *UploadJSONRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
}

func (r *UploadJSONRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return dErrors.New(dErrors.CodeValidation, "data is required")
	}
	return nil
}

type UploadKYCRequest struct {
	KYCData     map[string]any `json:"kycData"`
	UserAddress string         `json:"userAddress"`
}

func (r *UploadKYCRequest) Normalize() {
	if r == nil {
		return
	}
	r.UserAddress = strings.TrimSpace(r.UserAddress)
}

func (r *UploadKYCRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.KYCData) == 0 {
		return dErrors.New(dErrors.CodeValidation, "kycData is required")
	}
	if r.UserAddress == "" {
		return dErrors.New(dErrors.CodeValidation, "userAddress is required")
	}
	return nil
}
