package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a pending point-of-sale request.
type Status string

const (
	// StatusPending means the terminal is waiting for a card tap.
	StatusPending Status = "pending"
	// StatusClaimed means a dispatch in flight holds the request. Claimed
	// entries are invisible to other dispatches until completed, failed, or
	// released.
	StatusClaimed Status = "claimed"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// PendingRequest is a payment intent parked by a point-of-sale terminal,
// waiting for the customer to tap a card. The terminal polls Status by
// request identifier; expiry is a hard timestamp, not a timer.
type PendingRequest struct {
	RequestID       string
	Amount          decimal.Decimal
	MerchantAddress string
	CustomerAddress string
	Status          Status
	Result          string
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// Expired reports whether the request's window has closed at the given
// instant. Only pending and claimed entries can expire; completed and failed
// are terminal.
func (p *PendingRequest) Expired(now time.Time) bool {
	if p.Status == StatusCompleted || p.Status == StatusFailed {
		return false
	}
	return now.After(p.ExpiresAt)
}

// Clone returns a copy so callers never share the store's internal pointer.
func (p *PendingRequest) Clone() *PendingRequest {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
