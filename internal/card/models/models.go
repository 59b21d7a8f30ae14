package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card binds a physical card identifier to a wallet address and the identity
// credential that gates its use. The identifier is either a hardware-reported
// UID or an assigned token; once registered it is never re-keyed. Deactivation
// flips Active, it never deletes.
type Card struct {
	CardID        string
	WalletAddress string
	CredentialID  int64
	DeviceID      string
	RegisteredAt  time.Time
	Active        bool
	LastUsedAt    *time.Time
	UseCount      int64
}

// CardDetails is a card enriched with live ledger reads. Balance and
// CredentialValid are nil when the ledger could not answer; the registry
// record itself is always present.
type CardDetails struct {
	Card            *Card
	Balance         *decimal.Decimal
	CredentialValid *bool
}

// Clone returns a copy so callers never share the store's internal pointer.
// LastUsedAt is copied by value.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	if c.LastUsedAt != nil {
		t := *c.LastUsedAt
		cp.LastUsedAt = &t
	}
	return &cp
}
