package store

import (
	"context"
	"time"

	"tapbank/internal/card/models"
)

// Store is the authoritative card-identifier → account binding.
// Implementations are process-local; registrations do not survive a restart.
type Store interface {
	// Register inserts a new card. Returns sentinel.ErrDuplicate if the card
	// identifier is already present; the existing record is left untouched.
	Register(ctx context.Context, card *models.Card) error

	// Find returns the card or sentinel.ErrNotFound.
	Find(ctx context.Context, cardID string) (*models.Card, error)

	// RecordUse bumps the use counter and stamps last-used. A missing card is
	// a silent no-op, mirroring the loose behavior the devices rely on.
	RecordUse(ctx context.Context, cardID string, now time.Time) error

	// Deactivate flips the card inactive. Idempotent on an already-inactive
	// card; sentinel.ErrNotFound if the card was never registered.
	Deactivate(ctx context.Context, cardID string) error

	// FindByWallet returns all cards bound to the wallet, matched
	// case-insensitively. Order is unspecified.
	FindByWallet(ctx context.Context, walletAddress string) ([]*models.Card, error)

	// All returns every registered card. Order is unspecified.
	All(ctx context.Context) ([]*models.Card, error)
}
