package store

import (
	"context"
	"time"

	"tapbank/internal/pos/models"
)

// Store holds parked point-of-sale payment intents. Implementations are
// process-local; a restart drops every pending request, which the terminals
// tolerate by recreating them.
//
// Expiry is checked lazily against the caller-supplied instant on every read
// and claim. Sweep exists only to bound memory; correctness never depends on
// it having run.
type Store interface {
	// Put parks a new request. Returns sentinel.ErrDuplicate if the request
	// identifier is already present and not yet expired.
	Put(ctx context.Context, req *models.PendingRequest, now time.Time) error

	// Status returns the request by identifier. An expired entry is removed
	// and reported as sentinel.ErrNotFound, exactly like one that never
	// existed.
	Status(ctx context.Context, requestID string, now time.Time) (*models.PendingRequest, error)

	// ClaimByWallet atomically finds the oldest pending, unexpired request
	// whose customer address matches the wallet (case-insensitive) and marks
	// it claimed. Requests without a customer address never match. Returns
	// sentinel.ErrNotFound when nothing matches.
	ClaimByWallet(ctx context.Context, walletAddress string, now time.Time) (*models.PendingRequest, error)

	// Complete marks a claimed request completed with the given result.
	Complete(ctx context.Context, requestID, result string) error

	// Fail marks a claimed request failed with the given reason.
	Fail(ctx context.Context, requestID, reason string) error

	// Release returns a claimed request to pending so another tap can pick
	// it up. Used when a dispatch dies before reaching the ledger.
	Release(ctx context.Context, requestID string) error

	// PendingByWallet lists pending, unexpired requests for the wallet.
	PendingByWallet(ctx context.Context, walletAddress string, now time.Time) ([]*models.PendingRequest, error)

	// All returns every entry regardless of state, for inspection.
	All(ctx context.Context) ([]*models.PendingRequest, error)

	// Clear drops everything and reports how many entries were removed.
	Clear(ctx context.Context) (int, error)

	// Sweep removes entries that expired before the given instant and
	// terminal entries older than the retention window. Returns the number
	// removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
