// Package pin relays content to the pinning provider so credential metadata
// and attachments live on IPFS while the provider token stays server-side.
package pin

import (
	"context"
	"errors"
	"io"
)

// ErrPinFailed wraps any failure reported by the pinning provider.
var ErrPinFailed = errors.New("pinning operation failed")

// ErrNotFound means the CID could not be resolved on the configured gateway
// or the single fallback.
var ErrNotFound = errors.New("content not found")

// Receipt describes one successful pin.
type Receipt struct {
	CID       string
	PinSize   int64
	Timestamp string
	URL       string
}

// Item is one entry of the provider's pin list.
type Item struct {
	ID         string
	CID        string
	Size       int64
	DatePinned string
	Name       string
}

// List is a page of pinned items.
type List struct {
	Count int
	Rows  []Item
}

// ListFilters narrows a pin-list query. Zero values fall back to the
// provider defaults (status pinned, first page).
type ListFilters struct {
	Status     string
	PageLimit  int
	PageOffset int
}

// Content is raw bytes fetched from a gateway, with the content type the
// gateway reported.
type Content struct {
	Data        []byte
	ContentType string
}

// Pinner is the capability set consumed from the pinning provider.
type Pinner interface {
	// PinJSON pins an arbitrary JSON document under the given display name.
	PinJSON(ctx context.Context, content any, name string) (*Receipt, error)

	// PinFile pins a raw file stream.
	PinFile(ctx context.Context, file io.Reader, fileName, name string) (*Receipt, error)

	// PinKYC wraps KYC data in the credential metadata envelope and pins it.
	PinKYC(ctx context.Context, kycData map[string]any, userAddress string) (*Receipt, error)

	// Fetch resolves a CID via the configured gateway, falling back to the
	// public gateway exactly once.
	Fetch(ctx context.Context, cid string) (*Content, error)

	// Unpin removes the pin for the CID.
	Unpin(ctx context.Context, cid string) error

	// PinnedList returns a page of the provider's pin list.
	PinnedList(ctx context.Context, filters ListFilters) (*List, error)

	// TestAuth verifies the provider credentials.
	TestAuth(ctx context.Context) error
}
