package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tapbank/internal/pos/models"
	"tapbank/internal/sentinel"
)

// terminalRetention is how long completed and failed entries stay visible to
// status polls before Sweep drops them.
const terminalRetention = 10 * time.Minute

// InMemory keeps pending requests in a map guarded by a single mutex. Claim
// runs its scan and the state flip under the same lock, so two simultaneous
// taps can never both pick up the one pending intent.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]*models.PendingRequest
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[string]*models.PendingRequest),
	}
}

func (s *InMemory) Put(_ context.Context, req *models.PendingRequest, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[req.RequestID]; ok && !existing.Expired(now) {
		return fmt.Errorf("request identifier already in use: %w", sentinel.ErrDuplicate)
	}
	s.entries[req.RequestID] = req.Clone()
	return nil
}

func (s *InMemory) Status(_ context.Context, requestID string, now time.Time) (*models.PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if entry.Expired(now) {
		delete(s.entries, requestID)
		return nil, sentinel.ErrNotFound
	}
	return entry.Clone(), nil
}

func (s *InMemory) ClaimByWallet(_ context.Context, walletAddress string, now time.Time) (*models.PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(walletAddress)
	var oldest *models.PendingRequest
	for _, entry := range s.entries {
		if entry.Status != models.StatusPending || entry.Expired(now) {
			continue
		}
		// Intents without a customer address are never matched to a tap;
		// they sit until the terminal fills in the customer or they expire.
		if entry.CustomerAddress == "" || strings.ToLower(entry.CustomerAddress) != lower {
			continue
		}
		if oldest == nil || entry.CreatedAt.Before(oldest.CreatedAt) {
			oldest = entry
		}
	}
	if oldest == nil {
		return nil, sentinel.ErrNotFound
	}
	oldest.Status = models.StatusClaimed
	return oldest.Clone(), nil
}

func (s *InMemory) Complete(_ context.Context, requestID, result string) error {
	return s.finish(requestID, models.StatusCompleted, result)
}

func (s *InMemory) Fail(_ context.Context, requestID, reason string) error {
	return s.finish(requestID, models.StatusFailed, reason)
}

func (s *InMemory) finish(requestID string, status models.Status, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if entry.Status != models.StatusClaimed {
		return fmt.Errorf("request is %s, not claimed: %w", entry.Status, sentinel.ErrInvalidState)
	}
	entry.Status = status
	entry.Result = result
	return nil
}

func (s *InMemory) Release(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if entry.Status != models.StatusClaimed {
		return fmt.Errorf("request is %s, not claimed: %w", entry.Status, sentinel.ErrInvalidState)
	}
	entry.Status = models.StatusPending
	return nil
}

func (s *InMemory) PendingByWallet(_ context.Context, walletAddress string, now time.Time) ([]*models.PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lower := strings.ToLower(walletAddress)
	var out []*models.PendingRequest
	for _, entry := range s.entries {
		if entry.Status != models.StatusPending || entry.Expired(now) {
			continue
		}
		if strings.ToLower(entry.CustomerAddress) != lower {
			continue
		}
		out = append(out, entry.Clone())
	}
	return out, nil
}

func (s *InMemory) All(_ context.Context) ([]*models.PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.PendingRequest, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry.Clone())
	}
	return out, nil
}

func (s *InMemory) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = make(map[string]*models.PendingRequest)
	return n, nil
}

func (s *InMemory) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		switch {
		case entry.Expired(now):
			delete(s.entries, id)
			removed++
		case entry.Status == models.StatusCompleted || entry.Status == models.StatusFailed:
			if now.After(entry.ExpiresAt.Add(terminalRetention)) {
				delete(s.entries, id)
				removed++
			}
		}
	}
	return removed, nil
}
