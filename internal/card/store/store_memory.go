package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tapbank/internal/card/models"
	"tapbank/internal/sentinel"
)

// ErrNotFound is returned when a card is not found.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores cards in memory. State is lost on restart; that is a
// property of the system, not an accident.
type InMemory struct {
	mu    sync.RWMutex
	cards map[string]*models.Card
}

// Ensure InMemory implements Store.
var _ Store = (*InMemory)(nil)

// NewInMemory creates an in-memory card store.
func NewInMemory() *InMemory {
	return &InMemory{
		cards: make(map[string]*models.Card),
	}
}

// Register inserts the card if the identifier is free.
func (s *InMemory) Register(_ context.Context, card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cards[card.CardID]; exists {
		return fmt.Errorf("card identifier must be unique: %w", sentinel.ErrDuplicate)
	}
	s.cards[card.CardID] = card.Clone()
	return nil
}

// Find retrieves a card by identifier.
func (s *InMemory) Find(_ context.Context, cardID string) (*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.cards[cardID]; ok {
		return c.Clone(), nil
	}
	return nil, ErrNotFound
}

// RecordUse bumps usage metadata. Missing cards are ignored.
func (s *InMemory) RecordUse(_ context.Context, cardID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cards[cardID]; ok {
		c.UseCount++
		t := now
		c.LastUsedAt = &t
	}
	return nil
}

// Deactivate flips the card inactive, idempotently.
func (s *InMemory) Deactivate(_ context.Context, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[cardID]
	if !ok {
		return ErrNotFound
	}
	c.Active = false
	return nil
}

// FindByWallet returns every card bound to the wallet, case-insensitive.
func (s *InMemory) FindByWallet(_ context.Context, walletAddress string) ([]*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lower := strings.ToLower(walletAddress)
	var out []*models.Card
	for _, c := range s.cards {
		if strings.ToLower(c.WalletAddress) == lower {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

// All returns every registered card.
func (s *InMemory) All(_ context.Context) ([]*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c.Clone())
	}
	return out, nil
}
