package service

import (
	"context"
	"fmt"

	"commander-league/internal/commander"
	"commander-league/internal/domain"
	"commander-league/internal/repository"
)

type DeckInput struct {
	Name       string `json:"name"`
	Commanders string `json:"commanders"`
	Active     bool   `json:"active"`
}

func (s *LeagueService) ListDecks(activeOnly bool) []domain.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	if activeOnly {
		return s.decks.Active()
	}
	return s.decks.List()
}

func (s *LeagueService) AddDeck(in DeckInput) (domain.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decks.Add(in.Name, in.Commanders, in.Active)
}

func (s *LeagueService) EditDeck(id string, in DeckInput) (domain.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decks.Edit(id, in.Name, in.Commanders, in.Active)
}

func (s *LeagueService) ToggleDeck(id string) (domain.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decks.ToggleActive(id)
}

// RemoveDeck deletes a deck no loaded season references.
func (s *LeagueService) RemoveDeck(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decks.Remove(id, s.seasons)
}

// DeckInfo resolves colours, artwork and the colour combination for a deck.
// The lookup runs without holding the session lock.
func (s *LeagueService) DeckInfo(ctx context.Context, id string) (commander.DeckInfo, error) {
	s.mu.Lock()
	deck, ok := s.decks.Get(id)
	combos := s.combos
	s.mu.Unlock()
	if !ok {
		return commander.DeckInfo{}, fmt.Errorf("deck info %s: %w", id, domain.ErrDeckNotFound)
	}
	return s.resolver.ResolveDeck(ctx, deck.Commander, combos), nil
}

// ExportDecks renders deck-definitions.json.
func (s *LeagueService) ExportDecks() ([]byte, error) {
	s.mu.Lock()
	doc := s.decks.Document()
	s.mu.Unlock()
	return repository.Encode(doc)
}
