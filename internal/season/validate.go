package season

import (
	"strings"
	"time"

	"commander-league/internal/domain"
)

// DeckLookup is satisfied by the deck registry.
type DeckLookup interface {
	Get(id string) (domain.Deck, bool)
}

// Candidate is a match as submitted from the admin form: slots may be blank.
type Candidate struct {
	Date    string               `json:"date"`
	Players []domain.MatchPlayer `json:"players"`
	Winner  string               `json:"winner"`
	Notes   *domain.Notes        `json:"notes,omitempty"`
}

const dateLayout = "2006-01-02"

// Validate checks c against the match rules for a pod of podSize
// players. Errors are reported in a fixed order: date, then each slot's
// player and deck, duplicates, winner, winner membership, mvp membership.
func Validate(c Candidate, podSize int, decks DeckLookup) (domain.Match, error) {
	if podSize < 2 {
		return domain.Match{}, domain.NewValidationError("podSize", "A match needs at least 2 players.")
	}

	date := strings.TrimSpace(c.Date)
	if date == "" {
		return domain.Match{}, domain.NewValidationError("date", "Please choose a date.")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return domain.Match{}, domain.NewValidationError("date", "Date %q must be in YYYY-MM-DD form.", date)
	}

	players := make([]domain.MatchPlayer, 0, podSize)
	for i := 0; i < podSize; i++ {
		var slot domain.MatchPlayer
		if i < len(c.Players) {
			slot = c.Players[i]
		}
		name := strings.TrimSpace(slot.Name)
		if name == "" {
			return domain.Match{}, domain.NewValidationError("players", "Player %d is missing.", i+1)
		}
		deckID := strings.TrimSpace(slot.DeckID)
		if deckID == "" {
			return domain.Match{}, domain.NewValidationError("players", "Deck for Player %d is missing.", i+1)
		}
		if decks != nil {
			if _, ok := decks.Get(deckID); !ok {
				return domain.Match{}, domain.NewValidationError("players", "Deck %q for Player %d does not exist.", deckID, i+1)
			}
		}
		players = append(players, domain.MatchPlayer{Name: name, DeckID: deckID})
	}

	names := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, dup := names[p.Name]; dup {
			return domain.Match{}, domain.NewValidationError("players", "Same player selected more than once.")
		}
		names[p.Name] = struct{}{}
	}

	// Winner and mvp compare exactly against the trimmed player names, no folding.
	winner := strings.TrimSpace(c.Winner)
	if winner == "" {
		return domain.Match{}, domain.NewValidationError("winner", "Please select a winner.")
	}
	if _, ok := names[winner]; !ok {
		return domain.Match{}, domain.NewValidationError("winner", "Winner must be one of the players in the match.")
	}

	notes := normalizeNotes(c.Notes)
	if notes != nil && notes.MVP != "" {
		if _, ok := names[notes.MVP]; !ok {
			return domain.Match{}, domain.NewValidationError("mvp", "MVP must be one of the players in the match.")
		}
	}

	return domain.Match{
		Date:    date,
		Players: players,
		Winner:  winner,
		Notes:   notes,
	}, nil
}

func normalizeNotes(n *domain.Notes) *domain.Notes {
	if n == nil {
		return nil
	}
	out := &domain.Notes{
		MVP:       strings.TrimSpace(n.MVP),
		Highlight: strings.TrimSpace(n.Highlight),
		Rulings:   strings.TrimSpace(n.Rulings),
		Notes:     strings.TrimSpace(n.Notes),
	}
	if out.IsEmpty() {
		return nil
	}
	return out
}
