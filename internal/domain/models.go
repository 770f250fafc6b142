package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type Deck struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Commander CommanderList `json:"commander"`
	Active    bool          `json:"active"`
}

// CommanderList is stored as a plain string for a single commander and as an
// ordered array for partners.
type CommanderList []string

func (c CommanderList) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(c))
}

func (c *CommanderList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = CommanderList{}
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*c = CommanderList{}
		} else {
			*c = CommanderList{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("commander must be a string or a list of strings: %w", err)
	}
	out := make(CommanderList, 0, len(many))
	for _, name := range many {
		if name != "" {
			out = append(out, name)
		}
	}
	*c = out
	return nil
}

type DeckDocument struct {
	Decks []Deck `json:"decks"`
}

type MatchPlayer struct {
	Name   string `json:"name"`
	DeckID string `json:"deckId"`
}

type Notes struct {
	MVP       string `json:"mvp,omitempty"`
	Highlight string `json:"highlight,omitempty"`
	Rulings   string `json:"rulings,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (n *Notes) IsEmpty() bool {
	return n == nil || (n.MVP == "" && n.Highlight == "" && n.Rulings == "" && n.Notes == "")
}

type Match struct {
	Date    string        `json:"date"`
	Players []MatchPlayer `json:"players"`
	Winner  string        `json:"winner"`
	Notes   *Notes        `json:"notes,omitempty"`
}

// Year is the 4-digit season key taken from the canonical date.
func (m Match) Year() string {
	if len(m.Date) < 4 {
		return ""
	}
	return m.Date[:4]
}

func (m Match) PlayerNames() []string {
	names := make([]string, len(m.Players))
	for i, p := range m.Players {
		names[i] = p.Name
	}
	return names
}

type SeasonDocument struct {
	Matches []Match `json:"matches"`
}

type PlayerTotals struct {
	Name          string `json:"name"`
	Wins          int    `json:"wins"`
	MatchesPlayed int    `json:"matchesPlayed"`
}

type LegacyPlayersDocument struct {
	Players []PlayerTotals `json:"players"`
}

// DeckTotals is keyed by deck name; legacy records never had ids.
type DeckTotals struct {
	Name          string        `json:"name"`
	Commander     CommanderList `json:"commander"`
	Wins          int           `json:"wins"`
	MatchesPlayed int           `json:"matchesPlayed"`
	Active        bool          `json:"active"`
}

type LegacyDecksDocument struct {
	Decks []DeckTotals `json:"decks"`
}

type CombinationsDocument struct {
	Combinations map[string][]string `json:"combinations"`
}

type CommanderInfo struct {
	Colors []string `json:"colors"`
	Image  string   `json:"image,omitempty"`
}

type CommanderCacheEntry struct {
	Key      string
	Colors   []string
	Image    string
	CachedAt time.Time
}

func (e CommanderCacheEntry) Info() CommanderInfo {
	colors := make([]string, len(e.Colors))
	copy(colors, e.Colors)
	return CommanderInfo{Colors: colors, Image: e.Image}
}
