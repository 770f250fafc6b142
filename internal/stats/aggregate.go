package stats

import (
	"sort"
	"time"

	"commander-league/internal/domain"
)

type PlayerRow struct {
	Name          string `json:"name"`
	Wins          int    `json:"wins"`
	MatchesPlayed int    `json:"matchesPlayed"`
}

type DeckCount struct {
	DeckID        string `json:"deckId"`
	Wins          int    `json:"wins"`
	MatchesPlayed int    `json:"matchesPlayed"`
}

type DeckRow struct {
	Name          string   `json:"name"`
	Commanders    []string `json:"commanders"`
	Active        bool     `json:"active"`
	Wins          int      `json:"wins"`
	MatchesPlayed int      `json:"matchesPlayed"`
}

type SeasonStats struct {
	Players   []PlayerRow `json:"players"`
	DecksByID []DeckCount `json:"decksById"`
}

type Count struct {
	Wins          int `json:"wins"`
	MatchesPlayed int `json:"matchesPlayed"`
}

func WinRate(wins, matchesPlayed int) float64 {
	if matchesPlayed <= 0 {
		return 0
	}
	return float64(wins) / float64(matchesPlayed)
}

// AggregateSeason counts matches played and wins per player and per deck.
// A win is credited when the player name equals the winner exactly. Rows are
// returned in first-appearance order.
func AggregateSeason(matches []domain.Match) SeasonStats {
	var players []*PlayerRow
	var decks []*DeckCount
	playerIdx := make(map[string]*PlayerRow)
	deckIdx := make(map[string]*DeckCount)

	for _, m := range matches {
		for _, p := range m.Players {
			won := m.Winner != "" && m.Winner == p.Name

			if p.Name != "" {
				row, ok := playerIdx[p.Name]
				if !ok {
					row = &PlayerRow{Name: p.Name}
					playerIdx[p.Name] = row
					players = append(players, row)
				}
				row.MatchesPlayed++
				if won {
					row.Wins++
				}
			}

			if p.DeckID != "" {
				row, ok := deckIdx[p.DeckID]
				if !ok {
					row = &DeckCount{DeckID: p.DeckID}
					deckIdx[p.DeckID] = row
					decks = append(decks, row)
				}
				row.MatchesPlayed++
				if won {
					row.Wins++
				}
			}
		}
	}

	out := SeasonStats{
		Players:   make([]PlayerRow, len(players)),
		DecksByID: make([]DeckCount, len(decks)),
	}
	for i, p := range players {
		out.Players[i] = *p
	}
	for i, d := range decks {
		out.DecksByID[i] = *d
	}
	return out
}

// MergePlayers sums legacy and current totals by name. Names found on only
// one side pass through with zero for the other side.
func MergePlayers(legacy, current []PlayerRow) []PlayerRow {
	merged := make([]PlayerRow, 0, len(legacy)+len(current))
	idx := make(map[string]int, len(legacy)+len(current))

	add := func(p PlayerRow) {
		i, ok := idx[p.Name]
		if !ok {
			idx[p.Name] = len(merged)
			merged = append(merged, PlayerRow{Name: p.Name})
			i = len(merged) - 1
		}
		merged[i].Wins += p.Wins
		merged[i].MatchesPlayed += p.MatchesPlayed
	}

	for _, p := range legacy {
		add(p)
	}
	for _, p := range current {
		add(p)
	}
	return merged
}

// MergeDecks sums legacy and current deck rows keyed by name. A deck is
// active when either side says so; commanders come from the first side that
// has any.
func MergeDecks(legacy, current []DeckRow) []DeckRow {
	merged := make([]DeckRow, 0, len(legacy)+len(current))
	idx := make(map[string]int, len(legacy)+len(current))

	add := func(d DeckRow) {
		i, ok := idx[d.Name]
		if !ok {
			idx[d.Name] = len(merged)
			merged = append(merged, DeckRow{Name: d.Name, Commanders: copyStrings(d.Commanders)})
			i = len(merged) - 1
		}
		entry := &merged[i]
		entry.Wins += d.Wins
		entry.MatchesPlayed += d.MatchesPlayed
		entry.Active = entry.Active || d.Active
		if len(entry.Commanders) == 0 && len(d.Commanders) > 0 {
			entry.Commanders = copyStrings(d.Commanders)
		}
	}

	for _, d := range legacy {
		add(d)
	}
	for _, d := range current {
		add(d)
	}
	return merged
}

// LegacyPlayerRows copies read-only legacy totals into display rows.
func LegacyPlayerRows(totals []domain.PlayerTotals) []PlayerRow {
	rows := make([]PlayerRow, len(totals))
	for i, p := range totals {
		rows[i] = PlayerRow{Name: p.Name, Wins: p.Wins, MatchesPlayed: p.MatchesPlayed}
	}
	return rows
}

func LegacyDeckRows(totals []domain.DeckTotals) []DeckRow {
	rows := make([]DeckRow, len(totals))
	for i, d := range totals {
		rows[i] = DeckRow{
			Name:          d.Name,
			Commanders:    copyStrings(d.Commander),
			Active:        d.Active,
			Wins:          d.Wins,
			MatchesPlayed: d.MatchesPlayed,
		}
	}
	return rows
}

// DeckSource is satisfied by the deck registry.
type DeckSource interface {
	Get(id string) (domain.Deck, bool)
	List() []domain.Deck
}

// DeckRowsFromStats resolves per-id counts into named rows. An id missing
// from the registry keeps the id as its name and counts as active.
func DeckRowsFromStats(counts []DeckCount, decks DeckSource) []DeckRow {
	rows := make([]DeckRow, len(counts))
	for i, c := range counts {
		row := DeckRow{Name: c.DeckID, Commanders: []string{}, Active: true, Wins: c.Wins, MatchesPlayed: c.MatchesPlayed}
		if d, ok := decks.Get(c.DeckID); ok {
			row.Name = d.Name
			row.Commanders = copyStrings(d.Commander)
			row.Active = d.Active
		}
		rows[i] = row
	}
	return rows
}

// PlayerDeckBreakdown maps player name to deck id to counts.
func PlayerDeckBreakdown(matches []domain.Match) map[string]map[string]Count {
	out := make(map[string]map[string]Count)
	for _, m := range matches {
		for _, p := range m.Players {
			if p.Name == "" || p.DeckID == "" {
				continue
			}
			byDeck, ok := out[p.Name]
			if !ok {
				byDeck = make(map[string]Count)
				out[p.Name] = byDeck
			}
			c := byDeck[p.DeckID]
			c.MatchesPlayed++
			if m.Winner != "" && m.Winner == p.Name {
				c.Wins++
			}
			byDeck[p.DeckID] = c
		}
	}
	return out
}

type PlayerDeckRow struct {
	DeckID        string  `json:"deckId"`
	DeckName      string  `json:"deckName"`
	Wins          int     `json:"wins"`
	MatchesPlayed int     `json:"matchesPlayed"`
	WinRate       float64 `json:"winRate"`
}

// PlayerDeckRows lists one player's decks by win rate, then wins, then name.
func PlayerDeckRows(breakdown map[string]map[string]Count, player string, decks DeckSource) []PlayerDeckRow {
	byDeck := breakdown[player]
	rows := make([]PlayerDeckRow, 0, len(byDeck))
	for deckID, c := range byDeck {
		name := deckID
		if d, ok := decks.Get(deckID); ok {
			name = d.Name
		}
		rows = append(rows, PlayerDeckRow{
			DeckID:        deckID,
			DeckName:      name,
			Wins:          c.Wins,
			MatchesPlayed: c.MatchesPlayed,
			WinRate:       WinRate(c.Wins, c.MatchesPlayed),
		})
	}

	col := newCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return col.CompareString(a.DeckName, b.DeckName) < 0
	})
	return rows
}

type MonthlySeries struct {
	Months []string                  `json:"months"`
	Wins   map[string]map[string]int `json:"wins"`
}

// Players lists every player with at least one win in the series, sorted.
func (s MonthlySeries) Players() []string {
	seen := make(map[string]struct{})
	for _, byPlayer := range s.Wins {
		for p := range byPlayer {
			seen[p] = struct{}{}
		}
	}
	players := make([]string, 0, len(seen))
	for p := range seen {
		players = append(players, p)
	}
	sort.Strings(players)
	return players
}

// MonthlyWins buckets winners by the YYYY-MM of the match date. Matches with
// an unparseable date are left out of the series.
func MonthlyWins(matches []domain.Match) MonthlySeries {
	series := MonthlySeries{Wins: make(map[string]map[string]int)}
	for _, m := range matches {
		d, err := time.Parse("2006-01-02", m.Date)
		if err != nil {
			continue
		}
		key := d.Format("2006-01")
		byPlayer, ok := series.Wins[key]
		if !ok {
			byPlayer = make(map[string]int)
			series.Wins[key] = byPlayer
			series.Months = append(series.Months, key)
		}
		if m.Winner == "" {
			continue
		}
		byPlayer[m.Winner]++
	}
	sort.Strings(series.Months)
	return series
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
