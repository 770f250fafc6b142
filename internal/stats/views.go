package stats

import (
	"sort"
	"strings"

	"commander-league/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Column names accepted by the sort helpers.
const (
	SortByName    = "name"
	SortByWins    = "wins"
	SortByMatches = "matches"
	SortByWinRate = "winrate"
)

type SortOrder struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// DefaultSort is the order the stats page opens with.
var DefaultSort = SortOrder{Column: SortByWinRate, Desc: true}

// View is one tab of the stats page.
type View struct {
	Title   string      `json:"title"`
	Players []PlayerRow `json:"players"`
	Decks   []DeckRow   `json:"decks"`
}

// LegacyView shows a season that predates match logging.
func LegacyView(year string, players []domain.PlayerTotals, decks []domain.DeckTotals) View {
	return View{
		Title:   year,
		Players: LegacyPlayerRows(players),
		Decks:   LegacyDeckRows(decks),
	}
}

// SeasonView shows one logged season. Every registered deck is listed,
// including decks that have not been played yet.
func SeasonView(year string, matches []domain.Match, decks DeckSource) View {
	agg := AggregateSeason(matches)
	rows := DeckRowsFromStats(agg.DecksByID, decks)

	played := make(map[string]struct{}, len(agg.DecksByID))
	for _, c := range agg.DecksByID {
		played[c.DeckID] = struct{}{}
	}
	for _, d := range decks.List() {
		if _, ok := played[d.ID]; ok {
			continue
		}
		rows = append(rows, DeckRow{
			Name:       d.Name,
			Commanders: copyStrings(d.Commander),
			Active:     d.Active,
		})
	}

	return View{Title: year, Players: agg.Players, Decks: rows}
}

// OverallView merges the legacy totals with every logged season. Decks
// appear only once they have a legacy record or a logged match.
func OverallView(legacyPlayers []domain.PlayerTotals, legacyDecks []domain.DeckTotals, seasons [][]domain.Match, decks DeckSource) View {
	var all []domain.Match
	for _, s := range seasons {
		all = append(all, s...)
	}
	agg := AggregateSeason(all)

	return View{
		Title:   "Overall",
		Players: MergePlayers(LegacyPlayerRows(legacyPlayers), agg.Players),
		Decks:   MergeDecks(LegacyDeckRows(legacyDecks), DeckRowsFromStats(agg.DecksByID, decks)),
	}
}

// FilterActive drops inactive decks unless includeInactive is set.
func FilterActive(rows []DeckRow, includeInactive bool) []DeckRow {
	if includeInactive {
		return rows
	}
	out := make([]DeckRow, 0, len(rows))
	for _, r := range rows {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

func SortPlayers(rows []PlayerRow, order SortOrder) {
	col := newCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		return less(order, col,
			rows[i].Name, rows[i].Wins, rows[i].MatchesPlayed,
			rows[j].Name, rows[j].Wins, rows[j].MatchesPlayed)
	})
}

func SortDecks(rows []DeckRow, order SortOrder) {
	col := newCollator()
	sort.SliceStable(rows, func(i, j int) bool {
		return less(order, col,
			rows[i].Name, rows[i].Wins, rows[i].MatchesPlayed,
			rows[j].Name, rows[j].Wins, rows[j].MatchesPlayed)
	})
}

// less orders two rows by the requested column. Ties fall back to name
// ascending regardless of direction so the table is deterministic.
func less(order SortOrder, col *collate.Collator, aName string, aWins, aPlayed int, bName string, bWins, bPlayed int) bool {
	var cmp int
	switch strings.ToLower(order.Column) {
	case SortByWins:
		cmp = compareInt(aWins, bWins)
	case SortByMatches:
		cmp = compareInt(aPlayed, bPlayed)
	case SortByWinRate:
		cmp = compareFloat(WinRate(aWins, aPlayed), WinRate(bWins, bPlayed))
	default:
		cmp = col.CompareString(aName, bName)
	}
	if cmp != 0 {
		if order.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	return col.CompareString(aName, bName) < 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

var printer = message.NewPrinter(language.English)

// FormatPercent renders a 0..1 rate as a percentage with two decimals.
func FormatPercent(rate float64) string {
	return printer.Sprintf("%.2f%%", rate*100)
}
