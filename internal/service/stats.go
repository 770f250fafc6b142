package service

import (
	"commander-league/internal/domain"
	"commander-league/internal/stats"
)

// OverallTab is the stats tab that merges every season.
const OverallTab = "overall"

// Tabs lists the stats tabs in display order: the legacy season, each
// logged season, then the overall view.
func (s *LeagueService) Tabs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tabs := []string{s.cfg.LegacyYear}
	tabs = append(tabs, s.seasons.Years()...)
	return append(tabs, OverallTab)
}

// Stats builds one tab of the stats page. Deck rows drop inactive decks
// unless includeInactive is set; both tables follow order.
func (s *LeagueService) Stats(tab string, order stats.SortOrder, includeInactive bool) (stats.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view stats.View
	switch {
	case tab == OverallTab:
		view = stats.OverallView(s.legacyPlayers, s.legacyDecks, s.allMatches(), s.decks)
	case s.isLegacy(tab):
		view = stats.LegacyView(tab, s.legacyPlayers, s.legacyDecks)
	default:
		store, err := s.seasons.Get(tab)
		if err != nil {
			return stats.View{}, err
		}
		view = stats.SeasonView(tab, store.Matches(), s.decks)
	}

	if order.Column == "" {
		order = stats.DefaultSort
	}
	view.Decks = stats.FilterActive(view.Decks, includeInactive)
	stats.SortPlayers(view.Players, order)
	stats.SortDecks(view.Decks, order)
	return view, nil
}

// PlayerDecks breaks one player's results down by deck, for a logged season
// or for the overall tab. Legacy totals carry no per-match data.
func (s *LeagueService) PlayerDecks(tab, player string) ([]stats.PlayerDeckRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []domain.Match
	switch {
	case tab == OverallTab:
		for _, m := range s.allMatches() {
			matches = append(matches, m...)
		}
	case s.isLegacy(tab):
		return []stats.PlayerDeckRow{}, nil
	default:
		store, err := s.seasons.Get(tab)
		if err != nil {
			return nil, err
		}
		matches = store.Matches()
	}
	return stats.PlayerDeckRows(stats.PlayerDeckBreakdown(matches), player, s.decks), nil
}

// MonthlyWins is the per-month winner tally for a logged season.
func (s *LeagueService) MonthlyWins(year string) (stats.MonthlySeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.loggedSeason(year)
	if err != nil {
		return stats.MonthlySeries{}, err
	}
	return stats.MonthlyWins(store.Matches()), nil
}

func (s *LeagueService) allMatches() [][]domain.Match {
	years := s.seasons.Years()
	out := make([][]domain.Match, 0, len(years))
	for _, y := range years {
		store, err := s.seasons.Get(y)
		if err != nil {
			continue
		}
		out = append(out, store.Matches())
	}
	return out
}
