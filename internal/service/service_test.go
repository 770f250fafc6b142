package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"commander-league/internal/commander"
	"commander-league/internal/config"
	"commander-league/internal/domain"
	"commander-league/internal/season"
	"commander-league/internal/stats"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocs struct {
	decks    domain.DeckDocument
	seasons  map[string]domain.SeasonDocument
	players  domain.LegacyPlayersDocument
	legacy   domain.LegacyDecksDocument
	combos   domain.CombinationsDocument
	decksErr error
}

func (f *fakeDocs) LoadDecks() (domain.DeckDocument, error) {
	return f.decks, f.decksErr
}

func (f *fakeDocs) LoadSeason(year string) (domain.SeasonDocument, error) {
	return f.seasons[year], nil
}

func (f *fakeDocs) SeasonYears() ([]string, error) {
	years := make([]string, 0, len(f.seasons))
	for y := range f.seasons {
		years = append(years, y)
	}
	return years, nil
}

func (f *fakeDocs) LoadLegacyPlayers(string) (domain.LegacyPlayersDocument, error) {
	return f.players, nil
}

func (f *fakeDocs) LoadLegacyDecks(string) (domain.LegacyDecksDocument, error) {
	return f.legacy, nil
}

func (f *fakeDocs) LoadCombinations() (domain.CombinationsDocument, error) {
	return f.combos, nil
}

type fakeResolver struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fakeResolver) ResolveDeck(_ context.Context, commanders []string, combos *commander.Combinations) commander.DeckInfo {
	f.mu.Lock()
	f.calls = append(f.calls, commanders)
	f.mu.Unlock()
	colors := []string{"Black", "Green"}
	return commander.DeckInfo{Colors: colors, Images: []string{}, Combination: combos.Label(colors)}
}

func testConfig() *config.Config {
	return &config.Config{
		LegacyYear:     "2025",
		Seasons:        []string{"2026"},
		DefaultPodSize: 2,
		MaxPodSize:     8,
	}
}

func newDocs() *fakeDocs {
	return &fakeDocs{
		decks: domain.DeckDocument{Decks: []domain.Deck{
			{ID: "atraxa", Name: "Atraxa", Commander: domain.CommanderList{"Atraxa, Praetors' Voice"}, Active: true},
			{ID: "meren", Name: "Meren", Commander: domain.CommanderList{"Meren of Clan Nel Toth"}, Active: true},
			{ID: "kaalia", Name: "Kaalia", Commander: domain.CommanderList{"Kaalia of the Vast"}, Active: false},
		}},
		seasons: map[string]domain.SeasonDocument{
			"2026": {Matches: []domain.Match{
				{Date: "2026-01-04", Players: []domain.MatchPlayer{{Name: "Jo", DeckID: "atraxa"}, {Name: "Sam", DeckID: "meren"}}, Winner: "Jo"},
				{Date: "2026-02-01", Players: []domain.MatchPlayer{{Name: "Jo", DeckID: "atraxa"}, {Name: "Sam", DeckID: "meren"}}, Winner: "Sam"},
			}},
		},
		players: domain.LegacyPlayersDocument{Players: []domain.PlayerTotals{
			{Name: "Alice", Wins: 3, MatchesPlayed: 5},
			{Name: "Jo", Wins: 1, MatchesPlayed: 4},
		}},
		legacy: domain.LegacyDecksDocument{Decks: []domain.DeckTotals{
			{Name: "Meren", Commander: domain.CommanderList{"Meren of Clan Nel Toth"}, Wins: 2, MatchesPlayed: 5, Active: true},
		}},
		combos: domain.CombinationsDocument{Combinations: map[string][]string{"Golgari": {"Black", "Green"}}},
	}
}

func newService(t *testing.T) (*LeagueService, *fakeResolver) {
	t.Helper()
	resolver := &fakeResolver{}
	svc, err := NewLeagueService(testConfig(), newDocs(), resolver, zerolog.Nop())
	require.NoError(t, err)
	return svc, resolver
}

func TestNewLeagueService_RequiredDocumentFails(t *testing.T) {
	docs := newDocs()
	docs.decksErr = &domain.DocumentLoadError{Path: "deck-definitions.json", Err: errors.New("missing")}

	_, err := NewLeagueService(testConfig(), docs, &fakeResolver{}, zerolog.Nop())
	var loadErr *domain.DocumentLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestLeagueService_YearsAndPlayers(t *testing.T) {
	svc, _ := newService(t)

	assert.Equal(t, []string{"2026"}, svc.Years())
	assert.Equal(t, []string{"2025", "2026", OverallTab}, svc.Tabs())
	assert.Equal(t, []string{"Alice", "Jo", "Sam"}, svc.KnownPlayers())
}

func TestLeagueService_Decks(t *testing.T) {
	svc, _ := newService(t)

	assert.Len(t, svc.ListDecks(false), 3)
	assert.Len(t, svc.ListDecks(true), 2)

	added, err := svc.AddDeck(DeckInput{Name: "The Ur-Dragon", Commanders: "The Ur-Dragon", Active: true})
	require.NoError(t, err)
	assert.Equal(t, "the-ur-dragon", added.ID)

	toggled, err := svc.ToggleDeck(added.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	_, err = svc.EditDeck("nope", DeckInput{Name: "x", Commanders: "y"})
	assert.ErrorIs(t, err, domain.ErrDeckNotFound)

	var refErr *domain.ReferentialIntegrityError
	require.ErrorAs(t, svc.RemoveDeck("atraxa"), &refErr)
	assert.Equal(t, []string{"2026"}, refErr.Seasons)

	require.NoError(t, svc.RemoveDeck(added.ID))
	assert.Len(t, svc.ListDecks(false), 3)

	out, err := svc.ExportDecks()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "}\n"))
	assert.Contains(t, string(out), `"id": "kaalia"`)
}

func TestLeagueService_DeckInfo(t *testing.T) {
	svc, resolver := newService(t)

	info, err := svc.DeckInfo(context.Background(), "meren")
	require.NoError(t, err)
	assert.Equal(t, "Golgari", info.Combination)
	assert.Equal(t, [][]string{{"Meren of Clan Nel Toth"}}, resolver.calls)

	_, err = svc.DeckInfo(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrDeckNotFound)
}

func TestLeagueService_SaveMatch(t *testing.T) {
	svc, _ := newService(t)
	candidate := season.Candidate{
		Date:    "2026-01-02",
		Players: []domain.MatchPlayer{{Name: "Jo", DeckID: "meren"}, {Name: "Alice", DeckID: "atraxa"}},
		Winner:  "Alice",
	}

	saved, err := svc.SaveMatch("2026", season.NoIndex, candidate, 0)
	require.NoError(t, err)
	assert.Equal(t, "Alice", saved.Winner)

	listed, err := svc.ListMatches("2026")
	require.NoError(t, err)
	require.Len(t, listed.Matches, 3)
	assert.Equal(t, "2026-01-02", listed.Matches[0].Date)
	assert.Equal(t, season.NoIndex, listed.Editing)

	candidate.Date = "2027-01-02"
	_, err = svc.SaveMatch("2026", season.NoIndex, candidate, 0)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "date", vErr.Field)

	_, err = svc.SaveMatch("2026", season.NoIndex, candidate, 9)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "podSize", vErr.Field)

	candidate.Date = "2025-05-05"
	_, err = svc.SaveMatch("2025", season.NoIndex, candidate, 0)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "year", vErr.Field)
}

func TestLeagueService_EditAndRemoveMatch(t *testing.T) {
	svc, _ := newService(t)

	m, err := svc.BeginEdit("2026", 1)
	require.NoError(t, err)
	assert.Equal(t, "Sam", m.Winner)

	listed, err := svc.ListMatches("2026")
	require.NoError(t, err)
	assert.Equal(t, 1, listed.Editing)

	saved, err := svc.SaveMatch("2026", 1, season.Candidate{
		Date:    m.Date,
		Players: m.Players,
		Winner:  "Jo",
		Notes:   &domain.Notes{MVP: "Jo"},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Jo", saved.Winner)

	require.NoError(t, svc.CancelEdit("2026"))
	require.NoError(t, svc.RemoveMatch("2026", 0))
	assert.ErrorIs(t, svc.RemoveMatch("2026", 5), domain.ErrMatchNotFound)

	listed, err = svc.ListMatches("2026")
	require.NoError(t, err)
	require.Len(t, listed.Matches, 1)
	assert.Equal(t, "2026-02-01", listed.Matches[0].Date)

	out, err := svc.ExportSeason("2026")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"mvp": "Jo"`)
}

func TestLeagueService_Import(t *testing.T) {
	svc, _ := newService(t)
	text := "10-03-26\nJo - Atraxa - win\nSam - Meren\n---\nSam - Meren - win\nJo - Atraxa\n---\n04-01-26\nJo - Atraxa - win\nSam - Meren"

	preview, err := svc.PreviewImport(text)
	require.NoError(t, err)
	require.Len(t, preview.Valid, 3)

	_, err = svc.CommitImport(preview.ID, text+"\n")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.CommitImport("unknown", text)
	require.ErrorAs(t, err, &vErr)

	result, err := svc.CommitImport(preview.ID, text)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total())
	assert.Equal(t, 1, result.Skipped)

	_, err = svc.CommitImport(preview.ID, text)
	assert.ErrorAs(t, err, &vErr)
}

func TestLeagueService_ImportRefusesLegacySeason(t *testing.T) {
	svc, _ := newService(t)
	text := "10-03-25\nJo - Atraxa - win\nSam - Meren"

	preview, err := svc.PreviewImport(text)
	require.NoError(t, err)
	require.Len(t, preview.Valid, 1)

	_, err = svc.CommitImport(preview.ID, text)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"2026"}, svc.Years())
}

func TestLeagueService_Stats(t *testing.T) {
	svc, _ := newService(t)

	legacy, err := svc.Stats("2025", stats.SortOrder{}, false)
	require.NoError(t, err)
	require.Len(t, legacy.Players, 2)
	assert.Equal(t, "Alice", legacy.Players[0].Name)

	current, err := svc.Stats("2026", stats.SortOrder{Column: stats.SortByName}, false)
	require.NoError(t, err)
	assert.Equal(t, "Jo", current.Players[0].Name)
	for _, d := range current.Decks {
		assert.NotEqual(t, "Kaalia", d.Name)
	}

	withInactive, err := svc.Stats("2026", stats.SortOrder{Column: stats.SortByName}, true)
	require.NoError(t, err)
	assert.Len(t, withInactive.Decks, 3)

	overall, err := svc.Stats(OverallTab, stats.DefaultSort, true)
	require.NoError(t, err)
	byName := map[string]stats.PlayerRow{}
	for _, p := range overall.Players {
		byName[p.Name] = p
	}
	assert.Equal(t, stats.PlayerRow{Name: "Jo", Wins: 2, MatchesPlayed: 6}, byName["Jo"])
	assert.Equal(t, stats.PlayerRow{Name: "Alice", Wins: 3, MatchesPlayed: 5}, byName["Alice"])

	_, err = svc.Stats("20x6", stats.DefaultSort, false)
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLeagueService_PlayerDecksAndMonthly(t *testing.T) {
	svc, _ := newService(t)

	rows, err := svc.PlayerDecks("2026", "Jo")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Atraxa", rows[0].DeckName)
	assert.Equal(t, 1, rows[0].Wins)

	rows, err = svc.PlayerDecks("2025", "Jo")
	require.NoError(t, err)
	assert.Empty(t, rows)

	series, err := svc.MonthlyWins("2026")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01", "2026-02"}, series.Months)
	assert.Equal(t, 1, series.Wins["2026-01"]["Jo"])
	assert.Equal(t, 1, series.Wins["2026-02"]["Sam"])

	_, err = svc.MonthlyWins("2025")
	assert.Error(t, err)
}
