package season

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"commander-league/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	docs  map[string]domain.SeasonDocument
	err   error
	calls int
}

func (f *fakeLoader) LoadSeason(year string) (domain.SeasonDocument, error) {
	f.calls++
	if f.err != nil {
		return domain.SeasonDocument{}, f.err
	}
	return f.docs[year], nil
}

type fakeDecks map[string]domain.Deck

func (f fakeDecks) Get(id string) (domain.Deck, bool) {
	d, ok := f[id]
	return d, ok
}

func match(date, winner string, players ...string) domain.Match {
	m := domain.Match{Date: date, Winner: winner}
	for _, p := range players {
		m.Players = append(m.Players, domain.MatchPlayer{Name: p, DeckID: "deck-" + p})
	}
	return m
}

func assertSorted(t *testing.T, s *Store) {
	t.Helper()
	ms := s.Matches()
	assert.True(t, sort.SliceIsSorted(ms, func(i, j int) bool { return ms[i].Date < ms[j].Date }))
}

func TestStore_UpsertKeepsDateOrder(t *testing.T) {
	s := NewStore("2026", domain.SeasonDocument{Matches: []domain.Match{
		match("2026-03-01", "Jo", "Jo", "Sam"),
		match("2026-01-10", "Sam", "Jo", "Sam"),
	}})
	assertSorted(t, s)

	_, err := s.Upsert(NoIndex, match("2026-02-01", "Jo", "Jo", "Sam"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-10", "2026-02-01", "2026-03-01"}, dates(s))

	_, err = s.Upsert(0, match("2026-04-01", "Sam", "Jo", "Sam"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-01", "2026-03-01", "2026-04-01"}, dates(s))

	_, err = s.Upsert(7, match("2026-04-01", "Sam", "Jo", "Sam"))
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
}

func TestStore_RandomOperationsStaySorted(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewStore("2026", domain.SeasonDocument{})
	days := []string{"2026-01-01", "2026-01-15", "2026-02-03", "2026-02-03", "2026-06-30", "2026-12-31"}

	for i := 0; i < 200; i++ {
		m := match(days[rng.Intn(len(days))], "Jo", "Jo", "Sam")
		switch {
		case s.Len() > 0 && rng.Intn(3) == 0:
			require.NoError(t, s.Remove(rng.Intn(s.Len())))
		case s.Len() > 0 && rng.Intn(2) == 0:
			_, err := s.Upsert(rng.Intn(s.Len()), m)
			require.NoError(t, err)
		default:
			_, err := s.Upsert(NoIndex, m)
			require.NoError(t, err)
		}
		assertSorted(t, s)
	}
}

func TestStore_RemoveClearsMatchingEditSession(t *testing.T) {
	s := NewStore("2026", domain.SeasonDocument{Matches: []domain.Match{
		match("2026-01-01", "Jo", "Jo", "Sam"),
		match("2026-01-02", "Sam", "Jo", "Sam"),
	}})

	_, err := s.BeginEdit(1)
	require.NoError(t, err)
	require.NoError(t, s.Remove(0))
	idx, editing := s.EditingIndex()
	assert.True(t, editing)
	assert.Equal(t, 0, idx, "edit session follows its record when an earlier one is removed")

	s.CancelEdit()
	_, editing = s.EditingIndex()
	assert.False(t, editing)

	s2 := NewStore("2026", domain.SeasonDocument{Matches: []domain.Match{match("2026-01-01", "Jo", "Jo", "Sam")}})
	_, err = s2.BeginEdit(0)
	require.NoError(t, err)
	require.NoError(t, s2.Remove(0))
	_, editing = s2.EditingIndex()
	assert.False(t, editing)

	assert.ErrorIs(t, s2.Remove(0), domain.ErrMatchNotFound)
}

func TestStore_EditSessionFollowsRecordAcrossSort(t *testing.T) {
	s := NewStore("2026", domain.SeasonDocument{Matches: []domain.Match{
		match("2026-02-01", "Jo", "Jo", "Sam"),
		match("2026-03-01", "Sam", "Jo", "Sam"),
	}})

	began, err := s.BeginEdit(1)
	require.NoError(t, err)

	_, err = s.Upsert(NoIndex, match("2026-01-01", "Jo", "Jo", "Alex"))
	require.NoError(t, err)
	idx, editing := s.EditingIndex()
	require.True(t, editing)
	got, err := s.At(idx)
	require.NoError(t, err)
	assert.Equal(t, began, got)

	s.AppendAll([]domain.Match{match("2025-12-31", "Sam", "Sam", "Alex"), match("2026-04-01", "Jo", "Jo", "Sam")})
	idx, editing = s.EditingIndex()
	require.True(t, editing)
	got, err = s.At(idx)
	require.NoError(t, err)
	assert.Equal(t, began, got)

	_, err = s.Upsert(0, match("2026-05-01", "Alex", "Alex", "Sam"))
	require.NoError(t, err)
	idx, _ = s.EditingIndex()
	got, err = s.At(idx)
	require.NoError(t, err)
	assert.Equal(t, began, got)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore("2026", domain.SeasonDocument{})
	m := match("2026-01-01", "Jo", "Jo", "Sam")
	m.Notes = &domain.Notes{MVP: "Jo"}
	_, err := s.Upsert(NoIndex, m)
	require.NoError(t, err)

	m.Players[0].Name = "mutated"
	m.Notes.MVP = "mutated"

	got, err := s.At(0)
	require.NoError(t, err)
	assert.Equal(t, "Jo", got.Players[0].Name)
	assert.Equal(t, "Jo", got.Notes.MVP)
}

func TestSignature(t *testing.T) {
	a := match("2026-01-04", "Jo", "Sam", "Jo", "Alex")
	b := match("2026-01-04", "Jo", "Alex", "Sam", "Jo")
	assert.Equal(t, "2026-01-04|Alex,Jo,Sam|Jo", Signature(a))
	assert.Equal(t, Signature(a), Signature(b))

	s := NewStore("2026", domain.SeasonDocument{Matches: []domain.Match{a}})
	assert.True(t, s.HasSignature(Signature(b)))
	assert.False(t, s.HasSignature(Signature(match("2026-01-04", "Sam", "Sam", "Jo", "Alex"))))
}

func TestSeasons_LazyLoadAndCache(t *testing.T) {
	loader := &fakeLoader{docs: map[string]domain.SeasonDocument{
		"2026": {Matches: []domain.Match{match("2026-01-04", "Jo", "Jo", "Sam")}},
	}}
	seasons := NewSeasons(loader, zerolog.Nop())

	s, err := seasons.Get("2026")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	again, err := seasons.Get("2026")
	require.NoError(t, err)
	assert.Same(t, s, again)
	assert.Equal(t, 1, loader.calls)

	empty, err := seasons.Get("2027")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, []string{"2026", "2027"}, seasons.Years())

	_, err = seasons.Get("26")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSeasons_UnreadableDocumentFallsBackToEmpty(t *testing.T) {
	seasons := NewSeasons(&fakeLoader{err: errors.New("malformed")}, zerolog.Nop())

	s, err := seasons.Get("2026")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestSeasons_SeasonsUsing(t *testing.T) {
	loader := &fakeLoader{docs: map[string]domain.SeasonDocument{
		"2026": {Matches: []domain.Match{match("2026-01-04", "Jo", "Jo", "Sam")}},
		"2027": {Matches: []domain.Match{match("2027-01-04", "Jo", "Jo", "Alex")}},
	}}
	seasons := NewSeasons(loader, zerolog.Nop())
	require.NoError(t, seasons.Preload("2027", "2026"))

	assert.Equal(t, []string{"2026", "2027"}, seasons.SeasonsUsing("deck-Jo"))
	assert.Equal(t, []string{"2026"}, seasons.SeasonsUsing("deck-Sam"))
	assert.Empty(t, seasons.SeasonsUsing("deck-Nobody"))
	assert.Equal(t, []string{"Alex", "Jo", "Sam"}, seasons.PlayerNames())
}

func TestValidate(t *testing.T) {
	decks := fakeDecks{"atraxa": {ID: "atraxa"}, "meren": {ID: "meren"}}
	valid := func() Candidate {
		return Candidate{
			Date: "2026-01-04",
			Players: []domain.MatchPlayer{
				{Name: "Jo", DeckID: "atraxa"},
				{Name: "Sam", DeckID: "meren"},
			},
			Winner: "Jo",
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Candidate)
		field  string
		msg    string
	}{
		{"missing date beats missing player", func(c *Candidate) { c.Date = ""; c.Players[0].Name = "" }, "date", "Please choose a date."},
		{"non canonical date", func(c *Candidate) { c.Date = "04/01/2026" }, "date", ""},
		{"missing player", func(c *Candidate) { c.Players[1].Name = " " }, "players", "Player 2 is missing."},
		{"short pod", func(c *Candidate) { c.Players = c.Players[:1] }, "players", "Player 2 is missing."},
		{"missing deck before later player", func(c *Candidate) { c.Players[0].DeckID = ""; c.Players[1].Name = "" }, "players", "Deck for Player 1 is missing."},
		{"unknown deck", func(c *Candidate) { c.Players[1].DeckID = "ghost" }, "players", ""},
		{"duplicate player", func(c *Candidate) { c.Players[1].Name = "Jo" }, "players", "Same player selected more than once."},
		{"missing winner", func(c *Candidate) { c.Winner = "" }, "winner", "Please select a winner."},
		{"winner not playing", func(c *Candidate) { c.Winner = "Alex" }, "winner", "Winner must be one of the players in the match."},
		{"winner is case sensitive", func(c *Candidate) { c.Winner = "jo" }, "winner", "Winner must be one of the players in the match."},
		{"mvp not playing", func(c *Candidate) { c.Notes = &domain.Notes{MVP: "Alex"} }, "mvp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			_, err := Validate(c, 2, decks)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, verr.Message)
			}
		})
	}
}

func TestValidate_BuildsMatch(t *testing.T) {
	c := Candidate{
		Date: " 2026-01-04 ",
		Players: []domain.MatchPlayer{
			{Name: " Jo ", DeckID: "atraxa"},
			{Name: "Sam", DeckID: " meren"},
			{Name: "ignored beyond pod", DeckID: "meren"},
		},
		Winner: "Sam",
		Notes:  &domain.Notes{MVP: "Jo", Highlight: "  "},
	}

	m, err := Validate(c, 2, fakeDecks{"atraxa": {}, "meren": {}})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-04", m.Date)
	assert.Equal(t, []domain.MatchPlayer{{Name: "Jo", DeckID: "atraxa"}, {Name: "Sam", DeckID: "meren"}}, m.Players)
	require.NotNil(t, m.Notes)
	assert.Equal(t, "Jo", m.Notes.MVP)
	assert.Empty(t, m.Notes.Highlight)

	c.Notes = &domain.Notes{Rulings: " "}
	m, err = Validate(c, 2, nil)
	require.NoError(t, err)
	assert.Nil(t, m.Notes)

	_, err = Validate(c, 1, nil)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidate_TrimsWinner(t *testing.T) {
	c := Candidate{
		Date: "2026-01-04",
		Players: []domain.MatchPlayer{
			{Name: "Jo ", DeckID: "atraxa"},
			{Name: "Sam", DeckID: "meren"},
		},
		Winner: "Jo ",
		Notes:  &domain.Notes{MVP: " Jo"},
	}

	m, err := Validate(c, 2, fakeDecks{"atraxa": {}, "meren": {}})
	require.NoError(t, err)
	assert.Equal(t, "Jo", m.Winner)
	assert.Equal(t, "Jo", m.Players[0].Name)
	assert.Equal(t, "Jo", m.Notes.MVP)

	c.Winner = "   "
	_, err = Validate(c, 2, fakeDecks{"atraxa": {}, "meren": {}})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Please select a winner.", verr.Message)
}

func dates(s *Store) []string {
	var out []string
	for _, m := range s.Matches() {
		out = append(out, m.Date)
	}
	return out
}
