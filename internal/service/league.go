package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"commander-league/internal/bulkimport"
	"commander-league/internal/commander"
	"commander-league/internal/config"
	"commander-league/internal/domain"
	"commander-league/internal/registry"
	"commander-league/internal/season"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Documents is the read side of the league's JSON documents.
type Documents interface {
	LoadDecks() (domain.DeckDocument, error)
	LoadSeason(year string) (domain.SeasonDocument, error)
	SeasonYears() ([]string, error)
	LoadLegacyPlayers(year string) (domain.LegacyPlayersDocument, error)
	LoadLegacyDecks(year string) (domain.LegacyDecksDocument, error)
	LoadCombinations() (domain.CombinationsDocument, error)
}

// DeckResolver resolves a deck's commanders to colours and artwork.
type DeckResolver interface {
	ResolveDeck(ctx context.Context, commanders []string, combos *commander.Combinations) commander.DeckInfo
}

// LeagueService owns the session state: the deck registry, every loaded
// season and the legacy totals. Handlers run concurrently, so every method
// takes mu before touching that state.
type LeagueService struct {
	cfg      *config.Config
	resolver DeckResolver
	logger   zerolog.Logger

	mu            sync.Mutex
	decks         *registry.Registry
	seasons       *season.Seasons
	parser        *bulkimport.Parser
	legacyPlayers []domain.PlayerTotals
	legacyDecks   []domain.DeckTotals
	combos        *commander.Combinations
	previews      map[string]*bulkimport.Preview
}

// NewLeagueService loads the required documents in parallel and preloads
// every configured or on-disk season so deck usage checks see all of them.
func NewLeagueService(cfg *config.Config, docs Documents, resolver DeckResolver, logger zerolog.Logger) (*LeagueService, error) {
	var (
		deckDoc    domain.DeckDocument
		playersDoc domain.LegacyPlayersDocument
		decksDoc   domain.LegacyDecksDocument
		combosDoc  domain.CombinationsDocument
		onDisk     []string
	)

	var g errgroup.Group
	g.Go(func() (err error) {
		deckDoc, err = docs.LoadDecks()
		return err
	})
	g.Go(func() (err error) {
		playersDoc, err = docs.LoadLegacyPlayers(cfg.LegacyYear)
		return err
	})
	g.Go(func() (err error) {
		decksDoc, err = docs.LoadLegacyDecks(cfg.LegacyYear)
		return err
	})
	g.Go(func() (err error) {
		combosDoc, err = docs.LoadCombinations()
		return err
	})
	g.Go(func() (err error) {
		onDisk, err = docs.SeasonYears()
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("failed to load league documents")
		return nil, fmt.Errorf("failed to load league documents: %w", err)
	}

	s := &LeagueService{
		cfg:           cfg,
		resolver:      resolver,
		logger:        logger,
		decks:         registry.New(deckDoc, logger.With().Str("component", "registry").Logger()),
		seasons:       season.NewSeasons(docs, logger.With().Str("component", "seasons").Logger()),
		legacyPlayers: playersDoc.Players,
		legacyDecks:   decksDoc.Decks,
		combos:        commander.NewCombinations(combosDoc),
		previews:      make(map[string]*bulkimport.Preview),
	}
	s.parser = bulkimport.NewParser(s.decks, logger.With().Str("component", "bulkimport").Logger())

	years := append(slices.Clone(cfg.Seasons), onDisk...)
	years = slices.DeleteFunc(years, func(y string) bool { return y == cfg.LegacyYear })
	if err := s.seasons.Preload(years...); err != nil {
		return nil, fmt.Errorf("failed to preload seasons: %w", err)
	}

	logger.Info().
		Int("decks", len(deckDoc.Decks)).
		Int("legacy_players", len(playersDoc.Players)).
		Int("legacy_decks", len(decksDoc.Decks)).
		Strs("seasons", s.seasons.Years()).
		Msg("league loaded")
	return s, nil
}

// Years lists the logged seasons currently held in memory.
func (s *LeagueService) Years() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seasons.Years()
}

// KnownPlayers is every player name from the legacy totals and all loaded
// seasons, sorted.
func (s *LeagueService) KnownPlayers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, p := range s.legacyPlayers {
		seen[p.Name] = struct{}{}
	}
	for _, n := range s.seasons.PlayerNames() {
		seen[n] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func (s *LeagueService) isLegacy(year string) bool {
	return year == s.cfg.LegacyYear
}

func (s *LeagueService) loggedSeason(year string) (*season.Store, error) {
	if s.isLegacy(year) {
		return nil, domain.NewValidationError("year", "Season %s only has legacy totals and cannot be edited.", year)
	}
	return s.seasons.Get(year)
}
