package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"commander-league/internal/config"
	"commander-league/internal/constants"
	"commander-league/internal/domain"

	"github.com/rs/zerolog"
)

var seasonFilePattern = regexp.MustCompile(`^matches-(\d{4})\.json$`)

// DocumentStore reads the league's JSON documents from the data directory
// and renders them back for export. It never writes to the data directory;
// publishing an export is left to the admin.
type DocumentStore struct {
	dir    string
	logger zerolog.Logger
}

func NewDocumentStore(cfg *config.Config, logger zerolog.Logger) *DocumentStore {
	return &DocumentStore{dir: cfg.DataDir, logger: logger}
}

func (s *DocumentStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readRequired decodes a document that must exist.
func (s *DocumentStore) readRequired(name string, into any) error {
	p := s.path(name)
	data, err := os.ReadFile(p)
	if err != nil {
		return &domain.DocumentLoadError{Path: p, Err: err}
	}
	if err := json.Unmarshal(data, into); err != nil {
		return &domain.DocumentLoadError{Path: p, Err: err}
	}
	s.logger.Debug().Str("path", p).Msg("document loaded")
	return nil
}

func (s *DocumentStore) LoadDecks() (domain.DeckDocument, error) {
	var doc domain.DeckDocument
	if err := s.readRequired(constants.DeckDefinitionsFile, &doc); err != nil {
		return domain.DeckDocument{}, err
	}
	if doc.Decks == nil {
		doc.Decks = []domain.Deck{}
	}
	for i := range doc.Decks {
		if doc.Decks[i].Commander == nil {
			doc.Decks[i].Commander = domain.CommanderList{}
		}
	}
	return doc, nil
}

// LoadSeason reads matches-<year>.json. A missing file is an empty season.
func (s *DocumentStore) LoadSeason(year string) (domain.SeasonDocument, error) {
	p := s.path(constants.SeasonFile(year))
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug().Str("year", year).Msg("no season document, starting empty")
		return domain.SeasonDocument{Matches: []domain.Match{}}, nil
	}
	if err != nil {
		return domain.SeasonDocument{}, &domain.DocumentLoadError{Path: p, Err: err}
	}

	var doc domain.SeasonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.SeasonDocument{}, &domain.DocumentLoadError{Path: p, Err: err}
	}
	if doc.Matches == nil {
		doc.Matches = []domain.Match{}
	}
	for i := range doc.Matches {
		if doc.Matches[i].Players == nil {
			doc.Matches[i].Players = []domain.MatchPlayer{}
		}
		if doc.Matches[i].Notes.IsEmpty() {
			doc.Matches[i].Notes = nil
		}
	}
	return doc, nil
}

// SeasonYears lists the years that have a season document on disk.
func (s *DocumentStore) SeasonYears() ([]string, error) {
	paths, err := filepath.Glob(s.path("matches-*.json"))
	if err != nil {
		return nil, err
	}
	years := make([]string, 0, len(paths))
	for _, p := range paths {
		if m := seasonFilePattern.FindStringSubmatch(filepath.Base(p)); m != nil {
			years = append(years, m[1])
		}
	}
	sort.Strings(years)
	return years, nil
}

func (s *DocumentStore) LoadLegacyPlayers(year string) (domain.LegacyPlayersDocument, error) {
	var doc domain.LegacyPlayersDocument
	if err := s.readRequired(constants.LegacyPlayersFile(year), &doc); err != nil {
		return domain.LegacyPlayersDocument{}, err
	}
	if doc.Players == nil {
		doc.Players = []domain.PlayerTotals{}
	}
	return doc, nil
}

func (s *DocumentStore) LoadLegacyDecks(year string) (domain.LegacyDecksDocument, error) {
	var doc domain.LegacyDecksDocument
	if err := s.readRequired(constants.LegacyDecksFile(year), &doc); err != nil {
		return domain.LegacyDecksDocument{}, err
	}
	if doc.Decks == nil {
		doc.Decks = []domain.DeckTotals{}
	}
	return doc, nil
}

func (s *DocumentStore) LoadCombinations() (domain.CombinationsDocument, error) {
	var doc domain.CombinationsDocument
	if err := s.readRequired(constants.CombinationsFile, &doc); err != nil {
		return domain.CombinationsDocument{}, err
	}
	if doc.Combinations == nil {
		doc.Combinations = map[string][]string{}
	}
	return doc, nil
}

// Encode renders a document with two-space indentation and a single
// trailing newline.
func Encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}
