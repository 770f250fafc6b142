package service

import (
	"commander-league/internal/domain"
	"commander-league/internal/repository"
	"commander-league/internal/season"
)

// SeasonMatches is one season as the admin page shows it.
type SeasonMatches struct {
	Year    string         `json:"year"`
	Matches []domain.Match `json:"matches"`
	Editing int            `json:"editing"`
}

func (s *LeagueService) ListMatches(year string) (SeasonMatches, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.loggedSeason(year)
	if err != nil {
		return SeasonMatches{}, err
	}
	editing, _ := store.EditingIndex()
	return SeasonMatches{Year: year, Matches: store.Matches(), Editing: editing}, nil
}

// SaveMatch validates c and appends it to the season, or replaces the match at
// index when index is not season.NoIndex. podSize 0 means the configured
// default.
func (s *LeagueService) SaveMatch(year string, index int, c season.Candidate, podSize int) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if podSize == 0 {
		podSize = s.cfg.DefaultPodSize
	}
	if podSize > s.cfg.MaxPodSize {
		return domain.Match{}, domain.NewValidationError("podSize", "Pod size can be at most %d.", s.cfg.MaxPodSize)
	}

	store, err := s.loggedSeason(year)
	if err != nil {
		return domain.Match{}, err
	}

	match, err := season.Validate(c, podSize, s.decks)
	if err != nil {
		return domain.Match{}, err
	}
	if match.Year() != year {
		return domain.Match{}, domain.NewValidationError("date", "Date %s is outside season %s.", match.Date, year)
	}

	saved, err := store.Upsert(index, match)
	if err != nil {
		return domain.Match{}, err
	}

	s.logger.Info().
		Str("year", year).
		Int("index", index).
		Str("date", saved.Date).
		Str("winner", saved.Winner).
		Msg("match saved")
	return saved, nil
}

func (s *LeagueService) RemoveMatch(year string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.loggedSeason(year)
	if err != nil {
		return err
	}
	if err := store.Remove(index); err != nil {
		return err
	}
	s.logger.Info().Str("year", year).Int("index", index).Msg("match removed")
	return nil
}

// BeginEdit loads the match at index into the season's edit session.
func (s *LeagueService) BeginEdit(year string, index int) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.loggedSeason(year)
	if err != nil {
		return domain.Match{}, err
	}
	return store.BeginEdit(index)
}

func (s *LeagueService) CancelEdit(year string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.loggedSeason(year)
	if err != nil {
		return err
	}
	store.CancelEdit()
	return nil
}

// ExportSeason renders matches-<year>.json.
func (s *LeagueService) ExportSeason(year string) ([]byte, error) {
	s.mu.Lock()
	store, err := s.loggedSeason(year)
	var doc domain.SeasonDocument
	if err == nil {
		doc = store.Document()
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return repository.Encode(doc)
}
