package service

import (
	"commander-league/internal/bulkimport"
	"commander-league/internal/domain"
	"commander-league/internal/season"
)

// loggedSeasons keeps imports out of the legacy season.
type loggedSeasons struct{ s *LeagueService }

func (l loggedSeasons) Get(year string) (*season.Store, error) {
	return l.s.loggedSeason(year)
}

// PreviewImport parses pasted log text and keeps the preview so a later
// CommitImport can refer to it by id.
func (s *LeagueService) PreviewImport(text string) (*bulkimport.Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preview, err := s.parser.Preview(text)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build import preview")
		return nil, err
	}
	// Only the latest preview can be committed.
	clear(s.previews)
	s.previews[preview.ID] = preview

	s.logger.Info().
		Str("preview_id", preview.ID).
		Int("valid", len(preview.Valid)).
		Int("invalid", len(preview.Invalid)).
		Msg("import previewed")
	return preview, nil
}

// CommitImport writes a previewed batch, provided text is still the text the
// preview was built from.
func (s *LeagueService) CommitImport(previewID, text string) (bulkimport.CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preview, ok := s.previews[previewID]
	if !ok {
		return bulkimport.CommitResult{}, domain.NewValidationError("preview", "Unknown or expired preview; preview the text again.")
	}
	result, err := s.parser.Commit(preview, text, loggedSeasons{s})
	if err != nil {
		return bulkimport.CommitResult{}, err
	}
	delete(s.previews, previewID)

	s.logger.Info().
		Str("preview_id", previewID).
		Int("added", result.Total()).
		Int("skipped", result.Skipped).
		Msg("import committed")
	return result, nil
}
