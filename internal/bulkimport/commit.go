package bulkimport

import (
	"commander-league/internal/domain"
	"commander-league/internal/season"
)

// SeasonSource hands out the season store for a year, creating it lazily.
type SeasonSource interface {
	Get(year string) (*season.Store, error)
}

type CommitResult struct {
	Added   map[string]int `json:"added"`
	Skipped int            `json:"skipped"`
}

// Total is the number of matches written across all seasons.
func (r CommitResult) Total() int {
	n := 0
	for _, c := range r.Added {
		n += c
	}
	return n
}

// Commit writes the valid matches of preview into their seasons. It refuses a
// preview built from text other than currentText, or one with nothing to
// import. Matches whose signature already exists in the target season, or
// earlier in the same batch, are skipped.
func (p *Parser) Commit(preview *Preview, currentText string, seasons SeasonSource) (CommitResult, error) {
	if preview == nil || preview.Text != currentText {
		return CommitResult{}, domain.NewValidationError("preview", "The import text changed since the preview; preview it again.")
	}
	if len(preview.Valid) == 0 {
		return CommitResult{}, domain.NewValidationError("preview", "There are no valid matches to import.")
	}

	// Resolve every target season first so a bad year rejects the batch
	// before anything is written.
	stores := make(map[string]*season.Store)
	for _, m := range preview.Valid {
		year := m.Year()
		if _, ok := stores[year]; ok {
			continue
		}
		store, err := seasons.Get(year)
		if err != nil {
			return CommitResult{}, err
		}
		stores[year] = store
	}

	result := CommitResult{Added: make(map[string]int)}
	pending := make(map[string][]domain.Match)
	batch := make(map[string]struct{})
	for _, m := range preview.Valid {
		year := m.Year()
		sig := season.Signature(m)
		if _, dup := batch[sig]; dup || stores[year].HasSignature(sig) {
			result.Skipped++
			continue
		}
		batch[sig] = struct{}{}
		pending[year] = append(pending[year], m)
	}

	for year, matches := range pending {
		stores[year].AppendAll(matches)
		result.Added[year] = len(matches)
	}

	p.logger.Info().
		Str("preview_id", preview.ID).
		Int("added", result.Total()).
		Int("skipped", result.Skipped).
		Msg("bulk import committed")
	return result, nil
}
