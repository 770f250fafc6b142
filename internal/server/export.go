package server

import (
	"errors"
	"fmt"
	"net/http"

	"commander-league/internal/constants"
	"commander-league/internal/domain"
)

// ExportDecks serves deck-definitions.json as an attachment.
func (s *LeagueServer) ExportDecks(w http.ResponseWriter, r *http.Request) {
	body, err := s.svc.ExportDecks()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAttachment(w, constants.DeckDefinitionsFile, body)
}

// ExportSeason serves matches-<year>.json as an attachment.
func (s *LeagueServer) ExportSeason(w http.ResponseWriter, r *http.Request) {
	year := r.PathValue("year")
	body, err := s.svc.ExportSeason(year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAttachment(w, constants.SeasonFile(year), body)
}

func writeAttachment(w http.ResponseWriter, name string, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *LeagueServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *domain.ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDeckNotFound), errors.Is(err, domain.ErrMatchNotFound):
		status = http.StatusNotFound
	}
	s.logger.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("plain http request failed")
	http.Error(w, err.Error(), status)
}
