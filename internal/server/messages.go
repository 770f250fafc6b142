package server

import (
	"commander-league/internal/bulkimport"
	"commander-league/internal/commander"
	"commander-league/internal/domain"
	"commander-league/internal/season"
	"commander-league/internal/service"
	"commander-league/internal/stats"
)

type ListDecksRequest struct {
	ActiveOnly bool `json:"activeOnly"`
}

type ListDecksResponse struct {
	Decks []domain.Deck `json:"decks"`
}

type AddDeckRequest struct {
	Deck service.DeckInput `json:"deck"`
}

type EditDeckRequest struct {
	ID   string            `json:"id"`
	Deck service.DeckInput `json:"deck"`
}

type DeckResponse struct {
	Deck domain.Deck `json:"deck"`
}

type DeckIDRequest struct {
	ID string `json:"id"`
}

type Empty struct{}

type ListMatchesRequest struct {
	Year string `json:"year"`
}

type ListMatchesResponse struct {
	Season service.SeasonMatches `json:"season"`
}

// SaveMatchRequest appends when Index is omitted and replaces otherwise.
type SaveMatchRequest struct {
	Year    string           `json:"year"`
	Index   *int             `json:"index,omitempty"`
	PodSize int              `json:"podSize,omitempty"`
	Match   season.Candidate `json:"match"`
}

type MatchResponse struct {
	Match domain.Match `json:"match"`
}

type MatchIndexRequest struct {
	Year  string `json:"year"`
	Index int    `json:"index"`
}

type PreviewImportRequest struct {
	Text string `json:"text"`
}

type PreviewImportResponse struct {
	Preview *bulkimport.Preview `json:"preview"`
}

type CommitImportRequest struct {
	PreviewID string `json:"previewId"`
	Text      string `json:"text"`
}

type CommitImportResponse struct {
	Result bulkimport.CommitResult `json:"result"`
	Total  int                     `json:"total"`
}

type GetStatsRequest struct {
	Tab             string          `json:"tab"`
	Sort            stats.SortOrder `json:"sort"`
	IncludeInactive bool            `json:"includeInactive"`
}

type PlayerView struct {
	stats.PlayerRow
	WinRate string `json:"winRate"`
}

type DeckView struct {
	stats.DeckRow
	WinRate string `json:"winRate"`
}

type GetStatsResponse struct {
	Tabs    []string     `json:"tabs"`
	Title   string       `json:"title"`
	Players []PlayerView `json:"players"`
	Decks   []DeckView   `json:"decks"`
}

type GetPlayerDecksRequest struct {
	Tab    string `json:"tab"`
	Player string `json:"player"`
}

type GetPlayerDecksResponse struct {
	Decks []stats.PlayerDeckRow `json:"decks"`
}

type ResolveDeckInfoResponse struct {
	Info commander.DeckInfo `json:"info"`
}

type KnownPlayersResponse struct {
	Players []string `json:"players"`
}
