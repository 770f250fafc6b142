package bulkimport

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"commander-league/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var (
	separatorLine = regexp.MustCompile(`^[-–—]{3,}$`)
	datePattern   = regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})[-/](\d{4}|\d{2})\b`)
	segmentSplit  = regexp.MustCompile(`\s+[-–—]\s+`)
)

const (
	minYear = 1900
	maxYear = 2100
)

// Rejection is a block that could not become a match.
type Rejection struct {
	Reason string   `json:"reason"`
	Lines  []string `json:"lines"`
}

// Preview is the result of parsing one input text. It can only be committed
// against the exact text it was built from.
type Preview struct {
	ID      string         `json:"id"`
	Text    string         `json:"-"`
	Valid   []domain.Match `json:"valid"`
	Invalid []Rejection    `json:"invalid"`
}

type Parser struct {
	decks  DeckSource
	logger zerolog.Logger
}

func NewParser(decks DeckSource, logger zerolog.Logger) *Parser {
	return &Parser{decks: decks, logger: logger}
}

// Preview parses text into candidate matches. Every block ends up either in
// Valid or in Invalid; the only error is failing to allocate a preview id.
func (p *Parser) Preview(text string) (*Preview, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate preview id: %w", err)
	}

	preview := &Preview{
		ID:      id,
		Text:    text,
		Valid:   []domain.Match{},
		Invalid: []Rejection{},
	}

	blocks := splitBlocks(text)
	fallback, hasFallback := firstDate(blocks)

	for _, b := range blocks {
		m, err := p.parseBlock(b, fallback, hasFallback)
		if err != nil {
			preview.Invalid = append(preview.Invalid, Rejection{Reason: err.Error(), Lines: b})
			continue
		}
		preview.Valid = append(preview.Valid, m)
	}

	p.logger.Debug().
		Str("preview_id", id).
		Int("blocks", len(blocks)).
		Int("valid", len(preview.Valid)).
		Int("invalid", len(preview.Invalid)).
		Msg("bulk import previewed")
	return preview, nil
}

// splitBlocks returns the trimmed non-empty lines of text grouped by
// separator lines.
func splitBlocks(text string) [][]string {
	var blocks [][]string
	var current []string
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if separatorLine.MatchString(line) {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// parseDate finds a dd-mm-yy(yy) date in line. found reports whether the
// pattern occurs at all; ok whether it named a real calendar day in range.
func parseDate(line string) (date string, found, ok bool) {
	sub := datePattern.FindStringSubmatch(line)
	if sub == nil {
		return "", false, false
	}

	day, _ := strconv.Atoi(sub[1])
	month, _ := strconv.Atoi(sub[2])
	year, _ := strconv.Atoi(sub[3])
	if len(sub[3]) == 2 {
		year += 2000
	}
	if year < minYear || year > maxYear {
		return "", true, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", true, false
	}
	return t.Format("2006-01-02"), true, true
}

func firstDate(blocks [][]string) (string, bool) {
	for _, b := range blocks {
		for _, line := range b {
			if d, _, ok := parseDate(line); ok {
				return d, true
			}
		}
	}
	return "", false
}

type seat struct {
	name   string
	deckID string
	winner bool
}

// parseBlock turns one block into a match. A block holding only a date line
// is rejected like any other block short of players; its date still serves
// as the fallback for the rest of the input.
func (p *Parser) parseBlock(lines []string, fallback string, hasFallback bool) (domain.Match, error) {
	var date string
	var seats []seat

	for _, line := range lines {
		if d, found, ok := parseDate(line); found {
			if ok && date == "" {
				date = d
			}
			continue
		}

		s, err := p.parseSeat(line)
		if err != nil {
			return domain.Match{}, err
		}
		seats = append(seats, s)
	}

	if len(seats) == 0 {
		return domain.Match{}, errNotEnoughPlayers(0)
	}

	if date == "" {
		if !hasFallback {
			return domain.Match{}, errors.New("no date found")
		}
		date = fallback
	}

	winner := ""
	for _, s := range seats {
		if !s.winner {
			continue
		}
		if winner != "" && winner != s.name {
			return domain.Match{}, fmt.Errorf("multiple winners: %s and %s", winner, s.name)
		}
		winner = s.name
	}
	if winner == "" {
		return domain.Match{}, errors.New("no winner marked")
	}

	if len(seats) < 2 {
		return domain.Match{}, errNotEnoughPlayers(len(seats))
	}

	seen := make(map[string]struct{}, len(seats))
	players := make([]domain.MatchPlayer, 0, len(seats))
	for _, s := range seats {
		if _, dup := seen[s.name]; dup {
			return domain.Match{}, fmt.Errorf("player %s listed more than once", s.name)
		}
		seen[s.name] = struct{}{}
		players = append(players, domain.MatchPlayer{Name: s.name, DeckID: s.deckID})
	}
	if _, ok := seen[winner]; !ok {
		return domain.Match{}, fmt.Errorf("winner %s is not among the players", winner)
	}

	return domain.Match{Date: date, Players: players, Winner: winner}, nil
}

func errNotEnoughPlayers(n int) error {
	return fmt.Errorf("need at least 2 players, found %d", n)
}

// parseSeat reads "Name - Deck[ - win]".
func (p *Parser) parseSeat(line string) (seat, error) {
	var segments []string
	for _, seg := range segmentSplit.Split(line, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) < 2 {
		return seat{}, fmt.Errorf("line %q is not in the form Name - Deck", line)
	}

	s := seat{name: segments[0]}
	var deckParts []string
	for _, seg := range segments[1:] {
		if strings.EqualFold(seg, "win") {
			s.winner = true
			continue
		}
		deckParts = append(deckParts, seg)
	}
	if len(deckParts) == 0 {
		return seat{}, fmt.Errorf("line %q has no deck", line)
	}

	deckID, err := ResolveDeckIDFromToken(strings.Join(deckParts, " - "), line, p.decks)
	if err != nil {
		return seat{}, err
	}
	s.deckID = deckID
	return s, nil
}
