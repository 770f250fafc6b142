package bulkimport

import (
	"regexp"
	"strings"
	"unicode"

	"commander-league/internal/domain"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DeckSource lists the decks a token may resolve to.
type DeckSource interface {
	List() []domain.Deck
}

var (
	nonTokenChars = regexp.MustCompile(`[^a-z0-9 \-]+`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// NormalizeToken lowercases s, removes apostrophes, folds accents, strips
// everything outside [a-z0-9 -] and collapses whitespace.
func NormalizeToken(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("'", "", "’", "", "‘", "").Replace(s)

	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(folder, s); err == nil {
		s = folded
	}

	s = spaceRun.ReplaceAllString(s, " ")
	s = nonTokenChars.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

type tier struct {
	name  string
	match func(token string, d domain.Deck) bool
}

var tiers = []tier{
	{"exact name", func(token string, d domain.Deck) bool {
		return NormalizeToken(d.Name) == token
	}},
	{"name contains", func(token string, d domain.Deck) bool {
		return strings.Contains(NormalizeToken(d.Name), token)
	}},
	{"exact commander", func(token string, d domain.Deck) bool {
		for _, c := range d.Commander {
			if NormalizeToken(c) == token {
				return true
			}
		}
		return false
	}},
	{"commander contains", func(token string, d domain.Deck) bool {
		for _, c := range d.Commander {
			if strings.Contains(NormalizeToken(c), token) {
				return true
			}
		}
		return false
	}},
}

// ResolveDeckIDFromToken walks the tiers in order and stops at the first one
// with any hit. More than one hit at that tier is an AmbiguityError; no hit in
// any tier is an UnresolvedReferenceError. line is carried into both.
func ResolveDeckIDFromToken(token, line string, decks DeckSource) (string, error) {
	key := NormalizeToken(token)
	if key == "" {
		return "", &domain.UnresolvedReferenceError{Token: token, Line: line}
	}

	all := decks.List()
	for _, t := range tiers {
		var hits []domain.Deck
		for _, d := range all {
			if t.match(key, d) {
				hits = append(hits, d)
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return hits[0].ID, nil
		default:
			names := make([]string, len(hits))
			for i, h := range hits {
				names[i] = h.Name
			}
			return "", &domain.AmbiguityError{Token: token, Tier: t.name, Line: line, Candidates: names}
		}
	}
	return "", &domain.UnresolvedReferenceError{Token: token, Line: line}
}
