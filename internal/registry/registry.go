package registry

import (
	"fmt"
	"regexp"
	"strings"

	"commander-league/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
)

// UsageChecker reports the seasons whose matches reference a deck id.
type UsageChecker interface {
	SeasonsUsing(deckID string) []string
}

type Registry struct {
	decks  []domain.Deck
	byID   map[string]int
	fold   cases.Caser
	logger zerolog.Logger
}

func New(doc domain.DeckDocument, logger zerolog.Logger) *Registry {
	r := &Registry{
		decks:  make([]domain.Deck, 0, len(doc.Decks)),
		fold:   cases.Fold(),
		logger: logger,
	}
	r.decks = append(r.decks, doc.Decks...)
	r.rebuildIndex()
	return r
}

func (r *Registry) rebuildIndex() {
	r.byID = make(map[string]int, len(r.decks))
	for i, d := range r.decks {
		r.byID[d.ID] = i
	}
}

func (r *Registry) Get(id string) (domain.Deck, bool) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Deck{}, false
	}
	return cloneDeck(r.decks[i]), true
}

// NameOf resolves an id to its display name, falling back to the id itself.
func (r *Registry) NameOf(id string) string {
	if d, ok := r.Get(id); ok {
		return d.Name
	}
	return id
}

func (r *Registry) List() []domain.Deck {
	out := make([]domain.Deck, len(r.decks))
	for i, d := range r.decks {
		out[i] = cloneDeck(d)
	}
	return out
}

func (r *Registry) Active() []domain.Deck {
	out := make([]domain.Deck, 0, len(r.decks))
	for _, d := range r.decks {
		if d.Active {
			out = append(out, cloneDeck(d))
		}
	}
	return out
}

func (r *Registry) Document() domain.DeckDocument {
	return domain.DeckDocument{Decks: r.List()}
}

func (r *Registry) Add(name, commanderTokens string, active bool) (domain.Deck, error) {
	name, commanders, err := r.validate("", name, commanderTokens)
	if err != nil {
		return domain.Deck{}, err
	}

	deck := domain.Deck{
		ID:        r.uniqueID(Slugify(name)),
		Name:      name,
		Commander: commanders,
		Active:    active,
	}
	r.decks = append(r.decks, deck)
	r.rebuildIndex()

	r.logger.Info().Str("deck_id", deck.ID).Str("name", deck.Name).Msg("deck added")
	return cloneDeck(deck), nil
}

func (r *Registry) Edit(id, name, commanderTokens string, active bool) (domain.Deck, error) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Deck{}, fmt.Errorf("edit %s: %w", id, domain.ErrDeckNotFound)
	}

	name, commanders, err := r.validate(id, name, commanderTokens)
	if err != nil {
		return domain.Deck{}, err
	}

	r.decks[i].Name = name
	r.decks[i].Commander = commanders
	r.decks[i].Active = active
	r.rebuildIndex()

	r.logger.Info().Str("deck_id", id).Str("name", name).Bool("active", active).Msg("deck edited")
	return cloneDeck(r.decks[i]), nil
}

func (r *Registry) ToggleActive(id string) (domain.Deck, error) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Deck{}, fmt.Errorf("toggle %s: %w", id, domain.ErrDeckNotFound)
	}

	r.decks[i].Active = !r.decks[i].Active
	r.rebuildIndex()

	r.logger.Info().Str("deck_id", id).Bool("active", r.decks[i].Active).Msg("deck active flag toggled")
	return cloneDeck(r.decks[i]), nil
}

func (r *Registry) Remove(id string, usage UsageChecker) error {
	i, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, domain.ErrDeckNotFound)
	}

	if seasons := usage.SeasonsUsing(id); len(seasons) > 0 {
		r.logger.Warn().Str("deck_id", id).Strs("seasons", seasons).Msg("deck removal blocked by existing matches")
		return &domain.ReferentialIntegrityError{DeckID: id, Seasons: seasons}
	}

	r.decks = append(r.decks[:i], r.decks[i+1:]...)
	r.rebuildIndex()

	r.logger.Info().Str("deck_id", id).Msg("deck removed")
	return nil
}

// validate trims the name, parses the commander tokens and checks the
// case-insensitive name uniqueness against every deck except selfID.
func (r *Registry) validate(selfID, name, commanderTokens string) (string, domain.CommanderList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, domain.NewValidationError("name", "Deck name is required.")
	}

	commanders := ParseCommanders(commanderTokens)
	if len(commanders) == 0 {
		return "", nil, domain.NewValidationError("commander", "At least one commander is required.")
	}

	folded := r.fold.String(name)
	for _, d := range r.decks {
		if d.ID == selfID {
			continue
		}
		if r.fold.String(strings.TrimSpace(d.Name)) == folded {
			return "", nil, domain.NewValidationError("name", "A deck named %q already exists.", d.Name)
		}
	}

	return name, commanders, nil
}

func (r *Registry) uniqueID(base string) string {
	if _, taken := r.byID[base]; !taken {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, taken := r.byID[candidate]; !taken {
			return candidate
		}
	}
}

var (
	nonSlugRun      = regexp.MustCompile(`[^a-z0-9]+`)
	commanderSplits = regexp.MustCompile(`\n|;|\s\+\s`)
)

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slugify(s string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "deck"
	}
	return slug
}

// ParseCommanders splits the free-text commander field on newlines, semicolons
// and " + ". Commas are part of many legendary names and split-card names
// ("A // B") stay intact.
func ParseCommanders(tokens string) domain.CommanderList {
	parts := commanderSplits.Split(tokens, -1)
	out := make(domain.CommanderList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cloneDeck(d domain.Deck) domain.Deck {
	d.Commander = append(domain.CommanderList(nil), d.Commander...)
	return d
}
