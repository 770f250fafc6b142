package season

import (
	"regexp"
	"sort"

	"commander-league/internal/domain"

	"github.com/rs/zerolog"
)

// Loader fetches the backing document for a season. A missing document must
// come back as an empty SeasonDocument and a nil error.
type Loader interface {
	LoadSeason(year string) (domain.SeasonDocument, error)
}

var yearKey = regexp.MustCompile(`^\d{4}$`)

// Seasons lazily materialises one Store per year and keeps it for the
// lifetime of the session.
type Seasons struct {
	loader Loader
	stores map[string]*Store
	logger zerolog.Logger
}

func NewSeasons(loader Loader, logger zerolog.Logger) *Seasons {
	return &Seasons{
		loader: loader,
		stores: make(map[string]*Store),
		logger: logger,
	}
}

func (s *Seasons) Get(year string) (*Store, error) {
	if !yearKey.MatchString(year) {
		return nil, domain.NewValidationError("year", "Season %q is not a 4-digit year.", year)
	}
	if store, ok := s.stores[year]; ok {
		return store, nil
	}

	doc, err := s.loader.LoadSeason(year)
	if err != nil {
		s.logger.Warn().Err(err).Str("year", year).Msg("season document unreadable, starting empty")
		doc = domain.SeasonDocument{}
	}

	store := NewStore(year, doc)
	s.stores[year] = store
	s.logger.Debug().Str("year", year).Int("matches", store.Len()).Msg("season loaded")
	return store, nil
}

// Preload materialises every listed season so usage checks see them.
func (s *Seasons) Preload(years ...string) error {
	for _, y := range years {
		if _, err := s.Get(y); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seasons) Years() []string {
	years := make([]string, 0, len(s.stores))
	for y := range s.stores {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// SeasonsUsing lists, in year order, every loaded season with a match that
// references deckID.
func (s *Seasons) SeasonsUsing(deckID string) []string {
	var used []string
	for _, y := range s.Years() {
		if s.stores[y].UsesDeck(deckID) {
			used = append(used, y)
		}
	}
	return used
}

func (s *Seasons) PlayerNames() []string {
	seen := make(map[string]struct{})
	for _, store := range s.stores {
		for _, m := range store.matches {
			for _, p := range m.Players {
				seen[p.Name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
