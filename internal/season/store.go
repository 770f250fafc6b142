package season

import (
	"sort"
	"strings"

	"commander-league/internal/domain"
)

// NoIndex appends instead of replacing in Upsert.
const NoIndex = -1

// Store holds one season's matches, always sorted ascending by date.
type Store struct {
	year    string
	matches []domain.Match
	editing int
}

func NewStore(year string, doc domain.SeasonDocument) *Store {
	s := &Store{
		year:    year,
		matches: make([]domain.Match, 0, len(doc.Matches)),
		editing: NoIndex,
	}
	for _, m := range doc.Matches {
		s.matches = append(s.matches, cloneMatch(m))
	}
	s.sort()
	return s
}

func (s *Store) Year() string {
	return s.year
}

func (s *Store) Len() int {
	return len(s.matches)
}

func (s *Store) Matches() []domain.Match {
	out := make([]domain.Match, len(s.matches))
	for i, m := range s.matches {
		out[i] = cloneMatch(m)
	}
	return out
}

func (s *Store) At(index int) (domain.Match, error) {
	if index < 0 || index >= len(s.matches) {
		return domain.Match{}, domain.ErrMatchNotFound
	}
	return cloneMatch(s.matches[index]), nil
}

func (s *Store) Document() domain.SeasonDocument {
	return domain.SeasonDocument{Matches: s.Matches()}
}

// Upsert appends match when index is NoIndex, otherwise replaces the record
// at index. The season is re-sorted by date afterwards, so same-day matches
// may change relative order across edits.
func (s *Store) Upsert(index int, match domain.Match) (domain.Match, error) {
	match = cloneMatch(match)
	switch {
	case index == NoIndex:
		s.matches = append(s.matches, match)
	case index >= 0 && index < len(s.matches):
		s.matches[index] = match
		if s.editing == index {
			s.editing = NoIndex
		}
	default:
		return domain.Match{}, domain.ErrMatchNotFound
	}
	s.sort()
	return cloneMatch(match), nil
}

func (s *Store) Remove(index int) error {
	if index < 0 || index >= len(s.matches) {
		return domain.ErrMatchNotFound
	}
	s.matches = append(s.matches[:index], s.matches[index+1:]...)
	switch {
	case s.editing == index:
		s.editing = NoIndex
	case s.editing > index:
		s.editing--
	}
	return nil
}

// AppendAll inserts every match and sorts once.
func (s *Store) AppendAll(matches []domain.Match) {
	for _, m := range matches {
		s.matches = append(s.matches, cloneMatch(m))
	}
	s.sort()
}

func (s *Store) HasSignature(sig string) bool {
	for _, m := range s.matches {
		if Signature(m) == sig {
			return true
		}
	}
	return false
}

func (s *Store) UsesDeck(deckID string) bool {
	for _, m := range s.matches {
		for _, p := range m.Players {
			if p.DeckID == deckID {
				return true
			}
		}
	}
	return false
}

// BeginEdit marks index as loaded into the edit form.
func (s *Store) BeginEdit(index int) (domain.Match, error) {
	m, err := s.At(index)
	if err != nil {
		return domain.Match{}, err
	}
	s.editing = index
	return m, nil
}

func (s *Store) EditingIndex() (int, bool) {
	return s.editing, s.editing != NoIndex
}

func (s *Store) CancelEdit() {
	s.editing = NoIndex
}

// sort orders the season by date. An open edit session follows its record
// to the record's new position.
func (s *Store) sort() {
	order := make([]int, len(s.matches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return s.matches[order[i]].Date < s.matches[order[j]].Date
	})

	sorted := make([]domain.Match, len(s.matches))
	editing := NoIndex
	for to, from := range order {
		sorted[to] = s.matches[from]
		if from == s.editing {
			editing = to
		}
	}
	s.matches = sorted
	s.editing = editing
}

// Signature identifies a match for import de-duplication:
// date | sorted comma-joined player names | winner.
func Signature(m domain.Match) string {
	names := m.PlayerNames()
	sort.Strings(names)
	return m.Date + "|" + strings.Join(names, ",") + "|" + m.Winner
}

func cloneMatch(m domain.Match) domain.Match {
	m.Players = append([]domain.MatchPlayer{}, m.Players...)
	if m.Notes != nil {
		notes := *m.Notes
		m.Notes = &notes
	}
	return m
}
