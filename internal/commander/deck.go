package commander

import (
	"context"
	"sort"

	"commander-league/internal/domain"

	"golang.org/x/sync/errgroup"
)

const UnknownCombination = "Unknown"

// Combinations names colour sets, e.g. "Esper" for White, Blue and Black.
type Combinations struct {
	byName map[string][]string
}

func NewCombinations(doc domain.CombinationsDocument) *Combinations {
	byName := make(map[string][]string, len(doc.Combinations))
	for name, colors := range doc.Combinations {
		byName[name] = colorSet(colors)
	}
	return &Combinations{byName: byName}
}

// Label returns the one combination whose colours equal colors as a set.
// No match, or more than one, is UnknownCombination.
func (c *Combinations) Label(colors []string) string {
	if c == nil {
		return UnknownCombination
	}
	want := colorSet(colors)

	found := ""
	for name, set := range c.byName {
		if !equalSets(set, want) {
			continue
		}
		if found != "" {
			return UnknownCombination
		}
		found = name
	}
	if found == "" {
		return UnknownCombination
	}
	return found
}

func colorSet(colors []string) []string {
	seen := make(map[string]struct{}, len(colors))
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type DeckInfo struct {
	Colors      []string `json:"colors"`
	Images      []string `json:"images"`
	Combination string   `json:"combination"`
}

// ResolveDeck resolves every commander of a deck concurrently and combines
// their colours in first-seen order.
func (r *Resolver) ResolveDeck(ctx context.Context, commanders []string, combos *Combinations) DeckInfo {
	infos := make([]domain.CommanderInfo, len(commanders))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range commanders {
		g.Go(func() error {
			infos[i] = r.Resolve(gctx, name)
			return nil
		})
	}
	_ = g.Wait()

	out := DeckInfo{Colors: []string{}, Images: []string{}}
	seen := make(map[string]struct{})
	for _, info := range infos {
		for _, c := range info.Colors {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out.Colors = append(out.Colors, c)
		}
		if info.Image != "" {
			out.Images = append(out.Images, info.Image)
		}
	}
	out.Combination = combos.Label(out.Colors)
	return out
}
