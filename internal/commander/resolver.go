package commander

import (
	"context"
	"strings"
	"sync"
	"time"

	"commander-league/internal/api"
	"commander-league/internal/constants"
	"commander-league/internal/domain"

	"github.com/bep/debounce"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Lookup is the external card metadata source.
type Lookup interface {
	NamedFuzzy(ctx context.Context, name string) (*api.Card, error)
}

// Store persists the cache between runs.
type Store interface {
	LoadAll(ctx context.Context) ([]domain.CommanderCacheEntry, error)
	SaveAll(ctx context.Context, entries []domain.CommanderCacheEntry) error
}

type Option func(*Resolver)

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func WithFlushDelay(d time.Duration) Option {
	return func(r *Resolver) { r.debounced = debounce.New(d) }
}

func WithGateSize(n int64) Option {
	return func(r *Resolver) { r.gate = semaphore.NewWeighted(n) }
}

// Resolver maps commander names to colours and artwork. Cached answers never
// wait on the lookup gate; misses are looked up at most once per key at a
// time, with a bounded number of lookups in flight.
type Resolver struct {
	lookup Lookup
	store  Store
	logger zerolog.Logger

	mu     sync.Mutex
	cache  map[string]domain.CommanderCacheEntry
	closed bool

	gate      *semaphore.Weighted
	group     singleflight.Group
	debounced func(func())
	flushMu   sync.Mutex

	now func() time.Time
	ttl time.Duration
}

func NewResolver(lookup Lookup, store Store, logger zerolog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		lookup:    lookup,
		store:     store,
		logger:    logger,
		cache:     make(map[string]domain.CommanderCacheEntry),
		gate:      semaphore.NewWeighted(constants.CommanderLookupLimit),
		debounced: debounce.New(constants.CommanderFlushDelay),
		now:       time.Now,
		ttl:       constants.CommanderCacheTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Key normalises a commander name for caching: the front face of a split
// name, trimmed and lowercased.
func Key(name string) string {
	if i := strings.Index(name, "//"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Load fills the in-memory cache from the durable store, dropping expired
// entries.
func (r *Resolver) Load(ctx context.Context) error {
	entries, err := r.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	loaded := 0
	for _, e := range entries {
		if now.Sub(e.CachedAt) > r.ttl {
			continue
		}
		r.cache[e.Key] = e
		loaded++
	}
	r.logger.Info().Int("entries", loaded).Int("expired", len(entries)-loaded).Msg("commander cache loaded")
	return nil
}

func (r *Resolver) cached(key string) (domain.CommanderInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache[key]
	if !ok || r.now().Sub(e.CachedAt) > r.ttl {
		return domain.CommanderInfo{}, false
	}
	return e.Info(), true
}

// Resolve never fails: an unreachable or unknown name resolves to an empty
// result which is cached like any other.
func (r *Resolver) Resolve(ctx context.Context, name string) domain.CommanderInfo {
	key := Key(name)
	if key == "" {
		return domain.CommanderInfo{Colors: []string{}}
	}
	if info, ok := r.cached(key); ok {
		return info
	}

	// Once started a lookup runs to completion even if this caller goes away.
	lookupCtx := context.WithoutCancel(ctx)
	v, _, _ := r.group.Do(key, func() (any, error) {
		if err := r.gate.Acquire(lookupCtx, 1); err != nil {
			return domain.CommanderInfo{Colors: []string{}}, nil
		}
		defer r.gate.Release(1)

		if info, ok := r.cached(key); ok {
			return info, nil
		}
		return r.fetch(lookupCtx, key), nil
	})
	info := v.(domain.CommanderInfo)
	info.Colors = append([]string{}, info.Colors...)
	return info
}

func (r *Resolver) fetch(ctx context.Context, key string) domain.CommanderInfo {
	entry := domain.CommanderCacheEntry{Key: key, Colors: []string{}, CachedAt: r.now()}

	card, err := r.lookup.NamedFuzzy(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("commander", key).Msg("commander lookup failed, caching empty result")
	} else {
		entry.Colors, entry.Image = cardInfo(card)
		r.logger.Debug().Str("commander", key).Strs("colors", entry.Colors).Msg("commander resolved")
	}

	r.mu.Lock()
	r.cache[key] = entry
	r.mu.Unlock()

	r.scheduleFlush()
	return entry.Info()
}

var colorNames = map[string]string{
	"W": "White",
	"U": "Blue",
	"B": "Black",
	"R": "Red",
	"G": "Green",
}

// cardInfo reads colours and image from the front face when the card has
// faces, falling back to the card itself.
func cardInfo(card *api.Card) ([]string, string) {
	symbols := card.Colors
	var image string
	if card.ImageURIs != nil {
		image = card.ImageURIs.Normal
	}

	if len(card.CardFaces) > 0 {
		face := card.CardFaces[0]
		if len(face.Colors) > 0 {
			symbols = face.Colors
		}
		if face.ImageURIs != nil && face.ImageURIs.Normal != "" {
			image = face.ImageURIs.Normal
		}
	}

	colors := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if n, ok := colorNames[strings.ToUpper(s)]; ok {
			colors = append(colors, n)
		}
	}
	if len(colors) == 0 {
		colors = append(colors, "Colorless")
	}
	return colors, image
}

func (r *Resolver) scheduleFlush() {
	if r.isClosed() {
		return
	}
	r.debounced(func() {
		if r.isClosed() {
			return
		}
		if err := r.Flush(context.Background()); err != nil {
			r.logger.Error().Err(err).Msg("failed to flush commander cache")
		}
	})
}

// Flush writes the current cache to the durable store. Each flush takes a
// fresh snapshot, so a late flush never writes older data than an earlier one.
func (r *Resolver) Flush(ctx context.Context) error {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.mu.Lock()
	snapshot := make([]domain.CommanderCacheEntry, 0, len(r.cache))
	for _, e := range r.cache {
		e.Colors = append([]string{}, e.Colors...)
		snapshot = append(snapshot, e)
	}
	r.mu.Unlock()

	if err := r.store.SaveAll(ctx, snapshot); err != nil {
		return err
	}
	r.logger.Debug().Int("entries", len(snapshot)).Msg("commander cache flushed")
	return nil
}

// Close stops background flushes, including one already pending, and writes
// the cache one last time. Lookups still work afterwards but are no longer
// persisted.
func (r *Resolver) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.Flush(ctx)
}

func (r *Resolver) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
