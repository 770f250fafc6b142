package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"commander-league/internal/constants"
	"commander-league/internal/domain"

	"github.com/rs/zerolog"
)

// CommanderCacheRepository is the durable side of the commander metadata
// cache.
type CommanderCacheRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCommanderCacheRepository(sqlDB *sql.DB, logger zerolog.Logger) *CommanderCacheRepository {
	return &CommanderCacheRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// dbContext bounds a single repository call by constants.DatabaseTimeout. A
// shorter caller deadline still wins.
func dbContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.DatabaseTimeout)
}

func (r *CommanderCacheRepository) LoadAll(ctx context.Context) ([]domain.CommanderCacheEntry, error) {
	ctx, cancel := dbContext(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT key, colors, image, cached_at FROM commander_cache`)
	if err != nil {
		return nil, fmt.Errorf("failed to query commander cache: %w", err)
	}
	defer rows.Close()

	var entries []domain.CommanderCacheEntry
	for rows.Next() {
		var (
			entry    domain.CommanderCacheEntry
			colors   string
			cachedAt int64
		)
		if err := rows.Scan(&entry.Key, &colors, &entry.Image, &cachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan commander cache row: %w", err)
		}
		if err := json.Unmarshal([]byte(colors), &entry.Colors); err != nil {
			r.logger.Warn().Err(err).Str("key", entry.Key).Msg("skipping commander cache row with bad colors")
			continue
		}
		entry.CachedAt = time.UnixMilli(cachedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commander cache: %w", err)
	}

	r.logger.Debug().Int("count", len(entries)).Msg("commander cache rows loaded")
	return entries, nil
}

// SaveAll upserts entries in batches, one transaction and one timeout per
// batch.
func (r *CommanderCacheRepository) SaveAll(ctx context.Context, entries []domain.CommanderCacheEntry) error {
	for start := 0; start < len(entries); start += constants.DBBatchSize {
		end := min(start+constants.DBBatchSize, len(entries))
		if err := r.saveBatch(ctx, entries[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *CommanderCacheRepository) saveBatch(ctx context.Context, entries []domain.CommanderCacheEntry) error {
	ctx, cancel := dbContext(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commander_cache (key, colors, image, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			colors = excluded.colors,
			image = excluded.image,
			cached_at = excluded.cached_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare commander cache upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		colors := e.Colors
		if colors == nil {
			colors = []string{}
		}
		encoded, err := json.Marshal(colors)
		if err != nil {
			return fmt.Errorf("failed to encode colors for %s: %w", e.Key, err)
		}
		if _, err := stmt.ExecContext(ctx, e.Key, string(encoded), e.Image, e.CachedAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to upsert commander cache entry %s: %w", e.Key, err)
		}
	}

	return tx.Commit()
}

// Prune deletes entries cached before cutoff.
func (r *CommanderCacheRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := dbContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM commander_cache WHERE cached_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune commander cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.Info().Int64("removed", n).Msg("pruned expired commander cache entries")
	}
	return n, nil
}
