package database

import (
	"context"
	"fmt"
	"time"

	"ainews-watch/aggregator/internal/models"
)

// SyncSources upserts sources by name in one transaction. Sources missing
// from the list are kept.
func (db *DB) SyncSources(ctx context.Context, sources []*models.Source) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO sources (name, feed_url, category_hint, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			feed_url = excluded.feed_url,
			category_hint = excluded.category_hint,
			is_active = excluded.is_active`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare source upsert: %w", err)
	}
	defer stmt.Close()

	for _, s := range sources {
		created := s.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, s.Name, s.FeedURL, s.CategoryHint, s.IsActive, FormatTime(created)); err != nil {
			return 0, fmt.Errorf("failed to upsert source %q: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sources: %w", err)
	}
	return len(sources), nil
}

// ActiveSources returns the sources a run should fetch, in insertion order.
func (db *DB) ActiveSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	err := db.SelectContext(ctx, &sources, `
		SELECT id, name, feed_url, category_hint, is_active, last_fetched, created_at
		FROM sources
		WHERE is_active = 1
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load active sources: %w", err)
	}
	return sources, nil
}

// TouchSource records a successful fetch of the named source.
func (db *DB) TouchSource(ctx context.Context, name string, at time.Time) error {
	res, err := db.ExecContext(ctx, `UPDATE sources SET last_fetched = ? WHERE name = ?`, FormatTime(at), name)
	if err != nil {
		return fmt.Errorf("failed to update last_fetched for %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("source %q not found", name)
	}
	return nil
}
