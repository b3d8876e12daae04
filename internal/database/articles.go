package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ainews-watch/aggregator/internal/models"
)

// ArticleExists reports whether an article with url is already stored.
func (db *DB) ArticleExists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM articles WHERE url = ?)`, url)
	if err != nil {
		return false, fmt.Errorf("failed to check article %s: %w", url, err)
	}
	return exists, nil
}

// SaveArticle inserts a in its own transaction. A URL that is already stored
// is left untouched and reported as not inserted.
func (db *DB) SaveArticle(ctx context.Context, a *models.Article) (inserted bool, err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Warn().Err(rbErr).Str("url", a.URL).Msg("Failed to roll back article insert")
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO articles (title, url, source_name, source_url, category, summary, full_content, published_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO NOTHING`,
		a.Title,
		a.URL,
		a.SourceName,
		a.SourceURL,
		a.Category,
		a.Summary,
		a.FullContent,
		nullableTime(a.PublishedAt.Valid, a.PublishedAt.Time),
		FormatTime(a.FetchedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		if id, idErr := res.LastInsertId(); idErr == nil {
			a.ID = id
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit article: %w", err)
	}
	return affected > 0, nil
}

// PurgeArticlesBefore deletes every article fetched strictly before cutoff,
// in one transaction, and returns how many rows went.
func (db *DB) PurgeArticlesBefore(ctx context.Context, cutoff time.Time) (purged int64, err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE fetched_at < ?`, FormatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles: %w", err)
	}

	purged, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w", err)
	}
	return purged, nil
}
