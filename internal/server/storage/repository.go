package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ainews-watch/aggregator/internal/database"
	"ainews-watch/aggregator/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// listColumns are the article columns of list views; full_content is left out.
var listColumns = []string{
	"id", "title", "url", "source_name", "source_url", "category", "summary", "published_at", "fetched_at",
}

// ArticleFilter narrows ListArticles. Empty strings match everything.
type ArticleFilter struct {
	Category string
	Source   string
	Since    time.Time
	Limit    int
}

// SourceRow is a configured source with the number of stored articles.
type SourceRow struct {
	models.Source
	ArticleCount int `db:"article_count"`
}

// Stats summarizes the article store.
type Stats struct {
	TotalArticles int
	LatestUpdate  *time.Time
	Categories    map[string]int
	Sources       map[string]int
}

// Repository is the read side of the article store.
type Repository interface {
	ListArticles(ctx context.Context, f ArticleFilter) ([]models.Article, error)
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	FetchArticles(ctx context.Context, limit int, since *time.Time, cursorTimestamp *time.Time, cursorID *int64) ([]models.Article, error)
	CategoryCounts(ctx context.Context) (map[string]int, error)
	ListSources(ctx context.Context) ([]SourceRow, error)
	Stats(ctx context.Context) (*Stats, error)
}

// sqlxRepository implements Repository using sqlx and squirrel.
type sqlxRepository struct {
	db *database.DB
}

// NewRepository creates a new repository instance.
func NewRepository(db *database.DB) Repository {
	return &sqlxRepository{db: db}
}

// ListArticles returns articles fetched at or after f.Since, newest
// publication first.
func (r *sqlxRepository) ListArticles(ctx context.Context, f ArticleFilter) ([]models.Article, error) {
	q := sq.Select(listColumns...).
		From("articles").
		Where(sq.GtOrEq{"fetched_at": database.FormatTime(f.Since)}).
		OrderBy("published_at DESC", "id DESC")

	if f.Category != "" {
		q = q.Where(sq.Eq{"category": f.Category})
	}
	if f.Source != "" {
		q = q.Where(sq.Eq{"source_name": f.Source})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	return r.selectArticles(ctx, q)
}

// GetArticle returns one article including its full content.
func (r *sqlxRepository) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	query, args, err := sq.Select("*").From("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var a models.Article
	if err := r.db.GetContext(ctx, &a, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &a, nil
}

// FetchArticles retrieves articles fetched strictly after since, or strictly
// after the cursor position, in (fetched_at, id) order.
func (r *sqlxRepository) FetchArticles(ctx context.Context, limit int, since *time.Time, cursorTimestamp *time.Time, cursorID *int64) ([]models.Article, error) {
	q := sq.Select(listColumns...).
		From("articles").
		OrderBy("fetched_at ASC", "id ASC").
		Limit(uint64(limit))

	switch {
	case cursorTimestamp != nil && cursorID != nil:
		ts := database.FormatTime(*cursorTimestamp)
		q = q.Where(sq.Or{
			sq.Gt{"fetched_at": ts},
			sq.And{sq.Eq{"fetched_at": ts}, sq.Gt{"id": *cursorID}},
		})
	case since != nil:
		q = q.Where(sq.Gt{"fetched_at": database.FormatTime(*since)})
	default:
		return nil, fmt.Errorf("either 'since' or cursor parameters must be provided")
	}

	return r.selectArticles(ctx, q)
}

// CategoryCounts returns the number of stored articles per category.
func (r *sqlxRepository) CategoryCounts(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "category")
}

// ListSources returns every configured source, active or not.
func (r *sqlxRepository) ListSources(ctx context.Context) ([]SourceRow, error) {
	query, args, err := sq.Select(
		"s.id AS id",
		"s.name AS name",
		"s.feed_url AS feed_url",
		"s.category_hint AS category_hint",
		"s.is_active AS is_active",
		"s.last_fetched AS last_fetched",
		"s.created_at AS created_at",
		"(SELECT COUNT(*) FROM articles a WHERE a.source_name = s.name) AS article_count",
	).From("sources s").OrderBy("s.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows := []SourceRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return rows, nil
}

// Stats returns totals, the latest fetch time and per-category and
// per-source counts.
func (r *sqlxRepository) Stats(ctx context.Context) (*Stats, error) {
	var totals struct {
		Total  int            `db:"total"`
		Latest sql.NullString `db:"latest"`
	}
	query, args, err := sq.Select("COUNT(*) AS total", "MAX(fetched_at) AS latest").From("articles").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	if err := r.db.GetContext(ctx, &totals, query, args...); err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	stats := &Stats{TotalArticles: totals.Total}
	if totals.Latest.Valid {
		latest, err := time.ParseInLocation(database.TimeFormat, totals.Latest.String, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("unexpected timestamp %q: %w", totals.Latest.String, err)
		}
		stats.LatestUpdate = &latest
	}

	if stats.Categories, err = r.countBy(ctx, "category"); err != nil {
		return nil, err
	}
	if stats.Sources, err = r.countBy(ctx, "source_name"); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *sqlxRepository) countBy(ctx context.Context, column string) (map[string]int, error) {
	query, args, err := sq.Select(column+" AS label", "COUNT(*) AS n").
		From("articles").
		GroupBy(column).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []struct {
		Label sql.NullString `db:"label"`
		N     int            `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Label.String] += row.N
	}
	return counts, nil
}

func (r *sqlxRepository) selectArticles(ctx context.Context, q sq.SelectBuilder) ([]models.Article, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	articles := []models.Article{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return articles, nil
}
