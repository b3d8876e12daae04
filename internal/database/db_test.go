package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ainews-watch/aggregator/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(NewConfig(filepath.Join(t.TempDir(), "news.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testArticle(url string, fetchedAt time.Time) *models.Article {
	return &models.Article{
		Title:      "Model release",
		URL:        url,
		SourceName: "Example",
		SourceURL:  "https://example.com/feed",
		Category:   "AI Research & Breakthroughs",
		Summary:    "A summary.",
		FetchedAt:  fetchedAt,
	}
}

func countArticles(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM articles`))
	return n
}

func TestSaveArticle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	published := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	a := testArticle("https://example.com/a", time.Now())
	a.FullContent = sql.NullString{String: "Full body", Valid: true}
	a.PublishedAt = sql.NullTime{Time: published, Valid: true}

	inserted, err := db.SaveArticle(ctx, a)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, a.ID)

	exists, err := db.ArticleExists(ctx, a.URL)
	require.NoError(t, err)
	assert.True(t, exists)

	var stored models.Article
	require.NoError(t, db.Get(&stored, `SELECT * FROM articles WHERE id = ?`, a.ID))
	assert.Equal(t, "Full body", stored.FullContent.String)
	require.True(t, stored.PublishedAt.Valid)
	assert.True(t, published.Equal(stored.PublishedAt.Time))
	assert.WithinDuration(t, a.FetchedAt, stored.FetchedAt, time.Millisecond)
}

func TestSaveArticleDuplicateIsNoop(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := testArticle("https://example.com/dup", time.Now())
	inserted, err := db.SaveArticle(ctx, first)
	require.NoError(t, err)
	require.True(t, inserted)

	second := testArticle("https://example.com/dup", time.Now())
	second.Title = "Changed title"
	inserted, err = db.SaveArticle(ctx, second)
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.Equal(t, 1, countArticles(t, db))

	var title string
	require.NoError(t, db.Get(&title, `SELECT title FROM articles WHERE url = ?`, first.URL))
	assert.Equal(t, "Model release", title)
}

func TestArticleExistsMissing(t *testing.T) {
	db := newTestDB(t)
	exists, err := db.ArticleExists(context.Background(), "https://nowhere.example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPurgeArticlesBeforeBoundary(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	cutoff := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for url, at := range map[string]time.Time{
		"https://example.com/at-cutoff": cutoff,
		"https://example.com/older":     cutoff.Add(-time.Microsecond),
		"https://example.com/newer":     cutoff.Add(time.Hour),
		"https://example.com/ancient":   cutoff.AddDate(0, -1, 0),
	} {
		_, err := db.SaveArticle(ctx, testArticle(url, at))
		require.NoError(t, err)
	}

	purged, err := db.PurgeArticlesBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	for url, want := range map[string]bool{
		"https://example.com/at-cutoff": true,
		"https://example.com/older":     false,
		"https://example.com/newer":     true,
		"https://example.com/ancient":   false,
	} {
		exists, err := db.ArticleExists(ctx, url)
		require.NoError(t, err)
		assert.Equal(t, want, exists, url)
	}
}

func TestSyncSources(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	paused := models.NewSource("Paused", "https://paused.example.com/rss", "")
	paused.IsActive = false

	n, err := db.SyncSources(ctx, []*models.Source{
		models.NewSource("Alpha", "https://alpha.example.com/rss", "AI in Industry"),
		paused,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	active, err := db.ActiveSources(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Alpha", active[0].Name)
	assert.Equal(t, "AI in Industry", active[0].CategoryHint)
	assert.False(t, active[0].LastFetched.Valid)

	// A second sync updates by name and never deletes.
	_, err = db.SyncSources(ctx, []*models.Source{
		models.NewSource("Alpha", "https://alpha.example.com/feed.xml", "AI Ethics & Regulation"),
		models.NewSource("Beta", "https://beta.example.com/rss", ""),
	})
	require.NoError(t, err)

	active, err = db.ActiveSources(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "https://alpha.example.com/feed.xml", active[0].FeedURL)
	assert.Equal(t, "AI Ethics & Regulation", active[0].CategoryHint)
	assert.Equal(t, "Beta", active[1].Name)

	var total int
	require.NoError(t, db.Get(&total, `SELECT COUNT(*) FROM sources`))
	assert.Equal(t, 3, total)
}

func TestTouchSource(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.SyncSources(ctx, []*models.Source{models.NewSource("Alpha", "https://alpha.example.com/rss", "")})
	require.NoError(t, err)

	at := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, db.TouchSource(ctx, "Alpha", at))
	assert.Error(t, db.TouchSource(ctx, "Missing", at))

	active, err := db.ActiveSources(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.True(t, active[0].LastFetched.Valid)
	assert.True(t, at.Equal(active[0].LastFetched.Time))
}

func TestReadOnlyHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.db")
	rw, err := NewDB(NewConfig(path))
	require.NoError(t, err)
	_, err = rw.SaveArticle(context.Background(), testArticle("https://example.com/ro", time.Now()))
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	cfg := NewConfig(path)
	cfg.ReadOnly = true
	ro, err := NewDB(cfg)
	require.NoError(t, err)
	defer ro.Close()

	assert.Equal(t, 1, countArticles(t, ro))
	_, err = ro.SaveArticle(context.Background(), testArticle("https://example.com/other", time.Now()))
	assert.Error(t, err)
}
