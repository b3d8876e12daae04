package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"ainews-watch/aggregator/internal/models"
	"ainews-watch/aggregator/internal/server/storage"
)

// ArticleView is the JSON shape of an article.
type ArticleView struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	SourceName  string     `json:"source_name"`
	SourceURL   string     `json:"source_url,omitempty"`
	Category    string     `json:"category"`
	Summary     string     `json:"summary"`
	FullContent *string    `json:"full_content,omitempty"`
	PublishedAt *time.Time `json:"published_at"`
	FetchedAt   time.Time  `json:"fetched_at"`
}

// ListResponse wraps a page of articles.
type ListResponse struct {
	Count    int           `json:"count"`
	Articles []ArticleView `json:"articles"`
}

// ExportResponse is one page of the incremental article export.
type ExportResponse struct {
	Items      []ArticleView `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// CategoryCount is one row of the categories listing.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SourceView is one configured source.
type SourceView struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	FeedURL      string     `json:"feed_url"`
	CategoryHint string     `json:"category_hint"`
	IsActive     bool       `json:"is_active"`
	LastFetched  *time.Time `json:"last_fetched"`
	ArticleCount int        `json:"article_count"`
}

// StatsResponse summarizes the store.
type StatsResponse struct {
	TotalArticles int            `json:"total_articles"`
	LatestUpdate  *time.Time     `json:"latest_update"`
	Categories    map[string]int `json:"categories"`
	Sources       map[string]int `json:"sources"`
}

func newArticleView(a models.Article, withContent bool) ArticleView {
	v := ArticleView{
		ID:         a.ID,
		Title:      a.Title,
		URL:        a.URL,
		SourceName: a.SourceName,
		SourceURL:  a.SourceURL,
		Category:   a.Category,
		Summary:    a.Summary,
		FetchedAt:  a.FetchedAt.UTC(),
	}
	if a.PublishedAt.Valid {
		published := a.PublishedAt.Time.UTC()
		v.PublishedAt = &published
	}
	if withContent && a.FullContent.Valid {
		content := a.FullContent.String
		v.FullContent = &content
	}
	return v
}

func newArticleViews(articles []models.Article) []ArticleView {
	views := make([]ArticleView, len(articles))
	for i, a := range articles {
		views[i] = newArticleView(a, false)
	}
	return views
}

func newSourceView(row storage.SourceRow) SourceView {
	v := SourceView{
		ID:           row.ID,
		Name:         row.Name,
		FeedURL:      row.FeedURL,
		CategoryHint: row.CategoryHint,
		IsActive:     row.IsActive,
		ArticleCount: row.ArticleCount,
	}
	if row.LastFetched.Valid {
		last := row.LastFetched.Time.UTC()
		v.LastFetched = &last
	}
	return v
}

// writeJSON marshals body before writing so a marshal failure can still
// become a 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	log := hlog.FromRequest(r)

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonBytes); err != nil {
		log.Error().Err(err).Msg("Error writing JSON response body to client")
		return
	}
	log.Debug().Int("bytes_written", len(jsonBytes)).Msg("Response completed")
}
