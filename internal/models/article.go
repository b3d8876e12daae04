package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength caps the stored full_content, in characters.
const MaxContentLength = 10000

// ErrIncompleteArticle is returned by Validate when a required field is empty.
var ErrIncompleteArticle = errors.New("incomplete article")

// Article represents a row in the articles table
type Article struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	URL         string         `db:"url"`
	SourceName  string         `db:"source_name"`
	SourceURL   string         `db:"source_url"`
	Category    string         `db:"category"`
	Summary     string         `db:"summary"`
	FullContent sql.NullString `db:"full_content"`
	PublishedAt sql.NullTime   `db:"published_at"`
	FetchedAt   time.Time      `db:"fetched_at"`
}

// NewArticle builds an Article from a fetched item and its enrichment.
// The content is capped at MaxContentLength and FetchedAt is set to now.
func NewArticle(item RawItem, content, summary, category string) *Article {
	a := &Article{
		Title:      item.Title,
		URL:        item.URL,
		SourceName: item.SourceName,
		SourceURL:  item.SourceURL,
		Category:   category,
		Summary:    summary,
		FetchedAt:  time.Now().UTC(),
	}
	if content != "" {
		a.FullContent = sql.NullString{String: Truncate(content, MaxContentLength), Valid: true}
	}
	if item.PublishedAt != nil {
		a.PublishedAt = sql.NullTime{Time: item.PublishedAt.UTC(), Valid: true}
	}
	return a
}

// Validate reports whether every field the read side relies on is populated.
func (a *Article) Validate() error {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(a.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(a.URL) == "" {
		missing = append(missing, "url")
	}
	if strings.TrimSpace(a.SourceName) == "" {
		missing = append(missing, "source_name")
	}
	if strings.TrimSpace(a.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(a.Summary) == "" {
		missing = append(missing, "summary")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteArticle, strings.Join(missing, ", "))
	}
	return nil
}

// Truncate returns at most n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
