// Package feeds fetches configured syndication feeds and turns their
// AI-relevant entries into RawItems.
package feeds

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"ainews-watch/aggregator/internal/models"
	"ainews-watch/aggregator/internal/relevance"
)

const (
	// MaxDescriptionLength caps the cleaned entry description, in characters.
	MaxDescriptionLength = 500

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ainews-watch-aggregator/1.0"
)

var tagPattern = regexp.MustCompile(`<.*?>`)

// Config holds fetcher settings. Zero values fall back to defaults.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Batch is the outcome of fetching every source in one run.
type Batch struct {
	Items         []models.RawItem
	Fetched       []string // names of sources that were fetched and parsed
	SourcesFailed int
}

// Fetcher retrieves and normalizes feed entries.
type Fetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

// NewFetcher creates a Fetcher backed by gofeed.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	parser.Client = &http.Client{Timeout: cfg.Timeout}

	return &Fetcher{parser: parser, timeout: cfg.Timeout}
}

// FetchSource parses one feed and returns its relevant entries in feed order.
func (f *Fetcher) FetchSource(ctx context.Context, src models.Source) ([]models.RawItem, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(src.FeedURL, fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", src.FeedURL, err)
	}

	items := make([]models.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}

		title := strings.TrimSpace(entry.Title)
		text := cleanText(entryDescription(entry))

		if !relevance.IsRelevant(title, text) {
			continue
		}

		link := strings.TrimSpace(entry.Link)
		if link == "" || title == "" {
			continue
		}

		items = append(items, models.RawItem{
			Title:        title,
			URL:          link,
			SourceName:   src.Name,
			SourceURL:    src.FeedURL,
			Description:  models.Truncate(text, MaxDescriptionLength),
			PublishedAt:  entryTime(entry),
			CategoryHint: src.CategoryHint,
		})
	}

	return items, nil
}

// FetchAll fetches every source in order. A failing source is logged and
// contributes nothing. The result is deduplicated by URL, first occurrence
// winning, and sorted newest first with undated items last.
func (f *Fetcher) FetchAll(ctx context.Context, sources []models.Source) Batch {
	var batch Batch
	seen := make(map[string]struct{})

	for _, src := range sources {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("Feed fetching interrupted")
			break
		}

		items, err := f.FetchSource(ctx, src)
		if err != nil {
			batch.SourcesFailed++
			log.Error().
				Err(err).
				Str("source", src.Name).
				Str("feed_url", src.FeedURL).
				Msg("Failed to fetch source")
			continue
		}
		batch.Fetched = append(batch.Fetched, src.Name)

		added := 0
		for _, item := range items {
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			batch.Items = append(batch.Items, item)
			added++
		}

		log.Info().
			Str("source", src.Name).
			Int("relevant", len(items)).
			Int("added", added).
			Msg("Fetched source")
	}

	SortByPublished(batch.Items)
	return batch
}

// SortByPublished orders items newest first. Items without a publish time
// sort after every dated item and keep their relative order.
func SortByPublished(items []models.RawItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// CleanDescription strips HTML tags, unescapes entities and caps the result
// at MaxDescriptionLength characters.
func CleanDescription(raw string) string {
	return models.Truncate(cleanText(raw), MaxDescriptionLength)
}

// cleanText strips HTML tags and unescapes entities without capping.
func cleanText(raw string) string {
	text := tagPattern.ReplaceAllString(raw, "")
	return strings.TrimSpace(html.UnescapeString(text))
}

func entryDescription(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}

func entryTime(entry *gofeed.Item) *time.Time {
	var t *time.Time
	switch {
	case entry.PublishedParsed != nil:
		t = entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		t = entry.UpdatedParsed
	default:
		return nil
	}
	utc := t.UTC()
	return &utc
}
