// Package process runs the ingestion pipeline: retention sweep, feed fetch,
// then per-item dedupe, extraction, summarization, categorization and
// storage.
package process

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ainews-watch/aggregator/internal/feeds"
	"ainews-watch/aggregator/internal/models"
)

// Store is the persistence a run needs.
type Store interface {
	Purger
	ArticleExists(ctx context.Context, url string) (bool, error)
	SaveArticle(ctx context.Context, a *models.Article) (bool, error)
	ActiveSources(ctx context.Context) ([]models.Source, error)
	TouchSource(ctx context.Context, name string, at time.Time) error
}

// FeedFetcher collects the relevant entries of every source.
type FeedFetcher interface {
	FetchAll(ctx context.Context, sources []models.Source) feeds.Batch
}

// Extractor pulls the readable text of an article page.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Summarizer always yields a summary, falling back internally.
type Summarizer interface {
	Summarize(ctx context.Context, content, title string) string
}

// Categorizer always yields a category, falling back internally.
type Categorizer interface {
	Categorize(ctx context.Context, title, content, hint string) string
}

// Deps are the collaborators of a Pipeline. Metrics may be nil.
type Deps struct {
	Store       Store
	Fetcher     FeedFetcher
	Extractor   Extractor
	Summarizer  Summarizer
	Categorizer Categorizer
	Metrics     *Metrics
}

// Options tune a Pipeline. Zero values use defaults.
type Options struct {
	RetentionDays int
	Now           func() time.Time
}

// RunStats are the counters of one run.
type RunStats struct {
	RunID         string
	New           int
	Errors        int
	Duplicates    int
	Fetched       int
	SourcesFailed int
	Purged        int64
	Duration      time.Duration
}

// Pipeline executes runs. Runs are sequential; callers must not start two
// concurrently.
type Pipeline struct {
	store         Store
	fetcher       FeedFetcher
	extractor     Extractor
	summarizer    Summarizer
	categorizer   Categorizer
	metrics       *Metrics
	sweeper       *Sweeper
	retentionDays int
	now           func() time.Time
}

// NewPipeline creates a Pipeline from its collaborators.
func NewPipeline(deps Deps, opts Options) (*Pipeline, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("pipeline store cannot be nil")
	case deps.Fetcher == nil:
		return nil, errors.New("pipeline fetcher cannot be nil")
	case deps.Extractor == nil:
		return nil, errors.New("pipeline extractor cannot be nil")
	case deps.Summarizer == nil:
		return nil, errors.New("pipeline summarizer cannot be nil")
	case deps.Categorizer == nil:
		return nil, errors.New("pipeline categorizer cannot be nil")
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		store:         deps.Store,
		fetcher:       deps.Fetcher,
		extractor:     deps.Extractor,
		summarizer:    deps.Summarizer,
		categorizer:   deps.Categorizer,
		metrics:       deps.Metrics,
		sweeper:       NewSweeper(deps.Store, now),
		retentionDays: opts.RetentionDays,
		now:           now,
	}, nil
}

// Run performs one full ingestion run. It fails only when the source list
// cannot be loaded or ctx is cancelled; everything else is counted in the
// returned stats.
func (p *Pipeline) Run(ctx context.Context) (RunStats, error) {
	stats := RunStats{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", stats.RunID).Logger()
	start := p.now()

	logger.Info().Msg("Starting pipeline run")

	stats.Purged = p.sweeper.Cleanup(ctx, p.retentionDays)

	sources, err := p.store.ActiveSources(ctx)
	if err != nil {
		return p.finish(logger, stats, start), fmt.Errorf("failed to load sources: %w", err)
	}
	if len(sources) == 0 {
		logger.Warn().Msg("No active sources configured")
	}

	batch := p.fetcher.FetchAll(ctx, sources)
	stats.Fetched = len(batch.Items)
	stats.SourcesFailed = batch.SourcesFailed

	fetchedAt := p.now()
	for _, name := range batch.Fetched {
		if err := p.store.TouchSource(ctx, name, fetchedAt); err != nil {
			logger.Warn().Err(err).Str("source", name).Msg("Failed to record source fetch time")
		}
	}

	logger.Info().
		Int("sources", len(sources)).
		Int("sources_failed", stats.SourcesFailed).
		Int("items", stats.Fetched).
		Msg("Feeds fetched")

	for i, item := range batch.Items {
		if err := ctx.Err(); err != nil {
			logger.Info().Int("remaining", len(batch.Items)-i).Msg("Run cancelled, stopping before next item")
			return p.finish(logger, stats, start), err
		}

		inserted, err := p.processItem(ctx, item)
		switch {
		case err != nil:
			stats.Errors++
			logger.Error().Err(err).Str("url", item.URL).Str("source", item.SourceName).Msg("Failed to process item")
		case inserted:
			stats.New++
			logger.Debug().Str("url", item.URL).Msg("Article stored")
		default:
			stats.Duplicates++
		}
	}

	return p.finish(logger, stats, start), nil
}

func (p *Pipeline) finish(logger zerolog.Logger, stats RunStats, start time.Time) RunStats {
	end := p.now()
	stats.Duration = end.Sub(start)
	p.metrics.observe(stats, float64(end.Unix()))

	logger.Info().
		Int("new", stats.New).
		Int("duplicates", stats.Duplicates).
		Int("errors", stats.Errors).
		Int("fetched", stats.Fetched).
		Int("sources_failed", stats.SourcesFailed).
		Int64("purged", stats.Purged).
		Dur("duration", stats.Duration).
		Msg("Pipeline run finished")
	return stats
}

// processItem takes one entry from dedupe check to storage. It reports
// whether a new row was written; a panic in any step becomes an error.
func (p *Pipeline) processItem(ctx context.Context, item models.RawItem) (inserted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			inserted = false
			err = fmt.Errorf("panic while processing item: %v", r)
		}
	}()

	exists, err := p.store.ArticleExists(ctx, item.URL)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	content, err := p.extractor.Extract(ctx, item.URL)
	if err != nil || strings.TrimSpace(content) == "" {
		log.Debug().Err(err).Str("url", item.URL).Msg("Extraction unavailable, using feed description")
		content = item.Description
	}

	summary := p.summarizer.Summarize(ctx, content, item.Title)
	category := p.categorizer.Categorize(ctx, item.Title, content, item.CategoryHint)

	article := models.NewArticle(item, content, summary, category)
	article.FetchedAt = p.now().UTC()
	if err := article.Validate(); err != nil {
		return false, err
	}

	return p.store.SaveArticle(ctx, article)
}
