// Package importsources loads a sources YAML file, from disk or over HTTP,
// and upserts it into the sources table.
package importsources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ainews-watch/aggregator/internal/config"
	"ainews-watch/aggregator/internal/models"
)

const downloadTimeout = 30 * time.Second

// SourceSyncer persists sources by name.
type SourceSyncer interface {
	SyncSources(ctx context.Context, sources []*models.Source) (int, error)
}

// Result summarizes an import.
type Result struct {
	Total    int
	Imported int
	Errors   []string
}

// Importer handles the source import process
type Importer struct {
	store  SourceSyncer
	client *http.Client
}

// NewImporter creates a new source importer
func NewImporter(store SourceSyncer) *Importer {
	return &Importer{store: store, client: &http.Client{Timeout: downloadTimeout}}
}

// ImportSources reads location and syncs its valid entries. An empty
// location imports the built-in default sources; an http(s) URL is
// downloaded. Invalid or repeated entries are reported in Result.Errors and
// skipped.
func (i *Importer) ImportSources(ctx context.Context, location string) (*Result, error) {
	log.Info().Str("location", location).Msg("Starting source import")

	entries, err := i.load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	res := &Result{Total: len(entries)}
	seen := make(map[string]int, len(entries))
	sources := make([]*models.Source, 0, len(entries))

	for n, entry := range entries {
		if err := entry.Validate(); err != nil {
			log.Warn().Err(err).Int("entry", n+1).Msg("Skipping invalid source")
			res.Errors = append(res.Errors, fmt.Sprintf("entry %d: %v", n+1, err))
			continue
		}

		src := entry.Source()
		if first, dup := seen[src.Name]; dup {
			log.Warn().Str("name", src.Name).Int("entry", n+1).Msg("Duplicate source name")
			res.Errors = append(res.Errors, fmt.Sprintf("entry %d: duplicate name %q (first at entry %d)", n+1, src.Name, first))
			continue
		}
		seen[src.Name] = n + 1

		log.Debug().
			Str("name", src.Name).
			Str("feed_url", src.FeedURL).
			Bool("active", src.IsActive).
			Msg("Processing source")
		sources = append(sources, src)
	}

	imported, err := i.store.SyncSources(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("failed to import sources: %w", err)
	}
	res.Imported = imported

	log.Info().
		Int("total", res.Total).
		Int("success", res.Imported).
		Int("errors", len(res.Errors)).
		Msg("Import summary")

	return res, nil
}

// Print writes a human readable summary to w.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintf(w, "Imported %d sources successfully\n", r.Imported)
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "Encountered %d errors:\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}

func (i *Importer) load(ctx context.Context, location string) ([]config.SourceEntry, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return i.download(ctx, location)
	}
	if location != "" {
		if _, err := os.Stat(location); err != nil {
			return nil, fmt.Errorf("sources file not found: %s", location)
		}
		log.Info().Str("path", location).Msg("Using local sources file")
	} else {
		log.Info().Int("count", len(config.DefaultSources)).Msg("No sources file given, using built-in sources")
	}
	return config.LoadSources(location)
}

func (i *Importer) download(ctx context.Context, url string) ([]config.SourceEntry, error) {
	log.Debug().Str("url", url).Msg("Downloading sources file")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: HTTP status %d", resp.StatusCode)
	}

	return config.ParseSources(resp.Body)
}
