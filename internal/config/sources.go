package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ainews-watch/aggregator/internal/models"
)

// SourceEntry is one feed in a sources file.
type SourceEntry struct {
	Name         string `yaml:"name"`
	FeedURL      string `yaml:"feed_url"`
	CategoryHint string `yaml:"category_hint,omitempty"`
	Active       *bool  `yaml:"active,omitempty"` // nil means active
}

// SourcesFile is the YAML document accepted by `aggregator import` and
// produced by the sources export route.
type SourcesFile struct {
	Sources []SourceEntry `yaml:"sources"`
}

// DefaultSources is used when no sources file is configured.
var DefaultSources = []SourceEntry{
	{Name: "MIT Technology Review", FeedURL: "https://www.technologyreview.com/feed/", CategoryHint: "AI Research & Breakthroughs"},
	{Name: "The Verge AI", FeedURL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml", CategoryHint: "Large Language Models (LLMs)"},
	{Name: "Wired AI", FeedURL: "https://www.wired.com/feed/tag/ai/latest/rss", CategoryHint: "AI Research & Breakthroughs"},
	{Name: "Ars Technica", FeedURL: "https://feeds.arstechnica.com/arstechnica/technology-lab", CategoryHint: "AI Research & Breakthroughs"},
	{Name: "VentureBeat AI", FeedURL: "https://venturebeat.com/category/ai/feed/", CategoryHint: "AI Startups & Business"},
	{Name: "TechCrunch AI", FeedURL: "https://techcrunch.com/category/artificial-intelligence/feed/", CategoryHint: "AI Startups & Business"},
	{Name: "The Guardian AI", FeedURL: "https://www.theguardian.com/technology/artificialintelligenceai/rss", CategoryHint: "AI Ethics & Regulation"},
	{Name: "Reuters Technology", FeedURL: "https://www.reuters.com/technology/rss", CategoryHint: "AI in Industry"},
	{Name: "IEEE Spectrum AI", FeedURL: "https://spectrum.ieee.org/feeds/topic/artificial-intelligence.rss", CategoryHint: "AI Research & Breakthroughs"},
	{Name: "Google AI Blog", FeedURL: "https://blog.google/technology/ai/rss/", CategoryHint: "Large Language Models (LLMs)"},
}

// IsActive reports whether the entry should be fetched.
func (e SourceEntry) IsActive() bool {
	return e.Active == nil || *e.Active
}

// Source converts the entry into its storage model.
func (e SourceEntry) Source() *models.Source {
	s := models.NewSource(strings.TrimSpace(e.Name), strings.TrimSpace(e.FeedURL), strings.TrimSpace(e.CategoryHint))
	s.IsActive = e.IsActive()
	return s
}

// Validate reports a missing name or feed URL.
func (e SourceEntry) Validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return fmt.Errorf("source with feed %q has no name", e.FeedURL)
	case strings.TrimSpace(e.FeedURL) == "":
		return fmt.Errorf("source %q has no feed_url", e.Name)
	}
	return nil
}

// ParseSources decodes a sources YAML document.
func ParseSources(r io.Reader) ([]SourceEntry, error) {
	var file SourcesFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("sources file is empty")
		}
		return nil, fmt.Errorf("failed to decode sources: %w", err)
	}
	return file.Sources, nil
}

// LoadSources reads the sources file at path. An empty path returns a copy
// of DefaultSources.
func LoadSources(path string) ([]SourceEntry, error) {
	if path == "" {
		return append([]SourceEntry(nil), DefaultSources...), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer f.Close()

	entries, err := ParseSources(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
