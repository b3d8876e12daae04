// Package extract downloads an article page and pulls out its readable text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; ainews-watch-aggregator/1.0)"
	defaultMaxBytes  = 5 << 20

	minParagraphLength = 20
)

// ErrNoContent is returned when a page has no extractable article text.
var ErrNoContent = errors.New("no article content found")

// paragraphSelectors are tried in order; the first one yielding text wins.
var paragraphSelectors = []string{
	"article p",
	"[itemprop='articleBody'] p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	".story-body p",
	"main p",
	".content p",
}

// containerSelectors feed the markdown fallback when no paragraph matched.
var containerSelectors = []string{"article", "main", "[role='main']", "body"}

var noiseSelectors = "script, style, noscript, iframe, form, nav, header, footer, aside, figure, svg"

// Config holds extractor settings. Zero values fall back to defaults.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int64
}

// Extractor fetches pages over HTTP and extracts their main text.
type Extractor struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	converter *md.Converter
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	return &Extractor{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBytes,
		converter: md.NewConverter("", true, nil),
	}
}

// Extract returns the article text found at url. Every failure is reported
// as an error; callers fall back to the feed description.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	text := e.FromDocument(doc)
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}

// FromDocument extracts text from an already parsed page.
func (e *Extractor) FromDocument(doc *goquery.Document) string {
	doc.Find(noiseSelectors).Remove()

	if text := paragraphText(doc); text != "" {
		return text
	}

	for _, sel := range containerSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		inner, err := node.Html()
		if err != nil {
			continue
		}
		markdown, err := e.converter.ConvertString(inner)
		if err != nil {
			continue
		}
		if markdown = strings.TrimSpace(markdown); markdown != "" {
			return markdown
		}
	}
	return ""
}

func paragraphText(doc *goquery.Document) string {
	for _, sel := range paragraphSelectors {
		var paragraphs []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if utf8.RuneCountInString(text) >= minParagraphLength {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return ""
}
