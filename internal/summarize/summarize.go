// Package summarize produces a six sentence article summary, from a hosted
// model when one is configured and from the article's own sentences otherwise.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"ainews-watch/aggregator/internal/llm"
	"ainews-watch/aggregator/internal/models"
)

const (
	// HostedContentLimit caps the content sent to the hosted model, in characters.
	HostedContentLimit = 8000

	hostedMaxTokens   = 500
	hostedTemperature = 0.4
)

const systemPrompt = "You are an expert tech journalist who synthesizes AI news into clear, original summaries. " +
	"You never copy text directly from articles - you always rewrite information in your own words while maintaining accuracy."

const promptTemplate = `Synthesize and summarize this AI news article in exactly 6 sentences.

IMPORTANT: DO NOT copy sentences directly from the article. Instead, write an original summary in your own words that:
1. States the main news, announcement, or development
2. Identifies the key players (companies, researchers, products)
3. Explains the technical significance or innovation
4. Describes the potential impact or implications
5. Provides relevant context (market, competition, timeline)
6. Concludes with future outlook or next steps

Write as a professional tech journalist synthesizing the information, not quoting it.

Title: %s

Article Content:
%s

Your 6-sentence synthesized summary:`

// Service summarizes articles. A nil Completer selects the extractive path.
type Service struct {
	completer llm.Completer
}

// New creates a Service.
func New(completer llm.Completer) *Service {
	return &Service{completer: completer}
}

// Summarize never fails: hosted errors and empty answers fall back to
// Extractive.
func (s *Service) Summarize(ctx context.Context, content, title string) string {
	if s.completer != nil {
		summary, err := s.completer.Complete(ctx, llm.Request{
			System:      systemPrompt,
			Prompt:      BuildPrompt(content, title),
			MaxTokens:   hostedMaxTokens,
			Temperature: hostedTemperature,
		})
		if summary = strings.TrimSpace(summary); err == nil && summary != "" {
			return summary
		}
		log.Warn().Err(err).Str("title", title).Msg("Hosted summary unavailable, using extractive summary")
	}
	return Extractive(content, title)
}

// BuildPrompt renders the hosted summarization prompt.
func BuildPrompt(content, title string) string {
	return fmt.Sprintf(promptTemplate, title, models.Truncate(content, HostedContentLimit))
}
