// Package categorize assigns every article exactly one category from a
// fixed set.
package categorize

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
	HostedContentLimit = 2000

	hostedMaxTokens = 50
)

const systemPrompt = "You are an AI news categorization expert. Respond only with the category name."

// Service categorizes articles. A nil Completer selects keyword scoring.
type Service struct {
	completer llm.Completer
}

// New creates a Service.
func New(completer llm.Completer) *Service {
	return &Service{completer: completer}
}

// Categorize always returns a member of Categories. A hosted answer outside
// the set, or a hosted failure, falls back to ByKeywords.
func (s *Service) Categorize(ctx context.Context, title, content, hint string) string {
	if s.completer == nil {
		return ByKeywords(title, content, hint)
	}

	answer, err := s.completer.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      BuildPrompt(title, content),
		MaxTokens:   hostedMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		log.Warn().Err(err).Str("title", title).Msg("Hosted categorization failed, using keywords")
		return ByKeywords(title, content, hint)
	}

	if category, ok := Match(answer); ok {
		return category
	}
	log.Debug().Str("answer", answer).Str("title", title).Msg("Hosted category not recognized, using keywords")
	return ByKeywords(title, content, hint)
}

// BuildPrompt renders the hosted categorization prompt.
func BuildPrompt(title, content string) string {
	var sb strings.Builder
	sb.WriteString("Categorize this AI news article into ONE of these categories:\n")
	for _, c := range Categories {
		fmt.Fprintf(&sb, "- %s\n", c)
	}
	fmt.Fprintf(&sb, "\nTitle: %s\n", title)
	fmt.Fprintf(&sb, "Content: %s\n", models.Truncate(content, HostedContentLimit))
	sb.WriteString("\nRespond with ONLY the category name, nothing else.")
	return sb.String()
}
