package llm

import (
	"context"
	"fmt"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

// anthropicBackend calls the Anthropic messages API through llmkit.
type anthropicBackend struct {
	apiKey string
}

func newAnthropic(apiKey string) *anthropicBackend {
	return &anthropicBackend{apiKey: apiKey}
}

func (a *anthropicBackend) complete(ctx context.Context, req Request) (string, error) {
	// llmkit has no context support; at least do not start a cancelled call.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	settings := types.RequestSettings{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	response, err := anthropic.PromptWithSettings(req.System, req.Prompt, "", a.apiKey, settings)
	if err != nil {
		return "", fmt.Errorf("anthropic prompt: %w", err)
	}
	if len(response.Content) == 0 {
		return "", ErrEmptyResponse
	}
	return response.Content[0].Text, nil
}

func (a *anthropicBackend) close() error { return nil }
