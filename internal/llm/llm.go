// Package llm is a thin adapter over hosted text-completion services.
// Prompt wording and response validation belong to the callers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ainews-watch/aggregator/internal/retry"
)

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const defaultTimeout = 60 * time.Second

var (
	// ErrNoCredential means no API key is configured for the chosen provider.
	ErrNoCredential = errors.New("no API credential configured")
	// ErrEmptyResponse means the service answered without any text.
	ErrEmptyResponse = errors.New("empty completion response")
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-3.5-turbo",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-1.5-flash",
}

// Request is one completion call.
type Request struct {
	Model       string // empty uses the client default
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completer produces free text for a Request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider     string // empty picks the first provider with a key: openai, anthropic, gemini
	Model        string
	BaseURL      string // OpenAI-compatible endpoint root
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string
	Timeout      time.Duration
	Retry        retry.Config
}

type backend interface {
	complete(ctx context.Context, req Request) (string, error)
	close() error
}

// Client is a Completer bound to one provider.
type Client struct {
	provider string
	model    string
	backend  backend
	retry    retry.Config
}

// New builds a Client. It returns ErrNoCredential when no key is available,
// which callers treat as "use the local fallbacks".
func New(ctx context.Context, cfg Config) (*Client, error) {
	provider, key := cfg.resolve()
	if key == "" {
		return nil, ErrNoCredential
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	model := cfg.Model
	if model == "" {
		model = defaultModels[provider]
	}

	var b backend
	switch provider {
	case ProviderOpenAI:
		b = newOpenAI(cfg.BaseURL, key, cfg.Timeout)
	case ProviderAnthropic:
		b = newAnthropic(key)
	case ProviderGemini:
		g, err := newGemini(ctx, key)
		if err != nil {
			return nil, err
		}
		b = g
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}

	return newClient(provider, model, b, cfg.Retry), nil
}

func newClient(provider, model string, b backend, rc retry.Config) *Client {
	return &Client{provider: provider, model: model, backend: b, retry: rc}
}

// Provider returns the provider name.
func (c *Client) Provider() string { return c.provider }

// Model returns the default model.
func (c *Client) Model() string { return c.model }

// Complete sends req and returns the trimmed response text.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	var text string
	err := retry.Do(ctx, c.retry, func() error {
		out, err := c.backend.complete(ctx, req)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(out)
		if text == "" {
			return ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", c.provider, err)
	}
	return text, nil
}

// Close releases provider resources.
func (c *Client) Close() error {
	return c.backend.close()
}

func (cfg Config) resolve() (provider, key string) {
	keys := map[string]string{
		ProviderOpenAI:    cfg.OpenAIKey,
		ProviderAnthropic: cfg.AnthropicKey,
		ProviderGemini:    cfg.GeminiKey,
	}

	provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		for _, p := range []string{ProviderOpenAI, ProviderAnthropic, ProviderGemini} {
			if keys[p] != "" {
				return p, keys[p]
			}
		}
		return ProviderOpenAI, ""
	}
	if k, ok := keys[provider]; ok {
		return provider, k
	}
	// Unknown provider: let New report it if a key was supplied at all.
	for _, k := range keys {
		if k != "" {
			return provider, k
		}
	}
	return provider, ""
}
