package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// File paths
	SourcesPath string
	DBPath      string

	// Server settings
	ServerHost string
	ServerPort int
	APIKey     string

	// Pipeline settings
	RetentionDays  int
	UpdateHour     int
	UpdateMinute   int
	FetchTimeout   time.Duration
	ExtractTimeout time.Duration
	UserAgent      string
	MetricsAddr    string

	// Hosted model settings; all keys empty selects the local fallbacks
	LLMProvider  string
	LLMModel     string
	LLMBaseURL   string
	LLMTimeout   time.Duration
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns an initial configuration from hardcoded defaults,
// overridden by the environment where a variable is set.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)
	fetchTimeout, _ := time.ParseDuration(DefaultFetchTimeout)
	extractTimeout, _ := time.ParseDuration(DefaultExtractTimeout)
	llmTimeout, _ := time.ParseDuration(DefaultLLMTimeout)

	return &Config{
		SourcesPath:    GetEnvString("AGGREGATOR_SOURCES_PATH", DefaultSourcesPath),
		DBPath:         GetEnvString("AGGREGATOR_DB_PATH", DefaultDBPath),
		ServerHost:     GetEnvString("AGGREGATOR_HOST", DefaultServerHost),
		ServerPort:     GetEnvInt("AGGREGATOR_PORT", DefaultServerPort),
		APIKey:         GetEnvString("AGGREGATOR_API_KEY", ""),
		RetentionDays:  GetEnvInt("AGGREGATOR_RETENTION_DAYS", DefaultRetentionDays),
		UpdateHour:     GetEnvInt("DAILY_UPDATE_HOUR", DefaultUpdateHour),
		UpdateMinute:   GetEnvInt("DAILY_UPDATE_MINUTE", DefaultUpdateMinute),
		FetchTimeout:   GetEnvDuration("AGGREGATOR_FETCH_TIMEOUT", fetchTimeout),
		ExtractTimeout: GetEnvDuration("AGGREGATOR_EXTRACT_TIMEOUT", extractTimeout),
		UserAgent:      GetEnvString("AGGREGATOR_USER_AGENT", DefaultUserAgent),
		MetricsAddr:    GetEnvString("AGGREGATOR_METRICS_ADDR", ""),
		LLMProvider:    GetEnvString("AGGREGATOR_LLM_PROVIDER", ""),
		LLMModel:       GetEnvString("AGGREGATOR_LLM_MODEL", ""),
		LLMBaseURL:     GetEnvString("AGGREGATOR_LLM_BASE_URL", ""),
		LLMTimeout:     GetEnvDuration("AGGREGATOR_LLM_TIMEOUT", llmTimeout),
		OpenAIKey:      GetEnvString("OPENAI_API_KEY", ""),
		AnthropicKey:   GetEnvString("ANTHROPIC_API_KEY", ""),
		GeminiKey:      GetEnvString("GEMINI_API_KEY", ""),
		LogLevel:       GetEnvLogLevel("AGGREGATOR_LOG_LEVEL", logLevel),
	}
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Validate checks the values the scheduler and sweeper depend on.
func (c *Config) Validate() error {
	if c.UpdateHour < 0 || c.UpdateHour > 23 {
		return fmt.Errorf("daily update hour must be 0-23, got %d", c.UpdateHour)
	}
	if c.UpdateMinute < 0 || c.UpdateMinute > 59 {
		return fmt.Errorf("daily update minute must be 0-59, got %d", c.UpdateMinute)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// HasLLMCredential reports whether any hosted provider key is configured.
func (c *Config) HasLLMCredential() bool {
	return c.OpenAIKey != "" || c.AnthropicKey != "" || c.GeminiKey != ""
}
