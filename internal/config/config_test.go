package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	for _, key := range []string{
		"AGGREGATOR_DB_PATH", "AGGREGATOR_RETENTION_DAYS", "DAILY_UPDATE_HOUR", "DAILY_UPDATE_MINUTE",
		"AGGREGATOR_HOST", "AGGREGATOR_PORT",
		"AGGREGATOR_FETCH_TIMEOUT", "AGGREGATOR_LOG_LEVEL", "OPENAI_API_KEY",
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := DefaultConfig()
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, 6, cfg.UpdateHour)
	assert.Equal(t, 0, cfg.UpdateMinute)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.False(t, cfg.HasLLMCredential())
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("AGGREGATOR_DB_PATH", "/tmp/x.db")
	t.Setenv("DAILY_UPDATE_HOUR", "22")
	t.Setenv("DAILY_UPDATE_MINUTE", "15")
	t.Setenv("AGGREGATOR_FETCH_TIMEOUT", "45")
	t.Setenv("AGGREGATOR_LOG_LEVEL", "DEBUG")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg := DefaultConfig()
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 22, cfg.UpdateHour)
	assert.Equal(t, 15, cfg.UpdateMinute)
	assert.Equal(t, 45*time.Second, cfg.FetchTimeout)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.HasLLMCredential())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UpdateHour = 24
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.UpdateMinute = -1
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DBPath = ""
	assert.Error(t, cfg.Validate())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "12")
	t.Setenv("TEST_BAD_INT", "twelve")
	t.Setenv("TEST_FLOAT", " 0.25 ")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DURATION", "2m")
	t.Setenv("TEST_EMPTY", "")

	assert.Equal(t, 12, GetEnvInt("TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("TEST_BAD_INT", 1))
	assert.Equal(t, 0.25, GetEnvFloat("TEST_FLOAT", 1))
	assert.Equal(t, 1.5, GetEnvFloat("TEST_MISSING", 1.5))
	assert.True(t, GetEnvBool("TEST_BOOL", false))
	assert.Equal(t, 2*time.Minute, GetEnvDuration("TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("TEST_EMPTY", time.Second))
	assert.Equal(t, "", GetEnvString("TEST_EMPTY", "default"))
	assert.Equal(t, "default", GetEnvString("TEST_MISSING", "default"))
}

func TestLoadSourcesDefaults(t *testing.T) {
	entries, err := LoadSources("")
	require.NoError(t, err)
	require.Len(t, entries, 10)
	assert.Equal(t, "MIT Technology Review", entries[0].Name)
	assert.Equal(t, "Google AI Blog", entries[9].Name)

	entries[0].Name = "changed"
	assert.Equal(t, "MIT Technology Review", DefaultSources[0].Name)

	for _, e := range DefaultSources {
		assert.NoError(t, e.Validate())
		assert.True(t, e.IsActive())
	}
}

func TestLoadSourcesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	doc := `sources:
  - name: Example AI
    feed_url: https://example.com/feed.xml
    category_hint: AI in Industry
  - name: Paused
    feed_url: https://paused.example.com/rss
    active: false
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	entries, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0].Source()
	assert.Equal(t, "Example AI", first.Name)
	assert.Equal(t, "AI in Industry", first.CategoryHint)
	assert.True(t, first.IsActive)

	assert.False(t, entries[1].IsActive())
	assert.False(t, entries[1].Source().IsActive)
	assert.Empty(t, entries[1].CategoryHint)
}

func TestParseSourcesErrors(t *testing.T) {
	_, err := ParseSources(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseSources(strings.NewReader("sources: [oops"))
	assert.Error(t, err)

	_, err = LoadSources(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	assert.Error(t, SourceEntry{FeedURL: "https://x"}.Validate())
	assert.Error(t, SourceEntry{Name: "x"}.Validate())
}
