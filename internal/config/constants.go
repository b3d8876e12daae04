package config

// Constants defining default values for application configuration
const (
	DefaultSourcesPath = "" // Empty string means the built-in DefaultSources table
	DefaultDBPath      = "./news.db"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultRetentionDays = 7 // Days to keep articles before purging
	DefaultUpdateHour    = 6 // Daily run time, local clock
	DefaultUpdateMinute  = 0

	DefaultFetchTimeout   = "30s"
	DefaultExtractTimeout = "20s"
	DefaultLLMTimeout     = "60s"

	DefaultUserAgent = "Mozilla/5.0 (compatible; ainews-watch/1.0; +https://github.com/ainews-watch/aggregator)"

	DefaultLogLevel = "info"
)
