package models

import "time"

// RawItem is a filtered feed entry waiting for enrichment. It is never stored.
type RawItem struct {
	Title        string
	URL          string
	SourceName   string
	SourceURL    string
	Description  string
	PublishedAt  *time.Time // nil when the feed gives neither a published nor an updated date
	CategoryHint string
}
