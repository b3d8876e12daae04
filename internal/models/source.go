package models

import (
	"database/sql"
	"time"
)

// Source represents a row in the 'sources' table
type Source struct {
	ID           int64        `db:"id"`
	Name         string       `db:"name"`
	FeedURL      string       `db:"feed_url"`
	CategoryHint string       `db:"category_hint"`
	IsActive     bool         `db:"is_active"`
	LastFetched  sql.NullTime `db:"last_fetched"`
	CreatedAt    time.Time    `db:"created_at"`
}

// NewSource creates an active Source with the given feed settings
func NewSource(name, feedURL, categoryHint string) *Source {
	return &Source{
		Name:         name,
		FeedURL:      feedURL,
		CategoryHint: categoryHint,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}
