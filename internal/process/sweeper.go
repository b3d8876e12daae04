package process

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRetentionDays applies when Cleanup is given a non-positive window.
const DefaultRetentionDays = 7

// Purger deletes articles fetched before a cutoff.
type Purger interface {
	PurgeArticlesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper enforces the retention window.
type Sweeper struct {
	store Purger
	now   func() time.Time
}

// NewSweeper creates a Sweeper. A nil now uses time.Now.
func NewSweeper(store Purger, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{store: store, now: now}
}

// Cleanup deletes articles fetched strictly more than days ago and returns
// how many were removed. Failures are logged and reported as 0.
func (s *Sweeper) Cleanup(ctx context.Context, days int) int64 {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := s.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)

	purged, err := s.store.PurgeArticlesBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Time("cutoff", cutoff).Msg("Failed to purge old articles")
		return 0
	}

	if purged > 0 {
		log.Info().Int64("purged", purged).Int("retention_days", days).Msg("Purged old articles")
	} else {
		log.Debug().Int("retention_days", days).Msg("No old articles needed purging")
	}
	return purged
}
