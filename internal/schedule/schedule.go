// Package schedule triggers the pipeline once a day at a fixed local time.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Daily runs a job every day at hour:minute. A run still in progress when
// the next trigger fires makes that trigger a no-op.
type Daily struct {
	cron   *cron.Cron
	spec   string
	loc    *time.Location
	logger zerolog.Logger
}

// Spec returns the cron expression for a daily trigger at hour:minute.
func Spec(hour, minute int) (string, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	if minute < 0 || minute > 59 {
		return "", fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// NewDaily creates a stopped Daily trigger in loc; a nil loc means time.Local.
func NewDaily(hour, minute int, loc *time.Location) (*Daily, error) {
	spec, err := Spec(hour, minute)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}

	logger := log.With().Str("component", "scheduler").Logger()
	cl := Logger(logger)

	return &Daily{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:   spec,
		loc:    loc,
		logger: logger,
	}, nil
}

// Start registers job and starts the trigger. job receives ctx on every run.
func (d *Daily) Start(ctx context.Context, job func(context.Context)) error {
	if _, err := d.cron.AddFunc(d.spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", d.spec, err)
	}
	d.cron.Start()

	d.logger.Info().
		Str("spec", d.spec).
		Time("next_run", d.Next()).
		Msg("Daily schedule started")
	return nil
}

// Next returns the upcoming trigger time, or the zero time before Start.
func (d *Daily) Next() time.Time {
	entries := d.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop halts the trigger. The returned context is done once a job that is
// still running has returned.
func (d *Daily) Stop() context.Context {
	d.logger.Info().Msg("Stopping daily schedule")
	return d.cron.Stop()
}

// NextRun returns the first hour:minute in loc strictly after now.
func NextRun(hour, minute int, now time.Time, loc *time.Location) (time.Time, error) {
	spec, err := Spec(hour, minute)
	if err != nil {
		return time.Time{}, err
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	return sched.Next(now.In(loc)), nil
}
