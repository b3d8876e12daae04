package schedule

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec(t *testing.T) {
	spec, err := Spec(6, 0)
	require.NoError(t, err)
	assert.Equal(t, "0 6 * * *", spec)

	spec, err = Spec(23, 45)
	require.NoError(t, err)
	assert.Equal(t, "45 23 * * *", spec)

	_, err = Spec(24, 0)
	assert.Error(t, err)
	_, err = Spec(6, 60)
	assert.Error(t, err)
	_, err = NewDaily(-1, 0, time.UTC)
	assert.Error(t, err)
}

func TestNextRun(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"later today", time.Date(2025, 6, 10, 5, 59, 0, 0, time.UTC), time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC)},
		{"already passed", time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC), time.Date(2025, 6, 11, 6, 0, 0, 0, time.UTC)},
		{"exactly on time", time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC), time.Date(2025, 6, 11, 6, 0, 0, 0, time.UTC)},
		{"year end", time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(6, 0, tt.now, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestDailyStartAndStop(t *testing.T) {
	d, err := NewDaily(6, 30, time.UTC)
	require.NoError(t, err)
	assert.True(t, d.Next().IsZero())

	require.NoError(t, d.Start(context.Background(), func(context.Context) {}))

	next := d.Next()
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.True(t, next.After(time.Now()))

	select {
	case <-d.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestDailySkipsOverlappingRuns(t *testing.T) {
	d, err := NewDaily(6, 0, time.UTC)
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{}, 2)
	var mu sync.Mutex
	runs := 0

	require.NoError(t, d.Start(context.Background(), func(context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
		started <- struct{}{}
		<-release
	}))
	defer d.Stop()

	job := d.cron.Entries()[0].WrappedJob

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// Fires while the first run is still blocked; must be skipped.
	job.Run()

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs)
}

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	l := Logger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.Info("wake", "now", "2025-06-10")
	assert.Contains(t, buf.String(), `"message":"wake"`)
	assert.Contains(t, buf.String(), `"now":"2025-06-10"`)

	buf.Reset()
	l.Error(errors.New("boom"), "panic", "job", "daily")
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"job":"daily"`)
}
