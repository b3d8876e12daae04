package process

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "aggregator"

// Metrics exports run counters. A nil *Metrics records nothing.
type Metrics struct {
	stored        prometheus.Counter
	failed        prometheus.Counter
	duplicates    prometheus.Counter
	sourcesFailed prometheus.Counter
	purged        prometheus.Counter
	runDuration   prometheus.Histogram
	lastRun       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		stored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "articles_stored_total",
			Help:      "Articles enriched and stored.",
		}),
		failed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "articles_failed_total",
			Help:      "Items skipped because a processing step failed.",
		}),
		duplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "articles_duplicate_total",
			Help:      "Items skipped because their URL was already stored.",
		}),
		sourcesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sources_failed_total",
			Help:      "Feeds that could not be fetched or parsed.",
		}),
		purged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "articles_purged_total",
			Help:      "Articles deleted by the retention sweep.",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last pipeline run finished.",
		}),
	}
}

func (m *Metrics) observe(stats RunStats, finishedUnix float64) {
	if m == nil {
		return
	}
	m.stored.Add(float64(stats.New))
	m.failed.Add(float64(stats.Errors))
	m.duplicates.Add(float64(stats.Duplicates))
	m.sourcesFailed.Add(float64(stats.SourcesFailed))
	m.purged.Add(float64(stats.Purged))
	m.runDuration.Observe(stats.Duration.Seconds())
	m.lastRun.Set(finishedUnix)
}
