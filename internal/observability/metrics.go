package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the feed
// pipeline. The rejection counter labels mirror the feed accounting buckets
// so a run summary can be reconstructed from /metrics alone.
type Metrics struct {
	RecordsProcessed *prometheus.CounterVec // labels: source
	RecordsAccepted  prometheus.Counter
	RecordsRejected  *prometheus.CounterVec // labels: reason
	DuplicatesMerged prometheus.Counter
	BuildRunning     prometheus.Gauge
	FeedStations     prometheus.Gauge

	BuildDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsProcessed,
		m.RecordsAccepted,
		m.RecordsRejected,
		m.DuplicatesMerged,
		m.BuildRunning,
		m.FeedStations,
		m.BuildDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chargefeed",
			Name:      "records_processed_total",
			Help:      "Raw records consumed, by source tag.",
		}, []string{"source"}),
		RecordsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chargefeed",
			Name:      "records_accepted_total",
			Help:      "Records normalized into unique canonical stations.",
		}),
		RecordsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chargefeed",
			Name:      "records_rejected_total",
			Help:      "Records dropped, by rejection reason.",
		}, []string{"reason"}),
		DuplicatesMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chargefeed",
			Name:      "duplicates_merged_total",
			Help:      "Records collapsed into an already-seen station.",
		}),
		BuildRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chargefeed",
			Name:      "build_running",
			Help:      "1 while a feed build is in progress.",
		}),
		FeedStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chargefeed",
			Name:      "feed_stations",
			Help:      "Stations in the most recently finalized feed.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "chargefeed",
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete feed build across all sources.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chargefeed",
			Name:      "geocode_requests_total",
			Help:      "Seed-site geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chargefeed",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
	}
}
