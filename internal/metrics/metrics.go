// Package metrics holds the Prometheus series of the report pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Report cache metrics
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepsent_report_cache_lookups_total",
			Help: "Report cache lookups by result",
		},
		[]string{"result"}, // result: hit|miss
	)

	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "deepsent_report_cache_entries",
			Help: "Reports currently held by the session cache",
		},
	)

	ReportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deepsent_report_duration_seconds",
			Help:    "Time to collect and generate one report",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"status"}, // status: success|error
	)

	// Generation metrics
	GenerationAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepsent_generation_attempts_total",
			Help: "Calls made to the report generator, retries included",
		},
		[]string{"status"}, // status: success|transient|fatal
	)

	// Collection metrics
	CollectedPosts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepsent_collected_posts_total",
			Help: "Posts returned by the collector",
		},
		[]string{"source"},
	)

	Anomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepsent_sentiment_anomalies_total",
			Help: "Detected day-over-day sentiment anomalies",
		},
		[]string{"type"}, // type: surge|plunge
	)
)

// Registry is the dedicated registry the handler serves.
var Registry = prometheus.NewRegistry()

var initOnce sync.Once

// Init registers all metrics with Registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(CacheEntries)
		Registry.MustRegister(ReportDuration)
		Registry.MustRegister(GenerationAttempts)
		Registry.MustRegister(CollectedPosts)
		Registry.MustRegister(Anomalies)
	})
}

// Handler returns the Prometheus HTTP handler for Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordCacheLookup records a report cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	CacheLookups.WithLabelValues("miss").Inc()
}

// RecordReport records one miss-path run of the orchestrator.
func RecordReport(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ReportDuration.WithLabelValues(status).Observe(duration.Seconds())
}
