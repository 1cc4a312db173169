// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ycrawler_fetches_total",
			Help: "Total fetch attempts, labeled by outcome kind (empty kind = success).",
		},
		[]string{"kind"},
	)

	bytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_bytes_total",
		Help: "Total response bytes received across successful fetches.",
	})

	inFlightFetches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ycrawler_in_flight_fetches",
		Help: "Number of fetches currently in progress.",
	})

	artifactsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_artifacts_written_total",
		Help: "Total artifacts persisted to disk (dry-run writes excluded).",
	})

	storiesVisitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ycrawler_stories_visited_total",
			Help: "Total stories reconciled as visited, labeled by story fetch outcome.",
		},
		[]string{"outcome"},
	)

	commentLinkFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_comment_link_failures_total",
		Help: "Comment-link downloads that produced no artifact.",
	})

	emptyFrontPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ycrawler_empty_front_pages_total",
		Help: "Polling cycles skipped because the front page yielded no content.",
	})

	cycleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ycrawler_cycle_duration_seconds",
		Help:    "Histogram of full discover-to-reconcile cycle durations.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one fetch attempt. kind is empty for success.
func ObserveFetch(kind string, bytesFetched int) {
	fetchesTotal.WithLabelValues(kind).Inc()
	if bytesFetched > 0 {
		bytesTotal.Add(float64(bytesFetched))
	}
}

// IncInFlight increments the in-flight fetch gauge.
func IncInFlight() {
	inFlightFetches.Inc()
}

// DecInFlight decrements the in-flight fetch gauge.
func DecInFlight() {
	inFlightFetches.Dec()
}

// ObserveArtifactWritten records one artifact persisted to disk.
func ObserveArtifactWritten() {
	artifactsWrittenTotal.Inc()
}

// ObserveStoryVisited records a story moving to the visited set.
func ObserveStoryVisited(succeeded bool) {
	outcome := "failed"
	if succeeded {
		outcome = "succeeded"
	}
	storiesVisitedTotal.WithLabelValues(outcome).Inc()
}

// ObserveCommentLinkFailure records a comment link that yielded nothing.
func ObserveCommentLinkFailure() {
	commentLinkFailuresTotal.Inc()
}

// ObserveEmptyFrontPage records a cycle skipped for lack of a front page.
func ObserveEmptyFrontPage() {
	emptyFrontPagesTotal.Inc()
}

// ObserveCycle records the duration of one completed cycle.
func ObserveCycle(d time.Duration) {
	cycleDurationSeconds.Observe(d.Seconds())
}
