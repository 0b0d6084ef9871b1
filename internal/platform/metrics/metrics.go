// Package metrics exposes the process Prometheus collectors
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showroom_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showroom_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showroom_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showroom_browse_fetch_duration_seconds",
			Help:    "Remote page fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	indexFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showroom_browse_index_fallbacks_total",
			Help: "Page fetches retried without remote ordering because no index covered the query",
		},
	)

	backfillFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showroom_browse_backfill_fetches_total",
			Help: "Page fetches started by the backfill controller",
		},
	)

	countFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showroom_browse_count_failures_total",
			Help: "Total-count lookups that failed and were ignored",
		},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "showroom_browse_sessions_active",
			Help: "Number of live browse sessions",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordDBQuery records a database round trip; kind is "query" or "exec".
func RecordDBQuery(kind string, d time.Duration) {
	dbQueryDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordFetch records one page fetch; outcome is ok, fallback or error.
func RecordFetch(outcome string, d time.Duration) {
	fetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordIndexFallback counts a fetch that dropped remote ordering.
func RecordIndexFallback() { indexFallbacks.Inc() }

// RecordBackfillFetch counts a fetch started to fill the view.
func RecordBackfillFetch() { backfillFetches.Inc() }

// RecordCountFailure counts a swallowed total-count error.
func RecordCountFailure() { countFailures.Inc() }

// SetSessionsActive sets the number of live browse sessions.
func SetSessionsActive(n int) { sessionsActive.Set(float64(n)) }
