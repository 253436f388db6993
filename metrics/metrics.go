// Package metrics holds the Prometheus collectors of the service:
//   - HTTP traffic: request totals, latency, in-flight requests
//   - rate limiting: live token buckets
//   - catalog: record count, snapshot version, reloads by result, coerced fields
//   - matching: latency and result count per query operation
//
// All collectors are registered with the default registry at init.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen in last ~5 minutes)",
		},
	)

	CatalogRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_records",
			Help: "Records in the current catalog snapshot",
		},
	)

	CatalogVersion = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_snapshot_version",
			Help: "Version of the current catalog snapshot",
		},
	)

	CatalogReloadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reload_total",
			Help: "Catalog reloads by result (success, failure, skipped)",
		},
		[]string{"result"},
	)

	CatalogLastReloadSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_last_reload_timestamp_seconds",
			Help: "Unix time of the last successful catalog reload",
		},
	)

	CatalogCoercedFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_coerced_fields_total",
			Help: "Row values replaced by a default while loading the catalog",
		},
		[]string{"field"},
	)

	MatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_duration_seconds",
			Help:    "Fuzzy match latency per query operation",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"operation"},
	)

	MatchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_results",
			Help:    "Matches returned per query operation",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50, 100},
		},
		[]string{"operation"},
	)
)

// Reload results
const (
	ReloadSuccess = "success"
	ReloadFailure = "failure"
	ReloadSkipped = "skipped"
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(CatalogRecords)
	prometheus.MustRegister(CatalogVersion)
	prometheus.MustRegister(CatalogReloadTotal)
	prometheus.MustRegister(CatalogLastReloadSeconds)
	prometheus.MustRegister(CatalogCoercedFields)
	prometheus.MustRegister(MatchDuration)
	prometheus.MustRegister(MatchResults)
}

// ObserveMatch records one matcher run.
func ObserveMatch(operation string, start time.Time, results int) {
	MatchDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	MatchResults.WithLabelValues(operation).Observe(float64(results))
}

// RecordSnapshot publishes the size and version of a freshly swapped snapshot.
func RecordSnapshot(records int, version uint64, at time.Time) {
	CatalogRecords.Set(float64(records))
	CatalogVersion.Set(float64(version))
	CatalogLastReloadSeconds.Set(float64(at.Unix()))
	CatalogReloadTotal.WithLabelValues(ReloadSuccess).Inc()
}

// RecordCoercions adds the per-field coercion counts of one load.
func RecordCoercions(prices, quantities, expiry int) {
	CatalogCoercedFields.WithLabelValues("price").Add(float64(prices))
	CatalogCoercedFields.WithLabelValues("quantity_available").Add(float64(quantities))
	CatalogCoercedFields.WithLabelValues("expiry_date").Add(float64(expiry))
}
