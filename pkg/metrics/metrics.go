// Package metrics provides centralized Prometheus metrics registry for the
// lookup service. All metrics are defined in their respective packages
// (client, cache, ratelimit, lookup) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation, reference and the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the service.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the /metrics scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Lookup Metrics (pkg/lookup):
//   - glp_lookup_runs_total{flow, outcome} (Counter): Runs by flow (device, subscription) and outcome (done, auth_error, cancelled)
//   - glp_lookup_run_duration_seconds{flow} (Histogram): Run duration by flow
//   - glp_lookup_units_total{flow, status} (Counter): Batches/keys fetched by transport status (ok, auth_error, network_error)
//   - glp_lookup_identifiers_total{flow, result} (Counter): Identifiers classified as found or missing
//
// Pacing Metrics (pkg/ratelimit):
//   - glp_pacer_wait_seconds{pacer} (Histogram): Time waited for the minimum inter-call interval
//
// Cache Metrics (pkg/cache):
//   - glp_cache_hits_total (Counter): Upstream responses served from redis
//   - glp_cache_misses_total (Counter): Cache misses
//   - glp_cache_stored_bytes_total (Counter): Bytes written to the cache
//   - glp_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - glp_upstream_requests_total{endpoint, status} (Counter): Upstream requests by endpoint and HTTP status
//   - glp_upstream_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - glp_upstream_errors_total{class} (Counter): Errors by class (auth, client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - glp_upstream_retries_total{error_class} (Counter): Retry attempts by error class
//   - glp_upstream_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - glp_upstream_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Example Prometheus Queries:
//
//   # Auth abort rate
//   sum(rate(glp_lookup_runs_total{outcome="auth_error"}[5m])) / sum(rate(glp_lookup_runs_total[5m]))
//
//   # Share of batches lost to transport errors
//   rate(glp_lookup_units_total{status="network_error"}[5m]) / rate(glp_lookup_units_total[5m])
//
//   # Cache Hit Rate
//   sum(rate(glp_cache_hits_total[5m])) /
//   (sum(rate(glp_cache_hits_total[5m])) + sum(rate(glp_cache_misses_total[5m])))
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(glp_upstream_request_duration_seconds_bucket[5m]))
