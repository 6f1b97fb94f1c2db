// Package metrics pushes the exporter's Prometheus metrics to a Pushgateway
// at the end of a run. Metrics are registered via promauto in their
// respective packages (confluence, cache).
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Gatherer is what Push sends to the Pushgateway.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// DefaultJob is the Pushgateway job name for export runs.
const DefaultJob = "confluence_export"

// Push sends all gathered metrics to the Pushgateway at url, grouped by job
// and space key. Existing metrics of the same group are replaced.
func Push(ctx context.Context, url, job, spaceKey string) error {
	if job == "" {
		job = DefaultJob
	}

	pusher := push.New(url, job).Gatherer(Gatherer)
	if spaceKey != "" {
		pusher = pusher.Grouping("space", spaceKey)
	}

	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/confluence):
//   - confluence_requests_total{status} (Counter): Requests by HTTP status or "network_error"
//   - confluence_request_duration_seconds (Histogram): Request duration
//   - confluence_errors_total{class} (Counter): Failures by class (network, client, server, malformed)
//   - confluence_pages_fetched_total (Counter): Content records decoded
//
// Cache Metrics (pkg/cache):
//   - confluence_cache_hits_total (Counter): Page cache hits
//   - confluence_cache_misses_total (Counter): Page cache misses
//   - confluence_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Records exported by the last run of a space
//   confluence_pages_fetched_total{job="confluence_export", space="DOCS"}
//
//   # Failed runs by class
//   confluence_errors_total{job="confluence_export"} > 0
