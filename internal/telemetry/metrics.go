// Package telemetry provides logging setup and Prometheus metrics for the audit log service.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and served by the
// side-channel HTTP server started in cmd/server:
//
//	GET http://<host>:<PUBLINK_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not part of the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Audit log query counters and latency, by scope ("organization" or "all")
//   - Correlation groups resolved per page
//   - Organisation cache hits and misses
//   - Rate limiter rejections
//   - Database connection pool gauge
//
// Usage:
//
//	telemetry.AuditLogQueriesTotal.WithLabelValues("organization", "success").Inc()
package telemetry

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template and status code.
//
// The path label holds the Gin route template (e.g. /api/v1/logs), never the raw URL,
// so query strings and ids cannot blow up label cardinality.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Audit log query metrics, recorded by the query engine.
//
// AuditLogQueriesTotal has labels {scope, status}; scope is "organization" for the
// scoped listing and "all" for the legacy unscoped one, status is "success" or "error".
//
// Example PromQL queries:
//   - Failure ratio:   sum(rate(audit_log_queries_total{status="error"}[5m])) / sum(rate(audit_log_queries_total[5m]))
//   - p95 latency:     histogram_quantile(0.95, sum by (le) (rate(audit_log_query_duration_seconds_bucket{scope="organization"}[5m])))
//
// AggregateGroupsResolved observes how many correlation groups one page lookup returned.
var (
	AuditLogQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_log_queries_total",
			Help: "Total number of audit log page queries, by scope and status.",
		},
		[]string{"scope", "status"},
	)

	AuditLogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_log_query_duration_seconds",
			Help:    "Duration of audit log page queries including aggregate lookup, by scope.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		},
		[]string{"scope"},
	)

	AggregateGroupsResolved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_log_aggregate_groups_resolved",
			Help:    "Number of correlation groups resolved for one page of audit logs.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 250, 500},
		},
	)
)

// OrganizationCacheRequestsTotal counts organisation cache lookups by result
// ("hit", "miss" or "error").
var OrganizationCacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "organization_cache_requests_total",
		Help: "Total number of organisation cache lookups, by result.",
	},
	[]string{"result"},
)

// RateLimitRejectionsTotal counts requests refused by the rate limiter, by backend
// ("memory" or "redis").
var RateLimitRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter, by backend.",
	},
	[]string{"backend"},
)

// DBOpenConnections tracks the open connections held by the sql.DB pool. It is sampled
// periodically by StartDBStatsCollector rather than per request.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector samples pool statistics every interval until ctx is cancelled
// or the database stops answering pings.
//
//	telemetry.StartDBStatsCollector(ctx, database, 15*time.Second)
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := db.PingContext(ctx); err != nil {
					slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
					return
				}
				DBOpenConnections.Set(float64(db.Stats().OpenConnections))
			}
		}
	}()
}
