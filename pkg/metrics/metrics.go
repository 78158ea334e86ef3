package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts dataset cache lookups by result type and outcome (hit|miss).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seistore_cache_lookups_total",
			Help: "Total number of result cache lookups",
		},
		[]string{"result_type", "outcome"},
	)

	// CacheBuilds counts provider builds by result type and result (success|error).
	CacheBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seistore_cache_builds_total",
			Help: "Total number of dataset builds triggered by cache misses",
		},
		[]string{"result_type", "result"},
	)

	// CacheWriteFailures counts cache rows that could not be persisted after a build.
	CacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seistore_cache_write_failures_total",
			Help: "Total number of failed cache writes (dataset still served)",
		},
	)

	// CacheInvalidations counts cache rows removed by imports, deletes and sweeps.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seistore_cache_invalidations_total",
			Help: "Total number of cache invalidation operations",
		},
		[]string{"trigger"},
	)

	// ImportedRows counts raw rows accepted per result type.
	ImportedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seistore_imported_rows_total",
			Help: "Total number of raw result rows imported",
		},
		[]string{"result_type"},
	)

	// ExportJobs counts export jobs by outcome (success|failure).
	ExportJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seistore_export_jobs_total",
			Help: "Total number of completed export jobs",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seistore_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
