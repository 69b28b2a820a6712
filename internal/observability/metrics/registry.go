package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector pipeline (internal/usecase/collect), scheduled every 15
// minutes.
var (
	SourcesConsideredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_sources_considered_total",
			Help: "Total number of sources considered across collector runs",
		},
	)

	ArticlesInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_articles_inserted_total",
			Help: "Total number of new articles inserted by the collector pipeline",
		},
	)

	ArticlesDuplicateTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_articles_duplicate_total",
			Help: "Total number of duplicate articles skipped by the collector pipeline",
		},
	)

	CollectorRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collector_run_duration_seconds",
			Help:    "Wall-clock duration of one collector pipeline run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// Edge-cache synchroniser (internal/usecase/sync), scheduled hourly.
var (
	EdgeSyncWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_sync_written_total",
			Help: "Total number of records replicated to the edge cache",
		},
		[]string{"kind"}, // kind: article, keyword, category
	)

	EdgeSyncErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edge_sync_errors_total",
			Help: "Total number of errors during edge-cache synchronisation",
		},
	)

	EdgeSyncRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edge_sync_run_duration_seconds",
			Help:    "Wall-clock duration of one edge-cache synchronisation run",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)
)

// Trending engine (internal/usecase/trending), scheduled every 30
// minutes.
var (
	TrendingScopesRefreshed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trending_scopes_refreshed",
			Help: "Number of trending scopes refreshed on the most recent run",
		},
	)
)

// Source-health audit (internal/usecase/health), scheduled every six
// hours.
var (
	HealthAuditRecomputed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "health_audit_sources_recomputed",
			Help: "Number of sources whose quality score was recomputed on the most recent audit",
		},
	)

	HealthAuditAlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "health_audit_alerts_total",
			Help: "Total number of source-health alerts raised",
		},
	)

	HealthAuditErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "health_audit_errors_total",
			Help: "Total number of errors encountered during a health audit run",
		},
	)
)
