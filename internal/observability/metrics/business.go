package metrics

import "time"

// RecordCollectorRun records the outcome of one collector pipeline run.
func RecordCollectorRun(sourcesConsidered, articlesInserted, articlesDuplicate int, duration time.Duration) {
	SourcesConsideredTotal.Add(float64(sourcesConsidered))
	ArticlesInsertedTotal.Add(float64(articlesInserted))
	ArticlesDuplicateTotal.Add(float64(articlesDuplicate))
	CollectorRunDuration.Observe(duration.Seconds())
}

// RecordEdgeSync records the outcome of one edge-cache synchronisation run.
func RecordEdgeSync(articlesWritten, keywordsWritten, categoriesWritten, errors int, elapsedMs int64) {
	EdgeSyncWrittenTotal.WithLabelValues("article").Add(float64(articlesWritten))
	EdgeSyncWrittenTotal.WithLabelValues("keyword").Add(float64(keywordsWritten))
	EdgeSyncWrittenTotal.WithLabelValues("category").Add(float64(categoriesWritten))
	if errors > 0 {
		EdgeSyncErrorsTotal.Add(float64(errors))
	}
	EdgeSyncRunDuration.Observe(time.Duration(elapsedMs * int64(time.Millisecond)).Seconds())
}

// RecordTrendingRefresh records how many trending scopes were refreshed
// on the most recent run.
func RecordTrendingRefresh(scopes int) {
	TrendingScopesRefreshed.Set(float64(scopes))
}

// RecordHealthAudit records the outcome of one source-health audit run.
func RecordHealthAudit(recomputed, alerts, errors int) {
	HealthAuditRecomputed.Set(float64(recomputed))
	HealthAuditAlertsTotal.Add(float64(alerts))
	if errors > 0 {
		HealthAuditErrorsTotal.Add(float64(errors))
	}
}
