// Package health implements the source-health manager (SPEC_FULL.md
// §4.8): failure-count classification, adaptive fetch-interval gating,
// and the 6-hourly quality recomputation. Grounded on the teacher's
// resilience/circuitbreaker state-machine style (closed/half-open/open
// mirrored here as healthy/degraded/failing/critical).
package health

import (
	"context"
	"math"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
)

// Classify maps consecutive_failures to a health status per SPEC_FULL.md
// §4.8's thresholds: 0 healthy, 1-3 degraded, 4-7 failing, >=8 critical.
func Classify(consecutiveFailures int) entity.HealthStatus {
	switch {
	case consecutiveFailures == 0:
		return entity.HealthHealthy
	case consecutiveFailures <= 3:
		return entity.HealthDegraded
	case consecutiveFailures <= 7:
		return entity.HealthFailing
	default:
		return entity.HealthCritical
	}
}

// FetchInterval returns the adaptive fetch interval for a health status;
// critical sources are never re-admitted (interval of zero means "never").
func FetchInterval(status entity.HealthStatus) time.Duration {
	switch status {
	case entity.HealthHealthy:
		return 15 * time.Minute
	case entity.HealthDegraded:
		return 30 * time.Minute
	case entity.HealthFailing:
		return 60 * time.Minute
	default:
		return 0
	}
}

// ShouldFetch implements should_fetch(src): admitted iff status is not
// critical and either no prior successful/attempted fetch is recorded, or
// the adaptive interval has elapsed since the most recent of the two.
func ShouldFetch(src entity.Source, now time.Time) bool {
	status := Classify(src.ConsecutiveFailures)
	if status == entity.HealthCritical {
		return false
	}

	last := src.LastSuccessfulFetch
	if last == nil {
		last = src.LastFetchAt
	}
	if last == nil {
		return true
	}

	return now.Sub(*last) >= FetchInterval(status)
}

// RecordResult updates a source's liveness fields after one fetch
// attempt: success resets consecutive_failures; failure increments it.
func RecordResult(src entity.Source, success bool, at time.Time, errMsg string) entity.Source {
	if success {
		src.ConsecutiveFailures = 0
		src.LastSuccessfulFetch = &at
		src.LastFetchAt = &at
		src.LastError = ""
	} else {
		src.ConsecutiveFailures++
		src.LastFetchAt = &at
		src.LastErrorAt = &at
		src.LastError = errMsg
	}
	src.HealthStatus = Classify(src.ConsecutiveFailures)
	return src
}

// QualityComposite computes source_quality_score from 7-day aggregates:
// 0.6*avg_quality + 0.3*min(log10(engagement+1)/3, 1) + 0.1*min(count/50, 1).
func QualityComposite(avgQuality, avgViews, avgLikes, avgBookmarks float64, count int) float64 {
	engagement := avgViews + 3*avgLikes + 2*avgBookmarks
	engagementTerm := math.Min(math.Log10(engagement+1)/3, 1)
	volumeTerm := math.Min(float64(count)/50, 1)
	return 0.6*avgQuality + 0.3*engagementTerm + 0.1*volumeTerm
}

// Alert is emitted whenever a source's health status degrades relative
// to its previously stored status.
type Alert struct {
	SourceID  string
	Previous  entity.HealthStatus
	Current   entity.HealthStatus
}

var severityRank = map[entity.HealthStatus]int{
	entity.HealthHealthy:  0,
	entity.HealthDegraded: 1,
	entity.HealthFailing:  2,
	entity.HealthCritical: 3,
}

func isDegradation(previous, current entity.HealthStatus) bool {
	return severityRank[current] > severityRank[previous]
}

// AuditResult summarises a 6-hourly quality-recomputation pass. The four
// status counts classify every source passed to RunQualityAudit by its
// consecutive_failures, independent of whether its stats lookup or
// health-write succeeded, mirroring source_health.py's summary block.
type AuditResult struct {
	Recomputed int
	Alerts     []Alert
	Errors     int
	Healthy    int
	Degraded   int
	Failing    int
	Critical   int
}

// RunQualityAudit recomputes source_quality_score for every enabled
// source over the trailing 7 days and returns any degradation alerts.
// Per-source failures are counted but never abort the audit.
func RunQualityAudit(ctx context.Context, store port.DocStore, sources []entity.Source, now time.Time) AuditResult {
	result := AuditResult{}
	since := now.AddDate(0, 0, -7)

	for _, src := range sources {
		switch Classify(src.ConsecutiveFailures) {
		case entity.HealthHealthy:
			result.Healthy++
		case entity.HealthDegraded:
			result.Degraded++
		case entity.HealthFailing:
			result.Failing++
		default:
			result.Critical++
		}
	}

	for _, src := range sources {
		avgQuality, avgViews, avgLikes, avgBookmarks, count, err := store.SourceArticleStats(ctx, src.ID, since)
		if err != nil {
			result.Errors++
			continue
		}

		composite := QualityComposite(avgQuality, avgViews, avgLikes, avgBookmarks, count)
		newStatus := Classify(src.ConsecutiveFailures)

		if isDegradation(src.HealthStatus, newStatus) {
			result.Alerts = append(result.Alerts, Alert{SourceID: src.ID, Previous: src.HealthStatus, Current: newStatus})
		}

		if err := store.UpdateSourceHealth(ctx, src.ID, newStatus, composite, avgQuality, avgViews+3*avgLikes+2*avgBookmarks, count); err != nil {
			result.Errors++
			continue
		}
		result.Recomputed++
	}

	return result
}
