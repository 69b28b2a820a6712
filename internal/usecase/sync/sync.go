// Package sync implements the edge-cache synchroniser (SPEC_FULL.md
// §4.9): hourly replication of recently touched articles, keywords, and
// categories from the primary store into the edge cache. Grounded on the
// teacher's internal/infra/scraper batched-fetch posture, adapted from
// feed batching to row-bounded replication with per-row failure counts.
package sync

import (
	"context"
	"time"

	"afrisignal/internal/domain/port"
)

const (
	overlapWindow   = 2 * time.Hour
	maxArticles     = 200
	maxKeywords     = 500
	maxCategories   = 50
)

// Summary reports replication counts and per-row failure totals; a
// failure to replicate an individual row is counted but never fatal.
// ElapsedMs is a wall-clock measurement of the whole run, taken
// independently of now (the caller-supplied reference clock used only
// for the overlap window).
type Summary struct {
	ArticlesWritten   int
	KeywordsWritten   int
	CategoriesWritten int
	Errors            int
	ElapsedMs         int64
}

// Run replicates the recent-article window plus the keyword and category
// dictionaries into the edge cache. now is the caller-supplied reference
// clock; the overlap window guards against gaps between sync cycles.
func Run(ctx context.Context, store port.DocStore, cache port.EdgeCache, now time.Time) Summary {
	started := time.Now()
	summary := Summary{}

	since := now.Add(-overlapWindow)
	articles, err := store.RecentArticles(ctx, since, maxArticles)
	if err != nil {
		summary.Errors++
	} else {
		for _, a := range articles {
			if err := cache.UpsertArticle(ctx, a); err != nil {
				summary.Errors++
				continue
			}
			summary.ArticlesWritten++
		}
	}

	keywords, err := store.ListKeywordsByUsage(ctx, maxKeywords)
	if err != nil {
		summary.Errors++
	} else {
		for _, k := range keywords {
			if err := cache.UpsertKeyword(ctx, k); err != nil {
				summary.Errors++
				continue
			}
			summary.KeywordsWritten++
		}
	}

	categories, err := store.ListCategories(ctx, maxCategories)
	if err != nil {
		summary.Errors++
	} else {
		for _, c := range categories {
			if err := cache.UpsertCategory(ctx, c); err != nil {
				summary.Errors++
				continue
			}
			summary.CategoriesWritten++
		}
	}

	summary.ElapsedMs = time.Since(started).Milliseconds()
	return summary
}
