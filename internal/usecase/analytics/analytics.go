// Package analytics implements the analytics component (SPEC_FULL.md
// §4.14): enhanced stats, trending-categories with day-over-day growth,
// and content insights by engagement. Purely aggregation over data
// already loaded, grounded on the teacher's ranker-adjacent scoring
// style for the shared engagement formula.
package analytics

import (
	"context"
	"sort"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
)

// Stats mirrors the "enhanced stats" surface from SPEC_FULL.md §4.14.
type Stats struct {
	TotalArticles int
	ActiveSources int
	Categories    int
	Articles24h   int
	Articles7d    int
}

// CategoryTrend is one category's growth between yesterday and today.
type CategoryTrend struct {
	CategoryID string
	Today      int
	Yesterday  int
	Growth     float64
}

// TopArticle is a single entry in the content-insights top list.
type TopArticle struct {
	Article    entity.Article
	Engagement int64
}

// SourceProductivity reports article volume per source.
type SourceProductivity struct {
	SourceID     string
	ArticleCount int
}

// LoadStats fetches the enhanced stats directly from the primary store.
func LoadStats(ctx context.Context, store port.DocStore) (Stats, error) {
	total, activeSources, categories, articles24h, articles7d, err := store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalArticles: total,
		ActiveSources: activeSources,
		Categories:    categories,
		Articles24h:   articles24h,
		Articles7d:    articles7d,
	}, nil
}

// CategoryGrowth computes growth = (today - yesterday) / max(yesterday, 1)
// per category and sorts by engagement-weighted descending order.
func CategoryGrowth(todayCounts, yesterdayCounts map[string]int, engagementByCategory map[string]int64) []CategoryTrend {
	trends := make([]CategoryTrend, 0, len(todayCounts))
	for category, today := range todayCounts {
		yesterday := yesterdayCounts[category]
		denominator := yesterday
		if denominator < 1 {
			denominator = 1
		}
		growth := float64(today-yesterday) / float64(denominator)
		trends = append(trends, CategoryTrend{CategoryID: category, Today: today, Yesterday: yesterday, Growth: growth})
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return engagementByCategory[trends[i].CategoryID] > engagementByCategory[trends[j].CategoryID]
	})
	return trends
}

// TopArticlesByEngagement ranks articles by views + 3*likes + 2*bookmarks
// descending, truncated to limit.
func TopArticlesByEngagement(articles []entity.Article, limit int) []TopArticle {
	ranked := make([]TopArticle, 0, len(articles))
	for _, a := range articles {
		engagement := a.ViewCount + 3*a.LikeCount + 2*a.BookmarkCount
		ranked = append(ranked, TopArticle{Article: a, Engagement: engagement})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Engagement > ranked[j].Engagement })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// SourceProductivityReport counts articles per source, sorted descending.
func SourceProductivityReport(articles []entity.Article) []SourceProductivity {
	counts := map[string]int{}
	for _, a := range articles {
		counts[a.SourceID]++
	}

	report := make([]SourceProductivity, 0, len(counts))
	for sourceID, count := range counts {
		report = append(report, SourceProductivity{SourceID: sourceID, ArticleCount: count})
	}

	sort.SliceStable(report, func(i, j int) bool { return report[i].ArticleCount > report[j].ArticleCount })
	return report
}
