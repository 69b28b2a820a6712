package entity

import "time"

// TrendingTopic is a single scored keyword within a TrendingSnapshot.
type TrendingTopic struct {
	Keyword         string  `json:"keyword"`
	ArticleCount    int     `json:"article_count"`
	EngagementScore float64 `json:"engagement_score"`
	Score           float64 `json:"score"`
}

// TrendingSnapshot is a per-scope (global or country) ranked topic list,
// cached in the KV store under "trending:global" or "trending:<CC>" with
// a 30-minute TTL.
type TrendingSnapshot struct {
	Scope     string          `json:"scope"` // "global" or an ISO-3166-alpha2 country code
	Topics    []TrendingTopic `json:"topics"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TrendingTTL is the KV cache lifetime for a TrendingSnapshot.
const TrendingTTL = 30 * time.Minute
