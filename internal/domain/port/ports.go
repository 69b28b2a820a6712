// Package port defines the six narrow capability interfaces the core
// consumes from its external collaborators (SPEC_FULL.md §9, "Polymorphism
// over storage tiers"). Each usecase package takes only the interfaces it
// needs; tests swap in in-memory fakes that honour the Article/Source/
// Keyword invariants from internal/domain/entity.
package port

import (
	"context"
	"time"

	"afrisignal/internal/domain/entity"
)

// ArticleFilter narrows a doc-store query across the fields the read
// paths (search, ranker, analytics) need to post-filter on.
type ArticleFilter struct {
	CategoryID string
	SourceID   string
	Since      time.Time
	Until      time.Time
	Limit      int
}

// DocStore is uniform CRUD + aggregation access to the primary store,
// reached over RPC in production (see internal/infra/adapter/docstore).
type DocStore interface {
	InsertArticles(ctx context.Context, articles []entity.Article) error
	ExistsByRSSGUIDs(ctx context.Context, guids []string) (map[string]bool, error)
	ExistsByOriginalURLs(ctx context.Context, urls []string) (map[string]bool, error)
	FindArticles(ctx context.Context, filter ArticleFilter) ([]entity.Article, error)
	FindArticlesByIDs(ctx context.Context, ids []string) ([]entity.Article, error)
	SearchArticlesByKeyword(ctx context.Context, query string, filter ArticleFilter) ([]entity.Article, error)
	RecentArticles(ctx context.Context, since time.Time, limit int) ([]entity.Article, error)

	ListEnabledSources(ctx context.Context) ([]entity.Source, error)
	UpdateSourceFetchResult(ctx context.Context, sourceID string, success bool, at time.Time, errMsg string) error
	UpdateSourceHealth(ctx context.Context, sourceID string, status entity.HealthStatus, quality, avgQuality, avgEngagement float64, articleCount7d int) error
	SourceArticleStats(ctx context.Context, sourceID string, since time.Time) (avgQuality, avgViews, avgLikes, avgBookmarks float64, count int, err error)

	ListEnabledKeywords(ctx context.Context, limit int) ([]entity.Keyword, error)
	ListKeywordsByUsage(ctx context.Context, limit int) ([]entity.Keyword, error)
	IncrementKeywordUsage(ctx context.Context, keywordIDs []string) error
	LinkArticleKeywords(ctx context.Context, links []entity.ArticleKeywordLink) error
	TrendingAggregate(ctx context.Context, scope string, since time.Time) ([]entity.TrendingTopic, error)

	ListCategories(ctx context.Context, limit int) ([]entity.Category, error)

	Stats(ctx context.Context) (totalArticles, activeSources, categories int, articles24h, articles7d int, err error)
}

// EdgeCache is prepared-statement SQL access over the read-optimised
// replicated store (internal/infra/adapter/edgecache).
type EdgeCache interface {
	UpsertArticle(ctx context.Context, a entity.Article) error
	UpsertKeyword(ctx context.Context, k entity.Keyword) error
	UpsertCategory(ctx context.Context, c entity.Category) error
	SearchArticlesLike(ctx context.Context, query string, filter ArticleFilter) ([]entity.Article, error)
	FindArticlesByIDs(ctx context.Context, ids []string) ([]entity.Article, error)
	Close() error
}

// VectorIndex is embedding storage and nearest-neighbour query
// (internal/infra/adapter/vector).
type VectorIndex interface {
	Upsert(ctx context.Context, id string, embedding []float32) error
	Query(ctx context.Context, embedding []float32, topK int) ([]VectorMatch, error)
}

// VectorMatch is a single nearest-neighbour result.
type VectorMatch struct {
	ID    string
	Score float64
}

// KvStore is simple key-value access with TTL, used for trending
// snapshot caching (internal/infra/adapter/kv).
type KvStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// LlmGateway is prompt-in, text/JSON-out access to the external language
// model (internal/infra/adapter/llm).
type LlmGateway interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteJSON(ctx context.Context, prompt string, out any) error
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HttpFetcher is a hardened outbound HTTP client used by the feed
// collector and the web-article extractor.
type HttpFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error) // body, content-type, error
}
