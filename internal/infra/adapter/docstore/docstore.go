// Package docstore adapts a remote primary-store service to
// port.DocStore over HTTP+JSON. Grounded on gonews's APIClient
// (internal/services/api_client.go: shared http.Client, JSON
// request/response structs, circuit-breaker-guarded calls), adapted
// from outbound news-API polling to an internal RPC client with one
// method per DocStore operation. Replaces the teacher's gRPC/protobuf
// doc-store dependency (internal/infra/grpc), which SPEC_FULL.md's
// storage layer has no protobuf schema to drive; see DESIGN.md.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
	"afrisignal/internal/resilience/circuitbreaker"
)

// Client is an HTTP+JSON port.DocStore backed by a remote primary store.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *circuitbreaker.CircuitBreaker
}

// Config holds the remote endpoint and request timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// New builds a Client against cfg.BaseURL, wrapping every call in a
// circuit breaker tuned like the teacher's DefaultConfig.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		cb:      circuitbreaker.New(circuitbreaker.DefaultConfig("docstore")),
	}
}

func (c *Client) call(ctx context.Context, path string, req, resp any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.doCall(ctx, path, req, resp)
	})
	return err
}

func (c *Client) doCall(ctx context.Context, path string, req, resp any) error {
	var body io.Reader
	if req != nil {
		buf, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("docstore: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("docstore: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("docstore: call %s: %w", path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(httpResp.Body)
		return fmt.Errorf("docstore: %s returned HTTP %d: %s", path, httpResp.StatusCode, string(payload))
	}
	if resp == nil {
		return nil
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("docstore: decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) InsertArticles(ctx context.Context, articles []entity.Article) error {
	return c.call(ctx, "/articles.insert", map[string]any{"articles": articles}, nil)
}

func (c *Client) ExistsByRSSGUIDs(ctx context.Context, guids []string) (map[string]bool, error) {
	var out struct {
		Exists map[string]bool `json:"exists"`
	}
	err := c.call(ctx, "/articles.existsByGUID", map[string]any{"guids": guids}, &out)
	return out.Exists, err
}

func (c *Client) ExistsByOriginalURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	var out struct {
		Exists map[string]bool `json:"exists"`
	}
	err := c.call(ctx, "/articles.existsByURL", map[string]any{"urls": urls}, &out)
	return out.Exists, err
}

func (c *Client) FindArticles(ctx context.Context, filter port.ArticleFilter) ([]entity.Article, error) {
	var out struct {
		Articles []entity.Article `json:"articles"`
	}
	err := c.call(ctx, "/articles.find", filter, &out)
	return out.Articles, err
}

func (c *Client) FindArticlesByIDs(ctx context.Context, ids []string) ([]entity.Article, error) {
	var out struct {
		Articles []entity.Article `json:"articles"`
	}
	err := c.call(ctx, "/articles.findByIDs", map[string]any{"ids": ids}, &out)
	return out.Articles, err
}

func (c *Client) SearchArticlesByKeyword(ctx context.Context, query string, filter port.ArticleFilter) ([]entity.Article, error) {
	var out struct {
		Articles []entity.Article `json:"articles"`
	}
	err := c.call(ctx, "/articles.searchByKeyword", map[string]any{"query": query, "filter": filter}, &out)
	return out.Articles, err
}

func (c *Client) RecentArticles(ctx context.Context, since time.Time, limit int) ([]entity.Article, error) {
	var out struct {
		Articles []entity.Article `json:"articles"`
	}
	err := c.call(ctx, "/articles.recent", map[string]any{"since": since, "limit": limit}, &out)
	return out.Articles, err
}

func (c *Client) ListEnabledSources(ctx context.Context) ([]entity.Source, error) {
	var out struct {
		Sources []entity.Source `json:"sources"`
	}
	err := c.call(ctx, "/sources.listEnabled", nil, &out)
	return out.Sources, err
}

func (c *Client) UpdateSourceFetchResult(ctx context.Context, sourceID string, success bool, at time.Time, errMsg string) error {
	return c.call(ctx, "/sources.updateFetchResult", map[string]any{
		"source_id": sourceID, "success": success, "at": at, "error": errMsg,
	}, nil)
}

func (c *Client) UpdateSourceHealth(ctx context.Context, sourceID string, status entity.HealthStatus, quality, avgQuality, avgEngagement float64, articleCount7d int) error {
	return c.call(ctx, "/sources.updateHealth", map[string]any{
		"source_id": sourceID, "status": status, "quality": quality,
		"avg_quality": avgQuality, "avg_engagement": avgEngagement, "article_count_7d": articleCount7d,
	}, nil)
}

func (c *Client) SourceArticleStats(ctx context.Context, sourceID string, since time.Time) (avgQuality, avgViews, avgLikes, avgBookmarks float64, count int, err error) {
	var out struct {
		AvgQuality   float64 `json:"avg_quality"`
		AvgViews     float64 `json:"avg_views"`
		AvgLikes     float64 `json:"avg_likes"`
		AvgBookmarks float64 `json:"avg_bookmarks"`
		Count        int     `json:"count"`
	}
	err = c.call(ctx, "/sources.articleStats", map[string]any{"source_id": sourceID, "since": since}, &out)
	return out.AvgQuality, out.AvgViews, out.AvgLikes, out.AvgBookmarks, out.Count, err
}

func (c *Client) ListEnabledKeywords(ctx context.Context, limit int) ([]entity.Keyword, error) {
	var out struct {
		Keywords []entity.Keyword `json:"keywords"`
	}
	err := c.call(ctx, "/keywords.listEnabled", map[string]any{"limit": limit}, &out)
	return out.Keywords, err
}

func (c *Client) ListKeywordsByUsage(ctx context.Context, limit int) ([]entity.Keyword, error) {
	var out struct {
		Keywords []entity.Keyword `json:"keywords"`
	}
	err := c.call(ctx, "/keywords.listByUsage", map[string]any{"limit": limit}, &out)
	return out.Keywords, err
}

func (c *Client) IncrementKeywordUsage(ctx context.Context, keywordIDs []string) error {
	return c.call(ctx, "/keywords.incrementUsage", map[string]any{"keyword_ids": keywordIDs}, nil)
}

func (c *Client) LinkArticleKeywords(ctx context.Context, links []entity.ArticleKeywordLink) error {
	return c.call(ctx, "/keywords.link", map[string]any{"links": links}, nil)
}

func (c *Client) TrendingAggregate(ctx context.Context, scope string, since time.Time) ([]entity.TrendingTopic, error) {
	var out struct {
		Topics []entity.TrendingTopic `json:"topics"`
	}
	err := c.call(ctx, "/trending.aggregate", map[string]any{"scope": scope, "since": since}, &out)
	return out.Topics, err
}

func (c *Client) ListCategories(ctx context.Context, limit int) ([]entity.Category, error) {
	var out struct {
		Categories []entity.Category `json:"categories"`
	}
	err := c.call(ctx, "/categories.list", map[string]any{"limit": limit}, &out)
	return out.Categories, err
}

func (c *Client) Stats(ctx context.Context) (totalArticles, activeSources, categories, articles24h, articles7d int, err error) {
	var out struct {
		TotalArticles int `json:"total_articles"`
		ActiveSources int `json:"active_sources"`
		Categories    int `json:"categories"`
		Articles24h   int `json:"articles_24h"`
		Articles7d    int `json:"articles_7d"`
	}
	err = c.call(ctx, "/stats", nil, &out)
	return out.TotalArticles, out.ActiveSources, out.Categories, out.Articles24h, out.Articles7d, err
}
