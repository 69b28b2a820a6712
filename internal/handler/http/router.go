package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
	"afrisignal/internal/handler/http/requestid"
	"afrisignal/internal/handler/http/respond"
	"afrisignal/internal/observability/tracing"
	"afrisignal/internal/usecase/clean"
	"afrisignal/internal/usecase/cluster"
	"afrisignal/internal/usecase/collect"
	"afrisignal/internal/usecase/enrich"
	"afrisignal/internal/usecase/extract"
	"afrisignal/internal/usecase/feedparse"
	"afrisignal/internal/usecase/health"
	"afrisignal/internal/usecase/keyword"
	"afrisignal/internal/usecase/quality"
	"afrisignal/internal/usecase/rank"
	"afrisignal/internal/usecase/search"
	"afrisignal/internal/usecase/trending"
)

// candidateWindowSize is how many recent articles /feed/rank pulls from
// the doc-store when the caller omits its own article window, per
// SPEC_FULL.md §4.17.
const candidateWindowSize = 200

// Deps is every collaborator the router's handlers close over. All
// fields are interfaces from internal/domain/port except the keyword
// dictionary, which the caller refreshes out of band (SPEC_FULL.md
// §4.4) and passes in as a snapshot.
type Deps struct {
	Store      port.DocStore
	Cache      port.EdgeCache
	Vector     port.VectorIndex
	Kv         port.KvStore
	Llm        port.LlmGateway
	Fetcher    port.HttpFetcher
	Dictionary func() []entity.Keyword
	Now        func() time.Time
}

func (d Deps) dictionary() []entity.Keyword {
	if d.Dictionary == nil {
		return nil
	}
	return d.Dictionary()
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// NewRouter builds the full HTTP surface from spec.md §6: one mux
// entry per route, wrapped in the shared middleware stack. Adapter
// pingers feed HealthHandler/ReadyHandler so /health and /ready reflect
// real reachability rather than a hardcoded "ok".
func NewRouter(deps Deps, pingers map[string]func(ctx context.Context) error, version string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", &HealthHandler{Version: version, Pingers: pingers})
	mux.Handle("/ready", &ReadyHandler{Pingers: pingers})
	mux.Handle("/live", &LiveHandler{})
	mux.Handle("/metrics", MetricsHandler())

	mux.HandleFunc("/rss/parse", handleRSSParse)
	mux.HandleFunc("/content/clean", handleContentClean)
	mux.HandleFunc("/content/scrape", deps.handleContentScrape)
	mux.HandleFunc("/content/process", deps.handleContentProcess)
	mux.HandleFunc("/keywords/extract", deps.handleKeywordsExtract)
	mux.HandleFunc("/quality/score", handleQualityScore)
	mux.HandleFunc("/clustering/cluster", deps.handleClusteringCluster)
	mux.HandleFunc("/search/query", deps.handleSearchQuery)
	mux.HandleFunc("/search/trending", deps.handleSearchTrending)
	mux.HandleFunc("/feed/rank", deps.handleFeedRank)
	mux.HandleFunc("/feed/collect", deps.handleFeedCollect)
	mux.HandleFunc("/trending", deps.handleTrendingGlobal)
	mux.HandleFunc("/trending/", deps.handleTrendingScoped)
	mux.HandleFunc("/sources/health", deps.handleSourcesHealth)

	logger := slog.Default()
	var h http.Handler = mux
	h = InputValidation()(h)
	h = Timeout(30 * time.Second)(h)
	h = MetricsMiddleware(h)
	h = NewRateLimiter(600, time.Minute).Limit(h)
	h = LimitRequestBody(10 << 20)(h)
	h = Logging(logger)(h)
	h = Recover(logger)(h)
	h = requestid.Middleware(h)
	h = tracing.Middleware(h)
	return h
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

// --- /rss/parse ---

type rssParseRequest struct {
	XML    string `json:"xml"`
	Source string `json:"source"`
}

type rssParseResponse struct {
	Articles  []feedparse.Item `json:"articles"`
	FeedTitle string           `json:"feed_title"`
	ItemCount int              `json:"item_count"`
}

func handleRSSParse(w http.ResponseWriter, r *http.Request) {
	var req rssParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := feedparse.Parse([]byte(req.XML), req.Source)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	respond.JSON(w, http.StatusOK, rssParseResponse{
		Articles:  result.Items,
		FeedTitle: result.FeedTitle,
		ItemCount: result.ItemCount,
	})
}

// --- /content/clean ---

type contentCleanRequest struct {
	HTML    string        `json:"html"`
	Options clean.Options `json:"options"`
}

type contentCleanResponse struct {
	CleanedContent   string   `json:"cleaned_content"`
	ExtractedImages  []string `json:"extracted_images"`
	RemovedCharCount int      `json:"removed_char_count"`
}

func handleContentClean(w http.ResponseWriter, r *http.Request) {
	var req contentCleanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := clean.Clean(req.HTML, req.Options)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	respond.JSON(w, http.StatusOK, contentCleanResponse{
		CleanedContent:   result.Text,
		ExtractedImages:  result.Images,
		RemovedCharCount: result.RemovedCharCount,
	})
}

// --- /content/scrape ---

type contentScrapeRequest struct {
	URL string `json:"url"`
}

func (d Deps) handleContentScrape(w http.ResponseWriter, r *http.Request) {
	var req contentScrapeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := entity.ValidateURL(req.URL); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	body, _, err := d.Fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		respond.SafeError(w, http.StatusBadGateway, err)
		return
	}

	extracted, err := extract.Extract(string(body))
	if err != nil {
		respond.SafeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	now := d.now()
	article := entity.Article{
		Title:       extracted.Title,
		Slug:        entity.Slugify(extracted.Title),
		Content:     extracted.Content,
		Author:      extracted.Author,
		ImageURL:    extracted.ImageURL,
		OriginalURL: req.URL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	respond.JSON(w, http.StatusOK, article)
}

// --- /content/process ---

func (d Deps) handleContentProcess(w http.ResponseWriter, r *http.Request) {
	var article entity.Article
	if !decodeJSON(w, r, &article) {
		return
	}

	result := enrich.Enrich(r.Context(), article, d.dictionary(), d.Llm, d.Vector)
	article.Content = result.CleanedContent
	article.QualityScore = result.Quality.QualityScore
	article.ContentHash = result.ContentHash
	article.AIProcessed = true

	respond.JSON(w, http.StatusOK, map[string]any{
		"article":      article,
		"keywords":     result.Keywords,
		"quality":      result.Quality,
		"embedding_id": result.EmbeddingID,
	})
}

// --- /keywords/extract ---

type keywordsExtractRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category,omitempty"`
	CountryID string `json:"country_id,omitempty"`
}

type keywordsExtractResponse struct {
	Keywords []keyword.Match `json:"keywords"`
}

func (d Deps) handleKeywordsExtract(w http.ResponseWriter, r *http.Request) {
	var req keywordsExtractRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	matches := keyword.Extract(r.Context(), req.Title, req.Content, req.CountryID, d.dictionary(), d.Llm)
	respond.JSON(w, http.StatusOK, keywordsExtractResponse{Keywords: matches})
}

// --- /quality/score ---

type qualityScoreRequest struct {
	Content string `json:"content"`
	Title   string `json:"title"`
}

func handleQualityScore(w http.ResponseWriter, r *http.Request) {
	var req qualityScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respond.JSON(w, http.StatusOK, quality.Score(req.Content, req.Title))
}

// --- /clustering/cluster ---

type clusteringClusterRequest struct {
	Articles []entity.Article `json:"articles"`
	Config   cluster.Config   `json:"config,omitempty"`
}

type clusteringClusterResponse struct {
	Clusters []cluster.Cluster `json:"clusters"`
	Method   cluster.Method    `json:"method"`
}

func (d Deps) handleClusteringCluster(w http.ResponseWriter, r *http.Request) {
	var req clusteringClusterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := cluster.ClusterArticles(r.Context(), req.Articles, req.Config, d.Llm)
	respond.JSON(w, http.StatusOK, clusteringClusterResponse{Clusters: result.Clusters, Method: result.Method})
}

// --- /search/query ---

type searchQueryOptions struct {
	CategoryID  string    `json:"category_id,omitempty"`
	SourceID    string    `json:"source_id,omitempty"`
	Since       time.Time `json:"since,omitempty"`
	Until       time.Time `json:"until,omitempty"`
	Limit       int       `json:"limit,omitempty"`
	WantInsight bool      `json:"want_insight,omitempty"`
}

type searchQueryRequest struct {
	Query   string             `json:"query"`
	Options searchQueryOptions `json:"options,omitempty"`
}

type searchQueryResponse struct {
	Results []entity.Article `json:"results"`
	Insight *search.Insight  `json:"insights,omitempty"`
	Method  search.Method    `json:"method"`
}

func (d Deps) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	var req searchQueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	limit := req.Options.Limit
	if limit <= 0 {
		limit = 20
	}
	filter := port.ArticleFilter{
		CategoryID: req.Options.CategoryID,
		SourceID:   req.Options.SourceID,
		Since:      req.Options.Since,
		Until:      req.Options.Until,
		Limit:      limit,
	}

	result := search.Query(r.Context(), req.Query, filter, limit, req.Options.WantInsight, d.Store, d.Cache, d.Vector, d.Llm)
	respond.JSON(w, http.StatusOK, searchQueryResponse{Results: result.Articles, Insight: result.Insight, Method: result.Method})
}

// --- /search/trending ---

type searchTrendingResponse struct {
	Topics    []entity.TrendingTopic `json:"topics"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (d Deps) handleSearchTrending(w http.ResponseWriter, r *http.Request) {
	snapshot := trending.Get(r.Context(), d.Store, d.Kv, "global", d.now())
	respond.JSON(w, http.StatusOK, searchTrendingResponse{Topics: snapshot.Topics, UpdatedAt: snapshot.UpdatedAt})
}

// --- /trending and /trending/<CC> ---

func (d Deps) handleTrendingGlobal(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/trending" {
		http.NotFound(w, r)
		return
	}
	snapshot := trending.Get(r.Context(), d.Store, d.Kv, "global", d.now())
	respond.JSON(w, http.StatusOK, snapshot)
}

func (d Deps) handleTrendingScoped(w http.ResponseWriter, r *http.Request) {
	country := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/trending/"))
	if country == "" {
		d.handleTrendingGlobal(w, r)
		return
	}
	snapshot := trending.Get(r.Context(), d.Store, d.Kv, country, d.now())
	respond.JSON(w, http.StatusOK, snapshot)
}

// --- /feed/rank ---

type feedRankRequest struct {
	Articles    []entity.Article   `json:"articles,omitempty"`
	Preferences entity.Preferences `json:"preferences"`
}

type feedRankResponse struct {
	Articles []rank.Scored `json:"articles"`
}

// handleFeedRank implements SPEC_FULL.md §4.17: when the caller omits
// its own article window, the router fetches the most recent
// candidateWindowSize articles from the doc-store to rank instead of
// rejecting the request.
func (d Deps) handleFeedRank(w http.ResponseWriter, r *http.Request) {
	var req feedRankRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	articles := req.Articles
	if len(articles) == 0 && d.Store != nil {
		fetched, err := d.Store.RecentArticles(r.Context(), d.now().Add(-7*24*time.Hour), candidateWindowSize)
		if err != nil {
			respond.SafeError(w, http.StatusBadGateway, err)
			return
		}
		articles = fetched
	}

	scored := rank.Rank(articles, req.Preferences, d.now())
	respond.JSON(w, http.StatusOK, feedRankResponse{Articles: scored})
}

// --- /feed/collect ---

func (d Deps) handleFeedCollect(w http.ResponseWriter, r *http.Request) {
	summary := collect.Run(r.Context(), d.Store, d.Fetcher, d.Llm, d.Vector, d.dictionary(), d.now())
	respond.JSON(w, http.StatusOK, summary)
}

// --- /sources/health ---

type sourceHealthEntry struct {
	entity.Source
	ShouldFetch bool `json:"should_fetch"`
}

func (d Deps) handleSourcesHealth(w http.ResponseWriter, r *http.Request) {
	sources, err := d.Store.ListEnabledSources(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusBadGateway, err)
		return
	}

	now := d.now()
	entries := make([]sourceHealthEntry, len(sources))
	for i, src := range sources {
		entries[i] = sourceHealthEntry{Source: src, ShouldFetch: health.ShouldFetch(src, now)}
	}

	respond.JSON(w, http.StatusOK, map[string]any{"sources": entries})
}
