// Package collect implements the feed collector (SPEC_FULL.md §4.7), the
// pipeline's workhorse: country-priority source ordering, admission via
// the health manager, batched concurrent fetch-parse-enrich-insert, bulk
// dedup, and per-source failure isolation. Grounded on the teacher's
// internal/usecase/fetch/service.go errgroup-based two-tier parallelism,
// generalised from per-item concurrency to the spec's fixed
// batch-of-10 source-level fan-out.
package collect

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
	"afrisignal/internal/usecase/enrich"
	"afrisignal/internal/usecase/feedparse"
	"afrisignal/internal/usecase/health"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const batchSize = 10

// SourceResult is the per-source outcome of one collection pass.
type SourceResult struct {
	SourceID   string `json:"source_id"`
	Fetched    int    `json:"fetched"`
	Inserted   int    `json:"inserted"`
	Duplicated int    `json:"duplicated"`
	Err        error  `json:"-"`
}

// MarshalJSON renders Err as a plain string so the collector summary
// stays valid, human-readable JSON over the wire.
func (r SourceResult) MarshalJSON() ([]byte, error) {
	type alias struct {
		SourceID   string `json:"source_id"`
		Fetched    int    `json:"fetched"`
		Inserted   int    `json:"inserted"`
		Duplicated int    `json:"duplicated"`
		Error      string `json:"error,omitempty"`
	}
	a := alias{SourceID: r.SourceID, Fetched: r.Fetched, Inserted: r.Inserted, Duplicated: r.Duplicated}
	if r.Err != nil {
		a.Error = r.Err.Error()
	}
	return json.Marshal(a)
}

// Summary is the structured, never-throwing result of one cron
// invocation, returned regardless of how many sources failed.
type Summary struct {
	SourcesConsidered int            `json:"sources_considered"`
	SourcesAdmitted   int            `json:"sources_admitted"`
	SourcesFetched    int            `json:"sources_fetched"`
	ArticlesInserted  int            `json:"articles_inserted"`
	ArticlesDuplicate int            `json:"articles_duplicate"`
	Results           []SourceResult `json:"results,omitempty"`
}

// Run executes one collection cycle: load & order sources, admit by
// should_fetch, batch-fetch 10 at a time, parse, enrich, dedup, and
// bulk-insert. now is the caller-supplied reference clock.
func Run(ctx context.Context, store port.DocStore, fetcher port.HttpFetcher, llm port.LlmGateway, vec port.VectorIndex, dictionary []entity.Keyword, now time.Time) Summary {
	sources, err := store.ListEnabledSources(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "collector: failed to list enabled sources", slog.Any("error", err))
		return Summary{}
	}

	orderSources(sources)

	var admitted []entity.Source
	for _, src := range sources {
		if health.ShouldFetch(src, now) {
			admitted = append(admitted, src)
		}
	}

	summary := Summary{SourcesConsidered: len(sources), SourcesAdmitted: len(admitted)}

	for start := 0; start < len(admitted); start += batchSize {
		end := start + batchSize
		if end > len(admitted) {
			end = len(admitted)
		}
		batch := admitted[start:end]

		results := runBatch(ctx, batch, store, fetcher, llm, vec, dictionary, now)
		for _, r := range results {
			summary.Results = append(summary.Results, r)
			summary.SourcesFetched++
			summary.ArticlesInserted += r.Inserted
			summary.ArticlesDuplicate += r.Duplicated
		}
	}

	return summary
}

// orderSources sorts by country priority table ascending, tie-broken by
// consecutive_failures ascending, matching SPEC_FULL.md §4.7 phase 1.
func orderSources(sources []entity.Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		pi, pj := countryPriority(sources[i].Country), countryPriority(sources[j].Country)
		if pi != pj {
			return pi < pj
		}
		return sources[i].ConsecutiveFailures < sources[j].ConsecutiveFailures
	})
}

func countryPriority(country string) int {
	if p, ok := entity.CountryPriority[country]; ok {
		return p
	}
	return len(entity.CountryPriority) + 1
}

// runBatch fetches, parses, enriches, and inserts one batch of up to 10
// sources concurrently. A per-source panic-free errgroup barrier isolates
// failures: one source's error never aborts its siblings.
func runBatch(ctx context.Context, batch []entity.Source, store port.DocStore, fetcher port.HttpFetcher, llm port.LlmGateway, vec port.VectorIndex, dictionary []entity.Keyword, now time.Time) []SourceResult {
	results := make([]SourceResult, len(batch))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range batch {
		i, src := i, src
		eg.Go(func() error {
			results[i] = processSource(egCtx, src, store, fetcher, llm, vec, dictionary, now)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

func processSource(ctx context.Context, src entity.Source, store port.DocStore, fetcher port.HttpFetcher, llm port.LlmGateway, vec port.VectorIndex, dictionary []entity.Keyword, now time.Time) SourceResult {
	result := SourceResult{SourceID: src.ID}

	raw, _, err := fetcher.Fetch(ctx, src.FeedURL)
	if err != nil {
		recordFailure(ctx, store, src, now, err.Error())
		result.Err = err
		return result
	}

	parsed, err := feedparse.Parse(raw, src.FeedURL)
	if err != nil {
		recordFailure(ctx, store, src, now, err.Error())
		result.Err = err
		return result
	}
	result.Fetched = len(parsed.Items)

	articles, links, inserted, duplicated, err := dedupAndEnrich(ctx, store, src, parsed.Items, dictionary, llm, vec, now)
	if err != nil {
		recordFailure(ctx, store, src, now, err.Error())
		result.Err = err
		return result
	}

	result.Inserted = inserted
	result.Duplicated = duplicated

	if len(articles) > 0 {
		if err := store.InsertArticles(ctx, articles); err != nil {
			recordFailure(ctx, store, src, now, err.Error())
			result.Err = err
			return result
		}
		persistKeywordLinks(ctx, store, links)
	}

	if err := store.UpdateSourceFetchResult(ctx, src.ID, true, now, ""); err != nil {
		slog.WarnContext(ctx, "collector: failed to record source success", slog.String("source_id", src.ID), slog.Any("error", err))
	}

	return result
}

// persistKeywordLinks writes the article-keyword associations produced
// during enrichment and bumps each referenced keyword's usage_count,
// feeding the trending engine's article_keyword_links join (SPEC_FULL.md
// §4.13). Best-effort: a failure here never fails the source's fetch.
func persistKeywordLinks(ctx context.Context, store port.DocStore, links []entity.ArticleKeywordLink) {
	if len(links) == 0 {
		return
	}

	if err := store.LinkArticleKeywords(ctx, links); err != nil {
		slog.WarnContext(ctx, "collector: failed to link article keywords", slog.Any("error", err))
		return
	}

	seen := make(map[string]bool, len(links))
	var keywordIDs []string
	for _, l := range links {
		if seen[l.KeywordID] {
			continue
		}
		seen[l.KeywordID] = true
		keywordIDs = append(keywordIDs, l.KeywordID)
	}

	if err := store.IncrementKeywordUsage(ctx, keywordIDs); err != nil {
		slog.WarnContext(ctx, "collector: failed to increment keyword usage", slog.Any("error", err))
	}
}

func recordFailure(ctx context.Context, store port.DocStore, src entity.Source, now time.Time, errMsg string) {
	if err := store.UpdateSourceFetchResult(ctx, src.ID, false, now, errMsg); err != nil {
		slog.WarnContext(ctx, "collector: failed to record source failure", slog.String("source_id", src.ID), slog.Any("error", err))
	}
}

// dedupAndEnrich implements invariant I-Dedup: an item is new iff its
// rss_guid (when non-empty) and its original_url both fail to match any
// existing article, checked in bulk via one $in-style lookup per key.
// It also assigns each new article a client-side ID (mirroring the HTTP
// layer's request-ID generation) so the returned keyword links can
// reference it before the doc-store round trip.
func dedupAndEnrich(ctx context.Context, store port.DocStore, src entity.Source, items []feedparse.Item, dictionary []entity.Keyword, llm port.LlmGateway, vec port.VectorIndex, now time.Time) ([]entity.Article, []entity.ArticleKeywordLink, int, int, error) {
	guids := make([]string, 0, len(items))
	urls := make([]string, 0, len(items))
	for _, it := range items {
		if it.GUID != "" {
			guids = append(guids, it.GUID)
		}
		urls = append(urls, it.Link)
	}

	guidExists, err := store.ExistsByRSSGUIDs(ctx, guids)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	urlExists, err := store.ExistsByOriginalURLs(ctx, urls)
	if err != nil {
		return nil, nil, 0, 0, err
	}

	var articles []entity.Article
	var links []entity.ArticleKeywordLink
	duplicated := 0
	for _, it := range items {
		if it.GUID != "" && guidExists[it.GUID] {
			duplicated++
			continue
		}
		if urlExists[it.Link] {
			duplicated++
			continue
		}

		article := entity.Article{
			ID:          uuid.New().String(),
			Title:       it.Title,
			Slug:        it.Slug,
			Description: it.Description,
			Content:     it.Content,
			Author:      it.Author,
			Source:      src.Name,
			SourceID:    src.ID,
			CategoryID:  src.Category,
			CountryID:   src.Country,
			PublishedAt: it.PublishedAt,
			ImageURL:    it.ImageURL,
			OriginalURL: it.Link,
			RSSGUID:     it.GUID,
			CreatedAt:   now,
			UpdatedAt:   now,
			AIProcessed: false,
		}

		enrichment := enrich.Enrich(ctx, article, dictionary, llm, vec)
		article.Content = enrichment.CleanedContent
		article.QualityScore = enrichment.Quality.QualityScore
		article.ContentHash = enrichment.ContentHash

		for _, m := range enrichment.Keywords {
			if m.KeywordID == "" {
				continue
			}
			links = append(links, entity.ArticleKeywordLink{
				ArticleID:      article.ID,
				KeywordID:      m.KeywordID,
				RelevanceScore: m.Confidence,
			})
		}

		articles = append(articles, article)
	}

	return articles, links, len(articles), duplicated, nil
}
