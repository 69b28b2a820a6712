// Package search implements the search engine (SPEC_FULL.md §4.12):
// vector-first retrieval with a SQL LIKE fallback on the edge cache, plus
// an optional single-call LLM insight over the top results. Grounded on
// the teacher's resilience/circuitbreaker-style fallback posture and the
// pgvector-go embedding type used across the vector adapter.
package search

import (
	"context"
	"fmt"
	"strings"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
)

// Method records which retrieval path produced the results.
type Method string

const (
	MethodSemantic Method = "semantic"
	MethodKeyword  Method = "keyword"
	MethodNone     Method = "none"
)

const topKMultiplier = 2

// Insight is a single LLM-generated summary over the top results.
type Insight struct {
	Type       string  `json:"type"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
}

// Result is the search engine's output.
type Result struct {
	Articles []entity.Article
	Insight  *Insight
	Method   Method
}

// Query performs the vector-first, LIKE-fallback search described in
// SPEC_FULL.md §4.12. limit bounds the number of articles returned;
// wantInsight requests the single summarising LLM call over the top 5.
func Query(ctx context.Context, query string, filter port.ArticleFilter, limit int, wantInsight bool, store port.DocStore, cache port.EdgeCache, vec port.VectorIndex, llm port.LlmGateway) Result {
	if articles, ok := vectorSearch(ctx, query, filter, limit, store, cache, vec, llm); ok {
		result := Result{Articles: articles, Method: MethodSemantic}
		attachInsight(ctx, &result, llm, wantInsight)
		return result
	}

	articles := keywordSearch(ctx, query, filter, cache)
	method := MethodKeyword
	if len(articles) == 0 {
		method = MethodNone
	}
	result := Result{Articles: articles, Method: method}
	attachInsight(ctx, &result, llm, wantInsight)
	return result
}

func vectorSearch(ctx context.Context, query string, filter port.ArticleFilter, limit int, store port.DocStore, cache port.EdgeCache, vec port.VectorIndex, llm port.LlmGateway) ([]entity.Article, bool) {
	if vec == nil || llm == nil {
		return nil, false
	}

	embedding, err := llm.Embed(ctx, query)
	if err != nil || len(embedding) == 0 {
		return nil, false
	}

	matches, err := vec.Query(ctx, embedding, limit*topKMultiplier)
	if err != nil || len(matches) == 0 {
		return nil, false
	}

	ids := make([]string, 0, len(matches))
	scoreByID := make(map[string]float64, len(matches))
	for _, m := range matches {
		id := strings.TrimPrefix(m.ID, "article_")
		ids = append(ids, id)
		scoreByID[id] = m.Score
	}

	articles, err := store.FindArticlesByIDs(ctx, ids)
	if err != nil || len(articles) == 0 {
		if cache == nil {
			return nil, false
		}
		articles, err = cache.FindArticlesByIDs(ctx, ids)
		if err != nil || len(articles) == 0 {
			return nil, false
		}
	}

	articles = applyFilter(articles, filter)
	sortByScoreDesc(articles, scoreByID)

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, true
}

func keywordSearch(ctx context.Context, query string, filter port.ArticleFilter, cache port.EdgeCache) []entity.Article {
	if cache == nil {
		return nil
	}
	articles, err := cache.SearchArticlesLike(ctx, query, filter)
	if err != nil {
		return nil
	}
	return articles
}

func applyFilter(articles []entity.Article, filter port.ArticleFilter) []entity.Article {
	var out []entity.Article
	for _, a := range articles {
		if filter.CategoryID != "" && a.CategoryID != filter.CategoryID {
			continue
		}
		if filter.SourceID != "" && a.SourceID != filter.SourceID {
			continue
		}
		if !filter.Since.IsZero() && a.PublishedAt.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && a.PublishedAt.After(filter.Until) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func sortByScoreDesc(articles []entity.Article, scoreByID map[string]float64) {
	for i := 1; i < len(articles); i++ {
		for j := i; j > 0 && scoreByID[articles[j].ID] > scoreByID[articles[j-1].ID]; j-- {
			articles[j], articles[j-1] = articles[j-1], articles[j]
		}
	}
}

func attachInsight(ctx context.Context, result *Result, llm port.LlmGateway, wantInsight bool) {
	if !wantInsight || llm == nil || len(result.Articles) == 0 {
		return
	}

	top := result.Articles
	if len(top) > 5 {
		top = top[:5]
	}
	var titles []string
	for _, a := range top {
		titles = append(titles, a.Title)
	}

	prompt := fmt.Sprintf("Summarise the common theme across these headlines in one sentence: %s", strings.Join(titles, "; "))
	content, err := llm.Complete(ctx, prompt)
	if err != nil || content == "" {
		return
	}

	result.Insight = &Insight{Type: "summary", Content: content, Confidence: 0.7}
}
