// Package enrich implements the enrichment pipeline (SPEC_FULL.md §4.6):
// per-article clean -> keyword extraction -> quality scoring -> content
// hashing -> best-effort embedding, composing the clean/keyword/quality
// packages. Grounded on the teacher's internal/infra/summarizer package
// for its partial-failure-tolerant, always-return posture.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
	"afrisignal/internal/usecase/clean"
	"afrisignal/internal/usecase/keyword"
	"afrisignal/internal/usecase/quality"
)

const minContentLengthForEmbedding = 50

// Result carries every sub-result the pipeline produced. Fields are left
// at their zero value when the corresponding step failed or was skipped;
// a missing step never fails the whole pipeline.
type Result struct {
	CleanedContent string
	Images         []string
	Keywords       []keyword.Match
	Quality        quality.Result
	ContentHash    string
	EmbeddingID    string
	Embedding      []float32
	ElapsedMillis  int64
}

// Enrich runs the full pipeline for one article. ElapsedMillis is a
// processing-duration measurement, always taken from a real time.Now()
// pair around the pipeline's work rather than from any caller-supplied
// reference time, since a domain "now" (e.g. a batch's fixed cron-
// invocation timestamp) is not the moment this article actually ran.
func Enrich(ctx context.Context, a entity.Article, dictionary []entity.Keyword, llm port.LlmGateway, vec port.VectorIndex) Result {
	started := time.Now()
	var result Result
	cleanOK := false
	embedded := false

	if cleaned, err := clean.Clean(a.Content, clean.Options{ExtractImageURLs: true, RemoveAdElements: true}); err == nil {
		result.CleanedContent = cleaned.Text
		result.Images = cleaned.Images
		cleanOK = true
	} else {
		result.CleanedContent = a.Content
	}

	result.Keywords = keyword.Extract(ctx, a.Title, result.CleanedContent, a.CountryID, dictionary, llm)

	result.Quality = quality.Score(result.CleanedContent, a.Title)

	result.ContentHash = entity.ContentHash(a.Title, result.CleanedContent)

	if len(result.CleanedContent) >= minContentLengthForEmbedding && llm != nil {
		snippet := result.CleanedContent
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		if emb, err := llm.Embed(ctx, a.Title+"\n"+snippet); err == nil && len(emb) > 0 {
			result.Embedding = emb
			result.EmbeddingID = "article_" + a.ID
			embedded = true
			if vec != nil {
				_ = vec.Upsert(ctx, result.EmbeddingID, emb)
			}
		}
	}

	result.ElapsedMillis = time.Since(started).Milliseconds()

	slog.DebugContext(ctx, fmt.Sprintf(
		"enriched article %s in %dms (clean=%t keywords=%d quality=%.2f embedded=%t)",
		a.ID, result.ElapsedMillis, cleanOK, len(result.Keywords), result.Quality.QualityScore, embedded,
	))

	return result
}
