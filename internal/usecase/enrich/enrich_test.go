package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"afrisignal/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	embedding []float32
	embedErr  error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) { return "", nil }
func (f *fakeLLM) CompleteJSON(ctx context.Context, prompt string, out any) error {
	return nil
}
func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return f.embedding, nil
}

func TestEnrich_FullPipelineProducesAllFields(t *testing.T) {
	a := entity.Article{
		ID:        "a1",
		Title:     "Zimbabwe economy grows",
		Content:   "<p>" + strings.Repeat("The economy grew steadily this year according to officials. ", 10) + "</p>",
		CountryID: "ZW",
	}
	llm := &fakeLLM{embedding: []float32{0.1, 0.2, 0.3}}

	result := Enrich(context.Background(), a, nil, llm, nil)

	assert.NotEmpty(t, result.CleanedContent)
	assert.NotContains(t, result.CleanedContent, "<p>")
	assert.NotZero(t, result.Quality.QualityScore)
	assert.Len(t, result.ContentHash, 16)
	assert.Equal(t, "article_a1", result.EmbeddingID)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, result.Embedding)
	assert.GreaterOrEqual(t, result.ElapsedMillis, int64(0))
}

func TestEnrich_ShortContentSkipsEmbedding(t *testing.T) {
	a := entity.Article{ID: "a2", Title: "Short", Content: "Too short."}
	llm := &fakeLLM{embedding: []float32{1, 2, 3}}

	result := Enrich(context.Background(), a, nil, llm, nil)

	assert.Empty(t, result.EmbeddingID)
	assert.Nil(t, result.Embedding)
}

func TestEnrich_EmbeddingFailureDoesNotFailPipeline(t *testing.T) {
	a := entity.Article{
		ID:      "a3",
		Title:   "Title",
		Content: strings.Repeat("Long enough content to pass the embedding length threshold. ", 5),
	}
	llm := &fakeLLM{embedErr: errors.New("embedding service down")}

	result := Enrich(context.Background(), a, nil, llm, nil)

	require.NotEmpty(t, result.CleanedContent)
	assert.Empty(t, result.EmbeddingID)
	assert.NotZero(t, result.Quality)
}

func TestEnrich_NilLLMSkipsKeywordsAndEmbedding(t *testing.T) {
	a := entity.Article{ID: "a4", Title: "Title", Content: strings.Repeat("Content text here. ", 10)}

	result := Enrich(context.Background(), a, nil, nil, nil)

	assert.Empty(t, result.Keywords)
	assert.Empty(t, result.EmbeddingID)
}

func TestEnrich_ContentHashDeterministic(t *testing.T) {
	a := entity.Article{ID: "a5", Title: "Title", Content: "Same content here."}

	r1 := Enrich(context.Background(), a, nil, nil, nil)
	r2 := Enrich(context.Background(), a, nil, nil, nil)

	assert.Equal(t, r1.ContentHash, r2.ContentHash)
}
