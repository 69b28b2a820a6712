package search

import (
	"context"
	"errors"
	"testing"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	port.DocStore
	byID map[string]entity.Article
}

func (f *fakeStore) FindArticlesByIDs(ctx context.Context, ids []string) ([]entity.Article, error) {
	var out []entity.Article
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeCache struct {
	port.EdgeCache
	likeResults []entity.Article
	likeErr     error
}

func (f *fakeCache) SearchArticlesLike(ctx context.Context, query string, filter port.ArticleFilter) ([]entity.Article, error) {
	return f.likeResults, f.likeErr
}
func (f *fakeCache) FindArticlesByIDs(ctx context.Context, ids []string) ([]entity.Article, error) {
	return nil, nil
}

type fakeVec struct {
	matches []port.VectorMatch
	err     error
}

func (f *fakeVec) Upsert(ctx context.Context, id string, embedding []float32) error { return nil }
func (f *fakeVec) Query(ctx context.Context, embedding []float32, topK int) ([]port.VectorMatch, error) {
	return f.matches, f.err
}

type fakeLLM struct {
	embedding []float32
	embedErr  error
	completion string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return f.completion, nil
}
func (f *fakeLLM) CompleteJSON(ctx context.Context, prompt string, out any) error { return nil }
func (f *fakeLLM) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embedding, f.embedErr
}

func TestQuery_VectorPathReturnsSemanticMethod(t *testing.T) {
	store := &fakeStore{byID: map[string]entity.Article{
		"1": {ID: "1", Title: "Zimbabwe economy grows"},
		"2": {ID: "2", Title: "Harare weather update"},
	}}
	vec := &fakeVec{matches: []port.VectorMatch{{ID: "article_2", Score: 0.5}, {ID: "article_1", Score: 0.9}}}
	llm := &fakeLLM{embedding: []float32{0.1, 0.2}}

	result := Query(context.Background(), "economy", port.ArticleFilter{}, 10, false, store, nil, vec, llm)

	require.Equal(t, MethodSemantic, result.Method)
	require.Len(t, result.Articles, 2)
	assert.Equal(t, "1", result.Articles[0].ID)
}

func TestQuery_FallsBackToKeywordOnVectorFailure(t *testing.T) {
	cache := &fakeCache{likeResults: []entity.Article{{ID: "1", Title: "Zimbabwe economy grows"}}}
	vec := &fakeVec{err: errors.New("vector index down")}
	llm := &fakeLLM{embedding: []float32{0.1}}

	result := Query(context.Background(), "economy", port.ArticleFilter{}, 10, false, &fakeStore{}, cache, vec, llm)

	assert.Equal(t, MethodKeyword, result.Method)
	require.Len(t, result.Articles, 1)
}

func TestQuery_NoVectorNoCacheReturnsNone(t *testing.T) {
	result := Query(context.Background(), "economy", port.ArticleFilter{}, 10, false, &fakeStore{}, nil, nil, nil)
	assert.Equal(t, MethodNone, result.Method)
	assert.Empty(t, result.Articles)
}

func TestQuery_InsightAttachedWhenRequested(t *testing.T) {
	cache := &fakeCache{likeResults: []entity.Article{{ID: "1", Title: "Zimbabwe economy grows"}}}
	llm := &fakeLLM{completion: "Economic growth dominates headlines."}

	result := Query(context.Background(), "economy", port.ArticleFilter{}, 10, true, &fakeStore{}, cache, nil, llm)

	require.NotNil(t, result.Insight)
	assert.Equal(t, "summary", result.Insight.Type)
}

func TestApplyFilter_CategoryAndSource(t *testing.T) {
	articles := []entity.Article{
		{ID: "1", CategoryID: "politics", SourceID: "s1"},
		{ID: "2", CategoryID: "sports", SourceID: "s2"},
	}
	filtered := applyFilter(articles, port.ArticleFilter{CategoryID: "politics"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].ID)
}
