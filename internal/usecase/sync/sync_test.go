package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	port.DocStore
	articles   []entity.Article
	keywords   []entity.Keyword
	categories []entity.Category
}

func (f *fakeStore) RecentArticles(ctx context.Context, since time.Time, limit int) ([]entity.Article, error) {
	return f.articles, nil
}
func (f *fakeStore) ListKeywordsByUsage(ctx context.Context, limit int) ([]entity.Keyword, error) {
	return f.keywords, nil
}
func (f *fakeStore) ListCategories(ctx context.Context, limit int) ([]entity.Category, error) {
	return f.categories, nil
}

type fakeCache struct {
	port.EdgeCache
	failArticleID string
	articlesSeen  int
	keywordsSeen  int
	categoriesSeen int
}

func (f *fakeCache) UpsertArticle(ctx context.Context, a entity.Article) error {
	if a.ID == f.failArticleID {
		return errors.New("write failed")
	}
	f.articlesSeen++
	return nil
}
func (f *fakeCache) UpsertKeyword(ctx context.Context, k entity.Keyword) error {
	f.keywordsSeen++
	return nil
}
func (f *fakeCache) UpsertCategory(ctx context.Context, c entity.Category) error {
	f.categoriesSeen++
	return nil
}

func TestRun_ReplicatesAllThreeCollections(t *testing.T) {
	store := &fakeStore{
		articles:   []entity.Article{{ID: "a1"}, {ID: "a2"}},
		keywords:   []entity.Keyword{{ID: "k1"}},
		categories: []entity.Category{{ID: "c1"}},
	}
	cache := &fakeCache{}

	summary := Run(context.Background(), store, cache, time.Now())

	assert.Equal(t, 2, summary.ArticlesWritten)
	assert.Equal(t, 1, summary.KeywordsWritten)
	assert.Equal(t, 1, summary.CategoriesWritten)
	assert.Equal(t, 0, summary.Errors)
	assert.GreaterOrEqual(t, summary.ElapsedMs, int64(0))
}

func TestRun_PerRowFailureCountedNotFatal(t *testing.T) {
	store := &fakeStore{
		articles: []entity.Article{{ID: "a1"}, {ID: "bad"}},
	}
	cache := &fakeCache{failArticleID: "bad"}

	summary := Run(context.Background(), store, cache, time.Now())

	assert.Equal(t, 1, summary.ArticlesWritten)
	assert.Equal(t, 1, summary.Errors)
}
