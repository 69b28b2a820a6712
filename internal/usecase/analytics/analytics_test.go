package analytics

import (
	"context"
	"testing"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	port.DocStore
}

func (f *fakeStore) Stats(ctx context.Context) (int, int, int, int, int, error) {
	return 1000, 42, 12, 80, 400, nil
}

func TestLoadStats(t *testing.T) {
	stats, err := LoadStats(context.Background(), &fakeStore{})
	require.NoError(t, err)
	assert.Equal(t, 1000, stats.TotalArticles)
	assert.Equal(t, 42, stats.ActiveSources)
	assert.Equal(t, 80, stats.Articles24h)
}

func TestCategoryGrowth_ComputesRatio(t *testing.T) {
	trends := CategoryGrowth(
		map[string]int{"politics": 20, "sports": 5},
		map[string]int{"politics": 10, "sports": 5},
		map[string]int64{"politics": 100, "sports": 10},
	)

	require.Len(t, trends, 2)
	assert.Equal(t, "politics", trends[0].CategoryID)
	assert.InDelta(t, 1.0, trends[0].Growth, 0.001)
}

func TestCategoryGrowth_ZeroYesterdayUsesDenominatorOne(t *testing.T) {
	trends := CategoryGrowth(
		map[string]int{"new-category": 5},
		map[string]int{},
		map[string]int64{},
	)
	require.Len(t, trends, 1)
	assert.InDelta(t, 5.0, trends[0].Growth, 0.001)
}

func TestTopArticlesByEngagement(t *testing.T) {
	articles := []entity.Article{
		{ID: "low", ViewCount: 10},
		{ID: "high", ViewCount: 10, LikeCount: 100},
	}

	top := TopArticlesByEngagement(articles, 1)
	require.Len(t, top, 1)
	assert.Equal(t, "high", top[0].Article.ID)
}

func TestSourceProductivityReport(t *testing.T) {
	articles := []entity.Article{
		{SourceID: "a"}, {SourceID: "a"}, {SourceID: "b"},
	}

	report := SourceProductivityReport(articles)
	require.Len(t, report, 2)
	assert.Equal(t, "a", report[0].SourceID)
	assert.Equal(t, 2, report[0].ArticleCount)
}
