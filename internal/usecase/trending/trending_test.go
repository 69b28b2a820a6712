package trending

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopes_IncludesGlobalAndPriorityCountries(t *testing.T) {
	scopes := Scopes()
	assert.Contains(t, scopes, "global")
	assert.Contains(t, scopes, "ZW")
	assert.Contains(t, scopes, "KE")
	assert.Len(t, scopes, len(entity.TrendingCountries)+1)
}

type fakeStore struct {
	port.DocStore
	topics map[string][]entity.TrendingTopic
	calls  int
}

func (f *fakeStore) TrendingAggregate(ctx context.Context, scope string, since time.Time) ([]entity.TrendingTopic, error) {
	f.calls++
	return f.topics[scope], nil
}

type fakeKV struct {
	data map[string]string
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}
func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.data == nil {
		f.data = map[string]string{}
	}
	f.data[key] = value
	return nil
}

func TestGet_CacheHitSkipsComputation(t *testing.T) {
	snapshot := entity.TrendingSnapshot{Scope: "global", Topics: []entity.TrendingTopic{{Keyword: "cached"}}}
	raw, _ := json.Marshal(snapshot)
	kv := &fakeKV{data: map[string]string{"trending:global": string(raw)}}
	store := &fakeStore{}

	result := Get(context.Background(), store, kv, "global", time.Now())

	assert.Equal(t, 0, store.calls)
	require.Len(t, result.Topics, 1)
	assert.Equal(t, "cached", result.Topics[0].Keyword)
}

func TestGet_CacheMissTriggersComputeAndCaches(t *testing.T) {
	store := &fakeStore{topics: map[string][]entity.TrendingTopic{"ZW": {{Keyword: "election"}}}}
	kv := &fakeKV{}

	result := Get(context.Background(), store, kv, "ZW", time.Now())

	assert.Equal(t, 1, store.calls)
	require.Len(t, result.Topics, 1)
	assert.Equal(t, "election", result.Topics[0].Keyword)
	assert.Contains(t, kv.data, "trending:ZW")
}

func TestRefreshAll_ComputesEveryScope(t *testing.T) {
	store := &fakeStore{topics: map[string][]entity.TrendingTopic{}}
	kv := &fakeKV{}

	snapshots := RefreshAll(context.Background(), store, kv, time.Now())

	assert.Len(t, snapshots, len(Scopes()))
	assert.Len(t, kv.data, len(Scopes()))
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "trending:global", cacheKey("global"))
	assert.Equal(t, "trending:ZW", cacheKey("ZW"))
}
