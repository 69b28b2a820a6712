// Package trending implements the trending engine (SPEC_FULL.md §4.13):
// 30-minute aggregation per scope (global plus priority countries),
// cached in the KV store with a read-through-then-compute strategy.
// Grounded on the teacher's summarizer package's cache-first posture,
// adapted from per-request caching to scope-keyed trending snapshots.
package trending

import (
	"context"
	"encoding/json"
	"time"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"
)

const globalScope = "global"

// Scopes returns the fixed list of scopes recomputed every cycle: global
// plus each priority trending country from SPEC_FULL.md/spec.md §4.13.
func Scopes() []string {
	scopes := make([]string, 0, len(entity.TrendingCountries)+1)
	scopes = append(scopes, globalScope)
	scopes = append(scopes, entity.TrendingCountries...)
	return scopes
}

// RefreshAll recomputes and caches every scope, returning per-scope
// snapshots. Called by the scheduler dispatcher every 30 minutes.
func RefreshAll(ctx context.Context, store port.DocStore, kv port.KvStore, now time.Time) map[string]entity.TrendingSnapshot {
	snapshots := make(map[string]entity.TrendingSnapshot, len(Scopes()))
	for _, scope := range Scopes() {
		snapshot := compute(ctx, store, scope, now)
		snapshots[scope] = snapshot
		cacheSnapshot(ctx, kv, scope, snapshot)
	}
	return snapshots
}

// Get reads a scope's snapshot, trying the KV cache first; a cache miss
// triggers a live recomputation (and re-caches the result).
func Get(ctx context.Context, store port.DocStore, kv port.KvStore, scope string, now time.Time) entity.TrendingSnapshot {
	if kv != nil {
		if raw, ok, err := kv.Get(ctx, cacheKey(scope)); err == nil && ok {
			var snapshot entity.TrendingSnapshot
			if json.Unmarshal([]byte(raw), &snapshot) == nil {
				return snapshot
			}
		}
	}

	snapshot := compute(ctx, store, scope, now)
	cacheSnapshot(ctx, kv, scope, snapshot)
	return snapshot
}

func compute(ctx context.Context, store port.DocStore, scope string, now time.Time) entity.TrendingSnapshot {
	since := now.Add(-24 * time.Hour)
	topics, err := store.TrendingAggregate(ctx, scope, since)
	if err != nil {
		return entity.TrendingSnapshot{Scope: scope, UpdatedAt: now}
	}
	return entity.TrendingSnapshot{Scope: scope, Topics: topics, UpdatedAt: now}
}

func cacheSnapshot(ctx context.Context, kv port.KvStore, scope string, snapshot entity.TrendingSnapshot) {
	if kv == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	_ = kv.Set(ctx, cacheKey(scope), string(raw), entity.TrendingTTL)
}

func cacheKey(scope string) string {
	if scope == globalScope {
		return "trending:global"
	}
	return "trending:" + scope
}
