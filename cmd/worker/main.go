package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/infra/adapter/docstore"
	"afrisignal/internal/infra/adapter/edgecache"
	"afrisignal/internal/infra/adapter/httpfetch"
	"afrisignal/internal/infra/adapter/kv"
	"afrisignal/internal/infra/adapter/llm"
	"afrisignal/internal/infra/adapter/vector"
	"afrisignal/internal/infra/db"
	"afrisignal/internal/infra/scheduler"
	"afrisignal/internal/observability/logging"
	"afrisignal/internal/observability/metrics"
	"afrisignal/internal/pkg/config"
	"afrisignal/internal/usecase/collect"
	"afrisignal/internal/usecase/health"
	"afrisignal/internal/usecase/sync"
	"afrisignal/internal/usecase/trending"
)

const dictionarySize = 5000

func main() {
	logger := initLogger()
	slog.SetDefault(logger)

	database := db.Open()
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate embeddings schema", slog.Any("error", err))
		os.Exit(1)
	}

	cache := openEdgeCache(logger)
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Error("failed to close edge cache", slog.Any("error", err))
		}
	}()

	docClient := docstore.New(docstore.Config{
		BaseURL: config.LoadEnvString("DOCSTORE_BASE_URL", "http://localhost:9090"),
		Timeout: loadDuration("DOCSTORE_TIMEOUT", 10*time.Second),
	})
	vectorStore := vector.NewWithCircuitBreaker(database)
	kvClient := kv.New(kv.Config{
		Addr:     config.LoadEnvString("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       loadInt("REDIS_DB", 0),
	})
	llmGateway := llm.New(llm.Config{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
	})
	fetcher := httpfetch.New(httpfetch.Config{
		Timeout:      loadDuration("HTTP_FETCH_TIMEOUT", 10*time.Second),
		MaxRedirects: loadInt("HTTP_FETCH_MAX_REDIRECTS", 3),
		MaxBodySize:  int64(loadInt("HTTP_FETCH_MAX_BYTES", 5<<20)),
		UserAgent:    "AfriSignalBot/1.0",
	})

	dict := newDictionaryCache(docClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsSrv := startMetricsServer(ctx, logger)
	_ = metricsSrv

	timezone := config.LoadEnvWithFallback("SCHED_TIMEZONE", "UTC", config.ValidateTimezone).Value.(string)
	dispatcher := scheduler.New(timezone, logger)

	dispatcher.RegisterWithSchedules(loadSchedules(),
		collectorJob(docClient, fetcher, llmGateway, vectorStore, dict),
		edgeSyncJob(docClient, cache),
		trendingJob(docClient, kvClient),
		healthAuditJob(docClient),
	)

	dispatcher.Start()
	logger.Info("worker started", slog.String("timezone", timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	dispatcher.Stop()
	cancel()
	logger.Info("worker stopped")
}

func initLogger() *slog.Logger {
	if config.LoadEnvString("LOG_FORMAT", "json") == "text" {
		return logging.NewTextLogger()
	}
	return logging.NewLogger()
}

func openEdgeCache(logger *slog.Logger) *edgecache.Store {
	path := config.LoadEnvString("EDGE_CACHE_DB_PATH", "./edgecache.db")
	store, err := edgecache.Open(path)
	if err != nil {
		logger.Error("failed to open edge cache", slog.Any("error", err))
		os.Exit(1)
	}
	return store
}

func loadDuration(envKey string, def time.Duration) time.Duration {
	return config.LoadEnvDuration(envKey, def, nil).Value.(time.Duration)
}

func loadInt(envKey string, def int) int {
	return config.LoadEnvInt(envKey, def, nil).Value.(int)
}

// loadSchedules reads the four SCHED_*_CRON overrides, falling back to
// the spec-default schedule for any unset or invalid expression.
func loadSchedules() scheduler.Schedules {
	return scheduler.Schedules{
		Collector:   loadCron("SCHED_COLLECTOR_CRON", scheduler.CollectorSchedule),
		EdgeSync:    loadCron("SCHED_EDGESYNC_CRON", scheduler.EdgeSyncSchedule),
		Trending:    loadCron("SCHED_TRENDING_CRON", scheduler.TrendingSchedule),
		HealthAudit: loadCron("SCHED_HEALTH_CRON", scheduler.HealthAuditSchedule),
	}
}

func loadCron(envKey, def string) string {
	return config.LoadEnvWithFallback(envKey, def, config.ValidateCronSchedule).Value.(string)
}

// dictionaryCache holds the last-loaded enabled-keyword dictionary,
// refreshed once per collector run so the enrichment pipeline never
// blocks a fetch batch on a doc-store round trip mid-run.
type dictionaryCache struct {
	store   *docstore.Client
	current atomic.Pointer[[]entity.Keyword]
}

func newDictionaryCache(store *docstore.Client) *dictionaryCache {
	d := &dictionaryCache{store: store}
	empty := []entity.Keyword{}
	d.current.Store(&empty)
	return d
}

func (d *dictionaryCache) get() []entity.Keyword {
	return *d.current.Load()
}

func (d *dictionaryCache) refresh(ctx context.Context) error {
	keywords, err := d.store.ListEnabledKeywords(ctx, dictionarySize)
	if err != nil {
		return err
	}
	d.current.Store(&keywords)
	return nil
}

// collectorJob runs the feed collector every 15 minutes (SPEC_FULL.md
// §4.7), refreshing the keyword dictionary immediately before each run.
func collectorJob(store *docstore.Client, fetcher *httpfetch.Client, llmGateway *llm.Gateway, vec *vector.Store, dict *dictionaryCache) scheduler.Job {
	return scheduler.Job{
		Name: "collector",
		Run: func(ctx context.Context) error {
			if err := dict.refresh(ctx); err != nil {
				slog.WarnContext(ctx, "collector: using stale keyword dictionary", slog.Any("error", err))
			}
			start := time.Now()
			summary := collect.Run(ctx, store, fetcher, llmGateway, vec, dict.get(), time.Now())
			metrics.RecordCollectorRun(summary.SourcesConsidered, summary.ArticlesInserted, summary.ArticlesDuplicate, time.Since(start))
			slog.InfoContext(ctx, "collector: run complete",
				slog.Int("sources_considered", summary.SourcesConsidered),
				slog.Int("sources_admitted", summary.SourcesAdmitted),
				slog.Int("sources_fetched", summary.SourcesFetched),
				slog.Int("articles_inserted", summary.ArticlesInserted),
				slog.Int("articles_duplicate", summary.ArticlesDuplicate))
			return nil
		},
	}
}

// edgeSyncJob runs the edge-cache synchroniser hourly (SPEC_FULL.md §4.9).
func edgeSyncJob(store *docstore.Client, cache *edgecache.Store) scheduler.Job {
	return scheduler.Job{
		Name: "edge_sync",
		Run: func(ctx context.Context) error {
			summary := sync.Run(ctx, store, cache, time.Now())
			metrics.RecordEdgeSync(summary.ArticlesWritten, summary.KeywordsWritten, summary.CategoriesWritten, summary.Errors, summary.ElapsedMs)
			slog.InfoContext(ctx, "edge_sync: run complete",
				slog.Int("articles_written", summary.ArticlesWritten),
				slog.Int("keywords_written", summary.KeywordsWritten),
				slog.Int("categories_written", summary.CategoriesWritten),
				slog.Int("errors", summary.Errors),
				slog.Int64("elapsed_ms", summary.ElapsedMs))
			return nil
		},
	}
}

// trendingJob refreshes the trending snapshot for every scope every 30
// minutes (SPEC_FULL.md §4.12).
func trendingJob(store *docstore.Client, kvClient *kv.Client) scheduler.Job {
	return scheduler.Job{
		Name: "trending_refresh",
		Run: func(ctx context.Context) error {
			snapshots := trending.RefreshAll(ctx, store, kvClient, time.Now())
			metrics.RecordTrendingRefresh(len(snapshots))
			slog.InfoContext(ctx, "trending_refresh: run complete", slog.Int("scopes", len(snapshots)))
			return nil
		},
	}
}

// healthAuditJob recomputes source quality scores every six hours
// (SPEC_FULL.md §4.8).
func healthAuditJob(store *docstore.Client) scheduler.Job {
	return scheduler.Job{
		Name: "health_audit",
		Run: func(ctx context.Context) error {
			sources, err := store.ListEnabledSources(ctx)
			if err != nil {
				return err
			}
			result := health.RunQualityAudit(ctx, store, sources, time.Now())
			metrics.RecordHealthAudit(result.Recomputed, len(result.Alerts), result.Errors)
			slog.InfoContext(ctx, "health_audit: run complete",
				slog.Int("recomputed", result.Recomputed),
				slog.Int("alerts", len(result.Alerts)),
				slog.Int("errors", result.Errors),
				slog.Int("healthy", result.Healthy),
				slog.Int("degraded", result.Degraded),
				slog.Int("failing", result.Failing),
				slog.Int("critical", result.Critical))
			return nil
		},
	}
}
