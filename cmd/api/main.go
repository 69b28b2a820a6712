package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
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
	"afrisignal/internal/observability/logging"
	"afrisignal/internal/pkg/config"

	hhttp "afrisignal/internal/handler/http"
)

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

	version := getVersion()

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
	dict.refresh(context.Background())

	deps := hhttp.Deps{
		Store:      docClient,
		Cache:      cache,
		Vector:     vectorStore,
		Kv:         kvClient,
		Llm:        llmGateway,
		Fetcher:    fetcher,
		Dictionary: dict.get,
		Now:        time.Now,
	}

	pingers := map[string]func(ctx context.Context) error{
		"docstore": func(ctx context.Context) error {
			_, _, _, _, _, err := docClient.Stats(ctx)
			return err
		},
		"vector":    func(ctx context.Context) error { return database.PingContext(ctx) },
		"kv":        func(ctx context.Context) error { _, _, err := kvClient.Get(ctx, "healthcheck"); return err },
		"edgecache": cache.Ping,
	}

	handler := hhttp.NewRouter(deps, pingers, version)

	runServer(logger, handler, version)
}

// initLogger builds the structured logger per LOG_LEVEL/LOG_FORMAT, using
// the teacher's fail-open observability/logging package.
func initLogger() *slog.Logger {
	if config.LoadEnvString("LOG_FORMAT", "json") == "text" {
		return logging.NewTextLogger()
	}
	return logging.NewLogger()
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
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
	result := config.LoadEnvDuration(envKey, def, nil)
	return result.Value.(time.Duration)
}

func loadInt(envKey string, def int) int {
	result := config.LoadEnvInt(envKey, def, nil)
	return result.Value.(int)
}

// dictionaryCache holds the last-loaded enabled-keyword dictionary,
// refreshed out of band per SPEC_FULL.md §4.3's "caller refreshes" note,
// so request handlers never block on a doc-store round trip.
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

const dictionarySize = 5000

func (d *dictionaryCache) refresh(ctx context.Context) {
	keywords, err := d.store.ListEnabledKeywords(ctx, dictionarySize)
	if err != nil {
		slog.ErrorContext(ctx, "dictionary: failed to refresh keyword dictionary", slog.Any("error", err))
		return
	}
	d.current.Store(&keywords)
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting", slog.String("addr", ":8080"), slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
