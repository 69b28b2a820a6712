// Package edgecache adapts a local SQLite database to port.EdgeCache:
// the read-mostly projection of ~200 recent articles plus the keyword
// and category dictionaries. Grounded on rcliao-briefly's internal/store
// package (mattn/go-sqlite3, CREATE TABLE IF NOT EXISTS bootstrap,
// prepared-statement writes), adapted from its article/summary cache
// schema to the article/keyword/category replication target described
// in SPEC_FULL.md §4.9.
package edgecache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"afrisignal/internal/domain/entity"
	"afrisignal/internal/domain/port"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed implementation of port.EdgeCache.
type Store struct {
	db *sql.DB
}

// Open creates (or attaches to) the SQLite file at dbPath, creating its
// parent directory and schema if missing.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("edgecache: create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("edgecache: open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("edgecache: initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT,
			slug TEXT,
			description TEXT,
			content TEXT,
			author TEXT,
			source TEXT,
			source_id TEXT,
			category_id TEXT,
			country_id TEXT,
			published_at DATETIME,
			image_url TEXT,
			original_url TEXT,
			rss_guid TEXT,
			quality_score REAL,
			view_count INTEGER,
			like_count INTEGER,
			bookmark_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS keywords (
			id TEXT PRIMARY KEY,
			name TEXT,
			category_id TEXT,
			relevance_score REAL,
			usage_count INTEGER,
			enabled INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT,
			emoji TEXT,
			description TEXT,
			color TEXT,
			enabled INTEGER
		);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertArticle writes one article via INSERT OR REPLACE per SPEC_FULL.md
// §4.9's replication contract.
func (s *Store) UpsertArticle(ctx context.Context, a entity.Article) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO articles
		(id, title, slug, description, content, author, source, source_id, category_id, country_id,
		 published_at, image_url, original_url, rss_guid, quality_score, view_count, like_count, bookmark_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Slug, a.Description, a.Content, a.Author, a.Source, a.SourceID, a.CategoryID, a.CountryID,
		a.PublishedAt, a.ImageURL, a.OriginalURL, a.RSSGUID, a.QualityScore, a.ViewCount, a.LikeCount, a.BookmarkCount)
	return err
}

// UpsertKeyword writes one dictionary keyword via INSERT OR REPLACE.
func (s *Store) UpsertKeyword(ctx context.Context, k entity.Keyword) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO keywords (id, name, category_id, relevance_score, usage_count, enabled)
		VALUES (?, ?, ?, ?, ?, ?)`,
		k.ID, k.Name, k.CategoryID, k.RelevanceScore, k.UsageCount, boolToInt(k.Enabled))
	return err
}

// UpsertCategory writes one category via INSERT OR REPLACE.
func (s *Store) UpsertCategory(ctx context.Context, c entity.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO categories (id, name, emoji, description, color, enabled)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Emoji, c.Description, c.Color, boolToInt(c.Enabled))
	return err
}

// SearchArticlesLike is the SQL LIKE fallback search path used by the
// search engine when the vector index is unavailable.
func (s *Store) SearchArticlesLike(ctx context.Context, query string, filter port.ArticleFilter) ([]entity.Article, error) {
	like := "%" + query + "%"
	sqlQuery := `SELECT id, title, slug, description, content, author, source, source_id, category_id, country_id,
		published_at, image_url, original_url, rss_guid, quality_score, view_count, like_count, bookmark_count
		FROM articles WHERE (title LIKE ? OR description LIKE ?)`
	args := []any{like, like}

	if filter.CategoryID != "" {
		sqlQuery += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.SourceID != "" {
		sqlQuery += " AND source_id = ?"
		args = append(args, filter.SourceID)
	}
	sqlQuery += " ORDER BY published_at DESC"
	if filter.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return s.queryArticles(ctx, sqlQuery, args...)
}

// FindArticlesByIDs loads a fixed set of articles by primary key,
// preserving no particular order.
func (s *Store) FindArticlesByIDs(ctx context.Context, ids []string) ([]entity.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	sqlQuery := `SELECT id, title, slug, description, content, author, source, source_id, category_id, country_id,
		published_at, image_url, original_url, rss_guid, quality_score, view_count, like_count, bookmark_count
		FROM articles WHERE id IN (` + placeholders + `)`

	return s.queryArticles(ctx, sqlQuery, args...)
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...any) ([]entity.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []entity.Article
	for rows.Next() {
		var a entity.Article
		var publishedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.Description, &a.Content, &a.Author, &a.Source, &a.SourceID,
			&a.CategoryID, &a.CountryID, &publishedAt, &a.ImageURL, &a.OriginalURL, &a.RSSGUID, &a.QualityScore,
			&a.ViewCount, &a.LikeCount, &a.BookmarkCount); err != nil {
			return nil, err
		}
		if publishedAt.Valid {
			a.PublishedAt = publishedAt.Time
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the underlying SQLite handle is reachable, for
// the HTTP health/ready endpoints.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
