// Package db owns the Postgres connection pool and the schema migration
// for the one table Postgres still backs directly: the pgvector
// similarity index behind internal/infra/adapter/vector. Everything else
// the teacher's original migration owned (sources, articles, full-text
// search indexes, seed data) now lives behind the remote doc-store
// service and is provisioned there, not here.
package db

import "database/sql"

// MigrateUp creates the vector extension and the embeddings table that
// internal/infra/adapter/vector.Store reads and writes, plus its
// similarity index. It is safe to call on every process start: every
// statement is idempotent.
func MigrateUp(db *sql.DB) error {
	// エラーを無視(既に存在する場合やスーパーユーザー権限がない場合)
	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`)

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS embeddings (
    article_id TEXT PRIMARY KEY,
    embedding  vector(1536) NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return err
	}

	// IVFFlat類似検索インデックス。pgvector拡張がない場合はエラーになるため無視。
	// lists=100 は <1M レコードに適した値。
	_, _ = db.Exec(`
CREATE INDEX IF NOT EXISTS idx_embeddings_vector
    ON embeddings USING ivfflat (embedding vector_cosine_ops)
    WITH (lists = 100)`)

	return nil
}

// MigrateDown drops the embeddings table and its similarity index.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_embeddings_vector`,
		`DROP TABLE IF EXISTS embeddings CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	// Note: we do NOT drop the vector extension, as it may be used elsewhere.
	return nil
}
