// Package vector adapts a Postgres+pgvector table to port.VectorIndex.
// Grounded on rcliao-briefly's internal/vectorstore/pgvector.go
// (PgVectorAdapter.Store/Search: UPSERT + cosine-distance <=> ordering
// over database/sql), adapted from its hand-formatted vector literal
// strings to pgvector-go's pgvector.Vector, which the teacher's example
// pack lists as a dependency but never itself wires up.
package vector

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"afrisignal/internal/domain/port"
	"afrisignal/internal/resilience/circuitbreaker"
)

// querier is satisfied by both *sql.DB and
// *circuitbreaker.DBCircuitBreaker, so Store can run either directly
// against the pool or through circuit breaker protection without
// changing its query code.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Store is a pgvector-backed port.VectorIndex over an "embeddings" table
// (article_id text primary key, embedding vector).
type Store struct {
	db querier
}

// New wraps an already-open *sql.DB directly, with no circuit breaker
// protection. Prefer NewWithCircuitBreaker in production wiring.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// NewWithCircuitBreaker wraps db in a circuitbreaker.DBCircuitBreaker
// tuned by circuitbreaker.DBConfig, so a struggling Postgres instance
// fails fast instead of piling up slow embedding queries. The
// embeddings table and its index are expected to be provisioned by
// migrations, not by this package.
func NewWithCircuitBreaker(db *sql.DB) *Store {
	return &Store{db: circuitbreaker.NewDBCircuitBreaker(db)}
}

// Upsert writes or replaces the embedding for id.
func (s *Store) Upsert(ctx context.Context, id string, embedding []float32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (article_id, embedding)
		VALUES ($1, $2)
		ON CONFLICT (article_id) DO UPDATE SET embedding = EXCLUDED.embedding`,
		id, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("vector: upsert %s: %w", id, err)
	}
	return nil
}

// Query returns the topK nearest neighbours to embedding by cosine
// distance, closest first.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]port.VectorMatch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT article_id, 1 - (embedding <=> $1) AS similarity
		FROM embeddings
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("vector: query: %w", err)
	}
	defer rows.Close()

	var matches []port.VectorMatch
	for rows.Next() {
		var m port.VectorMatch
		if err := rows.Scan(&m.ID, &m.Score); err != nil {
			return nil, fmt.Errorf("vector: scan: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
