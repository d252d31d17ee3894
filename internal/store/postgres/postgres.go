// Package postgres implements the store on PostgreSQL with pgvector.
// Reports are kept as JSONB rows; answers live in a table with a vector
// column and an HNSW index for approximate nearest-neighbour search.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/orato-app/orato/internal/report"
	"github.com/orato-app/orato/internal/store"
)

// Store is the PostgreSQL-backed store. All operations share one
// [pgxpool.Pool] and are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time interface assertion.
var _ store.Store = (*Store)(nil)

// New connects to the database at dsn, registers pgvector types on every
// connection, and runs the idempotent migration.
//
// embeddingDimensions must match the embedding model in use (1536 for
// OpenAI text-embedding-3-small). Changing it after the first migration
// requires a manual schema change.
func New(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}
	if err := migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// SaveReport implements [store.Store].
func (s *Store) SaveReport(ctx context.Context, rep store.Report) error {
	records, err := json.Marshal(rep.Records)
	if err != nil {
		return fmt.Errorf("postgres store: marshal records: %w", err)
	}

	const q = `
		INSERT INTO reports (session_id, mode, created_at, records)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE SET
		    mode       = EXCLUDED.mode,
		    created_at = EXCLUDED.created_at,
		    records    = EXCLUDED.records`
	if _, err := s.pool.Exec(ctx, q, rep.SessionID, string(rep.Mode), rep.CreatedAt, records); err != nil {
		return fmt.Errorf("postgres store: save report: %w", err)
	}
	return nil
}

// GetReport implements [store.Store].
func (s *Store) GetReport(ctx context.Context, sessionID string) (*store.Report, error) {
	const q = `SELECT session_id, mode, created_at, records FROM reports WHERE session_id = $1`

	var (
		rep  store.Report
		mode string
		raw  []byte
	)
	err := s.pool.QueryRow(ctx, q, sessionID).Scan(&rep.SessionID, &mode, &rep.CreatedAt, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: report %s", store.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: get report: %w", err)
	}
	rep.Mode = report.Mode(mode)
	if err := json.Unmarshal(raw, &rep.Records); err != nil {
		return nil, fmt.Errorf("postgres store: unmarshal records: %w", err)
	}
	return &rep, nil
}

// IndexAnswer implements [store.Store].
func (s *Store) IndexAnswer(ctx context.Context, ans store.Answer) error {
	const q = `
		INSERT INTO answers
		    (id, session_id, question_number, question, transcript, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
		    session_id      = EXCLUDED.session_id,
		    question_number = EXCLUDED.question_number,
		    question        = EXCLUDED.question,
		    transcript      = EXCLUDED.transcript,
		    embedding       = EXCLUDED.embedding,
		    created_at      = EXCLUDED.created_at`

	_, err := s.pool.Exec(ctx, q,
		ans.ID,
		ans.SessionID,
		ans.QuestionNumber,
		ans.Question,
		ans.Transcript,
		pgvector.NewVector(ans.Embedding),
		ans.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres store: index answer: %w", err)
	}
	return nil
}

// SimilarAnswers implements [store.Store]. Results are ordered by ascending
// cosine distance.
func (s *Store) SimilarAnswers(ctx context.Context, embedding []float32, topK int) ([]store.AnswerMatch, error) {
	const q = `
		SELECT id, session_id, question_number, question, transcript, embedding, created_at,
		       embedding <=> $1 AS distance
		FROM   answers
		ORDER  BY distance
		LIMIT  $2`

	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("postgres store: similar answers: %w", err)
	}

	matches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.AnswerMatch, error) {
		var (
			m   store.AnswerMatch
			vec pgvector.Vector
		)
		if err := row.Scan(
			&m.Answer.ID,
			&m.Answer.SessionID,
			&m.Answer.QuestionNumber,
			&m.Answer.Question,
			&m.Answer.Transcript,
			&vec,
			&m.Answer.CreatedAt,
			&m.Distance,
		); err != nil {
			return store.AnswerMatch{}, err
		}
		m.Answer.Embedding = vec.Slice()
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store: scan rows: %w", err)
	}
	if matches == nil {
		matches = []store.AnswerMatch{}
	}
	return matches, nil
}

// Close implements [store.Store].
func (s *Store) Close() {
	s.pool.Close()
}
